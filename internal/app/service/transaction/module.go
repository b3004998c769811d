package transaction

import (
	"go.uber.org/fx"

	"github.com/fatflowers/membership/internal/store"
)

// Module exposes the transaction service via Fx.
var Module = fx.Options(
	fx.Provide(func(r store.Repository) store.Audit { return r }),
	fx.Provide(NewService),
)
