package sweeper

import (
	"go.uber.org/fx"

	"github.com/fatflowers/membership/internal/app/service/subscription"
)

// Module exposes the sweep scheduler via Fx and ties it to the app lifecycle.
var Module = fx.Options(
	fx.Provide(
		func(s *subscription.Service) Reconciler { return s },
		New,
	),
	fx.Invoke(func(lc fx.Lifecycle, s *Scheduler) {
		lc.Append(fx.Hook{OnStart: s.Start, OnStop: s.Stop})
	}),
)
