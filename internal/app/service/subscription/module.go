package subscription

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/membership/internal/store"
	"github.com/fatflowers/membership/pkg/config"
)

// Params collects the service dependencies. Plan-change validators are
// contributed by any module through the "change_validators" group.
type Params struct {
	fx.In

	Config     *config.Config
	Repo       store.Repository
	Log        *zap.SugaredLogger
	Validators []ChangeValidator `group:"change_validators"`
}

func newFromParams(p Params) (*Service, error) {
	return NewService(p.Config, p.Repo, p.Log, p.Validators...)
}

// AsChangeValidator annotates a constructor so its result joins the
// "change_validators" group.
func AsChangeValidator(f any) any {
	return fx.Annotate(f, fx.ResultTags(`group:"change_validators"`))
}

// Module exposes the subscription service via Fx.
var Module = fx.Options(
	fx.Provide(
		newFromParams,
		AsChangeValidator(PlanAvailable),
	),
)
