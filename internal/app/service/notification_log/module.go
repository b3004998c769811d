package notification_log

import (
	"go.uber.org/fx"
)

// Module exposes the notification log service via Fx. Pending writes are
// drained on shutdown, after the stop hooks of anything registered later.
var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, s *Service) {
		lc.Append(fx.Hook{OnStop: s.Wait})
	}),
)
