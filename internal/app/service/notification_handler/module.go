package notification_handler

import (
	"go.uber.org/fx"

	notificationlog "github.com/fatflowers/membership/internal/app/service/notification_log"
)

// Module exposes the notification handler via Fx.
var Module = fx.Options(
	fx.Provide(
		func(s *notificationlog.Service) NotificationRecorder { return s },
		NewNotificationHandler,
	),
)
