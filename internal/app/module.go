package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/membership/internal/app/api/server"
	notificationhandler "github.com/fatflowers/membership/internal/app/service/notification_handler"
	notificationlog "github.com/fatflowers/membership/internal/app/service/notification_log"
	"github.com/fatflowers/membership/internal/app/service/subscription"
	"github.com/fatflowers/membership/internal/app/service/sweeper"
	"github.com/fatflowers/membership/internal/app/service/transaction"
	"github.com/fatflowers/membership/internal/platform/db"
	"github.com/fatflowers/membership/internal/store"
	"github.com/fatflowers/membership/pkg/config"
	"github.com/fatflowers/membership/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

// Core is the storage and reconciler graph shared by every entry point.
var Core = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	store.Module,
	subscription.Module,
	transaction.Module,
)

// Module is the API server graph. OnStop hooks run in reverse, so the
// notification log is listed before the server: its drain runs after
// in-flight webhooks have finished.
var Module = fx.Options(
	Core,
	notificationlog.Module,
	notificationhandler.Module,
	sweeper.Module,
	server.Module,
)
