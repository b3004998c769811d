package main

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/membership/internal/app"
	"github.com/fatflowers/membership/internal/app/service/subscription"
	"github.com/fatflowers/membership/pkg/logctx"
	"github.com/fatflowers/membership/pkg/tool"
)

// sweep runs the expired subscription sweep once, for deployments that
// schedule it with an external cron instead of the API process.
func main() {
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	var (
		sub *subscription.Service
		log *zap.SugaredLogger
	)
	a := fx.New(app.Core, fx.Populate(&sub, &log), fx.NopLogger)
	startCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStartTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		zap.NewExample().Sugar().Errorf("failed to start app: %v", err)
		exitCode = 1
		return
	}

	ctx := logctx.WithTraceID(context.Background(), tool.GenerateUUIDV7())
	res, err := sub.UnsubscribeExpired(ctx)
	if err != nil {
		log.Errorw("expired subscription sweep failed", "error", err)
		exitCode = 1
	} else {
		log.Infow("expired subscription sweep done", "candidates", res.Candidates, "failed", res.Failed)
	}

	stopCtx, cancel2 := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
	defer cancel2()
	if err := a.Stop(stopCtx); err != nil {
		log.Errorf("failed to stop app: %v", err)
		exitCode = 1
	}
}
