package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"elizabot/app/client/robot"
	"elizabot/app/config"
	"elizabot/app/service/conversation"
	"elizabot/app/service/dialog"
	"elizabot/app/service/engine"
	"elizabot/app/service/queue"
	"elizabot/app/service/replay"
	"elizabot/app/service/sessionlog"
	"elizabot/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
	"github.com/spf13/pflag"
)

func main() {
	var flags config.Flags
	pflag.BoolVar(&flags.ReplayOnly, "replay-only", false, "serve answers exclusively from the replay store")
	pflag.BoolVar(&flags.NoTrials, "no-trials", false, "ignore the replay store, always generate live")
	pflag.BoolVar(&flags.Console, "console", false, "local REPL mode, no robot connection")
	pflag.Parse()

	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)
	do.ProvideValue(di, flags)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, robot.NewClient)
	do.Provide(di, sessionlog.New)
	do.Provide(di, replay.New)
	do.Provide(di, conversation.New)
	do.Provide(di, dialog.New)
	do.Provide(di, queue.New)
	do.Provide(di, engine.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	go func() {
		do.MustInvoke[*engine.Service](di).Run(appCtx)
		cancel()
	}()

	<-appCtx.Done()
}
