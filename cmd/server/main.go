package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/healthsync/internal/config"
	"github.com/iliyamo/healthsync/internal/logger"
)

const serviceName = "healthsync"

var CLI struct {
	EnvFile string `help:"Optional .env file loaded before reading configuration." default:".env" type:"path"`

	Serve         ServeCmd         `cmd:"" help:"Run the HTTP API." default:"1"`
	Migrate       MigrateCmd       `cmd:"" help:"Apply pending database migrations."`
	ConsumeAlerts ConsumeAlertsCmd `cmd:"" help:"Consume health alert events into the alert log."`
}

// Context is passed to every command's Run method.
type Context struct {
	Ctx context.Context
	Log *zap.Logger
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("server"),
		kong.Description("HealthSync health tracking API"),
		kong.UsageOnError(),
	)

	// a missing .env is normal in containers
	_ = godotenv.Load(CLI.EnvFile)

	lc := config.LoadLogConfig()
	log, err := logger.New(lc.Level, lc.Format, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := kctx.Run(&Context{Ctx: ctx, Log: log}); err != nil {
		log.Error("command failed", zap.String("command", kctx.Command()), zap.Error(err))
		stop()
		_ = log.Sync()
		os.Exit(1)
	}
}
