package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/healthsync/internal/analysis"
	"github.com/iliyamo/healthsync/internal/config"
	"github.com/iliyamo/healthsync/internal/database"
	"github.com/iliyamo/healthsync/internal/handler"
	"github.com/iliyamo/healthsync/internal/llm"
	"github.com/iliyamo/healthsync/internal/middleware"
	"github.com/iliyamo/healthsync/internal/queue"
	"github.com/iliyamo/healthsync/internal/repository"
	"github.com/iliyamo/healthsync/internal/router"
	"github.com/iliyamo/healthsync/internal/service"
)

type ServeCmd struct {
	Migrate bool `help:"Apply pending migrations before serving."`
}

func (c *ServeCmd) Run(app *Context) error {
	cfg := config.Load()
	log := app.Log

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	if c.Migrate {
		if err := database.Migrate(app.Ctx, db, database.Migrations(), log); err != nil {
			return err
		}
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting and response cache disabled")
	} else {
		defer rdb.Close()
	}

	client, err := llm.New(app.Ctx, cfg.LLM, log)
	if err != nil {
		return err
	}
	defer client.Close()
	analyzer := analysis.NewAnalyzer(client, log, cfg.LLM.Timeout)

	users := repository.NewUserRepo(db)
	habits := repository.NewHabitRepo(db)
	ledger := repository.NewLedgerRepo(db)
	records := repository.NewRecordRepo(db)
	paperwork := repository.NewPaperworkRepo(db)
	predictions := repository.NewPredictionRepo(db)
	medications := repository.NewMedicationRepo(db)
	contacts := repository.NewContactRepo(db)
	alerts := repository.NewAlertRepo(db)
	chats := repository.NewChatRepo(db)
	refresh := repository.NewRefreshTokenRepo(db)

	publisher := queue.NewPublisher(cfg.AMQPURL, log)

	h := router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, service.NewUserService(users, cfg.BcryptCost), refresh, log),
		Habits:    handler.NewHabitHandler(service.NewHabitService(users, habits), log),
		Records:   handler.NewRecordHandler(service.NewRecordService(users, records, analyzer), cfg.UploadMaxBytes, log),
		Tokens:    handler.NewTokenHandler(service.NewTokenService(users, ledger), log),
		Paperwork: handler.NewPaperworkHandler(service.NewPaperworkService(users, paperwork, analyzer), log),
		Predictions: handler.NewPredictionHandler(
			service.NewPredictionService(users, habits, records, predictions, analyzer), log),
		Care: handler.NewCareHandler(
			service.NewMedicationService(users, medications, analyzer),
			service.NewContactService(users, contacts),
			service.NewEmergencyService(users, habits, contacts, alerts, analyzer, publisher, log),
			log),
		Assistant: handler.NewAssistantHandler(service.NewAssistantService(users, habits, records, chats, analyzer), log),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(users, habits, records, ledger), log),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLog(log))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, h.Auth)
	router.RegisterAPI(e, h, router.Guards{
		JWTSecret: cfg.JWTSecret,
		AILimit:   middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env),
			zap.String("llm_provider", cfg.LLM.Provider))
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-app.Ctx.Done():
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
