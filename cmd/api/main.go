package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/harborlane/importdesk-backend/api/routes"
	"github.com/harborlane/importdesk-backend/internal/auth"
	"github.com/harborlane/importdesk-backend/internal/deposits"
	"github.com/harborlane/importdesk-backend/internal/notifications"
	"github.com/harborlane/importdesk-backend/internal/orders"
	"github.com/harborlane/importdesk-backend/internal/quotes"
	"github.com/harborlane/importdesk-backend/internal/users"
	"github.com/harborlane/importdesk-backend/internal/vehicles"
	"github.com/harborlane/importdesk-backend/internal/workflow"
	"github.com/harborlane/importdesk-backend/pkg/config"
	"github.com/harborlane/importdesk-backend/pkg/db"
	"github.com/harborlane/importdesk-backend/pkg/logger"
	"github.com/harborlane/importdesk-backend/pkg/migrate"
	pkgredis "github.com/harborlane/importdesk-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := pkgredis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	svcs, err := buildServices(dbClient, cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(dbClient *db.Client, cfg *config.Config, logg *logger.Logger) (routes.Services, error) {
	gdb := dbClient.DB()

	userRepo := users.NewRepository(gdb)
	orderRepo := orders.NewRepository(gdb)
	depositRepo := deposits.NewRepository(gdb)
	quoteRepo := quotes.NewRepository(gdb)
	vehicleRepo := vehicles.NewRepository(gdb)
	notificationRepo := notifications.NewRepository(gdb)
	workflowRepo := workflow.NewRepository(gdb)
	sequencer := orders.NewSequencer(gdb)

	workflowSvc, err := workflow.NewService(workflowRepo)
	if err != nil {
		return routes.Services{}, err
	}

	notificationsSvc, err := notifications.NewService(notificationRepo, logg)
	if err != nil {
		return routes.Services{}, err
	}

	ordersSvc, err := orders.NewService(
		orderRepo,
		sequencer,
		workflowSvc,
		depositRepo,
		dbClient,
		notificationsSvc,
		logg,
		cfg.Business.Currency,
	)
	if err != nil {
		return routes.Services{}, err
	}

	depositsSvc, err := deposits.NewService(depositRepo, orderRepo, dbClient, notificationsSvc, logg)
	if err != nil {
		return routes.Services{}, err
	}

	quotesSvc, err := quotes.NewService(quoteRepo, ordersSvc, sequencer, dbClient, notificationsSvc, cfg.Notifications.StaffInbox)
	if err != nil {
		return routes.Services{}, err
	}

	vehiclesSvc, err := vehicles.NewService(vehicleRepo, ordersSvc, dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	usersSvc, err := users.NewService(userRepo, cfg.Password)
	if err != nil {
		return routes.Services{}, err
	}

	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:  userRepo,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:          authSvc,
		Users:         usersSvc,
		Orders:        ordersSvc,
		Deposits:      depositsSvc,
		Quotes:        quotesSvc,
		Vehicles:      vehiclesSvc,
		Workflow:      workflowSvc,
		Notifications: notificationsSvc,
	}, nil
}
