// Command servicecrm runs the service CRM HTTP API.
//
// @title                       Service CRM API
// @version                     1.0
// @description                 Customers, installed water-treatment assets, service orders and maintenance alerts.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	_ "github.com/aquaflow/servicecrm/docs"
	"github.com/aquaflow/servicecrm/internal/api"
	"github.com/aquaflow/servicecrm/internal/api/handler"
	"github.com/aquaflow/servicecrm/internal/core/service"
	"github.com/aquaflow/servicecrm/internal/infrastructure/config"
	"github.com/aquaflow/servicecrm/internal/infrastructure/db/mongo"
	"github.com/aquaflow/servicecrm/internal/infrastructure/db/redis"
	"github.com/aquaflow/servicecrm/internal/infrastructure/queue"
	"github.com/aquaflow/servicecrm/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env is fine; the environment may be set another way.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Can't use the structured logger yet since it's not initialised.
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment(), Service: "servicecrm"})
	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("servicecrm stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("starting servicecrm")

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = uuid.NewString()
		log.Warn().Msg("JWT_SECRET not set, using an ephemeral secret; sessions end on restart")
	}

	// --- Stores ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")

	customers := mongo.NewCustomerRepository(db)
	products := mongo.NewProductRepository(db)
	assets := mongo.NewAssetRepository(db)
	orders := mongo.NewServiceOrderRepository(db)
	users := mongo.NewUserRepository(db)
	roles := mongo.NewRoleRepository(db)
	sessions := redis.NewSessionStore(rdb)
	idem := redis.NewIdempotencyStore(rdb)

	// --- Recompute pipeline ---
	recompute := service.NewRecomputeService(assets, orders, logger.Component("recompute"))
	dispatcher := queue.NewDispatcher(cfg.Recompute.Workers, recompute, logger.Component("recompute"))
	dispatcher.Start(ctx)
	go dispatcher.ScanEvery(ctx, cfg.Recompute.ScanInterval)
	dispatcher.Enqueue("")

	// --- Services ---
	authSvc := service.NewAuthService(users, sessions, jwtSecret, cfg.Auth.TokenTTL, log)
	customerSvc := service.NewCustomerService(customers, assets, orders, log)
	productSvc := service.NewProductService(products, assets, log)
	assetSvc := service.NewAssetService(assets, products, customers, users, orders, dispatcher, log)
	orderSvc := service.NewServiceOrderService(orders, customers, assets, users, idem, dispatcher, log)
	userSvc := service.NewUserService(users, roles, log)
	roleSvc := service.NewRoleService(roles, users, log)
	dashboardSvc := service.NewDashboardService(customers, assets, orders, log)

	if cfg.Seed.AdminEmail != "" && cfg.Seed.AdminPassword != "" {
		seeded, err := userSvc.Bootstrap(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
		if err != nil {
			return err
		}
		if seeded {
			log.Info().Str("email", cfg.Seed.AdminEmail).Msg("administrator seeded")
		}
	}

	// --- HTTP ---
	e := api.NewRouter(api.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc, assetSvc),
		Customers:     handler.NewCustomerHandler(customerSvc),
		Products:      handler.NewProductHandler(productSvc),
		Assets:        handler.NewAssetHandler(assetSvc),
		ServiceOrders: handler.NewServiceOrderHandler(orderSvc),
		Users:         handler.NewUserHandler(userSvc),
		Roles:         handler.NewRoleHandler(roleSvc),
		Health: handler.NewHealthHandler(map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   redis.Healthcheck(rdb),
		}),
	}, authSvc, logger.Component("http"))

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
