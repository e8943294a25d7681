package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/davidrenteria/storefront-backend/api/routes"
	"github.com/davidrenteria/storefront-backend/internal/auth"
	"github.com/davidrenteria/storefront-backend/internal/cart"
	"github.com/davidrenteria/storefront-backend/internal/catalog"
	"github.com/davidrenteria/storefront-backend/internal/checkout"
	"github.com/davidrenteria/storefront-backend/internal/orders"
	"github.com/davidrenteria/storefront-backend/internal/users"
	"github.com/davidrenteria/storefront-backend/pkg/auth/session"
	"github.com/davidrenteria/storefront-backend/pkg/config"
	"github.com/davidrenteria/storefront-backend/pkg/db"
	"github.com/davidrenteria/storefront-backend/pkg/logger"
	"github.com/davidrenteria/storefront-backend/pkg/metrics"
	"github.com/davidrenteria/storefront-backend/pkg/migrate"
	"github.com/davidrenteria/storefront-backend/pkg/redis"
	"github.com/davidrenteria/storefront-backend/pkg/storage/gcs"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())

	var catalogService catalog.Service
	if cfg.GCS.BucketName != "" {
		blob, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap image storage", err)
			os.Exit(1)
		}
		defer func() {
			if err := blob.Close(); err != nil {
				logg.Error(context.Background(), "error closing image storage", err)
			}
		}()
		catalogService, err = catalog.NewService(catalogRepo, blob, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create catalog service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "image storage not configured, product image uploads disabled")
		catalogService, err = catalog.NewService(catalogRepo, nil, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create catalog service", err)
			os.Exit(1)
		}
	}

	cartStore, err := cart.NewStore(redisClient, cfg.Cart)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersService, err := orders.NewService(ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	checkoutService, err := checkout.NewService(dbClient, ordersRepo, metrics.NewCheckoutMetrics(registry), logg, cfg.Checkout)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			SessionManager: sessionManager,
			Gatherer:       registry,

			AuthService:     authService,
			CatalogService:  catalogService,
			CatalogRepo:     catalogRepo,
			CartStore:       cartStore,
			CheckoutService: checkoutService,
			OrdersService:   ordersService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
