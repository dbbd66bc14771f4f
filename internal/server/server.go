package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pos-till/internal/clock"
	"pos-till/internal/config"
	"pos-till/internal/database"
	"pos-till/internal/display"
	"pos-till/internal/kvstore"
	"pos-till/internal/metrics"
	custommiddleware "pos-till/internal/middleware"
	"pos-till/internal/repository"
	"pos-till/internal/service"
	"pos-till/internal/transport"

	"github.com/bwmarrin/snowflake"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Infra holds the process-wide resources the services are built on.
// Redis and DB are nil unless the configured backend needs them.
type Infra struct {
	Store    *kvstore.Store
	Redis    *redis.Client
	DB       *database.Service
	Registry *prometheus.Registry
	Clock    clock.Clock
}

// OpenInfra connects the configured store backend.
func OpenInfra(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Infra, error) {
	infra := &Infra{
		Registry: prometheus.NewRegistry(),
		Clock:    clock.New(),
	}

	var backend kvstore.Backend
	switch cfg.Store.Backend {
	case config.StoreMemory:
		backend = kvstore.NewMemoryBackend()
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		infra.Redis = client
		backend = kvstore.NewRedisBackend(client)
	case config.StorePostgres:
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		infra.DB = db
		backend = kvstore.NewPostgresBackend(db.DB())
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	infra.Store = kvstore.New(backend, cfg.Store.Prefix, logger)
	logger.Info("Store ready", zap.String("backend", cfg.Store.Backend), zap.String("prefix", cfg.Store.Prefix))
	return infra, nil
}

// Close releases the store and any connections.
func (i *Infra) Close() error {
	var errs []error
	if i.Store != nil {
		errs = append(errs, i.Store.Close())
	}
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	if i.DB != nil {
		errs = append(errs, i.DB.Close())
	}
	return errors.Join(errs...)
}

type Server struct {
	*http.Server
	config    *config.Config
	logger    *zap.Logger
	infra     *Infra
	users     service.UserService
	stopRelay context.CancelFunc
}

func NewServer(cfg *config.Config, logger *zap.Logger, infra *Infra) (*Server, error) {
	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}
	node, err := snowflake.NewNode(cfg.POS.NodeID)
	if err != nil {
		return nil, fmt.Errorf("invalid POS_NODE_ID: %w", err)
	}

	infra.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	tillMetrics := metrics.New(infra.Registry, cfg.Server.Env)

	// Create router
	router := chi.NewRouter()
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.IsDevelopment()))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.RequireJSON(logger))

	router.Get("/health", healthHandler(cfg, infra))
	router.Handle("/metrics", promhttp.HandlerFor(infra.Registry, promhttp.HandlerOpts{}))

	// Display fan-out. With redis every instance relays the shared channel
	// into its own hub, so a display can attach to any of them.
	hub := display.NewHub()
	var notifier display.Notifier = hub
	relayCtx, stopRelay := context.WithCancel(context.Background())
	if infra.Redis != nil {
		notifier = display.NewRedisPublisher(infra.Redis, cfg.POS.DisplayChannel, logger)
		go display.Relay(relayCtx, infra.Redis, cfg.POS.DisplayChannel, hub, logger)
	}

	// Initialize repositories
	store := infra.Store
	userRepo := repository.NewUserRepository(store)
	refreshTokenRepo := repository.NewRefreshTokenRepository(store)
	productRepo := repository.NewProductRepository(store)
	customerRepo := repository.NewCustomerRepository(store)
	sessionRepo := repository.NewCashSessionRepository(store)

	// Initialize services
	ledger := service.NewSaleLedger(repository.NewSaleRepository(store))
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT.Secret, service.TokenTTL{
		Access:  time.Duration(cfg.JWT.AccessExpiry) * time.Minute,
		Refresh: time.Duration(cfg.JWT.RefreshExpiry) * 24 * time.Hour,
	}, infra.Clock, logger)
	cashService := service.NewCashSessionService(sessionRepo, ledger, infra.Clock, tillMetrics, logger)
	inventoryService := service.NewInventoryService(
		productRepo,
		repository.NewCategoryRepository(productRepo),
		repository.NewStockMovementRepository(store),
		infra.Clock,
		cfg.POS.DefaultTaxRate,
		logger,
	)
	workspaces := service.NewWorkspaces(service.CartDeps{
		Suspended:      repository.NewSuspendedSaleRepository(store),
		Sessions:       cashService,
		Ledger:         ledger,
		Display:        notifier,
		Clock:          infra.Clock,
		IDs:            node,
		Metrics:        tillMetrics,
		Logger:         logger,
		DefaultTaxRate: cfg.POS.DefaultTaxRate,
	})
	tillService := service.NewTillService(workspaces, productRepo, customerRepo)
	customerService := service.NewCustomerService(customerRepo, ledger, infra.Clock)
	supplierService := service.NewSupplierService(repository.NewSupplierRepository(store), infra.Clock)
	reportService := service.NewReportService(ledger, sessionRepo, inventoryService, infra.Clock)

	// Create auth and rate limit middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	var counter custommiddleware.Counter = custommiddleware.NewMemoryCounter()
	if infra.Redis != nil {
		counter = custommiddleware.NewRedisCounter(infra.Redis)
	}
	loginLimit := custommiddleware.RateLimitMiddleware(counter, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.LoginRequests,
		Window:            time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		KeyPrefix:         cfg.Store.Prefix + "ratelimit:login:",
	}, logger)

	// Register routes
	transport.NewUserHandler(userService, logger).RegisterRoutes(router, authMiddleware, loginLimit)
	transport.NewCashHandler(cashService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewCartHandler(tillService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewReportHandler(reportService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewProductHandler(inventoryService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewCustomerHandler(customerService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewSupplierHandler(supplierService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewDisplayHandler(hub, logger).RegisterRoutes(router, authMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:        fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:     router,
			IdleTimeout: time.Minute,
			ReadTimeout: 10 * time.Second,
			// no WriteTimeout: the display stream stays open
		},
		config:    cfg,
		logger:    logger,
		infra:     infra,
		users:     userService,
		stopRelay: stopRelay,
	}

	return server, nil
}

// SeedDefaults creates the built-in admin, manager and cashier accounts
// when they are missing.
func (s *Server) SeedDefaults(ctx context.Context) error {
	return s.users.SeedDefaults(ctx)
}

func healthHandler(cfg *config.Config, infra *Infra) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status": "ok",
			"store":  cfg.Store.Backend,
		}
		status := http.StatusOK
		if infra.DB != nil {
			dbHealth := infra.DB.Health(r.Context())
			body["database"] = dbHealth
			if dbHealth["status"] != "up" {
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}
		if infra.Redis != nil {
			if err := infra.Redis.Ping(r.Context()).Err(); err != nil {
				body["redis"] = "down"
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
			} else {
				body["redis"] = "up"
			}
		}
		custommiddleware.RespondWithJSON(w, status, body)
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	s.stopRelay()
	if err := s.infra.Close(); err != nil {
		s.logger.Error("Failed to close store", zap.Error(err))
	}

	s.logger.Sync()
	return nil
}
