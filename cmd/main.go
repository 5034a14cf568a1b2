package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	checkAvailabilityHandler "github.com/m04kA/SMC-MarketplaceCore/internal/api/handlers/check_availability"
	createBookingHandler "github.com/m04kA/SMC-MarketplaceCore/internal/api/handlers/create_booking"
	getBookingHandler "github.com/m04kA/SMC-MarketplaceCore/internal/api/handlers/get_booking"
	getUserBookingsHandler "github.com/m04kA/SMC-MarketplaceCore/internal/api/handlers/get_user_bookings"
	priceDecisionHandler "github.com/m04kA/SMC-MarketplaceCore/internal/api/handlers/price_decision"
	proposePriceHandler "github.com/m04kA/SMC-MarketplaceCore/internal/api/handlers/propose_price"
	"github.com/m04kA/SMC-MarketplaceCore/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceCore/internal/config"
	"github.com/m04kA/SMC-MarketplaceCore/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceCore/internal/infra/storage/booking"
	priceRepo "github.com/m04kA/SMC-MarketplaceCore/internal/infra/storage/price"
	slotRepo "github.com/m04kA/SMC-MarketplaceCore/internal/infra/storage/slot"
	"github.com/m04kA/SMC-MarketplaceCore/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-MarketplaceCore/internal/integrations/events"
	bookingsService "github.com/m04kA/SMC-MarketplaceCore/internal/service/bookings"
	"github.com/m04kA/SMC-MarketplaceCore/internal/service/lockmanager"
	"github.com/m04kA/SMC-MarketplaceCore/internal/service/priceapproval"
	"github.com/m04kA/SMC-MarketplaceCore/internal/service/pricegate"
	createBookingUC "github.com/m04kA/SMC-MarketplaceCore/internal/usecase/create_booking"
	"github.com/m04kA/SMC-MarketplaceCore/internal/worker/sweeper"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/logger"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/metrics"
	"github.com/m04kA/SMC-MarketplaceCore/pkg/txmanager"
)

const configPath = "config.toml"

// publisher общий интерфейс для RabbitMQ и заглушки
type publisher interface {
	PublishBookingConfirmed(ctx context.Context, event events.BookingConfirmed) error
	PublishPricePendingApproval(ctx context.Context, event events.PricePendingApproval) error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-MarketplaceCore...")
	log.Info("Configuration loaded from %s", configPath)

	// Метрики: при выключенных метриках *Metrics остается nil, все Record* это допускают
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(
		wrappedDB,
		txmanager.WithMaxRetries(cfg.Locks.MaxTxRetries),
		txmanager.WithBackoff(cfg.Locks.RetryBackoff()),
	)

	// Репозитории
	slotRepository := slotRepo.NewRepository(wrappedDB)
	priceRepository := priceRepo.NewRepository(wrappedDB)
	bookingRepository := bookingRepo.NewRepository(wrappedDB)

	// Публикация событий
	var eventPublisher publisher = events.NopPublisher{}
	if cfg.RabbitMQ.Enabled {
		rabbit, err := events.NewPublisher(cfg.RabbitMQ.URL, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		defer rabbit.Close()
		eventPublisher = rabbit
		log.Info("RabbitMQ publisher initialized")
	}

	// Клиент каталога (опционально)
	var catalogClient createBookingUC.CatalogClient
	if cfg.Catalog.Enabled {
		catalogClient = catalogservice.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout(), log)
		log.Info("Catalog client initialized (url=%s, timeout=%s)", cfg.Catalog.BaseURL, cfg.Catalog.Timeout())
	}

	// Сервисы
	lockManager := lockmanager.NewService(
		slotRepository,
		txMgr,
		metricsCollector,
		lockmanager.Config{LockTTL: cfg.Locks.TTL()},
		log,
	)

	priceRules := domain.PriceRules{
		MinPrice:             cfg.Pricing.MinPrice,
		MaxFutureDays:        cfg.Pricing.MaxFutureDays,
		MaxIncreasePerChange: cfg.Pricing.MaxIncreasePerChange,
		ApprovalThreshold:    cfg.Pricing.ApprovalThreshold,
		DefaultCurrency:      cfg.Pricing.DefaultCurrency,
	}
	priceGate := pricegate.NewService(priceRepository, txMgr, eventPublisher, metricsCollector, priceRules, log)
	priceApproval := priceapproval.NewService(priceRepository, txMgr, metricsCollector, priceRules, log)
	bookingSvc := bookingsService.NewService(bookingRepository, log)

	// Use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		lockManager,
		bookingRepository,
		catalogClient,
		eventPublisher,
		log,
	)

	// Sweeper просроченных блокировок
	var guard sweeper.Guard
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis unavailable (%v), sweeper runs without leader guard", err)
		} else {
			guard = sweeper.NewRedisGuard(redisClient, sweeper.DefaultGuardKey, instanceID(), cfg.Locks.SweepInterval())
			log.Info("Sweeper leader guard enabled (redis=%s)", cfg.Redis.Addr)
		}
		cancelPing()
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	sweepWorker := sweeper.NewWorker(lockManager, guard, cfg.Locks.SweepInterval(), log)
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		sweepWorker.Run(workerCtx)
	}()

	// Handlers
	checkAvailability := checkAvailabilityHandler.NewHandler(lockManager, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	proposePrice := proposePriceHandler.NewHandler(priceGate, log)
	priceDecision := priceDecisionHandler.NewHandler(priceApproval, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.Recovery(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Проверка доступности даты вендора
	api.HandleFunc("/vendors/{vendorId}/slots/availability", checkAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Цены ---
	protected.HandleFunc("/vendors/{vendorId}/services/{serviceId}/prices", proposePrice.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/prices/{priceId}/approve", priceDecision.Approve).Methods(http.MethodPost)
	protected.HandleFunc("/prices/{priceId}/reject", priceDecision.Reject).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	stopWorkers()
	<-sweeperDone

	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}

// instanceID идентификатор экземпляра для ключа sweeper в Redis
func instanceID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s:%d", host, os.Getpid())
}
