package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/autoparts-tn/orders-api/internal/clients"
	"github.com/autoparts-tn/orders-api/internal/config"
	"github.com/autoparts-tn/orders-api/internal/database"
	"github.com/autoparts-tn/orders-api/internal/handlers"
	"github.com/autoparts-tn/orders-api/internal/models"
	"github.com/autoparts-tn/orders-api/internal/outbox"
	"github.com/autoparts-tn/orders-api/internal/repository"
	"github.com/autoparts-tn/orders-api/internal/service"
	"github.com/autoparts-tn/orders-api/pkg/kafka"
	"github.com/autoparts-tn/orders-api/pkg/logger"
	"github.com/autoparts-tn/orders-api/pkg/middleware"
	"github.com/autoparts-tn/orders-api/pkg/retry"
)

type Server struct {
	config              *config.Config
	logger              logger.Logger
	router              *mux.Router
	httpServer          *http.Server
	db                  *database.Database
	orderService        OrderService
	catalog             CatalogService
	rateLimiter         *middleware.RateLimiter
	outboxProcessor     *outbox.Processor
	deadLetterProcessor *outbox.DeadLetterProcessor
	kafkaProducer       *kafka.Producer
	kafkaConsumer       *kafka.Consumer
}

// NewServer wires the full application: database, repositories, services,
// outbox processors and, when enabled, the Kafka producer and consumer.
func NewServer(cfg *config.Config, logger logger.Logger) (*Server, error) {
	r := mux.NewRouter()

	db, err := database.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	orderRepo := repository.NewOrderRepository(db, logger)
	addressRepo := repository.NewAddressRepository(db, logger)
	outboxRepo := repository.NewOutboxRepository(db, logger)
	dlqRepo := repository.NewDeadLetterRepository(db, logger)

	orderService := service.NewOrderService(orderRepo, addressRepo, outboxRepo, logger)
	catalogClient := clients.NewCatalogClient(cfg.Catalog, logger)

	processorConfig := &outbox.ProcessorConfig{
		PollingInterval: 5 * time.Second,
		BatchSize:       10,
		MaxRetries:      3,
		BackoffStrategy: retry.NewDefaultExponentialBackoff(),
		UseDLQ:          true,
	}
	outboxProcessor := outbox.NewProcessor(outboxRepo, dlqRepo, logger, processorConfig)

	dlqProcessorConfig := &outbox.DeadLetterProcessorConfig{
		PollingInterval: 30 * time.Second,
		BatchSize:       5,
		MaxRetries:      5,
		BackoffStrategy: &retry.ExponentialBackoff{
			InitialInterval: 1 * time.Second,
			MaxInterval:     2 * time.Minute,
			Multiplier:      2.0,
			JitterFactor:    0.1,
		},
	}
	deadLetterProcessor := outbox.NewDeadLetterProcessor(dlqRepo, outboxRepo, logger, dlqProcessorConfig)

	server := &Server{
		router: r,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:              logger,
		config:              cfg,
		db:                  db,
		orderService:        orderService,
		catalog:             catalogClient,
		outboxProcessor:     outboxProcessor,
		deadLetterProcessor: deadLetterProcessor,
		rateLimiter: middleware.NewRateLimiter(&middleware.RateLimiterConfig{
			GlobalMaxTokens:   100,
			GlobalRefillRate:  50,
			IPMaxTokens:       20,
			IPRefillRate:      10,
			TrustForwardedFor: true,
		}, logger),
	}

	// Without a broker, published events are logged and marked done so the
	// outbox table does not grow unbounded.
	var eventHandler outbox.MessageHandler = outbox.NewLogHandler(logger)

	if cfg.Kafka.Enabled {
		kafkaProducer, err := kafka.NewProducer(cfg.Kafka.Brokers, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
		}
		server.kafkaProducer = kafkaProducer
		eventHandler = outbox.NewKafkaHandler(kafkaProducer, cfg.Kafka.OrdersTopic, logger)

		kafkaConsumer, err := kafka.NewConsumer(&kafka.ConsumerConfig{
			Brokers:       cfg.Kafka.Brokers,
			Topics:        []string{cfg.Kafka.OrdersTopic},
			ConsumerGroup: cfg.Kafka.ConsumerGroup,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
		}
		kafkaConsumer.RegisterHandler(cfg.Kafka.OrdersTopic, handlers.NewOrderEventsHandler(logger))
		server.kafkaConsumer = kafkaConsumer
	}

	for _, eventType := range []string{
		models.EventOrderCreated,
		models.EventOrderStatusChanged,
		models.EventPaymentStatusChanged,
	} {
		outboxProcessor.RegisterHandler(eventType, eventHandler)
		deadLetterProcessor.RegisterHandler(eventType, eventHandler)
	}

	server.setupRoutes()

	outboxProcessor.Start()
	deadLetterProcessor.Start()

	if server.kafkaConsumer != nil {
		if err := server.kafkaConsumer.Start(); err != nil {
			logger.Error("Failed to start Kafka consumer", "error", err)
			// Non-fatal, the API keeps serving without the consumer.
		}
	}

	return server, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.outboxProcessor.Stop()
	s.deadLetterProcessor.Stop()
	s.rateLimiter.Stop()

	if s.kafkaConsumer != nil {
		if err := s.kafkaConsumer.Stop(); err != nil {
			s.logger.Error("Error stopping Kafka consumer", "error", err)
		}
	}

	if s.kafkaProducer != nil {
		if err := s.kafkaProducer.Close(); err != nil {
			s.logger.Error("Error closing Kafka producer", "error", err)
		}
	}

	if err := s.db.Close(); err != nil {
		s.logger.Error("Error closing database connection", "error", err)
	}

	return s.httpServer.Shutdown(ctx)
}

// setupRoutes configures all the routes for our API
func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.rateLimiter.Middleware)

	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", s.healthCheckHandler).Methods(http.MethodGet)

	// Storefront endpoints
	api.HandleFunc("/orders", s.createOrderHandler).Methods(http.MethodPost)
	api.HandleFunc("/orders", s.getOrdersHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/number/{orderNumber}", s.getOrderByNumberHandler).Methods(http.MethodGet)

	// Catalog lookups backing the vehicle drill-down
	catalog := api.PathPrefix("/catalog").Subrouter()
	catalog.HandleFunc("/manufacturers", s.getManufacturersHandler).Methods(http.MethodGet)
	catalog.HandleFunc("/models", s.getModelsHandler).Methods(http.MethodGet)
	catalog.HandleFunc("/vehicles", s.getVehiclesHandler).Methods(http.MethodGet)
	catalog.HandleFunc("/categories", s.getCategoriesHandler).Methods(http.MethodGet)
	catalog.HandleFunc("/articles", s.getArticlesHandler).Methods(http.MethodGet)

	// Back-office endpoints
	admin := s.router.PathPrefix("/api/v1/admin").Subrouter()
	admin.HandleFunc("/orders", s.getAdminOrdersHandler).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}", s.getAdminOrderHandler).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}", s.updateOrderStatusHandler).Methods(http.MethodPatch)
	admin.HandleFunc("/orders/{id}/payment", s.updatePaymentStatusHandler).Methods(http.MethodPatch)
	admin.HandleFunc("/stats", s.getStatsHandler).Methods(http.MethodGet)
}

// Middleware for logging requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		s.logger.Info("Request processed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
			"remoteAddr", r.RemoteAddr,
		)
	})
}
