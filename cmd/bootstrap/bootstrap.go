package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"noq-clinic-queue/config"
	deliveryHttp "noq-clinic-queue/internal/delivery/http"
	"noq-clinic-queue/internal/delivery/http/handler"
	"noq-clinic-queue/internal/delivery/http/middleware"
	domainRepo "noq-clinic-queue/internal/domain/repository"
	"noq-clinic-queue/internal/infrastructure/cache"
	"noq-clinic-queue/internal/infrastructure/database"
	"noq-clinic-queue/internal/infrastructure/messaging"
	"noq-clinic-queue/internal/infrastructure/metrics"
	"noq-clinic-queue/internal/repository"
	"noq-clinic-queue/internal/service"
	"noq-clinic-queue/internal/usecase"
	"noq-clinic-queue/pkg/jwt"
	"noq-clinic-queue/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	sweepTimeout    = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Publisher   *messaging.RabbitMQPublisher
	Server      *http.Server
}

type repositories struct {
	patient domainRepo.PatientRepository
	user    domainRepo.UserRepository
	audit   domainRepo.AuditLogRepository
}

// New creates a new App instance with all dependencies initialized.
// The recovery sweep runs here, so by the time Run is called no patient is
// left held by a previous process.
func New() (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	applyLogLevel(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	log := logrus.StandardLogger()

	repos, err := app.initializeStore(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	sessionStore, err := app.initializeSessionStore(cfg, log)
	if err != nil {
		app.Close()
		return nil, err
	}

	publisher, err := app.initializePublisher(cfg, log)
	if err != nil {
		app.Close()
		return nil, err
	}

	collector := metrics.NewCollector()
	auditService := service.NewAuditService(log, repos.audit)

	// Release patients stranded by a crash BEFORE accepting traffic
	sweeper := service.NewRecoverySweeper(repos.patient, auditService, collector, log)
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	if _, err := sweeper.Sweep(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to run recovery sweep: %w", err)
	}

	app.Server = initializeServer(cfg, log, repos, sessionStore, publisher, auditService, collector)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

func applyLogLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Unknown LOG_LEVEL %q, keeping info", level)
		return
	}
	logrus.SetLevel(parsed)
}

func (app *App) initializeStore(cfg *config.Config) (*repositories, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logrus.Warn("Using in-memory store, data is lost on restart")
		return &repositories{
			patient: repository.NewMemoryPatientRepository(),
			user:    repository.NewMemoryUserRepository(),
			audit:   repository.NewMemoryAuditLogRepository(),
		}, nil
	case config.StoreDriverPostgres:
		if err := database.RunMigrations(cfg.DB); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		db, err := database.NewPostgresConnection(cfg.DB, cfg.App)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		app.DB = db
		logrus.Info("Database connected successfully")

		return &repositories{
			patient: repository.NewPatientRepository(db),
			user:    repository.NewUserRepository(db),
			audit:   repository.NewAuditLogRepository(db),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func (app *App) initializeSessionStore(cfg *config.Config, log *logrus.Logger) (service.SessionStore, error) {
	if cfg.Redis.Host == "" {
		log.Warn("REDIS_HOST not set, sessions are kept in memory")
		return service.NewMemorySessionStore(), nil
	}

	redisClient, err := cache.NewRedisClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	return service.NewRedisSessionStore(redisClient), nil
}

func (app *App) initializePublisher(cfg *config.Config, log *logrus.Logger) (service.NotificationPublisher, error) {
	if cfg.Broker.URL == "" {
		logrus.Warn("BROKER_URL not set, patient notifications are only logged")
		return service.NewLogNotificationPublisher(log), nil
	}

	publisher, err := messaging.NewRabbitMQPublisher(cfg.Broker.URL, cfg.Broker.Queue, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	app.Publisher = publisher
	logrus.Infof("RabbitMQ connected, publishing to queue %s", cfg.Broker.Queue)

	return publisher, nil
}

// initializeServer creates and configures the HTTP server
func initializeServer(
	cfg *config.Config,
	log *logrus.Logger,
	repos *repositories,
	sessionStore service.SessionStore,
	publisher service.NotificationPublisher,
	auditService service.AuditService,
	collector *metrics.Collector,
) *http.Server {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	tokenGenerator := service.NewTokenGenerator(cfg.Queue.TokenPrefix)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(log, repos.user, jwtService, sessionStore, auditService)
	queueUsecase := usecase.NewQueueUsecase(log, repos.patient, tokenGenerator, auditService, collector, cfg.App.Timezone)
	consultationUsecase := usecase.NewConsultationUsecase(log, repos.patient, auditService, collector)
	statusUsecase := usecase.NewStatusUsecase(log, repos.patient, cfg.Queue)
	notificationUsecase := usecase.NewNotificationUsecase(log, repos.patient, publisher, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, repos.audit)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	patientHandler := handler.NewPatientHandler(queueUsecase, notificationUsecase, customValidator)
	queueHandler := handler.NewQueueHandler(queueUsecase, statusUsecase)
	consultationHandler := handler.NewConsultationHandler(consultationUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, sessionStore, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigin)
	metricsMiddleware := middleware.NewMetricsMiddleware(collector)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		patientHandler,
		queueHandler,
		consultationHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		metricsMiddleware,
		collector.Handler(),
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s, store: %s", app.Config.App.Env, app.Config.Store.Driver)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, broker)
func (app *App) Close() {
	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			logrus.Warnf("Failed to close RabbitMQ publisher: %v", err)
		}
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
