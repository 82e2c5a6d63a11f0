package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-identity/internal/audit"
	"storefront-identity/internal/config"
	domainAccount "storefront-identity/internal/domain/account"
	domainMessage "storefront-identity/internal/domain/message"
	"storefront-identity/internal/gate"
	"storefront-identity/internal/infrastructure/cache"
	"storefront-identity/internal/infrastructure/database/memory"
	"storefront-identity/internal/infrastructure/database/mongo"
	"storefront-identity/internal/infrastructure/database/postgres"
	"storefront-identity/internal/logger"
	"storefront-identity/internal/notification"
	"storefront-identity/internal/routes"
	"storefront-identity/internal/usecase/account"
	"storefront-identity/internal/usecase/message"
	"storefront-identity/pkg/mqtt"
	"storefront-identity/pkg/utils"

	"go.uber.org/zap"
)

const mailPreviewPath = "/api/users/debug/mail"

// stores is the persistence selected by DB_DRIVER.
type stores struct {
	accounts domainAccount.Repository
	messages domainMessage.Repository
	health   routes.HealthChecker
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
		zap.String("db_driver", cfg.Database.Driver),
	)
	for _, warning := range cfg.Warnings() {
		logger.Warn(warning, logger.Event("insecure_config"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open account store", zap.Error(err))
	}
	defer st.close()

	throttle := newResetThrottle(ctx, cfg)

	transport, outbox := newMailTransport(cfg)

	publisher, disconnect := newAuditPublisher(cfg)
	defer disconnect()

	signer, err := utils.NewTokenSigner(cfg.JWT.Secret, utils.SessionTTL)
	if err != nil {
		logger.Fatal("Failed to create token signer", zap.Error(err))
	}

	accountService := account.NewService(account.Dependencies{
		Repository: st.accounts,
		Hasher:     utils.NewPasswordHasher(cfg.Password.Cost),
		Tokens:     signer,
		Notifier:   notification.NewDispatcher(transport, cfg.SMTP.From, cfg.App.PublicURL),
		Throttle:   throttle,
		Gate:       gate.NewSharedSecretGate(cfg.Admin.PromoteKey),
		Recorder:   audit.NewRecorder(publisher, audit.NewMetricsTracker()),
	})

	go accountService.StartResetCleanupJob(ctx, cfg.Password.ResetCleanupInterval)

	deps := routes.Dependencies{
		Config:         cfg,
		Store:          st.health,
		AccountService: accountService,
		MessageService: message.NewService(st.messages),
		Sessions:       signer,
	}
	if outbox != nil {
		deps.Outbox = outbox
	}
	router := routes.SetupRoutes(ctx, deps)

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	addr := net.JoinHostPort(host, cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown Server ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
	}

	log.Println("Server exited properly")
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := postgres.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &stores{
			accounts: postgres.NewAccountRepository(db),
			messages: postgres.NewMessageRepository(db),
			health:   db,
			close: func() {
				if err := db.Close(); err != nil {
					logger.Error("Failed to close database connection", zap.Error(err))
				}
			},
		}, nil

	case config.DriverMemory:
		logger.Warn("Using in-memory store, data is lost on restart", logger.Event("memory_store"))
		accounts := memory.NewAccountRepository()
		return &stores{
			accounts: accounts,
			messages: memory.NewMessageRepository(),
			health:   accounts,
			close:    func() {},
		}, nil

	default:
		store, err := mongo.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return &stores{
			accounts: mongo.NewAccountRepository(store),
			messages: mongo.NewMessageRepository(store),
			health:   store,
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := store.Close(closeCtx); err != nil {
					logger.Error("Failed to close mongo connection", zap.Error(err))
				}
			},
		}, nil
	}
}

// newResetThrottle falls back to no throttling when Redis is not configured
// or unreachable at startup.
func newResetThrottle(ctx context.Context, cfg *config.Config) account.ResetThrottle {
	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, reset requests are not throttled", zap.Error(err))
		return cache.NoopThrottle{}
	}
	if client == nil {
		return cache.NoopThrottle{}
	}
	return cache.NewResetThrottle(client, cfg.Redis.ResetRequests, cfg.Redis.ResetWindow)
}

// newMailTransport returns the SMTP relay when configured, otherwise an
// in-memory capture outbox that is also returned for the preview route.
func newMailTransport(cfg *config.Config) (notification.Transport, *notification.CaptureTransport) {
	if cfg.SMTP.Configured() {
		logger.Info("Reset emails are sent through SMTP", zap.String("smtp_host", cfg.SMTP.Host))
		return notification.NewSMTPTransport(cfg.SMTP), nil
	}

	outbox := notification.NewCaptureTransport(cfg.App.APIURL+mailPreviewPath, 0)
	return outbox, outbox
}

func newAuditPublisher(cfg *config.Config) (audit.Publisher, func()) {
	if cfg.MQTT.Broker == "" {
		return audit.LogPublisher{}, func() {}
	}

	client := mqtt.NewClient(&mqtt.Config{
		Broker:        cfg.MQTT.Broker,
		ClientID:      cfg.MQTT.ClientID,
		Username:      cfg.MQTT.Username,
		Password:      cfg.MQTT.Password,
		CleanSession:  true,
		AutoReconnect: true,
	})
	if err := client.Connect(); err != nil {
		logger.Warn("MQTT broker unavailable, audit events are only logged", zap.Error(err))
		return audit.LogPublisher{}, func() {}
	}

	return audit.NewMQTTPublisher(client, cfg.MQTT.Topic, cfg.MQTT.QoS), client.Disconnect
}
