package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/Govind-619/JewelSphere/config"
	"github.com/Govind-619/JewelSphere/events"
	"github.com/Govind-619/JewelSphere/gateway"
	"github.com/Govind-619/JewelSphere/payments"
	"github.com/Govind-619/JewelSphere/repository"
	"github.com/Govind-619/JewelSphere/utils"
	"github.com/redis/go-redis/v9"
)

const (
	kafkaConnectAttempts = 5
	kafkaConnectWait     = 3 * time.Second
	lockWait             = 10 * time.Second
)

// App is the wired service with the resources it owns.
type App struct {
	Config  *config.Config
	Store   repository.Store
	Service *payments.Service
	closers []func() error
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			utils.LogError("Error during shutdown: %v", err)
		}
	}
}

// Bootstrap builds the store, gateway, locker and publisher the
// configuration asks for and wires them into the payment service.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	store, err := openStore(cfg, app)
	if err != nil {
		return nil, err
	}
	app.Store = store

	locker, err := newLocker(ctx, cfg, app)
	if err != nil {
		app.Close()
		return nil, err
	}

	publisher, err := newPublisher(cfg, app)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Service = payments.NewService(store, newGateway(cfg),
		payments.WithLocker(locker),
		payments.WithPublisher(publisher),
		payments.WithGatewayTimeout(cfg.GatewayTimeout),
		payments.WithDefaultCurrency(cfg.DefaultCurrency),
	)
	utils.LogInfo("Payment service ready: gateway=%s store=%s lock=%s", cfg.PaymentGateway, cfg.DBDriver, cfg.LockBackend)
	return app, nil
}

func openStore(cfg *config.Config, app *App) (repository.Store, error) {
	if cfg.DBDriver == "memory" {
		utils.LogInfo("Using in-memory store")
		return repository.NewMemoryStore(), nil
	}
	db, err := config.OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, sqlDB.Close)
	if err := config.Migrate(db); err != nil {
		app.Close()
		return nil, err
	}
	return repository.NewGormStore(db), nil
}

func newGateway(cfg *config.Config) gateway.Gateway {
	if cfg.PaymentGateway == gateway.RazorpayName {
		return gateway.NewRazorpay(gateway.RazorpayConfig{
			KeyID:         cfg.RazorpayKey,
			KeySecret:     cfg.RazorpaySecret,
			WebhookSecret: cfg.RazorpayWebhookSecret,
			CallbackURL:   cfg.PaymentCallbackURL,
		})
	}
	return gateway.NewSimulator(cfg.PublicBaseURL, cfg.RazorpayWebhookSecret)
}

func newLocker(ctx context.Context, cfg *config.Config, app *App) (payments.Locker, error) {
	if cfg.LockBackend != "redis" {
		return payments.NewLocalLocker(), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	app.closers = append(app.closers, client.Close)
	utils.LogInfo("Using redis order locks at %s", cfg.RedisAddr)
	return payments.NewRedisLocker(client, cfg.LockTTL, lockWait), nil
}

func newPublisher(cfg *config.Config, app *App) (events.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.LogPublisher{}, nil
	}
	producer, err := events.NewKafkaProducer(cfg.KafkaBrokers, kafkaConnectAttempts, kafkaConnectWait)
	if err != nil {
		return nil, err
	}
	publisher := events.NewKafkaPublisher(producer, cfg.KafkaTopic)
	app.closers = append(app.closers, publisher.Close)
	return publisher, nil
}
