// Package briefeeinfach собирает основное приложение: хранилище, кэш,
// внешние клиенты, сервисы и HTTP-сервер.
package briefeeinfach

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/briefe-einfach/internal/cache"
	"github.com/magabrotheeeer/briefe-einfach/internal/config"
	"github.com/magabrotheeeer/briefe-einfach/internal/lib/jwt"
	"github.com/magabrotheeeer/briefe-einfach/internal/lib/sl"
	"github.com/magabrotheeeer/briefe-einfach/internal/llm"
	"github.com/magabrotheeeer/briefe-einfach/internal/migrations"
	"github.com/magabrotheeeer/briefe-einfach/internal/paymentprovider"
	"github.com/magabrotheeeer/briefe-einfach/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/briefe-einfach/internal/services/auth"
	checkoutservice "github.com/magabrotheeeer/briefe-einfach/internal/services/checkout"
	explainservice "github.com/magabrotheeeer/briefe-einfach/internal/services/explain"
	"github.com/magabrotheeeer/briefe-einfach/internal/storage/repository"

	"github.com/streadway/amqp"
)

type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	cache      *cache.Cache
	rabbitConn *amqp.Connection
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	if err = repository.CheckDatabaseReady(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var llmClient explainservice.Completer
	if cfg.Explainer.APIKey != "" {
		llmClient = llm.NewClient(cfg.Explainer.APIKey, cfg.Explainer.Model, cfg.Explainer.BaseURL,
			&http.Client{Timeout: cfg.Explainer.CallTimeout})
	} else {
		logger.Warn("no explainer api key set, using local template")
	}

	providerClient := paymentprovider.NewClient(cfg.PaymentProvider.SecretKey)

	var rabbitConn *amqp.Connection
	var notifier checkoutservice.Notifier
	if cfg.Notifications.RabbitURL != "" {
		rabbitConn, err = rabbitmq.Connect(cfg.Notifications.RabbitURL, 5, 3*time.Second)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetNotificationQueues())
		if err != nil {
			return nil, err
		}
		notifier = rabbitmq.NewNotificationPublisher(ch)
	} else {
		logger.Warn("no rabbitmq url set, subscription emails disabled")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)

	authSvc := authservice.NewAuthService(db, jwtMaker, cacheRedis, logger)
	explainSvc := explainservice.New(llmClient, cacheRedis, cfg.Explainer.CacheTTL, logger)
	checkoutSvc := checkoutservice.New(db, providerClient, notifier, cfg.PaymentProvider, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, authSvc, explainSvc, checkoutSvc)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		cache:      cacheRedis,
		rabbitConn: rabbitConn,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", sl.Err(closeErr))
		}
		if a.rabbitConn != nil {
			if closeErr := a.rabbitConn.Close(); closeErr != nil {
				a.logger.Error("failed to close rabbitmq connection", sl.Err(closeErr))
			}
		}
		return err
	}
}
