package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
	"video-portal/config"
	"video-portal/constant"
	"video-portal/handler"
	"video-portal/pkg/rabbitmq"
	"video-portal/repository"
	"video-portal/service"
)

const shutdownTimeout = 10 * time.Second

type app struct {
	repo      repository.Repository
	store     repository.Store
	conn      *amqp.Connection
	publisher *rabbitmq.Publisher
	watch     service.WatchEventService
	auth      service.AuthService
	http      *handler.HTTP
}

func gormLogLevel(cfg *config.Config) gormlogger.LogLevel {
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		return gormlogger.Info
	}
	return gormlogger.Warn
}

// newApp connects to the backing services and builds every service. Redis and
// RabbitMQ are optional: without them the app falls back to an in-process
// store and skips queue traffic.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	repo, err := repository.NewRepo(cfg.DB, gormLogLevel(cfg))
	if err != nil {
		return nil, err
	}

	a := &app{repo: repo}
	if cfg.Redis != nil {
		if err := config.PingRedis(ctx, cfg.Redis); err != nil {
			return nil, err
		}
		a.store = repository.NewRedisStore(cfg.Redis)
	} else {
		zerolog.Ctx(ctx).Warn().Msg("redis not configured, using in-memory session store")
		a.store = repository.NewMemoryStore()
	}

	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("NewRabbitMQConn")
	} else {
		a.conn = conn
		a.publisher = rabbitmq.NewPublisher(conn, cfg.Queue, rabbitmq.TranscodeBinding)
	}

	var external service.IdentityVerifier
	if cfg.Auth.OIDCProviderURL != "" {
		external, err = service.NewOIDCVerifier(ctx, cfg.Auth.OIDCProviderURL, cfg.Auth.OIDCClientID)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to query OIDC provider")
			external = nil
		}
	}

	mail := service.NewMailService(service.NewSMTPMailer(cfg.SMTP))
	var publisher service.Publisher
	if a.publisher != nil {
		publisher = a.publisher
	}

	a.watch = service.NewWatchEventService(repo)
	a.auth = service.NewAuthService(repo, a.store, mail, external, service.AuthConfig{
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
		ResetURL:  cfg.App.BaseURL() + "/reset-password",
	})
	a.http = &handler.HTTP{
		Auth: a.auth,
		Catalog: service.NewCatalogService(repo, cfg.Storage, publisher, service.CatalogConfig{
			Bucket:       cfg.MinIOBucket,
			MediaBaseURL: cfg.App.MediaBaseURL,
		}),
		Playlists: service.NewPlaylistService(repo),
		Watch:     a.watch,
		Feedback:  service.NewFeedbackService(repo),
		Settings:  service.NewSettingsService(repo),
		Users:     service.NewUserService(repo),
		Analytics: service.NewAnalyticsService(repo, a.store, cfg.Analytics.CacheTTL),
		Mail:      mail,
	}
	return a, nil
}

func (a *app) startConsumer(ctx context.Context, cfg *config.Config) {
	if a.conn == nil {
		zerolog.Ctx(ctx).Warn().Msg("rabbitmq unavailable, watch event consumer not started")
		return
	}
	consumer := rabbitmq.NewConsumer(a.conn, cfg.Queue, rabbitmq.WatchEventBinding, cfg.Server.Workers, handler.WatchEventHandler)
	go func() {
		err := consumer.Consume(ctx, handler.ServiceDependencies{WatchEvents: a.watch})
		if err != nil && !errors.Is(err, context.Canceled) {
			zerolog.Ctx(ctx).Error().Err(err).Msg("watch event consumer error")
		}
	}()
}

func (a *app) close(ctx context.Context) {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to close publisher")
		}
	}
}

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("failed to start")
	}
	defer a.close(ctx)
	a.startConsumer(ctx, cfg)

	r := NewRouter(*zerolog.Ctx(ctx), a.http, a.auth, RouterConfig{
		DashboardPath:  cfg.App.DashboardPath,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Str("addr", srv.Addr).Msg("start http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

// RunConsumer runs only the watch event consumer until interrupted.
func RunConsumer(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("failed to start")
	}
	defer a.close(ctx)
	if a.conn == nil {
		zerolog.Ctx(ctx).Fatal().Msg("rabbitmq is required to consume watch events")
	}
	a.startConsumer(ctx, cfg)

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("consumer stopped")
}

// RunMigrate creates or updates the schema and seeds the configured admins.
func RunMigrate(cfg *config.Config) error {
	ctx := setupLogger(cfg)
	repo, err := repository.NewRepo(cfg.DB, gormLogLevel(cfg))
	if err != nil {
		return err
	}
	if err := repo.Migrate(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("migration failed")
		return err
	}
	for _, email := range cfg.Admins {
		if err := repo.AddAdmin(ctx, email); err != nil {
			return err
		}
		zerolog.Ctx(ctx).Info().Str("email", email).Msg("admin seeded")
	}
	zerolog.Ctx(ctx).Info().Msg("migration complete")
	return nil
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
