package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"Lee_Meetup/internal/config"
	"Lee_Meetup/internal/pkg"
	"Lee_Meetup/internal/repository/database"
	"Lee_Meetup/internal/repository/file"
	"Lee_Meetup/internal/repository/memory"
	"Lee_Meetup/internal/repository/redis"
	"Lee_Meetup/internal/router"
	"Lee_Meetup/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger := config.NewLogger(cfg.Log)
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	// 启动时恢复上一次的快照
	repos := memory.NewRepositories()
	snap, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if err := repos.Restore(snap); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	logger.Info().
		Str("driver", cfg.Store.Driver).
		Int("users", repos.Users.Count()).
		Int("communities", repos.Communities.Count()).
		Int("events", repos.Events.Count()).
		Msg("state restored")

	tokens, err := pkg.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	sender, closeSender := newSender(cfg.Kafka, logger)
	defer closeSender()
	publisher := service.NewPublisher(sender, cfg.Kafka.BufferSize, cfg.Kafka.FlushInterval, logger)
	hooks := service.Hooks{
		service.NewPersister(store, repos, logger),
		publisher,
	}

	engine := router.InitRouter(router.Deps{
		Auth:              service.NewAuthService(repos.Users, tokens, hooks, newMailer(cfg.SMTP, logger), cfg.Auth.BcryptCost, logger),
		Communities:       service.NewCommunityService(repos.Communities, hooks),
		Events:            service.NewEventService(repos.Events, hooks),
		Logger:            logger,
		AuthRatePerMinute: cfg.RateLimit.AuthPerMinute,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return publisher.Run(gctx)
	})

	return g.Wait()
}

// openStore 按 driver 选择快照后端
func openStore(cfg config.StoreConfig) (service.Store, func(), error) {
	switch strings.ToLower(cfg.Driver) {
	case "mysql", "sqlite":
		db, err := database.Open(strings.ToLower(cfg.Driver), cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		store, err := database.NewSnapshotStore(db)
		if err != nil {
			closeDB()
			return nil, nil, err
		}
		return store, closeDB, nil
	case "redis":
		client, err := redis.NewClient(redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redis.NewSnapshotStore(client, cfg.RedisKey), func() { _ = client.Close() }, nil
	default:
		return file.NewSnapshotStore(afero.NewOsFs(), cfg.Path), func() {}, nil
	}
}

func newSender(cfg config.KafkaConfig, logger zerolog.Logger) (service.Sender, func()) {
	if len(cfg.Brokers) == 0 {
		logger.Info().Msg("no kafka brokers configured, outbox events are logged only")
		return service.LogSender{Log: logger}, func() {}
	}
	producer := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Brokers, Topic: cfg.Topic})
	return producer, func() {
		if err := producer.Close(); err != nil {
			logger.Warn().Err(err).Msg("close kafka producer")
		}
	}
}

func newMailer(cfg config.SMTPConfig, logger zerolog.Logger) pkg.Mailer {
	if cfg.Host == "" {
		logger.Info().Msg("no smtp host configured, welcome mails disabled")
		return pkg.NoopMailer{}
	}
	return pkg.NewSMTPMailer(pkg.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
	})
}
