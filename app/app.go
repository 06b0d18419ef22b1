// Package app wires every component together and owns the service
// lifecycle from boot to graceful shutdown.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/persona-labs/persona-service/analytics"
	"github.com/persona-labs/persona-service/config"
	"github.com/persona-labs/persona-service/conversation"
	"github.com/persona-labs/persona-service/discord"
	"github.com/persona-labs/persona-service/engine"
	"github.com/persona-labs/persona-service/handlers"
	"github.com/persona-labs/persona-service/health"
	"github.com/persona-labs/persona-service/llm"
	"github.com/persona-labs/persona-service/logging"
	"github.com/persona-labs/persona-service/persona"
	"github.com/persona-labs/persona-service/settings"
	"github.com/persona-labs/persona-service/spintax"
	"github.com/persona-labs/persona-service/storage"
	"github.com/persona-labs/persona-service/trained"
)

type App struct {
	Config    *config.AllConfig
	Logger    *log.Logger
	DB        *sqlx.DB
	Redis     *redis.Client
	Profiles  *persona.Store
	Trained   *trained.Store
	Ledger    *conversation.Ledger
	Resolver  *engine.Resolver
	Sink      *analytics.Sink
	Connector *discord.Connector

	httpServer *http.Server
}

func NewApp() (*App, error) {
	// .env is optional; real deployments use config files.
	_ = godotenv.Load()

	logger := logging.New(os.Getenv("LOG_LEVEL"))

	// 1. Load configuration, creating defaults on first run.
	cfg, err := config.LoadAllConfigs()
	if err != nil {
		return nil, fmt.Errorf("fatal error loading config: %w", err)
	}
	logger.Info("configuration loaded", "home", cfg.Home)

	// 2. Open SQLite and bootstrap the schema.
	db, err := storage.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	logger.Info("database ready", "path", cfg.DatabasePath())

	// 3. Connect redis if configured. The service degrades without it.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, activity feed and settings disabled", "addr", cfg.Redis.Addr, "err", err)
			rdb = nil
		}
		cancel()
	}

	// 4. Load persona profiles and seed starter trained data.
	profiles, err := persona.NewStore(cfg.PersonasDir())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not open persona store: %w", err)
	}
	trainedStore := trained.NewStore(db)
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := trainedStore.SeedDefaults(seedCtx); err != nil {
		logger.Warn("could not seed trained responses", "err", err)
	}
	cancel()

	// 5. Build the resolver pipeline.
	generator := llm.NewClient(cfg.Ollama.URL, cfg.Ollama.Model,
		time.Duration(cfg.Ollama.TimeoutSeconds)*time.Second)
	ledger := conversation.NewLedger()
	resolver := engine.NewResolver(
		profiles,
		ledger,
		trainedStore,
		generator,
		spintax.New(rand.NewSource(time.Now().UnixNano())),
		rand.NewSource(time.Now().UnixNano()+1),
		logging.Component(logger, "engine"),
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Redis:    rdb,
		Profiles: profiles,
		Trained:  trainedStore,
		Ledger:   ledger,
		Resolver: resolver,
	}, nil
}

// Run starts the HTTP server and the optional Discord connector, then
// blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	statsStore := analytics.NewStore(a.DB, a.Redis)
	a.Sink = analytics.NewSink(statsStore, a.Redis, 2, 256, logging.Component(a.Logger, "analytics"))

	server := handlers.NewServer(
		a.Resolver,
		a.Profiles,
		a.Trained,
		statsStore,
		a.Sink,
		settings.NewStore(a.Redis),
		health.NewChecker(a.DB, a.Redis),
		a.Ledger,
		logging.Component(a.Logger, "http"),
	)

	addr := fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port)
	a.httpServer = &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", "addr", addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Discord is optional; an empty token disables the connector.
	if a.Config.Discord.Token != "" {
		connector, err := discord.NewConnector(
			a.Config.Discord.Token,
			a.Config.Discord.ChannelPersonas,
			a.Resolver,
			logging.Component(a.Logger, "discord"),
		)
		if err != nil {
			a.Logger.Error("could not build discord connector", "err", err)
		} else if err := connector.Open(); err != nil {
			a.Logger.Error("could not open discord connector", "err", err)
		} else {
			a.Connector = connector
		}
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		a.shutdown()
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-sc:
		a.Logger.Info("shutting down", "signal", sig)
		a.shutdown()
		return nil
	}
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.Logger.Error("http shutdown failed", "err", err)
		}
	}
	if a.Connector != nil {
		if err := a.Connector.Close(); err != nil {
			a.Logger.Error("discord shutdown failed", "err", err)
		}
	}
	if a.Sink != nil {
		a.Sink.Close()
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("database close failed", "err", err)
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("redis close failed", "err", err)
		}
	}
}
