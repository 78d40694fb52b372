package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quiz-deck-service/internal/app"
	"quiz-deck-service/internal/catalog"
	"quiz-deck-service/internal/community"
	"quiz-deck-service/internal/config"
	"quiz-deck-service/internal/customdeck"
	"quiz-deck-service/internal/diskarray"
	"quiz-deck-service/internal/infra/fetch"
	"quiz-deck-service/internal/infra/memory"
	pgstore "quiz-deck-service/internal/infra/postgres"
	redisstore "quiz-deck-service/internal/infra/redis"
	transport "quiz-deck-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the deck resolution server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	cachePages := cfg.Decks.CachePages
	if cachePages <= 0 {
		cachePages = diskarray.DefaultCachePages
	}
	pageCache, err := diskarray.NewCache(cachePages)
	if err != nil {
		return err
	}

	manifest := catalog.Manifest{}
	if cfg.Decks.ManifestPath != "" {
		if manifest, err = catalog.LoadManifest(cfg.Decks.ManifestPath); err != nil {
			return err
		}
	}
	deckCatalog := catalog.Load(manifest, pageCache, logger)
	logger.Info("loaded deck catalog",
		zap.Int("decks", deckCatalog.Size()),
		zap.Int("manifestEntries", len(manifest)))

	var records customdeck.RecordFinder = memory.NewRecordStore()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		records = pgstore.NewRecordStore(pool)
	}
	customLoader := customdeck.NewLoader(cfg.Decks.CustomDeckDir, records)

	var docs community.DocumentStore = memory.NewDocumentStore()
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		docs = redisstore.NewDocumentStore(redisClient, redisstore.DefaultDocumentKey)
	}

	fetcher := fetch.NewHTTPFetcher(config.Timeout(cfg.Fetch.Timeout, fetch.DefaultTimeout))
	communityStore := community.NewStore(docs, fetcher, logger)
	communityStore.SetMaxPerAuthor(cfg.Decks.MaxPerUser)

	resolver := app.NewDeckResolver(deckCatalog, customLoader, communityStore, logger)
	handler := transport.NewHandler(resolver, communityStore, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("starting deck service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
