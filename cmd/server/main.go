package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/cluehunt/internal/clue"
	"github.com/playperu/cluehunt/internal/config"
	"github.com/playperu/cluehunt/internal/database"
	"github.com/playperu/cluehunt/internal/events"
	"github.com/playperu/cluehunt/internal/handler/health"
	"github.com/playperu/cluehunt/internal/handler/live"
	"github.com/playperu/cluehunt/internal/hunt"
	"github.com/playperu/cluehunt/internal/migrations"
	"github.com/playperu/cluehunt/internal/quiz"
	"github.com/playperu/cluehunt/internal/server"
	"github.com/playperu/cluehunt/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	sessions := store.NewSQLiteStore(db)
	checks := map[string]health.Checker{"sqlite": health.SQL(db)}

	// --- Game state: Redis when configured, else SQLite ---
	var gameState hunt.GameStateStore = sessions
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")

		gameState = store.NewRedisGameState(rdb)
		checks["redis"] = health.Redis(rdb)
	}

	// --- Game ---
	bank, err := loadBank(cfg.QuestionsFile)
	if err != nil {
		return err
	}
	logger.Info("question catalog loaded", "questions", bank.Len(), "file", cfg.QuestionsFile)

	compositor, err := clue.New(clue.Options{
		Digits:      cfg.Clue.Digits,
		Width:       cfg.Clue.Width,
		Height:      cfg.Clue.Height,
		Margin:      cfg.Clue.Margin,
		FontSize:    cfg.Clue.FontSize,
		MaxMapIndex: cfg.Clue.MaxMapIndex,
		Backgrounds: clue.NewDirBackgrounds(cfg.AssetsDir),
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("building clue compositor: %w", err)
	}
	if len(cfg.Clue.Digits) < bank.Len()-1 {
		logger.Warn("fewer secret digits than clues; later clues repeat the last digit",
			"digits", len(cfg.Clue.Digits), "questions", bank.Len())
	}

	broker := events.NewBroker()
	controller := hunt.NewController(bank, compositor, sessions, gameState,
		hunt.WithPublisher(broker),
		hunt.WithLogger(logger),
	)

	if cfg.AdminTokenHash == "" {
		logger.Warn("ADMIN_TOKEN_HASH is not set; anyone can start or stop the game")
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Controller:     controller,
		Leaderboard:    hunt.NewLeaderboard(sessions, cfg.LeaderboardLimit),
		Admin:          hunt.NewAdmin(gameState, broker, logger),
		Broker:         broker,
		AdminTokenHash: cfg.AdminTokenHash,
		CORSOrigins:    cfg.CORSOrigins,
		PublicURL:      cfg.PublicURL,
		AssetsDir:      cfg.AssetsDir,
		SPADir:         cfg.SPADir,
	}, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
		r.Mount("/ws", live.NewHandler(logger, broker).Routes())
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func loadBank(path string) (*quiz.Bank, error) {
	if path == "" {
		bank, err := quiz.Default()
		if err != nil {
			return nil, fmt.Errorf("loading embedded catalog: %w", err)
		}
		return bank, nil
	}
	bank, err := quiz.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return bank, nil
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
