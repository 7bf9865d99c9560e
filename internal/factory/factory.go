package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/quickquack/internal/api/sse"
	"github.com/mcoot/quickquack/internal/dependencies/clock"
	"github.com/mcoot/quickquack/internal/dependencies/random"
	"github.com/mcoot/quickquack/internal/model"
	"github.com/mcoot/quickquack/internal/services/auth"
	"github.com/mcoot/quickquack/internal/services/board"
	"github.com/mcoot/quickquack/internal/services/game"
	"github.com/mcoot/quickquack/internal/services/position"
	"github.com/mcoot/quickquack/internal/services/prize"
	"github.com/mcoot/quickquack/internal/services/roster"
	"github.com/mcoot/quickquack/internal/storage"
	"github.com/mcoot/quickquack/internal/storage/memory"
	pgstorage "github.com/mcoot/quickquack/internal/storage/postgres"
	redisstorage "github.com/mcoot/quickquack/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// sessionSweepInterval is how often expired sessions are dropped
const sessionSweepInterval = 10 * time.Minute

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Game data
	Board   *model.Board
	Avatars *model.AvatarCatalog

	// Services
	AuthService     *auth.Service
	PositionService *position.Service
	PrizeGuard      *prize.Guard
	GameController  *game.Controller
	RosterRelay     *roster.Relay
	RosterHub       *sse.Hub
	Broadcaster     *sse.Broadcaster

	logger *slog.Logger
	wg     sync.WaitGroup
}

// Config holds configuration for the application factory
type Config struct {
	// BoardFile is a JSON board layout (optional)
	// If empty, the built-in 100-space board is used
	BoardFile string
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds PostgreSQL settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	b := board.Default()
	if cfg.BoardFile != "" {
		loaded, err := board.LoadFile(cfg.BoardFile)
		if err != nil {
			return nil, fmt.Errorf("load board: %w", err)
		}
		b = loaded
	}

	// Create storage based on type
	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	app, err := newWithDependencies(store, b, clock.New(), random.New(), authCfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	logger.Info("application created",
		slog.String("storage", storageTypeOrDefault(cfg.StorageType)),
		slog.Int("board_size", b.Final()),
	)
	return app, nil
}

func storageTypeOrDefault(t string) string {
	if t == "" {
		return StorageTypeMemory
	}
	return t
}

func newStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	switch storageTypeOrDefault(cfg.StorageType) {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		s, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		return s, nil
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		s, err := pgstorage.New(ctx, *cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	b *model.Board,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	logger *slog.Logger,
) (*App, error) {
	avatars, err := model.NewAvatarCatalog(model.DefaultAvatars())
	if err != nil {
		return nil, err
	}

	positionService := position.New(store, b, avatars, clk, logger)
	prizeGuard := prize.New(store, clk, logger)
	gameController := game.NewController(b, avatars, positionService, prizeGuard, rnd, logger)
	authService := auth.New(store, clk, authCfg, logger)
	relay := roster.New(positionService, store, logger)
	hub := sse.NewHub("roster", logger)
	broadcaster := sse.NewBroadcaster(hub, relay, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Board:           b,
		Avatars:         avatars,
		AuthService:     authService,
		PositionService: positionService,
		PrizeGuard:      prizeGuard,
		GameController:  gameController,
		RosterRelay:     relay,
		RosterHub:       hub,
		Broadcaster:     broadcaster,
		logger:          logger.With(slog.String("component", "app")),
	}, nil
}

// Start launches the background workers: the SSE hub, the roster relay
// and the session sweeper. They stop when ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	a.Broadcaster.Attach()

	a.wg.Add(3)
	go func() {
		defer a.wg.Done()
		a.RosterHub.Run()
	}()
	go func() {
		defer a.wg.Done()
		if err := a.RosterRelay.Run(ctx); err != nil {
			a.logger.Error("roster relay exited", slog.String("error", err.Error()))
		}
	}()
	go func() {
		defer a.wg.Done()
		a.sweepSessions(ctx)
	}()

	go func() {
		<-ctx.Done()
		a.RosterHub.Close()
	}()
}

func (a *App) sweepSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.AuthService.CleanExpiredSessions()
		}
	}
}

// Close waits for the workers started by Start and releases storage.
// Cancel the context passed to Start first.
func (a *App) Close() error {
	a.wg.Wait()
	return a.Storage.Close()
}
