package setup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/itchan-dev/nbbs/internal/config"
	"github.com/itchan-dev/nbbs/internal/handler"
	"github.com/itchan-dev/nbbs/internal/markdown"
	"github.com/itchan-dev/nbbs/internal/middleware/ratelimiter"
	"github.com/itchan-dev/nbbs/internal/service"
	"github.com/itchan-dev/nbbs/internal/storage/fs"
	"github.com/itchan-dev/nbbs/internal/storage/pg"
)

const floodLimiterExpiration = time.Hour

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config       *config.Config
	Store        service.DocumentStore
	Board        *service.Board
	Access       *service.Access
	Thread       *service.Thread
	Comment      *service.Comment
	FloodLimiter *ratelimiter.KeyRateLimiter // nil when disabled
	Handler      *handler.Handler

	cleanup func() error
}

// Cleanup releases the document store.
func (d *Dependencies) Cleanup() error {
	if d.cleanup == nil {
		return nil
	}
	return d.cleanup()
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	store, cleanup, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	var renderer service.TextRenderer
	if cfg.Public.RenderMarkdown {
		renderer = markdown.New()
	}

	locks := service.NewLocks()
	board := service.NewBoard(store, locks, cfg.Public.BoardDefaults, cfg.Public.BcryptCost)
	access := service.NewAccess(store, locks, board)
	thread := service.NewThread(store, locks, board, access, time.Now)
	comment := service.NewComment(store, locks, board, access, cfg.TripSalt(), renderer, time.Now)

	var flood *ratelimiter.KeyRateLimiter
	if cfg.Public.Http.FloodRps > 0 {
		flood = ratelimiter.New(cfg.Public.Http.FloodRps, cfg.Public.Http.FloodBurst, floodLimiterExpiration)
	}

	return &Dependencies{
		Config:       cfg,
		Store:        store,
		Board:        board,
		Access:       access,
		Thread:       thread,
		Comment:      comment,
		FloodLimiter: flood,
		Handler:      handler.New(board, thread, comment, store, cfg),
		cleanup:      cleanup,
	}, nil
}

func newStore(cfg *config.Config) (service.DocumentStore, func() error, error) {
	switch cfg.Public.Storage.Driver {
	case "pg":
		storage, err := pg.New(cfg.Pg())
		if err != nil {
			return nil, nil, err
		}
		return storage, storage.Cleanup, nil
	case "fs", "":
		root, err := expandHome(cfg.Public.Storage.Root)
		if err != nil {
			return nil, nil, err
		}
		storage, err := fs.New(root)
		if err != nil {
			return nil, nil, err
		}
		return storage, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Public.Storage.Driver)
	}
}

// expandHome resolves a leading "~" to the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
