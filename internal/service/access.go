package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/itchan-dev/nbbs/internal/domain"
	internal_errors "github.com/itchan-dev/nbbs/internal/errors"
	"github.com/itchan-dev/nbbs/internal/logger"
	"github.com/itchan-dev/nbbs/internal/storage"
)

// Access is the access policy: ignored hosts, the per (board, host) interval
// gate and admin password checks.
type Access struct {
	docs   docs
	locks  *Locks
	boards *Board
	log    *slog.Logger

	mu      sync.RWMutex
	ignored map[domain.Host]bool
}

func NewAccess(store DocumentStore, locks *Locks, boards *Board) *Access {
	return &Access{
		docs:    docs{store},
		locks:   locks,
		boards:  boards,
		log:     logger.Component("access_policy"),
		ignored: make(map[domain.Host]bool),
	}
}

// LoadIgnoreList reads ignore_list.json into memory, creating an empty one if absent.
func (a *Access) LoadIgnoreList() error {
	var list domain.IgnoreList
	err := a.docs.store.Read(ignoreListKey, &list)
	if errors.Is(err, storage.ErrNotExist) {
		list = domain.IgnoreList{HostList: []domain.Host{}}
		if err := a.docs.write(ignoreListKey, list); err != nil {
			return err
		}
	} else if err != nil {
		return fmt.Errorf("%w: %w", internal_errors.ErrStorage, err)
	}

	ignored := make(map[domain.Host]bool, len(list.HostList))
	for _, h := range list.HostList {
		ignored[h] = true
	}

	a.mu.Lock()
	a.ignored = ignored
	a.mu.Unlock()

	a.log.Debug("ignore list loaded", "entries", len(ignored))
	return nil
}

// IsIgnoredHost matches host literally against the ignore list.
func (a *Access) IsIgnoredHost(host domain.Host) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ignored[host]
}

// StartBackgroundUpdate periodically reloads the ignore list until ctx is done.
func (a *Access) StartBackgroundUpdate(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		a.log.Warn("ignore list background updates disabled", "interval", interval)
		return
	}
	ticker := time.NewTicker(interval)
	a.log.Info("started ignore list background updates", "interval", interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := a.LoadIgnoreList(); err != nil {
					a.log.Error("ignore list update failed", "error", err)
				}
			case <-ctx.Done():
				a.log.Info("ignore list updates shutting down")
				return
			}
		}
	}()
}

// IntervalGate reports whether host may submit to the board at now, recording
// the submission when it may.
func (a *Access) IntervalGate(id domain.BoardId, host domain.Host, now time.Time) (bool, error) {
	if err := ValidateBoardId(id); err != nil {
		return false, err
	}
	unlock := a.locks.Lock(id)
	defer unlock()

	if err := a.docs.mustBoard(id); err != nil {
		return false, err
	}
	cfg, err := a.docs.config(id)
	if err != nil {
		return false, err
	}
	return a.intervalGateLocked(id, host, now, cfg.IntervalMinutes)
}

func (a *Access) intervalGateLocked(id domain.BoardId, host domain.Host, now time.Time, intervalMinutes int) (bool, error) {
	ledger, err := a.docs.ledger(id)
	if err != nil {
		return false, err
	}

	interval := time.Duration(intervalMinutes) * time.Minute
	if prior, ok := ledger[host]; ok && now.Sub(prior) < interval {
		rateLimitedTotal.WithLabelValues(id).Inc()
		a.log.Debug("interval gate rejected", "board", id, "host", host, "since", now.Sub(prior))
		return false, nil
	}

	ledger[host] = now
	if err := a.docs.write(boardKey(id, ledgerFile), ledger); err != nil {
		return false, err
	}
	return true, nil
}

// CheckPassword delegates to the board registry.
func (a *Access) CheckPassword(id domain.BoardId, password domain.Password) (bool, error) {
	return a.boards.VerifyPassword(id, password)
}
