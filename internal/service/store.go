package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/itchan-dev/nbbs/internal/domain"
	internal_errors "github.com/itchan-dev/nbbs/internal/errors"
	"github.com/itchan-dev/nbbs/internal/storage"
)

// DocumentStore is a key -> JSON document store. Writes are atomic per document only.
type DocumentStore interface {
	Read(key string, v any) error
	Write(key string, v any) error
	Exists(key string) (bool, error)
	Delete(key string) error
	List(prefix string) ([]string, error)
	Ping(ctx context.Context) error
}

const (
	passwordFile   = "password.json"
	configFile     = "config.json"
	indexFile      = "threads.json"
	ledgerFile     = "ips.json"
	creatingMarker = ".creating"
	threadsDir     = "threads"

	ignoreListKey = "ignore_list.json"
)

var boardIdPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateBoardId keeps board ids usable as a single path segment.
func ValidateBoardId(id domain.BoardId) error {
	if !boardIdPattern.MatchString(id) {
		return internal_errors.Validation("Invalid ID '%s'.", id)
	}
	return nil
}

func boardKey(id domain.BoardId, name string) string {
	return id + "/" + name
}

func threadKey(id domain.BoardId, threadId domain.ThreadId) string {
	return fmt.Sprintf("%s/%s/%d.json", id, threadsDir, threadId)
}

// docs wraps a DocumentStore with typed accessors for the board layout.
// Callers hold the board lock.
type docs struct {
	store DocumentStore
}

func (d docs) read(key string, v any) error {
	if err := d.store.Read(key, v); err != nil {
		return fmt.Errorf("%w: %w", internal_errors.ErrStorage, err)
	}
	return nil
}

func (d docs) write(key string, v any) error {
	if err := d.store.Write(key, v); err != nil {
		return fmt.Errorf("%w: %w", internal_errors.ErrStorage, err)
	}
	return nil
}

// boardExists treats password.json as the commit record of a board.
func (d docs) boardExists(id domain.BoardId) (bool, error) {
	ok, err := d.store.Exists(boardKey(id, passwordFile))
	if err != nil {
		return false, fmt.Errorf("%w: %w", internal_errors.ErrStorage, err)
	}
	return ok, nil
}

func (d docs) mustBoard(id domain.BoardId) error {
	if err := ValidateBoardId(id); err != nil {
		return err
	}
	ok, err := d.boardExists(id)
	if err != nil {
		return err
	}
	if !ok {
		return internal_errors.NotFound(id)
	}
	return nil
}

func (d docs) config(id domain.BoardId) (domain.BoardConfig, error) {
	var cfg domain.BoardConfig
	err := d.read(boardKey(id, configFile), &cfg)
	return cfg, err
}

func (d docs) index(id domain.BoardId) (domain.ThreadIndex, error) {
	var idx domain.ThreadIndex
	if err := d.read(boardKey(id, indexFile), &idx); err != nil {
		return idx, err
	}
	if idx.ThreadIDs == nil {
		idx.ThreadIDs = []domain.ThreadId{}
	}
	return idx, nil
}

func (d docs) ledger(id domain.BoardId) (domain.RateLedger, error) {
	ledger := domain.RateLedger{}
	err := d.read(boardKey(id, ledgerFile), &ledger)
	if ledger == nil {
		ledger = domain.RateLedger{}
	}
	return ledger, err
}

// indexedThread reads a thread listed in the board index. A document the
// index does not list is left over from an interrupted create and is NotFound.
func (d docs) indexedThread(id domain.BoardId, threadId domain.ThreadId) (domain.Thread, error) {
	idx, err := d.index(id)
	if err != nil {
		return domain.Thread{}, err
	}
	if !slices.Contains(idx.ThreadIDs, threadId) {
		return domain.Thread{}, internal_errors.NotFound(threadId)
	}
	return d.thread(id, threadId)
}

// thread reads a thread document, reporting a missing one as NotFound.
func (d docs) thread(id domain.BoardId, threadId domain.ThreadId) (domain.Thread, error) {
	var th domain.Thread
	err := d.store.Read(threadKey(id, threadId), &th)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return th, internal_errors.NotFound(threadId)
		}
		return th, fmt.Errorf("%w: %w", internal_errors.ErrStorage, err)
	}
	if th.Comments == nil {
		th.Comments = []domain.AdminComment{}
	}
	return th, nil
}
