package service

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/itchan-dev/nbbs/internal/domain"
	internal_errors "github.com/itchan-dev/nbbs/internal/errors"
	"github.com/itchan-dev/nbbs/internal/logger"
	"github.com/itchan-dev/nbbs/internal/storage"
)

type ThreadService interface {
	List(board domain.BoardId) ([]domain.ThreadSummary, error)
	Create(board domain.BoardId, title domain.ThreadTitle, host domain.Host) (domain.Thread, error)
	Get(board domain.BoardId, id domain.ThreadId) (domain.Thread, error)
	Delete(board domain.BoardId, id domain.ThreadId, password domain.Password) (domain.ThreadIndex, error)
}

// Thread is the thread manager.
type Thread struct {
	docs   docs
	locks  *Locks
	boards *Board
	access *Access
	now    func() time.Time
	log    *slog.Logger
}

func NewThread(store DocumentStore, locks *Locks, boards *Board, access *Access, now func() time.Time) *Thread {
	if now == nil {
		now = time.Now
	}
	return &Thread{
		docs:   docs{store},
		locks:  locks,
		boards: boards,
		access: access,
		now:    now,
		log:    logger.Component("thread_manager"),
	}
}

// List reads every thread of the index in order, with full admin comments.
func (t *Thread) List(board domain.BoardId) ([]domain.ThreadSummary, error) {
	threads, err := t.threads(board)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.ThreadSummary, 0, len(threads))
	for _, th := range threads {
		s := domain.ThreadSummary{
			Id:           th.Id,
			Title:        th.Title,
			Comments:     th.Comments,
			CommentNum:   len(th.Comments),
			InvisibleNum: th.InvisibleNum(),
		}
		if n := len(th.Comments); n > 0 {
			s.FirstDt = th.Comments[0].Dt.Format(time.RFC3339Nano)
			s.LastDt = th.Comments[n-1].Dt.Format(time.RFC3339Nano)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// threads loads all thread documents of a board under its shared lock.
func (t *Thread) threads(board domain.BoardId) ([]domain.Thread, error) {
	if err := ValidateBoardId(board); err != nil {
		return nil, err
	}
	unlock := t.locks.RLock(board)
	defer unlock()

	if err := t.docs.mustBoard(board); err != nil {
		return nil, err
	}
	idx, err := t.docs.index(board)
	if err != nil {
		return nil, err
	}

	threads := make([]domain.Thread, 0, len(idx.ThreadIDs))
	for _, id := range idx.ThreadIDs {
		th, err := t.docs.thread(board, id)
		if err != nil {
			return nil, err
		}
		threads = append(threads, th)
	}
	return threads, nil
}

// Create checks, in order: board exists, interval gate, title not empty,
// title length, thread cap. The thread document is written before the index.
func (t *Thread) Create(board domain.BoardId, title domain.ThreadTitle, host domain.Host) (domain.Thread, error) {
	if err := ValidateBoardId(board); err != nil {
		return domain.Thread{}, err
	}
	unlock := t.locks.Lock(board)
	defer unlock()

	if err := t.docs.mustBoard(board); err != nil {
		return domain.Thread{}, err
	}
	cfg, err := t.docs.config(board)
	if err != nil {
		return domain.Thread{}, err
	}

	allowed, err := t.access.intervalGateLocked(board, host, t.now(), cfg.IntervalMinutes)
	if err != nil {
		return domain.Thread{}, err
	}
	if !allowed {
		return domain.Thread{}, internal_errors.ErrIntervalGate
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Thread{}, internal_errors.ErrTitleEmpty
	}
	if cfg.MaxThreadTitleLength > 0 && utf8.RuneCountInString(title) > cfg.MaxThreadTitleLength {
		return domain.Thread{}, internal_errors.ErrTitleTooLong
	}

	idx, err := t.docs.index(board)
	if err != nil {
		return domain.Thread{}, err
	}
	if cfg.MaxThreadsNum > 0 && len(idx.ThreadIDs) >= cfg.MaxThreadsNum {
		return domain.Thread{}, internal_errors.ErrBoardFull
	}

	nextId, err := t.nextThreadId(board, idx)
	if err != nil {
		return domain.Thread{}, err
	}

	th := domain.Thread{Id: nextId, Title: title, Comments: []domain.AdminComment{}}
	if err := t.docs.write(threadKey(board, nextId), th); err != nil {
		return domain.Thread{}, err
	}
	idx.ThreadIDs = append(idx.ThreadIDs, nextId)
	idx.NextThreadId = nextId + 1
	if err := t.docs.write(boardKey(board, indexFile), idx); err != nil {
		return domain.Thread{}, err
	}

	threadsCreatedTotal.WithLabelValues(board).Inc()
	t.log.Info("thread created", "board", board, "thread_id", nextId, "host", host)
	return th, nil
}

// nextThreadId follows the index high-water mark. A document left behind by
// an interrupted create is skipped rather than overwritten.
func (t *Thread) nextThreadId(board domain.BoardId, idx domain.ThreadIndex) (domain.ThreadId, error) {
	next := idx.NextId()
	for {
		exists, err := t.docs.store.Exists(threadKey(board, next))
		if err != nil {
			return 0, fmt.Errorf("%w: %w", internal_errors.ErrStorage, err)
		}
		if !exists {
			return next, nil
		}
		t.log.Warn("skipping orphaned thread document", "board", board, "thread_id", next)
		next++
	}
}

func (t *Thread) Get(board domain.BoardId, id domain.ThreadId) (domain.Thread, error) {
	if err := ValidateBoardId(board); err != nil {
		return domain.Thread{}, err
	}
	unlock := t.locks.RLock(board)
	defer unlock()

	if err := t.docs.mustBoard(board); err != nil {
		return domain.Thread{}, err
	}
	return t.docs.indexedThread(board, id)
}

// Delete removes the thread document first and only then drops it from the
// index, so the index never points at a missing document.
func (t *Thread) Delete(board domain.BoardId, id domain.ThreadId, password domain.Password) (domain.ThreadIndex, error) {
	if err := ValidateBoardId(board); err != nil {
		return domain.ThreadIndex{}, err
	}
	unlock := t.locks.Lock(board)
	defer unlock()

	if err := t.boards.authorizeLocked(board, password, true); err != nil {
		return domain.ThreadIndex{}, err
	}
	if id < 0 {
		return domain.ThreadIndex{}, internal_errors.ErrParamMissing
	}

	idx, err := t.docs.index(board)
	if err != nil {
		return domain.ThreadIndex{}, err
	}
	if !slices.Contains(idx.ThreadIDs, id) {
		return domain.ThreadIndex{}, internal_errors.NotFound(id)
	}
	exists, err := t.docs.store.Exists(threadKey(board, id))
	if err != nil {
		return domain.ThreadIndex{}, fmt.Errorf("%w: %w", internal_errors.ErrStorage, err)
	}
	if !exists {
		return domain.ThreadIndex{}, internal_errors.NotFound(id)
	}

	if err := t.docs.store.Delete(threadKey(board, id)); err != nil && !errors.Is(err, storage.ErrNotExist) {
		t.log.Error("failed to remove thread document", "board", board, "thread_id", id, "error", err)
		return domain.ThreadIndex{}, internal_errors.ErrRemovalFailed
	}

	idx.NextThreadId = idx.NextId()
	idx.ThreadIDs = slices.DeleteFunc(idx.ThreadIDs, func(tid domain.ThreadId) bool { return tid == id })
	if err := t.docs.write(boardKey(board, indexFile), idx); err != nil {
		return domain.ThreadIndex{}, err
	}

	t.log.Info("thread removed", "board", board, "thread_id", id)
	return idx, nil
}
