package service

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/itchan-dev/nbbs/internal/domain"
	internal_errors "github.com/itchan-dev/nbbs/internal/errors"
	"github.com/itchan-dev/nbbs/internal/logger"
	"github.com/itchan-dev/nbbs/internal/storage"
)

// ReconcileReport lists what Reconcile repaired.
type ReconcileReport struct {
	RemovedBoards  []domain.BoardId
	OrphanThreads  []string // thread documents that never made it into an index
	DroppedIndexed []string // index entries without a document
}

// Reconcile repairs half-created resources left by a crash: boards whose
// creation never committed are removed, thread documents missing from the
// index are removed, and index entries without a document are dropped.
func (b *Board) Reconcile() (ReconcileReport, error) {
	var report ReconcileReport

	keys, err := b.docs.store.List("")
	if err != nil {
		return report, fmt.Errorf("%w: %w", internal_errors.ErrStorage, err)
	}

	byBoard := make(map[domain.BoardId][]string)
	var boards []domain.BoardId
	for _, key := range keys {
		id, rest, found := strings.Cut(key, "/")
		if !found || rest == "" {
			continue
		}
		if _, ok := byBoard[id]; !ok {
			boards = append(boards, id)
		}
		byBoard[id] = append(byBoard[id], key)
	}

	log := logger.Component("reconcile")
	for _, id := range boards {
		boardKeys := byBoard[id]
		if ValidateBoardId(id) != nil {
			log.Warn("ignoring foreign directory in store", "dir", id)
			continue
		}
		removed, orphans, dropped, err := b.reconcileBoard(id, boardKeys)
		if err != nil {
			return report, err
		}
		if removed {
			log.Warn("removed half-created board", "board", id, "documents", len(boardKeys))
			report.RemovedBoards = append(report.RemovedBoards, id)
		}
		for _, tid := range orphans {
			log.Warn("removed orphaned thread document", "board", id, "thread_id", tid)
			report.OrphanThreads = append(report.OrphanThreads, fmt.Sprintf("%s/%d", id, tid))
		}
		for _, tid := range dropped {
			log.Warn("dropped dangling index entry", "board", id, "thread_id", tid)
			report.DroppedIndexed = append(report.DroppedIndexed, fmt.Sprintf("%s/%d", id, tid))
		}
	}
	return report, nil
}

func (b *Board) reconcileBoard(id domain.BoardId, keys []string) (removed bool, orphans, dropped []domain.ThreadId, err error) {
	unlock := b.locks.Lock(id)
	defer unlock()

	committed := slices.Contains(keys, boardKey(id, passwordFile)) && !slices.Contains(keys, boardKey(id, creatingMarker))
	if !committed {
		// password.json goes first so the board stops existing before the rest is swept
		slices.SortStableFunc(keys, func(a, c string) int {
			return boolRank(c == boardKey(id, passwordFile)) - boolRank(a == boardKey(id, passwordFile))
		})
		for _, key := range keys {
			if err := b.docs.store.Delete(key); err != nil && !errors.Is(err, storage.ErrNotExist) {
				return false, nil, nil, fmt.Errorf("%w: %w", internal_errors.ErrStorage, err)
			}
		}
		return true, nil, nil, nil
	}

	stored := make(map[domain.ThreadId]bool)
	prefix := boardKey(id, threadsDir) + "/"
	for _, key := range keys {
		name, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		tid, err := strconv.ParseInt(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil || !strings.HasSuffix(name, ".json") {
			continue
		}
		stored[tid] = true
	}

	idx, err := b.docs.index(id)
	if err != nil {
		return false, nil, nil, err
	}
	indexed := make(map[domain.ThreadId]bool, len(idx.ThreadIDs))
	for _, tid := range idx.ThreadIDs {
		indexed[tid] = true
	}

	for tid := range stored {
		if indexed[tid] {
			continue
		}
		if err := b.docs.store.Delete(threadKey(id, tid)); err != nil && !errors.Is(err, storage.ErrNotExist) {
			return false, nil, nil, fmt.Errorf("%w: %w", internal_errors.ErrStorage, err)
		}
		orphans = append(orphans, tid)
	}
	slices.Sort(orphans)

	kept := idx.ThreadIDs[:0:0]
	for _, tid := range idx.ThreadIDs {
		if stored[tid] {
			kept = append(kept, tid)
		} else {
			dropped = append(dropped, tid)
		}
	}
	if len(dropped) > 0 || len(orphans) > 0 {
		// orphans may carry ids above the index; keep them from being reissued
		next := idx.NextId()
		for _, tid := range orphans {
			if tid >= next {
				next = tid + 1
			}
		}
		idx.NextThreadId = next
		idx.ThreadIDs = kept
		if err := b.docs.write(boardKey(id, indexFile), idx); err != nil {
			return false, nil, nil, err
		}
	}
	return false, orphans, dropped, nil
}

func boolRank(v bool) int {
	if v {
		return 1
	}
	return 0
}
