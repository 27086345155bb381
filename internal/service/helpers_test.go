package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/itchan-dev/nbbs/internal/domain"
	"github.com/itchan-dev/nbbs/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// --- Mocks ---

// memStore is an in-memory DocumentStore with failure injection.
type memStore struct {
	mu        sync.Mutex
	docs      map[string][]byte
	deleteErr func(key string) error
	writeErr  func(key string) error
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]byte)}
}

func (m *memStore) Read(key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[key]
	if !ok {
		return fmt.Errorf("%s: %w", key, storage.ErrNotExist)
	}
	return json.Unmarshal(data, v)
}

func (m *memStore) Write(key string, v any) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if m.writeErr != nil {
		if err := m.writeErr(key); err != nil {
			return err
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = data
	return nil
}

func (m *memStore) Exists(key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[key]
	return ok, nil
}

func (m *memStore) Delete(key string) error {
	if m.deleteErr != nil {
		if err := m.deleteErr(key); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[key]; !ok {
		return fmt.Errorf("%s: %w", key, storage.ErrNotExist)
	}
	delete(m.docs, key)
	return nil
}

func (m *memStore) List(prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.docs {
		if prefix == "" || strings.HasPrefix(k, strings.TrimSuffix(prefix, "/")+"/") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memStore) Ping(ctx context.Context) error { return nil }

func (m *memStore) has(key string) bool {
	ok, _ := m.Exists(key)
	return ok
}

var errDisk = errors.New("disk failure")

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// --- Helpers ---

type testServices struct {
	store   *memStore
	clock   *fakeClock
	board   *Board
	access  *Access
	thread  *Thread
	comment *Comment
}

func testDefaults() domain.BoardConfig {
	return domain.BoardConfig{
		MaxThreadsNum:        10,
		MaxCommentsNum:       10,
		MaxThreadTitleLength: 20,
		MaxCommentNameLength: 20,
		MaxCommentTextLength: 100,
	}
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	store := newMemStore()
	clock := newFakeClock()
	locks := NewLocks()
	board := NewBoard(store, locks, testDefaults(), bcrypt.MinCost)
	access := NewAccess(store, locks, board)
	return &testServices{
		store:   store,
		clock:   clock,
		board:   board,
		access:  access,
		thread:  NewThread(store, locks, board, access, clock.Now),
		comment: NewComment(store, locks, board, access, "salt", nil, clock.Now),
	}
}

// newBoard creates a board with the given config (defaults when nil).
func (s *testServices) newBoard(t *testing.T, id string, cfg *domain.BoardConfig) {
	t.Helper()
	if _, err := s.board.Create(id, "pw", cfg); err != nil {
		t.Fatalf("create board %s: %v", id, err)
	}
}

func ptr[T any](v T) *T { return &v }
