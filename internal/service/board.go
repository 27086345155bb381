package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/itchan-dev/nbbs/internal/domain"
	internal_errors "github.com/itchan-dev/nbbs/internal/errors"
	"github.com/itchan-dev/nbbs/internal/logger"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt only hashes the first 72 bytes and rejects longer input.
const maxPasswordBytes = 72

// larger intervals overflow time.Duration
const maxIntervalMinutes = math.MaxInt64 / int64(time.Minute)

// to mock service in tests
type BoardService interface {
	Create(id domain.BoardId, password domain.Password, cfg *domain.BoardConfig) (domain.BoardConfig, error)
	GetConfig(id domain.BoardId) (domain.BoardConfig, error)
	UpdateConfig(id domain.BoardId, password domain.Password, update domain.BoardConfigUpdate) (domain.BoardConfig, error)
	VerifyPassword(id domain.BoardId, password domain.Password) (bool, error)
}

// Board is the board registry: one namespace per board id.
type Board struct {
	docs       docs
	locks      *Locks
	defaults   domain.BoardConfig
	bcryptCost int
	log        *slog.Logger
}

func NewBoard(store DocumentStore, locks *Locks, defaults domain.BoardConfig, bcryptCost int) *Board {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Board{
		docs:       docs{store},
		locks:      locks,
		defaults:   defaults,
		bcryptCost: bcryptCost,
		log:        logger.Component("board_registry"),
	}
}

// Create writes the board documents leaves first and password.json last, so a
// board only becomes visible once all of its documents exist. cfg nil means
// the configured defaults.
func (b *Board) Create(id domain.BoardId, password domain.Password, cfg *domain.BoardConfig) (domain.BoardConfig, error) {
	if err := ValidateBoardId(id); err != nil {
		return domain.BoardConfig{}, err
	}
	unlock := b.locks.Lock(id)
	defer unlock()

	return b.createLocked(id, password, cfg)
}

func (b *Board) createLocked(id domain.BoardId, password domain.Password, cfg *domain.BoardConfig) (domain.BoardConfig, error) {
	exists, err := b.docs.boardExists(id)
	if err != nil {
		return domain.BoardConfig{}, err
	}
	if exists {
		return domain.BoardConfig{}, internal_errors.AlreadyExists(id)
	}

	boardCfg := b.defaults
	if cfg != nil {
		boardCfg = *cfg
	}
	if err := validateConfig(boardCfg); err != nil {
		return domain.BoardConfig{}, err
	}
	if len(password) > maxPasswordBytes {
		return domain.BoardConfig{}, internal_errors.Validation("Invalid parameter 'password'.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.bcryptCost)
	if err != nil {
		return domain.BoardConfig{}, fmt.Errorf("failed to hash password: %w", err)
	}

	steps := []struct {
		key string
		doc any
	}{
		{boardKey(id, creatingMarker), struct{}{}},
		{boardKey(id, configFile), boardCfg},
		{boardKey(id, indexFile), domain.ThreadIndex{ThreadIDs: []domain.ThreadId{}}},
		{boardKey(id, ledgerFile), domain.RateLedger{}},
		{boardKey(id, passwordFile), domain.PasswordDocument{Hash: string(hash)}},
	}
	for _, step := range steps {
		if err := b.docs.write(step.key, step.doc); err != nil {
			return domain.BoardConfig{}, err
		}
	}
	// the board is committed; a leftover marker only costs a repair on next start
	if err := b.docs.store.Delete(boardKey(id, creatingMarker)); err != nil {
		b.log.Warn("failed to remove creation marker", "board", id, "error", err)
	}

	b.log.Info("board created", "board", id)
	return boardCfg, nil
}

// EnsureBoard creates a board with an empty password unless it already exists.
func (b *Board) EnsureBoard(id domain.BoardId) error {
	if err := ValidateBoardId(id); err != nil {
		return err
	}
	unlock := b.locks.Lock(id)
	defer unlock()

	exists, err := b.docs.boardExists(id)
	if err != nil || exists {
		return err
	}
	_, err = b.createLocked(id, "", nil)
	return err
}

func (b *Board) GetConfig(id domain.BoardId) (domain.BoardConfig, error) {
	if err := ValidateBoardId(id); err != nil {
		return domain.BoardConfig{}, err
	}
	unlock := b.locks.RLock(id)
	defer unlock()

	if err := b.docs.mustBoard(id); err != nil {
		return domain.BoardConfig{}, err
	}
	return b.docs.config(id)
}

// UpdateConfig merges update into the stored config; omitted fields keep their value.
func (b *Board) UpdateConfig(id domain.BoardId, password domain.Password, update domain.BoardConfigUpdate) (domain.BoardConfig, error) {
	if err := ValidateBoardId(id); err != nil {
		return domain.BoardConfig{}, err
	}
	unlock := b.locks.Lock(id)
	defer unlock()

	if err := b.authorizeLocked(id, password, true); err != nil {
		return domain.BoardConfig{}, err
	}

	current, err := b.docs.config(id)
	if err != nil {
		return domain.BoardConfig{}, err
	}
	merged := update.Apply(current)
	if err := validateConfig(merged); err != nil {
		return domain.BoardConfig{}, err
	}
	if err := b.docs.write(boardKey(id, configFile), merged); err != nil {
		return domain.BoardConfig{}, err
	}

	b.log.Info("board config updated", "board", id)
	return merged, nil
}

func (b *Board) VerifyPassword(id domain.BoardId, password domain.Password) (bool, error) {
	if err := ValidateBoardId(id); err != nil {
		return false, err
	}
	unlock := b.locks.Lock(id)
	defer unlock()

	if err := b.docs.mustBoard(id); err != nil {
		return false, err
	}
	return b.verifyLocked(id, password, true)
}

// authorizeLocked checks that the board exists and the password matches.
func (b *Board) authorizeLocked(id domain.BoardId, password domain.Password, exclusive bool) error {
	if err := b.docs.mustBoard(id); err != nil {
		return err
	}
	ok, err := b.verifyLocked(id, password, exclusive)
	if err != nil {
		return err
	}
	if !ok {
		return internal_errors.ErrBadPassword
	}
	return nil
}

// verifyLocked compares against the bcrypt hash. Boards created before hashing
// store the plain password; with the exclusive lock held such a password is
// replaced by its hash after a successful match.
func (b *Board) verifyLocked(id domain.BoardId, password domain.Password, exclusive bool) (bool, error) {
	var doc domain.PasswordDocument
	if err := b.docs.read(boardKey(id, passwordFile), &doc); err != nil {
		return false, err
	}

	if doc.Hash != "" {
		if len(password) > maxPasswordBytes {
			return false, nil
		}
		err := bcrypt.CompareHashAndPassword([]byte(doc.Hash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%w: bad password hash of %s: %w", internal_errors.ErrStorage, id, err)
		}
		return true, nil
	}

	if subtle.ConstantTimeCompare([]byte(doc.Password), []byte(password)) != 1 {
		return false, nil
	}
	if exclusive {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), b.bcryptCost)
		if err != nil {
			return true, nil
		}
		if err := b.docs.write(boardKey(id, passwordFile), domain.PasswordDocument{Hash: string(hash)}); err != nil {
			b.log.Error("failed to upgrade legacy password", "board", id, "error", err)
		} else {
			b.log.Info("legacy password upgraded to bcrypt", "board", id)
		}
	}
	return true, nil
}

func validateConfig(cfg domain.BoardConfig) error {
	fields := []struct {
		name  string
		value int
	}{
		{"interval_minutes", cfg.IntervalMinutes},
		{"max_threads_num", cfg.MaxThreadsNum},
		{"max_comments_num", cfg.MaxCommentsNum},
		{"max_thread_title_length", cfg.MaxThreadTitleLength},
		{"max_comment_name_length", cfg.MaxCommentNameLength},
		{"max_comment_text_length", cfg.MaxCommentTextLength},
	}
	for _, f := range fields {
		if f.value < 0 {
			return internal_errors.Validation("Invalid parameter '%s'.", f.name)
		}
	}
	if int64(cfg.IntervalMinutes) > maxIntervalMinutes {
		return internal_errors.Validation("Invalid parameter 'interval_minutes'.")
	}
	return nil
}
