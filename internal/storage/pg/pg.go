package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/itchan-dev/nbbs/internal/config"
	"github.com/itchan-dev/nbbs/internal/logger"
	"github.com/itchan-dev/nbbs/internal/service"
	"github.com/itchan-dev/nbbs/internal/storage"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	key        TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Storage keeps every document as one row of the documents table.
type Storage struct {
	db *sql.DB
}

var _ service.DocumentStore = (*Storage)(nil)

func New(cfg config.Pg) (*Storage, error) {
	log := logger.Component("pg_storage")
	log.Info("connecting to db", "host", cfg.Host, "dbname", cfg.Dbname)
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}
	log.Info("successfully connected to db")
	return &Storage{db}, nil
}

func Connect(cfg config.Pg) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

func (s *Storage) Read(key string, v any) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	var body []byte
	err := s.db.QueryRow(`SELECT body FROM documents WHERE key = $1`, key).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", key, storage.ErrNotExist)
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("corrupt document %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Write(key string, v any) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO documents (key, body) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
		key, body)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Exists(key string) (bool, error) {
	if err := storage.ValidateKey(key); err != nil {
		return false, err
	}
	var exists bool
	if err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM documents WHERE key = $1)`, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s: %w", key, err)
	}
	return exists, nil
}

func (s *Storage) Delete(key string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	res, err := s.db.Exec(`DELETE FROM documents WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", key, storage.ErrNotExist)
	}
	return nil
}

func (s *Storage) List(prefix string) ([]string, error) {
	var rows *sql.Rows
	var err error
	if prefix == "" {
		rows, err = s.db.Query(`SELECT key FROM documents ORDER BY key`)
	} else {
		if err := storage.ValidateKey(prefix); err != nil {
			return nil, err
		}
		rows, err = s.db.Query(`SELECT key FROM documents WHERE key LIKE $1 ESCAPE '\' ORDER BY key`, likePrefix(prefix))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// likePrefix matches keys strictly below prefix.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(strings.TrimSuffix(prefix, "/")) + "/%"
}
