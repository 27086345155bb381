package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/itchan-dev/nbbs/internal/service"
	"github.com/itchan-dev/nbbs/internal/storage"
)

const tmpSuffix = ".tmp"

// Storage keeps every document as an indented JSON file below rootPath.
type Storage struct {
	rootPath string
}

// Ensure Storage struct implements the interface at compile time.
var _ service.DocumentStore = (*Storage)(nil)

func New(rootPath string) (*Storage, error) {
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}

	return &Storage{rootPath: p}, nil
}

func (s *Storage) path(key string) (string, error) {
	if err := storage.ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.rootPath, filepath.FromSlash(key)), nil
}

func (s *Storage) Read(key string, v any) error {
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", key, storage.ErrNotExist)
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("corrupt document %s: %w", key, err)
	}
	return nil
}

// Write replaces the document atomically: the JSON goes to a uniquely named
// temp file in the same directory which is then renamed over the target.
func (s *Storage) Write(key string, v any) error {
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create subdirectories: %w", err)
	}

	tmpPath := fmt.Sprintf("%s.%s%s", fullPath, uuid.NewString(), tmpSuffix)
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Exists(key string) (bool, error) {
	fullPath, err := s.path(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return true, nil
}

func (s *Storage) Delete(key string) error {
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", key, storage.ErrNotExist)
		}
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// List returns every document key below prefix ("" lists the whole store), sorted.
func (s *Storage) List(prefix string) ([]string, error) {
	dir := s.rootPath
	if prefix != "" {
		p, err := s.path(prefix)
		if err != nil {
			return nil, err
		}
		dir = p
	}

	var keys []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), tmpSuffix) {
			return nil
		}
		rel, err := filepath.Rel(s.rootPath, p)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.rootPath); err != nil {
		return fmt.Errorf("storage root unavailable: %w", err)
	}
	return nil
}
