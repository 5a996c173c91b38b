package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/idilsaglam/items/internal/model"
	"github.com/idilsaglam/items/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// A mutex serializes writers inside one process; there is no cross-process
// locking, so point one server at one file.

type fileData struct {
	NextID int64          `json:"next_id"`
	Items  []store.Record `json:"items"`
}

// Store keeps every item in one JSON file.
type Store struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

var _ store.Store = (*Store)(nil)

// Open returns a store backed by path. The file is created on first write.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("jsonstore: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	return &Store{path: abs, now: time.Now}, nil
}

// Path is the absolute file location.
func (s *Store) Path() string { return s.path }

func (s *Store) List(ctx context.Context) ([]model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	store.SortNewestFirst(d.Items)
	return store.Items(d.Items), nil
}

func (s *Store) Create(ctx context.Context, in model.NewItem) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return model.Item{}, err
	}
	d.NextID++
	rec := store.Record{
		ID:          d.NextID,
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   s.now().UTC(),
	}
	d.Items = append(d.Items, rec)
	if err := s.save(d); err != nil {
		return model.Item{}, err
	}
	return rec.Item(), nil
}

func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return false, err
	}
	for i, r := range d.Items {
		if r.ID == id {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			return true, s.save(d)
		}
	}
	return false, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) load() (fileData, error) {
	var d fileData
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileData{Items: []store.Record{}}, nil
		}
		return d, fmt.Errorf("read file: %w", err)
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return d, fmt.Errorf("json unmarshal: %w", err)
	}
	// Guard against hand-edited files whose counter lags the data.
	for _, r := range d.Items {
		if r.ID > d.NextID {
			d.NextID = r.ID
		}
	}
	return d, nil
}

// save writes through a temp file so a crash never leaves half a document.
func (s *Store) save(d fileData) error {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
