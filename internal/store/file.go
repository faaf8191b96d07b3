// Package store holds the DocumentStore and DraftStore implementations.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"quote-drafter/internal/core"
	"quote-drafter/internal/metrics"

	"github.com/rs/zerolog"
)

// FileStore keeps the document as one JSON file. Writes go to a temp file in
// the same directory and are renamed over the target.
type FileStore struct {
	path string
	log  zerolog.Logger
	mu   sync.Mutex
}

func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, log: log.With().Str("store", "file").Str("path", path).Logger()}
}

func (s *FileStore) Load(ctx context.Context) (*core.Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

// load never fails: a missing file is a first run, a corrupt one is logged
// and replaced by the empty document on the next save.
func (s *FileStore) load() *core.Database {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return core.EmptyDatabase()
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("document unreadable, starting empty")
		return core.EmptyDatabase()
	}
	return decodeDocument(data, s.log)
}

func decodeDocument(data []byte, log zerolog.Logger) *core.Database {
	var db core.Database
	if err := json.Unmarshal(data, &db); err != nil {
		log.Warn().Err(err).Msg("document corrupt, starting empty")
		return core.EmptyDatabase()
	}
	db.Normalize()
	return &db
}

func (s *FileStore) Save(ctx context.Context, db *core.Database) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current := s.load().Version; current != db.Version {
		metrics.Default().StoreConflict("file")
		return fmt.Errorf("save document at version %d, stored %d: %w", db.Version, current, core.ErrConflict)
	}

	next := *db
	next.Version++
	next.Normalize()
	data, err := json.MarshalIndent(&next, "", "  ")
	if err != nil {
		return s.writeFailed("encode", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return s.writeFailed("write", err)
	}
	db.Version = next.Version
	s.log.Debug().Int64("version", next.Version).Msg("document saved")
	return nil
}

func (s *FileStore) writeFailed(op string, err error) error {
	metrics.Default().StoreWriteFailed("file")
	return &core.StorageWriteError{Op: op + " " + s.path, Err: err}
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
