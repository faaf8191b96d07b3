package store

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"quote-drafter/internal/core"
	"quote-drafter/internal/metrics"
)

// FileDraftStore keeps one file per draft key under dir. Keys are hex-encoded
// into file names so any key is a safe path.
type FileDraftStore struct {
	dir string
}

func NewFileDraftStore(dir string) *FileDraftStore {
	return &FileDraftStore{dir: dir}
}

func (s *FileDraftStore) path(key string) string {
	return filepath.Join(s.dir, hex.EncodeToString([]byte(key))+".json")
}

func (s *FileDraftStore) LoadDraft(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("draft %q: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read draft %q: %w", key, err)
	}
	return data, nil
}

func (s *FileDraftStore) SaveDraft(ctx context.Context, key string, data []byte) error {
	if err := writeFileAtomic(s.path(key), data); err != nil {
		metrics.Default().StoreWriteFailed("draft")
		return &core.StorageWriteError{Op: "save draft " + key, Err: err}
	}
	return nil
}

func (s *FileDraftStore) DeleteDraft(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &core.StorageWriteError{Op: "delete draft " + key, Err: err}
	}
	return nil
}
