package core

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// DocumentStore persists the whole Database document. Load never fails for a
// missing or corrupt document; it returns EmptyDatabase instead. Save fails
// with ErrConflict when db.Version is not the stored version, and with a
// *StorageWriteError when the write itself fails.
type DocumentStore interface {
	Load(ctx context.Context) (*Database, error)
	Save(ctx context.Context, db *Database) error
}

// DraftStore holds the single in-progress quote of each local key.
type DraftStore interface {
	// LoadDraft returns the raw serialized draft, or ErrNotFound.
	LoadDraft(ctx context.Context, key string) ([]byte, error)
	SaveDraft(ctx context.Context, key string, data []byte) error
	DeleteDraft(ctx context.Context, key string) error
}

// Documents serializes read-modify-write cycles over a DocumentStore within
// this process. Across processes the store's version check applies.
type Documents struct {
	store DocumentStore
	mu    sync.Mutex
	log   zerolog.Logger
}

func NewDocuments(store DocumentStore, log zerolog.Logger) *Documents {
	return &Documents{store: store, log: log}
}

// Read returns a snapshot of the document.
func (d *Documents) Read(ctx context.Context) (*Database, error) {
	db, err := d.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	db.Normalize()
	return db, nil
}

// Update loads the document, applies fn and writes the whole document back.
// Nothing is written when fn returns an error.
func (d *Documents) Update(ctx context.Context, fn func(db *Database) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	db, err := d.Read(ctx)
	if err != nil {
		return err
	}
	if err := fn(db); err != nil {
		return err
	}
	if err := d.store.Save(ctx, db); err != nil {
		d.log.Error().Err(err).Int64("version", db.Version).Msg("document save failed")
		return err
	}
	return nil
}
