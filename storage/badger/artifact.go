package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/storage"
)

// ArtifactRepository implements storage.ArtifactRepository for BadgerDB.
// Artifacts are stored by content-addressed reference, so identical
// payloads share one entry.
type ArtifactRepository struct {
	backend *Backend
}

var _ storage.ArtifactRepository = (*ArtifactRepository)(nil)

// NewArtifactRepository creates a new ArtifactRepository.
func NewArtifactRepository(backend *Backend) *ArtifactRepository {
	return &ArtifactRepository{
		backend: backend,
	}
}

// Close is a no-op; the repository holds no resources beyond the backend.
func (r *ArtifactRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ArtifactRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutArtifact stores a payload and returns its content-addressed reference.
func (r *ArtifactRepository) PutArtifact(ctx context.Context, data []byte) (core.ArtifactRef, error) {
	ref := core.RefFromContent(data)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeArtifactKey(ref)

		// Identical content is already stored under the same key.
		if _, err := tx.Get(key); err == nil {
			return nil
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		if err := tx.Set(key, data); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return "", err
	}
	return ref, nil
}

// GetArtifact retrieves a payload by reference.
func (r *ArtifactRepository) GetArtifact(ctx context.Context, ref core.ArtifactRef) ([]byte, error) {
	var data []byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeArtifactKey(ref))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		data, err = item.ValueCopy(nil)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return data, nil
}
