// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docpipe/status"
	"github.com/poiesic/docpipe/storage"
)

// StateRepository implements storage.StateRepository for BadgerDB.
type StateRepository struct {
	backend *Backend
}

var _ storage.StateRepository = (*StateRepository)(nil)

// NewStateRepository creates a new StateRepository.
func NewStateRepository(backend *Backend) *StateRepository {
	return &StateRepository{
		backend: backend,
	}
}

// Close is a no-op; the repository holds no resources beyond the backend.
func (r *StateRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *StateRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveState persists the pipeline state snapshot for a document.
func (r *StateRepository) SaveState(ctx context.Context, snap *status.Snapshot) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeStateKey(snap.DocumentID)
		if err := tx.Set(key, storage.MarshalSnapshot(snap)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadState retrieves the pipeline state snapshot for a document.
// Returns nil, nil if no snapshot exists.
func (r *StateRepository) LoadState(ctx context.Context, documentID string) (*status.Snapshot, error) {
	var snap *status.Snapshot
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeStateKey(documentID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			snap, unmarshalErr = storage.UnmarshalSnapshot(val)
			return unmarshalErr
		})
	}, false)

	return snap, err
}

// DeleteState removes the pipeline state snapshot for a document.
func (r *StateRepository) DeleteState(ctx context.Context, documentID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeStateKey(documentID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
