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

import "github.com/poiesic/docpipe/storage"

// Repositories bundles every repository backed by one Backend.
type Repositories struct {
	Documents   storage.DocumentRepository
	States      storage.StateRepository
	Artifacts   storage.ArtifactRepository
	Chunks      storage.ChunkRepository
	Checkpoints storage.CheckpointRepository
}

// NewRepositories creates all repositories over a shared backend.
func NewRepositories(backend *Backend) *Repositories {
	return &Repositories{
		Documents:   NewDocumentRepository(backend),
		States:      NewStateRepository(backend),
		Artifacts:   NewArtifactRepository(backend),
		Chunks:      NewChunkRepository(backend),
		Checkpoints: NewCheckpointRepository(backend),
	}
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must close the backend when done.
func NewMemoryRepositories() (*Repositories, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, err
	}
	return NewRepositories(backend), backend, nil
}
