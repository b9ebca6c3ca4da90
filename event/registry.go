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


package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// factory produces a zero payload value for decoding.
type factory func() Payload

// Registry is the single source of truth mapping each event name to its
// payload shape. It is read-only after construction and safe for
// unsynchronized concurrent reads.
type Registry struct {
	factories map[Name]factory
	idgen     *idGenerator
}

// NewRegistry builds the registry over the closed pipeline event set.
// New event types are additive only; an unrecognized name is treated as
// a configuration error by every method.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[Name]factory),
		idgen:     newIDGenerator(),
	}

	r.register(DocumentUploaded, func() Payload { return &UploadedPayload{} })

	success := []Name{
		DocumentTextExtracted,
		DocumentImagesExtracted,
		DocumentADEProcessed,
		DocumentChunked,
		DocumentEmbedded,
		DocumentProcessed,
	}
	for _, name := range success {
		n := name
		r.register(n, func() Payload { return &SuccessPayload{name: n} })
	}

	failure := []Name{
		DocumentExtractionFailed,
		DocumentImageExtractionFailed,
		DocumentADEProcessingFailed,
		DocumentChunkingFailed,
		DocumentEmbeddingFailed,
		DocumentIndexingFailed,
	}
	for _, name := range failure {
		n := name
		r.register(n, func() Payload { return &FailurePayload{name: n} })
	}

	return r
}

func (r *Registry) register(name Name, f factory) {
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("%v: %s", ErrDuplicateRegistration, name))
	}
	r.factories[name] = f
}

// Known returns true if the event name belongs to the registered set.
func (r *Registry) Known(name Name) bool {
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered event names.
func (r *Registry) Names() []Name {
	names := make([]Name, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// Decode parses raw payload data into the variant registered for the
// name. Unknown fields are rejected at this boundary, never silently
// accepted.
func (r *Registry) Decode(name Name, data []byte) (Payload, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}

	payload := f()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, name, err)
	}

	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, name, err)
	}

	return payload, nil
}

// IsValid reports whether data is a well-formed payload for the name.
// Used at every publish and subscribe boundary.
func (r *Registry) IsValid(name Name, data []byte) bool {
	_, err := r.Decode(name, data)
	return err == nil
}

// NewEvent builds a wire event from a payload, assigning a fresh
// deduplication id and timestamp. The payload's own event name wins;
// attempting to wrap a payload for an unregistered name fails.
func (r *Registry) NewEvent(payload Payload) (*Event, error) {
	name := payload.EventName()
	if !r.Known(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, name, err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, name, err)
	}

	return &Event{
		Name:      name,
		Data:      data,
		ID:        r.idgen.next(name),
		Timestamp: time.Now().UnixMilli(),
	}, nil
}
