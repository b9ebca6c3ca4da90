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


package storage

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/status"
)

var (
	stageOrderSer = ord.NewSliceSer[core.StageName](core.StageNameMUS)
	stepMapSer    = ord.NewMapSer[core.StageName, core.ProcessingStep](core.StageNameMUS, core.ProcessingStepMUS)
)

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*doc))
	core.DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarshalSnapshot serializes a pipeline state snapshot to bytes.
func MarshalSnapshot(snap *status.Snapshot) []byte {
	size := ord.String.Size(snap.DocumentID) +
		stageOrderSer.Size(snap.Order) +
		stepMapSer.Size(snap.Steps)
	buf := make([]byte, size)
	n := ord.String.Marshal(snap.DocumentID, buf)
	n += stageOrderSer.Marshal(snap.Order, buf[n:])
	stepMapSer.Marshal(snap.Steps, buf[n:])
	return buf
}

// UnmarshalSnapshot deserializes a pipeline state snapshot from bytes.
func UnmarshalSnapshot(data []byte) (*status.Snapshot, error) {
	var (
		snap status.Snapshot
		n, n1 int
		err  error
	)
	snap.DocumentID, n, err = ord.String.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	snap.Order, n1, err = stageOrderSer.Unmarshal(data[n:])
	n += n1
	if err != nil {
		return nil, err
	}
	snap.Steps, _, err = stepMapSer.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, core.ChunkMUS.Size(*chunk))
	core.ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := core.ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	buf := make([]byte, core.CheckpointMUS.Size(*checkpoint))
	core.CheckpointMUS.Marshal(*checkpoint, buf)
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, _, err := core.CheckpointMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}
