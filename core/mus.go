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


package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-maintained MUS serializers for the persisted types. Field order
// is the wire format; append new fields at the end only.

var (
	// DocumentStatusMUS is the MUS serializer for DocumentStatus.
	DocumentStatusMUS = documentStatusMUS{}
	// StageNameMUS is the MUS serializer for StageName.
	StageNameMUS = stageNameMUS{}
	// StepStatusMUS is the MUS serializer for StepStatus.
	StepStatusMUS = stepStatusMUS{}
	// DocumentMUS is the MUS serializer for Document.
	DocumentMUS = documentMUS{}
	// ProcessingStepMUS is the MUS serializer for ProcessingStep.
	ProcessingStepMUS = processingStepMUS{}
	// ChunkMUS is the MUS serializer for Chunk.
	ChunkMUS = chunkMUS{}
	// CheckpointMUS is the MUS serializer for Checkpoint.
	CheckpointMUS = checkpointMUS{}

	timeSer     = timeUTCMUS{}
	timePtrSer  = ord.NewPtrSer[time.Time](timeSer)
	metadataSer = ord.NewMapSer[string, string](ord.String, ord.String)
	vectorSer   = ord.NewSliceSer[float32](raw.Float32)
)

// timeUTCMUS wraps the UnixMicro serializer and pins unmarshaled values
// to UTC. The raw serializer restores instants in the local zone, which
// breaks deep-equality on round-tripped records.
type timeUTCMUS struct{}

func (timeUTCMUS) Marshal(v time.Time, bs []byte) (n int) {
	return raw.TimeUnixMicro.Marshal(v, bs)
}

func (timeUTCMUS) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	v, n, err = raw.TimeUnixMicro.Unmarshal(bs)
	return v.UTC(), n, err
}

func (timeUTCMUS) Size(v time.Time) (size int) {
	return raw.TimeUnixMicro.Size(v)
}

func (timeUTCMUS) Skip(bs []byte) (n int, err error) {
	return raw.TimeUnixMicro.Skip(bs)
}

type documentStatusMUS struct{}

func (s documentStatusMUS) Marshal(v DocumentStatus, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s documentStatusMUS) Unmarshal(bs []byte) (v DocumentStatus, n int, err error) {
	str, n, err := ord.String.Unmarshal(bs)
	return DocumentStatus(str), n, err
}

func (s documentStatusMUS) Size(v DocumentStatus) (size int) {
	return ord.String.Size(string(v))
}

func (s documentStatusMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

type stageNameMUS struct{}

func (s stageNameMUS) Marshal(v StageName, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s stageNameMUS) Unmarshal(bs []byte) (v StageName, n int, err error) {
	str, n, err := ord.String.Unmarshal(bs)
	return StageName(str), n, err
}

func (s stageNameMUS) Size(v StageName) (size int) {
	return ord.String.Size(string(v))
}

func (s stageNameMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

type stepStatusMUS struct{}

func (s stepStatusMUS) Marshal(v StepStatus, bs []byte) (n int) {
	return ord.String.Marshal(string(v), bs)
}

func (s stepStatusMUS) Unmarshal(bs []byte) (v StepStatus, n int, err error) {
	str, n, err := ord.String.Unmarshal(bs)
	return StepStatus(str), n, err
}

func (s stepStatusMUS) Size(v StepStatus) (size int) {
	return ord.String.Size(string(v))
}

func (s stepStatusMUS) Skip(bs []byte) (n int, err error) {
	return ord.String.Skip(bs)
}

type documentMUS struct{}

func (s documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += DocumentStatusMUS.Marshal(v.Status, bs[n:])
	n += ord.String.Marshal(v.FilePath, bs[n:])
	n += ord.String.Marshal(v.MimeType, bs[n:])
	n += varint.Int64.Marshal(v.FileSize, bs[n:])
	n += ord.String.Marshal(v.UserId, bs[n:])
	n += timeSer.Marshal(v.CreatedAt, bs[n:])
	n += timeSer.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (s documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	var n1 int
	v.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Status, n1, err = DocumentStatusMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.FilePath, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.MimeType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.FileSize, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UserId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	return
}

func (s documentMUS) Size(v Document) (size int) {
	size = ord.String.Size(v.Id)
	size += DocumentStatusMUS.Size(v.Status)
	size += ord.String.Size(v.FilePath)
	size += ord.String.Size(v.MimeType)
	size += varint.Int64.Size(v.FileSize)
	size += ord.String.Size(v.UserId)
	size += timeSer.Size(v.CreatedAt)
	size += timeSer.Size(v.UpdatedAt)
	return size
}

func (s documentMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = ord.String.Skip(bs); err != nil {
		return
	}
	for i := 0; i < 3; i++ {
		if n1, err = ord.String.Skip(bs[n:]); err != nil {
			return
		}
		n += n1
	}
	if n1, err = varint.Int64.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = ord.String.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	for i := 0; i < 2; i++ {
		if n1, err = timeSer.Skip(bs[n:]); err != nil {
			return
		}
		n += n1
	}
	return
}

type processingStepMUS struct{}

func (s processingStepMUS) Marshal(v ProcessingStep, bs []byte) (n int) {
	n = StepStatusMUS.Marshal(v.Status, bs)
	n += varint.Int.Marshal(v.Progress, bs[n:])
	n += timePtrSer.Marshal(v.StartTime, bs[n:])
	n += timePtrSer.Marshal(v.EndTime, bs[n:])
	n += ord.String.Marshal(v.Error, bs[n:])
	n += metadataSer.Marshal(v.Metadata, bs[n:])
	return n
}

func (s processingStepMUS) Unmarshal(bs []byte) (v ProcessingStep, n int, err error) {
	var n1 int
	v.Status, n, err = StepStatusMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Progress, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.StartTime, n1, err = timePtrSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EndTime, n1, err = timePtrSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Error, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = metadataSer.Unmarshal(bs[n:])
	n += n1
	return
}

func (s processingStepMUS) Size(v ProcessingStep) (size int) {
	size = StepStatusMUS.Size(v.Status)
	size += varint.Int.Size(v.Progress)
	size += timePtrSer.Size(v.StartTime)
	size += timePtrSer.Size(v.EndTime)
	size += ord.String.Size(v.Error)
	size += metadataSer.Size(v.Metadata)
	return size
}

func (s processingStepMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = StepStatusMUS.Skip(bs); err != nil {
		return
	}
	if n1, err = varint.Int.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = timePtrSer.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = timePtrSer.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = ord.String.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = metadataSer.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

type chunkMUS struct{}

func (s chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.DocumentId, bs[n:])
	n += varint.Int.Marshal(v.Seq, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += vectorSer.Marshal(v.Vector, bs[n:])
	n += timeSer.Marshal(v.InsertedAt, bs[n:])
	n += timeSer.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (s chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	var n1 int
	v.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.DocumentId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Seq, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = vectorSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.InsertedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	return
}

func (s chunkMUS) Size(v Chunk) (size int) {
	size = ord.String.Size(v.Id)
	size += ord.String.Size(v.DocumentId)
	size += varint.Int.Size(v.Seq)
	size += ord.String.Size(v.Text)
	size += vectorSer.Size(v.Vector)
	size += timeSer.Size(v.InsertedAt)
	size += timeSer.Size(v.UpdatedAt)
	return size
}

func (s chunkMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = ord.String.Skip(bs); err != nil {
		return
	}
	if n1, err = ord.String.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = varint.Int.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = ord.String.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = vectorSer.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	for i := 0; i < 2; i++ {
		if n1, err = timeSer.Skip(bs[n:]); err != nil {
			return
		}
		n += n1
	}
	return
}

type checkpointMUS struct{}

func (s checkpointMUS) Marshal(v Checkpoint, bs []byte) (n int) {
	n = ord.String.Marshal(v.DocumentId, bs)
	n += StageNameMUS.Marshal(v.Stage, bs[n:])
	n += varint.Int.Marshal(v.Position, bs[n:])
	n += timeSer.Marshal(v.UpdatedAt, bs[n:])
	n += ord.String.Marshal(string(v.State), bs[n:])
	return n
}

func (s checkpointMUS) Unmarshal(bs []byte) (v Checkpoint, n int, err error) {
	var n1 int
	v.DocumentId, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Stage, n1, err = StageNameMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Position, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var state string
	state, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if len(state) > 0 {
		v.State = []byte(state)
	}
	return
}

func (s checkpointMUS) Size(v Checkpoint) (size int) {
	size = ord.String.Size(v.DocumentId)
	size += StageNameMUS.Size(v.Stage)
	size += varint.Int.Size(v.Position)
	size += timeSer.Size(v.UpdatedAt)
	size += ord.String.Size(string(v.State))
	return size
}

func (s checkpointMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = ord.String.Skip(bs); err != nil {
		return
	}
	if n1, err = StageNameMUS.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = varint.Int.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = timeSer.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = ord.String.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}
