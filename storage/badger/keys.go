package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/docpipe/core"
)

// Key prefixes for different data types
const (
	documentPrefix     = "docrec"
	documentUserPrefix = "docuser"
	statePrefix        = "pipstate"
	artifactPrefix     = "artrec"
	chunkRecordPrefix  = "chkrec"
	chunkDocPrefix     = "chkdoc"
	chunkIDSeq         = "chkrecseq"
	checkpointPrefix   = "chkpt"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentPrefix, id))
}

// makeUserDocKey generates a composite key for the user index.
// Format: prefix:userID:createdAtMicros:docID
func makeUserDocKey(userID string, createdAtMicros int64, docID string) []byte {
	prefix := fmt.Sprintf("%s:%s:", documentUserPrefix, userID)
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8+len(docID))
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAtMicros))
	offset += 8
	copy(buf[offset:], docID)
	return buf
}

// makePartialUserDocKey generates a partial key for user index scans.
func makePartialUserDocKey(userID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", documentUserPrefix, userID))
}

// makeStateKey generates a key for a document's pipeline state snapshot.
func makeStateKey(documentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", statePrefix, documentID))
}

// makeArtifactKey generates a key for an artifact by content reference.
func makeArtifactKey(ref core.ArtifactRef) []byte {
	return []byte(fmt.Sprintf("%s:%s", artifactPrefix, ref))
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", chunkRecordPrefix, id))
}

// makeChunkDocKey generates a composite key for the document index.
// Format: prefix:docID:seq
func makeChunkDocKey(documentID string, seq int) []byte {
	prefix := fmt.Sprintf("%s:%s:", chunkDocPrefix, documentID)
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(seq))
	return buf
}

// makePartialChunkDocKey generates a partial key for document index scans.
func makePartialChunkDocKey(documentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkDocPrefix, documentID))
}

// makeCheckpointKey generates a key for a document+stage checkpoint.
func makeCheckpointKey(documentID string, stage core.StageName) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", checkpointPrefix, documentID, stage))
}
