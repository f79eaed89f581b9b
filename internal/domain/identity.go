package domain

import (
	"crypto/md5" //nolint:gosec // content addressing, not a security boundary
	"encoding/hex"
	"fmt"
	"time"
)

// PaperID derives a stable identifier from the source filename and the
// ingestion instant. Because the instant is part of the input, two uploads
// of the same file get distinct identities; the ID is only reproducible
// given the exact same timestamp.
func PaperID(filename string, ingestedAt time.Time) string {
	content := filename + "_" + ingestedAt.Format(time.RFC3339Nano)
	sum := md5.Sum([]byte(content)) //nolint:gosec // see above
	return hex.EncodeToString(sum[:])
}

// ChunkID derives a deterministic identifier from the paper ID, section
// name, and the chunk's ordinal index within that section. Identical
// inputs always yield the identical ID, so re-ingesting the same paper
// addresses the same chunk keys.
func ChunkID(paperID, section string, index int) string {
	content := fmt.Sprintf("%s_%s_%d", paperID, section, index)
	sum := md5.Sum([]byte(content)) //nolint:gosec // see above
	return hex.EncodeToString(sum[:])
}
