package checkpoint

import (
	"encoding/binary"
	"fmt"
	"time"
)

// keyPrefix namespaces ledger entries from anything else that might share
// the database directory.
const keyPrefix = "uprec"

// entrySize is checksum (8 bytes) plus unix-micro timestamp (8 bytes).
const entrySize = 16

func entryKey(target, vectorID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", keyPrefix, target, vectorID))
}

// entry is one recorded upload.
type entry struct {
	Checksum   uint64
	UploadedAt time.Time
}

func encodeEntry(e entry) []byte {
	buf := make([]byte, entrySize)
	binary.BigEndian.PutUint64(buf[0:8], e.Checksum)
	binary.BigEndian.PutUint64(buf[8:16], uint64(e.UploadedAt.UnixMicro()))
	return buf
}

func decodeEntry(buf []byte) (entry, error) {
	if len(buf) != entrySize {
		return entry{}, fmt.Errorf("%w: got %d bytes, want %d", ErrCorruptEntry, len(buf), entrySize)
	}
	return entry{
		Checksum:   binary.BigEndian.Uint64(buf[0:8]),
		UploadedAt: time.UnixMicro(int64(binary.BigEndian.Uint64(buf[8:16]))),
	}, nil
}
