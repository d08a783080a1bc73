package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/zeebo/xxh3"
)

// ErrNotFound marks a file that vanished between discovery and
// fingerprinting. Callers treat it as "target removed", not as a failure.
var ErrNotFound = errors.New("file not found")

// Fingerprint is a cheap equality token for a file's current state. Hash
// mixes the file bytes with the modification time, so a touch without a byte
// change still forces the file itself to be reprocessed. ContentHash covers
// the bytes alone; consumers of the file compare against it, so a bare touch
// never cascades through the dependency graph.
type Fingerprint struct {
	Hash        string
	ContentHash string
	Size        int64
	ModTime     time.Time
}

// Compute reads the file and returns its fingerprint.
func Compute(path string) (*Fingerprint, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	h := xxh3.New()
	h.Write(data)
	content := h.Sum128()

	var ts [8]byte
	binary.LittleEndian.PutUint64(ts[:], uint64(stat.ModTime().UnixNano()))
	h.Write(ts[:])
	full := h.Sum128()

	return &Fingerprint{
		Hash:        formatSum(full),
		ContentHash: formatSum(content),
		Size:        stat.Size(),
		ModTime:     stat.ModTime(),
	}, nil
}

func formatSum(sum xxh3.Uint128) string {
	return fmt.Sprintf("%016x%016x", sum.Hi, sum.Lo)
}
