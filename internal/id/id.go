// Package id generates identifiers for journal records.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu          sync.Mutex
	mono        io.Reader
	lastTradeID int64
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID string. IDs generated within the same millisecond
// remain lexicographically increasing. It fails when the entropy source
// fails or the monotonic sequence overflows within one millisecond.
func New() (string, error) {
	mu.Lock()
	defer mu.Unlock()

	return newULID(time.Now().UTC(), mono)
}

func newULID(now time.Time, entropy io.Reader) (string, error) {
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", fmt.Errorf("generating ulid: %w", err)
	}
	return id.String(), nil
}

// NextTradeID returns a millisecond timestamp that is strictly greater than
// every ID returned before, including ones passed to Observe.
func NextTradeID() int64 {
	return nextTradeID(time.Now())
}

func nextTradeID(now time.Time) int64 {
	mu.Lock()
	defer mu.Unlock()

	candidate := now.UnixMilli()
	if candidate <= lastTradeID {
		candidate = lastTradeID + 1
	}
	lastTradeID = candidate
	return candidate
}

// Observe records an existing trade ID so later IDs sort after it.
func Observe(existing int64) {
	mu.Lock()
	defer mu.Unlock()

	if existing > lastTradeID {
		lastTradeID = existing
	}
}
