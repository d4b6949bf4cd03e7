// Package id generates the trade record identifiers used by the journal.
package id

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy io.Reader
)

func init() {
	// ulid.Monotonic keeps IDs generated within the same millisecond
	// strictly increasing; the PRNG behind it is seeded from crypto/rand
	// so IDs are not guessable across runs.
	var seed int64
	_ = binary.Read(cryptorand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	entropy = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns the next trade identifier as a ULID string. Trade IDs sort
// lexicographically by execution time, so journal rows and the SQLite time
// index agree on ordering.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), entropy)
	if err != nil {
		panic(err)
	}
	return id.String()
}
