// Package id generates rebuild-run identifiers. Run ids are ULIDs so the
// rebuild_runs audit table sorts by generation time; the ids of orders and
// chains are derived from the data instead and never come from here.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// Monotonic entropy keeps ids generated within the same millisecond in
	// strictly increasing order, seeded from crypto/rand.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns the next run id.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		// Only possible if the clock runs backwards or entropy fails.
		panic(err)
	}
	return id.String()
}
