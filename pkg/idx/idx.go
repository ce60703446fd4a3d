// Package idx generates lexicographically sortable opaque identifiers used
// as the primary keys of clients and token records. Authorization codes do
// not use it; they are random opaque values from cryptox.GenerateToken.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID is an opaque, sortable identifier backed by a ULID.
type ID string

// Zero is the empty ID; treat it as "unset", never as a valid reference.
const Zero ID = ""

// SizeBytes is the length of the raw binary form of an ID.
const SizeBytes = 16

// ErrInvalid reports a malformed identifier string.
var ErrInvalid = errors.New("idx: invalid id")

var (
	once sync.Once
	gen  *generator
)

// generator produces ULIDs from a monotonic entropy source so that IDs
// minted within the same millisecond still sort in issuance order.
type generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func (g *generator) new(t time.Time) ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ID(ulid.MustNew(ulid.Timestamp(t), g.entropy).String())
}

func initGen() {
	gen = &generator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a fresh ID timestamped at the current UTC time.
func New() ID {
	once.Do(initGen)
	return gen.new(time.Now().UTC())
}

// NewAt returns a fresh ID timestamped at t, mainly useful for tests that
// need deterministic ordering.
func NewAt(t time.Time) ID {
	once.Do(initGen)
	return gen.new(t.UTC())
}

// Parse validates s as a ULID string and wraps it as an ID.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalid
	}
	if _, err := ulid.ParseStrict(s); err != nil {
		return Zero, ErrInvalid
	}
	return ID(s), nil
}

// IsZero reports whether id has never been assigned.
func (id ID) IsZero() bool { return id == Zero }

// String returns the canonical textual form.
func (id ID) String() string { return string(id) }

// Time extracts the embedded UTC creation timestamp, or the zero time for an
// invalid or zero ID.
func (id ID) Time() time.Time {
	if id.IsZero() {
		return time.Time{}
	}
	u, err := ulid.ParseStrict(id.String())
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}
