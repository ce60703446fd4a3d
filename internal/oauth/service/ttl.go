package service

import (
	"time"

	"github.com/oauth2gate/authd/internal/oauth/domain"
)

// TTLClass identifies one of the four (clientType x internal) buckets the
// configured TTL tables are keyed by.
type TTLClass struct {
	Type     domain.ClientType
	Internal bool
}

// TTLTable maps every (clientType, internal) combination to a lifetime. All
// four combinations must be populated; TokenFactory treats a missing entry
// as a configuration error rather than silently defaulting.
type TTLTable map[TTLClass]time.Duration

func classOf(c domain.Client) TTLClass {
	return TTLClass{Type: c.Type, Internal: c.Internal}
}

// Lookup returns the configured duration for c's class, or ok=false if the
// table has no entry for it.
func (t TTLTable) Lookup(c domain.Client) (time.Duration, bool) {
	d, ok := t[classOf(c)]
	return d, ok
}
