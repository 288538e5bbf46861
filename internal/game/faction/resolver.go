// Package faction implements the bidirectional faction relationship matrix
// used for targeting decisions and victory evaluation.
package faction

import "sync"

// Relationship classifies how two factions regard each other.
type Relationship int

const (
	// Hostile factions attack each other; it is the default for any pair
	// without an explicit entry.
	Hostile Relationship = iota
	// Neutral factions ignore each other.
	Neutral
	// Ally factions support each other. A faction is always its own Ally.
	Ally
)

// String returns a human-readable relationship label.
func (r Relationship) String() string {
	switch r {
	case Hostile:
		return "hostile"
	case Neutral:
		return "neutral"
	case Ally:
		return "ally"
	default:
		return "unknown"
	}
}

// pairKey is the unordered lookup key for a faction pair.
type pairKey struct {
	a, b string
}

// key normalises (a, b) so both orderings map to the same entry.
func key(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// Resolver holds the symmetric {faction × faction → Relationship} matrix.
// All methods are safe for concurrent use; reads are O(1).
//
// Invariant: Get(a, b) == Get(b, a) for every pair after every write.
// Invariant: Get(x, x) == Ally for every faction x.
type Resolver struct {
	mu      sync.RWMutex
	entries map[pairKey]Relationship
}

// NewResolver creates a Resolver with no explicit entries, so every distinct
// pair starts out Hostile.
func NewResolver() *Resolver {
	return &Resolver{entries: make(map[pairKey]Relationship)}
}

// Get returns the relationship between a and b.
//
// Postcondition: Returns Ally when a == b; the stored entry when present;
// Hostile otherwise.
func (r *Resolver) Get(a, b string) Relationship {
	if a == b {
		return Ally
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rel, ok := r.entries[key(a, b)]; ok {
		return rel
	}
	return Hostile
}

// Set records the relationship between a and b in both directions atomically.
// Setting a faction against itself is a no-op; identical factions are always
// Ally.
//
// Postcondition: Get(a, b) == Get(b, a) == rel for a != b.
func (r *Resolver) Set(a, b string, rel Relationship) {
	if a == b {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key(a, b)] = rel
}

// IsHostile reports whether a and b attack each other.
func (r *Resolver) IsHostile(a, b string) bool {
	return r.Get(a, b) == Hostile
}

// IsAlly reports whether a and b support each other.
func (r *Resolver) IsAlly(a, b string) bool {
	return r.Get(a, b) == Ally
}
