package rank

import (
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Candidate is the repository's interned representation of one
// insertion-text string, carrying a precomputed letter-bitset used for
// O(1) query-impossibility pruning (spec §3).
type Candidate struct {
	Text string
	Bits uint32
}

// letterBitset computes the 26-bit mask of lowercase ASCII letters
// present in s.
func letterBitset(s string) uint32 {
	var bits uint32
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			bits |= 1 << uint(r-'a')
		}
	}
	return bits
}

// MatchesQueryBits reports whether c could possibly contain query as a
// subsequence — a necessary, not sufficient, condition. If this returns
// false the full subsequence scan would also reject the candidate
// (spec §8 invariant 5), so callers should skip it without scoring.
func (c *Candidate) MatchesQueryBits(queryBits uint32) bool {
	return c.Bits&queryBits == queryBits
}

// Repository interns insertion-text strings into Candidate handles,
// keyed by an xxhash digest of the string bytes (the same hashing
// library the teacher uses for file-content identity, repurposed here
// for candidate identity) so repeatedly interning an unchanged
// candidate set costs one hash per string instead of recomputing the
// bitset.
// Internally thread-safe and idempotent on repeated interning, per the
// spec's external-collaborator contract for this component.
type Repository struct {
	mu       sync.Mutex
	interned map[uint64]*Candidate
}

// NewRepository returns an empty candidate repository.
func NewRepository() *Repository {
	return &Repository{interned: make(map[uint64]*Candidate)}
}

// GetCandidatesForStrings interns every string in texts, returning one
// handle per input in the same order. Repeated calls with an
// already-seen string return the same handle instance.
func (r *Repository) GetCandidatesForStrings(texts []string) []*Candidate {
	out := make([]*Candidate, len(texts))
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, text := range texts {
		key := xxhash.Sum64String(text)
		c, ok := r.interned[key]
		if !ok {
			c = &Candidate{Text: text, Bits: letterBitset(text)}
			r.interned[key] = c
		}
		out[i] = c
	}
	return out
}
