// Package rank implements the query-time fuzzy filter and score sort
// over a snapshot of raw candidates (spec §4.6). It also plays the role
// of spec §1's "fuzzy-match candidate repository" external collaborator
// — the spec leaves that component a black box behind
// canonicalize/match, and this package is that implementation.
package rank

import (
	"sort"

	"github.com/standardbeagle/complete-engine/internal/backend"
)

// pair couples one raw candidate with its match result for sorting.
type pair struct {
	data   backend.CompletionData
	result Result
}

// Rank runs the spec §4.6 algorithm against a snapshot: intern every
// candidate's insertion text, prune by letter-bitset, score the
// survivors, sort ascending (best match first), and project back to
// CompletionData. Idempotent: ranking an already-ranked sequence with
// the same query reproduces the same order (spec §8 invariant 4).
func Rank(repo *Repository, query string, cands []backend.CompletionData) []backend.CompletionData {
	if len(cands) == 0 {
		return nil
	}

	texts := make([]string, len(cands))
	for i, c := range cands {
		texts[i] = c.InsertionText
	}
	handles := repo.GetCandidatesForStrings(texts)

	queryBits := letterBitset(query)

	pairs := make([]pair, 0, len(cands))
	for i, c := range cands {
		h := handles[i]
		if query != "" && !h.MatchesQueryBits(queryBits) {
			// Bitset pre-check must always precede the expensive
			// subsequence scan (spec §4.6): reject without scoring.
			continue
		}
		result := h.Match(query)
		if !result.IsSubsequence {
			continue
		}
		pairs = append(pairs, pair{data: c, result: result})
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].result.Less(pairs[j].result)
	})

	out := make([]backend.CompletionData, len(pairs))
	for i, p := range pairs {
		out[i] = p.data
	}
	return out
}
