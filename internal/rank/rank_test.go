package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/complete-engine/internal/backend"
)

func completions(texts ...string) []backend.CompletionData {
	out := make([]backend.CompletionData, len(texts))
	for i, t := range texts {
		out[i] = backend.CompletionData{InsertionText: t, MenuText: t}
	}
	return out
}

// S1: empty query over {"abacus", "banana"} returns identity order.
func TestRankEmptyQueryIsIdentitySort(t *testing.T) {
	repo := NewRepository()
	out := Rank(repo, "", completions("abacus", "banana"))
	require.Len(t, out, 2)
	assert.Equal(t, "abacus", out[0].InsertionText)
	assert.Equal(t, "banana", out[1].InsertionText)
}

// S2: query "ba" ranks "banana" ahead of "abacus". Both contain "ba"
// consecutively (equal consecutive ratio), so the earlier first match
// (offset 0 in banana, offset 1 in abacus) decides.
func TestRankRefinementPrefersEarlierFirstMatch(t *testing.T) {
	repo := NewRepository()
	out := Rank(repo, "ba", completions("abacus", "banana"))
	require.Len(t, out, 2)
	assert.Equal(t, "banana", out[0].InsertionText)
	assert.Equal(t, "abacus", out[1].InsertionText)
}

// S3: query "x" contains a letter absent from every candidate's
// bitset, so the pre-filter rejects all of them before scoring.
func TestRankBitsetPrunesImpossibleQuery(t *testing.T) {
	repo := NewRepository()
	out := Rank(repo, "x", completions("abacus", "banana"))
	assert.Empty(t, out)
}

func TestRankDropsNonSubsequenceMatches(t *testing.T) {
	repo := NewRepository()
	out := Rank(repo, "nab", completions("banana"))
	assert.Empty(t, out)
}

// Invariant: ranking is idempotent under repeated application with the
// same query against the same candidate set.
func TestRankIsIdempotent(t *testing.T) {
	repo := NewRepository()
	cands := completions("abacus", "banana", "band", "bandana")
	first := Rank(repo, "ban", cands)
	second := Rank(repo, "ban", cands)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].InsertionText, second[i].InsertionText)
	}
}

// Invariant: the bitset pre-check never rejects a true subsequence
// match — it is a sound, not merely fast, necessary condition.
func TestBitsetNeverRejectsATrueMatch(t *testing.T) {
	repo := NewRepository()
	cands := completions("banana", "bandana", "cannoli", "abacus")
	for _, query := range []string{"ban", "a", "na", "ab"} {
		full := Rank(repo, query, cands)
		for _, c := range cands {
			if isSubsequence(query, c.InsertionText) {
				found := false
				for _, r := range full {
					if r.InsertionText == c.InsertionText {
						found = true
					}
				}
				assert.Truef(t, found, "query %q should have matched %q", query, c.InsertionText)
			}
		}
	}
}

func isSubsequence(query, text string) bool {
	qi := 0
	for i := 0; i < len(text) && qi < len(query); i++ {
		if text[i] == query[qi] {
			qi++
		}
	}
	return qi == len(query)
}

func TestRepositoryInterningIsIdempotent(t *testing.T) {
	repo := NewRepository()
	first := repo.GetCandidatesForStrings([]string{"abacus", "banana"})
	second := repo.GetCandidatesForStrings([]string{"abacus", "banana"})
	assert.Same(t, first[0], second[0])
	assert.Same(t, first[1], second[1])
}

func TestSuggestReturnsNilOnEmptyQuery(t *testing.T) {
	out := Suggest("", []string{"abacus"}, 5)
	assert.Nil(t, out)
}

func TestSuggestRespectsLimit(t *testing.T) {
	out := Suggest("banana", []string{"banana", "bandana", "band", "banner", "bannister"}, 2)
	assert.LessOrEqual(t, len(out), 2)
}
