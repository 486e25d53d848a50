package rank

import "strings"

// Result is the outcome of matching one candidate against one query.
// Total order for sorting; ties broken by the priority spec §4.6
// defines: strictly higher ratio of consecutive matches, then earlier
// first-match index, then shorter candidate length, then lexicographic
// insertion_text order.
type Result struct {
	IsSubsequence    bool
	ConsecutiveRatio float64
	FirstMatchIndex  int
	CandidateLength  int
	InsertionText    string
}

// Less reports whether r ranks strictly ahead of other (r is the
// better match). Only meaningful when both are subsequence matches.
func (r Result) Less(other Result) bool {
	if r.ConsecutiveRatio != other.ConsecutiveRatio {
		return r.ConsecutiveRatio > other.ConsecutiveRatio
	}
	if r.FirstMatchIndex != other.FirstMatchIndex {
		return r.FirstMatchIndex < other.FirstMatchIndex
	}
	if r.CandidateLength != other.CandidateLength {
		return r.CandidateLength < other.CandidateLength
	}
	return r.InsertionText < other.InsertionText
}

// Match checks whether query is a case-insensitive ASCII subsequence of
// c's insertion text and, if so, scores the match.
func (c *Candidate) Match(query string) Result {
	text := c.Text
	if query == "" {
		// Empty-query path: every candidate "matches" trivially so the
		// sorting pool can fall back to identity ordering by
		// insertion_text (spec S1). CandidateLength is left zero so the
		// length tie-break does not precede the text comparison.
		return Result{
			IsSubsequence:    true,
			ConsecutiveRatio: 1,
			FirstMatchIndex:  0,
			InsertionText:    text,
		}
	}

	lowerText := strings.ToLower(text)
	lowerQuery := strings.ToLower(query)

	qi := 0
	firstIdx := -1
	consecutive := 0
	lastMatch := -2
	for ci := 0; ci < len(lowerText) && qi < len(lowerQuery); ci++ {
		if lowerText[ci] != lowerQuery[qi] {
			continue
		}
		if firstIdx == -1 {
			firstIdx = ci
		}
		if ci == lastMatch+1 {
			consecutive++
		}
		lastMatch = ci
		qi++
	}

	if qi != len(lowerQuery) {
		return Result{IsSubsequence: false}
	}

	return Result{
		IsSubsequence:    true,
		ConsecutiveRatio: float64(consecutive) / float64(len(lowerQuery)),
		FirstMatchIndex:  firstIdx,
		CandidateLength:  len(text),
		InsertionText:    text,
	}
}
