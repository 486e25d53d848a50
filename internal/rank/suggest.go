package rank

import "github.com/hbollon/go-edlib"

// Suggest returns up to limit of cands ordered by Jaro-Winkler
// similarity to query, most similar first — a "did you mean"
// supplement grounded on the teacher's fuzzy matcher. It does not
// itself exclude subsequence matches; the engine calls it only when
// the ranked result for a non-empty query is empty.
// It never participates in primary ranking or ordering guarantees
// (spec §8 invariants are defined purely over the subsequence path);
// this is strictly additive, best-effort sugar.
func Suggest(query string, cands []string, limit int) []string {
	if query == "" || limit <= 0 || len(cands) == 0 {
		return nil
	}

	type scored struct {
		text  string
		score float32
	}

	var scoredCands []scored
	for _, c := range cands {
		sim, err := edlib.StringsSimilarity(query, c, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if sim <= 0 {
			continue
		}
		scoredCands = append(scoredCands, scored{text: c, score: sim})
	}

	for i := 1; i < len(scoredCands); i++ {
		for j := i; j > 0 && scoredCands[j].score > scoredCands[j-1].score; j-- {
			scoredCands[j], scoredCands[j-1] = scoredCands[j-1], scoredCands[j]
		}
	}

	if len(scoredCands) > limit {
		scoredCands = scoredCands[:limit]
	}
	out := make([]string, len(scoredCands))
	for i, s := range scoredCands {
		out[i] = s.text
	}
	return out
}
