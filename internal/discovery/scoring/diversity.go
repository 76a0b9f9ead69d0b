// internal/discovery/scoring/diversity.go
package scoring

import (
	"sort"
	"strings"
)

// NormalizeQueryText lowercases and collapses whitespace so duplicate
// detection is case and whitespace insensitive.
func NormalizeQueryText(queryText string) string {
	return strings.Join(strings.Fields(strings.ToLower(queryText)), " ")
}

// Dedup removes exact duplicates after normalization, keeping the first
// occurrence in insertion order.
func Dedup(candidates []Candidate) []Candidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		key := NormalizeQueryText(c.QueryText)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// TokenJaccard computes Jaccard similarity between the lowercased word sets
// of two queries.
func TokenJaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, token := range strings.Fields(strings.ToLower(s)) {
		set[token] = true
	}
	return set
}

// SortCandidates orders candidates by overall score descending, with ties
// broken by source priority then insertion index so output is reproducible
// regardless of scheduling.
func SortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Scores.Overall != candidates[j].Scores.Overall {
			return candidates[i].Scores.Overall > candidates[j].Scores.Overall
		}
		if candidates[i].SourcePriority != candidates[j].SourcePriority {
			return candidates[i].SourcePriority > candidates[j].SourcePriority
		}
		return candidates[i].InsertionIndex < candidates[j].InsertionIndex
	})
}

// SelectDiverse greedily accepts candidates from the sorted list whose
// similarity to every already-accepted query stays at or below
// 1 - diversityThreshold, stopping at maxQueries. Each accepted candidate's
// diversity score is 1 minus its highest similarity to the other accepted
// queries.
func SelectDiverse(sorted []Candidate, maxQueries int, diversityThreshold float64) []Candidate {
	if maxQueries <= 0 {
		return nil
	}

	maxSimilarity := 1.0 - diversityThreshold
	accepted := make([]Candidate, 0, maxQueries)

	for _, candidate := range sorted {
		if len(accepted) >= maxQueries {
			break
		}

		highest := 0.0
		ok := true
		for _, kept := range accepted {
			sim := TokenJaccard(candidate.QueryText, kept.QueryText)
			if sim > highest {
				highest = sim
			}
			if sim > maxSimilarity+1e-9 {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		candidate.Scores.Diversity = 1.0 - highest
		accepted = append(accepted, candidate)
	}

	return accepted
}

// BatchDiversity is the average pairwise dissimilarity across the accepted
// set, reported in batch metrics. A single query is fully diverse.
func BatchDiversity(accepted []Candidate) float64 {
	if len(accepted) < 2 {
		if len(accepted) == 0 {
			return 0
		}
		return 1.0
	}

	var total float64
	pairs := 0
	for i := 0; i < len(accepted); i++ {
		for j := i + 1; j < len(accepted); j++ {
			total += 1.0 - TokenJaccard(accepted[i].QueryText, accepted[j].QueryText)
			pairs++
		}
	}
	return total / float64(pairs)
}
