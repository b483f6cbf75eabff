// Package ranking selects the top-N candidates from a probability
// distribution produced by the scoring model.
package ranking

import (
	"errors"
	"math"
	"sort"
)

// ErrInvalidInput is returned for an empty distribution or non-positive n.
var ErrInvalidInput = errors.New("invalid ranking input")

// CandidateScore pairs a candidate id with its model probability.
type CandidateScore struct {
	CandidateID int
	Probability float64
}

// Rank sorts candidates by probability descending, breaking ties by ascending
// candidate id so that near-uniform distributions still order reproducibly,
// and truncates to the first n. Probabilities are passed through unrounded;
// presentation rounding happens at the output boundary only, so it can never
// change the sort order.
func Rank(dist map[int]float64, n int) ([]CandidateScore, error) {
	if len(dist) == 0 || n <= 0 {
		return nil, ErrInvalidInput
	}

	ranked := make([]CandidateScore, 0, len(dist))
	for id, p := range dist {
		ranked = append(ranked, CandidateScore{CandidateID: id, Probability: p})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Probability != ranked[j].Probability {
			return ranked[i].Probability > ranked[j].Probability
		}
		return ranked[i].CandidateID < ranked[j].CandidateID
	})

	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// RoundProbability rounds to 4 decimal places for presentation. Apply only to
// already-ranked output.
func RoundProbability(p float64) float64 {
	return math.Round(p*10000) / 10000
}
