package analysis

import (
	"sort"

	"github.com/vytor/cftracker/internal/models"
)

// SolvedSet holds every problem with at least one accepted submission.
type SolvedSet map[models.ProblemKey]struct{}

func (s SolvedSet) Has(key models.ProblemKey) bool {
	_, ok := s[key]
	return ok
}

func (s SolvedSet) Len() int {
	return len(s)
}

// Keys returns the members ordered by contest id, then index.
func (s SolvedSet) Keys() []models.ProblemKey {
	keys := make([]models.ProblemKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ContestID != keys[j].ContestID {
			return keys[i].ContestID < keys[j].ContestID
		}
		return keys[i].Index < keys[j].Index
	})
	return keys
}

// Classify builds the solved set. A problem accepted once stays solved no
// matter what else was submitted for it, so input order does not matter.
func Classify(submissions []models.Submission) SolvedSet {
	solved := make(SolvedSet)
	for _, s := range submissions {
		if s.Verdict.Accepted() {
			solved[s.Key()] = struct{}{}
		}
	}
	return solved
}
