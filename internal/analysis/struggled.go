package analysis

import (
	"slices"

	"github.com/vytor/cftracker/internal/models"
)

// Struggled lists solved problems that also collected actionable failures,
// the "previously struggled, later solved" signal that Upsolve discards.
// AcceptedTime is the earliest accepted submission.
func Struggled(submissions []models.Submission) []models.StruggledEntry {
	solved := Classify(submissions)

	index := make(map[models.ProblemKey]int)
	accepted := make(map[models.ProblemKey]bool)
	out := make([]models.StruggledEntry, 0)
	for _, s := range submissions {
		key := s.Key()
		if !solved.Has(key) {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, models.StruggledEntry{Problem: s.Problem})
		}
		e := &out[i]
		switch {
		case s.Verdict.Accepted():
			if !accepted[key] || s.CreationTimeSeconds < e.AcceptedTime {
				e.AcceptedTime = s.CreationTimeSeconds
				accepted[key] = true
			}
		case s.Verdict.Actionable():
			e.Failures++
			if !slices.Contains(e.Verdicts, s.Verdict) {
				e.Verdicts = append(e.Verdicts, s.Verdict)
			}
		}
	}

	return slices.DeleteFunc(out, func(e models.StruggledEntry) bool {
		return e.Failures == 0
	})
}
