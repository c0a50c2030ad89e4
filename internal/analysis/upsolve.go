package analysis

import (
	"slices"
	"sort"

	"github.com/vytor/cftracker/internal/models"
)

type upsolveAcc struct {
	problem  models.Problem
	verdicts []models.Verdict
	latest   int64
}

// Upsolve collapses the failing submissions of every attempted but unsolved
// problem into one entry. Only actionable verdicts create an entry; solved
// problems are skipped even if their failures came after the acceptance.
// Entries come out in first-seen order with empty notes.
func Upsolve(submissions []models.Submission) []models.UpsolveEntry {
	solved := Classify(submissions)

	accs := make(map[models.ProblemKey]*upsolveAcc)
	var order []models.ProblemKey
	for _, s := range submissions {
		key := s.Key()
		if solved.Has(key) || !s.Verdict.Actionable() {
			continue
		}
		acc, ok := accs[key]
		if !ok {
			acc = &upsolveAcc{problem: s.Problem, latest: s.CreationTimeSeconds}
			accs[key] = acc
			order = append(order, key)
		}
		if !slices.Contains(acc.verdicts, s.Verdict) {
			acc.verdicts = append(acc.verdicts, s.Verdict)
		}
		if s.CreationTimeSeconds > acc.latest {
			acc.latest = s.CreationTimeSeconds
		}
	}

	entries := make([]models.UpsolveEntry, 0, len(order))
	for _, key := range order {
		acc := accs[key]
		entries = append(entries, models.UpsolveEntry{
			Problem:        acc.problem,
			Verdicts:       acc.verdicts,
			Notes:          "",
			SubmissionTime: acc.latest,
		})
	}
	return entries
}

// Upsolve orderings accepted by SortUpsolve.
const (
	SortRecent  = "recent"
	SortRating  = "rating"
	SortContest = "contest"
)

// SortUpsolve returns a sorted copy of entries. Unknown orderings keep the
// input order.
func SortUpsolve(entries []models.UpsolveEntry, by string) []models.UpsolveEntry {
	out := slices.Clone(entries)
	switch by {
	case SortRecent:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].SubmissionTime > out[j].SubmissionTime
		})
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Problem.RatingValue() < out[j].Problem.RatingValue()
		})
	case SortContest:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].Key(), out[j].Key()
			if a.ContestID != b.ContestID {
				return a.ContestID > b.ContestID
			}
			return a.Index < b.Index
		})
	}
	return out
}
