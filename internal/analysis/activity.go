package analysis

import (
	"math"
	"sort"

	"github.com/vytor/cftracker/internal/models"
)

// DefaultRecentLimit is the size of the activity feed.
const DefaultRecentLimit = 10

// RecentAccepted returns up to limit accepted submissions, newest first.
// Several accepted submissions of the same problem all appear.
func RecentAccepted(submissions []models.Submission, limit int) []models.Submission {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	accepted := make([]models.Submission, 0)
	for _, s := range submissions {
		if s.Verdict.Accepted() {
			accepted = append(accepted, s)
		}
	}
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].CreationTimeSeconds > accepted[j].CreationTimeSeconds
	})
	if len(accepted) > limit {
		accepted = accepted[:limit]
	}
	return accepted
}

// Stats computes the success rate over raw submissions.
func Stats(submissions []models.Submission) models.SubmissionStats {
	st := models.SubmissionStats{Total: len(submissions)}
	for _, s := range submissions {
		if s.Verdict.Accepted() {
			st.Accepted++
		}
	}
	if st.Total > 0 {
		st.Rate = int(math.Round(float64(st.Accepted) / float64(st.Total) * 100))
	}
	return st
}

// Summary counts distinct solved problems and distinct problems with at
// least one submission that was not accepted.
func Summary(submissions []models.Submission) models.SubmissionSummary {
	solved := make(map[models.ProblemKey]struct{})
	attempted := make(map[models.ProblemKey]struct{})
	for _, s := range submissions {
		if s.Verdict.Accepted() {
			solved[s.Key()] = struct{}{}
		} else {
			attempted[s.Key()] = struct{}{}
		}
	}
	return models.SubmissionSummary{
		TotalSolved:      len(solved),
		TotalAttempted:   len(attempted),
		TotalSubmissions: len(submissions),
	}
}
