package analysis_test

import "github.com/vytor/cftracker/internal/models"

func intPtr(v int) *int { return &v }

type subOpt func(*models.Submission)

func withRating(r int) subOpt {
	return func(s *models.Submission) { s.Problem.Rating = intPtr(r) }
}

func withTags(tags ...string) subOpt {
	return func(s *models.Submission) { s.Problem.Tags = tags }
}

func withID(id int64) subOpt {
	return func(s *models.Submission) { s.ID = id }
}

func sub(contest int, index string, verdict models.Verdict, t int64, opts ...subOpt) models.Submission {
	s := models.Submission{
		ContestID:           contest,
		CreationTimeSeconds: t,
		Problem: models.Problem{
			ContestID: contest,
			Index:     index,
			Name:      index + " problem",
			Tags:      []string{},
		},
		Verdict: verdict,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func key(contest int, index string) models.ProblemKey {
	return models.ProblemKey{ContestID: contest, Index: index}
}
