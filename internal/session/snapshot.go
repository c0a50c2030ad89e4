package session

import (
	"slices"

	"github.com/vytor/cftracker/internal/analysis"
	"github.com/vytor/cftracker/internal/models"
)

// Snapshot is a read-only view of the session and everything derived from
// it. Submissions are shared with the session and must not be modified.
type Snapshot struct {
	Status        Status                   `json:"status"`
	Handle        string                   `json:"handle,omitempty"`
	PendingHandle string                   `json:"pendingHandle,omitempty"`
	Loading       bool                     `json:"loading"`
	Error         string                   `json:"error,omitempty"`
	Profile       *models.UserInfo         `json:"profile"`
	Submissions   []models.Submission      `json:"-"`
	RatingHistory []models.RatingChange    `json:"ratingHistory"`
	Solved        []models.ProblemKey      `json:"solved"`
	Upsolve       []models.UpsolveEntry    `json:"upsolve"`
	Recent        []models.Submission      `json:"recent"`
	Difficulty    []models.DifficultyCount `json:"difficulty"`
	Tags          []models.TagCount        `json:"tags"`
	Stats         models.SubmissionStats   `json:"stats"`
	Summary       models.SubmissionSummary `json:"summary"`
	Struggled     []models.StruggledEntry  `json:"struggled"`
	Rating        []models.RatingPoint     `json:"rating"`
}

// NewSnapshot derives the rendering view of s.
func NewSnapshot(s State) Snapshot {
	snap := Snapshot{
		Status:        s.Status(),
		Handle:        s.Handle,
		PendingHandle: s.PendingHandle,
		Loading:       s.Loading,
		Error:         s.Err,
		Submissions:   s.Submissions,
		RatingHistory: cloneOrEmpty(s.RatingHistory),
		Solved:        s.Solved.Keys(),
		Upsolve:       cloneUpsolve(s.Upsolve),
		Recent:        cloneOrEmpty(s.Recent),
		Difficulty:    analysis.DifficultyDistribution(s.Submissions),
		Tags:          analysis.TagDistribution(s.Submissions),
		Stats:         analysis.Stats(s.Submissions),
		Summary:       analysis.Summary(s.Submissions),
		Struggled:     analysis.Struggled(s.Submissions),
		Rating:        analysis.RatingTrajectory(s.RatingHistory),
	}
	if s.Profile != nil {
		p := *s.Profile
		snap.Profile = &p
	}
	return snap
}

// PieTags is the shortened tag list used by the pie chart.
func (s Snapshot) PieTags() []models.TagCount {
	return analysis.TopTags(s.Tags, analysis.PieTagLimit)
}

func cloneOrEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return slices.Clone(in)
}

func cloneUpsolve(in []models.UpsolveEntry) []models.UpsolveEntry {
	out := make([]models.UpsolveEntry, len(in))
	for i, e := range in {
		e.Verdicts = slices.Clone(e.Verdicts)
		out[i] = e
	}
	return out
}
