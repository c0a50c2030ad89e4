package session

import (
	"github.com/vytor/cftracker/internal/analysis"
	"github.com/vytor/cftracker/internal/models"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// State is the single dashboard session. Values are treated as immutable:
// the reducer replaces slices and maps instead of writing into them.
type State struct {
	Handle        string
	Profile       *models.UserInfo
	Submissions   []models.Submission
	RatingHistory []models.RatingChange
	Solved        analysis.SolvedSet
	Upsolve       []models.UpsolveEntry
	Recent        []models.Submission
	Loading       bool
	Err           string

	// Pending is the generation of the fetch in flight, zero when none.
	Pending       uint64
	PendingHandle string

	// Notes mirrors the persisted notes, including keys that are not
	// currently upsolve candidates.
	Notes map[models.ProblemKey]string
}

func (s State) Status() Status {
	switch {
	case s.Loading:
		return StatusLoading
	case s.Err != "":
		return StatusError
	case s.HasData():
		return StatusReady
	default:
		return StatusIdle
	}
}

// HasData reports whether a fetch has ever succeeded for the current handle.
func (s State) HasData() bool {
	return s.Profile != nil
}
