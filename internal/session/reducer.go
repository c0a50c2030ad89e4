package session

import (
	"maps"
	"slices"

	"github.com/vytor/cftracker/internal/analysis"
	"github.com/vytor/cftracker/internal/models"
)

// Action is a state transition applied by Reduce.
type Action interface {
	isAction()
}

type fetchStarted struct {
	Handle     string
	Generation uint64
}

type fetchSucceeded struct {
	Generation  uint64
	Data        *models.ProfileData
	RecentLimit int
}

type fetchFailed struct {
	Generation uint64
	Message    string
}

type noteEdited struct {
	Key  models.ProblemKey
	Text string
}

type errorCleared struct{}

type restored struct {
	Handle string
	Notes  map[models.ProblemKey]string
}

type handleForgotten struct{}

func (fetchStarted) isAction()    {}
func (fetchSucceeded) isAction()  {}
func (fetchFailed) isAction()     {}
func (noteEdited) isAction()      {}
func (errorCleared) isAction()    {}
func (restored) isAction()        {}
func (handleForgotten) isAction() {}

// Reduce returns the state that results from applying a to s. It never
// modifies s. Fetch completions whose generation is not the pending one
// are ignored.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case fetchStarted:
		s.Loading = true
		s.Err = ""
		s.Pending = a.Generation
		s.PendingHandle = a.Handle
		return s

	case fetchSucceeded:
		if a.Generation == 0 || a.Generation != s.Pending || a.Data == nil {
			return s
		}
		subs := a.Data.Submissions
		profile := a.Data.UserInfo
		s.Handle = s.PendingHandle
		s.Profile = &profile
		s.Submissions = subs
		s.RatingHistory = a.Data.RatingHistory
		s.Solved = analysis.Classify(subs)
		s.Upsolve = withNotes(analysis.Upsolve(subs), s.Notes)
		s.Recent = analysis.RecentAccepted(subs, a.RecentLimit)
		s.Loading = false
		s.Err = ""
		s.Pending = 0
		s.PendingHandle = ""
		return s

	case fetchFailed:
		if a.Generation == 0 || a.Generation != s.Pending {
			return s
		}
		s.Loading = false
		s.Err = a.Message
		s.Pending = 0
		s.PendingHandle = ""
		return s

	case noteEdited:
		notes := maps.Clone(s.Notes)
		if notes == nil {
			notes = make(map[models.ProblemKey]string)
		}
		notes[a.Key] = a.Text
		s.Notes = notes

		i := slices.IndexFunc(s.Upsolve, func(e models.UpsolveEntry) bool { return e.Key() == a.Key })
		if i >= 0 {
			upsolve := slices.Clone(s.Upsolve)
			upsolve[i].Notes = a.Text
			s.Upsolve = upsolve
		}
		return s

	case errorCleared:
		s.Err = ""
		return s

	case restored:
		if a.Handle != "" {
			s.Handle = a.Handle
		}
		if len(a.Notes) > 0 {
			notes := maps.Clone(s.Notes)
			if notes == nil {
				notes = make(map[models.ProblemKey]string, len(a.Notes))
			}
			maps.Copy(notes, a.Notes)
			s.Notes = notes
			s.Upsolve = withNotes(s.Upsolve, notes)
		}
		return s

	case handleForgotten:
		return State{Notes: s.Notes}
	}
	return s
}

// withNotes returns entries with persisted notes filled in. entries is not
// modified.
func withNotes(entries []models.UpsolveEntry, notes map[models.ProblemKey]string) []models.UpsolveEntry {
	if len(notes) == 0 || len(entries) == 0 {
		return entries
	}
	out := slices.Clone(entries)
	for i := range out {
		if text, ok := notes[out[i].Key()]; ok {
			out[i].Notes = text
		}
	}
	return out
}
