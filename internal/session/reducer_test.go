package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/cftracker/internal/models"
)

func submission(contest int, index string, verdict models.Verdict, t int64) models.Submission {
	return models.Submission{
		ContestID:           contest,
		CreationTimeSeconds: t,
		Problem:             models.Problem{ContestID: contest, Index: index, Tags: []string{"dp"}},
		Verdict:             verdict,
	}
}

func payload(handle string, subs ...models.Submission) *models.ProfileData {
	return &models.ProfileData{
		UserInfo:      models.UserInfo{Handle: handle, Rating: 1500},
		Submissions:   subs,
		RatingHistory: []models.RatingChange{{ContestID: 1, ContestName: "Round 1", NewRating: 1500}},
	}
}

var (
	keyA = models.ProblemKey{ContestID: 100, Index: "A"}
	keyB = models.ProblemKey{ContestID: 100, Index: "B"}
)

func loaded(t *testing.T) State {
	t.Helper()
	s := Reduce(State{}, fetchStarted{Handle: "tourist", Generation: 1})
	s = Reduce(s, fetchSucceeded{Generation: 1, RecentLimit: 10, Data: payload("tourist",
		submission(100, "A", models.VerdictOK, 200),
		submission(100, "B", models.VerdictWrongAnswer, 100),
		submission(100, "B", models.VerdictTimeLimitExceeded, 150),
	)})
	require.Equal(t, StatusReady, s.Status())
	return s
}

func TestReduce_FetchLifecycle(t *testing.T) {
	s := State{}
	assert.Equal(t, StatusIdle, s.Status())

	s = Reduce(s, fetchStarted{Handle: "tourist", Generation: 1})
	assert.Equal(t, StatusLoading, s.Status())
	assert.Equal(t, "tourist", s.PendingHandle)
	assert.Empty(t, s.Handle, "handle is adopted on success")

	s = Reduce(s, fetchSucceeded{Generation: 1, RecentLimit: 10, Data: payload("tourist",
		submission(100, "A", models.VerdictWrongAnswer, 100),
		submission(100, "A", models.VerdictOK, 200),
		submission(100, "B", models.VerdictWrongAnswer, 50),
		submission(100, "B", models.VerdictTimeLimitExceeded, 90),
	)})

	assert.Equal(t, StatusReady, s.Status())
	assert.Equal(t, "tourist", s.Handle)
	assert.Zero(t, s.Pending)
	assert.True(t, s.Solved.Has(keyA))
	require.Len(t, s.Upsolve, 1)
	assert.Equal(t, keyB, s.Upsolve[0].Key())
	assert.Equal(t, []models.Verdict{models.VerdictWrongAnswer, models.VerdictTimeLimitExceeded}, s.Upsolve[0].Verdicts)
	assert.Equal(t, int64(90), s.Upsolve[0].SubmissionTime)
	require.Len(t, s.Recent, 1)
	assert.Equal(t, int64(200), s.Recent[0].CreationTimeSeconds)
}

func TestReduce_FailureKeepsData(t *testing.T) {
	before := loaded(t)

	s := Reduce(before, fetchStarted{Handle: "nobody", Generation: 2})
	assert.Empty(t, s.Err)
	s = Reduce(s, fetchFailed{Generation: 2, Message: "handles: User with handle nobody not found"})

	assert.Equal(t, StatusError, s.Status())
	assert.Equal(t, "handles: User with handle nobody not found", s.Err)
	assert.Equal(t, before.Handle, s.Handle)
	assert.Equal(t, before.Profile, s.Profile)
	assert.Equal(t, before.Submissions, s.Submissions)
	assert.Equal(t, before.Upsolve, s.Upsolve)
	assert.Equal(t, before.Recent, s.Recent)
}

func TestReduce_StaleCompletionsIgnored(t *testing.T) {
	s := Reduce(State{}, fetchStarted{Handle: "slow", Generation: 1})
	s = Reduce(s, fetchStarted{Handle: "fast", Generation: 2})

	s = Reduce(s, fetchSucceeded{Generation: 2, Data: payload("fast")})
	require.Equal(t, "fast", s.Handle)

	after := Reduce(s, fetchSucceeded{Generation: 1, Data: payload("slow")})
	assert.Equal(t, s, after)

	after = Reduce(s, fetchFailed{Generation: 1, Message: "late"})
	assert.Equal(t, s, after)
}

func TestReduce_RequestClearsError(t *testing.T) {
	s := Reduce(State{}, fetchStarted{Handle: "x", Generation: 1})
	s = Reduce(s, fetchFailed{Generation: 1, Message: "boom"})
	require.Equal(t, StatusError, s.Status())

	s = Reduce(s, fetchStarted{Handle: "y", Generation: 2})
	assert.Empty(t, s.Err)
	assert.Equal(t, StatusLoading, s.Status())
}

func TestReduce_ClearError(t *testing.T) {
	t.Run("never loaded", func(t *testing.T) {
		s := Reduce(State{}, fetchStarted{Handle: "x", Generation: 1})
		s = Reduce(s, fetchFailed{Generation: 1, Message: "boom"})
		s = Reduce(s, errorCleared{})
		assert.Equal(t, StatusIdle, s.Status())
	})

	t.Run("stale data", func(t *testing.T) {
		s := Reduce(loaded(t), fetchStarted{Handle: "x", Generation: 2})
		s = Reduce(s, fetchFailed{Generation: 2, Message: "boom"})
		s = Reduce(s, errorCleared{})
		assert.Equal(t, StatusReady, s.Status())
		assert.Equal(t, "tourist", s.Handle)
	})
}

func TestReduce_NoteEdited(t *testing.T) {
	before := loaded(t)

	s := Reduce(before, noteEdited{Key: keyB, Text: "binary search bound"})
	require.Len(t, s.Upsolve, 1)
	assert.Equal(t, "binary search bound", s.Upsolve[0].Notes)
	assert.Equal(t, "binary search bound", s.Notes[keyB])
	assert.Empty(t, before.Upsolve[0].Notes, "input state is not modified")
	assert.Empty(t, before.Notes)

	missing := models.ProblemKey{ContestID: 999, Index: "Z"}
	after := Reduce(s, noteEdited{Key: missing, Text: "later"})
	assert.Equal(t, s.Upsolve, after.Upsolve)
	assert.Equal(t, "later", after.Notes[missing])
}

func TestReduce_NotesMergedOnSuccess(t *testing.T) {
	s := Reduce(State{}, restored{Handle: "tourist", Notes: map[models.ProblemKey]string{keyB: "check overflow"}})
	assert.Equal(t, "tourist", s.Handle)
	assert.Equal(t, StatusIdle, s.Status())

	s = Reduce(s, fetchStarted{Handle: "tourist", Generation: 1})
	s = Reduce(s, fetchSucceeded{Generation: 1, Data: payload("tourist",
		submission(100, "B", models.VerdictRuntimeError, 10),
	)})

	require.Len(t, s.Upsolve, 1)
	assert.Equal(t, "check overflow", s.Upsolve[0].Notes)
}

func TestReduce_RestoreAfterLoad(t *testing.T) {
	s := Reduce(loaded(t), restored{Notes: map[models.ProblemKey]string{keyB: "n"}})
	assert.Equal(t, "tourist", s.Handle, "empty restored handle keeps the current one")
	assert.Equal(t, "n", s.Upsolve[0].Notes)
}

func TestReduce_HandleForgotten(t *testing.T) {
	s := Reduce(loaded(t), noteEdited{Key: keyB, Text: "keep me"})
	s = Reduce(s, fetchStarted{Handle: "other", Generation: 2})

	s = Reduce(s, handleForgotten{})
	assert.Equal(t, StatusIdle, s.Status())
	assert.Empty(t, s.Handle)
	assert.Nil(t, s.Profile)
	assert.Zero(t, s.Pending)
	assert.Equal(t, "keep me", s.Notes[keyB])

	after := Reduce(s, fetchSucceeded{Generation: 2, Data: payload("other")})
	assert.Equal(t, StatusIdle, after.Status(), "fetch started before forgetting is discarded")
}

func TestReduce_NewHandleReplacesEverything(t *testing.T) {
	s := Reduce(loaded(t), noteEdited{Key: keyB, Text: "tourist note"})
	keyC := models.ProblemKey{ContestID: 200, Index: "C"}
	keyD := models.ProblemKey{ContestID: 200, Index: "D"}

	s = Reduce(s, fetchStarted{Handle: "petr", Generation: 2})
	s = Reduce(s, fetchSucceeded{Generation: 2, RecentLimit: 10, Data: &models.ProfileData{
		UserInfo: models.UserInfo{Handle: "petr", Rating: 2900},
		Submissions: []models.Submission{
			submission(200, "C", models.VerdictOK, 500),
			submission(200, "D", models.VerdictWrongAnswer, 400),
		},
	}})

	require.Equal(t, StatusReady, s.Status())
	assert.Equal(t, "petr", s.Handle)
	assert.Equal(t, "petr", s.Profile.Handle)
	assert.Len(t, s.Submissions, 2)
	assert.Empty(t, s.RatingHistory)

	assert.Equal(t, []models.ProblemKey{keyC}, s.Solved.Keys())
	assert.False(t, s.Solved.Has(keyA))

	require.Len(t, s.Upsolve, 1)
	assert.Equal(t, keyD, s.Upsolve[0].Key())
	assert.Empty(t, s.Upsolve[0].Notes)

	require.Len(t, s.Recent, 1)
	assert.Equal(t, keyC, s.Recent[0].Key())

	assert.Equal(t, "tourist note", s.Notes[keyB], "persisted notes are kept for later")
}

func TestNewSnapshot(t *testing.T) {
	snap := NewSnapshot(loaded(t))

	assert.Equal(t, StatusReady, snap.Status)
	assert.Equal(t, []models.ProblemKey{keyA}, snap.Solved)
	assert.Equal(t, []models.TagCount{{Tag: "dp", Count: 1}}, snap.Tags)
	assert.Equal(t, models.SubmissionStats{Accepted: 1, Total: 3, Rate: 33}, snap.Stats)
	assert.Equal(t, models.SubmissionSummary{TotalSolved: 1, TotalAttempted: 1, TotalSubmissions: 3}, snap.Summary)
	require.Len(t, snap.Rating, 1)
	assert.Equal(t, 1500, snap.Rating[0].Rating)
	assert.Len(t, snap.PieTags(), 1)

	snap.Upsolve[0].Verdicts[0] = models.VerdictSkipped
	fresh := NewSnapshot(loaded(t))
	assert.Equal(t, models.VerdictWrongAnswer, fresh.Upsolve[0].Verdicts[0])
}

func TestNewSnapshot_Empty(t *testing.T) {
	snap := NewSnapshot(State{})

	assert.Equal(t, StatusIdle, snap.Status)
	assert.Nil(t, snap.Profile)
	assert.NotNil(t, snap.Solved)
	assert.NotNil(t, snap.Upsolve)
	assert.NotNil(t, snap.Recent)
	assert.Empty(t, snap.Difficulty)
	assert.Empty(t, snap.Tags)
	assert.Equal(t, models.SubmissionStats{}, snap.Stats)
}
