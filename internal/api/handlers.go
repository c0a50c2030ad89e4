package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/cftracker/internal/analysis"
	"github.com/vytor/cftracker/internal/errors"
	"github.com/vytor/cftracker/internal/logger"
	"github.com/vytor/cftracker/internal/models"
	"github.com/vytor/cftracker/internal/session"
)

// SessionController is the part of session.Controller the API drives.
type SessionController interface {
	RequestFetch(handle string) (uint64, error)
	Annotate(ctx context.Context, key models.ProblemKey, text string)
	ClearError()
	ForgetHandle(ctx context.Context) error
	Snapshot() session.Snapshot
}

type Server struct {
	Session        SessionController
	Checks         map[string]HealthCheck
	RequestTimeout time.Duration
	Now            func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.Session.Snapshot())
}

type upsolveView struct {
	models.UpsolveEntry
	Key string `json:"key"`
	URL string `json:"url"`
}

type upsolveResponse struct {
	Sort    string        `json:"sort"`
	Entries []upsolveView `json:"entries"`
}

func (s *Server) handleUpsolve(w http.ResponseWriter, r *http.Request) {
	by := r.URL.Query().Get("sort")
	switch by {
	case "":
		by = analysis.SortRecent
	case analysis.SortRecent, analysis.SortRating, analysis.SortContest:
	default:
		handleError(w, r, errors.NewValidationError("sort", "must be one of recent, rating, contest"))
		return
	}

	entries := analysis.SortUpsolve(s.Session.Snapshot().Upsolve, by)
	views := make([]upsolveView, len(entries))
	for i, e := range entries {
		views[i] = upsolveView{UpsolveEntry: e, Key: e.Key().String(), URL: analysis.ProblemURL(e.Key())}
	}
	writeJSON(w, r, http.StatusOK, upsolveResponse{Sort: by, Entries: views})
}

type activityView struct {
	models.Submission
	TimeAgo string `json:"timeAgo"`
	Date    string `json:"date"`
	URL     string `json:"url"`
}

type analyticsResponse struct {
	Difficulty []models.DifficultyCount `json:"difficulty"`
	Tags       []models.TagCount        `json:"tags"`
	PieTags    []models.TagCount        `json:"pieTags"`
	Stats      models.SubmissionStats   `json:"stats"`
	Summary    models.SubmissionSummary `json:"summary"`
	Struggled  []models.StruggledEntry  `json:"struggled"`
	Recent     []activityView           `json:"recent"`
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	snap := s.Session.Snapshot()
	now := s.now()

	recent := make([]activityView, len(snap.Recent))
	for i, sub := range snap.Recent {
		recent[i] = activityView{
			Submission: sub,
			TimeAgo:    analysis.TimeAgo(sub.CreationTimeSeconds, now),
			Date:       analysis.FormatDate(sub.CreationTimeSeconds),
			URL:        analysis.ProblemURL(sub.Key()),
		}
	}

	writeJSON(w, r, http.StatusOK, analyticsResponse{
		Difficulty: snap.Difficulty,
		Tags:       snap.Tags,
		PieTags:    snap.PieTags(),
		Stats:      snap.Stats,
		Summary:    snap.Summary,
		Struggled:  snap.Struggled,
		Recent:     recent,
	})
}

type ratingResponse struct {
	Handle    string               `json:"handle,omitempty"`
	Rating    int                  `json:"rating"`
	MaxRating int                  `json:"maxRating"`
	Rank      string               `json:"rank,omitempty"`
	RankColor string               `json:"rankColor"`
	Points    []models.RatingPoint `json:"points"`
}

func (s *Server) handleRating(w http.ResponseWriter, r *http.Request) {
	snap := s.Session.Snapshot()
	resp := ratingResponse{Handle: snap.Handle, Points: snap.Rating, RankColor: analysis.RankColor("")}
	if snap.Profile != nil {
		resp.Rating = snap.Profile.Rating
		resp.MaxRating = snap.Profile.MaxRating
		resp.Rank = snap.Profile.Rank
		resp.RankColor = analysis.RankColor(snap.Profile.Rank)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

type fetchRequest struct {
	Handle string `json:"handle"`
}

type fetchResponse struct {
	Generation uint64         `json:"generation"`
	Status     session.Status `json:"status"`
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req fetchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	gen, err := s.Session.RequestFetch(req.Handle)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("fetch queued for %s (generation %d)", req.Handle, gen)
	writeJSON(w, r, http.StatusAccepted, fetchResponse{Generation: gen, Status: session.StatusLoading})
}

type noteRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleNote(w http.ResponseWriter, r *http.Request) {
	key, err := models.ParseProblemKey(chi.URLParam(r, "key"))
	if err != nil {
		handleError(w, r, errors.NewValidationError("key", err.Error()))
		return
	}

	var req noteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	s.Session.Annotate(r.Context(), key, req.Notes)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearError(w http.ResponseWriter, r *http.Request) {
	s.Session.ClearError()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleForgetHandle(w http.ResponseWriter, r *http.Request) {
	if err := s.Session.ForgetHandle(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
