package session

import (
	"context"

	"github.com/vytor/cftracker/internal/codeforces"
	"github.com/vytor/cftracker/internal/logger"
	"github.com/vytor/cftracker/internal/models"
	"github.com/vytor/cftracker/internal/observability"
	"github.com/vytor/cftracker/internal/repository"
)

// FetchJob runs one generation-tagged fetch for the controller. Fresh
// fetches skip cached upstream results.
type FetchJob struct {
	Controller *Controller
	Handle     string
	Generation uint64
	Fresh      bool
}

func (j *FetchJob) Name() string { return "fetch_profile" }

func (j *FetchJob) Run(ctx context.Context) error {
	if j.Fresh {
		ctx = codeforces.Fresh(ctx)
	}
	return j.Controller.execute(ctx, j.Handle, j.Generation)
}

// SaveNoteJob persists a note. Failures are logged and counted but never
// reported back to the session.
type SaveNoteJob struct {
	Notes repository.NoteRepository
	Key   models.ProblemKey
	Text  string
}

func (j *SaveNoteJob) Name() string { return "save_note" }

func (j *SaveNoteJob) Run(ctx context.Context) error {
	if err := j.Notes.SaveNote(ctx, j.Key, j.Text); err != nil {
		observability.NoteWriteFailures().Inc()
		logger.FromContext(ctx).WithPrefix("session").Warn("note for %s not persisted: %v", j.Key, err)
	}
	return nil
}
