package session

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"

	"github.com/vytor/cftracker/internal/analysis"
	"github.com/vytor/cftracker/internal/codeforces"
	"github.com/vytor/cftracker/internal/errors"
	"github.com/vytor/cftracker/internal/logger"
	"github.com/vytor/cftracker/internal/models"
	"github.com/vytor/cftracker/internal/observability"
	"github.com/vytor/cftracker/internal/repository"
	"github.com/vytor/cftracker/internal/worker"
)

const fallbackFetchError = "Failed to fetch user data"

// Submitter queues background jobs. *worker.Pool satisfies it.
type Submitter interface {
	Submit(worker.Job) error
}

// Controller owns the session state. Every change goes through Reduce
// under the controller's lock.
type Controller struct {
	mu      sync.Mutex
	state   State
	lastGen uint64

	// handleGen is the generation whose handle should be persisted, zero
	// after ForgetHandle. Guarded by mu.
	handleGen uint64

	// persistMu orders writes of the saved handle. It is never taken while
	// holding mu.
	persistMu sync.Mutex

	client      codeforces.ClientInterface
	notes       repository.NoteRepository
	prefs       repository.PreferenceRepository
	fetchPool   Submitter
	notePool    Submitter
	recentLimit int
	log         *logger.Logger
}

type Option func(*Controller)

// WithFetchPool runs RequestFetch jobs on p. Without it each request gets
// its own goroutine.
func WithFetchPool(p Submitter) Option {
	return func(c *Controller) { c.fetchPool = p }
}

// WithNotePool makes note writes asynchronous. Without it notes are written
// inline by Annotate.
func WithNotePool(p Submitter) Option {
	return func(c *Controller) { c.notePool = p }
}

func WithRecentLimit(n int) Option {
	return func(c *Controller) { c.recentLimit = n }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func NewController(client codeforces.ClientInterface, notes repository.NoteRepository, prefs repository.PreferenceRepository, opts ...Option) *Controller {
	c := &Controller{
		client:      client,
		notes:       notes,
		prefs:       prefs,
		recentLimit: analysis.DefaultRecentLimit,
		log:         logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithPrefix("session")
	return c
}

// Restore loads the last active handle and the persisted notes. It returns
// the restored handle, which is empty when none was saved. Storage errors
// are returned after applying whatever could be read.
func (c *Controller) Restore(ctx context.Context) (string, error) {
	handle, _, prefErr := c.prefs.Get(ctx, repository.HandleKey)
	if prefErr != nil {
		c.log.Warn("could not restore handle: %v", prefErr)
	}
	notes, noteErr := c.notes.LoadNotes(ctx)
	if noteErr != nil {
		c.log.Warn("could not restore notes: %v", noteErr)
	}

	c.dispatch(restored{Handle: handle, Notes: notes})
	c.log.Info("restored handle=%q with %d notes", handle, len(notes))
	return handle, stderrors.Join(prefErr, noteErr)
}

// RequestFetch starts a background fetch for handle and returns its
// generation. Any fetch still in flight is superseded. The fetch bypasses
// the upstream cache since the user asked for current data.
func (c *Controller) RequestFetch(handle string) (uint64, error) {
	return c.requestFetch(handle, true)
}

// ResumeFetch is RequestFetch for a restored handle; cached upstream
// results are acceptable.
func (c *Controller) ResumeFetch(handle string) (uint64, error) {
	return c.requestFetch(handle, false)
}

func (c *Controller) requestFetch(handle string, fresh bool) (uint64, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return 0, errors.NewValidationError("handle", "must not be empty")
	}

	gen := c.start(handle)
	job := &FetchJob{Controller: c, Handle: handle, Generation: gen, Fresh: fresh}

	if c.fetchPool == nil {
		go func() {
			_ = job.Run(logger.NewContext(context.Background(), c.log))
		}()
		return gen, nil
	}
	if err := c.fetchPool.Submit(job); err != nil {
		c.log.Error("could not queue fetch for %s: %v", handle, err)
		c.dispatch(fetchFailed{Generation: gen, Message: fallbackFetchError})
		return gen, err
	}
	return gen, nil
}

// Fetch runs a fetch for handle and waits for it to finish. The returned
// error is the fetch failure, if any; the session records it either way.
// Wrap ctx with codeforces.Fresh to bypass the upstream cache.
func (c *Controller) Fetch(ctx context.Context, handle string) error {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return errors.NewValidationError("handle", "must not be empty")
	}
	return c.execute(ctx, handle, c.start(handle))
}

func (c *Controller) start(handle string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastGen++
	gen := c.lastGen
	c.state = Reduce(c.state, fetchStarted{Handle: handle, Generation: gen})
	c.log.WithFields(map[string]any{"handle": handle, "generation": gen}).Info("fetch requested")
	return gen
}

func (c *Controller) execute(ctx context.Context, handle string, gen uint64) error {
	log := c.log.WithFields(map[string]any{"handle": handle, "generation": gen})

	data, err := c.client.FetchAll(ctx, handle)
	if err != nil {
		msg := errors.Message(err, fallbackFetchError)
		if !c.complete(gen, fetchFailed{Generation: gen, Message: msg}) {
			log.Debug("discarding superseded failure: %v", err)
			observability.SessionFetches().WithLabelValues("superseded").Inc()
			return nil
		}
		log.Warn("fetch failed: %v", err)
		observability.SessionFetches().WithLabelValues("failure").Inc()
		return err
	}

	if !c.complete(gen, fetchSucceeded{Generation: gen, Data: data, RecentLimit: c.recentLimit}) {
		log.Debug("discarding superseded result")
		observability.SessionFetches().WithLabelValues("superseded").Inc()
		return nil
	}
	observability.SessionFetches().WithLabelValues("success").Inc()
	log.Info("session ready with %d submissions", len(data.Submissions))

	c.persistHandle(ctx, handle, gen)
	return nil
}

// complete applies a fetch completion if gen is still pending.
func (c *Controller) complete(gen uint64, a Action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Pending != gen {
		return false
	}
	c.state = Reduce(c.state, a)
	if _, ok := a.(fetchSucceeded); ok {
		c.handleGen = gen
	}
	return true
}

// persistHandle saves handle unless a newer fetch or ForgetHandle has
// taken over since gen was applied. Writes are serialized by persistMu,
// so the last applied handle is also the last one written.
func (c *Controller) persistHandle(ctx context.Context, handle string, gen uint64) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	current := c.handleGen == gen
	c.mu.Unlock()
	if !current {
		c.log.Debug("skipping save of superseded handle %s (generation %d)", handle, gen)
		return
	}
	if err := c.prefs.Set(ctx, repository.HandleKey, handle); err != nil {
		c.log.Warn("could not persist handle %s: %v", handle, err)
	}
}

// Annotate sets the note for key. The in-memory upsolve entry is updated
// when present; the note is persisted regardless.
func (c *Controller) Annotate(ctx context.Context, key models.ProblemKey, text string) {
	c.dispatch(noteEdited{Key: key, Text: text})

	job := &SaveNoteJob{Notes: c.notes, Key: key, Text: text}
	if c.notePool != nil {
		if err := c.notePool.Submit(job); err == nil {
			return
		}
		c.log.Warn("note queue unavailable, writing %s inline", key)
	}
	_ = job.Run(logger.NewContext(ctx, c.log))
}

// ClearError dismisses the current error. Data from the last successful
// fetch, if any, stays visible.
func (c *Controller) ClearError() {
	c.dispatch(errorCleared{})
}

// ForgetHandle resets the session to idle and removes the saved handle.
// A fetch still in flight is discarded when it completes.
func (c *Controller) ForgetHandle(ctx context.Context) error {
	c.mu.Lock()
	c.state = Reduce(c.state, handleForgotten{})
	c.handleGen = 0
	c.mu.Unlock()

	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if err := c.prefs.Delete(ctx, repository.HandleKey); err != nil {
		c.log.Warn("could not forget handle: %v", err)
		return err
	}
	return nil
}

// State returns the current state value.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Snapshot() Snapshot {
	return NewSnapshot(c.State())
}

func (c *Controller) dispatch(a Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, a)
}
