package repository

import (
	"context"

	"github.com/vytor/cftracker/internal/models"
)

// HandleKey is the preference key under which the active handle is stored.
const HandleKey = "cf_handle"

// PreferenceRepository is a flat string key-value store for user preferences.
type PreferenceRepository interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// NoteRepository persists free-text notes keyed by problem.
type NoteRepository interface {
	LoadNotes(ctx context.Context) (map[models.ProblemKey]string, error)
	SaveNote(ctx context.Context, key models.ProblemKey, text string) error
}
