package sqlite

import (
	"context"
	"database/sql"

	"github.com/vytor/cftracker/internal/logger"
	"github.com/vytor/cftracker/internal/models"
	"github.com/vytor/cftracker/internal/repository"
)

type noteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new NoteRepository implementation
func NewNoteRepository(db *sql.DB) repository.NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) LoadNotes(ctx context.Context) (map[models.ProblemKey]string, error) {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("loading notes")

	query, args, err := sqlBuilder.Select("contest_id", "problem_index", "notes").From("notes").ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to load notes: %v", err)
		return nil, err
	}
	defer rows.Close()

	notes := make(map[models.ProblemKey]string)
	for rows.Next() {
		var key models.ProblemKey
		var text string
		if err := rows.Scan(&key.ContestID, &key.Index, &text); err != nil {
			log.Error("failed to scan note row: %v", err)
			return nil, err
		}
		notes[key] = text
	}
	log.Debug("loaded %d notes", len(notes))
	return notes, rows.Err()
}

// SaveNote stores text for key, replacing any previous note. Empty text is
// stored as is.
func (r *noteRepository) SaveNote(ctx context.Context, key models.ProblemKey, text string) error {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("saving note: problem=%s, length=%d", key, len(text))

	q := sqlBuilder.Insert("notes").
		Columns("contest_id", "problem_index", "notes").
		Values(key.ContestID, key.Index, text).
		Suffix("ON CONFLICT(contest_id, problem_index) DO UPDATE SET notes = excluded.notes, updated_at = CURRENT_TIMESTAMP")
	if err := exec(ctx, r.db, q); err != nil {
		log.Error("failed to save note: %v", err)
		return err
	}
	return nil
}
