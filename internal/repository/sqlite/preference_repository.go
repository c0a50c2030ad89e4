package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/cftracker/internal/logger"
	"github.com/vytor/cftracker/internal/repository"
)

type preferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a new PreferenceRepository implementation
func NewPreferenceRepository(db *sql.DB) repository.PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) Get(ctx context.Context, key string) (string, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("preference_repo")
	log.Debug("getting preference: key=%s", key)

	query, args, err := sqlBuilder.Select("value").From("preferences").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return "", false, err
	}

	var value string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("preference not set: key=%s", key)
		return "", false, nil
	}
	if err != nil {
		log.Error("failed to get preference: %v", err)
		return "", false, err
	}
	return value, true, nil
}

func (r *preferenceRepository) Set(ctx context.Context, key, value string) error {
	log := logger.FromContext(ctx).WithPrefix("preference_repo")
	log.Debug("setting preference: key=%s", key)

	q := sqlBuilder.Insert("preferences").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP")
	if err := exec(ctx, r.db, q); err != nil {
		log.Error("failed to set preference: %v", err)
		return err
	}
	return nil
}

func (r *preferenceRepository) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx).WithPrefix("preference_repo")
	log.Debug("deleting preference: key=%s", key)

	if err := exec(ctx, r.db, sqlBuilder.Delete("preferences").Where(squirrel.Eq{"key": key})); err != nil {
		log.Error("failed to delete preference: %v", err)
		return err
	}
	return nil
}
