package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/store"
)

var profileColumns = []string{
	"id", "name", "topic_preference", "concurrency", "timeout_ms", "created_at", "updated_at",
}

// ProfileStore implements store.ProfileStore.
type ProfileStore struct {
	db      store.DBTX
	dialect Dialect
}

// NewProfileStore creates a new profile store.
func NewProfileStore(db store.DBTX, dialect Dialect) *ProfileStore {
	return &ProfileStore{db: db, dialect: dialect}
}

var _ store.ProfileStore = (*ProfileStore)(nil)

// Create implements store.ProfileStore.
func (s *ProfileStore) Create(ctx context.Context, profile *domain.GenerationProfile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query, args, err := s.dialect.builder().
		Insert("generation_profiles").
		Columns(profileColumns...).
		Values(
			profile.ID.String(), profile.Name, profile.TopicPreference,
			profile.Concurrency, profile.TimeoutMs,
			profile.CreatedAt.UTC(), profile.UpdatedAt.UTC(),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build profile insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %q", store.ErrProfileNameExists, profile.Name)
		}
		return opError("profile", "create", err)
	}
	return nil
}

// GetByID implements store.ProfileStore.
func (s *ProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationProfile, error) {
	query, args, err := s.dialect.builder().
		Select(profileColumns...).
		From("generation_profiles").
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build profile query: %w", err)
	}

	profile, err := scanProfile(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrProfileNotFound
	}
	if err != nil {
		return nil, opError("profile", "get", err)
	}
	return profile, nil
}

// List implements store.ProfileStore.
func (s *ProfileStore) List(ctx context.Context) ([]*domain.GenerationProfile, error) {
	query, args, err := s.dialect.builder().
		Select(profileColumns...).
		From("generation_profiles").
		OrderBy("created_at ASC", "name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build profile list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, opError("profile", "list", err)
	}
	defer func() { _ = rows.Close() }()

	profiles := []*domain.GenerationProfile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile rows: %w", err)
	}
	return profiles, nil
}

// Update implements store.ProfileStore.
func (s *ProfileStore) Update(ctx context.Context, profile *domain.GenerationProfile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query, args, err := s.dialect.builder().
		Update("generation_profiles").
		Set("name", profile.Name).
		Set("topic_preference", profile.TopicPreference).
		Set("concurrency", profile.Concurrency).
		Set("timeout_ms", profile.TimeoutMs).
		Set("updated_at", profile.UpdatedAt.UTC()).
		Where(sq.Eq{"id": profile.ID.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build profile update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %q", store.ErrProfileNameExists, profile.Name)
		}
		return opError("profile", "update", err)
	}
	return checkRowsAffected(result, store.ErrProfileNotFound)
}

// Delete implements store.ProfileStore.
func (s *ProfileStore) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := s.dialect.builder().
		Delete("generation_profiles").
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build profile delete: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return store.ErrProfileInUse
		}
		return opError("profile", "delete", err)
	}
	return checkRowsAffected(result, store.ErrProfileNotFound)
}

// WithTx implements store.ProfileStore.
func (s *ProfileStore) WithTx(tx *sql.Tx) store.ProfileStore {
	return &ProfileStore{db: tx, dialect: s.dialect}
}

func scanProfile(row rowScanner) (*domain.GenerationProfile, error) {
	var p domain.GenerationProfile
	err := row.Scan(
		&p.ID, &p.Name, &p.TopicPreference, &p.Concurrency, &p.TimeoutMs,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
