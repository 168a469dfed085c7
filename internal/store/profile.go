package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/wordnews/internal/domain"
)

// ProfileStore defines the interface for generation profile persistence.
// Version: 1.0
type ProfileStore interface {
	// Create saves a new profile.
	// Returns ErrProfileNameExists if the name is taken.
	Create(ctx context.Context, profile *domain.GenerationProfile) error

	// GetByID retrieves a profile by its unique ID.
	// Returns ErrProfileNotFound if the profile does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationProfile, error)

	// List returns all profiles ordered by creation time.
	List(ctx context.Context) ([]*domain.GenerationProfile, error)

	// Update saves changes to an existing profile.
	// Returns ErrProfileNotFound or ErrProfileNameExists.
	Update(ctx context.Context, profile *domain.GenerationProfile) error

	// Delete removes a profile.
	// Returns ErrProfileNotFound if it does not exist and ErrProfileInUse if
	// tasks still reference it.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ProfileStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProfileStore
}
