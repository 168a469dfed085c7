package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Profile name length limit.
const MaxProfileNameLength = 100

// Common validation errors for GenerationProfile
var (
	ErrEmptyProfileID        = errors.New("profile ID cannot be empty")
	ErrEmptyProfileName      = errors.New("profile name cannot be empty")
	ErrProfileNameTooLong    = errors.New("profile name is too long")
	ErrEmptyTopicPreference  = errors.New("profile topic preference cannot be empty")
	ErrInvalidConcurrency    = errors.New("profile concurrency must be greater than 0")
	ErrInvalidProfileTimeout = errors.New("profile timeout_ms must be greater than 0")
)

// GenerationProfile is a named execution configuration. TopicPreference is
// passed to every pipeline stage; Concurrency is advisory and TimeoutMs
// bounds a single task execution.
type GenerationProfile struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	TopicPreference string    `json:"topic_preference"`
	Concurrency     int       `json:"concurrency"`
	TimeoutMs       int       `json:"timeout_ms"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewGenerationProfile creates a validated profile with a fresh ID.
func NewGenerationProfile(
	name, topicPreference string,
	concurrency, timeoutMs int,
) (*GenerationProfile, error) {
	now := time.Now().UTC()
	profile := &GenerationProfile{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(name),
		TopicPreference: strings.TrimSpace(topicPreference),
		Concurrency:     concurrency,
		TimeoutMs:       timeoutMs,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return profile, nil
}

// Validate checks if the profile has valid data.
func (p *GenerationProfile) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProfileID
	}
	if p.Name == "" {
		return ErrEmptyProfileName
	}
	if len(p.Name) > MaxProfileNameLength {
		return ErrProfileNameTooLong
	}
	if p.TopicPreference == "" {
		return ErrEmptyTopicPreference
	}
	if p.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if p.TimeoutMs <= 0 {
		return ErrInvalidProfileTimeout
	}
	return nil
}

// Timeout returns TimeoutMs as a duration.
func (p *GenerationProfile) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}
