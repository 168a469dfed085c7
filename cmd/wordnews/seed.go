package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/store"
	"gopkg.in/yaml.v3"
)

// profileSeed is one entry of a profiles file.
type profileSeed struct {
	Name            string `yaml:"name"`
	TopicPreference string `yaml:"topic_preference"`
	Concurrency     int    `yaml:"concurrency"`
	TimeoutMs       int    `yaml:"timeout_ms"`
}

type profilesFile struct {
	Profiles []profileSeed `yaml:"profiles"`
}

// wordPoolSeed is one daily pool of a words file, as produced by ingestion.
type wordPoolSeed struct {
	Date        string   `yaml:"date"`
	NewWords    []string `yaml:"new_words"`
	ReviewWords []string `yaml:"review_words"`
}

type wordsFile struct {
	Pools []wordPoolSeed `yaml:"pools"`
}

// decodeYAML strictly decodes data into v; unknown keys are errors.
func decodeYAML(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("seed file is empty")
		}
		return fmt.Errorf("failed to parse seed file: %w", err)
	}
	return nil
}

// parseProfilesFile decodes and validates a profiles file. Concurrency
// defaults to 1 and timeout_ms to 300000 when omitted.
func parseProfilesFile(data []byte) ([]*domain.GenerationProfile, error) {
	var file profilesFile
	if err := decodeYAML(data, &file); err != nil {
		return nil, err
	}
	if len(file.Profiles) == 0 {
		return nil, fmt.Errorf("profiles file lists no profiles")
	}

	seen := make(map[string]struct{}, len(file.Profiles))
	profiles := make([]*domain.GenerationProfile, 0, len(file.Profiles))
	for i, seed := range file.Profiles {
		if seed.Concurrency == 0 {
			seed.Concurrency = 1
		}
		if seed.TimeoutMs == 0 {
			seed.TimeoutMs = 300000
		}
		profile, err := domain.NewGenerationProfile(seed.Name, seed.TopicPreference, seed.Concurrency, seed.TimeoutMs)
		if err != nil {
			return nil, fmt.Errorf("profile %d: %w", i+1, err)
		}
		if _, dup := seen[profile.Name]; dup {
			return nil, fmt.Errorf("profile %d: duplicate name %q", i+1, profile.Name)
		}
		seen[profile.Name] = struct{}{}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// parseWordsFile decodes a words file into validated, deduplicated pools.
func parseWordsFile(data []byte) ([]*domain.DailyWordPool, error) {
	var file wordsFile
	if err := decodeYAML(data, &file); err != nil {
		return nil, err
	}
	if len(file.Pools) == 0 {
		return nil, fmt.Errorf("words file lists no pools")
	}

	pools := make([]*domain.DailyWordPool, 0, len(file.Pools))
	for _, seed := range file.Pools {
		pool, err := domain.NewDailyWordPool(strings.TrimSpace(seed.Date), seed.NewWords, seed.ReviewWords)
		if err != nil {
			return nil, fmt.Errorf("pool %q: %w", seed.Date, err)
		}
		pools = append(pools, pool)
	}
	return pools, nil
}

// importResult counts what an import changed.
type importResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// importProfiles creates new profiles and updates existing ones matched by
// name.
func importProfiles(
	ctx context.Context,
	profiles store.ProfileStore,
	seeds []*domain.GenerationProfile,
) (importResult, error) {
	existing, err := profiles.List(ctx)
	if err != nil {
		return importResult{}, err
	}
	byName := make(map[string]*domain.GenerationProfile, len(existing))
	for _, p := range existing {
		byName[p.Name] = p
	}

	var result importResult
	for _, seed := range seeds {
		current, ok := byName[seed.Name]
		if !ok {
			if err := profiles.Create(ctx, seed); err != nil {
				return result, fmt.Errorf("failed to create profile %q: %w", seed.Name, err)
			}
			result.Created++
			continue
		}

		current.TopicPreference = seed.TopicPreference
		current.Concurrency = seed.Concurrency
		current.TimeoutMs = seed.TimeoutMs
		current.UpdatedAt = time.Now().UTC()
		if err := profiles.Update(ctx, current); err != nil {
			return result, fmt.Errorf("failed to update profile %q: %w", seed.Name, err)
		}
		result.Updated++
	}
	return result, nil
}
