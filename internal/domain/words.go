package domain

import (
	"strings"
	"time"
)

// WordType tells whether a candidate word is new today or due for review.
type WordType string

// Possible word types
const (
	WordTypeNew    WordType = "new"
	WordTypeReview WordType = "review"
)

// DailyWordPool is the vocabulary available for one business date. It is
// written by the ingestion job and only read by the queue.
type DailyWordPool struct {
	Date        string    `json:"date"`
	NewWords    []string  `json:"new_words"`
	ReviewWords []string  `json:"review_words"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDailyWordPool creates a pool with deduplicated word lists.
func NewDailyWordPool(date string, newWords, reviewWords []string) (*DailyWordPool, error) {
	if err := ValidateTaskDate(date); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &DailyWordPool{
		Date:        date,
		NewWords:    UniqueWords(newWords),
		ReviewWords: UniqueWords(reviewWords),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsEmpty reports whether the pool has no words at all.
func (p *DailyWordPool) IsEmpty() bool {
	return len(p.NewWords)+len(p.ReviewWords) == 0
}

// CandidateWord is a word still available for today's articles.
type CandidateWord struct {
	Word string   `json:"word"`
	Type WordType `json:"type"`
}

// UniqueWords trims each word, drops empties and keeps the first occurrence
// of every remaining word. The result is never nil.
func UniqueWords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
