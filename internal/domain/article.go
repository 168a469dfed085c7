package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ArticleStatus represents the publication state of an article
type ArticleStatus string

// Possible article status values
const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// ArticleContentSchema is the discriminator written into every article
// content blob produced by this version.
const ArticleContentSchema = "daily_news_v2"

// Common validation errors for Article
var (
	ErrEmptyArticleID       = errors.New("article ID cannot be empty")
	ErrEmptyArticleTaskID   = errors.New("article task ID cannot be empty")
	ErrEmptyArticleModel    = errors.New("article model cannot be empty")
	ErrInvalidArticleStatus = errors.New("invalid article status")
	ErrInvalidArticleBody   = errors.New("article content must be valid JSON")
)

// Article is the published output of one successful task.
type Article struct {
	ID          uuid.UUID       `json:"id"`
	TaskID      uuid.UUID       `json:"generation_task_id"`
	Model       string          `json:"model"`
	Variant     int             `json:"variant"`
	Title       string          `json:"title"`
	Content     json.RawMessage `json:"content"`
	Status      ArticleStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
}

// InputWords records the vocabulary a task started from and what the
// word selection stage picked.
type InputWords struct {
	New        []string `json:"new"`
	Review     []string `json:"review"`
	Candidates []string `json:"candidates"`
	Selected   []string `json:"selected"`
}

// ArticleContent is the tagged, versioned body stored with each article.
type ArticleContent struct {
	Schema          string          `json:"schema"`
	TaskDate        string          `json:"task_date"`
	TopicPreference string          `json:"topic_preference"`
	InputWords      InputWords      `json:"input_words"`
	WordUsageCheck  WordUsageCheck  `json:"word_usage_check"`
	Result          DailyNewsOutput `json:"result"`
}

// NewPublishedArticle creates a published article for taskID with the
// marshaled content.
func NewPublishedArticle(
	taskID uuid.UUID,
	model string,
	content *ArticleContent,
	publishedAt time.Time,
) (*Article, error) {
	body, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal article content: %w", err)
	}

	article := &Article{
		ID:          uuid.New(),
		TaskID:      taskID,
		Model:       model,
		Variant:     1,
		Title:       content.Result.Title,
		Content:     body,
		Status:      ArticleStatusPublished,
		CreatedAt:   publishedAt,
		PublishedAt: &publishedAt,
	}

	if err := article.Validate(); err != nil {
		return nil, err
	}

	return article, nil
}

// Validate checks if the Article has valid data.
func (a *Article) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyArticleID
	}
	if a.TaskID == uuid.Nil {
		return ErrEmptyArticleTaskID
	}
	if a.Model == "" {
		return ErrEmptyArticleModel
	}
	if a.Status != ArticleStatusDraft && a.Status != ArticleStatusPublished {
		return ErrInvalidArticleStatus
	}
	if !json.Valid(a.Content) {
		return ErrInvalidArticleBody
	}
	return nil
}

// ParseArticleContent decodes a stored content blob and rejects blobs
// written under a different schema.
func ParseArticleContent(raw []byte) (*ArticleContent, error) {
	var content ArticleContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if content.Schema != ArticleContentSchema {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentSchema, content.Schema)
	}
	return &content, nil
}

// SelectedWordsFromContent extracts input_words.selected from any stored
// content blob. Blobs that are not JSON, or lack the list, yield nil.
// Entries that are not strings are skipped.
func SelectedWordsFromContent(raw []byte) []string {
	var partial struct {
		InputWords struct {
			Selected []any `json:"selected"`
		} `json:"input_words"`
	}
	if err := json.Unmarshal(raw, &partial); err != nil {
		return nil
	}

	words := make([]string, 0, len(partial.InputWords.Selected))
	for _, v := range partial.InputWords.Selected {
		if w, ok := v.(string); ok {
			words = append(words, w)
		}
	}
	return words
}
