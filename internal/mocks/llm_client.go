package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/generation"
)

// DefaultSourceURL is cited by the default research reply.
const DefaultSourceURL = "https://news.example.com/story"

// MockLLMClient implements generation.Client for testing.
type MockLLMClient struct {
	// CallFn allows test cases to mock the Call behavior
	CallFn func(
		ctx context.Context,
		model string,
		history []generation.Message,
		opts generation.CallOptions,
	) (*generation.Response, error)

	// SelectedWords overrides the default word selection, which picks up to
	// seven words from the candidate list in the prompt.
	SelectedWords []string

	mu    sync.Mutex
	calls []Call
}

// Call records one invocation of the client.
type Call struct {
	Model   string
	History []generation.Message
	Options generation.CallOptions
}

var _ generation.Client = (*MockLLMClient)(nil)

// Call implements generation.Client.
func (m *MockLLMClient) Call(
	ctx context.Context,
	model string,
	history []generation.Message,
	opts generation.CallOptions,
) (*generation.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Model: model, History: history, Options: opts})
	m.mu.Unlock()

	if m.CallFn != nil {
		return m.CallFn(ctx, model, history, opts)
	}
	return m.defaultReply(history, opts)
}

// Calls returns a copy of the recorded calls.
func (m *MockLLMClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount returns how many times Call was invoked.
func (m *MockLLMClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears the recorded calls.
func (m *MockLLMClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func usage() *generation.Usage {
	return &generation.Usage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150}
}

// defaultReply answers the stage identified by the call options and the
// length of the conversation so far.
func (m *MockLLMClient) defaultReply(
	history []generation.Message,
	opts generation.CallOptions,
) (*generation.Response, error) {
	switch {
	case opts.WebSearch:
		return &generation.Response{
			Text:  "Researched story. Source: " + DefaultSourceURL,
			Usage: usage(),
		}, nil
	case !opts.JSON:
		return &generation.Response{
			Text:  "Level 1 draft.\n\nLevel 2 draft.\n\nLevel 3 draft.",
			Usage: usage(),
		}, nil
	case len(history) <= 2:
		words := m.SelectedWords
		if words == nil {
			words = candidateWords(history)
		}
		body, err := json.Marshal(generation.WordSelection{
			SelectedWords:      words,
			SelectionReasoning: "mock selection",
		})
		if err != nil {
			return nil, err
		}
		return &generation.Response{Text: string(body), Usage: usage()}, nil
	default:
		body, err := json.Marshal(SampleOutput(selectedFromHistory(history)))
		if err != nil {
			return nil, err
		}
		return &generation.Response{Text: string(body), Usage: usage()}, nil
	}
}

// candidateWords reads the candidate JSON array embedded in the last user
// prompt and returns at most MaxSelectedWords of its words.
func candidateWords(history []generation.Message) []string {
	if len(history) == 0 {
		return nil
	}
	prompt := history[len(history)-1].Content
	start, end := strings.Index(prompt, "["), strings.LastIndex(prompt, "]")
	if start < 0 || end <= start {
		return nil
	}

	var candidates []domain.CandidateWord
	if err := json.Unmarshal([]byte(prompt[start:end+1]), &candidates); err != nil {
		return nil
	}

	words := make([]string, 0, generation.MaxSelectedWords)
	for _, c := range candidates {
		if len(words) == generation.MaxSelectedWords {
			break
		}
		words = append(words, c.Word)
	}
	return words
}

// selectedFromHistory recovers the word selection reply, which is the first
// assistant message.
func selectedFromHistory(history []generation.Message) []string {
	for _, msg := range history {
		if msg.Role != generation.RoleAssistant {
			continue
		}
		var sel generation.WordSelection
		if json.Unmarshal([]byte(msg.Content), &sel) == nil {
			return sel.SelectedWords
		}
		return nil
	}
	return nil
}

// SampleOutput returns a schema-valid article set that uses every word.
func SampleOutput(words []string) *domain.DailyNewsOutput {
	defs := make([]domain.WordDefinition, 0, len(words))
	for _, w := range words {
		defs = append(defs, domain.WordDefinition{
			Word:        w,
			Definitions: []domain.WordSense{{POS: "noun", Definition: fmt.Sprintf("meaning of %s", w)}},
		})
	}
	body := strings.Join(words, " ")

	return &domain.DailyNewsOutput{
		Title:   "Mock Daily News",
		Topic:   "General",
		Sources: []string{DefaultSourceURL},
		Articles: []domain.LevelArticle{
			{Level: 1, LevelName: "Easy", Content: "Easy: " + body, DifficultyDesc: "Elementary (A1-A2)"},
			{Level: 2, LevelName: "Medium", Content: "Medium: " + body, DifficultyDesc: "Intermediate (B1-B2)"},
			{Level: 3, LevelName: "Hard", Content: "Hard: " + body, DifficultyDesc: "Advanced (C1+)"},
		},
		WordUsageCheck: domain.WordUsageCheck{
			TargetWordsCount: len(words),
			UsedCount:        len(words),
			MissingWords:     []string{},
		},
		WordDefinitions: defs,
	}
}
