package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/platform/logger"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Word selection size bounds.
const (
	MinSelectedWords = 4
	MaxSelectedWords = 7
)

// rawExcerptLimit bounds the raw model text quoted in validation errors.
const rawExcerptLimit = 500

// Input is everything the pipeline needs for one article.
type Input struct {
	TaskDate        string
	TopicPreference string
	Candidates      []domain.CandidateWord
}

// StageUsage collects per-stage token accounting.
type StageUsage struct {
	WordSelection *Usage `json:"word_selection"`
	Research      *Usage `json:"research"`
	Draft         *Usage `json:"draft"`
	Generation    *Usage `json:"generation"`
}

// Result is the outcome of a successful pipeline run.
type Result struct {
	Output        *domain.DailyNewsOutput
	SelectedWords []string
	SourceURLs    []string
	Usage         StageUsage
}

// WordSelection is the stage 1 payload.
type WordSelection struct {
	SelectedWords      []string `json:"selected_words"      validate:"min=4,max=7,dive,required"`
	SelectionReasoning string   `json:"selection_reasoning"`
}

// Pipeline runs the four generation stages against a Client. It holds no
// per-run state and is safe for concurrent use.
type Pipeline struct {
	client       Client
	stageTimeout time.Duration
	logger       *slog.Logger
	validate     *validator.Validate
	schema       *jsonschema.Schema
}

// NewPipeline creates a pipeline. A positive stageTimeout bounds every
// individual stage call.
func NewPipeline(client Client, stageTimeout time.Duration, log *slog.Logger) (*Pipeline, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: client is nil", ErrInvalidConfig)
	}
	if log == nil {
		log = slog.Default()
	}
	schema, err := compileOutputSchema()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		client:       client,
		stageTimeout: stageTimeout,
		logger:       log.With(slog.String("component", "generation_pipeline")),
		validate:     validator.New(),
		schema:       schema,
	}, nil
}

// Run executes the four stages in order. The first failing stage aborts
// the run with a *StageError.
func (p *Pipeline) Run(ctx context.Context, model string, in Input) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)
	conv := &Conversation{}
	result := &Result{}

	selection, err := p.selectWords(ctx, log, model, conv, in, &result.Usage)
	if err != nil {
		return nil, err
	}
	result.SelectedWords = selection.SelectedWords

	sources, err := p.research(ctx, log, model, conv, in, selection.SelectedWords, &result.Usage)
	if err != nil {
		return nil, err
	}
	result.SourceURLs = sources

	draft, err := p.draft(ctx, log, model, conv, in, selection.SelectedWords, sources, &result.Usage)
	if err != nil {
		return nil, err
	}

	output, err := p.convert(ctx, log, model, conv, draft, sources, selection.SelectedWords, &result.Usage)
	if err != nil {
		return nil, err
	}
	result.Output = output

	return result, nil
}

func (p *Pipeline) selectWords(
	ctx context.Context,
	log *slog.Logger,
	model string,
	conv *Conversation,
	in Input,
	usage *StageUsage,
) (*WordSelection, error) {
	candidates, err := json.MarshalIndent(in.Candidates, "", "  ")
	if err != nil {
		return nil, &StageError{Stage: StageWordSelection, Err: fmt.Errorf("failed to encode candidates: %w", err)}
	}

	conv.Append(RoleSystem, wordSelectionSystemPrompt)
	conv.Append(RoleUser, wordSelectionUserPrompt(candidates, in.TopicPreference, in.TaskDate))

	resp, err := p.call(ctx, log, StageWordSelection, model, conv, CallOptions{JSON: true})
	if err != nil {
		return nil, err
	}
	usage.WordSelection = resp.Usage

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, &StageError{Stage: StageWordSelection, Err: ErrEmptyWordSelection}
	}

	var selection WordSelection
	if err := json.Unmarshal([]byte(text), &selection); err != nil {
		return nil, &StageError{Stage: StageWordSelection, Err: newDetailError(ErrInvalidWordSelection,
			"Failed to parse word selection JSON: %v\nRaw: %s", err, excerpt(text))}
	}
	words, unknown := matchCandidates(selection.SelectedWords, in.Candidates)
	if unknown != "" {
		return nil, &StageError{Stage: StageWordSelection, Err: newDetailError(ErrInvalidWordSelection,
			"Invalid word selection JSON: %q is not a candidate word\nRaw: %s", unknown, excerpt(text))}
	}
	selection.SelectedWords = words

	if err := p.validate.Struct(&selection); err != nil {
		return nil, &StageError{Stage: StageWordSelection, Err: newDetailError(ErrInvalidWordSelection,
			"Invalid word selection JSON: %v\nRaw: %s", err, excerpt(text))}
	}

	log.Debug("words selected", slog.Any("selected_words", selection.SelectedWords))
	return &selection, nil
}

func (p *Pipeline) research(
	ctx context.Context,
	log *slog.Logger,
	model string,
	conv *Conversation,
	in Input,
	selected []string,
	usage *StageUsage,
) ([]string, error) {
	conv.Append(RoleUser, researchUserPrompt(selected, in.TopicPreference, in.TaskDate))

	resp, err := p.call(ctx, log, StageResearch, model, conv, CallOptions{WebSearch: true})
	if err != nil {
		return nil, err
	}
	usage.Research = resp.Usage

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, &StageError{Stage: StageResearch, Err: ErrEmptyResearch}
	}

	sources := SourceURLs(text, resp.Metadata)
	if len(sources) == 0 {
		return nil, &StageError{Stage: StageResearch, Err: ErrNoSourceURLs}
	}

	log.Debug("research sources collected", slog.Int("source_count", len(sources)))
	return sources, nil
}

func (p *Pipeline) draft(
	ctx context.Context,
	log *slog.Logger,
	model string,
	conv *Conversation,
	in Input,
	selected, sources []string,
	usage *StageUsage,
) (string, error) {
	conv.Append(RoleSystem, writingGuidelines)
	conv.Append(RoleUser, draftUserPrompt(selected, sources, in.TopicPreference, in.TaskDate))

	resp, err := p.call(ctx, log, StageDraft, model, conv, CallOptions{})
	if err != nil {
		return "", err
	}
	usage.Draft = resp.Usage

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", &StageError{Stage: StageDraft, Err: ErrEmptyDraft}
	}
	return text, nil
}

func (p *Pipeline) convert(
	ctx context.Context,
	log *slog.Logger,
	model string,
	conv *Conversation,
	draft string,
	sources, selected []string,
	usage *StageUsage,
) (*domain.DailyNewsOutput, error) {
	conv.Append(RoleUser, jsonConversionUserPrompt(draft, sources, selected))

	resp, err := p.call(ctx, log, StageGeneration, model, conv, CallOptions{JSON: true})
	if err != nil {
		return nil, err
	}
	usage.Generation = resp.Usage

	if strings.TrimSpace(resp.Text) == "" {
		return nil, &StageError{Stage: StageGeneration, Err: ErrEmptyGeneration}
	}

	output, err := decodeOutput(p.schema, resp.Text)
	if err != nil {
		return nil, &StageError{Stage: StageGeneration, Err: err}
	}
	return output, nil
}

// call performs one stage request and appends the model reply to the
// conversation.
func (p *Pipeline) call(
	ctx context.Context,
	log *slog.Logger,
	stage Stage,
	model string,
	conv *Conversation,
	opts CallOptions,
) (*Response, error) {
	if p.stageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.stageTimeout)
		defer cancel()
	}

	start := time.Now()
	log.Info("pipeline stage started", slog.String("stage", string(stage)), slog.String("model", model))

	resp, err := p.client.Call(ctx, model, conv.Messages(), opts)
	if err != nil {
		log.Error("pipeline stage call failed",
			slog.String("stage", string(stage)),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return nil, &StageError{Stage: stage, Err: err}
	}
	if resp == nil {
		return nil, &StageError{Stage: stage, Err: ErrInvalidResponse}
	}

	conv.Append(RoleAssistant, resp.Text)
	log.Info("pipeline stage finished",
		slog.String("stage", string(stage)),
		slog.Duration("duration", time.Since(start)))
	return resp, nil
}

// matchCandidates maps the selected words onto the candidate spelling,
// ignoring case, and drops blanks and repeats. It returns the first word
// that is not a candidate, if any.
func matchCandidates(selected []string, candidates []domain.CandidateWord) ([]string, string) {
	byKey := make(map[string]string, len(candidates))
	for _, c := range candidates {
		byKey[strings.ToLower(c.Word)] = c.Word
	}

	matched := make([]string, 0, len(selected))
	for _, w := range selected {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		canonical, ok := byKey[strings.ToLower(w)]
		if !ok {
			return nil, w
		}
		matched = append(matched, canonical)
	}
	return domain.UniqueWords(matched), ""
}

// excerpt returns at most rawExcerptLimit runes of s.
func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= rawExcerptLimit {
		return s
	}
	runes := []rune(s)
	return string(runes[:rawExcerptLimit])
}
