package generation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/daily_news_output.json
var dailyNewsOutputSchema []byte

const dailyNewsOutputSchemaURL = "daily_news_output.json"

// compileOutputSchema compiles the embedded DailyNewsOutput schema.
func compileOutputSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(dailyNewsOutputSchemaURL, bytes.NewReader(dailyNewsOutputSchema)); err != nil {
		return nil, fmt.Errorf("failed to add output schema: %w", err)
	}
	schema, err := compiler.Compile(dailyNewsOutputSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile output schema: %w", err)
	}
	return schema, nil
}

// decodeOutput parses and validates the stage 4 payload, then sorts the
// articles by level.
func decodeOutput(schema *jsonschema.Schema, text string) (*domain.DailyNewsOutput, error) {
	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, newDetailError(ErrInvalidOutput, "Invalid LLM JSON output: %v", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, newDetailError(ErrInvalidOutput, "Invalid LLM JSON output: %v", err)
	}

	var out domain.DailyNewsOutput
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, newDetailError(ErrInvalidOutput, "Invalid LLM JSON output: %v", err)
	}

	seen := make(map[int]bool, len(out.Articles))
	for _, a := range out.Articles {
		if seen[a.Level] {
			return nil, newDetailError(ErrInvalidOutput, "Invalid LLM JSON output: duplicate article level %d", a.Level)
		}
		seen[a.Level] = true
	}
	slices.SortFunc(out.Articles, func(a, b domain.LevelArticle) int { return a.Level - b.Level })

	if out.Sources == nil {
		out.Sources = []string{}
	}
	if out.WordUsageCheck.MissingWords == nil {
		out.WordUsageCheck.MissingWords = []string{}
	}
	return &out, nil
}
