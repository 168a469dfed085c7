package generation

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "no urls",
			text: "Nothing to see here.",
			want: nil,
		},
		{
			name: "trailing punctuation and duplicates",
			text: "Read https://a.example.com/x. Also https://a.example.com/x, and http://b.example.com!",
			want: []string{"https://a.example.com/x", "http://b.example.com"},
		},
		{
			name: "markdown link",
			text: "[Story](https://c.example.com/story?id=1) and <https://d.example.com>",
			want: []string{"https://c.example.com/story?id=1", "https://d.example.com"},
		},
		{
			name: "other schemes are ignored",
			text: "ftp://files.example.com and mailto:someone@example.com",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractURLs(tt.text))
		})
	}
}

func TestCollectURLs(t *testing.T) {
	t.Parallel()

	raw := json.RawMessage(`{
		"output": [
			{"type": "web_search_call", "action": {"sources": [{"url": "https://one.example.com/a"}]}},
			{"type": "message", "content": [{"text": "cited https://two.example.com/b"}]}
		],
		"id": "resp_123"
	}`)

	assert.Equal(t,
		[]string{"https://one.example.com/a", "https://two.example.com/b"},
		CollectURLs(raw))
	assert.Nil(t, CollectURLs(nil))
	assert.Nil(t, CollectURLs(json.RawMessage(`not json`)))
}

func TestSourceURLs(t *testing.T) {
	t.Parallel()

	t.Run("text first then metadata", func(t *testing.T) {
		t.Parallel()
		got := SourceURLs(
			"See https://text.example.com/1",
			json.RawMessage(`{"uri": "https://meta.example.com/1", "again": "https://text.example.com/1"}`),
		)
		assert.Equal(t, []string{"https://text.example.com/1", "https://meta.example.com/1"}, got)
	})

	t.Run("capped", func(t *testing.T) {
		t.Parallel()
		var text string
		for i := range 8 {
			text += fmt.Sprintf(" https://s%d.example.com", i)
		}
		got := SourceURLs(text, nil)
		assert.Len(t, got, SourceURLLimit)
		assert.Equal(t, "https://s0.example.com", got[0])
		assert.Equal(t, "https://s4.example.com", got[4])
	})

	t.Run("none", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, SourceURLs("no links", nil))
	})
}
