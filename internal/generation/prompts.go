package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

const wordSelectionSystemPrompt = `You are a vocabulary curator for graded English news readers.
Choose 4 to 7 words from the candidate list that can appear naturally in one news story.

Selection rules:
1. Prefer words of type "new", then words of type "review".
2. The chosen words should fit a single news topic.
3. Consider how the words relate to each other semantically.

Reply with a JSON object:
{
  "selected_words": ["word1", "word2"],
  "selection_reasoning": "one or two sentences"
}`

func wordSelectionUserPrompt(candidates []byte, topic, date string) string {
	return fmt.Sprintf(`Current date: %s
Topic preference: %s

Candidate words:
%s

Choose 4 to 7 suitable words from the candidates. Reply with a JSON object.`, date, topic, candidates)
}

func researchUserPrompt(selected []string, topic, date string) string {
	return fmt.Sprintf(`Selected words: %s
Topic preference: %s
Date: %s

Search for real news published on this date that could naturally include these words.
Cite 2 to 5 reliable sources with their full URLs.`, strings.Join(selected, ", "), topic, date)
}

// writingGuidelines is sent as a system message before the draft stage.
const writingGuidelines = `You write graded news in three difficulty levels.

Level 1 (Easy, A1-A2)
- Mostly present simple, with a little past simple or present perfect for background.
- Short subject-verb-object sentences of 8 to 14 words.
- Avoid the passive voice and relative clauses. Never use semicolons.
- Connect ideas only with and, but, because, so or when.
- Paragraphs of 2 to 3 sentences.

Level 2 (Medium, B1-B2)
- Mostly past simple; present simple for general facts.
- Compound sentences and simple clauses (when, because, if, who, which) without nesting.
- Sentences of 14 to 22 words, paragraphs of 2 to 4 sentences.

Level 3 (Hard, C1+)
- Any tense.
- Use at least one advanced structure such as a participle phrase, an appositive or the passive voice.
- Sentences of 18 to 30 words, paragraphs of 2 to 4 sentences focused on analysis and impact.

Vocabulary
- Try to use every target word at all three levels, but never force a word in. A few may be missing.
- At Level 1, introduce hard words by definition first: "They talk about the deal. This is a negotiation."
- Do not bold the target words.

Layout
- Separate paragraphs with a blank line. Do not put every sentence on its own line.`

func draftUserPrompt(selected, sources []string, topic, date string) string {
	words, _ := json.Marshal(selected)
	return fmt.Sprintf(`Using your research, write the news story at three difficulty levels.

Target words: %s
Topic preference: %s
Date: %s
Sources:
%s

Start writing directly without describing your plan. Write Level 1, then Level 2, then Level 3.`,
		words, topic, date, strings.Join(sources, "\n"))
}

const outputShape = `{
  "title": "short English headline",
  "topic": "topic category such as Tech or Science",
  "sources": ["https://source-1", "https://source-2"],
  "articles": [
    {"level": 1, "level_name": "Easy", "content": "Markdown, paragraphs separated by \n\n", "difficulty_desc": "Elementary (A1-A2)"},
    {"level": 2, "level_name": "Medium", "content": "...", "difficulty_desc": "Intermediate (B1-B2)"},
    {"level": 3, "level_name": "Hard", "content": "...", "difficulty_desc": "Advanced (C1+)"}
  ],
  "word_usage_check": {"target_words_count": 5, "used_count": 4, "missing_words": ["word"]},
  "word_definitions": [
    {"word": "negotiate", "phonetic": "/nɪˈɡoʊʃieɪt/", "definitions": [{"pos": "verb", "definition": "to discuss something to reach an agreement"}]}
  ]
}`

func jsonConversionUserPrompt(draft string, sources, selected []string) string {
	words, _ := json.Marshal(selected)
	urls, _ := json.Marshal(sources)
	return fmt.Sprintf(`Convert the draft into a single JSON object with this shape:
%s

Target words: %s
Source URLs: %s

Rules:
1. word_definitions must define every target word with IPA phonetics, part of speech and meaning.
2. Fill word_usage_check by checking how each target word is used in the articles.
3. articles[].content is Markdown with paragraphs separated by \n\n.
4. Output only the JSON object.

Draft:
%s`, outputShape, words, urls, draft)
}
