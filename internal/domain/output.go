package domain

// DailyNewsOutput is the structured article payload produced by the final
// pipeline stage: one news story written at three difficulty levels, with
// definitions for the target words.
type DailyNewsOutput struct {
	Title           string           `json:"title"`
	Topic           string           `json:"topic"`
	Sources         []string         `json:"sources"`
	Articles        []LevelArticle   `json:"articles"`
	WordUsageCheck  WordUsageCheck   `json:"word_usage_check"`
	WordDefinitions []WordDefinition `json:"word_definitions"`
}

// LevelArticle is the story written for one difficulty level (1 to 3).
type LevelArticle struct {
	Level          int    `json:"level"`
	LevelName      string `json:"level_name"`
	Content        string `json:"content"`
	DifficultyDesc string `json:"difficulty_desc"`
}

// WordUsageCheck is the model's own report of which target words made it
// into the articles.
type WordUsageCheck struct {
	TargetWordsCount int      `json:"target_words_count"`
	UsedCount        int      `json:"used_count"`
	MissingWords     []string `json:"missing_words"`
}

// WordDefinition is a dictionary entry for one target word.
type WordDefinition struct {
	Word        string      `json:"word"`
	Phonetic    string      `json:"phonetic,omitempty"`
	Definitions []WordSense `json:"definitions"`
}

// WordSense is one part-of-speech sense of a word.
type WordSense struct {
	POS        string `json:"pos"`
	Definition string `json:"definition"`
}
