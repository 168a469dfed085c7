package task

import (
	"context"
	"fmt"

	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/store"
)

// BuildCandidateWords merges the new and review lists, drops used words and
// duplicates, and returns every new word before any review word. A word on
// both lists counts as new.
func BuildCandidateWords(newWords, reviewWords []string, used map[string]struct{}) []domain.CandidateWord {
	isNew := make(map[string]struct{}, len(newWords))
	for _, w := range newWords {
		isNew[w] = struct{}{}
	}

	var fresh, review []domain.CandidateWord
	for _, w := range domain.UniqueWords(append(append([]string{}, newWords...), reviewWords...)) {
		if _, ok := used[w]; ok {
			continue
		}
		if _, ok := isNew[w]; ok {
			fresh = append(fresh, domain.CandidateWord{Word: w, Type: domain.WordTypeNew})
		} else {
			review = append(review, domain.CandidateWord{Word: w, Type: domain.WordTypeReview})
		}
	}
	return append(fresh, review...)
}

// UsedWords returns the union of the selected words of every article
// written by any task of the date. Unreadable content is skipped.
func UsedWords(
	ctx context.Context,
	tasks store.TaskStore,
	articles store.ArticleStore,
	taskDate string,
) (map[string]struct{}, error) {
	used := make(map[string]struct{})

	ids, err := tasks.ListIDsByDate(ctx, taskDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for %s: %w", taskDate, err)
	}
	if len(ids) == 0 {
		return used, nil
	}

	contents, err := articles.ListContentByTaskIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load article content for %s: %w", taskDate, err)
	}
	for _, raw := range contents {
		for _, w := range domain.SelectedWordsFromContent(raw) {
			used[w] = struct{}{}
		}
	}
	return used, nil
}
