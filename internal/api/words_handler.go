package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/wordnews/internal/api/shared"
	"github.com/phrazzld/wordnews/internal/domain"
	"github.com/phrazzld/wordnews/internal/store"
)

// WordsHandler replaces daily word pools.
type WordsHandler struct {
	words store.WordPoolStore
}

// NewWordsHandler creates a WordsHandler.
func NewWordsHandler(words store.WordPoolStore) *WordsHandler {
	return &WordsHandler{words: words}
}

// Upsert handles PUT /api/admin/words/{date}.
func (h *WordsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req WordPoolRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pool, err := domain.NewDailyWordPool(chi.URLParam(r, "date"), req.NewWords, req.ReviewWords)
	if err != nil {
		handleAPIError(w, r, err, "upsert word pool")
		return
	}
	if err := h.words.Upsert(r.Context(), pool); err != nil {
		handleAPIError(w, r, err, "upsert word pool")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, pool)
}
