package handlers

import (
	"net/http"
	"strconv"

	"github.com/chaperone-app/chaperone-api/models"
	"go.uber.org/zap"
)

// CreateVocabulary adds a word/meaning pair. Vocabularies are shared across
// users, so no ownership is recorded.
func (api *API) CreateVocabulary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Word    string `json:"word" validate:"required"`
		Meaning string `json:"meaning" validate:"required"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	vocab := models.Vocabulary{Word: req.Word, Meaning: req.Meaning}
	if err := api.Store.CreateVocabulary(r.Context(), &vocab); err != nil {
		api.Logger.Error("failed to create vocabulary", zap.Error(err))
		http.Error(w, "Failed to create vocabulary", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, vocab)
}

func (api *API) GetVocabularies(w http.ResponseWriter, r *http.Request) {
	vocabularies, err := api.Store.Vocabularies(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch vocabularies", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, vocabularies)
}

func (api *API) GetVocabularyByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid vocabulary ID", http.StatusBadRequest)
		return
	}

	vocab, err := api.Store.VocabularyByID(r.Context(), uint(id))
	if err != nil {
		http.Error(w, "Vocabulary not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, vocab)
}
