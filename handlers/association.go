package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/chaperone-app/chaperone-api/cache"
	"github.com/chaperone-app/chaperone-api/middleware"
	"github.com/chaperone-app/chaperone-api/models"
	"github.com/chaperone-app/chaperone-api/store"
	"go.uber.org/zap"
)

// optionCount is the number of quiz options requested from the model.
const optionCount = 3

// GetAssociations serves the user's pending associations, cache first.
// A hit is returned as-is; a miss reads the store and repopulates the cache;
// a cache failure is logged and answered from the store alone.
func (api *API) GetAssociations(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	key := cache.ListKey(user.ID)
	result := api.Cache.Get(r.Context(), key)

	if result.State == cache.StateHit {
		var cached []models.Association
		if err := json.Unmarshal(result.Value, &cached); err == nil {
			writeJSON(w, http.StatusOK, cached)
			return
		}
		// A snapshot we cannot read is as good as a cache failure.
		api.Logger.Warn("discarding malformed cache entry", zap.String("key", key))
		result.State = cache.StateFailed
	}
	if result.State == cache.StateFailed {
		api.Logger.Warn("cache get failed, serving from store", zap.String("key", key), zap.Error(result.Err))
	}

	associations, err := api.Store.PendingAssociations(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "Failed to fetch associations", http.StatusInternalServerError)
		return
	}

	// Only a clean miss repopulates; after a failure the entry state is
	// unknown and writing could mask it.
	if result.State == cache.StateMiss {
		api.populate(r.Context(), key, associations)
	}

	writeJSON(w, http.StatusOK, associations)
}

// GetAssociationByID serves one association with the same hit/miss/failure
// policy as the list. Not-found surfaces as 404, never as a cached empty.
func (api *API) GetAssociationByID(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid association ID", http.StatusBadRequest)
		return
	}

	key := cache.DetailKey(user.ID, uint(id))
	result := api.Cache.Get(r.Context(), key)

	if result.State == cache.StateHit {
		var cached models.Association
		if err := json.Unmarshal(result.Value, &cached); err == nil {
			writeJSON(w, http.StatusOK, cached)
			return
		}
		api.Logger.Warn("discarding malformed cache entry", zap.String("key", key))
		result.State = cache.StateFailed
	}
	if result.State == cache.StateFailed {
		api.Logger.Warn("cache get failed, serving from store", zap.String("key", key), zap.Error(result.Err))
	}

	association, err := api.Store.AssociationByID(r.Context(), user.ID, uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Association not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch association", http.StatusInternalServerError)
		return
	}

	if result.State == cache.StateMiss {
		api.populate(r.Context(), key, association)
	}

	writeJSON(w, http.StatusOK, association)
}

// CreateAssociation generates a quiz for a vocabulary word and persists it.
// The store commit must land before the list key is invalidated, otherwise a
// racing read could repopulate the cache with pre-creation data.
func (api *API) CreateAssociation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	var req struct {
		VocabularyID uint `json:"vocabulary_id" validate:"required"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	vocab, err := api.Store.VocabularyByID(r.Context(), req.VocabularyID)
	if err != nil {
		http.Error(w, "Vocabulary not found", http.StatusNotFound)
		return
	}

	generated, err := api.Generator.Generate(r.Context(), vocab.Word, optionCount)
	if err != nil {
		api.Logger.Error("option generation failed", zap.String("word", vocab.Word), zap.Error(err))
		http.Error(w, "Failed to generate options", http.StatusBadGateway)
		return
	}

	association := models.Association{
		Status:       models.StatusPending,
		UserID:       user.ID,
		VocabularyID: vocab.ID,
	}
	options := make([]models.Option, 0, len(generated))
	for _, opt := range generated {
		options = append(options, models.Option{
			Option:    opt.Label,
			Meaning:   opt.Meaning,
			IsCorrect: opt.Correct,
		})
	}

	if err := api.Store.CreateAssociation(r.Context(), &association, options); err != nil {
		api.Logger.Error("failed to create association", zap.Error(err))
		http.Error(w, "Failed to create association", http.StatusInternalServerError)
		return
	}

	// Invalidate after commit. The detail key stays unpopulated until the
	// first read of the new association.
	api.invalidate(r.Context(), cache.ListKey(user.ID))

	association.Vocabulary = *vocab
	writeJSON(w, http.StatusCreated, association)
}

// MarkCorrect records a correct answer and invalidates both cache keys.
func (api *API) MarkCorrect(w http.ResponseWriter, r *http.Request) {
	api.answer(w, r, (*models.Association).MarkCorrect)
}

// MarkIncorrect records an incorrect answer and invalidates both cache keys.
func (api *API) MarkIncorrect(w http.ResponseWriter, r *http.Request) {
	api.answer(w, r, (*models.Association).MarkIncorrect)
}

func (api *API) answer(w http.ResponseWriter, r *http.Request, mark func(*models.Association) error) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid association ID", http.StatusBadRequest)
		return
	}

	association, err := api.Store.AssociationByID(r.Context(), user.ID, uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Association not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to fetch association", http.StatusInternalServerError)
		return
	}

	if err := mark(association); err != nil {
		http.Error(w, "Association already answered", http.StatusBadRequest)
		return
	}

	if err := api.Store.SaveAssociation(r.Context(), association); err != nil {
		api.Logger.Error("failed to save association", zap.Error(err))
		http.Error(w, "Failed to update association", http.StatusInternalServerError)
		return
	}

	// Commit precedes invalidation so a racing read cannot resurrect the
	// pre-answer snapshot.
	api.invalidate(r.Context(), cache.ListKey(user.ID), cache.DetailKey(user.ID, association.ID))

	writeJSON(w, http.StatusOK, association)
}

// populate writes a snapshot into the cache. Failures are logged and
// swallowed; the caller already has fresh store data to return.
func (api *API) populate(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		api.Logger.Warn("failed to serialize cache snapshot", zap.String("key", key), zap.Error(err))
		return
	}
	if err := api.Cache.Set(ctx, key, data); err != nil {
		api.Logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate deletes cache keys, logging failures without surfacing them.
func (api *API) invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := api.Cache.Delete(ctx, key); err != nil {
			api.Logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
		}
	}
}
