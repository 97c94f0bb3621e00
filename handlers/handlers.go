package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/chaperone-app/chaperone-api/cache"
	"github.com/chaperone-app/chaperone-api/generator"
	"github.com/chaperone-app/chaperone-api/store"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// API holds the collaborators shared by every handler.
type API struct {
	Store     *store.Store
	Cache     cache.Cache
	Generator generator.Generator
	Logger    *zap.Logger
	JWTSecret string
}

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}
