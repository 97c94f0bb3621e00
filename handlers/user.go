package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/chaperone-app/chaperone-api/auth"
	"github.com/chaperone-app/chaperone-api/models"
	"github.com/chaperone-app/chaperone-api/store"
	"go.uber.org/zap"
)

// Login exchanges email and password for a bearer token.
func (api *API) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := api.Store.UserByEmail(r.Context(), req.Email)
	if err != nil {
		http.Error(w, "Email not correct", http.StatusUnauthorized)
		return
	}

	if !auth.CheckPassword(req.Password, user.Password) {
		http.Error(w, "Password not correct", http.StatusUnauthorized)
		return
	}

	token, err := auth.CreateToken(api.JWTSecret, user.Email)
	if err != nil {
		api.Logger.Error("failed to sign token", zap.Error(err))
		http.Error(w, "Failed to create token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
		"email":        user.Email,
	})
}

// CreateUser registers a new account.
func (api *API) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"first_name" validate:"required"`
		LastName  string `json:"last_name" validate:"required"`
		Email     string `json:"email" validate:"required,email"`
		Password  string `json:"password" validate:"required"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hash,
		IsActive:  true,
	}
	if err := api.Store.CreateUser(r.Context(), &user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			http.Error(w, "Email already registered", http.StatusBadRequest)
			return
		}
		api.Logger.Error("failed to create user", zap.Error(err))
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (api *API) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := api.Store.Users(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch users", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (api *API) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := api.Store.UserByID(r.Context(), uint(id))
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
