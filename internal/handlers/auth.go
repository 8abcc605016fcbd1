package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jfontan/parley/internal/auth"
	"github.com/jfontan/parley/internal/middleware"
	"github.com/jfontan/parley/internal/models"
	"github.com/jfontan/parley/internal/store"
)

type AuthHandler struct {
	Store  store.Store
	Tokens *auth.Tokens
}

type authResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}
	if len(req.Password) < 6 {
		jsonError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	if taken, err := h.identityTaken(username, email); err != nil {
		jsonError(w, http.StatusInternalServerError, "Server error during registration")
		return
	} else if taken {
		jsonError(w, http.StatusBadRequest, "Username or email already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Server error during registration")
		return
	}

	user := &models.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    email,
		Password: string(hashed),
		LastSeen: time.Now().UTC(),
	}
	if err := h.Store.CreateUser(user); err != nil {
		jsonError(w, http.StatusBadRequest, "Username or email already exists")
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Server error during registration")
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(authResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    user,
	})
}

func (h *AuthHandler) identityTaken(username, email string) (bool, error) {
	if _, err := h.Store.GetUserByUsername(username); err == nil {
		return true, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	if _, err := h.Store.GetUserByEmail(email); err == nil {
		return true, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	return false, nil
}

// Login accepts either an email address or a username in the email field;
// the mobile client sends both through the same input.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	identifier := strings.TrimSpace(req.Email)
	if identifier == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.Store.GetUserByEmail(identifier)
	if errors.Is(err, store.ErrNotFound) {
		user, err = h.Store.GetUserByUsername(identifier)
	}
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Server error during login")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	now := time.Now().UTC()
	if err := h.Store.SetPresence(user.ID, true, now); err != nil {
		jsonError(w, http.StatusInternalServerError, "Server error during login")
		return
	}
	user.IsOnline = true
	user.LastSeen = now

	token, err := h.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Server error during login")
		return
	}

	json.NewEncoder(w).Encode(authResponse{
		Message: "Login successful",
		Token:   token,
		User:    user,
	})
}

// Verify resolves the bearer credential on the request to its user record.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	credential := middleware.BearerToken(r)
	if credential == "" {
		jsonError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	claims, err := h.Tokens.Verify(credential)
	if err != nil {
		jsonError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	user, err := h.Store.GetUserByID(claims.UserID)
	if err != nil {
		jsonError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	json.NewEncoder(w).Encode(map[string]*models.User{"user": user})
}

func jsonError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
