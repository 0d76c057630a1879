package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"figment/internal/token"
)

type AuthHandler struct {
	tokens token.Store
}

func NewAuthHandler(tokens token.Store) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// HandleIssue exchanges a user id for a session token. Identity
// verification happens upstream; this endpoint only mints the token
// the rest of the API checks.
func (h *AuthHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	in.UserID = strings.TrimSpace(in.UserID)
	if in.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}
	tok, err := h.tokens.Issue(in.UserID)
	if err != nil {
		http.Error(w, "token issue failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"token": tok})
}

// HandleRevoke invalidates the bearer token on the request.
func (h *AuthHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		h.tokens.Revoke(strings.TrimSpace(auth[7:]))
	}
	w.WriteHeader(http.StatusNoContent)
}
