package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"figment/internal/chat"
)

type ChatHandler struct {
	svc *chat.Service
}

func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		DocumentID string `json:"documentId"`
		Message    string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	msg, err := h.svc.Answer(r.Context(), strings.TrimSpace(in.DocumentID), in.Message)
	if err != nil {
		http.Error(w, "chat failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, msg)
}

func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	history, err := h.svc.History(r.Context(), strings.TrimSpace(r.URL.Query().Get("document_id")), limit)
	if err != nil {
		http.Error(w, "history failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"messages": history})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
