package handler

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"figment/internal/chat"
)

const (
	chatWSWriteWait = 10 * time.Second
	chatWSPongWait  = 60 * time.Second
	chatWSPingEvery = (chatWSPongWait * 9) / 10
)

var chatWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type chatWSInbound struct {
	Type       string `json:"type"`
	DocumentID string `json:"documentId,omitempty"`
	Message    string `json:"message,omitempty"`
}

type chatWSOutbound struct {
	Type    string        `json:"type"`
	Answer  *chat.Message `json:"answer,omitempty"`
	Code    string        `json:"code,omitempty"`
	Message string        `json:"message,omitempty"`
}

// HandleChatWS serves a long-lived chat session over one websocket.
// Inbound frames of type "chat" each trigger one chat turn; the answer
// goes back as an "answer" frame on the same connection.
func (h *ChatHandler) HandleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := chatWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(chatWSPongWait)); err != nil {
		log.Printf("chat ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(chatWSPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(chatWSPingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				deadline := time.Now().Add(chatWSWriteWait)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return
				}
			}
		}
	}()

	for {
		var in chatWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("chat ws read failed: %v", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(chatWSPongWait))

		if in.Type != "chat" || strings.TrimSpace(in.Message) == "" {
			h.writeWS(conn, chatWSOutbound{Type: "error", Code: "bad_request", Message: "expected a chat frame with a message"})
			continue
		}

		msg, err := h.svc.Answer(r.Context(), strings.TrimSpace(in.DocumentID), in.Message)
		if err != nil {
			log.Printf("chat ws answer failed: %v", err)
			h.writeWS(conn, chatWSOutbound{Type: "error", Code: "chat_failed", Message: "chat failed"})
			continue
		}
		h.writeWS(conn, chatWSOutbound{Type: "answer", Answer: &msg})
	}
}

func (h *ChatHandler) writeWS(conn *websocket.Conn, out chatWSOutbound) {
	_ = conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait))
	if err := conn.WriteJSON(out); err != nil {
		log.Printf("chat ws write failed: %v", err)
	}
}
