package server

import (
	"net/http"

	"figment/internal/handler"
	"figment/internal/middleware"
)

func NewMux(chatHandler *handler.ChatHandler, diagramHandler *handler.DiagramHandler, authHandler *handler.AuthHandler, auth func(http.Handler) http.Handler) http.Handler {
	api := http.NewServeMux()

	// Chat
	api.HandleFunc("/api/chat", chatHandler.HandleChat)
	api.HandleFunc("/api/chat/ws", chatHandler.HandleChatWS)
	api.HandleFunc("/api/chat/history", chatHandler.HandleHistory)

	// Diagrams
	api.HandleFunc("/api/diagrams", diagramHandler.HandleGenerate)
	api.HandleFunc("/api/diagrams/source/{name}", diagramHandler.HandleSource)
	api.HandleFunc("/api/diagrams/svg/{name}", diagramHandler.HandleSVG)
	api.HandleFunc("/api/diagrams/html/{name}", diagramHandler.HandleHTML)
	api.HandleFunc("/api/diagrams/png/{name}", diagramHandler.HandlePNG)

	// Token issuance stays outside the auth wrapper so a client can
	// bootstrap a session; everything else goes through it.
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/token", authHandler.HandleIssue)
	mux.HandleFunc("/api/auth/revoke", authHandler.HandleRevoke)
	mux.Handle("/", auth(api))

	return middleware.CORS(mux)
}
