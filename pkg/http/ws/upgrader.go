package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// NewUpgrader builds an upgrader that accepts browsers from allowedOrigin ("*" accepts any origin).
func NewUpgrader(allowedOrigin string) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" || allowedOrigin == "*" {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || origin == allowedOrigin
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}
