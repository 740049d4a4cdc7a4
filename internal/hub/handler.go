package hub

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// TokenVerifier validates the handshake credential and extracts the stable
// identity it was issued for.
type TokenVerifier interface {
	Verify(credential string) (string, error)
}

type Handler struct {
	hub      *Hub
	verifier TokenVerifier
	upgrader websocket.Upgrader
}

func NewHandler(h *Hub, verifier TokenVerifier) *Handler {
	return &Handler{
		hub:      h,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeWS performs the handshake: the credential arrives as a token query
// parameter and is verified before the upgrade, so a rejected client gets a
// plain 401 with zero frames sent and zero registry mutation.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	identity, err := h.verifier.Verify(r.URL.Query().Get("token"))
	if err != nil {
		incRejectedHandshakes()
		log.Printf("Rejected websocket handshake: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection for %s: %v", identity, err)
		return
	}

	client := NewClient(conn, identity)
	h.hub.Register(client)

	go client.keepAlive()
	go client.writePump()
	go client.readPump(h.hub)
}

func (h *Handler) Hub() *Hub {
	return h.hub
}
