package endpoints

import (
	"chat-hub-backend/internal/dto"
	"chat-hub-backend/internal/hub"
	"net/http"
)

type HubEndpoints interface {
	Websocket(http.ResponseWriter, *http.Request) error
	Online(http.ResponseWriter, *http.Request) error
}

type hubEndpoints struct {
	handler *hub.Handler
}

func NewHubEndpoints(handler *hub.Handler) HubEndpoints {
	return &hubEndpoints{handler: handler}
}

// Websocket hands the request to the hub handshake. Credential failures are
// written by the handler itself, before the upgrade.
func (h *hubEndpoints) Websocket(w http.ResponseWriter, r *http.Request) error {
	h.handler.ServeWS(w, r)
	return nil
}

func (h *hubEndpoints) Online(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleOnline,
	})
}

func (h *hubEndpoints) handleOnline(w http.ResponseWriter, r *http.Request) error {
	return WriteJSON(w, http.StatusOK, dto.OnlineResponse{
		Users: h.handler.Hub().Online(),
	})
}
