package router

import (
	"chat-hub-backend/internal/api"
	"chat-hub-backend/internal/api/endpoints"
	"net/http"
)

// HubRoutes exposes the websocket handshake and the online roster. The
// handshake authenticates with a token query parameter, not a Bearer
// header, so it carries no auth middleware here.
func HubRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		hubEndpoints := endpoints.NewHubEndpoints(s.Handler())
		mux.HandleFunc(prefix+"/ws", s.MakeHTTPHandleFunc(hubEndpoints.Websocket))
		mux.HandleFunc(prefix+"/online", s.MakeHTTPHandleFunc(hubEndpoints.Online))
	}
}
