package router

import (
	"chat-hub-backend/internal/api"
	"chat-hub-backend/internal/api/endpoints"
	"chat-hub-backend/internal/api/middleware"
	"net/http"
)

func ChatRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		chatEndpoints := endpoints.NewChatEndpoints(s.Database(), s.Authority(), s.Publisher())
		auth := middleware.ValidateJWT(s.Authority())
		mux.HandleFunc(prefix+"/groups", s.MakeHTTPHandleFunc(chatEndpoints.Groups, auth))
		mux.HandleFunc(prefix+"/groups/", s.MakeHTTPHandleFunc(chatEndpoints.GroupMembers, auth))
		mux.HandleFunc(prefix+"/messages", s.MakeHTTPHandleFunc(chatEndpoints.Messages, auth))
	}
}
