package endpoints

import (
	"chat-hub-backend/internal/api"
	"chat-hub-backend/internal/dto"
	"chat-hub-backend/internal/hub"
	"net/http"
	"testing"
)

func setupHubHandler(t *testing.T) http.Handler {
	t.Helper()

	server := testServer()
	h := hub.NewHub(nil)
	go h.Run()
	hubEndpoints := NewHubEndpoints(hub.NewHandler(h, testAuthority()))

	mux := http.NewServeMux()
	mux.HandleFunc("/api/ws/v1/online", server.MakeHTTPHandleFunc(hubEndpoints.Online))

	return mux
}

func TestOnlineStartsEmpty(t *testing.T) {
	handler := setupHubHandler(t)

	resp := doJSONRequest[dto.OnlineResponse](t, handler, http.MethodGet, "/api/ws/v1/online", nil, nil, http.StatusOK)
	if resp.Users == nil {
		t.Fatal("expected an empty users array, got null")
	}
	if len(resp.Users) != 0 {
		t.Fatalf("expected nobody online, got %v", resp.Users)
	}
}

func TestOnlineRejectsNonGET(t *testing.T) {
	handler := setupHubHandler(t)

	doJSONRequest[api.ApiError](t, handler, http.MethodPost, "/api/ws/v1/online", nil, nil, http.StatusMethodNotAllowed)
}
