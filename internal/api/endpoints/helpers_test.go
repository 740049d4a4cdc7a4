package endpoints

import (
	"bytes"
	"chat-hub-backend/internal/api"
	internaljwt "chat-hub-backend/internal/jwt"
	"chat-hub-backend/internal/queue"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

var (
	serverOnce   sync.Once
	sharedServer *api.APIServer
)

// testServer returns one APIServer for the whole package. The server only
// contributes the request queue and MakeHTTPHandleFunc; each test wires its
// own endpoints, so sharing it keeps metric registration single-shot.
func testServer() *api.APIServer {
	serverOnce.Do(func() {
		queueManager := queue.NewRequestQueueManager(10, 2)
		sharedServer = api.NewAPIServer(":0", queueManager, nil, nil, nil, nil)
	})
	return sharedServer
}

func testAuthority() *internaljwt.Authority {
	return internaljwt.NewAuthority([]byte("test-secret"), time.Hour)
}

func doJSONRequest[T any](t *testing.T, handler http.Handler, method, target string, body interface{}, headers map[string]string, expectedStatus int) T {
	t.Helper()

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		payload = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != expectedStatus {
		t.Fatalf("expected status %d, got %d: %s", expectedStatus, rec.Code, rec.Body.String())
	}

	var result T
	if expectedStatus != http.StatusNoContent {
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}

	return result
}

func bearerHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + token,
	}
}
