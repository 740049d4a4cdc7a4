package api

import (
	"chat-hub-backend/internal/database"
	"chat-hub-backend/internal/hub"
	internaljwt "chat-hub-backend/internal/jwt"
	"chat-hub-backend/internal/queue"
	"fmt"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
)

type RouteRegistrar func(mux *http.ServeMux, s *APIServer)

type APIServer struct {
	listenAddr          string
	requestQueueManager *queue.RequestQueueManager
	db                  *database.Database
	authority           *internaljwt.Authority
	routeRegistrars     []RouteRegistrar
	handler             *hub.Handler
	publisher           *redis.Client
	metrics             *metrics
}

func NewAPIServer(
	listenAddr string,
	rqm *queue.RequestQueueManager,
	db *database.Database,
	authority *internaljwt.Authority,
	handler *hub.Handler,
	publisher *redis.Client,
	registrars ...RouteRegistrar,
) *APIServer {
	return &APIServer{
		listenAddr:          listenAddr,
		requestQueueManager: rqm,
		db:                  db,
		authority:           authority,
		handler:             handler,
		publisher:           publisher,
		routeRegistrars:     registrars,
		metrics:             newMetrics(prometheus.DefaultRegisterer, listenAddr, rqm),
	}
}

func (s *APIServer) Run() {
	mux := http.NewServeMux()

	for _, reg := range s.routeRegistrars {
		reg(mux, s)
	}

	mux.Handle("/metrics", s.metrics.metricsHandler())

	fmt.Printf("Server listening on http://localhost%s\n", s.listenAddr)

	if err := http.ListenAndServe(s.listenAddr, s.metrics.instrument(mux)); err != nil {
		fmt.Printf("server stopped: %v\n", err)
	}
}

func (s *APIServer) Database() *database.Database {
	return s.db
}

func (s *APIServer) Authority() *internaljwt.Authority {
	return s.authority
}

func (s *APIServer) Handler() *hub.Handler {
	return s.handler
}

// Publisher is the Redis client used to push envelope events onto the hub
// bridge. Nil on servers that do not publish.
func (s *APIServer) Publisher() *redis.Client {
	return s.publisher
}
