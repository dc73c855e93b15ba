package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"weldsim/config"
	"weldsim/material"
	"weldsim/simulator"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	cfg      *config.Config
	sim      *simulator.Simulator
	table    *material.Table
	upgrader websocket.Upgrader
	limiter  *ipRateLimiter
}

func NewServer(cfg *config.Config, sim *simulator.Simulator, table *material.Table) *Server {
	s := &Server{
		cfg:   cfg,
		sim:   sim,
		table: table,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		limiter: newIPRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst),
	}
	s.upgrader.CheckOrigin = s.checkOrigin
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	allowed := s.cfg.Server.AllowedOrigin
	return allowed == "*" || allowed == "" || r.Header.Get("Origin") == "" || r.Header.Get("Origin") == allowed
}

// Handler is the complete HTTP handler: the API under /api and the websocket at /ws.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.limiter.LimitMiddleware)
	api.HandleFunc("/materials", s.listMaterials).Methods(http.MethodGet)
	api.HandleFunc("/materials/compare", s.compareMaterials).Methods(http.MethodGet)
	api.HandleFunc("/materials/{name}", s.getMaterial).Methods(http.MethodGet)
	api.HandleFunc("/simulate", s.simulate).Methods(http.MethodPost)
	api.HandleFunc("/sweep", s.sweepHandler).Methods(http.MethodPost)
	api.HandleFunc("/sensitivity", s.sensitivityHandler).Methods(http.MethodPost)
	api.HandleFunc("/export/{format}", s.export).Methods(http.MethodPost)
	api.HandleFunc("/batch", s.batch).Methods(http.MethodPost)

	r.HandleFunc("/ws", s.serveWs)
	return s.cors(r)
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.Server.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// serveWs upgrades the connection and runs one interactive session on it until the peer
// leaves or the server shuts down.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	NewHub(s, conn).Run(r.Context())
}

// Serve listens on the configured address until ctx is cancelled, then shuts down gracefully.
// Open websocket sessions are closed with ctx.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.cfg.Server.Addr,
		Handler:     s.Handler(),
		ReadTimeout: s.cfg.Server.ReadTimeout,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
