package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/ivanwe2/battleships/internal/config"
	"github.com/ivanwe2/battleships/internal/logger"
)

// Server is the websocket relay: a /ws endpoint in front of a Hub.
type Server struct {
	cfg      config.RelayConfig
	hub      *Hub
	store    RoomStore
	redis    *redis.Client
	upgrader websocket.Upgrader
	origins  *OriginChecker

	// bounds concurrent connections
	semaphore chan struct{}
	draining  atomic.Bool
	http      *http.Server
}

// NewServer builds a relay. Rooms live in redis when cfg.Redis.Addr is set,
// in memory otherwise.
func NewServer(ctx context.Context, cfg config.RelayConfig) (*Server, error) {
	if cfg.Redis.Addr == "" {
		return newServer(cfg, NewMemoryStore(), nil), nil
	}
	rdb, err := NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	return newServer(cfg, NewRedisStore(rdb), rdb), nil
}

func newServer(cfg config.RelayConfig, store RoomStore, rdb *redis.Client) *Server {
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = 1000
	}
	if cfg.MessagesPerSecond <= 0 {
		cfg.MessagesPerSecond = 20
	}
	s := &Server{
		cfg:       cfg,
		hub:       NewHub(store, cfg.MessagesPerSecond),
		store:     store,
		redis:     rdb,
		origins:   NewOriginChecker(cfg.AllowedOrigins),
		semaphore: make(chan struct{}, cfg.MaxConnections),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.Check,
	}
	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Hub returns the message router.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the relay's HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)

	if s.draining.Load() {
		http.Error(w, "relay is shutting down", http.StatusServiceUnavailable)
		return
	}

	select {
	case s.semaphore <- struct{}{}:
	default:
		logger.LogWarn("connection limit %d reached, rejecting %s", s.cfg.MaxConnections, ip)
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		<-s.semaphore
		logger.LogWarn("websocket upgrade from %s failed: %v", ip, err)
		return
	}

	c := newConn(s.hub, ws)
	s.hub.register(c)
	logger.LogInfo("connection %s from %s", c.ID, ip)

	go func() {
		defer func() { <-s.semaphore }()
		c.ReadPump()
	}()
	go c.WritePump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// ListenAndServe serves until Shutdown.
func (s *Server) ListenAndServe() error {
	logger.LogInfo("relay listening on ws://%s/ws", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections, disconnects every player and
// releases the room store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.draining.Store(true)

	err := s.http.Shutdown(ctx)
	s.hub.CloseAll()

	if n, cerr := s.store.CountRooms(ctx); cerr == nil && n > 0 {
		logger.LogInfo("relay stopping with %d open rooms", n)
	}
	if s.redis != nil {
		if cerr := s.redis.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	logger.LogInfo("relay stopped")
	return err
}
