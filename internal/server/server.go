// Package server is the roster upload service. It formats uploaded
// roster files, stores the formatted document under a short code and
// serves it back to the in-game script.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/lawnchairsociety/rosterforge/server/internal/config"
	"github.com/lawnchairsociety/rosterforge/server/internal/database"
	"github.com/lawnchairsociety/rosterforge/server/internal/describe"
	"github.com/lawnchairsociety/rosterforge/server/internal/logger"
	"github.com/lawnchairsociety/rosterforge/server/internal/text"
)

// RosterStore keeps formatted roster documents by code.
// *database.Database implements it.
type RosterStore interface {
	SaveRoster(code, edition, document string, expiresAt time.Time) error
	GetRoster(code string) (*database.StoredRoster, error)
	CodeExists(code string) (bool, error)
	DeleteExpired(now time.Time) (int64, error)
}

// ScriptBuilder returns the Lua script attached to a stored roster.
// *script.Builder implements it.
type ScriptBuilder interface {
	Build(modules []string) (string, error)
}

// Server is the HTTP and WebSocket front end.
type Server struct {
	cfg         *config.ServerConfig
	store       RosterStore
	scripts     ScriptBuilder
	describer   *describe.Generator
	connLimiter *ConnLimiter
	rejects     *RejectLimiter
	handler     http.Handler
	now         func() time.Time

	httpServer   *http.Server
	shutdownOnce sync.Once
}

// NewServer creates a server. Tooltips are rendered with the process
// palette as it is at construction.
func NewServer(cfg *config.ServerConfig, store RosterStore, scripts ScriptBuilder) *Server {
	s := &Server{
		cfg:         cfg,
		store:       store,
		scripts:     scripts,
		describer:   describe.New(text.Current()),
		connLimiter: NewConnLimiter(cfg.Connections),
		rejects:     NewRejectLimiter(cfg.RateLimit),
		now:         time.Now,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /getFormattedArmy", s.connLimiter.Wrap(s.handleFormattedArmy))
	mux.HandleFunc("POST /getArmyCode", s.connLimiter.Wrap(s.handleArmyCode))
	mux.HandleFunc("POST /makeArmyAndReturnCode", s.connLimiter.Wrap(s.handleMakeArmy))
	mux.HandleFunc("GET /get_army_by_id", s.handleGetArmy)
	mux.HandleFunc("GET /ws", s.connLimiter.Wrap(s.handleWebSocket))
	if dir := s.cfg.HTTP.StaticDir; dir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(dir)))
	}
	return mux
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and runs the expiry sweep
// until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:        s.cfg.HTTP.Address,
		Handler:     s.handler,
		ReadTimeout: time.Duration(s.cfg.HTTP.ReadTimeoutSeconds) * time.Second,
	}

	go s.cleanupLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Roster service listening", "address", s.cfg.HTTP.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.rejects.Stop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops accepting uploads and waits for requests in flight.
// Later calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rejects.Stop()
		if s.httpServer != nil {
			err = s.httpServer.Shutdown(ctx)
		}
		logger.Info("Roster service stopped")
	})
	return err
}

func (s *Server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Storage.CleanupInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanExpired()
		}
	}
}

// cleanExpired deletes rosters whose code has lapsed.
func (s *Server) cleanExpired() {
	n, err := s.store.DeleteExpired(s.now())
	if err != nil {
		logger.Error("Failed to delete expired rosters", "error", err)
		return
	}
	if n > 0 {
		logger.Debug("Deleted expired rosters", "count", n)
	}
}
