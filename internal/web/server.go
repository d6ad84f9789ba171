package web

import (
	"context"
	"log"
	"net/http"

	"github.com/sashakosti/Go_Race_Bot/internal/storage"
)

// LeaderboardSource is the part of the race service the page needs.
type LeaderboardSource interface {
	GetLeaderboard(ctx context.Context) ([]storage.LeaderboardRow, error)
}

// Server serves the read-only leaderboard page
type Server struct {
	Source LeaderboardSource
}

func NewServer(src LeaderboardSource) *Server {
	return &Server{Source: src}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.HandleIndex)
	mux.HandleFunc("/leaderboard", s.HandleLeaderboard)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}

// HandleIndex serves the navigation page
func (s *Server) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(IndexPage()))
}

// HandleLeaderboard fetches fresh rows on every request
func (s *Server) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rows, err := s.Source.GetLeaderboard(r.Context())
	if err != nil {
		log.Printf("[Web] leaderboard: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(LeaderboardPage(rows)))
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// ListenAndServe runs until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Routes()}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	log.Printf("HTTP server starting on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
