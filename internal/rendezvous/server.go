package rendezvous

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dreamware/kmerrma/internal/rank"
)

// Server is the rendezvous service's HTTP front end: directory publication
// and collective barriers, nothing else. Routing style (gorilla/mux with
// path-parameterized routes) mirrors osakka-entitydb's use of the same
// router for REST-ish handler trees; the teacher's own manual
// http.ServeMux is outgrown once /barrier/{phase} needs a path variable.
type Server struct {
	registry *RankRegistry
	barrier  *BarrierCoordinator
}

// NewServer creates a rendezvous server expecting worldSize ranks.
func NewServer(worldSize int) *Server {
	return &Server{
		registry: NewRankRegistry(worldSize),
		barrier:  NewBarrierCoordinator(worldSize),
	}
}

// Handler builds the mux.Router for this server.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/directory", s.handleDirectory).Methods(http.MethodGet)
	r.HandleFunc("/barrier/{phase}", s.handleBarrier).Methods(http.MethodPost)

	return r
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req rank.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	dir, complete, err := s.registry.Register(req.Rank)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	log.Printf("[rendezvous] rank %d registered @ %s (run %s)", req.Rank.ID, req.Rank.Addr, req.RunID)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Complete  bool           `json:"complete"`
		Directory rank.Directory `json:"directory"`
	}{Complete: complete, Directory: dir})
}

func (s *Server) handleDirectory(w http.ResponseWriter, _ *http.Request) {
	dir, ok := s.registry.Directory()
	if !ok {
		http.Error(w, "directory not published yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(dir)
}

func (s *Server) handleBarrier(w http.ResponseWriter, r *http.Request) {
	phase := mux.Vars(r)["phase"]

	var req struct {
		Rank int `json:"rank"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), DefaultBarrierTimeout+5*time.Second)
	defer cancel()

	if err := s.barrier.Arrive(ctx, phase, req.Rank); err != nil {
		http.Error(w, err.Error(), http.StatusGatewayTimeout)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
