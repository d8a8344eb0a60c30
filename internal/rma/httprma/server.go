package httprma

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dreamware/kmerrma/internal/rma"
)

// Server exposes one rank's LocalStore over HTTP so other ranks can perform
// remote put/get/fetch-add against it. It holds no knowledge of the
// partitioning layer or the directory — those are purely client-side
// concerns (SPEC_FULL.md §4.2).
type Server struct {
	store *rma.LocalStore
}

// NewServer wraps a LocalStore for HTTP service.
func NewServer(store *rma.LocalStore) *Server {
	return &Server{store: store}
}

// Handler builds the mux.Router exposing the slot endpoints.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/slot/{offset}/payload", s.handleGetPayload).Methods(http.MethodGet)
	r.HandleFunc("/slot/{offset}/payload", s.handlePutPayload).Methods(http.MethodPost)
	r.HandleFunc("/slot/{offset}/flag", s.handleGetFlag).Methods(http.MethodGet)
	r.HandleFunc("/slot/{offset}/flag/fetch-add", s.handleFetchAdd).Methods(http.MethodPost)

	return r
}

func offsetFromPath(r *http.Request) (uint64, bool) {
	raw := mux.Vars(r)["offset"]

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

func (s *Server) handleGetPayload(w http.ResponseWriter, r *http.Request) {
	offset, ok := offsetFromPath(r)
	if !ok {
		http.Error(w, "bad offset", http.StatusBadRequest)
		return
	}

	rec := s.store.GetPayload(offset)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toWire(rec))
}

func (s *Server) handlePutPayload(w http.ResponseWriter, r *http.Request) {
	offset, ok := offsetFromPath(r)
	if !ok {
		http.Error(w, "bad offset", http.StatusBadRequest)
		return
	}

	var wr wireRecord
	if err := json.NewDecoder(r.Body).Decode(&wr); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	s.store.PutPayload(offset, wr.toRecord())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetFlag(w http.ResponseWriter, r *http.Request) {
	offset, ok := offsetFromPath(r)
	if !ok {
		http.Error(w, "bad offset", http.StatusBadRequest)
		return
	}

	flag := s.store.GetFlag(offset)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(flagResponse{Flag: flag})
}

func (s *Server) handleFetchAdd(w http.ResponseWriter, r *http.Request) {
	offset, ok := offsetFromPath(r)
	if !ok {
		http.Error(w, "bad offset", http.StatusBadRequest)
		return
	}

	var req fetchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	pre := s.store.FetchAddFlag(offset, req.Delta)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(fetchAddResponse{Pre: pre})
}
