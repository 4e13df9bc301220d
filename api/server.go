package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"adminstyler/dom"
	"adminstyler/engine"
	"adminstyler/model"
	"adminstyler/perf"
	"adminstyler/storage"
	"adminstyler/theme"
)

// nonceHeader carries the CSRF-style token on JSON requests; form requests
// put it in the "nonce" field instead.
const nonceHeader = "X-Woow-Nonce"

type Server struct {
	eng      *engine.Engine
	registry *theme.Registry
	doc      *dom.MemoryDocument
	store    *storage.Store
	monitor  *perf.Monitor
	hub      *Hub

	nonce string
}

func NewServer(eng *engine.Engine, registry *theme.Registry, doc *dom.MemoryDocument, store *storage.Store, monitor *perf.Monitor, hub *Hub) *Server {
	return &Server{
		eng:      eng,
		registry: registry,
		doc:      doc,
		store:    store,
		monitor:  monitor,
		hub:      hub,
		nonce:    uuid.NewString(),
	}
}

// Nonce returns the token mutating endpoints require.
func (s *Server) Nonce() string {
	return s.nonce
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/option", s.handleOption)
	mux.HandleFunc("/api/options", s.handleOptions)
	mux.HandleFunc("/api/undo", s.handleUndo)
	mux.HandleFunc("/api/redo", s.handleRedo)
	mux.HandleFunc("/api/reset", s.handleReset)
	mux.HandleFunc("/api/base.css", s.handleBaseStyle)
	mux.HandleFunc("/api/perf", s.handlePerf)
	mux.HandleFunc("/api/sync", s.hub.HandleSync)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type stateResponse struct {
	Nonce    string            `json:"nonce"`
	Options  map[string]string `json:"options"`
	Scheme   string            `json:"scheme,omitempty"`
	Document dom.State         `json:"document"`
}

// handleState serves the live option values, the document view and the
// nonce the settings form needs for mutating calls.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	scheme, err := s.store.Scheme()
	if err != nil {
		log.Printf("[api] load scheme: %v", err)
	}
	writeJSON(w, http.StatusOK, stateResponse{
		Nonce:    s.nonce,
		Options:  s.eng.CurrentValues(),
		Scheme:   scheme,
		Document: s.doc.Snapshot(),
	})
}

type optionResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// handleOption is the admin-ajax shaped endpoint: a form POST carrying
// nonce, option_id and value. The value goes live even when storage fails;
// storage trouble is reported, not rolled back.
func (s *Server) handleOption(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.checkNonce(w, r) {
		return
	}

	optionID := r.PostFormValue("option_id")
	value := r.PostFormValue("value")
	if optionID == "" {
		writeJSON(w, http.StatusBadRequest, optionResponse{Message: "option_id required"})
		return
	}

	out := s.eng.Apply(optionID, value)
	if !out.Success {
		writeJSON(w, http.StatusOK, optionResponse{Message: out.Error, Data: mustMarshal(out)})
		return
	}

	msg := "saved"
	if err := s.store.SaveOption(optionID, value); err != nil {
		log.Printf("[api] persist %s: %v", optionID, err)
		msg = "change is live but not saved"
	}
	writeJSON(w, http.StatusOK, optionResponse{Success: true, Message: msg, Data: mustMarshal(out)})
}

type batchRequest struct {
	Updates []model.OptionUpdate `json:"updates"`
}

// handleOptions applies a JSON batch, the full-form load / template path.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.checkNonce(w, r) {
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, optionResponse{Message: "invalid json"})
		return
	}

	res := s.eng.BatchUpdate(req.Updates)
	for _, out := range res.Outcomes {
		if !out.Success {
			continue
		}
		if v, ok := s.eng.CurrentValue(out.OptionID); ok {
			if err := s.store.SaveOption(out.OptionID, v); err != nil {
				log.Printf("[api] persist %s: %v", out.OptionID, err)
			}
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.handleHistoryStep(w, r, s.eng.Undo)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.handleHistoryStep(w, r, s.eng.Redo)
}

func (s *Server) handleHistoryStep(w http.ResponseWriter, r *http.Request, step func() bool) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.checkNonce(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{
		"success":  step(),
		"can_undo": s.eng.CanUndo(),
		"can_redo": s.eng.CanRedo(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.checkNonce(w, r) {
		return
	}
	restored := s.eng.ResetToInitial()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "restored": restored})
}

// handleBaseStyle serves the generated root stylesheet defining every
// variable at its default.
func (s *Server) handleBaseStyle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(s.registry.GenerateBaseStyle()))
}

func (s *Server) handlePerf(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Stats())
}

func (s *Server) checkNonce(w http.ResponseWriter, r *http.Request) bool {
	token := r.Header.Get(nonceHeader)
	if token == "" {
		token = r.PostFormValue("nonce")
	}
	if token != s.nonce {
		writeJSON(w, http.StatusForbidden, optionResponse{Message: "invalid nonce"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON error: %v", err)
	}
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{"error":"marshal error"}`)
	}
	return b
}
