package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pbaille/oniria/internal/app"
	"github.com/pbaille/oniria/internal/domain"
	"github.com/pbaille/oniria/internal/export"
	"github.com/pbaille/oniria/internal/filter"
	"github.com/pbaille/oniria/internal/interpret"
	"github.com/pbaille/oniria/internal/similarity"
	"github.com/pbaille/oniria/internal/view"
)

const maxBody = 10 << 20

// Server handles HTTP requests for the dream journal API
type Server struct {
	svc     *app.Service
	session *app.Session
	addr    string
	log     zerolog.Logger
}

// New creates a new API server
func New(svc *app.Service, session *app.Session, addr string, log zerolog.Logger) *Server {
	return &Server{svc: svc, session: session, addr: addr, log: log}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Dreams
	mux.HandleFunc("GET /dreams", s.listDreams)
	mux.HandleFunc("POST /dreams", s.addDream)
	mux.HandleFunc("GET /dreams/random", s.randomDream)
	mux.HandleFunc("GET /dreams/{id}", s.getDream)
	mux.HandleFunc("PATCH /dreams/{id}", s.editDream)
	mux.HandleFunc("DELETE /dreams/{id}", s.deleteDream)

	// Readings
	mux.HandleFunc("GET /dreams/{id}/narrative", s.narrate)
	mux.HandleFunc("POST /dreams/{id}/interpret", s.interpretDream)
	mux.HandleFunc("GET /dreams/{id}/similar", s.similar)

	// Journal
	mux.HandleFunc("GET /stats", s.stats)
	mux.HandleFunc("GET /export", s.exportDreams)
	mux.HandleFunc("POST /import", s.importDreams)

	// View state
	mux.HandleFunc("GET /view", s.getView)
	mux.HandleFunc("POST /view/navigate", s.navigate)
	mux.HandleFunc("POST /view/new", s.newDraft)
	mux.HandleFunc("POST /view/select", s.selectDream)
	mux.HandleFunc("POST /view/filter", s.filterView)
	mux.HandleFunc("POST /view/save", s.save)
	mux.HandleFunc("POST /view/modal", s.openModal)
	mux.HandleFunc("DELETE /view/modal", s.closeModal)
	mux.HandleFunc("POST /view/confirm-delete", s.confirmDelete)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return s.withLogging(withCORS(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("starting server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info().Msg("server stopped")
	return nil
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)

		s.log.Info().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("latency", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"dreams":    len(s.svc.List(filter.Criteria{}, false)),
		"interpret": s.svc.HasInterpreter(),
	})
}

func criteriaFrom(r *http.Request) filter.Criteria {
	q := r.URL.Query()
	return filter.Criteria{
		Keyword: q.Get("keyword"),
		Tag:     q.Get("tag"),
		Emotion: domain.Emotion(q.Get("emotion")),
	}
}

func (s *Server) listDreams(w http.ResponseWriter, r *http.Request) {
	c := criteriaFrom(r)
	dreams := s.svc.List(c, r.URL.Query().Get("sort") == "date")
	if dreams == nil {
		dreams = []domain.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dreams":   dreams,
		"count":    len(dreams),
		"criteria": c,
	})
}

func (s *Server) addDream(w http.ResponseWriter, r *http.Request) {
	var d domain.Draft
	if !decode(w, r, &d) {
		return
	}
	e, err := s.svc.Create(r.Context(), d)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) randomDream(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Random()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) getDream(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Get(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) editDream(w http.ResponseWriter, r *http.Request) {
	var p domain.Patch
	if !decode(w, r, &p) {
		return
	}
	if p.Empty() {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	e, err := s.svc.Edit(r.Context(), r.PathValue("id"), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) deleteDream(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) narrate(w http.ResponseWriter, r *http.Request) {
	reading, err := s.svc.Narrate(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) interpretDream(w http.ResponseWriter, r *http.Request) {
	reading, err := s.svc.Interpret(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) similar(w http.ResponseWriter, r *http.Request) {
	n := 5
	if v := r.URL.Query().Get("n"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			n = parsed
		}
	}
	matches, err := s.svc.Related(r.PathValue("id"), n)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if matches == nil {
		matches = []similarity.Match{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"similar": matches})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Stats())
}

func (s *Server) exportDreams(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	data, name, err := s.svc.Export(f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) importDreams(w http.ResponseWriter, r *http.Request) {
	buf, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	n, err := s.svc.Import(r.Context(), buf)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps domain errors to statuses. Interpretation failures
// carry the one user-facing message.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, interpret.ErrUnavailable):
		writeError(w, http.StatusBadGateway, interpret.FailureMessage)
	case errors.Is(err, view.ErrModalOpen):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
