package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pbaille/oniria/internal/domain"
	"github.com/pbaille/oniria/internal/filter"
	"github.com/pbaille/oniria/internal/view"
)

// decode reads a JSON body into v, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
}

// writePage answers with the page, or with the mapped error status when
// the action was rejected. It takes a session action's results directly.
func writePage(w http.ResponseWriter) func(view.Page, error) {
	return func(p view.Page, err error) {
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) getView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.View())
}

// NavigateRequest is the request body for switching screens
type NavigateRequest struct {
	Screen string `json:"screen"`
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if !decode(w, r, &req) {
		return
	}
	screen, err := view.ParseScreen(req.Screen)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writePage(w)(s.session.Navigate(screen))
}

func (s *Server) newDraft(w http.ResponseWriter, r *http.Request) {
	writePage(w)(s.session.NewDraft())
}

// SelectRequest is the request body for opening a dream
type SelectRequest struct {
	ID string `json:"id"`
}

func (s *Server) selectDream(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if !decode(w, r, &req) {
		return
	}
	writePage(w)(s.session.Select(req.ID))
}

func (s *Server) filterView(w http.ResponseWriter, r *http.Request) {
	var c filter.Criteria
	if !decode(w, r, &c) {
		return
	}
	writePage(w)(s.session.Filter(c))
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	var d domain.Draft
	if !decode(w, r, &d) {
		return
	}
	writePage(w)(s.session.Save(r.Context(), d))
}

// ModalRequest is the request body for opening a modal
type ModalRequest struct {
	Modal string `json:"modal"`
}

func (s *Server) openModal(w http.ResponseWriter, r *http.Request) {
	var req ModalRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := view.ParseModal(req.Modal)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writePage(w)(s.session.OpenModal(r.Context(), m))
}

func (s *Server) closeModal(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.CloseModal())
}

func (s *Server) confirmDelete(w http.ResponseWriter, r *http.Request) {
	writePage(w)(s.session.ConfirmDelete(r.Context()))
}
