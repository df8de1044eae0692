package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pbaille/oniria/internal/domain"
	"github.com/pbaille/oniria/internal/filter"
	"github.com/pbaille/oniria/internal/interpret"
	"github.com/pbaille/oniria/internal/view"
)

// Session is the single controller of the presentation state. Every
// action returns the page to draw next.
type Session struct {
	svc *Service

	mu    sync.Mutex
	state view.State
}

func NewSession(svc *Service) *Session {
	return &Session{svc: svc, state: view.Initial()}
}

func (s *Session) State() view.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) View() view.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render()
}

func (s *Session) render() view.Page {
	return view.Render(s.state, s.svc.journal.List())
}

// apply runs a transition and keeps the state only when it succeeds.
func (s *Session) apply(fn func(view.State) (view.State, error)) (view.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.state)
	if err != nil {
		return s.render(), err
	}
	s.state = next
	return s.render(), nil
}

func (s *Session) Navigate(to view.Screen) (view.Page, error) {
	return s.apply(func(st view.State) (view.State, error) {
		return view.Navigate(st, to)
	})
}

func (s *Session) NewDraft() (view.Page, error) {
	return s.apply(view.NewDraft)
}

// Select shows an entry; id may be a prefix.
func (s *Session) Select(id string) (view.Page, error) {
	return s.apply(func(st view.State) (view.State, error) {
		if err := guard(st); err != nil {
			return st, err
		}
		e, err := s.svc.Get(id)
		if err != nil {
			return st, err
		}
		return view.Select(st, e.ID)
	})
}

func (s *Session) Filter(c filter.Criteria) (view.Page, error) {
	return s.apply(func(st view.State) (view.State, error) {
		return view.Filter(st, c)
	})
}

// Notify shows a one-shot message, such as a storage warning.
func (s *Session) Notify(msg string) view.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = view.Notify(s.state, msg)
	return s.render()
}

// OpenModal opens m over the selected entry. The analysis modal fetches its
// text first without holding the session; a failed interpretation shows
// interpret.FailureMessage inside the modal.
func (s *Session) OpenModal(ctx context.Context, m view.Modal) (view.Page, error) {
	st := s.State()
	if err := guard(st); err != nil {
		return s.View(), err
	}

	var text string
	if m == view.ModalAnalysis && st.SelectedID != "" {
		r, err := s.svc.Interpret(ctx, st.SelectedID)
		switch {
		case errors.Is(err, interpret.ErrSuperseded):
			return s.View(), err
		case errors.Is(err, interpret.ErrUnavailable):
			text = interpret.FailureMessage
		case err != nil:
			return s.View(), err
		default:
			text = r.Text
		}
	}

	return s.apply(func(cur view.State) (view.State, error) {
		if cur.SelectedID != st.SelectedID {
			return cur, fmt.Errorf("%w: selection changed", domain.ErrValidation)
		}
		return view.OpenModal(cur, m, text)
	})
}

// CloseModal always succeeds and abandons a pending interpretation.
func (s *Session) CloseModal() view.Page {
	s.svc.CancelInterpretation()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = view.CloseModal(s.state)
	return s.render()
}

// ConfirmDelete removes the selected entry. It is only valid while the
// delete modal is open.
func (s *Session) ConfirmDelete(ctx context.Context) (view.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Modal != view.ModalDelete {
		return s.render(), fmt.Errorf("%w: delete was not requested", domain.ErrValidation)
	}
	if err := s.svc.Delete(ctx, s.state.SelectedID); err != nil {
		return s.render(), err
	}
	s.state = view.Deleted(s.state)
	return s.render(), nil
}

// Save submits the form: it edits the selected entry, or creates one when
// nothing is selected, then shows the result.
func (s *Session) Save(ctx context.Context, d domain.Draft) (view.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := guard(s.state); err != nil {
		return s.render(), err
	}
	if s.state.Screen != view.ScreenForm {
		return s.render(), fmt.Errorf("%w: form is not open", domain.ErrValidation)
	}

	var (
		e   domain.Entry
		err error
	)
	if s.state.SelectedID != "" {
		e, err = s.svc.Edit(ctx, s.state.SelectedID, d.Patch())
	} else {
		e, err = s.svc.Create(ctx, d)
	}
	if err != nil {
		return s.render(), err
	}

	next, err := view.Select(s.state, e.ID)
	if err != nil {
		return s.render(), err
	}
	s.state = next
	return s.render(), nil
}

func guard(st view.State) error {
	if st.Modal != view.ModalNone {
		return fmt.Errorf("%w: %s", view.ErrModalOpen, st.Modal)
	}
	return nil
}
