// Package view models what the user is looking at. State is a plain value
// owned by one controller; transitions are pure functions over it and
// Render maps a state and a snapshot of the journal to a Page.
package view

import (
	"errors"
	"fmt"

	"github.com/pbaille/oniria/internal/domain"
	"github.com/pbaille/oniria/internal/filter"
)

// Screen is one of the top-level views.
type Screen string

const (
	ScreenList    Screen = "list"
	ScreenDetail  Screen = "detail"
	ScreenForm    Screen = "form"
	ScreenJournal Screen = "journal"
	ScreenExplore Screen = "explore"
)

// Modal is an overlay that blocks every other action until closed.
type Modal string

const (
	ModalNone     Modal = ""
	ModalAnalysis Modal = "analysis"
	ModalDelete   Modal = "delete"
)

// ErrModalOpen rejects actions while a modal covers the screen.
var ErrModalOpen = errors.New("close the open dialog first")

// State is the complete presentation state.
type State struct {
	Screen     Screen          `json:"screen"`
	SelectedID string          `json:"selectedId,omitempty"`
	Criteria   filter.Criteria `json:"criteria"`
	Modal      Modal           `json:"modal,omitempty"`
	// Analysis is the text shown in the analysis modal.
	Analysis string `json:"analysis,omitempty"`
	// Message is a one-shot notice, such as a storage warning.
	Message string `json:"message,omitempty"`
}

// Initial is the state at start-up.
func Initial() State {
	return State{Screen: ScreenList}
}

func ParseScreen(s string) (Screen, error) {
	switch sc := Screen(s); sc {
	case ScreenList, ScreenDetail, ScreenForm, ScreenJournal, ScreenExplore:
		return sc, nil
	}
	return "", fmt.Errorf("%w: unknown screen %q", domain.ErrValidation, s)
}

func ParseModal(s string) (Modal, error) {
	switch m := Modal(s); m {
	case ModalAnalysis, ModalDelete:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown modal %q", domain.ErrValidation, s)
}

func (s State) guard() error {
	if s.Modal != ModalNone {
		return fmt.Errorf("%w: %s", ErrModalOpen, s.Modal)
	}
	return nil
}

// Navigate switches screen. The collection screens drop the selection;
// the form keeps it and edits that entry.
func Navigate(s State, to Screen) (State, error) {
	if err := s.guard(); err != nil {
		return s, err
	}
	s.Screen = to
	s.Message = ""
	if to == ScreenList || to == ScreenJournal || to == ScreenExplore {
		s.SelectedID = ""
	}
	return s, nil
}

// NewDraft opens an empty form.
func NewDraft(s State) (State, error) {
	if err := s.guard(); err != nil {
		return s, err
	}
	s.Screen = ScreenForm
	s.SelectedID = ""
	s.Message = ""
	return s, nil
}

// Select shows the detail screen for id.
func Select(s State, id string) (State, error) {
	if err := s.guard(); err != nil {
		return s, err
	}
	s.Screen = ScreenDetail
	s.SelectedID = id
	s.Message = ""
	return s, nil
}

// Filter replaces the explore criteria and shows the results.
func Filter(s State, c filter.Criteria) (State, error) {
	if err := s.guard(); err != nil {
		return s, err
	}
	s.Screen = ScreenExplore
	s.Criteria = c
	return s, nil
}

// OpenModal requires a selected entry: both modals act on it.
func OpenModal(s State, m Modal, analysis string) (State, error) {
	if err := s.guard(); err != nil {
		return s, err
	}
	if s.SelectedID == "" {
		return s, fmt.Errorf("%w: no dream selected", domain.ErrValidation)
	}
	s.Modal = m
	s.Analysis = ""
	if m == ModalAnalysis {
		s.Analysis = analysis
	}
	return s, nil
}

// CloseModal is always allowed.
func CloseModal(s State) State {
	s.Modal = ModalNone
	s.Analysis = ""
	return s
}

// Deleted is the state after the selected entry was removed.
func Deleted(s State) State {
	s = CloseModal(s)
	s.Screen = ScreenList
	s.SelectedID = ""
	return s
}

// Notify sets the one-shot message.
func Notify(s State, msg string) State {
	s.Message = msg
	return s
}
