package view

import (
	"errors"

	"fincharts/internal/core"
)

// ErrEditorClosed is returned when a month tab is selected while the editor
// is closed.
var ErrEditorClosed = errors.New("editor is closed")

// EditorState is either closed or open on one month tab.
type EditorState struct {
	Open  bool `json:"open"`
	Month int  `json:"month"`
}

func (s EditorState) String() string {
	if !s.Open {
		return "closed"
	}
	return "open on " + core.MonthLabel(s.Month)
}

// Tabs is the editor tab state machine. Transitions never touch ledger data.
type Tabs struct {
	state EditorState
}

// Open moves to the first month, whatever the previous state.
func (t *Tabs) Open() EditorState {
	t.state = EditorState{Open: true, Month: 0}
	return t.state
}

// Select switches to another month tab.
func (t *Tabs) Select(month int) (EditorState, error) {
	if !t.state.Open {
		return t.state, ErrEditorClosed
	}
	if err := core.CheckMonth(month); err != nil {
		return t.state, err
	}
	t.state.Month = month
	return t.state, nil
}

func (t *Tabs) Close() EditorState {
	t.state = EditorState{}
	return t.state
}

func (t *Tabs) State() EditorState { return t.state }
