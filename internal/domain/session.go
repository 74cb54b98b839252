package domain

import (
	"errors"
	"strconv"
)

// ErrNoSelection is returned when a user has no active project selection.
var ErrNoSelection = errors.New("no project selected")

// SessionKey identifies one user inside one chat. Sessions are never shared
// between keys.
type SessionKey struct {
	ChatID int64
	UserID int64
}

func (k SessionKey) String() string {
	return strconv.FormatInt(k.ChatID, 10) + ":" + strconv.FormatInt(k.UserID, 10)
}

// StateKind tags the conversation state of a session.
type StateKind int

const (
	StateIdle StateKind = iota
	StateProjectSelected
)

func (k StateKind) String() string {
	switch k {
	case StateProjectSelected:
		return "project_selected"
	default:
		return "idle"
	}
}

// State is the per-user conversation state. Project is only set when Kind is
// StateProjectSelected.
type State struct {
	Kind    StateKind
	Project Project
}

func Idle() State {
	return State{Kind: StateIdle}
}

func ProjectSelected(p Project) State {
	return State{Kind: StateProjectSelected, Project: p}
}
