package model

import (
	"time"

	"github.com/google/uuid"
)

// PanelKind identifies one of the studio's presentation panels.
type PanelKind string

const (
	PanelStoryboard PanelKind = "storyboard"
	PanelGallery    PanelKind = "gallery"
	PanelStudio     PanelKind = "studio"
	PanelVideo      PanelKind = "video"
)

// Valid reports whether k names a known panel.
func (k PanelKind) Valid() bool {
	switch k {
	case PanelStoryboard, PanelGallery, PanelStudio, PanelVideo:
		return true
	}
	return false
}

// PanelState is the observable lifecycle state of a panel.
type PanelState string

const (
	PanelStateIdle     PanelState = "idle"
	PanelStateInFlight PanelState = "in_flight"
	PanelStateSettled  PanelState = "settled"
)

// PanelError is the failure shown on a settled panel.
type PanelError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PanelSnapshot is a point-in-time view of a panel.
type PanelSnapshot struct {
	Session   string             `json:"session_id"`
	Panel     PanelKind          `json:"panel"`
	State     PanelState         `json:"state"`
	TaskID    uuid.UUID          `json:"task_id,omitempty"`
	Progress  int                `json:"progress"`
	Prompts   []string           `json:"prompts,omitempty"`
	Results   []GenerationResult `json:"results,omitempty"`
	Error     *PanelError        `json:"error,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// IdlePanel returns the snapshot of a panel that has never been used.
func IdlePanel(session string, panel PanelKind) *PanelSnapshot {
	return &PanelSnapshot{
		Session: session,
		Panel:   panel,
		State:   PanelStateIdle,
	}
}

// PanelKey identifies one panel of one session.
type PanelKey struct {
	Session string
	Panel   PanelKind
}

// String returns "session/panel".
func (k PanelKey) String() string {
	return k.Session + "/" + string(k.Panel)
}
