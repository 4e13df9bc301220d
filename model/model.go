package model

import (
	"time"
)

// ChangeRecord captures one applied option change. Immutable once pushed.
// The history stack stores the value to restore to, not the value just applied.
type ChangeRecord struct {
	OptionID  string    `json:"option_id"`
	Value     string    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// BroadcastMessage is the wire format for cross-tab synchronization.
// ChangeID is a locally generated token used by the sender to recognize
// and discard its own echo.
type BroadcastMessage struct {
	OptionID  string    `json:"option_id"`
	Value     string    `json:"value"`
	ChangeID  string    `json:"change_id"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"`
}

// Snapshot is the last-applied settings state kept on the client side so the
// UI can be restored on reload before the authoritative server value arrives.
type Snapshot struct {
	Options map[string]string `json:"options"`
	Scheme  string            `json:"scheme,omitempty"`
	SavedAt time.Time         `json:"saved_at"`
}

// OptionUpdate is one (optionId, value) pair as submitted by a settings form
// control or a batch/template application.
type OptionUpdate struct {
	OptionID string `json:"option_id"`
	Value    string `json:"value"`
}
