// Package history keeps the bounded undo/redo stacks for applied changes.
// Single-writer by design; the mutex only guards against concurrent HTTP
// handlers reaching the same engine.
package history

import (
	"sync"
	"time"

	"adminstyler/model"
)

// DefaultLimit bounds the undo stack; oldest entries drop on overflow.
const DefaultLimit = 50

type History struct {
	mu      sync.Mutex
	limit   int
	undo    []model.ChangeRecord
	redo    []model.ChangeRecord
	initial map[string]string
}

func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Record pushes an undo step holding the value to restore to and clears the
// redo stack: new actions invalidate the redo branch.
func (h *History) Record(optionID, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undo = append(h.undo, model.ChangeRecord{
		OptionID:  optionID,
		Value:     value,
		Timestamp: time.Now(),
	})
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
}

// Undo pops the most recent undo step. The caller re-applies the returned
// value and pushes the displaced current value onto the redo stack.
func (h *History) Undo() *model.ChangeRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return pop(&h.undo)
}

// Redo pops the most recent redo step.
func (h *History) Redo() *model.ChangeRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return pop(&h.redo)
}

// PushRedo stores the value displaced by an undo.
func (h *History) PushRedo(rec model.ChangeRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.redo = append(h.redo, rec)
}

// PushUndo restores an undo step after a redo, without touching the redo
// stack the way Record does.
func (h *History) PushUndo(rec model.ChangeRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = append(h.undo, rec)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
}

func pop(stack *[]model.ChangeRecord) *model.ChangeRecord {
	s := *stack
	if len(s) == 0 {
		return nil
	}
	rec := s[len(s)-1]
	*stack = s[:len(s)-1]
	return &rec
}

// SetInitial captures the snapshot taken when preview mode was entered.
func (h *History) SetInitial(values map[string]string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.initial = make(map[string]string, len(values))
	for k, v := range values {
		h.initial[k] = v
	}
}

// Initial returns a copy of the preview-entry snapshot.
func (h *History) Initial() map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]string, len(h.initial))
	for k, v := range h.initial {
		out[k] = v
	}
	return out
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = nil
	h.redo = nil
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Depth reports the undo stack size.
func (h *History) Depth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo)
}
