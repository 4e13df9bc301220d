package engine

import (
	"sort"
	"time"

	"adminstyler/model"
)

// Undo re-applies the value stored by the most recent change and moves the
// displaced current value onto the redo stack. Returns false when there is
// nothing to undo or the re-apply failed.
func (e *Engine) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec := e.hist.Undo()
	if rec == nil {
		return false
	}
	displaced := e.current[rec.OptionID]

	out := e.applyLocked(rec.OptionID, rec.Value, false, true)
	if !out.Success {
		e.hist.PushUndo(*rec)
		return false
	}
	e.hist.PushRedo(model.ChangeRecord{OptionID: rec.OptionID, Value: displaced, Timestamp: time.Now()})
	return true
}

// Redo reverses the most recent undo.
func (e *Engine) Redo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec := e.hist.Redo()
	if rec == nil {
		return false
	}
	displaced := e.current[rec.OptionID]

	out := e.applyLocked(rec.OptionID, rec.Value, false, true)
	if !out.Success {
		e.hist.PushRedo(*rec)
		return false
	}
	e.hist.PushUndo(model.ChangeRecord{OptionID: rec.OptionID, Value: displaced, Timestamp: time.Now()})
	return true
}

// ResetToInitial restores every tracked option to the snapshot captured
// when preview mode was entered, then clears both stacks. Returns how many
// options were restored.
func (e *Engine) ResetToInitial() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	initial := e.hist.Initial()
	ids := make([]string, 0, len(initial))
	for id := range initial {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	restored := 0
	for _, id := range ids {
		if out := e.applyLocked(id, initial[id], false, true); out.Success {
			restored++
		}
	}
	e.hist.Clear()
	return restored
}

// CanUndo reports whether an undo step is available.
func (e *Engine) CanUndo() bool { return e.hist.CanUndo() }

// CanRedo reports whether a redo step is available.
func (e *Engine) CanRedo() bool { return e.hist.CanRedo() }
