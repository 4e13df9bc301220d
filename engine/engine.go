// Package engine applies validated option values to the live document:
// custom properties on the root scope, structural body classes, element
// visibility, and the small closed set of special handlers.
package engine

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"adminstyler/dom"
	"adminstyler/history"
	"adminstyler/model"
	"adminstyler/perf"
	"adminstyler/theme"
)

var (
	ErrUnmappedOption    = errors.New("unmapped option")
	ErrValidationFailed  = errors.New("validation failed")
	ErrApplicationFailed = errors.New("application failed")
)

// DefaultBudget is the target end-to-end latency per apply. Calls over
// budget are logged as performance warnings, never treated as failures.
const DefaultBudget = 50 * time.Millisecond

// SpecialHandler performs a side effect that cannot be expressed as a pure
// variable/class/visibility mapping. Handlers must be idempotent.
type SpecialHandler func(doc dom.Document, value string) error

// Outcome reports one apply.
type Outcome struct {
	OptionID string `json:"option_id"`
	Success  bool   `json:"success"`
	Effects  int    `json:"effects"`
	Error    string `json:"error,omitempty"`

	Err      error         `json:"-"`
	Duration time.Duration `json:"-"`
}

// BatchResult aggregates independent per-item outcomes; there is no
// atomicity across a batch.
type BatchResult struct {
	Outcomes []Outcome `json:"outcomes"`
	Applied  int       `json:"applied"`
	Failed   int       `json:"failed"`
}

type Engine struct {
	mu sync.Mutex

	registry *theme.Registry
	mapper   *theme.Mapper
	doc      dom.Document
	hist     *history.History
	monitor  *perf.Monitor

	handlers  map[string]SpecialHandler
	onApplied func(model.ChangeRecord)

	// current raw value per option id, the source for history restore-to
	// values.
	current map[string]string

	budget time.Duration
}

// New wires the engine to its collaborators. Pass a zero budget to use
// DefaultBudget.
func New(registry *theme.Registry, mapper *theme.Mapper, doc dom.Document, hist *history.History, monitor *perf.Monitor, budget time.Duration) *Engine {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Engine{
		registry: registry,
		mapper:   mapper,
		doc:      doc,
		hist:     hist,
		monitor:  monitor,
		handlers: make(map[string]SpecialHandler),
		current:  make(map[string]string),
		budget:   budget,
	}
}

// RegisterHandler installs a special handler under its mapper name.
func (e *Engine) RegisterHandler(name string, h SpecialHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[name] = h
}

// SetOnApplied installs the hook invoked after every successful local
// apply, carrying the applied change. Used for broadcast and persistence.
func (e *Engine) SetOnApplied(fn func(model.ChangeRecord)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onApplied = fn
}

// Bootstrap seeds the document with every variable's default value and
// every option's default raw value, then captures the initial snapshot
// that ResetToInitial restores.
func (e *Engine) Bootstrap() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, name := range e.registry.Names() {
		d, _ := e.registry.Get(name)
		e.doc.SetProperty(name, theme.ToCSSValue(d.Default, d))
	}
	for _, id := range e.mapper.OptionIDs() {
		m, _ := e.mapper.Resolve(id)
		e.current[id] = e.defaultRaw(m)
	}
	e.hist.SetInitial(e.current)
}

// MarkInitial recaptures the reset snapshot from the current values and
// clears both history stacks. Called after a stored snapshot is replayed at
// startup, so reset means "as loaded", not factory defaults.
func (e *Engine) MarkInitial() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hist.SetInitial(e.current)
	e.hist.Clear()
}

// Apply validates and applies one (optionId, value) pair. Failures are
// reported in the outcome, never panicked; prior state stays untouched.
func (e *Engine) Apply(optionID, raw string) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applyLocked(optionID, raw, true, true)
}

// ApplyRemote applies a change received from another tab. History recording
// and re-broadcast are bypassed so remote echoes cannot grow the undo stack
// or loop.
func (e *Engine) ApplyRemote(msg model.BroadcastMessage) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	log.Printf("[engine] remote change %s=%q from %s", msg.OptionID, msg.Value, msg.Source)
	return e.applyLocked(msg.OptionID, msg.Value, false, false)
}

// BatchUpdate applies each update independently and reports aggregate
// counts, the settled-join shape a full-form load or template application
// needs.
func (e *Engine) BatchUpdate(updates []model.OptionUpdate) BatchResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.batchLocked(updates, true, true)
}

// RestoreSnapshot replays a stored settings snapshot without recording
// history or announcing changes. Used once at startup.
func (e *Engine) RestoreSnapshot(options map[string]string) BatchResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]string, 0, len(options))
	for id := range options {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	updates := make([]model.OptionUpdate, 0, len(ids))
	for _, id := range ids {
		updates = append(updates, model.OptionUpdate{OptionID: id, Value: options[id]})
	}
	return e.batchLocked(updates, false, false)
}

func (e *Engine) batchLocked(updates []model.OptionUpdate, record, announce bool) BatchResult {
	res := BatchResult{Outcomes: make([]Outcome, 0, len(updates))}
	for _, u := range updates {
		out := e.applyLocked(u.OptionID, u.Value, record, announce)
		res.Outcomes = append(res.Outcomes, out)
		if out.Success {
			res.Applied++
		} else {
			res.Failed++
		}
	}
	return res
}

func (e *Engine) applyLocked(optionID, raw string, record, announce bool) Outcome {
	start := time.Now()
	out := Outcome{OptionID: optionID}

	mapping, ok := e.mapper.Resolve(optionID)
	if !ok {
		out.Err = fmt.Errorf("%w: %s", ErrUnmappedOption, optionID)
		out.Error = out.Err.Error()
		e.finish(&out, start)
		return out
	}

	// effectErr holds recovered per-effect failures (validation); fatalErr
	// holds unrecovered ones (handler/DOM errors). Sibling effects always
	// proceed.
	var effectErr, fatalErr error

	if mapping.VariableName != "" {
		if err := e.applyVariableEffect(mapping.VariableName, raw); err != nil {
			log.Printf("[engine] %s: variable effect: %v", optionID, err)
			effectErr = err
		} else {
			out.Effects++
		}
	}

	if mapping.BodyClass != "" {
		on := theme.Truthy(raw)
		e.doc.ToggleClass(mapping.BodyClass, on)
		if e.doc.HasClass(mapping.BodyClass) != on {
			log.Printf("[engine] %s: class %q verification mismatch", optionID, mapping.BodyClass)
		}
		out.Effects++
	}

	if mapping.VisibilitySelector != "" {
		hidden := theme.Truthy(raw)
		if n := e.doc.SetDisplay(mapping.VisibilitySelector, hidden); n == 0 {
			log.Printf("[engine] %s: selector %q matched no elements", optionID, mapping.VisibilitySelector)
		}
		out.Effects++
	}

	if mapping.SpecialHandler != "" {
		if h := e.handlers[mapping.SpecialHandler]; h == nil {
			fatalErr = fmt.Errorf("%w: no handler registered for %q", ErrApplicationFailed, mapping.SpecialHandler)
			log.Printf("[engine] %s: %v", optionID, fatalErr)
		} else if err := h(e.doc, raw); err != nil {
			fatalErr = fmt.Errorf("%w: handler %s: %v", ErrApplicationFailed, mapping.SpecialHandler, err)
			log.Printf("[engine] %s: %v", optionID, fatalErr)
		} else {
			out.Effects++
		}
	}

	out.Success = out.Effects > 0 && fatalErr == nil
	if !out.Success {
		err := fatalErr
		if err == nil {
			err = effectErr
		}
		if err == nil {
			err = fmt.Errorf("%w: no effects applied", ErrApplicationFailed)
		}
		out.Err = err
		out.Error = err.Error()
		e.finish(&out, start)
		return out
	}

	if record {
		prev, known := e.current[optionID]
		if !known {
			prev = e.defaultRaw(mapping)
		}
		e.hist.Record(optionID, prev)
	}
	e.current[optionID] = raw

	if announce && e.onApplied != nil {
		e.onApplied(model.ChangeRecord{OptionID: optionID, Value: raw, Timestamp: time.Now()})
	}

	e.finish(&out, start)
	return out
}

// applyVariableEffect writes the custom property and verifies the write by
// reading the computed value back. On mismatch (no custom-property support,
// or overridden by higher-specificity CSS) it installs the per-variable
// fallback rule with elevated priority instead.
func (e *Engine) applyVariableEffect(name, raw string) error {
	desc, ok := e.registry.Get(name)
	if !ok {
		return fmt.Errorf("%w: unknown variable %s", ErrApplicationFailed, name)
	}

	sanitized, err := theme.Validate(raw, desc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	cssValue := theme.ToCSSValue(sanitized, desc)

	e.doc.SetProperty(name, cssValue)
	if got := strings.TrimSpace(e.doc.PropertyValue(name)); got != cssValue {
		val := cssValue
		if val == "" {
			val = desc.Fallback
		}
		e.doc.UpsertFallbackStyle(name, fallbackRule(name, val))
		log.Printf("[engine] %s: write verification failed (computed %q), fallback rule installed", name, got)
	}
	return nil
}

func (e *Engine) defaultRaw(m *theme.OptionMapping) string {
	if m.VariableName != "" {
		if d, ok := e.registry.Get(m.VariableName); ok {
			return d.Default
		}
	}
	if m.BodyClass != "" || m.VisibilitySelector != "" {
		return "false"
	}
	return ""
}

func (e *Engine) finish(out *Outcome, start time.Time) {
	out.Duration = time.Since(start)
	if out.Duration > e.budget {
		log.Printf("[engine] %s took %s, over the %s budget", out.OptionID, out.Duration, e.budget)
	}
	if e.monitor != nil {
		e.monitor.RecordUpdate(out.OptionID, out.Duration, out.Success)
	}
}

// CurrentValue returns the last applied raw value for an option.
func (e *Engine) CurrentValue(optionID string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.current[optionID]
	return v, ok
}

// CurrentValues copies the full option state, the persistable snapshot.
func (e *Engine) CurrentValues() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.current))
	for k, v := range e.current {
		out[k] = v
	}
	return out
}
