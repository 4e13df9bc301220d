package dom

import (
	"sort"
	"sync"
)

type element struct {
	display     string
	savedPrev   string
	hiddenByUs  bool
	inlineStyle map[string]string
}

// MemoryDocument is an in-memory Document with just enough computed-style
// semantics for write verification: a fallback rule does not change the
// computed value of the custom property itself, only the styled target, so
// PropertyValue reflects root properties alone.
type MemoryDocument struct {
	mu sync.Mutex

	// supportsCustomProperties=false simulates an environment where root
	// property writes are dropped, forcing the engine's fallback path.
	supportsCustomProperties bool

	properties map[string]string
	fallbacks  map[string]string
	classes    map[string]bool
	attributes map[string]string
	elements   map[string][]*element
}

// NewMemoryDocument returns an empty document with custom-property support.
func NewMemoryDocument() *MemoryDocument {
	return &MemoryDocument{
		supportsCustomProperties: true,
		properties:               make(map[string]string),
		fallbacks:                make(map[string]string),
		classes:                  make(map[string]bool),
		attributes:               make(map[string]string),
		elements:                 make(map[string][]*element),
	}
}

// NewDegradedDocument returns a document that silently drops custom
// property writes, the way browsers without custom-property support do.
func NewDegradedDocument() *MemoryDocument {
	d := NewMemoryDocument()
	d.supportsCustomProperties = false
	return d
}

// AddElement registers one element under a selector so visibility and
// inline-style effects have something to match.
func (d *MemoryDocument) AddElement(selector string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elements[selector] = append(d.elements[selector], &element{inlineStyle: make(map[string]string)})
}

func (d *MemoryDocument) SetProperty(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.supportsCustomProperties {
		return
	}
	d.properties[name] = value
}

func (d *MemoryDocument) PropertyValue(name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.properties[name]
}

func (d *MemoryDocument) UpsertFallbackStyle(variable, cssText string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fallbacks[variable] = cssText
}

// FallbackStyle returns the current fallback rule for a variable, if any.
func (d *MemoryDocument) FallbackStyle(variable string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	css, ok := d.fallbacks[variable]
	return css, ok
}

// FallbackCount reports how many fallback rules are installed.
func (d *MemoryDocument) FallbackCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.fallbacks)
}

func (d *MemoryDocument) ToggleClass(class string, on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if on {
		d.classes[class] = true
	} else {
		delete(d.classes, class)
	}
}

func (d *MemoryDocument) HasClass(class string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classes[class]
}

func (d *MemoryDocument) SetDisplay(selector string, hidden bool) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	els := d.elements[selector]
	for _, el := range els {
		if hidden {
			if !el.hiddenByUs {
				el.savedPrev = el.display
				el.hiddenByUs = true
			}
			el.display = "none"
		} else if el.hiddenByUs {
			el.display = el.savedPrev
			el.hiddenByUs = false
		}
	}
	return len(els)
}

// Displays returns the inline display value of every element matching the
// selector, for assertions.
func (d *MemoryDocument) Displays(selector string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, el := range d.elements[selector] {
		out = append(out, el.display)
	}
	return out
}

func (d *MemoryDocument) SetInlineStyle(selector, property, value string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	els := d.elements[selector]
	for _, el := range els {
		el.inlineStyle[property] = value
	}
	return len(els)
}

// InlineStyle reads one inline declaration off the first element matching
// the selector.
func (d *MemoryDocument) InlineStyle(selector, property string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	els := d.elements[selector]
	if len(els) == 0 {
		return ""
	}
	return els[0].inlineStyle[property]
}

func (d *MemoryDocument) SetAttribute(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attributes[name] = value
}

func (d *MemoryDocument) Attribute(name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attributes[name]
}

// State is a serializable view of the live document, served for diagnostics
// and for restoring preview panels.
type State struct {
	Properties map[string]string `json:"properties"`
	Classes    []string          `json:"classes"`
	Attributes map[string]string `json:"attributes"`
	Fallbacks  map[string]string `json:"fallbacks,omitempty"`
}

// Snapshot copies the current document state.
func (d *MemoryDocument) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := State{
		Properties: make(map[string]string, len(d.properties)),
		Attributes: make(map[string]string, len(d.attributes)),
		Fallbacks:  make(map[string]string, len(d.fallbacks)),
	}
	for k, v := range d.properties {
		st.Properties[k] = v
	}
	for k, v := range d.attributes {
		st.Attributes[k] = v
	}
	for k, v := range d.fallbacks {
		st.Fallbacks[k] = v
	}
	for c := range d.classes {
		st.Classes = append(st.Classes, c)
	}
	sort.Strings(st.Classes)
	return st
}
