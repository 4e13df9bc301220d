// Package dom is the thin adapter between the application engine and the
// live document. The engine only talks to the Document interface, so the
// in-memory implementation below can stand in for a real browser document
// in tests and in the headless preview server.
package dom

// Document is the mutation surface the engine depends on.
type Document interface {
	// SetProperty writes a custom property on the root scope.
	SetProperty(name, value string)
	// PropertyValue reads the computed value of a custom property. Empty
	// when the property is unset or custom properties are unsupported.
	PropertyValue(name string) string
	// UpsertFallbackStyle installs or replaces the dedicated fallback style
	// rule for one variable. At most one fallback rule exists per variable.
	UpsertFallbackStyle(variable, cssText string)
	// ToggleClass adds or removes a class on the document body.
	ToggleClass(class string, on bool)
	// HasClass reports whether the body currently carries the class.
	HasClass(class string) bool
	// SetDisplay hides (display:none) or restores every element matching
	// the selector, returning how many elements were touched. Restoring
	// puts back whatever inline value existed before hiding.
	SetDisplay(selector string, hidden bool) int
	// SetInlineStyle writes one inline style declaration on every element
	// matching the selector.
	SetInlineStyle(selector, property, value string) int
	// SetAttribute writes an attribute on the root element.
	SetAttribute(name, value string)
	// Attribute reads a root element attribute.
	Attribute(name string) string
}
