package theme

import (
	"fmt"
	"sort"
	"strings"
)

func bound(v float64) *float64 { return &v }

// variableTable is the full catalog of themable custom properties. It is
// fixed at build time; the registry never mutates it.
var variableTable = []VariableDescriptor{
	{Name: "--woow-surface-bar", Category: CategorySurface, Type: TypeColor, Default: "#23282d", Fallback: "#23282d"},
	{Name: "--woow-surface-bar-text", Category: CategoryText, Type: TypeColor, Default: "#eeeeee", Fallback: "#eeeeee"},
	{Name: "--woow-surface-bar-hover", Category: CategorySurface, Type: TypeColor, Default: "#00b9eb", Fallback: "#00b9eb"},
	{Name: "--woow-surface-menu", Category: CategorySurface, Type: TypeColor, Default: "#23282d", Fallback: "#23282d"},
	{Name: "--woow-surface-menu-text", Category: CategoryText, Type: TypeColor, Default: "#eeeeee", Fallback: "#eeeeee"},
	{Name: "--woow-surface-menu-hover", Category: CategorySurface, Type: TypeColor, Default: "#191e23", Fallback: "#191e23"},
	{Name: "--woow-surface-submenu", Category: CategorySurface, Type: TypeColor, Default: "#32373c", Fallback: "#32373c"},
	{Name: "--woow-accent-primary", Category: CategoryAccent, Type: TypeColor, Default: "#0073aa", Fallback: "#0073aa"},
	{Name: "--woow-accent-secondary", Category: CategoryAccent, Type: TypeColor, Default: "#00a0d2", Fallback: "#00a0d2"},
	{Name: "--woow-text-link", Category: CategoryText, Type: TypeColor, Default: "#0073aa", Fallback: "#0073aa"},
	{Name: "--woow-bg-page", Category: CategoryBackground, Type: TypeColor, Default: "#f1f1f1", Fallback: "#f1f1f1"},

	{Name: "--woow-space-bar-height", Category: CategorySpacing, Type: TypeDimension, Unit: "px", Default: "32", Fallback: "32px", Min: bound(24), Max: bound(60)},
	{Name: "--woow-space-menu-width", Category: CategorySpacing, Type: TypeDimension, Unit: "px", Default: "160", Fallback: "160px", Min: bound(120), Max: bound(300)},
	{Name: "--woow-space-item-padding", Category: CategorySpacing, Type: TypeDimension, Unit: "px", Default: "8", Fallback: "8px", Min: bound(0), Max: bound(24)},
	{Name: "--woow-space-bar-margin", Category: CategorySpacing, Type: TypeDimension, Unit: "px", Default: "8", Fallback: "8px", Min: bound(0), Max: bound(32)},
	{Name: "--woow-radius-bar", Category: CategoryRadius, Type: TypeDimension, Unit: "px", Default: "0", Fallback: "0px", Min: bound(0), Max: bound(24)},
	{Name: "--woow-radius-menu", Category: CategoryRadius, Type: TypeDimension, Unit: "px", Default: "0", Fallback: "0px", Min: bound(0), Max: bound(24)},
	{Name: "--woow-radius-button", Category: CategoryRadius, Type: TypeDimension, Unit: "px", Default: "3", Fallback: "3px", Min: bound(0), Max: bound(20)},
	{Name: "--woow-font-size-base", Category: CategoryText, Type: TypeDimension, Unit: "px", Default: "13", Fallback: "13px", Min: bound(10), Max: bound(20)},
	{Name: "--woow-effect-blur", Category: CategoryEffects, Type: TypeDimension, Unit: "px", Default: "10", Fallback: "10px", Min: bound(0), Max: bound(40)},
	{Name: "--woow-transition-fast", Category: CategoryEffects, Type: TypeDimension, Unit: "ms", Default: "150", Fallback: "150ms", Min: bound(0), Max: bound(1000)},

	{Name: "--woow-font-family", Category: CategoryText, Type: TypeString, Default: "-apple-system, BlinkMacSystemFont, \"Segoe UI\", Roboto, sans-serif", Fallback: "sans-serif"},
	{Name: "--woow-shadow-bar", Category: CategoryEffects, Type: TypeShadow, Default: "0 1px 3px rgba(0,0,0,.25)", Fallback: "none"},
	{Name: "--woow-shadow-menu", Category: CategoryEffects, Type: TypeShadow, Default: "none", Fallback: "none"},
	{Name: "--woow-effect-transition", Category: CategoryEffects, Type: TypeTransition, Default: "all .2s ease-in-out", Fallback: "none"},

	{Name: "--woow-mode-compact", Category: CategoryEffects, Type: TypeBoolean, Default: "false", Fallback: "0"},
	{Name: "--woow-mode-floating-bar", Category: CategoryEffects, Type: TypeBoolean, Default: "false", Fallback: "0"},
}

// Registry is the read-only catalog of variable descriptors. Populated once
// at startup; no runtime mutation API is exposed.
type Registry struct {
	byName map[string]*VariableDescriptor
	names  []string
}

// NewRegistry builds the registry from the fixed variable table and checks
// its invariants: unique names, unit only on dimension variables, bounds
// only on dimension variables.
func NewRegistry() (*Registry, error) {
	r := &Registry{byName: make(map[string]*VariableDescriptor, len(variableTable))}

	for i := range variableTable {
		d := &variableTable[i]
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate variable %s", d.Name)
		}
		if d.Type != TypeDimension && d.Unit != "" {
			return nil, fmt.Errorf("variable %s: unit %q on non-dimension type %s", d.Name, d.Unit, d.Type)
		}
		if d.Type != TypeDimension && (d.Min != nil || d.Max != nil) {
			return nil, fmt.Errorf("variable %s: bounds on non-dimension type %s", d.Name, d.Type)
		}
		r.byName[d.Name] = d
		r.names = append(r.names, d.Name)
	}
	sort.Strings(r.names)

	return r, nil
}

// Get returns the descriptor for a variable name.
func (r *Registry) Get(name string) (*VariableDescriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Names returns all variable names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// GenerateBaseStyle produces a stylesheet defining every variable on the
// root scope at its default value. Applied once at startup so every property
// has a deterministic, computed-style-readable value before any user
// interaction. Output is stable across calls.
func (r *Registry) GenerateBaseStyle() string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, name := range r.names {
		d := r.byName[name]
		b.WriteString("  ")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(ToCSSValue(d.Default, d))
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
	return b.String()
}
