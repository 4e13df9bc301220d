package theme

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Special handler names. The engine registers a closure for each; the
// mapper only carries the reference.
const (
	HandlerColorScheme = "color-scheme"
	HandlerBarLogo     = "bar-logo"
)

// mappingTable is the single source of truth from option identifiers to
// their effects. Legacy field names are kept as explicit alias rows with
// Canonical pointing at the current id; both resolve to the same variable.
var mappingTable = []OptionMapping{
	{OptionID: "admin_bar_background", VariableName: "--woow-surface-bar"},
	{OptionID: "admin_bar_text_color", VariableName: "--woow-surface-bar-text"},
	{OptionID: "admin_bar_hover_color", VariableName: "--woow-surface-bar-hover"},
	{OptionID: "admin_bar_height", VariableName: "--woow-space-bar-height"},
	{OptionID: "admin_bar_border_radius", VariableName: "--woow-radius-bar"},
	{OptionID: "admin_bar_shadow", VariableName: "--woow-shadow-bar"},
	{OptionID: "admin_bar_floating", VariableName: "--woow-mode-floating-bar", BodyClass: "woow-bar-floating"},
	{OptionID: "admin_bar_floating_margin", VariableName: "--woow-space-bar-margin"},
	{OptionID: "admin_bar_glassmorphism", BodyClass: "woow-bar-glass"},
	{OptionID: "admin_bar_glass_blur", VariableName: "--woow-effect-blur"},

	{OptionID: "menu_background", VariableName: "--woow-surface-menu"},
	{OptionID: "menu_text_color", VariableName: "--woow-surface-menu-text"},
	{OptionID: "menu_hover_color", VariableName: "--woow-surface-menu-hover"},
	{OptionID: "submenu_background", VariableName: "--woow-surface-submenu"},
	{OptionID: "menu_width", VariableName: "--woow-space-menu-width"},
	{OptionID: "menu_border_radius", VariableName: "--woow-radius-menu"},
	{OptionID: "menu_shadow", VariableName: "--woow-shadow-menu"},
	{OptionID: "menu_compact_mode", VariableName: "--woow-mode-compact", BodyClass: "woow-compact"},

	{OptionID: "accent_color", VariableName: "--woow-accent-primary"},
	{OptionID: "secondary_accent_color", VariableName: "--woow-accent-secondary"},
	{OptionID: "link_color", VariableName: "--woow-text-link"},
	{OptionID: "page_background", VariableName: "--woow-bg-page"},
	{OptionID: "font_size", VariableName: "--woow-font-size-base"},
	{OptionID: "font_family", VariableName: "--woow-font-family"},
	{OptionID: "button_border_radius", VariableName: "--woow-radius-button"},
	{OptionID: "item_padding", VariableName: "--woow-space-item-padding"},
	{OptionID: "transition_speed", VariableName: "--woow-transition-fast"},
	{OptionID: "ui_transition", VariableName: "--woow-effect-transition"},

	{OptionID: "hide_wp_logo", VisibilitySelector: "#wp-admin-bar-wp-logo"},
	{OptionID: "hide_help_tab", VisibilitySelector: "#contextual-help-link-wrap"},
	{OptionID: "hide_screen_options", VisibilitySelector: "#screen-options-link-wrap"},
	{OptionID: "hide_update_notices", VisibilitySelector: ".update-nag"},

	{OptionID: "color_scheme", SpecialHandler: HandlerColorScheme},
	{OptionID: "admin_bar_logo_color", SpecialHandler: HandlerBarLogo},

	// Legacy aliases from the old settings form. Static 1:1 rows, no fuzzy
	// matching.
	{OptionID: "wpadminbar_background", VariableName: "--woow-surface-bar", Canonical: "admin_bar_background"},
	{OptionID: "admin_menu_bg", VariableName: "--woow-surface-menu", Canonical: "menu_background"},
	{OptionID: "adminmenu_width", VariableName: "--woow-space-menu-width", Canonical: "menu_width"},
}

// SimilarityThreshold is the minimum score for a near-match suggestion.
const SimilarityThreshold = 0.6

// Mapper resolves option identifiers to their mapped effects. Read-only
// after construction.
type Mapper struct {
	registry  *Registry
	byOption  map[string]*OptionMapping
	optionIDs []string
}

// NewMapper builds the mapper and validates the mapping table against the
// registry: every row names at least one effect and every referenced
// variable exists.
func NewMapper(registry *Registry) (*Mapper, error) {
	m := &Mapper{
		registry: registry,
		byOption: make(map[string]*OptionMapping, len(mappingTable)),
	}

	for i := range mappingTable {
		row := &mappingTable[i]
		if row.VariableName == "" && row.BodyClass == "" && row.VisibilitySelector == "" && row.SpecialHandler == "" {
			return nil, fmt.Errorf("option %s maps to no effect", row.OptionID)
		}
		if row.VariableName != "" {
			if _, ok := registry.Get(row.VariableName); !ok {
				return nil, fmt.Errorf("option %s references unknown variable %s", row.OptionID, row.VariableName)
			}
		}
		if _, dup := m.byOption[row.OptionID]; dup {
			return nil, fmt.Errorf("duplicate option id %s", row.OptionID)
		}
		m.byOption[row.OptionID] = row
		m.optionIDs = append(m.optionIDs, row.OptionID)
	}
	sort.Strings(m.optionIDs)

	return m, nil
}

// Resolve returns the mapping for an option id. An unknown id is not a
// silent no-op: it logs a warning with near-match suggestions so typos are
// quick to diagnose.
func (m *Mapper) Resolve(optionID string) (*OptionMapping, bool) {
	row, ok := m.byOption[optionID]
	if !ok {
		if near := m.Suggestions(optionID); len(near) > 0 {
			log.Printf("[mapper] unknown option %q, did you mean: %s", optionID, strings.Join(near, ", "))
		} else {
			log.Printf("[mapper] unknown option %q", optionID)
		}
		return nil, false
	}
	return row, true
}

// OptionIDs returns every known option id in sorted order.
func (m *Mapper) OptionIDs() []string {
	out := make([]string, len(m.optionIDs))
	copy(out, m.optionIDs)
	return out
}

// Suggestions returns known option ids whose similarity to the presented id
// is at or above SimilarityThreshold, best match first. Developer aid only,
// never a runtime fallback.
func (m *Mapper) Suggestions(optionID string) []string {
	type scored struct {
		id    string
		score float64
	}
	var matches []scored
	for _, id := range m.optionIDs {
		if s := similarity(optionID, id); s >= SimilarityThreshold {
			matches = append(matches, scored{id, s})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].id < matches[j].id
	})
	out := make([]string, 0, len(matches))
	for _, sc := range matches {
		out = append(out, sc.id)
	}
	return out
}

// similarity maps edit distance into [0,1], 1 meaning identical.
func similarity(a, b string) float64 {
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}
