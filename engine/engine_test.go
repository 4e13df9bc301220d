package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adminstyler/dom"
	"adminstyler/history"
	"adminstyler/model"
	"adminstyler/perf"
	"adminstyler/theme"
)

func newTestEngine(t *testing.T, doc dom.Document) *Engine {
	t.Helper()

	registry, err := theme.NewRegistry()
	require.NoError(t, err)
	mapper, err := theme.NewMapper(registry)
	require.NoError(t, err)

	e := New(registry, mapper, doc, history.New(0), perf.NewMonitor(DefaultBudget), 0)
	e.RegisterHandler(theme.HandlerColorScheme, func(d dom.Document, value string) error {
		d.SetAttribute("data-theme", value)
		return nil
	})
	e.RegisterHandler(theme.HandlerBarLogo, func(d dom.Document, value string) error {
		d.SetInlineStyle("#wp-admin-bar-wp-logo .ab-icon", "color", value)
		return nil
	})
	e.Bootstrap()
	return e
}

func TestBootstrapSeedsDefaults(t *testing.T) {
	doc := dom.NewMemoryDocument()
	newTestEngine(t, doc)

	// Fresh load: the descriptor default is live before any interaction.
	assert.Equal(t, "#23282d", doc.PropertyValue("--woow-surface-bar"))
	assert.Equal(t, "32px", doc.PropertyValue("--woow-space-bar-height"))
	assert.Equal(t, "0", doc.PropertyValue("--woow-mode-compact"))
}

func TestApplyVariableRoundTrip(t *testing.T) {
	doc := dom.NewMemoryDocument()
	e := newTestEngine(t, doc)

	out := e.Apply("admin_bar_height", "40")
	require.True(t, out.Success)
	assert.Equal(t, 1, out.Effects)
	assert.Equal(t, "40px", doc.PropertyValue("--woow-space-bar-height"))
}

func TestApplyColorScenario(t *testing.T) {
	doc := dom.NewMemoryDocument()
	e := newTestEngine(t, doc)

	out := e.Apply("admin_bar_background", "#112233")
	require.True(t, out.Success)
	assert.Equal(t, "#112233", doc.PropertyValue("--woow-surface-bar"))
}

func TestApplyIdempotent(t *testing.T) {
	doc := dom.NewMemoryDocument()
	e := newTestEngine(t, doc)

	require.True(t, e.Apply("accent_color", "#112233").Success)
	before := doc.Snapshot()

	out := e.Apply("accent_color", "#112233")
	assert.True(t, out.Success)
	assert.Equal(t, before, doc.Snapshot())
}

func TestApplyUnmappedOption(t *testing.T) {
	doc := dom.NewMemoryDocument()
	e := newTestEngine(t, doc)
	before := doc.Snapshot()

	out := e.Apply("totally_unknown_option", "x")
	assert.False(t, out.Success)
	assert.ErrorIs(t, out.Err, ErrUnmappedOption)

	// Nothing mutated.
	assert.Equal(t, before, doc.Snapshot())
}

func TestApplyValidationFailure(t *testing.T) {
	doc := dom.NewMemoryDocument()
	e := newTestEngine(t, doc)

	out := e.Apply("admin_bar_background", "notacolor")
	assert.False(t, out.Success)
	assert.ErrorIs(t, out.Err, ErrValidationFailed)

	// Prior state untouched.
	assert.Equal(t, "#23282d", doc.PropertyValue("--woow-surface-bar"))
}

func TestApplyOutOfRange(t *testing.T) {
	doc := dom.NewMemoryDocument()
	e := newTestEngine(t, doc)

	out := e.Apply("admin_bar_height", "23")
	assert.False(t, out.Success)
	assert.ErrorIs(t, out.Err, ErrValidationFailed)
	assert.Equal(t, "32px", doc.PropertyValue("--woow-space-bar-height"))
}

func TestApplyBodyClass(t *testing.T) {
	doc := dom.NewMemoryDocument()
	e := newTestEngine(t, doc)

	out := e.Apply("admin_bar_floating", "true")
	require.True(t, out.Success)
	assert.Equal(t, 2, out.Effects)
	assert.True(t, doc.HasClass("woow-bar-floating"))
	assert.Equal(t, "1", doc.PropertyValue("--woow-mode-floating-bar"))

	out = e.Apply("admin_bar_floating", "false")
	require.True(t, out.Success)
	assert.False(t, doc.HasClass("woow-bar-floating"))
	assert.Equal(t, "0", doc.PropertyValue("--woow-mode-floating-bar"))
}

func TestApplyVisibility(t *testing.T) {
	doc := dom.NewMemoryDocument()
	doc.AddElement("#wp-admin-bar-wp-logo")
	e := newTestEngine(t, doc)

	require.True(t, e.Apply("hide_wp_logo", "true").Success)
	assert.Equal(t, []string{"none"}, doc.Displays("#wp-admin-bar-wp-logo"))

	// Unhiding leaves no residual inline style.
	require.True(t, e.Apply("hide_wp_logo", "false").Success)
	assert.Equal(t, []string{""}, doc.Displays("#wp-admin-bar-wp-logo"))
}

func TestApplySpecialHandler(t *testing.T) {
	doc := dom.NewMemoryDocument()
	doc.AddElement("#wp-admin-bar-wp-logo .ab-icon")
	e := newTestEngine(t, doc)

	require.True(t, e.Apply("color_scheme", "midnight").Success)
	assert.Equal(t, "midnight", doc.Attribute("data-theme"))

	require.True(t, e.Apply("admin_bar_logo_color", "#ff0000").Success)
	assert.Equal(t, "#ff0000", doc.InlineStyle("#wp-admin-bar-wp-logo .ab-icon", "color"))
}

func TestApplyHandlerErrors(t *testing.T) {
	doc := dom.NewMemoryDocument()
	e := newTestEngine(t, doc)

	e.RegisterHandler(theme.HandlerColorScheme, func(d dom.Document, value string) error {
		return errors.New("boom")
	})
	out := e.Apply("color_scheme", "dark")
	assert.False(t, out.Success)
	assert.ErrorIs(t, out.Err, ErrApplicationFailed)

	// Unregistered handler is an application failure too.
	e.RegisterHandler(theme.HandlerBarLogo, nil)
	out = e.Apply("admin_bar_logo_color", "#fff")
	assert.False(t, out.Success)
	assert.ErrorIs(t, out.Err, ErrApplicationFailed)
}

func TestFallbackWhenUnsupported(t *testing.T) {
	doc := dom.NewDegradedDocument()
	e := newTestEngine(t, doc)

	out := e.Apply("admin_bar_background", "#112233")
	require.True(t, out.Success)

	css, ok := doc.FallbackStyle("--woow-surface-bar")
	require.True(t, ok)
	assert.Contains(t, css, "#112233")
	assert.Contains(t, css, "!important")
	assert.Contains(t, css, "#wpadminbar")

	// A later change updates the same fallback element in place.
	require.True(t, e.Apply("admin_bar_background", "#445566").Success)
	css, _ = doc.FallbackStyle("--woow-surface-bar")
	assert.Contains(t, css, "#445566")
	assert.NotContains(t, css, "#112233")
}

func TestUndoRedoLaw(t *testing.T) {
	doc := dom.NewMemoryDocument()
	e := newTestEngine(t, doc)

	values := []string{"#112233", "#445566", "#556677"}
	for _, v := range values {
		require.True(t, e.Apply("admin_bar_background", v).Success)
	}
	assert.Equal(t, "#556677", doc.PropertyValue("--woow-surface-bar"))

	for range values {
		require.True(t, e.Undo())
	}
	assert.Equal(t, "#23282d", doc.PropertyValue("--woow-surface-bar"))
	assert.False(t, e.Undo())

	for range values {
		require.True(t, e.Redo())
	}
	assert.Equal(t, "#556677", doc.PropertyValue("--woow-surface-bar"))
	assert.False(t, e.Redo())
}

func TestApplyClearsRedo(t *testing.T) {
	doc := dom.NewMemoryDocument()
	e := newTestEngine(t, doc)

	require.True(t, e.Apply("accent_color", "#111111").Success)
	require.True(t, e.Undo())
	require.True(t, e.CanRedo())

	require.True(t, e.Apply("accent_color", "#222222").Success)
	assert.False(t, e.CanRedo())
}

func TestResetToInitial(t *testing.T) {
	doc := dom.NewMemoryDocument()
	e := newTestEngine(t, doc)

	require.True(t, e.Apply("admin_bar_background", "#112233").Success)
	require.True(t, e.Apply("menu_width", "220").Success)
	require.True(t, e.Apply("menu_compact_mode", "true").Success)

	restored := e.ResetToInitial()
	assert.Greater(t, restored, 0)

	assert.Equal(t, "#23282d", doc.PropertyValue("--woow-surface-bar"))
	assert.Equal(t, "160px", doc.PropertyValue("--woow-space-menu-width"))
	assert.False(t, doc.HasClass("woow-compact"))
	assert.False(t, e.CanUndo())
	assert.False(t, e.CanRedo())
}

func TestBatchUpdate(t *testing.T) {
	doc := dom.NewMemoryDocument()
	e := newTestEngine(t, doc)

	res := e.BatchUpdate([]model.OptionUpdate{
		{OptionID: "admin_bar_background", Value: "#112233"},
		{OptionID: "menu_width", Value: "220"},
		{OptionID: "unknown_option", Value: "x"},
		{OptionID: "admin_bar_height", Value: "999"},
	})

	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Outcomes, 4)

	// Items are independent: the failures did not stop the successes.
	assert.Equal(t, "#112233", doc.PropertyValue("--woow-surface-bar"))
	assert.Equal(t, "220px", doc.PropertyValue("--woow-space-menu-width"))
	assert.Equal(t, "32px", doc.PropertyValue("--woow-space-bar-height"))
}

func TestRestoreSnapshotSkipsHistoryAndHooks(t *testing.T) {
	doc := dom.NewMemoryDocument()
	e := newTestEngine(t, doc)

	var announced []model.ChangeRecord
	e.SetOnApplied(func(rec model.ChangeRecord) {
		announced = append(announced, rec)
	})

	res := e.RestoreSnapshot(map[string]string{
		"admin_bar_background": "#112233",
		"menu_width":           "220",
	})
	assert.Equal(t, 2, res.Applied)
	assert.Empty(t, announced)
	assert.False(t, e.CanUndo())
	assert.Equal(t, "#112233", doc.PropertyValue("--woow-surface-bar"))
}

func TestOnAppliedHook(t *testing.T) {
	doc := dom.NewMemoryDocument()
	e := newTestEngine(t, doc)

	var announced []model.ChangeRecord
	e.SetOnApplied(func(rec model.ChangeRecord) {
		announced = append(announced, rec)
	})

	require.True(t, e.Apply("accent_color", "#112233").Success)
	require.Len(t, announced, 1)
	assert.Equal(t, "accent_color", announced[0].OptionID)
	assert.Equal(t, "#112233", announced[0].Value)

	// Failed applies announce nothing.
	e.Apply("accent_color", "nope")
	assert.Len(t, announced, 1)

	// Remote applies bypass the hook and the history.
	e.ApplyRemote(model.BroadcastMessage{
		OptionID:  "menu_width",
		Value:     "240",
		ChangeID:  "remote-1",
		Timestamp: time.Now(),
	})
	assert.Len(t, announced, 1)
	assert.Equal(t, "240px", doc.PropertyValue("--woow-space-menu-width"))

	// Undo announces, so other sessions converge.
	require.True(t, e.Undo())
	assert.Len(t, announced, 2)
}

func TestCurrentValues(t *testing.T) {
	doc := dom.NewMemoryDocument()
	e := newTestEngine(t, doc)

	require.True(t, e.Apply("accent_color", "#112233").Success)

	v, ok := e.CurrentValue("accent_color")
	require.True(t, ok)
	assert.Equal(t, "#112233", v)

	all := e.CurrentValues()
	assert.Equal(t, "#112233", all["accent_color"])
	assert.Equal(t, "#23282d", all["admin_bar_background"])
}
