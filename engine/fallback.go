package engine

import "fmt"

// fallbackTargets maps a variable to the hard-coded rule its fallback style
// element carries when custom properties cannot be used. The admin screens
// these selectors target predate custom-property support, so plain
// declarations with elevated priority reproduce the same visual result.
var fallbackTargets = map[string]string{
	"--woow-surface-bar":       "#wpadminbar{background-color:%s !important}",
	"--woow-surface-bar-text":  "#wpadminbar .ab-item{color:%s !important}",
	"--woow-surface-bar-hover": "#wpadminbar .ab-item:hover{color:%s !important}",
	"--woow-surface-menu":      "#adminmenu,#adminmenuback,#adminmenuwrap{background-color:%s !important}",
	"--woow-surface-menu-text": "#adminmenu a{color:%s !important}",
	"--woow-surface-submenu":   "#adminmenu .wp-submenu{background-color:%s !important}",
	"--woow-bg-page":           "#wpbody-content{background-color:%s !important}",
	"--woow-accent-primary":    "#adminmenu .current a.menu-top{background-color:%s !important}",
	"--woow-text-link":         "#wpbody-content a{color:%s !important}",
	"--woow-space-bar-height":  "#wpadminbar{height:%s !important}",
	"--woow-space-menu-width":  "#adminmenu,#adminmenuwrap{width:%s !important}",
	"--woow-font-size-base":    "#wpbody-content{font-size:%s !important}",
	"--woow-font-family":       "#wpbody-content{font-family:%s !important}",
	"--woow-shadow-bar":        "#wpadminbar{box-shadow:%s !important}",
	"--woow-shadow-menu":       "#adminmenuwrap{box-shadow:%s !important}",
}

// fallbackRule renders the fallback style text for a variable. Variables
// without a dedicated target re-declare the property on the root scope with
// elevated priority, which also covers the overridden-by-specificity case.
func fallbackRule(variable, value string) string {
	if tmpl, ok := fallbackTargets[variable]; ok {
		return fmt.Sprintf(tmpl, value)
	}
	return fmt.Sprintf(":root{%s:%s !important}", variable, value)
}
