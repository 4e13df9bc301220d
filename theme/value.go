package theme

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Validation failure kinds. Callers match with errors.Is.
var (
	ErrInvalidColor  = errors.New("invalid color")
	ErrInvalidNumber = errors.New("invalid number")
	ErrOutOfRange    = errors.New("out of range")
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// namedColors covers the CSS keywords the admin screens actually use. A raw
// color that is neither strict hex nor parseable here fails validation.
var namedColors = map[string]string{
	"black":       "#000000",
	"white":       "#ffffff",
	"red":         "#ff0000",
	"green":       "#008000",
	"blue":        "#0000ff",
	"yellow":      "#ffff00",
	"orange":      "#ffa500",
	"purple":      "#800080",
	"gray":        "#808080",
	"grey":        "#808080",
	"silver":      "#c0c0c0",
	"teal":        "#008080",
	"navy":        "#000080",
	"maroon":      "#800000",
	"transparent": "transparent",
}

var rgbPattern = regexp.MustCompile(`^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*[0-9.]+\s*)?\)$`)

// Validate checks a raw value against a descriptor and returns the sanitized
// value. For dimension variables the unit is appended later, at application
// time, by ToCSSValue.
func Validate(raw string, d *VariableDescriptor) (string, error) {
	switch d.Type {
	case TypeColor:
		return validateColor(raw)
	case TypeDimension:
		return validateDimension(raw, d)
	case TypeBoolean:
		// Truthiness coercion never fails.
		return strconv.FormatBool(Truthy(raw)), nil
	default:
		// string/shadow/transition are free-form CSS fragments.
		return raw, nil
	}
}

func validateColor(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if hexColorPattern.MatchString(v) {
		return v, nil
	}
	if norm, ok := normalizeColor(v); ok {
		return norm, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidColor, raw)
}

// normalizeColor stands in for the browser-native sanitization pass: CSS
// keywords and rgb()/rgba() forms are read back as a normalized value.
func normalizeColor(v string) (string, bool) {
	lower := strings.ToLower(v)
	if hex, ok := namedColors[lower]; ok {
		return hex, true
	}
	m := rgbPattern.FindStringSubmatch(lower)
	if m == nil {
		return "", false
	}
	var rgb [3]int
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(m[i+1])
		if err != nil || n > 255 {
			return "", false
		}
		rgb[i] = n
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2]), true
}

func validateDimension(raw string, d *VariableDescriptor) (string, error) {
	v := strings.TrimSpace(raw)
	// Tolerate a raw value that already carries the descriptor's unit.
	if d.Unit != "" {
		v = strings.TrimSuffix(v, d.Unit)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	// Bounds are inclusive.
	if d.Min != nil && f < *d.Min {
		return "", fmt.Errorf("%w: %v < %v", ErrOutOfRange, f, *d.Min)
	}
	if d.Max != nil && f > *d.Max {
		return "", fmt.Errorf("%w: %v > %v", ErrOutOfRange, f, *d.Max)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

// Truthy coerces a raw option value the way a form checkbox serializes.
func Truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}

// ToCSSValue serializes a sanitized value into its CSS form: dimensions get
// the descriptor unit, booleans become "1"/"0" so they stay usable inside
// calc() and selector-guard patterns, everything else passes through.
func ToCSSValue(sanitized string, d *VariableDescriptor) string {
	switch d.Type {
	case TypeDimension:
		return sanitized + d.Unit
	case TypeBoolean:
		if Truthy(sanitized) {
			return "1"
		}
		return "0"
	}
	return sanitized
}
