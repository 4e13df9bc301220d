package theme

// ValueType classifies how a variable's raw value is validated and serialized.
type ValueType string

const (
	TypeColor      ValueType = "color"
	TypeDimension  ValueType = "dimension"
	TypeBoolean    ValueType = "boolean"
	TypeString     ValueType = "string"
	TypeShadow     ValueType = "shadow"
	TypeTransition ValueType = "transition"
)

// Category groups variables for presentation. Informational only.
type Category string

const (
	CategorySurface    Category = "surface"
	CategoryAccent     Category = "accent"
	CategoryText       Category = "text"
	CategoryBackground Category = "background"
	CategorySpacing    Category = "spacing"
	CategoryRadius     Category = "radius"
	CategoryEffects    Category = "effects"
)

// VariableDescriptor describes one themable CSS custom property.
type VariableDescriptor struct {
	Name     string
	Category Category
	Type     ValueType
	Unit     string // applied to dimension values only
	Default  string
	Fallback string // used when custom properties are unavailable
	Min      *float64
	Max      *float64
}

// OptionMapping connects an external option identifier (a form field name)
// to its effects. At least one of VariableName, BodyClass,
// VisibilitySelector or SpecialHandler is set; all present ones are applied.
type OptionMapping struct {
	OptionID           string
	VariableName       string
	BodyClass          string
	VisibilitySelector string
	SpecialHandler     string
	Canonical          string // set on legacy alias rows; names the current option id
}
