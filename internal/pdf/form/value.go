package form

// Value is the resolved value of one form field: either Text or Checkbox.
type Value interface {
	String() string
	isValue()
}

// Text is the value of a text (/Tx) field.
type Text string

// Checkbox is the selection state of a button (/Btn) field.
type Checkbox bool

const (
	Selected   Checkbox = true
	Unselected Checkbox = false
)

// Values maps exact field names to resolved values. Built per fill, never shared.
type Values map[string]Value

func (t Text) String() string { return string(t) }

func (Text) isValue() {}

// String returns the appearance state name written for the checkbox.
func (c Checkbox) String() string {
	if c {
		return StateOn
	}
	return StateOff
}

func (Checkbox) isValue() {}

// Appearance state names
const (
	StateOn  = "On"
	StateOff = "Off"
)

// Selected returns the number of checkboxes in v that are selected among names.
func (v Values) Selected(names ...string) int {
	n := 0
	for _, name := range names {
		if c, ok := v[name].(Checkbox); ok && bool(c) {
			n++
		}
	}
	return n
}
