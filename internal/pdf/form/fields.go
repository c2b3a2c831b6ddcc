package form

import (
	"fmt"
	"io"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// FieldType is the interactive field type of a widget
type FieldType string

const (
	FieldTypeText       FieldType = "text"
	FieldTypeCheckbox   FieldType = "checkbox"
	FieldTypeRadio      FieldType = "radio"
	FieldTypePushButton FieldType = "button"
	FieldTypeChoice     FieldType = "select"
	FieldTypeSignature  FieldType = "signature"
	FieldTypeUnknown    FieldType = "unknown"
)

// Field flag bits (Ff)
const (
	flagReadOnly   = 1
	flagRequired   = 1 << 1
	flagRadio      = 1 << 15
	flagPushButton = 1 << 16
)

// maxParentDepth bounds Parent chain lookups on malformed field trees.
const maxParentDepth = 32

// Field describes one widget annotation of an interactive form
type Field struct {
	Page     int       `json:"page"`
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Value    string    `json:"value,omitempty"`
	Checked  bool      `json:"checked,omitempty"`
	ReadOnly bool      `json:"read_only,omitempty"`
	Required bool      `json:"required,omitempty"`
	States   []string  `json:"states,omitempty"`
}

// widget is a form-field annotation found on a page. field is the dictionary
// carrying /T (the annotation itself, or its parent for split field/widget trees).
type widget struct {
	page  int
	annot types.Dict
	field types.Dict
	name  string
	ft    string
}

// newConfiguration returns the pdfcpu configuration used for templates.
func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// readContext parses a document into a fresh, writable pdfcpu context.
func readContext(r io.ReadSeeker) (*model.Context, error) {
	ctx, err := api.ReadContext(r, newConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return ctx, nil
}

// walkWidgets calls fn for every named form-field annotation on every page.
func walkWidgets(ctx *model.Context, fn func(w *widget) error) error {
	for page := 1; page <= ctx.PageCount; page++ {
		pageDict, _, _, err := ctx.PageDict(page, false)
		if err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}
		if pageDict == nil {
			continue
		}

		annotsObj, found := pageDict.Find("Annots")
		if !found {
			continue
		}

		annots, err := ctx.DereferenceArray(annotsObj)
		if err != nil {
			return fmt.Errorf("page %d annotations: %w", page, err)
		}

		for _, obj := range annots {
			annot, err := ctx.DereferenceDict(obj)
			if err != nil || annot == nil {
				continue
			}

			w := resolveWidget(ctx, page, annot)
			if w == nil {
				continue
			}

			if err := fn(w); err != nil {
				return err
			}
		}
	}

	return nil
}

func resolveWidget(ctx *model.Context, page int, annot types.Dict) *widget {
	w := &widget{page: page, annot: annot, field: annot}

	name := stringEntry(ctx, annot, "T")
	if name == "" {
		parent := parentDict(ctx, annot)
		if parent == nil {
			return nil
		}
		name = stringEntry(ctx, parent, "T")
		if name == "" {
			return nil
		}
		w.field = parent
	}

	w.name = name
	w.ft = fieldTypeName(ctx, w.field)
	return w
}

// fieldTypeName returns the FT entry of d, inherited through Parent when absent.
func fieldTypeName(ctx *model.Context, d types.Dict) string {
	for depth := 0; d != nil && depth < maxParentDepth; depth++ {
		if ftObj, found := d.Find("FT"); found {
			name, err := ctx.DereferenceName(ftObj, model.V10, nil)
			if err != nil {
				return ""
			}
			return string(name)
		}
		d = parentDict(ctx, d)
	}
	return ""
}

func parentDict(ctx *model.Context, d types.Dict) types.Dict {
	parentObj, found := d.Find("Parent")
	if !found {
		return nil
	}
	parent, err := ctx.DereferenceDict(parentObj)
	if err != nil {
		return nil
	}
	return parent
}

func stringEntry(ctx *model.Context, d types.Dict, key string) string {
	obj, found := d.Find(key)
	if !found {
		return ""
	}
	s, err := ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil)
	if err != nil {
		return ""
	}
	return s
}

func flags(ctx *model.Context, d types.Dict) int {
	obj, found := d.Find("Ff")
	if !found {
		return 0
	}
	i, err := ctx.DereferenceInteger(obj)
	if err != nil || i == nil {
		return 0
	}
	return int(*i)
}

// fieldType maps FT and flag bits onto a FieldType
func fieldType(ft string, ff int) FieldType {
	switch ft {
	case "Tx":
		return FieldTypeText
	case "Btn":
		if ff&flagRadio != 0 {
			return FieldTypeRadio
		}
		if ff&flagPushButton != 0 {
			return FieldTypePushButton
		}
		return FieldTypeCheckbox
	case "Ch":
		return FieldTypeChoice
	case "Sig":
		return FieldTypeSignature
	default:
		return FieldTypeUnknown
	}
}

// appearanceStates returns the names of the normal appearance states of a widget, sorted.
func appearanceStates(ctx *model.Context, annot types.Dict) []string {
	apObj, found := annot.Find("AP")
	if !found {
		return nil
	}
	ap, err := ctx.DereferenceDict(apObj)
	if err != nil || ap == nil {
		return nil
	}
	nObj, found := ap.Find("N")
	if !found {
		return nil
	}
	// N is a stream for non-button widgets
	n, err := ctx.DereferenceDict(nObj)
	if err != nil || n == nil {
		return nil
	}

	states := make([]string, 0, len(n))
	for k := range n {
		states = append(states, k)
	}
	sort.Strings(states)
	return states
}

// onState returns the appearance name that selects a checkbox widget.
func onState(ctx *model.Context, annot types.Dict) string {
	for _, s := range appearanceStates(ctx, annot) {
		if s != StateOff {
			return s
		}
	}
	return StateOn
}

// ReadFields lists every interactive field annotation of a document
func ReadFields(r io.ReadSeeker) ([]Field, error) {
	ctx, err := readContext(r)
	if err != nil {
		return nil, err
	}
	return fieldsFromContext(ctx)
}

func fieldsFromContext(ctx *model.Context) ([]Field, error) {
	var fields []Field

	err := walkWidgets(ctx, func(w *widget) error {
		ff := flags(ctx, w.field)
		f := Field{
			Page:     w.page,
			Name:     w.name,
			Type:     fieldType(w.ft, ff),
			ReadOnly: ff&flagReadOnly != 0,
			Required: ff&flagRequired != 0,
		}

		switch w.ft {
		case "Btn":
			f.States = appearanceStates(ctx, w.annot)
			if vObj, found := w.field.Find("V"); found {
				if name, err := ctx.DereferenceName(vObj, model.V10, nil); err == nil {
					f.Value = string(name)
				}
			}
			if f.Value == "" {
				if as := w.annot.NameEntry("AS"); as != nil {
					f.Value = *as
				}
			}
			f.Checked = f.Value != "" && f.Value != StateOff
		default:
			f.Value = stringEntry(ctx, w.field, "V")
		}

		fields = append(fields, f)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return fields, nil
}

// FieldMap indexes fields by name; the first widget of a name wins.
func FieldMap(fields []Field) map[string]Field {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		if _, ok := m[f.Name]; !ok {
			m[f.Name] = f
		}
	}
	return m
}
