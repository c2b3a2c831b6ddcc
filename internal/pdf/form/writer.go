package form

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"
	xunicode "golang.org/x/text/encoding/unicode"

	pdferrors "github.com/autorta/rta-filler/internal/pdf/errors"
)

// Template is a read-only PDF template resource
type Template interface {
	Name() string
	Open() io.ReadSeeker
}

// Writer fills interactive form fields of templates
type Writer struct {
	logger *zap.Logger
}

// NewWriter creates a new form writer
func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{logger: logger}
}

// Fill produces a new document from tmpl with every field named in values set.
// The template itself is never modified; each call parses its own copy.
// Field names absent from values keep their template defaults and names in
// values that match no field are ignored.
func (w *Writer) Fill(tmpl Template, values Values) (*bytes.Buffer, error) {
	ctx, err := readContext(tmpl.Open())
	if err != nil {
		return nil, pdferrors.TemplateCorrupt(tmpl.Name(), err)
	}

	applied := make(map[string]bool, len(values))

	err = walkWidgets(ctx, func(wd *widget) error {
		value, ok := values[wd.name]
		if !ok {
			return nil
		}
		if err := w.apply(ctx, wd, value); err != nil {
			return err
		}
		applied[wd.name] = true
		return nil
	})
	if err != nil {
		var pe *pdferrors.PDFError
		if errors.As(err, &pe) && pe.Type == pdferrors.ErrorTypeFillFailed {
			return nil, pe.WithTemplate(tmpl.Name())
		}
		return nil, pdferrors.TemplateCorrupt(tmpl.Name(), err)
	}

	if err := setNeedAppearances(ctx); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeFillFailed, "failed to update form dictionary", err).
			WithTemplate(tmpl.Name())
	}

	if ce := w.logger.Check(zap.DebugLevel, "form filled"); ce != nil {
		var unmatched []string
		for name := range values {
			if !applied[name] {
				unmatched = append(unmatched, name)
			}
		}
		ce.Write(
			zap.String("template", tmpl.Name()),
			zap.Int("applied", len(applied)),
			zap.Strings("unmatched", unmatched),
		)
	}

	buf := &bytes.Buffer{}
	if err := api.WriteContext(ctx, buf); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeFillFailed, "failed to serialize document", err).
			WithTemplate(tmpl.Name())
	}

	return buf, nil
}

// apply writes one value into one widget. Any panic raised by a malformed
// dictionary is reported as a FillFailed error for that field.
func (w *Writer) apply(ctx *model.Context, wd *widget, value Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = pdferrors.FillFailed(wd.name, fmt.Errorf("panic: %v", r))
		}
	}()

	// Only the read-only bit is cleared, other field flags are kept
	if ff := flags(ctx, wd.field); ff&flagReadOnly != 0 {
		wd.field.Update("Ff", types.Integer(ff&^flagReadOnly))
	}

	switch wd.ft {
	case "Btn":
		checkbox, ok := value.(Checkbox)
		if !ok {
			return pdferrors.FillFailed(wd.name,
				fmt.Errorf("button field cannot take text value %q", value.String()))
		}
		state := StateOff
		if checkbox {
			state = onState(ctx, wd.annot)
		}
		wd.field.Update("V", types.Name(state))
		wd.annot.Update("AS", types.Name(state))
	case "Tx":
		s, err := encodeText(value.String())
		if err != nil {
			return pdferrors.FillFailed(wd.name, err)
		}
		wd.field.Update("V", s)
	default:
		return pdferrors.FillFailed(wd.name, fmt.Errorf("unsupported field type %q", wd.ft))
	}

	w.logger.Debug("field set",
		zap.String("field", wd.name),
		zap.String("type", wd.ft),
		zap.Int("page", wd.page))

	return nil
}

// encodeText returns a PDF string object for s: an escaped literal for
// ASCII, otherwise a UTF-16BE hex string with byte order mark.
func encodeText(s string) (types.Object, error) {
	if isASCII(s) {
		escaped, err := types.Escape(s)
		if err != nil {
			return nil, err
		}
		return types.StringLiteral(*escaped), nil
	}

	enc := xunicode.UTF16(xunicode.BigEndian, xunicode.UseBOM).NewEncoder()
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode text: %w", err)
	}
	return types.HexLiteral(strings.ToUpper(hex.EncodeToString(b))), nil
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// setNeedAppearances asks viewers to regenerate field appearances from the new values.
func setNeedAppearances(ctx *model.Context) error {
	catalog, err := ctx.Catalog()
	if err != nil {
		return err
	}

	acroObj, found := catalog.Find("AcroForm")
	if !found {
		catalog.Insert("AcroForm", types.Dict{
			"Fields":          types.Array{},
			"NeedAppearances": types.Boolean(true),
		})
		return nil
	}

	acroForm, err := ctx.DereferenceDict(acroObj)
	if err != nil {
		return err
	}
	if acroForm == nil {
		catalog.Update("AcroForm", types.Dict{
			"Fields":          types.Array{},
			"NeedAppearances": types.Boolean(true),
		})
		return nil
	}

	acroForm.Update("NeedAppearances", types.Boolean(true))
	return nil
}
