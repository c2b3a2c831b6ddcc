// Package pdftest builds small interactive PDF documents in memory so that the
// form writer, the registry and the HTTP layer can be tested without binary fixtures.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Field types understood by Build
const (
	TypeText     = "Tx"
	TypeCheckbox = "Btn"
	TypeChoice   = "Ch"
)

// Field describes one merged field/widget annotation of the generated document.
type Field struct {
	Name     string
	Type     string // TypeText, TypeCheckbox or TypeChoice
	Value    string // default value of a text field
	Checked  bool   // default state of a checkbox
	OnState  string // appearance name of the checked state, "On" when empty
	ReadOnly bool
	Page     int // 1-based page number, page 1 when zero
	// Kid places the widget under a separate parent field dictionary carrying /T and /FT.
	Kid bool
}

// Build returns the bytes of a PDF document with one page per distinct Field.Page,
// an AcroForm listing every field and no NeedAppearances flag.
func Build(fields ...Field) []byte {
	pages := 1
	for _, f := range fields {
		if f.Page > pages {
			pages = f.Page
		}
	}

	b := &builder{}
	// 1 catalog, 2 page tree, 3 acroform, 4.. pages, then fields
	catalog := b.reserve()
	tree := b.reserve()
	acro := b.reserve()
	pageObjs := make([]int, pages)
	for i := range pageObjs {
		pageObjs[i] = b.reserve()
	}

	annots := make([][]string, pages)
	var fieldRefs []string

	for i, f := range fields {
		page := f.Page
		if page < 1 {
			page = 1
		}
		pageRef := ref(pageObjs[page-1])
		rect := fmt.Sprintf("[50 %d 250 %d]", 700-i*20, 715-i*20)

		var typeEntries strings.Builder
		typeEntries.WriteString("/FT /" + f.Type)
		if f.ReadOnly {
			typeEntries.WriteString(" /Ff 1")
		}

		var valueEntries, widgetEntries string
		switch f.Type {
		case TypeCheckbox:
			on := f.OnState
			if on == "" {
				on = "On"
			}
			state := "Off"
			if f.Checked {
				state = on
			}
			onAP := b.add(stream("q Q"))
			offAP := b.add(stream("q Q"))
			valueEntries = "/V /" + state
			widgetEntries = fmt.Sprintf("/AS /%s /AP << /N << /%s %s /Off %s >> >>", state, on, ref(onAP), ref(offAP))
		default:
			if f.Value != "" {
				valueEntries = "/V " + literal(f.Value)
			}
		}

		if f.Kid {
			parent := b.reserve()
			widget := b.add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /Rect %s /P %s /F 4 /Parent %s %s >>",
				rect, pageRef, ref(parent), widgetEntries))
			b.set(parent, fmt.Sprintf("<< /T %s %s %s /Kids [%s] >>",
				literal(f.Name), typeEntries.String(), valueEntries, ref(widget)))
			fieldRefs = append(fieldRefs, ref(parent))
			annots[page-1] = append(annots[page-1], ref(widget))
			continue
		}

		widget := b.add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /Rect %s /P %s /F 4 /T %s %s %s %s >>",
			rect, pageRef, literal(f.Name), typeEntries.String(), valueEntries, widgetEntries))
		fieldRefs = append(fieldRefs, ref(widget))
		annots[page-1] = append(annots[page-1], ref(widget))
	}

	kids := make([]string, pages)
	for i, obj := range pageObjs {
		kids[i] = ref(obj)
		b.set(obj, fmt.Sprintf("<< /Type /Page /Parent %s /MediaBox [0 0 612 792] /Resources << >> /Annots [%s] >>",
			ref(tree), strings.Join(annots[i], " ")))
	}

	b.set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %s /AcroForm %s >>", ref(tree), ref(acro)))
	b.set(tree, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	b.set(acro, fmt.Sprintf("<< /Fields [%s] /DA (/Helv 0 Tf 0 g) >>", strings.Join(fieldRefs, " ")))

	return b.bytes(catalog)
}

type builder struct {
	objects []string
}

func (b *builder) reserve() int {
	b.objects = append(b.objects, "")
	return len(b.objects)
}

func (b *builder) set(num int, body string) {
	b.objects[num-1] = body
}

func (b *builder) add(body string) int {
	num := b.reserve()
	b.set(num, body)
	return num
}

func (b *builder) bytes(root int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")

	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(b.objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %s >>\nstartxref\n%d\n%%%%EOF\n", len(b.objects)+1, ref(root), xref)

	return buf.Bytes()
}

func ref(num int) string {
	return fmt.Sprintf("%d 0 R", num)
}

func stream(content string) string {
	return fmt.Sprintf("<< /Type /XObject /Subtype /Form /BBox [0 0 10 10] /Length %d >>\nstream\n%s\nendstream", len(content), content)
}

// literal encodes s as a PDF literal string.
func literal(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return "(" + r.Replace(s) + ")"
}
