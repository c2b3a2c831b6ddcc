package rta

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	pdferrors "github.com/autorta/rta-filler/internal/pdf/errors"
	"github.com/autorta/rta-filler/internal/pdf/form"
	"github.com/autorta/rta-filler/internal/pdf/pdftest"
	"github.com/autorta/rta-filler/internal/templates"
)

var textFields = []string{
	FieldSellerName, FieldSellerAddress, FieldSellerCity, FieldSellerState, FieldSellerZip,
	FieldGrossSalePrice, FieldPurchaseDate, FieldInsuranceEffectiveDate,
	FieldOwnerName, FieldOwnerDOB, FieldOwnerLicense, FieldOwnerAddress, FieldOwnerCity, FieldOwnerState, FieldOwnerZip,
	FieldGaragingAddress, FieldGaragingCity, FieldGaragingState, FieldGaragingZip,
	FieldVIN, FieldBodyStyle, FieldYear, FieldMake, FieldModel, FieldCylinders, FieldPassengers, FieldDoors, FieldOdometer,
	FieldPreviousTitleNumber, FieldPreviousTitleState, FieldPreviousTitleCountry,
}

// rtaTemplate builds a two-page RTA form whose defaults identify the company.
func rtaTemplate(company string) []byte {
	var fields []pdftest.Field
	for i, name := range textFields {
		f := pdftest.Field{Name: name, Type: pdftest.TypeText, Page: 1 + i%2}
		switch name {
		case FieldOwnerName:
			f.Value = "default " + company
		case FieldGaragingAddress:
			f.ReadOnly = true
		case FieldVIN:
			f.Kid = true
		}
		fields = append(fields, f)
	}
	for _, c := range Colors {
		fields = append(fields, pdftest.Field{Name: c.Field, Type: pdftest.TypeCheckbox, Checked: c.Name == "Black"})
	}
	return pdftest.Build(fields...)
}

type memSource map[string][]byte

func (m memSource) Open(_ context.Context, name string) ([]byte, error) {
	data, ok := m[name]
	if !ok {
		return nil, pdferrors.ResourceNotFound(name, nil)
	}
	return data, nil
}

func (m memSource) Describe(name string) string { return "mem://" + name }

func newTestService(t *testing.T, src memSource) *Service {
	t.Helper()
	registry := templates.NewRegistry(src, templates.WithLogger(zaptest.NewLogger(t)))
	return NewService(registry, zaptest.NewLogger(t))
}

func allCompanies() memSource {
	src := memSource{}
	for _, c := range templates.Companies() {
		src[c.FileName()] = rtaTemplate(string(c))
	}
	return src
}

func readBack(t *testing.T, doc *Document) map[string]form.Field {
	t.Helper()
	fields, err := form.ReadFields(bytes.NewReader(doc.Data))
	require.NoError(t, err)
	return form.FieldMap(fields)
}

func TestService_FillScenario(t *testing.T) {
	svc := newTestService(t, allCompanies())

	raw, err := ParseRaw([]byte(`{
		"insurance_company": "geico",
		"owner_name": "Doe, Jane",
		"owner_dob": "1990-05-15",
		"vin": "1HGBH41JXMN109186",
		"color": "Blue",
		"year": 2021,
		"make": "Honda",
		"model": "Civic",
		"owner_street": "1 Main St",
		"owner_city": "Boston",
		"owner_state": "MA",
		"owner_zipcode": "02101"
	}`))
	require.NoError(t, err)

	doc, err := svc.Fill(context.Background(), Decode(raw))
	require.NoError(t, err)

	assert.Equal(t, "geico", doc.Company)
	assert.Equal(t, "rta_geico_Doe,_Jane.pdf", doc.FileName)
	assert.Equal(t, MimeType, doc.MimeType)
	assert.NotEmpty(t, doc.ID)

	fields := readBack(t, doc)

	assert.Equal(t, "Doe, Jane", fields[FieldOwnerName].Value)
	assert.Equal(t, "05/15/1990", fields[FieldOwnerDOB].Value)
	assert.Equal(t, "1 Main St", fields[FieldGaragingAddress].Value)
	assert.Equal(t, "Boston", fields[FieldGaragingCity].Value)
	assert.Equal(t, "1HGBH41JXMN109186", fields[FieldVIN].Value)
	assert.Equal(t, "2021", fields[FieldYear].Value)
	assert.False(t, fields[FieldGaragingAddress].ReadOnly)

	for _, c := range Colors {
		assert.Equal(t, c.Name == "Blue", fields[c.Field].Checked, c.Field)
	}
}

func TestService_FillMalformedDate(t *testing.T) {
	svc := newTestService(t, allCompanies())

	doc, err := svc.Fill(context.Background(), Record{InsuranceCompany: "liberty", OwnerDOB: "not-a-date"})
	require.NoError(t, err)

	assert.Equal(t, "", readBack(t, doc)[FieldOwnerDOB].Value)
}

func TestService_FillFallback(t *testing.T) {
	svc := newTestService(t, allCompanies())

	doc, err := svc.Fill(context.Background(), Record{InsuranceCompany: "acme", OwnerName: "Jane Doe"})
	require.NoError(t, err)

	assert.Equal(t, "allstate", doc.Company)
	assert.Equal(t, "rta_allstate_Jane_Doe.pdf", doc.FileName)
}

func TestService_TemplateNotMutated(t *testing.T) {
	src := allCompanies()
	original := append([]byte(nil), src[templates.Progressive.FileName()]...)
	svc := newTestService(t, src)
	ctx := context.Background()

	_, err := svc.Fill(ctx, Record{InsuranceCompany: "progressive", OwnerName: "First, Owner", Color: "Red"})
	require.NoError(t, err)
	_, err = svc.Fill(ctx, Record{InsuranceCompany: "progressive", OwnerName: "Second, Owner", Color: "Gold"})
	require.NoError(t, err)

	assert.Equal(t, original, src[templates.Progressive.FileName()])

	// An unfilled copy of the shared template still carries its defaults
	registry := templates.NewRegistry(src)
	tmpl, err := registry.Resolve(ctx, "progressive")
	require.NoError(t, err)
	fields, err := form.ReadFields(tmpl.Open())
	require.NoError(t, err)
	byName := form.FieldMap(fields)
	assert.Equal(t, "default progressive", byName[FieldOwnerName].Value)
	assert.True(t, byName["(B4) Black"].Checked)
	assert.False(t, byName["(B4) Red"].Checked)
}

func TestService_FillErrors(t *testing.T) {
	t.Run("missing template", func(t *testing.T) {
		svc := newTestService(t, memSource{})

		_, err := svc.Fill(context.Background(), Record{InsuranceCompany: "geico"})
		assert.ErrorIs(t, err, pdferrors.ErrResourceNotFound)
	})

	t.Run("corrupt template", func(t *testing.T) {
		svc := newTestService(t, memSource{templates.Geico.FileName(): []byte("%PDF-1.7 garbage")})

		_, err := svc.Fill(context.Background(), Record{InsuranceCompany: "geico"})
		assert.ErrorIs(t, err, pdferrors.ErrTemplateCorrupt)
	})

	t.Run("field type mismatch", func(t *testing.T) {
		// The year field is a checkbox in this template
		data := pdftest.Build(pdftest.Field{Name: FieldYear, Type: pdftest.TypeCheckbox})
		svc := newTestService(t, memSource{templates.Geico.FileName(): data})

		_, err := svc.Fill(context.Background(), Record{InsuranceCompany: "geico", Year: "2021"})
		require.ErrorIs(t, err, pdferrors.ErrFillFailed)
		assert.Equal(t, FieldYear, pdferrors.FieldNameOf(err))
	})
}

func TestService_FillConcurrent(t *testing.T) {
	svc := newTestService(t, allCompanies())
	ctx := context.Background()

	type result struct {
		owner string
		doc   *Document
		err   error
	}
	owners := []string{"A, One", "B, Two", "C, Three", "D, Four", "E, Five", "F, Six"}
	results := make(chan result, len(owners))

	for i, owner := range owners {
		go func(i int, owner string) {
			company := templates.Companies()[i%4]
			doc, err := svc.Fill(ctx, Record{InsuranceCompany: string(company), OwnerName: owner})
			results <- result{owner: owner, doc: doc, err: err}
		}(i, owner)
	}

	for range owners {
		r := <-results
		require.NoError(t, r.err)
		assert.Equal(t, r.owner, readBack(t, r.doc)[FieldOwnerName].Value)
	}
}

func TestDocument_JSONOmitsData(t *testing.T) {
	out, err := json.Marshal(Document{ID: "x", Data: []byte("%PDF")})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "PDF")
}
