package rta

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autorta/rta-filler/internal/pdf/form"
)

func TestBuildMapping_Colors(t *testing.T) {
	for _, c := range Colors {
		t.Run(c.Name, func(t *testing.T) {
			v := BuildMapping(Record{Color: c.Name})

			assert.Equal(t, 1, v.Selected(ColorFields()...))
			assert.Equal(t, form.Selected, v[c.Field])
		})
	}

	for _, color := range []string{"", "blue", "Teal", " Blue"} {
		t.Run("unlisted "+color, func(t *testing.T) {
			v := BuildMapping(Record{Color: color})
			assert.Equal(t, 0, v.Selected(ColorFields()...))
			for _, f := range ColorFields() {
				assert.Equal(t, form.Unselected, v[f])
			}
		})
	}
}

func TestBuildMapping_ColorFieldNames(t *testing.T) {
	assert.Len(t, Colors, 12)
	assert.Equal(t, "(B4 ) White", Colors[1].Field)
	assert.Equal(t, "(B4 ) Purple", Colors[6].Field)
	assert.Equal(t, []string{
		"Black", "White", "Brown", "Blue", "Yellow", "Gray",
		"Purple", "Green", "Orange", "Red", "Silver", "Gold",
	}, ColorNames())
}

func TestBuildMapping(t *testing.T) {
	rec := Record{
		OwnerName:              "Doe, Jane",
		OwnerDOB:               "1990-05-15",
		OwnerLicense:           "S12345678",
		OwnerStreet:            "1 Main St",
		OwnerCity:              "Boston",
		OwnerState:             "MA",
		OwnerZipcode:           "02101",
		VIN:                    "1HGBH41JXMN109186",
		BodyStyle:              "Sedan",
		Year:                   "2021",
		Make:                   "Honda",
		Model:                  "Civic",
		Cylinders:              "4",
		Passengers:             "5",
		Doors:                  "4",
		Odometer:               "42000",
		SellerName:             "Bob Seller",
		SellerStreet:           "9 Elm St",
		SellerCity:             "Quincy",
		SellerState:            "MA",
		SellerZipcode:          "02169",
		GrossSalePrice:         "$25,000",
		PurchaseDate:           "15/01/2024",
		InsuranceEffectiveDate: "01/20/2024",
		PreviousTitleNumber:    "T-998",
		PreviousTitleState:     "NH",
		PreviousTitleCountry:   "USA",
	}

	v := BuildMapping(rec)

	tests := []struct {
		field    string
		expected form.Value
	}{
		{FieldOwnerName, form.Text("Doe, Jane")},
		{FieldOwnerDOB, form.Text("05/15/1990")},
		{FieldOwnerLicense, form.Text("S12345678")},
		{FieldOwnerAddress, form.Text("1 Main St")},
		{FieldOwnerCity, form.Text("Boston")},
		{FieldOwnerState, form.Text("MA")},
		{FieldOwnerZip, form.Text("02101")},
		{FieldGaragingAddress, form.Text("1 Main St")},
		{FieldGaragingCity, form.Text("Boston")},
		{FieldGaragingState, form.Text("MA")},
		{FieldGaragingZip, form.Text("02101")},
		{FieldVIN, form.Text("1HGBH41JXMN109186")},
		{FieldBodyStyle, form.Text("Sedan")},
		{FieldYear, form.Text("2021")},
		{FieldMake, form.Text("Honda")},
		{FieldModel, form.Text("Civic")},
		{FieldCylinders, form.Text("4")},
		{FieldPassengers, form.Text("5")},
		{FieldDoors, form.Text("4")},
		{FieldOdometer, form.Text("42000")},
		{FieldSellerName, form.Text("Bob Seller")},
		{FieldSellerAddress, form.Text("9 Elm St")},
		{FieldSellerCity, form.Text("Quincy")},
		{FieldSellerState, form.Text("MA")},
		{FieldSellerZip, form.Text("02169")},
		{FieldGrossSalePrice, form.Text("$25,000")},
		{FieldPurchaseDate, form.Text("01/15/2024")},
		{FieldInsuranceEffectiveDate, form.Text("01/20/2024")},
		{FieldPreviousTitleNumber, form.Text("T-998")},
		{FieldPreviousTitleState, form.Text("NH")},
		{FieldPreviousTitleCountry, form.Text("USA")},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.expected, v[tt.field])
		})
	}

	assert.Len(t, v, len(tests)+len(Colors))
}

func TestBuildMapping_EmptyRecord(t *testing.T) {
	v := BuildMapping(Record{})

	for name, value := range v {
		switch value := value.(type) {
		case form.Text:
			assert.Empty(t, string(value), name)
		case form.Checkbox:
			assert.Equal(t, form.Unselected, value, name)
		default:
			t.Fatalf("unexpected value type %T for %s", value, name)
		}
	}
}

func TestBuildMapping_MalformedDate(t *testing.T) {
	v := BuildMapping(Record{OwnerDOB: "not-a-date", PurchaseDate: "2024-13-45"})

	assert.Equal(t, form.Text(""), v[FieldOwnerDOB])
	assert.Equal(t, form.Text(""), v[FieldPurchaseDate])
}

func TestBuildMapping_Deterministic(t *testing.T) {
	rec := Record{OwnerName: "Doe, Jane", Color: "Gold", GrossSalePrice: "1234,5"}
	assert.Equal(t, BuildMapping(rec), BuildMapping(rec))
}

func TestBuildMapping_GrossSalePriceKeptAsTyped(t *testing.T) {
	for _, price := range []string{"$25,000", "25,000", "1234,5", "TBD", "R$ 99,90", ""} {
		t.Run(price, func(t *testing.T) {
			v := BuildMapping(Record{GrossSalePrice: price})
			assert.Equal(t, form.Text(price), v[FieldGrossSalePrice])
		})
	}
}
