package rta

import (
	"github.com/autorta/rta-filler/internal/normalize"
	"github.com/autorta/rta-filler/internal/pdf/form"
)

// BuildMapping resolves every form field of rec. The garaging address always
// mirrors the owner's residential address and exactly one color checkbox is
// selected when rec.Color names a form color, none otherwise.
func BuildMapping(rec Record) form.Values {
	v := form.Values{
		FieldSellerName:    form.Text(rec.SellerName),
		FieldSellerAddress: form.Text(rec.SellerStreet),
		FieldSellerCity:    form.Text(rec.SellerCity),
		FieldSellerState:   form.Text(rec.SellerState),
		FieldSellerZip:     form.Text(rec.SellerZipcode),

		FieldGrossSalePrice:         form.Text(rec.GrossSalePrice),
		FieldPurchaseDate:           form.Text(normalize.FormatDate(rec.PurchaseDate)),
		FieldInsuranceEffectiveDate: form.Text(normalize.FormatDate(rec.InsuranceEffectiveDate)),

		FieldOwnerName:    form.Text(rec.OwnerName),
		FieldOwnerDOB:     form.Text(normalize.FormatDate(rec.OwnerDOB)),
		FieldOwnerLicense: form.Text(rec.OwnerLicense),
		FieldOwnerAddress: form.Text(rec.OwnerStreet),
		FieldOwnerCity:    form.Text(rec.OwnerCity),
		FieldOwnerState:   form.Text(rec.OwnerState),
		FieldOwnerZip:     form.Text(rec.OwnerZipcode),

		FieldGaragingAddress: form.Text(rec.OwnerStreet),
		FieldGaragingCity:    form.Text(rec.OwnerCity),
		FieldGaragingState:   form.Text(rec.OwnerState),
		FieldGaragingZip:     form.Text(rec.OwnerZipcode),

		FieldVIN:        form.Text(rec.VIN),
		FieldBodyStyle:  form.Text(rec.BodyStyle),
		FieldYear:       form.Text(rec.Year),
		FieldMake:       form.Text(rec.Make),
		FieldModel:      form.Text(rec.Model),
		FieldCylinders:  form.Text(rec.Cylinders),
		FieldPassengers: form.Text(rec.Passengers),
		FieldDoors:      form.Text(rec.Doors),
		FieldOdometer:   form.Text(rec.Odometer),

		FieldPreviousTitleNumber:  form.Text(rec.PreviousTitleNumber),
		FieldPreviousTitleState:   form.Text(rec.PreviousTitleState),
		FieldPreviousTitleCountry: form.Text(rec.PreviousTitleCountry),
	}

	for _, c := range Colors {
		v[c.Field] = normalize.CheckboxState(rec.Color, c.Name)
	}

	return v
}
