package rta

// FieldSpec describes one intake key for form builders
type FieldSpec struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Label       string   `json:"label"`
	Placeholder string   `json:"placeholder,omitempty"`
	Validation  string   `json:"validation,omitempty"`
	Options     []string `json:"options,omitempty"`
}

// Catalogue lists the intake keys accepted by a fill request
type Catalogue struct {
	Required []FieldSpec `json:"required"`
	Optional []FieldSpec `json:"optional"`
}

// Fields returns the intake field catalogue
func Fields() Catalogue {
	return Catalogue{
		Required: []FieldSpec{
			{Name: "owner_name", Type: "string", Label: "Owner name", Placeholder: "Last, First, Middle", Validation: "required"},
			{Name: "owner_dob", Type: "date", Label: "Date of birth", Placeholder: "YYYY-MM-DD", Validation: "required"},
			{Name: "owner_license", Type: "string", Label: "Driver license", Placeholder: "Driver license number", Validation: "required"},
			{Name: "owner_residential_address", Type: "string", Label: "Residential address", Placeholder: "Street, City, State, Zip", Validation: "required"},
			{Name: "vin", Type: "string", Label: "VIN", Placeholder: "17 characters", Validation: "required|length:17"},
			{Name: "body_style", Type: "string", Label: "Body style", Placeholder: "e.g. Sedan, SUV, Hatchback", Validation: "required"},
			{Name: "color", Type: "select", Label: "Color", Options: ColorNames(), Validation: "required"},
			{Name: "year", Type: "number", Label: "Year", Placeholder: "2024", Validation: "required|min:1900|max:2030"},
			{Name: "make", Type: "string", Label: "Make", Placeholder: "e.g. Toyota, Honda, Ford", Validation: "required"},
			{Name: "model", Type: "string", Label: "Model", Placeholder: "e.g. Corolla, Civic, Focus", Validation: "required"},
		},
		Optional: []FieldSpec{
			{Name: "owner_license_issued_state", Type: "string", Label: "License issuing state", Placeholder: "e.g. MA, CA, FL"},
			{Name: "gross_sale_price", Type: "string", Label: "Gross sale price", Placeholder: "e.g. $25,000"},
			{Name: "purchase_date", Type: "date", Label: "Purchase date", Placeholder: "YYYY-MM-DD"},
			{Name: "insurance_effective_date", Type: "date", Label: "Insurance effective date", Placeholder: "YYYY-MM-DD"},
			{Name: "insurance_policy_change_date", Type: "date", Label: "Policy change date", Placeholder: "YYYY-MM-DD"},
			{Name: "seller_name", Type: "string", Label: "Seller name", Placeholder: "Seller full name"},
			{Name: "seller_address", Type: "string", Label: "Seller address", Placeholder: "Seller full address"},
			{Name: "odometer", Type: "number", Label: "Odometer", Placeholder: "Miles on the odometer"},
			{Name: "cylinders", Type: "number", Label: "Cylinders", Placeholder: "Number of engine cylinders"},
			{Name: "passengers", Type: "number", Label: "Passengers", Placeholder: "Number of passengers"},
			{Name: "doors", Type: "number", Label: "Doors", Placeholder: "Number of doors"},
			{Name: "previous_title_number", Type: "string", Label: "Previous title number", Placeholder: "Previous title number"},
			{Name: "previous_title_state", Type: "string", Label: "Previous title state", Placeholder: "State that issued the previous title"},
			{Name: "previous_title_country", Type: "string", Label: "Previous title country", Placeholder: "Country that issued the previous title"},
		},
	}
}
