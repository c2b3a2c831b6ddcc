package rta

// Form field names shared by every RTA template. Some names carry a stray
// space ("(B4 ) White") and must be kept byte for byte.
const (
	FieldSellerName    = "(L1) Seller name (Please print)"
	FieldSellerAddress = "(L2) (Seller) Address"
	FieldSellerCity    = "(L2) (Seller) City"
	FieldSellerState   = "(L2) (Seller) State"
	FieldSellerZip     = "(L2) (Seller) Zip Code"

	FieldGrossSalePrice         = "(I3) Gross Sale Price (Proof Required)"
	FieldPurchaseDate           = "(J1) Purchase Date"
	FieldInsuranceEffectiveDate = "(K3) Effective Date of Insurance"

	FieldOwnerName    = "(D2) (First Owner's) Name (Last, First, Middle)"
	FieldOwnerDOB     = "(D3) (Owner 1) Date of Birth (MM [Month]/DD [Day]/YYYY[Year])"
	FieldOwnerLicense = "(D4) (Owner 1) License Number/ ID (Identification) Number / SSN (Social Security Number)"
	FieldOwnerAddress = "(D5) (Owner 1) Residential Address"
	FieldOwnerCity    = "(D5) (Owner 1) City"
	FieldOwnerState   = "(D5) (Owner 1) State"
	FieldOwnerZip     = "(D5) (Owner 1) Zip Code"

	FieldGaragingAddress = "(G1) (Garaging) Address"
	FieldGaragingCity    = "(G1) (Garaging Address) City"
	FieldGaragingState   = "(G1) (Garaging Address) State"
	FieldGaragingZip     = "(G1) (Garaging Address) Zip Code"

	FieldVIN        = "(B1) Vehicle Identification Number (VIN)"
	FieldBodyStyle  = "(B2) Body Style"
	FieldYear       = "(B5) Vehicle Year"
	FieldMake       = "(B5) (Vehicle) Make"
	FieldModel      = "(B5) (Vehicle) Model"
	FieldCylinders  = "(B7) Number of cylinders"
	FieldPassengers = "(B7) Number of passengers"
	FieldDoors      = "(B7) Number of doors"
	FieldOdometer   = "(B9) Odometer (Miles)"

	FieldPreviousTitleNumber  = "(C3) Previous title number"
	FieldPreviousTitleState   = "(C3) Previous title state"
	FieldPreviousTitleCountry = "(C3) Previous title country"
)

// Color is one of the vehicle colors printed as checkboxes on the form
type Color struct {
	Name  string
	Field string
}

// Colors lists the color checkboxes in form order
var Colors = []Color{
	{"Black", "(B4) Black"},
	{"White", "(B4 ) White"},
	{"Brown", "(B4) Brown"},
	{"Blue", "(B4) Blue"},
	{"Yellow", "(B4) Yellow"},
	{"Gray", "(B4) Gray"},
	{"Purple", "(B4 ) Purple"},
	{"Green", "(B4) Green"},
	{"Orange", "(B4) Orange"},
	{"Red", "(B4) Red"},
	{"Silver", "(B4) Silver"},
	{"Gold", "(B4) Gold"},
}

// ColorNames returns the color names in form order
func ColorNames() []string {
	names := make([]string, len(Colors))
	for i, c := range Colors {
		names[i] = c.Name
	}
	return names
}

// ColorFields returns the color checkbox field names in form order
func ColorFields() []string {
	fields := make([]string, len(Colors))
	for i, c := range Colors {
		fields[i] = c.Field
	}
	return fields
}
