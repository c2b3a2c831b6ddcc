// Package rta turns intake records into filled RTA documents: decoding,
// validation, the field mapping and the fill pipeline.
package rta

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"

	"github.com/autorta/rta-filler/internal/normalize"
)

// Raw is an undecoded intake record as received at the boundary
type Raw map[string]any

// Record is a decoded intake record. Every field is optional; values are
// display strings with absent and null input decoded as "".
type Record struct {
	InsuranceCompany string `json:"insurance_company"`

	OwnerName               string `json:"owner_name"`
	OwnerDOB                string `json:"owner_dob"`
	OwnerLicense            string `json:"owner_license"`
	OwnerLicenseIssuedState string `json:"owner_license_issued_state"`
	OwnerStreet             string `json:"owner_street"`
	OwnerCity               string `json:"owner_city"`
	OwnerState              string `json:"owner_state"`
	OwnerZipcode            string `json:"owner_zipcode"`

	VIN        string `json:"vin"`
	BodyStyle  string `json:"body_style"`
	Color      string `json:"color"`
	Year       string `json:"year"`
	Make       string `json:"make"`
	Model      string `json:"model"`
	Cylinders  string `json:"cylinders"`
	Passengers string `json:"passengers"`
	Doors      string `json:"doors"`
	Odometer   string `json:"odometer"`

	SellerName    string `json:"seller_name"`
	SellerStreet  string `json:"seller_street"`
	SellerCity    string `json:"seller_city"`
	SellerState   string `json:"seller_state"`
	SellerZipcode string `json:"seller_zipcode"`

	GrossSalePrice            string `json:"gross_sale_price"`
	PurchaseDate              string `json:"purchase_date"`
	InsuranceEffectiveDate    string `json:"insurance_effective_date"`
	InsurancePolicyChangeDate string `json:"insurance_policy_change_date"`
	VehicleFinancingStatus    string `json:"vehicle_financing_status"`

	PreviousTitleNumber  string `json:"previous_title_number"`
	PreviousTitleState   string `json:"previous_title_state"`
	PreviousTitleCountry string `json:"previous_title_country"`
}

// FinancingPaidOff marks a vehicle without a lien; previous title data is then required
const FinancingPaidOff = "paid_off"

const keyGrossSalePrice = "gross_sale_price"

// Legacy free-text address keys
const (
	keyOwnerAddress  = "owner_residential_address"
	keySellerAddress = "seller_address"
)

// fields binds intake keys to record fields
func (r *Record) fields() map[string]*string {
	return map[string]*string{
		"insurance_company":            &r.InsuranceCompany,
		"owner_name":                   &r.OwnerName,
		"owner_dob":                    &r.OwnerDOB,
		"owner_license":                &r.OwnerLicense,
		"owner_license_issued_state":   &r.OwnerLicenseIssuedState,
		"owner_street":                 &r.OwnerStreet,
		"owner_city":                   &r.OwnerCity,
		"owner_state":                  &r.OwnerState,
		"owner_zipcode":                &r.OwnerZipcode,
		"vin":                          &r.VIN,
		"body_style":                   &r.BodyStyle,
		"color":                        &r.Color,
		"year":                         &r.Year,
		"make":                         &r.Make,
		"model":                        &r.Model,
		"cylinders":                    &r.Cylinders,
		"passengers":                   &r.Passengers,
		"doors":                        &r.Doors,
		"odometer":                     &r.Odometer,
		"seller_name":                  &r.SellerName,
		"seller_street":                &r.SellerStreet,
		"seller_city":                  &r.SellerCity,
		"seller_state":                 &r.SellerState,
		"seller_zipcode":               &r.SellerZipcode,
		keyGrossSalePrice:              &r.GrossSalePrice,
		"purchase_date":                &r.PurchaseDate,
		"insurance_effective_date":     &r.InsuranceEffectiveDate,
		"insurance_policy_change_date": &r.InsurancePolicyChangeDate,
		"vehicle_financing_status":     &r.VehicleFinancingStatus,
		"previous_title_number":        &r.PreviousTitleNumber,
		"previous_title_state":         &r.PreviousTitleState,
		"previous_title_country":       &r.PreviousTitleCountry,
	}
}

// Decode builds a Record from raw. Unknown keys are ignored and every value
// is coerced to its display string. Legacy free-text addresses are split
// into components when the component keys are absent.
func Decode(raw Raw) Record {
	var rec Record
	for key, dst := range rec.fields() {
		*dst = normalize.Display(raw[key])
	}

	// A sale price sent as a JSON number is written as an amount; text is kept as typed.
	if v, ok := raw[keyGrossSalePrice]; ok && normalize.IsNumber(v) {
		rec.GrossSalePrice = normalize.FormatAmount(normalize.ParseAmount(v))
	}

	if rec.OwnerStreet == "" && rec.OwnerCity == "" {
		if addr, ok := normalize.SplitAddress(normalize.Display(raw[keyOwnerAddress])); ok {
			rec.OwnerStreet = joinStreet(addr)
			rec.OwnerCity, rec.OwnerState, rec.OwnerZipcode = addr.City, addr.State, addr.Zip
		}
	}

	if rec.SellerStreet == "" && rec.SellerCity == "" {
		if addr, ok := normalize.SplitAddress(normalize.Display(raw[keySellerAddress])); ok {
			rec.SellerStreet = joinStreet(addr)
			rec.SellerCity, rec.SellerState, rec.SellerZipcode = addr.City, addr.State, addr.Zip
		}
	}

	return rec
}

// joinStreet keeps the apartment on the street line since the form has no apartment field.
func joinStreet(addr normalize.Address) string {
	if addr.Apt == "" {
		return addr.Street
	}
	return addr.Street + ", " + addr.Apt
}

// ExpandLegacyAddresses fills the owner/seller component keys of raw from the
// legacy free-text addresses when the components are absent. raw is modified in place.
func ExpandLegacyAddresses(raw Raw) {
	expand := func(legacy, street, city, state, zip string) {
		if present(raw, street) || present(raw, city) {
			return
		}
		addr, ok := normalize.SplitAddress(normalize.Display(raw[legacy]))
		if !ok {
			return
		}
		raw[street] = joinStreet(addr)
		raw[city] = addr.City
		if addr.State != "" {
			raw[state] = addr.State
		}
		raw[zip] = addr.Zip
	}

	expand(keyOwnerAddress, "owner_street", "owner_city", "owner_state", "owner_zipcode")
	expand(keySellerAddress, "seller_street", "seller_city", "seller_state", "seller_zipcode")
}

// present reports whether raw carries a non-empty value for key
func present(raw Raw, key string) bool {
	v, ok := raw[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// ReadRaw decodes a JSON object, preserving numbers as json.Number
func ReadRaw(r io.Reader) (Raw, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw Raw
	if err := dec.Decode(&raw); err != nil {
		return nil, eris.Wrap(err, "invalid JSON body")
	}
	if raw == nil {
		return nil, eris.New("request body must be a JSON object")
	}
	return raw, nil
}

// ParseRaw decodes a JSON object from data
func ParseRaw(data []byte) (Raw, error) {
	return ReadRaw(bytes.NewReader(data))
}

// FileName returns the suggested download name of a filled document. Whitespace,
// path separators and characters unsafe in file names become underscores.
func FileName(company, ownerName string) string {
	if strings.TrimSpace(ownerName) == "" {
		ownerName = "document"
	}
	return "rta_" + company + "_" + strings.Map(fileNameRune, ownerName) + ".pdf"
}

func fileNameRune(r rune) rune {
	if unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
		return '_'
	}
	return r
}
