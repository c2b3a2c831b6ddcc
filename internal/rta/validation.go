package rta

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"

	"github.com/autorta/rta-filler/internal/normalize"
	"github.com/autorta/rta-filler/internal/templates"
)

// requiredKeys are the keys a fill request must carry, in reporting order
var requiredKeys = []string{
	"insurance_company", "owner_name", "owner_dob", "owner_license",
	"owner_street", "owner_city", "owner_state", "owner_zipcode", "owner_license_issued_state",
	"vin", "body_style", "color", "year", "make", "model", "cylinders", "passengers", "doors", "odometer",
	"seller_name", "seller_street", "seller_city", "seller_state", "seller_zipcode",
	"gross_sale_price", "purchase_date", "insurance_effective_date", "insurance_policy_change_date",
	"vehicle_financing_status",
}

// previousTitleKeys are required when the vehicle is paid off
var previousTitleKeys = []string{"previous_title_number", "previous_title_state", "previous_title_country"}

// RequestError reports an intake record rejected before filling
type RequestError struct {
	Message       string   `json:"error"`
	MissingFields []string `json:"missing_fields,omitempty"`
	Details       []string `json:"details,omitempty"`
}

func (e *RequestError) Error() string {
	if len(e.MissingFields) > 0 {
		return e.Message + ": " + strings.Join(e.MissingFields, ", ")
	}
	if len(e.Details) > 0 {
		return e.Message + ": " + strings.Join(e.Details, "; ")
	}
	return e.Message
}

// Validator checks fill requests against the intake JSON schema
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the intake schema
func NewValidator() (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(intakeSchema()))
	if err != nil {
		return nil, eris.Wrap(err, "failed to compile intake schema")
	}
	return &Validator{schema: schema}, nil
}

func intakeSchema() map[string]any {
	nonEmpty := map[string]any{
		"anyOf": []any{
			map[string]any{"type": "string", "minLength": 1},
			map[string]any{"type": "number"},
		},
	}

	properties := map[string]any{}
	for _, key := range requiredKeys {
		properties[key] = nonEmpty
	}
	properties["insurance_company"] = map[string]any{
		"allOf": []any{nonEmpty, map[string]any{"enum": companyNames()}},
	}

	titleProperties := map[string]any{}
	for _, key := range previousTitleKeys {
		titleProperties[key] = nonEmpty
	}

	return map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"required":   toAny(requiredKeys),
		"properties": properties,
		"if": map[string]any{
			"properties": map[string]any{
				"vehicle_financing_status": map[string]any{"const": FinancingPaidOff},
			},
			"required": []any{"vehicle_financing_status"},
		},
		"then": map[string]any{
			"required":   toAny(previousTitleKeys),
			"properties": titleProperties,
		},
	}
}

func companyNames() []any {
	var names []any
	for _, c := range templates.Companies() {
		names = append(names, string(c))
	}
	return names
}

func toAny(keys []string) []any {
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}

// Check returns a *RequestError when raw cannot be filled, nil otherwise.
// Missing fields are reported in a fixed order; an unsupported insurance
// company is reported only when no field is missing.
func (v *Validator) Check(raw Raw) error {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(map[string]any(raw)))
	if err != nil {
		return eris.Wrap(err, "failed to validate request")
	}
	if result.Valid() {
		return nil
	}

	missing := map[string]bool{}
	invalidCompany := false
	var details []string

	for _, desc := range result.Errors() {
		switch desc.Type() {
		case "required":
			if p, ok := desc.Details()["property"].(string); ok {
				missing[p] = true
			}
		case "enum":
			if desc.Field() == "insurance_company" {
				invalidCompany = true
			}
		case "number_any_of", "invalid_type", "string_gte":
			missing[desc.Field()] = true
		case "condition_then", "condition_else", "number_all_of":
			// reported through the nested errors
		default:
			details = append(details, desc.String())
		}
	}

	if len(missing) > 0 {
		keys := append(append([]string{}, requiredKeys...), previousTitleKeys...)
		var fields []string
		for _, k := range keys {
			if missing[k] {
				fields = append(fields, k)
			}
		}
		return &RequestError{Message: "missing required fields", MissingFields: fields}
	}

	if invalidCompany {
		return &RequestError{
			Message: `insurance_company must be "allstate", "progressive", "geico" or "liberty"`,
		}
	}

	return &RequestError{Message: "invalid request", Details: details}
}

// Report is the non-failing validation summary of an intake record
type Report struct {
	Valid         bool     `json:"valid"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	TotalErrors   int      `json:"total_errors"`
	TotalWarnings int      `json:"total_warnings"`
}

var reportRequired = []string{
	"owner_name", "owner_dob", "owner_license", "owner_residential_address",
	"vin", "body_style", "color", "year", "make", "model",
}

var reportDates = []string{"owner_dob", "purchase_date", "insurance_effective_date", "insurance_policy_change_date"}

var reportRecommended = []string{"odometer", "cylinders", "passengers", "doors"}

// Validate inspects raw without filling and lists every problem found
func Validate(raw Raw) Report {
	errs := []string{}
	warnings := []string{}

	for _, key := range reportRequired {
		if key == keyOwnerAddress && hasOwnerAddress(raw) {
			continue
		}
		if !present(raw, key) {
			errs = append(errs, "required field: "+key)
		}
	}

	if present(raw, "vin") {
		if vin := displayOf(raw, "vin"); len(vin) != 17 {
			errs = append(errs, "VIN must be exactly 17 characters")
		}
	}

	if present(raw, "year") {
		year, err := strconv.Atoi(strings.TrimSpace(displayOf(raw, "year")))
		switch {
		case err != nil:
			errs = append(errs, "year must be a valid number")
		case year < 1900 || year > 2030:
			errs = append(errs, "year must be between 1900 and 2030")
		}
	}

	for _, key := range reportDates {
		if !present(raw, key) {
			continue
		}
		if _, err := time.Parse("2006-01-02", displayOf(raw, key)); err != nil {
			errs = append(errs, fmt.Sprintf("invalid date for %s, use YYYY-MM-DD", key))
		}
	}

	if _, ok := raw["color"]; ok && !isColor(displayOf(raw, "color")) {
		errs = append(errs, "invalid color, valid colors: "+strings.Join(ColorNames(), ", "))
	}

	for _, key := range reportRecommended {
		if !present(raw, key) {
			warnings = append(warnings, "optional but recommended field: "+key)
		}
	}

	return Report{
		Valid:         len(errs) == 0,
		Errors:        errs,
		Warnings:      warnings,
		TotalErrors:   len(errs),
		TotalWarnings: len(warnings),
	}
}

func hasOwnerAddress(raw Raw) bool {
	return present(raw, keyOwnerAddress) ||
		(present(raw, "owner_street") && present(raw, "owner_city") &&
			present(raw, "owner_state") && present(raw, "owner_zipcode"))
}

func displayOf(raw Raw, key string) string {
	return normalize.Display(raw[key])
}

func isColor(s string) bool {
	for _, c := range Colors {
		if c.Name == s {
			return true
		}
	}
	return false
}
