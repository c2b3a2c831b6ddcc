package descriptions

import "sort"

// Tool descriptions with practical examples and workflows

const (
	RTAFillDescription = `Fill the RTA (Registration/Title Application) form of an insurance company and save the PDF.

**When to use:** A client's vehicle purchase is complete and the registration form must be prepared for the insurer.

**Input:** ` + "`record`" + ` is a JSON object. Keys are optional and values may be strings or numbers:
• insurance_company: allstate, progressive, geico or liberty (anything else uses the allstate form)
• owner_name, owner_dob (YYYY-MM-DD), owner_license, owner_street, owner_city, owner_state, owner_zipcode
• vin, body_style, color, year, make, model, cylinders, passengers, doors, odometer
• seller_name, seller_street, seller_city, seller_state, seller_zipcode, gross_sale_price, purchase_date
• insurance_effective_date, vehicle_financing_status, previous_title_number/state/country

**Examples:**
• "Fill the geico RTA for Jane Doe's 2021 Honda Civic, VIN 1HGBH41JXMN109186, color Blue"
• "Prepare the progressive form from this intake JSON"

**Common workflows:**
1. rta_validate → fix reported errors → rta_fill
2. rta_template_fields → check a field was written → rta_fill

**Best practices:** Dates are written as MM/DD/YYYY. The garaging address always copies the owner address. Exactly one color checkbox is checked.`

	RTAValidateDescription = `Check an intake record without filling a form.

**When to use:** Before rta_fill, to list missing required fields and malformed values.

**Checks:** required owner and vehicle fields, 17-character VIN, year between 1900 and 2030, YYYY-MM-DD dates and the fixed color list. Numeric fields left empty are reported as warnings.

**Examples:**
• "Validate this intake before generating the RTA"
• "Which fields are missing from the liberty record?"`

	RTATemplateFieldsDescription = `List the interactive fields of an insurance company's RTA template.

**When to use:** Inspecting a template after an insurer updates its form, or checking the exact field names written by rta_fill.

**Output:** page, name, type, current value, read-only flag and checkbox states of every field.

**Examples:**
• "Show the fields of the allstate RTA template"
• "Is the garaging address read-only in the geico form?"`

	RTAServerInfoDescription = `Get server information, supported insurance companies, available tools and usage guidance.

**When to use:** Discovering what this server can do and where filled forms are saved.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"rta_fill":            RTAFillDescription,
	"rta_validate":        RTAValidateDescription,
	"rta_template_fields": RTATemplateFieldsDescription,
	"rta_server_info":     RTAServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the sorted names of all tools
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
