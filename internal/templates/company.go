package templates

// Company identifies the insurance company whose RTA template is used
type Company string

const (
	Allstate    Company = "allstate"
	Progressive Company = "progressive"
	Geico       Company = "geico"
	Liberty     Company = "liberty"
)

// DefaultCompany is resolved for unknown or absent identifiers
const DefaultCompany = Allstate

var companies = []Company{Allstate, Progressive, Geico, Liberty}

// Companies returns every supported company in a stable order
func Companies() []Company {
	out := make([]Company, len(companies))
	copy(out, companies)
	return out
}

// ParseCompany reports whether s names a supported company. Matching is exact.
func ParseCompany(s string) (Company, bool) {
	for _, c := range companies {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// FileName returns the storage name of the company's template
func (c Company) FileName() string {
	return "rta_template_" + string(c) + ".pdf"
}

func (c Company) String() string {
	return string(c)
}
