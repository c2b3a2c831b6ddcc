// Package normalize converts loosely typed intake values into the display
// strings written into RTA form fields. Every function is total: malformed
// input degrades to a zero value instead of an error.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/autorta/rta-filler/internal/pdf/form"
)

// DateLayout is the layout of every date written into a form
const DateLayout = "01/02/2006"

// dateLayouts are tried in order; the first successful parse wins. A value such as
// 03/04/2020 therefore reads as day/month.
var dateLayouts = []string{
	"2006-1-2",
	"2/1/2006",
	"1/2/2006",
}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

var amountPrinter = message.NewPrinter(language.English)

// ParseAmount extracts a number from a currency-like value. Both "1,234.50"
// and "1234,50" read as 1234.5; nil and unparseable input yield 0.
func ParseAmount(v any) float64 {
	if f, ok := numberValue(v); ok {
		return finite(f)
	}
	switch n := v.(type) {
	case json.Number:
		return parseAmountString(n.String())
	case string:
		return parseAmountString(n)
	case fmt.Stringer:
		return parseAmountString(n.String())
	default:
		return 0
	}
}

// IsNumber reports whether v is a Go numeric value or a JSON number
func IsNumber(v any) bool {
	if _, ok := v.(json.Number); ok {
		return true
	}
	_, ok := numberValue(v)
	return ok
}

// numberValue widens every Go numeric kind to float64
func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uintptr:
		return float64(n), true
	default:
		return 0, false
	}
}

func parseAmountString(s string) float64 {
	s = strings.NewReplacer("R$", "", "$", "", " ", "", "\u00a0", "").Replace(s)

	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	s = nonNumeric.ReplaceAllString(s, "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// FormatAmount renders an amount with thousands separators and two decimals
func FormatAmount(f float64) string {
	return amountPrinter.Sprintf("%.2f", f)
}

// FormatDate renders v as MM/DD/YYYY. Strings are parsed as YYYY-MM-DD,
// DD/MM/YYYY or MM/DD/YYYY, in that order. Anything else yields "".
func FormatDate(v any) string {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return ""
		}
		return d.Format(DateLayout)
	case *time.Time:
		if d == nil || d.IsZero() {
			return ""
		}
		return d.Format(DateLayout)
	case string:
		return formatDateString(d)
	default:
		return ""
	}
}

func formatDateString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}
	return ""
}

// CheckboxState selects a checkbox iff the two values are exactly equal
func CheckboxState(selected, candidate string) form.Checkbox {
	return form.Checkbox(selected == candidate)
}

// Display coerces an intake value into its display string; nil yields "".
func Display(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(s)
	}
}

// Address is a street address split into its components
type Address struct {
	Street string `json:"street"`
	Apt    string `json:"apt,omitempty"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zipcode"`
}

// SplitAddress decomposes free text of the form "street[, apt], city, state, zip".
// A two-letter component before the last one is read as the state; ok is false
// when the text has fewer than three components.
func SplitAddress(s string) (Address, bool) {
	parts := splitTrim(s, ",")
	switch len(parts) {
	case 3:
		city, state := splitCityState(parts[1])
		return Address{Street: parts[0], City: city, State: state, Zip: parts[2]}, true
	case 4:
		if isStateCode(parts[2]) {
			return Address{Street: parts[0], City: parts[1], State: parts[2], Zip: parts[3]}, true
		}
		city, state := splitCityState(parts[2])
		return Address{Street: parts[0], Apt: parts[1], City: city, State: state, Zip: parts[3]}, true
	case 5:
		return Address{Street: parts[0], Apt: parts[1], City: parts[2], State: parts[3], Zip: parts[4]}, true
	default:
		return Address{}, false
	}
}

// splitCityState separates a trailing state code from "City ST".
func splitCityState(s string) (string, string) {
	i := strings.LastIndex(s, " ")
	if i > 0 && isStateCode(s[i+1:]) {
		return strings.TrimSpace(s[:i]), s[i+1:]
	}
	return s, ""
}

func isStateCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// SplitDocument splits "number - state" into its parts
func SplitDocument(s string) (number, state string, ok bool) {
	parts := strings.Split(s, " - ")
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

func splitTrim(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// USDate converts YYYY-MM-DD or DD/MM/YYYY into MM/DD/YYYY; other input is returned unchanged.
func USDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}
	return s
}
