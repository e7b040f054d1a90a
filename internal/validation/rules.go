package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Length ceilings. Exceeding one yields the field's "too many characters" code.
const (
	MaxReferenceLength        = 20
	MaxNationalCodeLength     = 50
	MaxDescriptionLength      = 100
	MaxNameLength             = 250
	MaxAddressLength          = 250
	MaxEmailLength            = 250
	MaxPopsDetailsLength      = 250
	MaxExitLocationLength     = 250
	MaxTransportDetailsLength = 200
)

// MaxLaboratoryKilograms caps the quantity of a laboratory sample.
var MaxLaboratoryKilograms = decimal.NewFromInt(25)

var (
	referenceRe     = regexp.MustCompile(`^[a-zA-Z0-9/\-]+$`)
	nationalCodeRe  = regexp.MustCompile(`^[a-zA-Z0-9 \-]+$`)
	quantityRe      = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	concentrationRe = regexp.MustCompile(`^\d+(\.\d+)?$`)
	ewcCodeRe       = regexp.MustCompile(`^\d{6}\*?$`)
	hpCodeRe        = regexp.MustCompile(`^(?i)HP\s?\d{1,2}$`)
	dateRe          = regexp.MustCompile(`^(\d{1,2})([/-])(\d{1,2})([/-])(\d{4})$`)
	ukPostcodeRe    = regexp.MustCompile(`^(?i)([A-Z]{1,2}\d[A-Z\d]?|ASCN|STHL|TDCU|BBND|[BFS]IQQ|PCRN|TKCA) ?\d[A-Z]{2}$`)
	phoneRe         = regexp.MustCompile(`^\+?\(?\d[\d\s\-().]{5,18}\d$`)
	emailRe         = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)
)

// Failure is one broken rule for one cell.
type Failure struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// checker accumulates the failures of one row. Rules never stop at the first
// failure.
type checker struct {
	row      int
	failures []Failure
}

func (c *checker) fail(column string, code int, format string, args ...interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	c.failures = append(c.failures, Failure{Row: c.row, Column: column, Code: code, Message: msg})
}

// required fails when v is blank and reports whether v is present.
func (c *checker) required(column, v string, code int, format string, args ...interface{}) bool {
	if v == "" {
		c.fail(column, code, format, args...)
		return false
	}
	return true
}

// maxLen fails when v has more than n characters.
func (c *checker) maxLen(column, v string, n, code int, format string, args ...interface{}) bool {
	if utf8.RuneCountInString(v) > n {
		c.fail(column, code, format, args...)
		return false
	}
	return true
}

func clean(v string) string { return strings.TrimSpace(v) }

// splitList splits a semicolon separated cell, dropping blank entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseYesNo returns the boolean and whether v was a recognised answer.
func parseYesNo(v string) (bool, bool) {
	switch {
	case strings.EqualFold(v, "Yes"):
		return true, true
	case strings.EqualFold(v, "No"):
		return false, true
	default:
		return false, false
	}
}

// parseEstimate returns true for Estimate and whether v was recognised.
func parseEstimate(v string) (bool, bool) {
	switch {
	case strings.EqualFold(v, "Estimate"), strings.EqualFold(v, "Estimated"):
		return true, true
	case strings.EqualFold(v, "Actual"):
		return false, true
	default:
		return false, false
	}
}

// parseQuantity accepts a positive number with at most two decimal places.
func parseQuantity(v string) (decimal.Decimal, bool) {
	if !quantityRe.MatchString(v) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(v)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

func parseConcentration(v string) (decimal.Decimal, bool) {
	if !concentrationRe.MatchString(v) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(v)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// parseDate accepts DD/MM/YYYY or DD-MM-YYYY with a single separator style.
func parseDate(v string) (time.Time, bool) {
	m := dateRe.FindStringSubmatch(v)
	if m == nil || m[2] != m[4] {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[3])
	year, _ := strconv.Atoi(m[5])
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

// normalizeEWC removes spaces so "01 01 01*" and "010101*" compare equal.
func normalizeEWC(v string) string {
	return strings.ReplaceAll(v, " ", "")
}

// normalizeCode upper-cases a code and drops spaces, so "hp 3" matches "HP3".
func normalizeCode(v string) string {
	return strings.ToUpper(strings.ReplaceAll(v, " ", ""))
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
