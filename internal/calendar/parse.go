package calendar

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// foldDigits rewrites Persian and Arabic-Indic digits to ASCII.
var foldDigits = runes.Map(func(r rune) rune {
	switch {
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	}
	return r
})

// splitDateTime separates the date from an optional trailing time of day,
// which is returned verbatim.
func splitDateTime(raw string) (date, clock string) {
	folded, _, err := transform.String(foldDigits, strings.TrimSpace(raw))
	if err != nil {
		folded = strings.TrimSpace(raw)
	}
	date, clock, _ = strings.Cut(folded, " ")
	return date, strings.TrimSpace(clock)
}

// fieldWidths caps the digits of the year, month and day components.
var fieldWidths = [3]int{len(strconv.Itoa(MaxYear)), 2, 2}

// parseFields splits YYYY-MM-DD into its numeric components.
func parseFields(raw, date string) (year, month, day int, err error) {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return 0, 0, 0, &ParseError{Input: raw, Reason: "expected YYYY-MM-DD"}
	}
	var vals [3]int
	for i, part := range parts {
		if part == "" || strings.IndexFunc(part, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return 0, 0, 0, &ParseError{Input: raw, Reason: "non-numeric component " + strconv.Quote(part)}
		}
		if len(part) > fieldWidths[i] {
			return 0, 0, 0, &ParseError{Input: raw, Reason: fmt.Sprintf("component %q longer than %d digits", part, fieldWidths[i])}
		}
		n, convErr := strconv.Atoi(part)
		if convErr != nil {
			return 0, 0, 0, &ParseError{Input: raw, Reason: convErr.Error()}
		}
		vals[i] = n
	}
	return vals[0], vals[1], vals[2], nil
}

// Parse reads a YYYY-MM-DD string as a date in system.
func Parse(system System, raw string) (Date, error) {
	date, _ := splitDateTime(raw)
	y, m, d, err := parseFields(raw, date)
	if err != nil {
		return Date{}, err
	}
	return NewDate(system, y, m, d)
}
