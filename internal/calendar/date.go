package calendar

import "fmt"

// MaxYear is the largest year accepted in any system. Conversions whose
// result would exceed it fail instead of producing a five-digit year.
const MaxYear = 9999

// JDN is a Julian Day Number, the integer count of days since noon on
// 1 January 4713 BC (proleptic Julian).
type JDN int

// Date is a calendar date tagged with its system. The zero value is not a
// valid date.
type Date struct {
	System System `json:"system"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Day    int    `json:"day"`
}

// NewDate returns a validated Date.
func NewDate(system System, year, month, day int) (Date, error) {
	d := Date{System: system, Year: year, Month: month, Day: day}
	if err := d.Validate(); err != nil {
		return Date{}, err
	}
	return d, nil
}

// Validate checks the year, month and day-of-month invariants for the date's
// system.
func (d Date) Validate() error {
	conv, err := ConverterFor(d.System)
	if err != nil {
		return &InvalidDateError{Date: d, Reason: "unknown calendar system"}
	}
	return validate(conv, d)
}

// String formats the date as zero-padded YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// In converts d to the target system.
func (d Date) In(target System) (Date, error) {
	src, err := ConverterFor(d.System)
	if err != nil {
		return Date{}, &InvalidDateError{Date: d, Reason: "unknown calendar system"}
	}
	dst, err := ConverterFor(target)
	if err != nil {
		return Date{}, err
	}
	j, err := src.ToJDN(d)
	if err != nil {
		return Date{}, err
	}
	return dst.FromJDN(j), nil
}

func validate(conv Converter, d Date) error {
	if d.System != conv.System() {
		return &InvalidDateError{Date: d, Reason: fmt.Sprintf("expected %s date", conv.System())}
	}
	if d.Year < 1 {
		return &InvalidDateError{Date: d, Reason: "year must be positive"}
	}
	if d.Year > MaxYear {
		return &InvalidDateError{Date: d, Reason: fmt.Sprintf("year must not exceed %d", MaxYear)}
	}
	if d.Month < 1 || d.Month > 12 {
		return &InvalidDateError{Date: d, Reason: "month must be between 1 and 12"}
	}
	if last := conv.DaysInMonth(d.Year, d.Month); d.Day < 1 || d.Day > last {
		return &InvalidDateError{Date: d, Reason: fmt.Sprintf("day must be between 1 and %d", last)}
	}
	return nil
}

// floorDiv divides rounding towards negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - b*floorDiv(a, b)
}
