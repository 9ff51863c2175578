package calendar

import (
	"errors"
	"fmt"
)

var (
	// ErrParse matches every *ParseError.
	ErrParse = errors.New("calendar: malformed date")
	// ErrInvalidDate matches every *InvalidDateError.
	ErrInvalidDate = errors.New("calendar: invalid date")
)

// ParseError reports a date string that is not of the form YYYY-MM-DD.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("calendar: malformed date %q: %s", e.Input, e.Reason)
}

// Is lets errors.Is(err, ErrParse) succeed.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// InvalidDateError reports a well-formed date that does not exist in its
// calendar system.
type InvalidDateError struct {
	Date   Date
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("calendar: invalid %s date %04d-%02d-%02d: %s",
		e.Date.System, e.Date.Year, e.Date.Month, e.Date.Day, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidDate) succeed.
func (e *InvalidDateError) Is(target error) bool {
	return target == ErrInvalidDate
}
