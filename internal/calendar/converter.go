package calendar

import "fmt"

// Converter maps dates of one calendar system to and from Julian Day Numbers.
type Converter interface {
	// System reports the calendar system handled by the converter.
	System() System
	// DaysInMonth returns the length of the given month, or 0 when month is
	// outside 1..12.
	DaysInMonth(year, month int) int
	// IsLeapYear reports whether year has an intercalary day.
	IsLeapYear(year int) bool
	// ToJDN validates d and returns its Julian Day Number.
	ToJDN(d Date) (JDN, error)
	// FromJDN returns the date falling on j. It never fails.
	FromJDN(j JDN) Date
}

var converters = map[System]Converter{
	Gregorian:  gregorianConverter{},
	SolarHijri: solarConverter{},
	LunarHijri: lunarConverter{},
}

// ConverterFor returns the converter registered for system.
func ConverterFor(system System) (Converter, error) {
	conv, ok := converters[system]
	if !ok {
		return nil, fmt.Errorf("calendar: no converter for %s", system)
	}
	return conv, nil
}
