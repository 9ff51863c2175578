// Package calendar converts dates among the Gregorian, Solar Hijri and Lunar
// Hijri calendars using the Julian Day Number as the common pivot.
//
// Every function in this package is pure: no I/O, no shared mutable state, and
// bounded run time. Values may be used concurrently without synchronisation.
package calendar

import (
	"fmt"
	"strings"
)

// System identifies a calendar system.
type System int

const (
	// Gregorian is the proleptic Gregorian calendar.
	Gregorian System = iota + 1
	// SolarHijri is the Persian ("Shamsi") calendar.
	SolarHijri
	// LunarHijri is the tabular civil Islamic ("Qamari") calendar.
	LunarHijri
)

var systemNames = map[System]string{
	Gregorian:  "gregorian",
	SolarHijri: "solar_hijri",
	LunarHijri: "lunar_hijri",
}

var systemAliases = map[string]System{
	"gregorian":   Gregorian,
	"miladi":      Gregorian,
	"solar_hijri": SolarHijri,
	"shamsi":      SolarHijri,
	"persian":     SolarHijri,
	"lunar_hijri": LunarHijri,
	"qamari":      LunarHijri,
	"hijri":       LunarHijri,
}

// String returns the canonical lower-case name of the system.
func (s System) String() string {
	if name, ok := systemNames[s]; ok {
		return name
	}
	return fmt.Sprintf("system(%d)", int(s))
}

// Valid reports whether s is one of the supported systems.
func (s System) Valid() bool {
	_, ok := systemNames[s]
	return ok
}

// ParseSystem resolves a calendar name or alias, case-insensitively.
func ParseSystem(name string) (System, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "_")
	if sys, ok := systemAliases[key]; ok {
		return sys, nil
	}
	return 0, fmt.Errorf("calendar: unknown system %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s System) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("calendar: unknown system %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *System) UnmarshalText(text []byte) error {
	sys, err := ParseSystem(string(text))
	if err != nil {
		return err
	}
	*s = sys
	return nil
}
