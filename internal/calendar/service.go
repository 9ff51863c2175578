package calendar

import (
	"fmt"
	"time"
)

// Observer is notified after every normalisation attempt. source is zero when
// the input could not be parsed far enough to detect a system.
type Observer interface {
	ObserveNormalization(source System, err error)
}

// Option configures a Service.
type Option func(*Service)

// WithRules replaces the detection table.
func WithRules(rules []Rule) Option {
	return func(s *Service) {
		s.detector = NewDetector(rules)
	}
}

// WithObserver installs an Observer.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observer = o
	}
}

// Service is the date normalisation entry point used by the rest of the
// application. It is immutable and safe for concurrent use.
type Service struct {
	detector Detector
	observer Observer
}

// NewService constructs a Service with the default detection rules.
func NewService(opts ...Option) *Service {
	s := &Service{detector: NewDetector(nil)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Detect classifies the calendar of an untagged YYYY-MM-DD string.
func (s *Service) Detect(raw string) (Detection, error) {
	date, _ := splitDateTime(raw)
	year, _, _, err := parseFields(raw, date)
	if err != nil {
		return Detection{}, err
	}
	return s.detector.Detect(year), nil
}

// NormalizeToLunarHijri detects the calendar of raw, converts it and returns
// the Lunar Hijri date as YYYY-MM-DD. A time of day following the date is
// appended unchanged.
func (s *Service) NormalizeToLunarHijri(raw string) (string, error) {
	det, err := s.Detect(raw)
	if err != nil {
		s.observe(0, err)
		return "", err
	}
	return s.NormalizeFrom(det.System, raw)
}

// NormalizeFrom converts raw, known to be a date in system, to Lunar Hijri.
func (s *Service) NormalizeFrom(system System, raw string) (string, error) {
	out, err := s.normalize(system, raw)
	s.observe(system, err)
	return out, err
}

func (s *Service) normalize(system System, raw string) (string, error) {
	date, clock := splitDateTime(raw)
	y, m, d, err := parseFields(raw, date)
	if err != nil {
		return "", err
	}
	src, err := NewDate(system, y, m, d)
	if err != nil {
		return "", err
	}
	lunar, err := s.Convert(src, LunarHijri)
	if err != nil {
		return "", err
	}
	if clock == "" {
		return lunar.String(), nil
	}
	return lunar.String() + " " + clock, nil
}

// SolarHijriToGregorian converts a Solar Hijri date to Gregorian.
func (s *Service) SolarHijriToGregorian(year, month, day int) (Date, error) {
	return s.Convert(Date{System: SolarHijri, Year: year, Month: month, Day: day}, Gregorian)
}

// GregorianToSolarHijri converts a Gregorian date and formats it YYYY-MM-DD.
func (s *Service) GregorianToSolarHijri(d Date) (string, error) {
	if d.System == 0 {
		d.System = Gregorian
	}
	if d.System != Gregorian {
		return "", &InvalidDateError{Date: d, Reason: "expected gregorian date"}
	}
	out, err := s.Convert(d, SolarHijri)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// Convert moves d into the target system through its Julian Day Number. The
// result must fall within years 1..MaxYear of the target system.
func (s *Service) Convert(d Date, target System) (Date, error) {
	out, err := d.In(target)
	if err != nil {
		return Date{}, err
	}
	if out.Year < 1 {
		return Date{}, &InvalidDateError{Date: out, Reason: fmt.Sprintf("%s precedes the %s epoch", d, target)}
	}
	if out.Year > MaxYear {
		return Date{}, &InvalidDateError{Date: d, Reason: fmt.Sprintf("%s falls after %s year %d", d, target, MaxYear)}
	}
	return out, nil
}

// LunarTimestamp formats t as "YYYY-MM-DD HH:MM:SS" with the date in Lunar
// Hijri. The clock reading is taken from t's own location.
func (s *Service) LunarTimestamp(t time.Time) string {
	lunar := converters[LunarHijri].FromJDN(gregorianToJDN(t.Year(), int(t.Month()), t.Day()))
	return lunar.String() + " " + t.Format(time.TimeOnly)
}

// GregorianDate adapts a time.Time to a Gregorian Date.
func GregorianDate(t time.Time) Date {
	return Date{System: Gregorian, Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Time returns the Gregorian rendition of d at midnight UTC.
func (d Date) Time() (time.Time, error) {
	g, err := d.In(Gregorian)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(g.Year, time.Month(g.Month), g.Day, 0, 0, 0, 0, time.UTC), nil
}

func (s *Service) observe(source System, err error) {
	if s.observer != nil {
		s.observer.ObserveNormalization(source, err)
	}
}
