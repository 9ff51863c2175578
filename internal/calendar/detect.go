package calendar

// Rule classifies a year into a calendar system. Rules are evaluated in order
// and the first match wins.
type Rule struct {
	Name   string
	System System
	Match  func(year int) bool
}

// DefaultRules is the detection table for untagged dates. Current-era years
// of the three calendars are numerically disjoint; anything below 1300 or in
// 1501..1700 falls through to Lunar Hijri.
var DefaultRules = []Rule{
	{Name: "gregorian_era", System: Gregorian, Match: func(year int) bool { return year > 1700 }},
	{Name: "solar_hijri_era", System: SolarHijri, Match: func(year int) bool { return year >= 1300 && year <= 1500 }},
}

// FallbackRule names the outcome when no rule matches.
const FallbackRule = "lunar_hijri_default"

// Detection is the outcome of classifying a year.
type Detection struct {
	Year   int    `json:"year"`
	System System `json:"system"`
	Rule   string `json:"rule"`
	// Ambiguous marks years in 1501..1700 where the heuristic has no basis for
	// its answer. Callers needing precision there must supply the system.
	Ambiguous bool `json:"ambiguous"`
}

// Detector guesses the calendar of an untagged year.
type Detector struct {
	rules []Rule
}

// NewDetector builds a detector over rules. A nil slice selects DefaultRules.
func NewDetector(rules []Rule) Detector {
	if rules == nil {
		rules = DefaultRules
	}
	return Detector{rules: rules}
}

// Detect classifies year.
func (d Detector) Detect(year int) Detection {
	det := Detection{Year: year, System: LunarHijri, Rule: FallbackRule, Ambiguous: year > 1500 && year <= 1700}
	for _, rule := range d.rules {
		if rule.Match(year) {
			det.System = rule.System
			det.Rule = rule.Name
			break
		}
	}
	return det
}
