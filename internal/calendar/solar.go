package calendar

// SolarHijriEpoch is the Julian Day Number of 1 Farvardin 1 AP under the
// 33-year arithmetic cycle. It places 1 Farvardin 1400 on 21 March 2021.
const SolarHijriEpoch JDN = 1948320

const (
	solarCycleYears = 33
	solarCycleLeaps = 8
	// solarCycleDays is the length of one 33-year cycle: 33*365 + 8.
	solarCycleDays = 12053
)

// solarLeapResidues lists the positions (year mod 33) of leap years.
var solarLeapResidues = [solarCycleYears]bool{
	1: true, 5: true, 9: true, 13: true, 17: true, 22: true, 26: true, 30: true,
}

type solarConverter struct{}

func (solarConverter) System() System { return SolarHijri }

func (solarConverter) IsLeapYear(year int) bool {
	return solarLeapResidues[floorMod(year, solarCycleYears)]
}

func (c solarConverter) DaysInMonth(year, month int) int {
	switch {
	case month < 1 || month > 12:
		return 0
	case month <= 6:
		return 31
	case month <= 11:
		return 30
	case c.IsLeapYear(year):
		return 30
	default:
		return 29
	}
}

func (c solarConverter) ToJDN(d Date) (JDN, error) {
	if err := validate(c, d); err != nil {
		return 0, err
	}
	return solarToJDN(d.Year, d.Month, d.Day), nil
}

func (solarConverter) FromJDN(j JDN) Date {
	year := 1 + floorDiv(solarCycleYears*int(j-SolarHijriEpoch)+3, solarCycleDays)
	for solarToJDN(year, 1, 1) > j {
		year--
	}
	for solarToJDN(year+1, 1, 1) <= j {
		year++
	}
	doy := int(j - solarToJDN(year, 1, 1))
	var month, day int
	if doy < 186 {
		month, day = doy/31+1, doy%31+1
	} else {
		month, day = (doy-186)/30+7, (doy-186)%30+1
	}
	return Date{System: SolarHijri, Year: year, Month: month, Day: day}
}

// solarLeapsBefore counts leap years in [1, year). It agrees with
// solarLeapResidues for every year.
func solarLeapsBefore(year int) int {
	return floorDiv(solarCycleLeaps*year+21, solarCycleYears)
}

func solarMonthOffset(month int) int {
	if month <= 7 {
		return 31 * (month - 1)
	}
	return 30*(month-1) + 6
}

func solarToJDN(year, month, day int) JDN {
	days := 365*(year-1) + solarLeapsBefore(year) + solarMonthOffset(month) + day
	return SolarHijriEpoch - 1 + JDN(days)
}
