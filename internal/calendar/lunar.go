package calendar

// LunarHijriEpoch is the Julian Day Number of 1 Muharram 1 AH in the civil
// tabular calendar.
const LunarHijriEpoch JDN = 1948440

const (
	lunarCycleYears = 30
	lunarCycleLeaps = 11
	// lunarCycleDays is the length of one 30-year cycle: 30*354 + 11.
	lunarCycleDays = 10631
)

type lunarConverter struct{}

func (lunarConverter) System() System { return LunarHijri }

// IsLeapYear implements the 30-year civil cycle with leap years at positions
// 2, 5, 7, 10, 13, 16, 18, 21, 24, 26 and 29.
func (lunarConverter) IsLeapYear(year int) bool {
	return floorMod(11*year+14, lunarCycleYears) < lunarCycleLeaps
}

func (c lunarConverter) DaysInMonth(year, month int) int {
	switch {
	case month < 1 || month > 12:
		return 0
	case month == 12 && c.IsLeapYear(year):
		return 30
	case month%2 == 1:
		return 30
	default:
		return 29
	}
}

func (c lunarConverter) ToJDN(d Date) (JDN, error) {
	if err := validate(c, d); err != nil {
		return 0, err
	}
	return lunarToJDN(d.Year, d.Month, d.Day), nil
}

func (lunarConverter) FromJDN(j JDN) Date {
	year := floorDiv(30*int(j-LunarHijriEpoch)+10646, lunarCycleDays)
	for lunarToJDN(year, 1, 1) > j {
		year--
	}
	for lunarToJDN(year+1, 1, 1) <= j {
		year++
	}
	doy := int(j - lunarToJDN(year, 1, 1))
	month := 12
	for month > 1 && lunarMonthOffset(month) > doy {
		month--
	}
	return Date{System: LunarHijri, Year: year, Month: month, Day: doy - lunarMonthOffset(month) + 1}
}

// lunarMonthOffset is the number of days preceding month in any year.
func lunarMonthOffset(month int) int {
	return (59*(month-1) + 1) / 2
}

func lunarToJDN(year, month, day int) JDN {
	days := 354*(year-1) + floorDiv(3+11*year, lunarCycleYears) + lunarMonthOffset(month) + day
	return LunarHijriEpoch - 1 + JDN(days)
}
