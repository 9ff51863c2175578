package calendar

// gregorianEpochShift moves a day count anchored at 0000-03-01 onto the
// Julian Day scale.
const gregorianEpochShift = 1721120

const daysPer400Years = 146097

var gregorianMonthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

type gregorianConverter struct{}

func (gregorianConverter) System() System { return Gregorian }

func (gregorianConverter) IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func (c gregorianConverter) DaysInMonth(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && c.IsLeapYear(year) {
		return 29
	}
	return gregorianMonthDays[month-1]
}

func (c gregorianConverter) ToJDN(d Date) (JDN, error) {
	if err := validate(c, d); err != nil {
		return 0, err
	}
	return gregorianToJDN(d.Year, d.Month, d.Day), nil
}

func (gregorianConverter) FromJDN(j JDN) Date {
	y, m, d := jdnToGregorian(j)
	return Date{System: Gregorian, Year: y, Month: m, Day: d}
}

// gregorianToJDN counts days in 400-year eras starting on 1 March so the leap
// day falls at the end of each computational year.
func gregorianToJDN(year, month, day int) JDN {
	if month <= 2 {
		year--
	}
	era := floorDiv(year, 400)
	yoe := year - era*400
	mp := (month + 9) % 12
	doy := (153*mp+2)/5 + day - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return JDN(era*daysPer400Years + doe + gregorianEpochShift)
}

func jdnToGregorian(j JDN) (year, month, day int) {
	z := int(j) - gregorianEpochShift
	era := floorDiv(z, daysPer400Years)
	doe := z - era*daysPer400Years
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	day = doy - (153*mp+2)/5 + 1
	if mp < 10 {
		month = mp + 3
	} else {
		month = mp - 9
	}
	year = yoe + era*400
	if month <= 2 {
		year++
	}
	return year, month, day
}
