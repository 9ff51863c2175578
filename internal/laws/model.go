package laws

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcit/lawregistry/internal/calendar"
)

// LawType classifies a legal document.
type LawType string

const (
	TypeLaw        LawType = "LAW"
	TypeRegulation LawType = "REGULATION"
	TypeDecree     LawType = "DECREE"
	TypeProcedure  LawType = "PROCEDURE"
	TypePolicy     LawType = "POLICY"
)

// AllTypes lists every LawType in display order.
var AllTypes = []LawType{TypeLaw, TypeRegulation, TypeDecree, TypeProcedure, TypePolicy}

// Status is the enforcement state of a legal document.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusRepealed Status = "REPEALED"
)

// AllStatuses lists every Status in display order.
var AllStatuses = []Status{StatusActive, StatusInactive, StatusRepealed}

// Law is a registered legal document. The publish date is kept in all three
// calendars; PublishDateQamari is the canonical one used for reporting.
type Law struct {
	ID                int64     `json:"id"`
	Ref               uuid.UUID `json:"ref"`
	Type              LawType   `json:"type"`
	SequenceNumber    int64     `json:"sequence_number"`
	TitleEng          *string   `json:"title_eng,omitempty"`
	TitlePs           string    `json:"title_ps"`
	TitleDr           string    `json:"title_dr"`
	PublishDate       string    `json:"publish_date"`
	PublishDateShamsi string    `json:"publish_date_shamsi"`
	PublishDateQamari string    `json:"publish_date_qamari"`
	Status            Status    `json:"status"`
	Description       *string   `json:"description,omitempty"`
	UserID            int64     `json:"user_id"`
	CreatedAt         time.Time `json:"created_at"`
	CreatedAtQamari   string    `json:"created_at_qamari"`
	UpdatedAt         time.Time `json:"updated_at"`
	UpdatedAtQamari   string    `json:"updated_at_qamari"`
}

// SummaryPeriod selects a year of one calendar, optionally narrowed to a
// month. A zero Month covers the whole year.
type SummaryPeriod struct {
	Calendar calendar.System
	Year     int
	Month    int
}

// LunarPeriod is the Lunar Hijri period of year and month.
func LunarPeriod(year, month int) SummaryPeriod {
	return SummaryPeriod{Calendar: calendar.LunarHijri, Year: year, Month: month}
}

// prefix is the YYYY-[MM-] start shared by every date in the period.
func (p SummaryPeriod) prefix() string {
	out := fmt.Sprintf("%04d-", p.Year)
	if p.Month > 0 {
		out += fmt.Sprintf("%02d-", p.Month)
	}
	return out
}

// Summary counts laws published in a year of one calendar, optionally narrowed
// to one month. Every type and status appears, with zero when absent.
type Summary struct {
	Year            int                          `json:"year"`
	Month           int                          `json:"month,omitempty"`
	Calendar        string                       `json:"calendar"`
	Total           int64                        `json:"total"`
	ByType          map[LawType]int64            `json:"by_type"`
	ByStatus        map[Status]int64             `json:"by_status"`
	ByTypeAndStatus map[LawType]map[Status]int64 `json:"by_type_and_status"`
}

// SummaryRow is one aggregated (type, status) bucket.
type SummaryRow struct {
	Type   LawType
	Status Status
	Count  int64
}

func newSummary(period SummaryPeriod, rows []SummaryRow) Summary {
	s := Summary{
		Year:            period.Year,
		Month:           period.Month,
		Calendar:        period.Calendar.String(),
		ByType:          make(map[LawType]int64, len(AllTypes)),
		ByStatus:        make(map[Status]int64, len(AllStatuses)),
		ByTypeAndStatus: make(map[LawType]map[Status]int64, len(AllTypes)),
	}
	for _, t := range AllTypes {
		s.ByType[t] = 0
		s.ByTypeAndStatus[t] = make(map[Status]int64, len(AllStatuses))
		for _, st := range AllStatuses {
			s.ByTypeAndStatus[t][st] = 0
		}
	}
	for _, st := range AllStatuses {
		s.ByStatus[st] = 0
	}
	for _, row := range rows {
		s.Total += row.Count
		s.ByType[row.Type] += row.Count
		s.ByStatus[row.Status] += row.Count
		if s.ByTypeAndStatus[row.Type] == nil {
			s.ByTypeAndStatus[row.Type] = make(map[Status]int64)
		}
		s.ByTypeAndStatus[row.Type][row.Status] += row.Count
	}
	return s
}
