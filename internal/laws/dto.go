package laws

import (
	"github.com/mcit/lawregistry/internal/calendar"
	"github.com/mcit/lawregistry/internal/shared"
)

// CreateLawRequest is the payload for registering a law. At least one publish
// date rendition is required; a Shamsi date takes precedence over the
// Gregorian one, and an untagged date is used only when neither is given.
type CreateLawRequest struct {
	Type              LawType `json:"type" validate:"required,oneof=LAW REGULATION DECREE PROCEDURE POLICY"`
	SequenceNumber    int64   `json:"sequence_number" validate:"required,gt=0"`
	TitleEng          *string `json:"title_eng,omitempty" validate:"omitempty,max=500"`
	TitlePs           string  `json:"title_ps" validate:"required,max=500"`
	TitleDr           string  `json:"title_dr" validate:"required,max=500"`
	PublishDate       *string `json:"publish_date,omitempty" validate:"required_without_all=PublishDateShamsi PublishDateRaw"`
	PublishDateShamsi *string `json:"publish_date_shamsi,omitempty"`
	PublishDateRaw    *string `json:"publish_date_raw,omitempty"`
	Status            Status  `json:"status" validate:"required,oneof=ACTIVE INACTIVE REPEALED"`
	Description       *string `json:"description,omitempty"`
}

// UpdateLawRequest carries a partial update; nil fields are left unchanged.
type UpdateLawRequest struct {
	Type              *LawType `json:"type,omitempty" validate:"omitempty,oneof=LAW REGULATION DECREE PROCEDURE POLICY"`
	SequenceNumber    *int64   `json:"sequence_number,omitempty" validate:"omitempty,gt=0"`
	TitleEng          *string  `json:"title_eng,omitempty" validate:"omitempty,max=500"`
	TitlePs           *string  `json:"title_ps,omitempty" validate:"omitempty,max=500"`
	TitleDr           *string  `json:"title_dr,omitempty" validate:"omitempty,max=500"`
	PublishDate       *string  `json:"publish_date,omitempty"`
	PublishDateShamsi *string  `json:"publish_date_shamsi,omitempty"`
	PublishDateRaw    *string  `json:"publish_date_raw,omitempty"`
	Status            *Status  `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE REPEALED"`
	Description       *string  `json:"description,omitempty"`
}

// ListFilters narrows law listings. Title matches a substring of any title;
// ExactTitle matches a whole title, ignoring case. PublishDate may be written
// in any supported calendar and is compared on its Lunar Hijri rendition. Its
// calendar is detected from the year unless PublishCalendar is set.
type ListFilters struct {
	Type            LawType `validate:"omitempty,oneof=LAW REGULATION DECREE PROCEDURE POLICY"`
	Status          Status  `validate:"omitempty,oneof=ACTIVE INACTIVE REPEALED"`
	Title           string  `validate:"max=200"`
	ExactTitle      string  `validate:"max=500"`
	SequenceNumber  int64   `validate:"gte=0"`
	PublishDate     string  `validate:"max=40"`
	PublishCalendar calendar.System
	UserID          int64 `validate:"gte=0"`
	Page            int   `validate:"gte=0"`
	PerPage         int   `validate:"gte=0"`

	// publishQamari is PublishDate normalized by Service.List.
	publishQamari string
}

// ListResult is one page of laws.
type ListResult struct {
	Items      []Law             `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}
