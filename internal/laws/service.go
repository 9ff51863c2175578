package laws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mcit/lawregistry/internal/calendar"
	"github.com/mcit/lawregistry/internal/platform/httpx"
	"github.com/mcit/lawregistry/internal/shared"
)

// DateNormalizer is the slice of the calendar engine the registry relies on.
type DateNormalizer interface {
	Detect(raw string) (calendar.Detection, error)
	NormalizeToLunarHijri(raw string) (string, error)
	NormalizeFrom(system calendar.System, raw string) (string, error)
	SolarHijriToGregorian(year, month, day int) (calendar.Date, error)
	GregorianToSolarHijri(d calendar.Date) (string, error)
	Convert(d calendar.Date, target calendar.System) (calendar.Date, error)
	LunarTimestamp(t time.Time) string
}

// AuditRecorder persists activity log entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// SummaryStore caches period summaries.
type SummaryStore interface {
	Summary(ctx context.Context, period SummaryPeriod, load func(context.Context) (Summary, error)) (Summary, error)
	Invalidate(ctx context.Context) error
}

// Service implements the law registry use cases.
type Service struct {
	repo      RepositoryPort
	dates     DateNormalizer
	audit     AuditRecorder
	summaries SummaryStore
	validate  *validator.Validate
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs the service. audit and summaries may be nil.
func NewService(repo RepositoryPort, dates DateNormalizer, audit AuditRecorder, summaries SummaryStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		dates:     dates,
		audit:     audit,
		summaries: summaries,
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

type publishDates struct {
	gregorian string
	shamsi    string
	qamari    string
}

// resolvePublishDate derives all three renditions from whichever input is
// present. Shamsi wins over Gregorian; an untagged date has its calendar
// detected from the year.
func (s *Service) resolvePublishDate(gregorian, shamsi, raw *string) (publishDates, error) {
	switch {
	case shamsi != nil:
		src, err := calendar.Parse(calendar.SolarHijri, *shamsi)
		if err != nil {
			return publishDates{}, err
		}
		g, err := s.dates.SolarHijriToGregorian(src.Year, src.Month, src.Day)
		if err != nil {
			return publishDates{}, err
		}
		qamari, err := s.dates.NormalizeFrom(calendar.SolarHijri, src.String())
		if err != nil {
			return publishDates{}, err
		}
		return publishDates{gregorian: g.String(), shamsi: src.String(), qamari: qamari}, nil
	case gregorian != nil:
		src, err := calendar.Parse(calendar.Gregorian, *gregorian)
		if err != nil {
			return publishDates{}, err
		}
		return s.fromGregorian(src)
	case raw != nil:
		det, err := s.dates.Detect(*raw)
		if err != nil {
			return publishDates{}, err
		}
		if det.Ambiguous {
			s.logger.Warn("ambiguous publish date year", slog.String("date", *raw), slog.String("system", det.System.String()), slog.String("rule", det.Rule))
		}
		src, err := calendar.Parse(det.System, *raw)
		if err != nil {
			return publishDates{}, err
		}
		g, err := s.dates.Convert(src, calendar.Gregorian)
		if err != nil {
			return publishDates{}, err
		}
		return s.fromGregorian(g)
	default:
		return publishDates{}, fmt.Errorf("%w: a publish date is required", httpx.ErrValidation)
	}
}

func (s *Service) fromGregorian(g calendar.Date) (publishDates, error) {
	shamsi, err := s.dates.GregorianToSolarHijri(g)
	if err != nil {
		return publishDates{}, err
	}
	qamari, err := s.dates.NormalizeFrom(calendar.Gregorian, g.String())
	if err != nil {
		return publishDates{}, err
	}
	return publishDates{gregorian: g.String(), shamsi: shamsi, qamari: qamari}, nil
}

// Create registers a new law on behalf of actorID.
func (s *Service) Create(ctx context.Context, req CreateLawRequest, actorID int64) (Law, error) {
	if err := s.check(req); err != nil {
		return Law{}, err
	}
	if strings.TrimSpace(req.TitlePs) == "" || strings.TrimSpace(req.TitleDr) == "" {
		return Law{}, fmt.Errorf("%w: localized titles cannot be blank", httpx.ErrValidation)
	}
	dates, err := s.resolvePublishDate(req.PublishDate, req.PublishDateShamsi, req.PublishDateRaw)
	if err != nil {
		return Law{}, fmt.Errorf("laws: publish date: %w", err)
	}

	now := s.now()
	stamp := s.dates.LunarTimestamp(now)
	law := Law{
		Ref:               uuid.New(),
		Type:              req.Type,
		SequenceNumber:    req.SequenceNumber,
		TitleEng:          trimOptional(req.TitleEng),
		TitlePs:           strings.TrimSpace(req.TitlePs),
		TitleDr:           strings.TrimSpace(req.TitleDr),
		PublishDate:       dates.gregorian,
		PublishDateShamsi: dates.shamsi,
		PublishDateQamari: dates.qamari,
		Status:            req.Status,
		Description:       req.Description,
		UserID:            actorID,
		CreatedAt:         now,
		CreatedAtQamari:   stamp,
		UpdatedAt:         now,
		UpdatedAtQamari:   stamp,
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := ensureUnique(ctx, tx, law, 0); err != nil {
			return err
		}
		id, err := tx.Insert(ctx, law)
		if err != nil {
			return err
		}
		law.ID = id
		return nil
	})
	if err != nil {
		return Law{}, fmt.Errorf("laws: create: %w", err)
	}

	s.afterWrite(ctx, actorID, "law.created", law, map[string]any{
		"sequence_number":     law.SequenceNumber,
		"publish_date_qamari": law.PublishDateQamari,
	})
	return law, nil
}

// Update applies a partial update to law id.
func (s *Service) Update(ctx context.Context, id int64, req UpdateLawRequest, actorID int64) (Law, error) {
	if err := s.check(req); err != nil {
		return Law{}, err
	}
	for _, title := range []*string{req.TitlePs, req.TitleDr} {
		if title != nil && strings.TrimSpace(*title) == "" {
			return Law{}, fmt.Errorf("%w: localized titles cannot be blank", httpx.ErrValidation)
		}
	}
	var dates *publishDates
	if req.PublishDate != nil || req.PublishDateShamsi != nil || req.PublishDateRaw != nil {
		resolved, err := s.resolvePublishDate(req.PublishDate, req.PublishDateShamsi, req.PublishDateRaw)
		if err != nil {
			return Law{}, fmt.Errorf("laws: publish date: %w", err)
		}
		dates = &resolved
	}

	var law Law
	changes := map[string]any{}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		law, err = tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req.Type != nil && *req.Type != law.Type {
			changes["type"] = *req.Type
			law.Type = *req.Type
		}
		if req.SequenceNumber != nil && *req.SequenceNumber != law.SequenceNumber {
			changes["sequence_number"] = *req.SequenceNumber
			law.SequenceNumber = *req.SequenceNumber
		}
		if req.TitleEng != nil {
			law.TitleEng = trimOptional(req.TitleEng)
			changes["title_eng"] = law.TitleEng
		}
		if req.TitlePs != nil {
			law.TitlePs = strings.TrimSpace(*req.TitlePs)
			changes["title_ps"] = law.TitlePs
		}
		if req.TitleDr != nil {
			law.TitleDr = strings.TrimSpace(*req.TitleDr)
			changes["title_dr"] = law.TitleDr
		}
		if dates != nil {
			law.PublishDate = dates.gregorian
			law.PublishDateShamsi = dates.shamsi
			law.PublishDateQamari = dates.qamari
			changes["publish_date_qamari"] = dates.qamari
		}
		if req.Status != nil && *req.Status != law.Status {
			changes["status"] = *req.Status
			law.Status = *req.Status
		}
		if req.Description != nil {
			law.Description = req.Description
			changes["description"] = true
		}
		if err := ensureUnique(ctx, tx, law, law.ID); err != nil {
			return err
		}
		law.UpdatedAt = s.now()
		law.UpdatedAtQamari = s.dates.LunarTimestamp(law.UpdatedAt)
		return tx.Update(ctx, law)
	})
	if err != nil {
		return Law{}, fmt.Errorf("laws: update %d: %w", id, err)
	}

	s.afterWrite(ctx, actorID, "law.updated", law, changes)
	return law, nil
}

// Delete removes law id.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	var law Law
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		law, err = tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("laws: delete %d: %w", id, err)
	}
	s.afterWrite(ctx, actorID, "law.deleted", law, map[string]any{"sequence_number": law.SequenceNumber})
	return nil
}

// Get returns law id.
func (s *Service) Get(ctx context.Context, id int64) (Law, error) {
	return s.repo.Get(ctx, id)
}

// List returns one page of laws matching filters.
func (s *Service) List(ctx context.Context, filters ListFilters) (ListResult, error) {
	if err := s.check(filters); err != nil {
		return ListResult{}, err
	}
	filters.publishQamari = ""
	if raw := strings.TrimSpace(filters.PublishDate); raw != "" {
		qamari, err := s.listPublishDate(filters.PublishCalendar, raw)
		if err != nil {
			return ListResult{}, err
		}
		filters.publishQamari, _, _ = strings.Cut(qamari, " ")
	}
	filters.Page, filters.PerPage = shared.NormalizePage(filters.Page, filters.PerPage)
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: items, Pagination: shared.NewPagination(filters.Page, filters.PerPage, total)}, nil
}

func (s *Service) listPublishDate(system calendar.System, raw string) (string, error) {
	switch {
	case system == 0:
		return s.dates.NormalizeToLunarHijri(raw)
	case system.Valid():
		return s.dates.NormalizeFrom(system, raw)
	default:
		return "", fmt.Errorf("%w: unknown publish date calendar", httpx.ErrValidation)
	}
}

// Summary counts laws published in period. The year and month are read in
// period.Calendar, so a Gregorian 2025 and a Lunar Hijri 1446 are different
// reports over the same rows.
func (s *Service) Summary(ctx context.Context, period SummaryPeriod) (Summary, error) {
	if !period.Calendar.Valid() {
		return Summary{}, fmt.Errorf("%w: unknown calendar", httpx.ErrValidation)
	}
	if period.Year < 1 || period.Year > calendar.MaxYear || period.Month < 0 || period.Month > 12 {
		return Summary{}, fmt.Errorf("%w: year must be within 1..%d and month within 0..12", httpx.ErrValidation, calendar.MaxYear)
	}
	load := func(ctx context.Context) (Summary, error) {
		rows, err := s.repo.CountByPublishPrefix(ctx, period.Calendar, period.prefix())
		if err != nil {
			return Summary{}, err
		}
		return newSummary(period, rows), nil
	}
	if s.summaries == nil {
		return load(ctx)
	}
	return s.summaries.Summary(ctx, period, load)
}

// WarmSummaries loads the yearly and monthly summaries of the Lunar Hijri
// year containing now into the cache and returns how many periods it warmed.
func (s *Service) WarmSummaries(ctx context.Context, now time.Time) (int, error) {
	lunar, err := s.dates.Convert(calendar.GregorianDate(now), calendar.LunarHijri)
	if err != nil {
		return 0, fmt.Errorf("laws: warm summaries: %w", err)
	}
	warmed := 0
	for month := 0; month <= lunar.Month; month++ {
		if err := ctx.Err(); err != nil {
			return warmed, err
		}
		if _, err := s.Summary(ctx, LunarPeriod(lunar.Year, month)); err != nil {
			return warmed, fmt.Errorf("laws: warm summary %d-%02d: %w", lunar.Year, month, err)
		}
		warmed++
	}
	return warmed, nil
}

func (s *Service) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, strings.ToLower(fe.Field())+" failed "+fe.Tag())
	}
	return fmt.Errorf("%w: %s", httpx.ErrValidation, strings.Join(msgs, "; "))
}

func ensureUnique(ctx context.Context, tx TxRepository, law Law, excludeID int64) error {
	exists, err := tx.ExistsBySequence(ctx, law.SequenceNumber, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: sequence number %d already registered", httpx.ErrDuplicate, law.SequenceNumber)
	}
	titles := []struct {
		field TitleField
		value *string
	}{
		{TitleEng, law.TitleEng},
		{TitlePs, &law.TitlePs},
		{TitleDr, &law.TitleDr},
	}
	for _, title := range titles {
		if title.value == nil || *title.value == "" {
			continue
		}
		exists, err := tx.ExistsByTitle(ctx, title.field, *title.value, excludeID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s %q already registered", httpx.ErrDuplicate, title.field, *title.value)
		}
	}
	return nil
}

// afterWrite records the activity log entry and invalidates cached summaries.
// Both happen after commit, so failures are logged rather than returned.
func (s *Service) afterWrite(ctx context.Context, actorID int64, action string, law Law, meta map[string]any) {
	if s.audit != nil {
		err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   action,
			Entity:   "law",
			EntityID: strconv.FormatInt(law.ID, 10),
			Meta:     meta,
		})
		if err != nil {
			s.logger.Warn("audit record failed", slog.String("action", action), slog.Int64("law_id", law.ID), slog.Any("error", err))
		}
	}
	if s.summaries != nil {
		if err := s.summaries.Invalidate(ctx); err != nil {
			s.logger.Warn("summary cache invalidation failed", slog.Any("error", err))
		}
	}
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
