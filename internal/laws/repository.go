package laws

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcit/lawregistry/internal/calendar"
	"github.com/mcit/lawregistry/internal/platform/db"
	"github.com/mcit/lawregistry/internal/platform/httpx"
)

// TitleField names one of the three localized title columns.
type TitleField string

const (
	TitleEng TitleField = "title_eng"
	TitlePs  TitleField = "title_ps"
	TitleDr  TitleField = "title_dr"
)

// RepositoryPort is the persistence surface used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Law, error)
	List(ctx context.Context, filters ListFilters) ([]Law, int, error)
	CountByPublishPrefix(ctx context.Context, system calendar.System, prefix string) ([]SummaryRow, error)
}

// TxRepository exposes the operations available inside a transaction.
type TxRepository interface {
	GetForUpdate(ctx context.Context, id int64) (Law, error)
	ExistsBySequence(ctx context.Context, sequence, excludeID int64) (bool, error)
	ExistsByTitle(ctx context.Context, field TitleField, title string, excludeID int64) (bool, error)
	Insert(ctx context.Context, law Law) (int64, error)
	Update(ctx context.Context, law Law) error
	Delete(ctx context.Context, id int64) error
}

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides PostgreSQL backed persistence for laws.
type Repository struct {
	pool *pgxpool.Pool
	queries
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, queries: queries{db: pool}}
}

// WithTx wraps fn in a read-committed transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &queries{db: tx})
	})
}

type queries struct {
	db dbtx
}

const lawColumns = `id, ref, type, sequence_number, title_eng, title_ps, title_dr,
	publish_date, publish_date_shamsi, publish_date_qamari, status, description, user_id,
	created_at, created_at_qamari, updated_at, updated_at_qamari`

func scanLaw(row pgx.Row) (Law, error) {
	var (
		law     Law
		publish time.Time
	)
	err := row.Scan(&law.ID, &law.Ref, &law.Type, &law.SequenceNumber, &law.TitleEng, &law.TitlePs, &law.TitleDr,
		&publish, &law.PublishDateShamsi, &law.PublishDateQamari, &law.Status, &law.Description, &law.UserID,
		&law.CreatedAt, &law.CreatedAtQamari, &law.UpdatedAt, &law.UpdatedAtQamari)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Law{}, httpx.ErrNotFound
		}
		return Law{}, err
	}
	law.PublishDate = publish.Format(time.DateOnly)
	return law, nil
}

func (q *queries) Get(ctx context.Context, id int64) (Law, error) {
	law, err := scanLaw(q.db.QueryRow(ctx, `SELECT `+lawColumns+` FROM laws WHERE id = $1`, id))
	if err != nil {
		return Law{}, fmt.Errorf("laws: get %d: %w", id, err)
	}
	return law, nil
}

func (q *queries) GetForUpdate(ctx context.Context, id int64) (Law, error) {
	law, err := scanLaw(q.db.QueryRow(ctx, `SELECT `+lawColumns+` FROM laws WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return Law{}, fmt.Errorf("laws: get %d: %w", id, err)
	}
	return law, nil
}

func (q *queries) ExistsBySequence(ctx context.Context, sequence, excludeID int64) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM laws WHERE sequence_number = $1 AND id <> $2)`,
		sequence, excludeID).Scan(&exists)
	return exists, err
}

func (q *queries) ExistsByTitle(ctx context.Context, field TitleField, title string, excludeID int64) (bool, error) {
	switch field {
	case TitleEng, TitlePs, TitleDr:
	default:
		return false, fmt.Errorf("laws: unknown title field %q", field)
	}
	var exists bool
	sql := `SELECT EXISTS (SELECT 1 FROM laws WHERE lower(` + string(field) + `) = lower($1) AND id <> $2)`
	err := q.db.QueryRow(ctx, sql, title, excludeID).Scan(&exists)
	return exists, err
}

func publishTime(law Law) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, law.PublishDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("laws: publish date %q: %w", law.PublishDate, err)
	}
	return t, nil
}

func (q *queries) Insert(ctx context.Context, law Law) (int64, error) {
	publish, err := publishTime(law)
	if err != nil {
		return 0, err
	}
	var id int64
	err = q.db.QueryRow(ctx, `INSERT INTO laws (ref, type, sequence_number, title_eng, title_ps, title_dr,
		publish_date, publish_date_shamsi, publish_date_qamari, status, description, user_id,
		created_at, created_at_qamari, updated_at, updated_at_qamari)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`,
		law.Ref, law.Type, law.SequenceNumber, law.TitleEng, law.TitlePs, law.TitleDr,
		publish, law.PublishDateShamsi, law.PublishDateQamari, law.Status, law.Description, law.UserID,
		law.CreatedAt, law.CreatedAtQamari, law.UpdatedAt, law.UpdatedAtQamari).Scan(&id)
	if err != nil {
		return 0, mapWriteError(err)
	}
	return id, nil
}

func (q *queries) Update(ctx context.Context, law Law) error {
	publish, err := publishTime(law)
	if err != nil {
		return err
	}
	tag, err := q.db.Exec(ctx, `UPDATE laws SET type = $2, sequence_number = $3, title_eng = $4, title_ps = $5,
		title_dr = $6, publish_date = $7, publish_date_shamsi = $8, publish_date_qamari = $9, status = $10,
		description = $11, updated_at = $12, updated_at_qamari = $13
		WHERE id = $1`,
		law.ID, law.Type, law.SequenceNumber, law.TitleEng, law.TitlePs,
		law.TitleDr, publish, law.PublishDateShamsi, law.PublishDateQamari, law.Status,
		law.Description, law.UpdatedAt, law.UpdatedAtQamari)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (q *queries) Delete(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM laws WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// listWhere renders the WHERE clause and its arguments for filters.
func listWhere(filters ListFilters) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filters.Type != "" {
		add("type = $%d", filters.Type)
	}
	if filters.Status != "" {
		add("status = $%d", filters.Status)
	}
	if filters.UserID > 0 {
		add("user_id = $%d", filters.UserID)
	}
	if filters.SequenceNumber > 0 {
		add("sequence_number = $%d", filters.SequenceNumber)
	}
	if filters.publishQamari != "" {
		add("publish_date_qamari = $%d", filters.publishQamari)
	}
	if title := strings.TrimSpace(filters.Title); title != "" {
		args = append(args, "%"+escapeLike(title)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(`(title_eng ILIKE $%d ESCAPE '\' OR title_ps ILIKE $%d ESCAPE '\' OR title_dr ILIKE $%d ESCAPE '\')`, n, n, n))
	}
	if title := strings.TrimSpace(filters.ExactTitle); title != "" {
		args = append(args, title)
		n := len(args)
		where = append(where, fmt.Sprintf("(lower(title_eng) = lower($%d) OR lower(title_ps) = lower($%d) OR lower(title_dr) = lower($%d))", n, n, n))
	}
	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func (q *queries) List(ctx context.Context, filters ListFilters) ([]Law, int, error) {
	clause, args := listWhere(filters)

	var total int
	if err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM laws`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("laws: count: %w", err)
	}

	page, perPage := filters.Page, filters.PerPage
	args = append(args, perPage, (page-1)*perPage)
	sql := fmt.Sprintf(`SELECT %s FROM laws%s ORDER BY publish_date_qamari DESC, sequence_number DESC LIMIT $%d OFFSET $%d`,
		lawColumns, clause, len(args)-1, len(args))
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("laws: list: %w", err)
	}
	defer rows.Close()

	items := make([]Law, 0, perPage)
	for rows.Next() {
		law, err := scanLaw(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, law)
	}
	return items, total, rows.Err()
}

// likeEscaper escapes the LIKE wildcards and the escape character itself.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// publishColumns renders the publish date of each calendar as YYYY-MM-DD.
var publishColumns = map[calendar.System]string{
	calendar.Gregorian:  "to_char(publish_date, 'YYYY-MM-DD')",
	calendar.SolarHijri: "publish_date_shamsi",
	calendar.LunarHijri: "publish_date_qamari",
}

// CountByPublishPrefix aggregates laws whose publish date in system starts
// with prefix, e.g. "1446-" for a year or "1446-07-" for a month.
func (q *queries) CountByPublishPrefix(ctx context.Context, system calendar.System, prefix string) ([]SummaryRow, error) {
	column, ok := publishColumns[system]
	if !ok {
		return nil, fmt.Errorf("laws: summary: unsupported calendar %s", system)
	}
	rows, err := q.db.Query(ctx, `SELECT type, status, COUNT(*) FROM laws
		WHERE `+column+` LIKE $1 || '%'
		GROUP BY type, status ORDER BY type, status`, escapeLike(prefix))
	if err != nil {
		return nil, fmt.Errorf("laws: summary: %w", err)
	}
	defer rows.Close()
	var out []SummaryRow
	for rows.Next() {
		var row SummaryRow
		if err := rows.Scan(&row.Type, &row.Status, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", httpx.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}
