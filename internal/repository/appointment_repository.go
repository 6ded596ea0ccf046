package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/appointment-service/internal/domain"
)

// AppointmentFilter captures listing parameters. Zero-valued fields are
// ignored when building the query.
type AppointmentFilter struct {
	UserID        *string
	From          *time.Time
	To            *time.Time
	Year          *int
	Month         *int
	WeekStart     *time.Time
	OnlyConfirmed bool
	OnlyCancelled bool
	Limit         int
	Offset        int
}

// AppointmentRepository encapsulates appointment persistence.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) error
	Update(ctx context.Context, appointment *domain.Appointment) error
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	// ListSameDay returns a user's non-cancelled appointments whose start
	// falls on the given calendar date, excluding excludeID when > 0.
	ListSameDay(ctx context.Context, userID string, day time.Time, excludeID int64) ([]domain.Appointment, error)
	// ListInRange returns every appointment with start time in [from, to).
	ListInRange(ctx context.Context, from, to time.Time) ([]domain.Appointment, error)
	ListWithFilter(ctx context.Context, filter AppointmentFilter) ([]domain.Appointment, int, error)
	// ListReminderDue returns non-cancelled appointments flagged for a
	// reminder, not yet reminded, starting within [now, now+lead).
	ListReminderDue(ctx context.Context, now time.Time, lead time.Duration) ([]domain.Appointment, error)
	MarkReminderSent(ctx context.Context, id int64, sentAt time.Time) error
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository instantiates repository.
func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

const appointmentColumns = `id, title, description, start_time, end_time, location, meeting_link,
               user_id, is_confirmed, is_cancelled, cancellation_reason, send_reminder,
               reminder_sent_at, created_at, created_by, updated_at, updated_by`

func (r *appointmentRepository) Create(ctx context.Context, appointment *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (title, description, start_time, end_time, location, meeting_link,
            user_id, is_confirmed, is_cancelled, cancellation_reason, send_reminder, created_by, updated_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		appointment.Title,
		appointment.Description,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Location,
		appointment.MeetingLink,
		appointment.UserID,
		appointment.IsConfirmed,
		appointment.IsCancelled,
		appointment.CancellationReason,
		appointment.SendReminder,
		appointment.CreatedBy,
	).Scan(&appointment.ID, &appointment.CreatedAt, &appointment.UpdatedAt)
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *domain.Appointment) error {
	const query = `
        UPDATE appointments SET title=$1, description=$2, start_time=$3, end_time=$4, location=$5,
            meeting_link=$6, is_confirmed=$7, is_cancelled=$8, cancellation_reason=$9,
            send_reminder=$10, updated_by=$11, updated_at=NOW()
        WHERE id=$12`
	cmd, err := r.pool.Exec(ctx, query,
		appointment.Title,
		appointment.Description,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Location,
		appointment.MeetingLink,
		appointment.IsConfirmed,
		appointment.IsCancelled,
		appointment.CancellationReason,
		appointment.SendReminder,
		appointment.UpdatedBy,
		appointment.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id=$1`, appointmentColumns)
	row := r.pool.QueryRow(ctx, query, id)

	var appointment domain.Appointment
	if err := scanAppointment(row, &appointment); err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) ListSameDay(ctx context.Context, userID string, day time.Time, excludeID int64) ([]domain.Appointment, error) {
	from := domain.DateOnly(day)
	to := from.AddDate(0, 0, 1)

	query := fmt.Sprintf(`
        SELECT %s FROM appointments
        WHERE user_id=$1 AND start_time >= $2 AND start_time < $3 AND is_cancelled=0 AND id <> $4
        ORDER BY start_time`, appointmentColumns)
	rows, err := r.pool.Query(ctx, query, userID, from, to, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func (r *appointmentRepository) ListInRange(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM appointments
        WHERE start_time >= $1 AND start_time < $2
        ORDER BY start_time`, appointmentColumns)
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func (r *appointmentRepository) ListWithFilter(ctx context.Context, filter AppointmentFilter) ([]domain.Appointment, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("start_time >= $%d", len(args)))
	}
	if filter.To != nil {
		// Half-open upper bound, matching every other window query here.
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("start_time < $%d", len(args)))
	}
	if filter.Year != nil && filter.Month != nil {
		startOfMonth := time.Date(*filter.Year, time.Month(*filter.Month), 1, 0, 0, 0, 0, time.UTC)
		args = append(args, startOfMonth)
		clauses = append(clauses, fmt.Sprintf("start_time >= $%d", len(args)))
		args = append(args, startOfMonth.AddDate(0, 1, 0))
		clauses = append(clauses, fmt.Sprintf("start_time < $%d", len(args)))
	}
	if filter.WeekStart != nil {
		args = append(args, *filter.WeekStart)
		clauses = append(clauses, fmt.Sprintf("start_time >= $%d", len(args)))
		args = append(args, filter.WeekStart.AddDate(0, 0, 7))
		clauses = append(clauses, fmt.Sprintf("start_time < $%d", len(args)))
	}
	if filter.OnlyConfirmed {
		clauses = append(clauses, "is_confirmed=1")
	}
	if filter.OnlyCancelled {
		clauses = append(clauses, "is_cancelled=1")
	}

	where := strings.Join(clauses, " AND ")

	var totalCount int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM appointments WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE %s ORDER BY start_time LIMIT %d OFFSET %d`,
		appointmentColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := scanAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, totalCount, nil
}

func (r *appointmentRepository) ListReminderDue(ctx context.Context, now time.Time, lead time.Duration) ([]domain.Appointment, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM appointments
        WHERE send_reminder=1 AND is_cancelled=0 AND reminder_sent_at IS NULL
          AND start_time >= $1 AND start_time < $2
        ORDER BY start_time`, appointmentColumns)
	rows, err := r.pool.Query(ctx, query, now, now.Add(lead))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func (r *appointmentRepository) MarkReminderSent(ctx context.Context, id int64, sentAt time.Time) error {
	// reminder_sent_at is write-once.
	const query = `UPDATE appointments SET reminder_sent_at=$1 WHERE id=$2 AND reminder_sent_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, sentAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAppointment(row pgx.Row, a *domain.Appointment) error {
	return row.Scan(
		&a.ID,
		&a.Title,
		&a.Description,
		&a.StartTime,
		&a.EndTime,
		&a.Location,
		&a.MeetingLink,
		&a.UserID,
		&a.IsConfirmed,
		&a.IsCancelled,
		&a.CancellationReason,
		&a.SendReminder,
		&a.ReminderSentAt,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.UpdatedAt,
		&a.UpdatedBy,
	)
}

func scanAppointments(rows pgx.Rows) ([]domain.Appointment, error) {
	var result []domain.Appointment
	for rows.Next() {
		var appointment domain.Appointment
		if err := scanAppointment(rows, &appointment); err != nil {
			return nil, err
		}
		result = append(result, appointment)
	}
	return result, rows.Err()
}
