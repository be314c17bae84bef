package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const appointmentColumns = `
	id, user_id, patient_id, primary_physician, schedule, status,
	reason, note, cancellation_reason, reminder_sent_at, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var reminderSentAt *time.Time

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.PatientID,
		&a.PrimaryPhysician,
		&a.Schedule,
		&a.Status,
		&a.Reason,
		&a.Note,
		&a.CancellationReason,
		&reminderSentAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.ReminderSentAt = reminderSentAt
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Interface methods

func (r *PgRepository) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (
			id, user_id, patient_id, primary_physician, schedule, status,
			reason, note, cancellation_reason, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING `+appointmentColumns+`
	`, id, a.UserID, a.PatientID, a.PrimaryPhysician, a.Schedule, a.Status,
		a.Reason, a.Note, a.CancellationReason)

	return scanAppointment(row)
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) MarkScheduled(ctx context.Context, id uuid.UUID, physician string, schedule time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'scheduled',
		    primary_physician = $2,
		    schedule = $3,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'pending'
		RETURNING `+appointmentColumns+`
	`, id, physician, schedule)

	return scanAppointment(row)
}

func (r *PgRepository) MarkCancelled(ctx context.Context, id uuid.UUID, cancellationReason string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'cancelled',
		    cancellation_reason = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status IN ('pending', 'scheduled')
		RETURNING `+appointmentColumns+`
	`, id, cancellationReason)

	return scanAppointment(row)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY schedule DESC
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListRecent(ctx context.Context, limit int) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) CountByStatus(ctx context.Context) (StatusCounts, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, count(*)
		FROM appointments
		GROUP BY status
	`)
	if err != nil {
		return StatusCounts{}, err
	}
	defer rows.Close()

	var counts StatusCounts
	for rows.Next() {
		var status Status
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return StatusCounts{}, err
		}
		switch status {
		case StatusPending:
			counts.Pending = n
		case StatusScheduled:
			counts.Scheduled = n
		case StatusCancelled:
			counts.Cancelled = n
		}
	}

	if err := rows.Err(); err != nil {
		return StatusCounts{}, err
	}

	return counts, nil
}

func (r *PgRepository) FindDueReminders(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = 'scheduled'
		  AND schedule >= $1
		  AND schedule < $2
		  AND reminder_sent_at IS NULL
	`, from, to)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET reminder_sent_at = $2
		WHERE id = $1
	`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment_events (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert appointment event: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
