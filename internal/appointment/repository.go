package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// Repository contains all DB interactions needed by the service.
type Repository interface {
	Create(ctx context.Context, a *Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// Guarded transitions: both update only when the row is still in an
	// eligible status and return ErrAppointmentNotFound when the
	// compare-and-set misses.
	MarkScheduled(ctx context.Context, id uuid.UUID, physician string, schedule time.Time) (*Appointment, error)
	MarkCancelled(ctx context.Context, id uuid.UUID, cancellationReason string) (*Appointment, error)

	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error)
	ListRecent(ctx context.Context, limit int) ([]Appointment, error)
	CountByStatus(ctx context.Context) (StatusCounts, error)

	// Reminder worker
	FindDueReminders(ctx context.Context, from, to time.Time) ([]Appointment, error)
	MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) error

	// Event logging
	InsertEvent(ctx context.Context, ev Event) error
}
