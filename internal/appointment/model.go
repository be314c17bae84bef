package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
)

// Variant tags the three appointment submission types. The variant decides
// both which fields are required and which status transition applies.
type Variant string

const (
	VariantCreate   Variant = "create"
	VariantSchedule Variant = "schedule"
	VariantCancel   Variant = "cancel"
)

type Appointment struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	PatientID        uuid.UUID
	PrimaryPhysician string
	Schedule         time.Time
	Status           Status

	Reason             string
	Note               string
	CancellationReason string

	ReminderSentAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Event struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// StatusCounts feeds the admin dashboard.
type StatusCounts struct {
	Pending   int64
	Scheduled int64
	Cancelled int64
}
