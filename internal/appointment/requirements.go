package appointment

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/patient-intake/internal/roster"
	"github.com/careloop/patient-intake/internal/validate"
)

var (
	ErrUnknownVariant    = errors.New("unknown submission variant")
	ErrUnknownPhysician  = errors.New("primary physician is not on the roster")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// FieldRequirements says which submission fields are mandatory. Note is never
// required; whichever of reason/cancellationReason is not required for a
// variant is ignored.
type FieldRequirements struct {
	PrimaryPhysician   bool
	Schedule           bool
	Reason             bool
	CancellationReason bool
}

// RequirementsFor is the single source of required-vs-optional policy across
// all submission variants. Handlers and the service both consult it, so the
// three variants cannot drift apart.
func RequirementsFor(v Variant) (FieldRequirements, error) {
	switch v {
	case VariantCreate:
		return FieldRequirements{
			PrimaryPhysician: true,
			Schedule:         true,
			Reason:           true,
		}, nil
	case VariantSchedule:
		return FieldRequirements{
			PrimaryPhysician: true,
			Schedule:         true,
		}, nil
	case VariantCancel:
		return FieldRequirements{
			CancellationReason: true,
		}, nil
	default:
		return FieldRequirements{}, fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}
}

// StatusFor maps a submission variant to the status it produces.
func StatusFor(v Variant) (Status, error) {
	switch v {
	case VariantCreate:
		return StatusPending, nil
	case VariantSchedule:
		return StatusScheduled, nil
	case VariantCancel:
		return StatusCancelled, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}
}

// CanTransition reports whether variant v may be applied to an appointment
// currently in status from. Create never applies to an existing record;
// schedule only confirms a pending request; cancelled is terminal.
func CanTransition(from Status, v Variant) bool {
	switch v {
	case VariantSchedule:
		return from == StatusPending
	case VariantCancel:
		return from == StatusPending || from == StatusScheduled
	default:
		return false
	}
}

// Submission is one appointment form submission of any variant.
type Submission struct {
	Variant   Variant
	UserID    uuid.UUID
	PatientID uuid.UUID

	PrimaryPhysician   string
	Schedule           time.Time
	Reason             string
	Note               string
	CancellationReason string
}

// Validate checks the submission against RequirementsFor(v) before any side
// effect. A rejected submission never reaches the store.
func (sub Submission) Validate() error {
	req, err := RequirementsFor(sub.Variant)
	if err != nil {
		return err
	}

	v := validate.NewError()
	if req.PrimaryPhysician {
		if sub.PrimaryPhysician == "" {
			v.Add("primaryPhysician", "is required")
		} else if !roster.IsKnown(sub.PrimaryPhysician) {
			v.Add("primaryPhysician", "must be a physician from the roster")
		}
	}
	if req.Schedule && sub.Schedule.IsZero() {
		v.Add("schedule", "must be a valid date and time")
	}
	if req.Reason && sub.Reason == "" {
		v.Add("reason", "is required")
	}
	if req.CancellationReason && sub.CancellationReason == "" {
		v.Add("cancellationReason", "is required")
	}
	return v.Err()
}
