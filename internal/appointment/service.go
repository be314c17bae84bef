package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careloop/patient-intake/internal/notify"
	"github.com/careloop/patient-intake/internal/patient"
	redisclient "github.com/careloop/patient-intake/internal/redis"
)

const (
	EventAppointmentRequested = "APPOINTMENT_REQUESTED"
	EventAppointmentScheduled = "APPOINTMENT_SCHEDULED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
	EventReminderSent         = "APPOINTMENT_REMINDER_SENT"
)

const scheduleTimeFormat = "Monday, January 2 2006 at 3:04 PM"

// Directory resolves the user and patient an appointment refers to. The
// patient service implements it.
type Directory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*patient.User, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type Service struct {
	repo     Repository
	dir      Directory
	guard    redisclient.Guard
	notifier notify.Notifier
	log      zerolog.Logger
}

func NewService(repo Repository, dir Directory, guard redisclient.Guard, notifier notify.Notifier, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		dir:      dir,
		guard:    guard,
		notifier: notifier,
		log:      log.With().Str("component", "appointment").Logger(),
	}
}

// Create handles the "create" submission variant: it validates the request,
// confirms the referenced patient and user exist, and inserts a new
// appointment in status pending. The submission guard rejects a duplicate
// submission of the same form while the first is still in flight.
func (s *Service) Create(ctx context.Context, sub Submission) (*Appointment, error) {
	sub.Variant = VariantCreate
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	status, err := StatusFor(sub.Variant)
	if err != nil {
		return nil, err
	}

	if _, err := s.dir.GetUser(ctx, sub.UserID); err != nil {
		if errors.Is(err, patient.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if _, err := s.dir.GetPatient(ctx, sub.PatientID); err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	var created *Appointment

	formKey := fmt.Sprintf("appointment:create:%s:%d", sub.PatientID, sub.Schedule.Unix())
	err = s.guard.WithSubmission(ctx, formKey, func(guardCtx context.Context) error {
		a := &Appointment{
			UserID:           sub.UserID,
			PatientID:        sub.PatientID,
			PrimaryPhysician: sub.PrimaryPhysician,
			Schedule:         sub.Schedule,
			Status:           status,
			Reason:           sub.Reason,
			Note:             sub.Note,
		}

		saved, err := s.repo.Create(guardCtx, a)
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		created = saved

		s.logEvent(guardCtx, saved.ID, EventAppointmentRequested, map[string]any{
			"patient_id": sub.PatientID.String(),
			"user_id":    sub.UserID.String(),
			"physician":  sub.PrimaryPhysician,
			"schedule":   sub.Schedule,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", created.ID.String()).
		Str("patient_id", sub.PatientID.String()).
		Msg("appointment requested")

	return created, nil
}

// Schedule confirms a pending appointment. Physician and schedule are
// re-confirmable at this step and overwrite the requested values.
func (s *Service) Schedule(ctx context.Context, id uuid.UUID, sub Submission) (*Appointment, error) {
	sub.Variant = VariantSchedule
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if !CanTransition(appt.Status, VariantSchedule) {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.MarkScheduled(ctx, id, sub.PrimaryPhysician, sub.Schedule)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// The row existed a moment ago: a concurrent transition won.
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("schedule appointment: %w", err)
	}

	s.logEvent(ctx, updated.ID, EventAppointmentScheduled, map[string]any{
		"physician": updated.PrimaryPhysician,
		"schedule":  updated.Schedule,
	})

	s.notifyUser(ctx, updated, fmt.Sprintf(
		"Your appointment has been scheduled for %s with Dr. %s.",
		updated.Schedule.Format(scheduleTimeFormat), updated.PrimaryPhysician,
	))

	s.log.Info().Str("appointment_id", updated.ID.String()).Msg("appointment scheduled")

	return updated, nil
}

// Cancel moves an appointment to its terminal cancelled status. Only the
// cancellation reason is required; physician, schedule and reason are left
// untouched.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, cancellationReason string) (*Appointment, error) {
	sub := Submission{Variant: VariantCancel, CancellationReason: cancellationReason}
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if !CanTransition(appt.Status, VariantCancel) {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.MarkCancelled(ctx, id, cancellationReason)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	s.logEvent(ctx, updated.ID, EventAppointmentCancelled, map[string]any{
		"cancellation_reason": cancellationReason,
	})

	s.notifyUser(ctx, updated, fmt.Sprintf(
		"We regret to inform you that your appointment for %s has been cancelled. Reason: %s",
		updated.Schedule.Format(scheduleTimeFormat), cancellationReason,
	))

	s.log.Info().Str("appointment_id", updated.ID.String()).Msg("appointment cancelled")

	return updated, nil
}

// Get retrieves an appointment by ID, e.g. for the confirmation view.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// ListByPatient retrieves appointments for a specific patient.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 20 // default
	}
	if limit > 100 {
		limit = 100 // max
	}
	if offset < 0 {
		offset = 0
	}

	appointments, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return appointments, nil
}

// Dashboard returns the status counts and most recent appointments for the
// admin view.
func (s *Service) Dashboard(ctx context.Context, recentLimit int) (StatusCounts, []Appointment, error) {
	if recentLimit <= 0 {
		recentLimit = 10
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return StatusCounts{}, nil, fmt.Errorf("count appointments: %w", err)
	}

	recent, err := s.repo.ListRecent(ctx, recentLimit)
	if err != nil {
		return StatusCounts{}, nil, fmt.Errorf("list recent appointments: %w", err)
	}

	return counts, recent, nil
}

// SendReminders is called periodically by the reminder worker. It sends one
// SMS per scheduled appointment inside the window and records the send so an
// appointment is never reminded twice.
func (s *Service) SendReminders(ctx context.Context, window time.Duration) error {
	now := time.Now()

	due, err := s.repo.FindDueReminders(ctx, now, now.Add(window))
	if err != nil {
		return fmt.Errorf("find due reminders: %w", err)
	}

	for _, appt := range due {
		u, err := s.dir.GetUser(ctx, appt.UserID)
		if err != nil {
			s.log.Error().Err(err).Str("appointment_id", appt.ID.String()).Msg("reminder skipped, user lookup failed")
			continue
		}

		message := fmt.Sprintf(
			"Reminder: your appointment with Dr. %s is on %s.",
			appt.PrimaryPhysician, appt.Schedule.Format(scheduleTimeFormat),
		)
		if err := s.notifier.Send(ctx, u.Phone, message); err != nil {
			s.log.Error().Err(err).Str("appointment_id", appt.ID.String()).Msg("reminder send failed")
			continue
		}

		if err := s.repo.MarkReminded(ctx, appt.ID, now); err != nil {
			s.log.Error().Err(err).Str("appointment_id", appt.ID.String()).Msg("failed to mark reminder sent")
			continue
		}

		s.logEvent(ctx, appt.ID, EventReminderSent, map[string]any{
			"schedule": appt.Schedule,
		})
	}

	return nil
}

// notifyUser sends an SMS to the appointment's requesting user. Notification
// failures are logged, never surfaced: the transition already succeeded.
func (s *Service) notifyUser(ctx context.Context, appt *Appointment, message string) {
	u, err := s.dir.GetUser(ctx, appt.UserID)
	if err != nil {
		s.log.Error().Err(err).Str("appointment_id", appt.ID.String()).Msg("notification skipped, user lookup failed")
		return
	}

	if err := s.notifier.Send(ctx, u.Phone, message); err != nil {
		s.log.Error().Err(err).Str("appointment_id", appt.ID.String()).Msg("notification send failed")
	}
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		data = nil
	}

	apptID := appointmentID

	ev := Event{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.log.Error().Err(err).
			Str("event_type", eventType).
			Str("appointment_id", appointmentID.String()).
			Msg("failed to insert appointment event")
	}
}
