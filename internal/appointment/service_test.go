package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careloop/patient-intake/internal/patient"
	redisclient "github.com/careloop/patient-intake/internal/redis"
	"github.com/careloop/patient-intake/internal/validate"
)

// mockRepo is an in-memory Repository with the same compare-and-set
// semantics as the Postgres implementation.
type mockRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*Appointment
	events       []Event
}

func newMockRepo() *mockRepo {
	return &mockRepo{appointments: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.appointments[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	out := *a
	return &out, nil
}

func (m *mockRepo) MarkScheduled(_ context.Context, id uuid.UUID, physician string, schedule time.Time) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok || a.Status != StatusPending {
		return nil, ErrAppointmentNotFound
	}
	a.Status = StatusScheduled
	a.PrimaryPhysician = physician
	a.Schedule = schedule
	a.UpdatedAt = time.Now()
	out := *a
	return &out, nil
}

func (m *mockRepo) MarkCancelled(_ context.Context, id uuid.UUID, reason string) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok || (a.Status != StatusPending && a.Status != StatusScheduled) {
		return nil, ErrAppointmentNotFound
	}
	a.Status = StatusCancelled
	a.CancellationReason = reason
	a.UpdatedAt = time.Now()
	out := *a
	return &out, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockRepo) ListRecent(_ context.Context, limit int) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Appointment
	for _, a := range m.appointments {
		out = append(out, *a)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockRepo) CountByStatus(_ context.Context) (StatusCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var c StatusCounts
	for _, a := range m.appointments {
		switch a.Status {
		case StatusPending:
			c.Pending++
		case StatusScheduled:
			c.Scheduled++
		case StatusCancelled:
			c.Cancelled++
		}
	}
	return c, nil
}

func (m *mockRepo) FindDueReminders(_ context.Context, from, to time.Time) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Appointment
	for _, a := range m.appointments {
		if a.Status == StatusScheduled && a.ReminderSentAt == nil &&
			!a.Schedule.Before(from) && !a.Schedule.After(to) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockRepo) MarkReminded(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	t := at
	a.ReminderSentAt = &t
	return nil
}

func (m *mockRepo) InsertEvent(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *mockRepo) eventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, ev := range m.events {
		out[i] = ev.EventType
	}
	return out
}

// mockDirectory resolves users and patients from fixed maps.
type mockDirectory struct {
	users    map[uuid.UUID]*patient.User
	patients map[uuid.UUID]*patient.Patient
}

func (d *mockDirectory) GetUser(_ context.Context, id uuid.UUID) (*patient.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, patient.ErrUserNotFound
	}
	return u, nil
}

func (d *mockDirectory) GetPatient(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := d.patients[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	return p, nil
}

// recordingNotifier captures outbound messages.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Send(_ context.Context, phone, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

type fixture struct {
	svc      *Service
	repo     *mockRepo
	notifier *recordingNotifier
	userID   uuid.UUID
	patID    uuid.UUID
}

func newFixture() *fixture {
	userID := uuid.New()
	patID := uuid.New()

	dir := &mockDirectory{
		users: map[uuid.UUID]*patient.User{
			userID: {ID: userID, Name: "John Doe", Email: "john@x.com", Phone: "+212-661343323"},
		},
		patients: map[uuid.UUID]*patient.Patient{
			patID: {ID: patID, UserID: userID, Name: "John Doe"},
		},
	}

	repo := newMockRepo()
	notifier := &recordingNotifier{}
	svc := NewService(repo, dir, redisclient.PassthroughGuard{}, notifier, zerolog.Nop())

	return &fixture{svc: svc, repo: repo, notifier: notifier, userID: userID, patID: patID}
}

func (f *fixture) createSubmission() Submission {
	return Submission{
		UserID:           f.userID,
		PatientID:        f.patID,
		PrimaryPhysician: "John Green",
		Schedule:         time.Now().Add(72 * time.Hour),
		Reason:           "annual checkup",
	}
}

func (f *fixture) mustCreate(t *testing.T) *Appointment {
	t.Helper()
	a, err := f.svc.Create(context.Background(), f.createSubmission())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return a
}

func TestCreateStartsPending(t *testing.T) {
	f := newFixture()

	a := f.mustCreate(t)
	if a.Status != StatusPending {
		t.Errorf("status = %s, want pending", a.Status)
	}
	if a.ID == uuid.Nil {
		t.Error("expected a non-nil appointment ID")
	}

	types := f.repo.eventTypes()
	if len(types) != 1 || types[0] != EventAppointmentRequested {
		t.Errorf("events = %v, want [%s]", types, EventAppointmentRequested)
	}
}

func TestCreateWithOptionalNote(t *testing.T) {
	f := newFixture()

	sub := f.createSubmission()
	sub.Note = "prefers mornings"

	a, err := f.svc.Create(context.Background(), sub)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Note != "prefers mornings" {
		t.Errorf("note = %q, want carried through", a.Note)
	}
}

func TestCreateRejectsMissingReason(t *testing.T) {
	f := newFixture()

	sub := f.createSubmission()
	sub.Reason = ""

	_, err := f.svc.Create(context.Background(), sub)
	var verr *validate.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validate.Error, got %v", err)
	}
	if len(f.repo.appointments) != 0 {
		t.Error("rejected submission must not reach the repository")
	}
}

func TestCreateUnknownPatient(t *testing.T) {
	f := newFixture()

	sub := f.createSubmission()
	sub.PatientID = uuid.New()

	_, err := f.svc.Create(context.Background(), sub)
	if !errors.Is(err, patient.ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestScheduleConfirmsPending(t *testing.T) {
	f := newFixture()
	a := f.mustCreate(t)

	newTime := time.Now().Add(96 * time.Hour)
	updated, err := f.svc.Schedule(context.Background(), a.ID, Submission{
		PrimaryPhysician: "Leila Cameron",
		Schedule:         newTime,
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if updated.Status != StatusScheduled {
		t.Errorf("status = %s, want scheduled", updated.Status)
	}
	// Scheduling overwrites the requested physician and time.
	if updated.PrimaryPhysician != "Leila Cameron" {
		t.Errorf("physician = %q, want Leila Cameron", updated.PrimaryPhysician)
	}
	if !updated.Schedule.Equal(newTime) {
		t.Errorf("schedule not overwritten: %v", updated.Schedule)
	}

	if got := f.notifier.count(); got != 1 {
		t.Errorf("SMS count = %d, want 1", got)
	}
}

func TestScheduleRejectsNonPending(t *testing.T) {
	f := newFixture()
	a := f.mustCreate(t)
	ctx := context.Background()

	sub := Submission{PrimaryPhysician: "John Green", Schedule: time.Now().Add(96 * time.Hour)}

	if _, err := f.svc.Schedule(ctx, a.ID, sub); err != nil {
		t.Fatalf("first Schedule: %v", err)
	}

	// Already scheduled: a second confirmation is an invalid transition.
	if _, err := f.svc.Schedule(ctx, a.ID, sub); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestScheduleMissingFields(t *testing.T) {
	f := newFixture()
	a := f.mustCreate(t)

	_, err := f.svc.Schedule(context.Background(), a.ID, Submission{})
	var verr *validate.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validate.Error, got %v", err)
	}
	if _, ok := verr.Fields["primaryPhysician"]; !ok {
		t.Errorf("missing physician not reported, fields: %v", verr.Fields)
	}
	if _, ok := verr.Fields["schedule"]; !ok {
		t.Errorf("missing schedule not reported, fields: %v", verr.Fields)
	}
}

func TestScheduleUnknownAppointment(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Schedule(context.Background(), uuid.New(), Submission{
		PrimaryPhysician: "John Green",
		Schedule:         time.Now().Add(24 * time.Hour),
	})
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestCancelPending(t *testing.T) {
	f := newFixture()
	a := f.mustCreate(t)

	updated, err := f.svc.Cancel(context.Background(), a.ID, "patient request")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if updated.Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", updated.Status)
	}
	if updated.CancellationReason != "patient request" {
		t.Errorf("cancellation reason = %q", updated.CancellationReason)
	}
	// Reason from the original request survives cancellation.
	if updated.Reason != "annual checkup" {
		t.Errorf("original reason lost: %q", updated.Reason)
	}
}

func TestCancelScheduled(t *testing.T) {
	f := newFixture()
	a := f.mustCreate(t)
	ctx := context.Background()

	if _, err := f.svc.Schedule(ctx, a.ID, Submission{
		PrimaryPhysician: "John Green",
		Schedule:         time.Now().Add(96 * time.Hour),
	}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	updated, err := f.svc.Cancel(ctx, a.ID, "doctor unavailable")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if updated.Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", updated.Status)
	}

	// Schedule SMS plus cancellation SMS.
	if got := f.notifier.count(); got != 2 {
		t.Errorf("SMS count = %d, want 2", got)
	}
}

func TestCancelledIsTerminal(t *testing.T) {
	f := newFixture()
	a := f.mustCreate(t)
	ctx := context.Background()

	if _, err := f.svc.Cancel(ctx, a.ID, "patient request"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if _, err := f.svc.Cancel(ctx, a.ID, "again"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cancel after cancel: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := f.svc.Schedule(ctx, a.ID, Submission{
		PrimaryPhysician: "John Green",
		Schedule:         time.Now().Add(24 * time.Hour),
	}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("schedule after cancel: expected ErrInvalidTransition, got %v", err)
	}
}

func TestCancelRequiresReason(t *testing.T) {
	f := newFixture()
	a := f.mustCreate(t)

	_, err := f.svc.Cancel(context.Background(), a.ID, "")
	var verr *validate.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validate.Error, got %v", err)
	}
	if _, ok := verr.Fields["cancellationReason"]; !ok {
		t.Errorf("missing cancellationReason not reported, fields: %v", verr.Fields)
	}

	got, err := f.svc.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusPending {
		t.Errorf("rejected cancel changed status to %s", got.Status)
	}
}

func TestListByPatient(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.mustCreate(t)
	f.mustCreate(t)

	appts, err := f.svc.ListByPatient(ctx, f.patID, 0, 0)
	if err != nil {
		t.Fatalf("ListByPatient: %v", err)
	}
	if len(appts) != 2 {
		t.Errorf("listed %d appointments, want 2", len(appts))
	}

	appts, err = f.svc.ListByPatient(ctx, uuid.New(), 0, 0)
	if err != nil {
		t.Fatalf("ListByPatient for unknown patient: %v", err)
	}
	if len(appts) != 0 {
		t.Errorf("listed %d appointments for unknown patient, want 0", len(appts))
	}
}

func TestDashboardCounts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a1 := f.mustCreate(t)
	a2 := f.mustCreate(t)
	f.mustCreate(t)

	if _, err := f.svc.Schedule(ctx, a1.ID, Submission{
		PrimaryPhysician: "John Green",
		Schedule:         time.Now().Add(24 * time.Hour),
	}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if _, err := f.svc.Cancel(ctx, a2.ID, "patient request"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	counts, recent, err := f.svc.Dashboard(ctx, 10)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if counts.Pending != 1 || counts.Scheduled != 1 || counts.Cancelled != 1 {
		t.Errorf("counts = %+v, want 1/1/1", counts)
	}
	if len(recent) != 3 {
		t.Errorf("recent = %d appointments, want 3", len(recent))
	}
}

func TestSendReminders(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.mustCreate(t)
	if _, err := f.svc.Schedule(ctx, a.ID, Submission{
		PrimaryPhysician: "John Green",
		Schedule:         time.Now().Add(12 * time.Hour),
	}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	// Outside the window: stays untouched.
	far := f.mustCreate(t)
	if _, err := f.svc.Schedule(ctx, far.ID, Submission{
		PrimaryPhysician: "John Green",
		Schedule:         time.Now().Add(30 * 24 * time.Hour),
	}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	before := f.notifier.count()
	if err := f.svc.SendReminders(ctx, 24*time.Hour); err != nil {
		t.Fatalf("SendReminders: %v", err)
	}
	if got := f.notifier.count() - before; got != 1 {
		t.Fatalf("reminder SMS count = %d, want 1", got)
	}

	// Second run must not remind the same appointment again.
	if err := f.svc.SendReminders(ctx, 24*time.Hour); err != nil {
		t.Fatalf("second SendReminders: %v", err)
	}
	if got := f.notifier.count() - before; got != 1 {
		t.Errorf("reminder sent twice, SMS count = %d", got)
	}
}
