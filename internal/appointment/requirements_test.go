package appointment

import (
	"errors"
	"testing"
	"time"

	"github.com/careloop/patient-intake/internal/validate"
)

func TestRequirementsFor(t *testing.T) {
	tests := []struct {
		variant Variant
		want    FieldRequirements
	}{
		{VariantCreate, FieldRequirements{PrimaryPhysician: true, Schedule: true, Reason: true}},
		{VariantSchedule, FieldRequirements{PrimaryPhysician: true, Schedule: true}},
		{VariantCancel, FieldRequirements{CancellationReason: true}},
	}

	for _, tt := range tests {
		got, err := RequirementsFor(tt.variant)
		if err != nil {
			t.Fatalf("RequirementsFor(%s): %v", tt.variant, err)
		}
		if got != tt.want {
			t.Errorf("RequirementsFor(%s) = %+v, want %+v", tt.variant, got, tt.want)
		}
	}

	if _, err := RequirementsFor(Variant("bogus")); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("unknown variant: got %v, want ErrUnknownVariant", err)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		variant Variant
		want    Status
	}{
		{VariantCreate, StatusPending},
		{VariantSchedule, StatusScheduled},
		{VariantCancel, StatusCancelled},
	}

	for _, tt := range tests {
		got, err := StatusFor(tt.variant)
		if err != nil {
			t.Fatalf("StatusFor(%s): %v", tt.variant, err)
		}
		if got != tt.want {
			t.Errorf("StatusFor(%s) = %s, want %s", tt.variant, got, tt.want)
		}
	}

	if _, err := StatusFor(Variant("bogus")); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("unknown variant: got %v, want ErrUnknownVariant", err)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    Status
		variant Variant
		want    bool
	}{
		{StatusPending, VariantSchedule, true},
		{StatusScheduled, VariantSchedule, false},
		{StatusCancelled, VariantSchedule, false},

		{StatusPending, VariantCancel, true},
		{StatusScheduled, VariantCancel, true},
		{StatusCancelled, VariantCancel, false},

		// Create never applies to an existing record.
		{StatusPending, VariantCreate, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.variant); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.variant, got, tt.want)
		}
	}
}

func TestSubmissionValidateCreate(t *testing.T) {
	sub := Submission{
		Variant:          VariantCreate,
		PrimaryPhysician: "John Green",
		Schedule:         time.Now().Add(24 * time.Hour),
		Reason:           "annual checkup",
	}
	if err := sub.Validate(); err != nil {
		t.Fatalf("valid create submission rejected: %v", err)
	}

	// Note stays optional on every variant.
	sub.Note = ""
	if err := sub.Validate(); err != nil {
		t.Fatalf("create without note rejected: %v", err)
	}

	sub.Reason = ""
	err := sub.Validate()
	var verr *validate.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validate.Error, got %v", err)
	}
	if _, ok := verr.Fields["reason"]; !ok {
		t.Errorf("missing reason not reported, fields: %v", verr.Fields)
	}
}

func TestSubmissionValidateSchedule(t *testing.T) {
	sub := Submission{
		Variant:          VariantSchedule,
		PrimaryPhysician: "Leila Cameron",
		Schedule:         time.Now().Add(48 * time.Hour),
	}
	// Reason is not required when scheduling.
	if err := sub.Validate(); err != nil {
		t.Fatalf("valid schedule submission rejected: %v", err)
	}

	sub.Schedule = time.Time{}
	err := sub.Validate()
	var verr *validate.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validate.Error, got %v", err)
	}
	if _, ok := verr.Fields["schedule"]; !ok {
		t.Errorf("missing schedule not reported, fields: %v", verr.Fields)
	}
}

func TestSubmissionValidateCancel(t *testing.T) {
	sub := Submission{Variant: VariantCancel, CancellationReason: "patient request"}
	// Physician and schedule are not required when cancelling.
	if err := sub.Validate(); err != nil {
		t.Fatalf("valid cancel submission rejected: %v", err)
	}

	sub.CancellationReason = ""
	err := sub.Validate()
	var verr *validate.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validate.Error, got %v", err)
	}
	if _, ok := verr.Fields["cancellationReason"]; !ok {
		t.Errorf("missing cancellationReason not reported, fields: %v", verr.Fields)
	}
}

func TestSubmissionValidateUnknownPhysician(t *testing.T) {
	sub := Submission{
		Variant:          VariantCreate,
		PrimaryPhysician: "Gregory House",
		Schedule:         time.Now().Add(24 * time.Hour),
		Reason:           "consult",
	}
	err := sub.Validate()
	var verr *validate.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validate.Error, got %v", err)
	}
	if _, ok := verr.Fields["primaryPhysician"]; !ok {
		t.Errorf("off-roster physician not reported, fields: %v", verr.Fields)
	}
}

func TestSubmissionValidateUnknownVariant(t *testing.T) {
	sub := Submission{Variant: Variant("bogus")}
	if err := sub.Validate(); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("expected ErrUnknownVariant, got %v", err)
	}
}
