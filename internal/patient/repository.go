package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrEmailTaken      = errors.New("email is already registered")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	CreateUser(ctx context.Context, name, email, phone string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// UpsertPatient enriches the registration record for p.UserID, creating
	// it on first registration and updating it on re-submission.
	UpsertPatient(ctx context.Context, p *Patient) (*Patient, error)
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetPatientByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error)
}
