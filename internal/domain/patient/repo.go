package patient

import (
	"context"

	"github.com/google/uuid"
)

type ListFilter struct {
	Approved *bool
	// DoctorID limits results to patients assigned to that doctor.
	DoctorID *uuid.UUID
	Search   string
}

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error)
	// SetCurrentDischarge points the patient at its newest discharge row.
	SetCurrentDischarge(ctx context.Context, patientID, dischargeID uuid.UUID) error
}
