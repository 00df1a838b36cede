package appointment

import (
	"context"

	"github.com/google/uuid"
)

type ListFilter struct {
	Approved  *bool
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
}

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Appointment, int, error)
}
