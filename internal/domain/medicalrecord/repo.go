package medicalrecord

import (
	"context"

	"github.com/google/uuid"
)

type ListFilter struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
}

type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Record, int, error)
}
