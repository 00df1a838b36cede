package discharge

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *DischargeDetail) error
	GetByID(ctx context.Context, id uuid.UUID) (*DischargeDetail, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*DischargeDetail, int, error)
}
