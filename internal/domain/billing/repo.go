package billing

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create inserts and returns Conflict when the appointment is
	// already invoiced.
	Create(ctx context.Context, inv *Invoice) error
	// CreateIfAbsent inserts unless the appointment is already invoiced.
	// It reports whether a row was written; losing the race is not an error.
	CreateIfAbsent(ctx context.Context, inv *Invoice) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error)
	List(ctx context.Context, limit, offset int) ([]*Invoice, int, error)
	// NextInvoiceNumber formats the next sequential INV number.
	NextInvoiceNumber(ctx context.Context) (string, error)
}
