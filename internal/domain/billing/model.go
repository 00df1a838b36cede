package billing

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// Invoice bills one appointment. The appointment reference is unique, which
// makes the one-invoice-per-appointment guard hold under concurrent
// approvals. Subtotal, tax and total are always recomputed from Items.
type Invoice struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	InvoiceNumber     string     `db:"invoice_number" json:"invoice_number"`
	AppointmentID     uuid.UUID  `db:"appointment_id" json:"appointment_id"`
	PatientID         uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID          uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Items             []LineItem `db:"items" json:"items"`
	AdditionalCharges []LineItem `db:"additional_charges" json:"additional_charges"`
	AppointmentFee    float64    `db:"appointment_fee" json:"appointment_fee"`
	ConsultationFee   float64    `db:"consultation_fee" json:"consultation_fee"`
	Subtotal          float64    `db:"subtotal" json:"subtotal"`
	Tax               float64    `db:"tax" json:"tax"`
	Total             float64    `db:"total" json:"total"`
	Status            Status     `db:"status" json:"status"`
	PaymentDate       *time.Time `db:"payment_date" json:"payment_date"`
	Notes             string     `db:"notes" json:"notes"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// Recompute refreshes the money columns from the current item list.
func (inv *Invoice) Recompute() error {
	subtotal, tax, total, err := InvoiceTotals(inv.Items)
	if err != nil {
		return err
	}
	inv.Subtotal, inv.Tax, inv.Total = subtotal, tax, total
	return nil
}
