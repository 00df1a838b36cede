package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/appointment"
	"github.com/hms/hms/internal/domain/doctor"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

type Service struct {
	invoices Repository
	appts    appointment.Repository
	doctors  doctor.Repository
	patients patient.Repository
}

func NewService(invoices Repository, appts appointment.Repository, doctors doctor.Repository, patients patient.Repository) *Service {
	return &Service{invoices: invoices, appts: appts, doctors: doctors, patients: patients}
}

// AutoCreateOnApproval raises the flat appointment-fee invoice when an
// appointment is approved. An existing invoice means an earlier approval
// or a concurrent one already billed; either way this is a silent no-op.
func (s *Service) AutoCreateOnApproval(ctx context.Context, appt *appointment.Appointment) error {
	number, err := s.invoices.NextInvoiceNumber(ctx)
	if err != nil {
		return err
	}
	inv := &Invoice{
		InvoiceNumber:  number,
		AppointmentID:  appt.ID,
		PatientID:      appt.PatientID,
		DoctorID:       appt.DoctorID,
		Items:          []LineItem{{Description: "Appointment Fee", Amount: AppointmentFee}},
		AppointmentFee: AppointmentFee,
		Status:         StatusPending,
	}
	if err := inv.Recompute(); err != nil {
		return err
	}
	_, err = s.invoices.CreateIfAbsent(ctx, inv)
	return err
}

type GenerateInput struct {
	AppointmentID     uuid.UUID  `json:"appointment_id"`
	AdditionalCharges []LineItem `json:"additional_charges"`
	Notes             string     `json:"notes"`
}

// GenerateForAppointment bills an appointment explicitly. Unlike the
// approval hook, an existing invoice is a Conflict here. Approved
// appointments carry the consultation fee on top of the appointment fee.
func (s *Service) GenerateForAppointment(ctx context.Context, actor auth.Actor, appointmentID uuid.UUID, in GenerateInput) (*Invoice, error) {
	if err := auth.Require(actor, auth.OpGenerateInvoice); err != nil {
		return nil, err
	}
	appt, err := s.appts.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if actor.Role == auth.RoleDoctor {
		d, err := s.doctors.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if d.ID != appt.DoctorID {
			return nil, apperr.Authorization("cannot bill another doctor's appointment")
		}
	}

	items := []LineItem{{Description: "Appointment Fee", Amount: AppointmentFee}}
	var consultation float64
	if appt.Approved {
		consultation = ConsultationFee
		items = append(items, LineItem{Description: "Consultation Fee", Amount: ConsultationFee})
	}
	items = append(items, in.AdditionalCharges...)

	number, err := s.invoices.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}
	inv := &Invoice{
		InvoiceNumber:     number,
		AppointmentID:     appt.ID,
		PatientID:         appt.PatientID,
		DoctorID:          appt.DoctorID,
		Items:             items,
		AdditionalCharges: in.AdditionalCharges,
		AppointmentFee:    AppointmentFee,
		ConsultationFee:   consultation,
		Status:            StatusPending,
		Notes:             in.Notes,
	}
	if err := inv.Recompute(); err != nil {
		return nil, err
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// AddCharges appends items to an invoice and recomputes every money column
// from scratch. Doctors may only touch invoices raised under their name.
func (s *Service) AddCharges(ctx context.Context, actor auth.Actor, invoiceID uuid.UUID, charges []LineItem) (*Invoice, error) {
	if err := auth.Require(actor, auth.OpAddInvoiceCharges); err != nil {
		return nil, err
	}
	if len(charges) == 0 {
		return nil, apperr.Validation("no charges supplied")
	}
	for _, ch := range charges {
		if ch.Description == "" {
			return nil, apperr.Validation("charge description is required")
		}
	}

	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if actor.Role == auth.RoleDoctor {
		d, err := s.doctors.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if d.ID != inv.DoctorID {
			return nil, apperr.Authorization("cannot modify another doctor's invoice")
		}
	}

	inv.Items = append(inv.Items, charges...)
	inv.AdditionalCharges = append(inv.AdditionalCharges, charges...)
	if err := inv.Recompute(); err != nil {
		return nil, err
	}
	if err := s.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

type SetStatusInput struct {
	Status      Status     `json:"status"`
	PaymentDate *time.Time `json:"payment_date"`
}

// SetStatus moves the invoice through pending/paid/overdue. Marking paid
// requires a payment date; repeating a transition is a no-op.
func (s *Service) SetStatus(ctx context.Context, actor auth.Actor, invoiceID uuid.UUID, in SetStatusInput) (*Invoice, error) {
	if err := auth.Require(actor, auth.OpSetInvoiceStatus); err != nil {
		return nil, err
	}
	if !ValidStatus(in.Status) {
		return nil, apperr.Validation("unknown status: %s", in.Status)
	}
	if in.Status == StatusPaid && in.PaymentDate == nil {
		return nil, apperr.Validation("payment_date is required when marking paid")
	}

	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == in.Status {
		return inv, nil
	}
	inv.Status = in.Status
	if in.Status == StatusPaid {
		inv.PaymentDate = in.PaymentDate
	} else {
		inv.PaymentDate = nil
	}
	if err := s.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Get returns an invoice, patients restricted to their own.
func (s *Service) Get(ctx context.Context, actor auth.Actor, invoiceID uuid.UUID) (*Invoice, error) {
	if err := auth.Require(actor, auth.OpViewInvoices); err != nil {
		return nil, err
	}
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if actor.Role == auth.RolePatient {
		p, err := s.patients.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if p.ID != inv.PatientID {
			return nil, apperr.Authorization("not your invoice")
		}
	}
	return inv, nil
}

// ListByPatient returns a patient's invoices newest first. Patients may
// only list their own; doctors and admins may list any patient's.
func (s *Service) ListByPatient(ctx context.Context, actor auth.Actor, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	if err := auth.Require(actor, auth.OpViewInvoices); err != nil {
		return nil, 0, err
	}
	if actor.Role == auth.RolePatient {
		p, err := s.patients.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, 0, err
		}
		if p.ID != patientID {
			return nil, 0, apperr.Authorization("not your invoices")
		}
	}
	return s.invoices.ListByPatient(ctx, patientID, limit, offset)
}

// List returns every invoice, admin only.
func (s *Service) List(ctx context.Context, actor auth.Actor, limit, offset int) ([]*Invoice, int, error) {
	if actor.Role != auth.RoleAdmin {
		return nil, 0, apperr.Authorization("admin only")
	}
	return s.invoices.List(ctx, limit, offset)
}
