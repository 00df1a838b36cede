package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/doctor"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

// InvoiceCreator is implemented by the billing service. It runs on the
// approval transition and must tolerate an invoice already existing.
type InvoiceCreator interface {
	AutoCreateOnApproval(ctx context.Context, appt *Appointment) error
}

type Service struct {
	appts    Repository
	patients patient.Repository
	doctors  doctor.Repository
	invoices InvoiceCreator
}

func NewService(appts Repository, patients patient.Repository, doctors doctor.Repository) *Service {
	return &Service{appts: appts, patients: patients, doctors: doctors}
}

// SetInvoiceCreator wires the billing side effect after construction,
// breaking the package cycle between appointments and billing.
func (s *Service) SetInvoiceCreator(ic InvoiceCreator) {
	s.invoices = ic
}

type CreateInput struct {
	PatientID       uuid.UUID `json:"patient_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	Description     string    `json:"description"`
}

// Create books an appointment. Patients book for themselves and start
// unapproved; admin bookings are approved immediately and billed.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*Appointment, error) {
	if err := auth.Require(actor, auth.OpCreateAppointment); err != nil {
		return nil, err
	}
	if in.Description == "" {
		return nil, apperr.Validation("description is required")
	}
	if in.AppointmentDate.IsZero() {
		in.AppointmentDate = time.Now()
	}

	var p *patient.Patient
	var err error
	if actor.Role == auth.RolePatient {
		p, err = s.patients.GetByUserID(ctx, actor.UserID)
	} else {
		if in.PatientID == uuid.Nil {
			return nil, apperr.Validation("patient_id is required")
		}
		p, err = s.patients.GetByID(ctx, in.PatientID)
	}
	if err != nil {
		return nil, err
	}
	d, err := s.doctors.GetByID(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}

	a := &Appointment{
		PatientID:       p.ID,
		DoctorID:        d.ID,
		PatientName:     p.FullName(),
		DoctorName:      d.FullName(),
		AppointmentDate: in.AppointmentDate,
		Description:     in.Description,
		Approved:        actor.Role == auth.RoleAdmin,
	}
	if err := s.appts.Create(ctx, a); err != nil {
		return nil, err
	}
	if a.Approved && s.invoices != nil {
		if err := s.invoices.AutoCreateOnApproval(ctx, a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRead(ctx, actor, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) checkRead(ctx context.Context, actor auth.Actor, a *Appointment) error {
	switch actor.Role {
	case auth.RoleAdmin:
		return nil
	case auth.RoleDoctor:
		d, err := s.doctors.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if d.ID != a.DoctorID {
			return apperr.Authorization("not your appointment")
		}
	case auth.RolePatient:
		p, err := s.patients.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if p.ID != a.PatientID {
			return apperr.Authorization("not your appointment")
		}
	}
	return nil
}

// List scopes results by role: doctors and patients see only their own.
func (s *Service) List(ctx context.Context, actor auth.Actor, f ListFilter, limit, offset int) ([]*Appointment, int, error) {
	switch actor.Role {
	case auth.RoleDoctor:
		d, err := s.doctors.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, 0, err
		}
		f.DoctorID = &d.ID
		f.PatientID = nil
	case auth.RolePatient:
		p, err := s.patients.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, 0, err
		}
		f.PatientID = &p.ID
		f.DoctorID = nil
	}
	return s.appts.List(ctx, f, limit, offset)
}

type UpdateInput struct {
	Description *string `json:"description"`
	Approved    *bool   `json:"approved"`
}

// Update edits description and, for admins, the approval flag. The
// false→true transition creates the appointment-fee invoice exactly once;
// re-approving an approved appointment has no billing side effect.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, in UpdateInput) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRead(ctx, actor, a); err != nil {
		return nil, err
	}

	approving := false
	if in.Approved != nil {
		if err := auth.Require(actor, auth.OpApproveAppointment); err != nil {
			return nil, err
		}
		approving = *in.Approved && !a.Approved
		a.Approved = *in.Approved
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if err := s.appts.Update(ctx, a); err != nil {
		return nil, err
	}
	if approving && s.invoices != nil {
		if err := s.invoices.AutoCreateOnApproval(ctx, a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Approve is the dedicated admin approval endpoint.
func (s *Service) Approve(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Appointment, error) {
	approved := true
	return s.Update(ctx, actor, id, UpdateInput{Approved: &approved})
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := auth.Require(actor, auth.OpDeleteAppointment); err != nil {
		return err
	}
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role == auth.RoleDoctor {
		d, err := s.doctors.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if d.ID != a.DoctorID {
			return apperr.Authorization("not your appointment")
		}
	}
	return s.appts.Delete(ctx, id)
}
