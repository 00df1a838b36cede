package prescription

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/doctor"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

type Service struct {
	rx       Repository
	patients patient.Repository
	doctors  doctor.Repository
}

func NewService(rx Repository, patients patient.Repository, doctors doctor.Repository) *Service {
	return &Service{rx: rx, patients: patients, doctors: doctors}
}

type CreateInput struct {
	PatientID     uuid.UUID    `json:"patient_id"`
	AppointmentID *uuid.UUID   `json:"appointment_id"`
	Medications   []Medication `json:"medications"`
	Diagnosis     string       `json:"diagnosis"`
	Symptoms      string       `json:"symptoms"`
	Notes         string       `json:"notes"`
	FollowUpDate  *time.Time   `json:"follow_up_date"`
}

// Create issues a prescription under the acting doctor's name.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*Prescription, error) {
	if err := auth.Require(actor, auth.OpWriteClinical); err != nil {
		return nil, err
	}
	if in.Diagnosis == "" {
		return nil, apperr.Validation("diagnosis is required")
	}
	if len(in.Medications) == 0 {
		return nil, apperr.Validation("at least one medication is required")
	}
	for _, m := range in.Medications {
		if m.Name == "" || m.Dosage == "" {
			return nil, apperr.Validation("medication name and dosage are required")
		}
	}
	d, err := s.doctors.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.patients.GetByID(ctx, in.PatientID); err != nil {
		return nil, err
	}

	number, err := s.rx.NextNumber(ctx)
	if err != nil {
		return nil, err
	}
	p := &Prescription{
		PrescriptionNumber: number,
		PatientID:          in.PatientID,
		DoctorID:           d.ID,
		AppointmentID:      in.AppointmentID,
		Medications:        in.Medications,
		Diagnosis:          in.Diagnosis,
		Symptoms:           in.Symptoms,
		Notes:              in.Notes,
		FollowUpDate:       in.FollowUpDate,
	}
	if err := s.rx.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Prescription, error) {
	p, err := s.rx.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRead(ctx, actor, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) checkRead(ctx context.Context, actor auth.Actor, p *Prescription) error {
	switch actor.Role {
	case auth.RoleAdmin:
		return nil
	case auth.RoleDoctor:
		d, err := s.doctors.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if d.ID != p.DoctorID {
			return apperr.Authorization("not your prescription")
		}
	case auth.RolePatient:
		pat, err := s.patients.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if pat.ID != p.PatientID {
			return apperr.Authorization("not your prescription")
		}
	}
	return nil
}

type UpdateInput struct {
	Medications  []Medication `json:"medications"`
	Diagnosis    *string      `json:"diagnosis"`
	Symptoms     *string      `json:"symptoms"`
	Notes        *string      `json:"notes"`
	FollowUpDate *time.Time   `json:"follow_up_date"`
}

// Update edits a prescription; only the issuing doctor or an admin.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, in UpdateInput) (*Prescription, error) {
	if err := auth.Require(actor, auth.OpWriteClinical); err != nil {
		return nil, err
	}
	p, err := s.rx.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == auth.RoleDoctor {
		d, err := s.doctors.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if d.ID != p.DoctorID {
			return nil, apperr.Authorization("not your prescription")
		}
	}
	if in.Medications != nil {
		for _, m := range in.Medications {
			if m.Name == "" || m.Dosage == "" {
				return nil, apperr.Validation("medication name and dosage are required")
			}
		}
		p.Medications = in.Medications
	}
	if in.Diagnosis != nil {
		p.Diagnosis = *in.Diagnosis
	}
	if in.Symptoms != nil {
		p.Symptoms = *in.Symptoms
	}
	if in.Notes != nil {
		p.Notes = *in.Notes
	}
	if in.FollowUpDate != nil {
		p.FollowUpDate = in.FollowUpDate
	}
	if err := s.rx.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := auth.Require(actor, auth.OpWriteClinical); err != nil {
		return err
	}
	p, err := s.rx.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role == auth.RoleDoctor {
		d, err := s.doctors.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if d.ID != p.DoctorID {
			return apperr.Authorization("not your prescription")
		}
	}
	return s.rx.Delete(ctx, id)
}

// List scopes by role: doctors see what they issued, patients their own.
func (s *Service) List(ctx context.Context, actor auth.Actor, f ListFilter, limit, offset int) ([]*Prescription, int, error) {
	switch actor.Role {
	case auth.RoleDoctor:
		d, err := s.doctors.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, 0, err
		}
		f.DoctorID = &d.ID
	case auth.RolePatient:
		p, err := s.patients.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, 0, err
		}
		f.PatientID = &p.ID
		f.DoctorID = nil
	}
	return s.rx.List(ctx, f, limit, offset)
}
