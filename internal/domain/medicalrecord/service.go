package medicalrecord

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
	records  Repository
	patients patient.Repository
	doctors  doctor.Repository
}

func NewService(records Repository, patients patient.Repository, doctors doctor.Repository) *Service {
	return &Service{records: records, patients: patients, doctors: doctors}
}

type CreateInput struct {
	PatientID    uuid.UUID  `json:"patient_id"`
	Diagnosis    string     `json:"diagnosis"`
	Treatment    string     `json:"treatment"`
	Prescription string     `json:"prescription"`
	Notes        string     `json:"notes"`
	Vitals       VitalSigns `json:"vital_signs"`
	FollowUpDate *time.Time `json:"follow_up_date"`
}

// Create writes a clinical record under the acting doctor's name.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*Record, error) {
	if err := auth.Require(actor, auth.OpWriteClinical); err != nil {
		return nil, err
	}
	if in.Diagnosis == "" || in.Treatment == "" {
		return nil, apperr.Validation("diagnosis and treatment are required")
	}
	d, err := s.doctors.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.patients.GetByID(ctx, in.PatientID); err != nil {
		return nil, err
	}

	rec := &Record{
		PatientID:    in.PatientID,
		DoctorID:     d.ID,
		Diagnosis:    in.Diagnosis,
		Treatment:    in.Treatment,
		Prescription: in.Prescription,
		Notes:        in.Notes,
		Vitals:       in.Vitals,
		FollowUpDate: in.FollowUpDate,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Record, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRead(ctx, actor, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) checkRead(ctx context.Context, actor auth.Actor, rec *Record) error {
	switch actor.Role {
	case auth.RoleAdmin:
		return nil
	case auth.RoleDoctor:
		d, err := s.doctors.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if d.ID != rec.DoctorID {
			return apperr.Authorization("not your record")
		}
	case auth.RolePatient:
		p, err := s.patients.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if p.ID != rec.PatientID {
			return apperr.Authorization("not your record")
		}
	}
	return nil
}

type UpdateInput struct {
	Diagnosis    *string     `json:"diagnosis"`
	Treatment    *string     `json:"treatment"`
	Prescription *string     `json:"prescription"`
	Notes        *string     `json:"notes"`
	Vitals       *VitalSigns `json:"vital_signs"`
	FollowUpDate *time.Time  `json:"follow_up_date"`
}

// Update edits a record; only the authoring doctor or an admin may edit.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, in UpdateInput) (*Record, error) {
	if err := auth.Require(actor, auth.OpWriteClinical); err != nil {
		return nil, err
	}
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == auth.RoleDoctor {
		d, err := s.doctors.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if d.ID != rec.DoctorID {
			return nil, apperr.Authorization("not your record")
		}
	}
	if in.Diagnosis != nil {
		rec.Diagnosis = *in.Diagnosis
	}
	if in.Treatment != nil {
		rec.Treatment = *in.Treatment
	}
	if in.Prescription != nil {
		rec.Prescription = *in.Prescription
	}
	if in.Notes != nil {
		rec.Notes = *in.Notes
	}
	if in.Vitals != nil {
		rec.Vitals = *in.Vitals
	}
	if in.FollowUpDate != nil {
		rec.FollowUpDate = in.FollowUpDate
	}
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := auth.Require(actor, auth.OpWriteClinical); err != nil {
		return err
	}
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role == auth.RoleDoctor {
		d, err := s.doctors.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if d.ID != rec.DoctorID {
			return apperr.Authorization("not your record")
		}
	}
	return s.records.Delete(ctx, id)
}

// List scopes by role: doctors see records they authored, patients their own.
func (s *Service) List(ctx context.Context, actor auth.Actor, f ListFilter, limit, offset int) ([]*Record, int, error) {
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
	return s.records.List(ctx, f, limit, offset)
}
