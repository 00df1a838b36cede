package discharge

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/doctor"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

type Service struct {
	discharges Repository
	patients   patient.Repository
	doctors    doctor.Repository
}

func NewService(discharges Repository, patients patient.Repository, doctors doctor.Repository) *Service {
	return &Service{discharges: discharges, patients: patients, doctors: doctors}
}

// ChargesInput carries the rates an admin enters at discharge time.
type ChargesInput struct {
	DailyRate    float64 `json:"daily_rate"`
	MedicineCost float64 `json:"medicine_cost"`
	DoctorFee    float64 `json:"doctor_fee"`
	OtherCharge  float64 `json:"other_charge"`
}

// build resolves the patient and its attending doctor and prices the stay
// ending now. The assigned doctor is a hard requirement: without one the
// discharge cannot be attributed and nothing is persisted.
func (s *Service) build(ctx context.Context, patientID uuid.UUID, in ChargesInput) (*DischargeDetail, *patient.Patient, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, nil, err
	}
	if p.AssignedDoctorID == nil {
		return nil, nil, apperr.NotFound("patient has no assigned doctor")
	}
	d, err := s.doctors.GetByID(ctx, *p.AssignedDoctorID)
	if err != nil {
		return nil, nil, err
	}

	release := time.Now()
	days, err := billing.DaysBetween(p.AdmitDate, release)
	if err != nil {
		return nil, nil, err
	}
	roomCharge, total, err := billing.DischargeTotals(in.DailyRate, days, in.MedicineCost, in.DoctorFee, in.OtherCharge)
	if err != nil {
		return nil, nil, err
	}

	detail := &DischargeDetail{
		PatientID:    p.ID,
		DoctorID:     d.ID,
		PatientName:  p.FullName(),
		DoctorName:   d.FullName(),
		Address:      p.Address,
		Mobile:       p.Mobile,
		Symptoms:     p.Symptoms,
		AdmitDate:    p.AdmitDate,
		ReleaseDate:  release,
		DaySpent:     days,
		RoomCharge:   roomCharge,
		MedicineCost: in.MedicineCost,
		DoctorFee:    in.DoctorFee,
		OtherCharge:  in.OtherCharge,
		Total:        total,
	}
	return detail, p, nil
}

// Discharge closes the patient's stay: it prices the stay, stores the
// discharge record and points the patient at it. The patient row is
// otherwise untouched.
func (s *Service) Discharge(ctx context.Context, actor auth.Actor, patientID uuid.UUID, in ChargesInput) (*DischargeDetail, error) {
	if err := auth.Require(actor, auth.OpDischargePatient); err != nil {
		return nil, err
	}
	detail, p, err := s.build(ctx, patientID, in)
	if err != nil {
		return nil, err
	}
	if err := s.discharges.Create(ctx, detail); err != nil {
		return nil, err
	}
	if err := s.patients.SetCurrentDischarge(ctx, p.ID, detail.ID); err != nil {
		return nil, err
	}
	return detail, nil
}

// Preview prices the discharge without persisting anything.
func (s *Service) Preview(ctx context.Context, actor auth.Actor, patientID uuid.UUID, in ChargesInput) (*DischargeDetail, error) {
	if err := auth.Require(actor, auth.OpDischargePatient); err != nil {
		return nil, err
	}
	detail, _, err := s.build(ctx, patientID, in)
	return detail, err
}

// checkBillAccess lets admins see any bill, patients their own, doctors
// the ones they attended.
func (s *Service) checkBillAccess(ctx context.Context, actor auth.Actor, detail *DischargeDetail) error {
	switch actor.Role {
	case auth.RoleAdmin:
		return nil
	case auth.RolePatient:
		p, err := s.patients.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if p.ID != detail.PatientID {
			return apperr.Authorization("not your discharge bill")
		}
	case auth.RoleDoctor:
		d, err := s.doctors.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if d.ID != detail.DoctorID {
			return apperr.Authorization("not your patient's bill")
		}
	}
	return nil
}

// CurrentBill returns the bill the patient's discharge pointer names.
func (s *Service) CurrentBill(ctx context.Context, actor auth.Actor, patientID uuid.UUID) (*DischargeDetail, error) {
	if err := auth.Require(actor, auth.OpViewDischargeBill); err != nil {
		return nil, err
	}
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if p.CurrentDischargeID == nil {
		return nil, apperr.NotFound("patient has not been discharged")
	}
	detail, err := s.discharges.GetByID(ctx, *p.CurrentDischargeID)
	if err != nil {
		return nil, err
	}
	if err := s.checkBillAccess(ctx, actor, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

// WriteBillPDF renders the current bill as a PDF document.
func (s *Service) WriteBillPDF(ctx context.Context, actor auth.Actor, patientID uuid.UUID, w io.Writer) error {
	detail, err := s.CurrentBill(ctx, actor, patientID)
	if err != nil {
		return err
	}
	return RenderBillPDF(detail, w)
}

// History lists every discharge of the patient, newest first.
func (s *Service) History(ctx context.Context, actor auth.Actor, patientID uuid.UUID, limit, offset int) ([]*DischargeDetail, int, error) {
	if err := auth.Require(actor, auth.OpViewDischargeBill); err != nil {
		return nil, 0, err
	}
	if actor.Role == auth.RolePatient {
		p, err := s.patients.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, 0, err
		}
		if p.ID != patientID {
			return nil, 0, apperr.Authorization("not your discharge history")
		}
	}
	return s.discharges.ListByPatient(ctx, patientID, limit, offset)
}
