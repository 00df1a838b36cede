package patient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/doctor"
	"github.com/hms/hms/internal/domain/identity"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

type Service struct {
	patients Repository
	doctors  doctor.Repository
	users    *identity.Service
}

func NewService(patients Repository, doctors doctor.Repository, users *identity.Service) *Service {
	return &Service{patients: patients, doctors: doctors, users: users}
}

// RegisterInput provisions a user account and its patient profile together.
// AssignedDoctorID is optional at admission.
type RegisterInput struct {
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	Password         string     `json:"password"`
	Address          string     `json:"address"`
	Mobile           string     `json:"mobile"`
	Symptoms         string     `json:"symptoms"`
	AssignedDoctorID *uuid.UUID `json:"assigned_doctor_id"`
}

func (s *Service) Register(ctx context.Context, actor auth.Actor, in RegisterInput) (*Patient, error) {
	if err := auth.Require(actor, auth.OpManagePatients); err != nil {
		return nil, err
	}
	if in.Address == "" || in.Mobile == "" {
		return nil, apperr.Validation("address and mobile are required")
	}
	if in.Symptoms == "" {
		return nil, apperr.Validation("symptoms are required")
	}
	if in.AssignedDoctorID != nil {
		if _, err := s.doctors.GetByID(ctx, *in.AssignedDoctorID); err != nil {
			return nil, err
		}
	}

	u, err := s.users.ProvisionUser(ctx, identity.CreateUserInput{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		Role:      auth.RolePatient,
	})
	if err != nil {
		return nil, err
	}

	p := &Patient{
		UserID:           u.ID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Email:            u.Email,
		Address:          in.Address,
		Mobile:           in.Mobile,
		Symptoms:         in.Symptoms,
		AssignedDoctorID: in.AssignedDoctorID,
		AdmitDate:        time.Now(),
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetByUser(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return s.patients.GetByUserID(ctx, userID)
}

type UpdateInput struct {
	Address  *string `json:"address"`
	Mobile   *string `json:"mobile"`
	Symptoms *string `json:"symptoms"`
}

// Update lets admins edit any profile and patients edit their own.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, in UpdateInput) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != auth.RoleAdmin && p.UserID != actor.UserID {
		return nil, apperr.Authorization("cannot modify another patient's profile")
	}
	if in.Address != nil {
		p.Address = *in.Address
	}
	if in.Mobile != nil {
		p.Mobile = *in.Mobile
	}
	if in.Symptoms != nil {
		p.Symptoms = *in.Symptoms
	}
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Approve(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Patient, error) {
	if err := auth.Require(actor, auth.OpManagePatients); err != nil {
		return nil, err
	}
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Approved {
		return p, nil
	}
	p.Approved = true
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AssignDoctor sets or changes the attending doctor. The doctor must exist.
func (s *Service) AssignDoctor(ctx context.Context, actor auth.Actor, id, doctorID uuid.UUID) (*Patient, error) {
	if err := auth.Require(actor, auth.OpManagePatients); err != nil {
		return nil, err
	}
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.AssignedDoctorID = &doctorID
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Readmit starts a fresh stay: the admit date resets to now and the
// current discharge pointer clears. Prior discharge rows stay as history.
func (s *Service) Readmit(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Patient, error) {
	if err := auth.Require(actor, auth.OpManagePatients); err != nil {
		return nil, err
	}
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.AdmitDate = time.Now()
	p.CurrentDischargeID = nil
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := auth.Require(actor, auth.OpManagePatients); err != nil {
		return err
	}
	return s.patients.Delete(ctx, id)
}

// Dashboard is the patient's landing view: their profile plus the
// attending doctor's contact block, or placeholders when unassigned.
type Dashboard struct {
	Patient          *Patient  `json:"patient"`
	DoctorName       string    `json:"doctor_name"`
	DoctorMobile     string    `json:"doctor_mobile"`
	DoctorAddress    string    `json:"doctor_address"`
	DoctorDepartment string    `json:"doctor_department"`
	Symptoms         string    `json:"symptoms"`
	AdmitDate        time.Time `json:"admit_date"`
}

func (s *Service) Dashboard(ctx context.Context, actor auth.Actor) (*Dashboard, error) {
	p, err := s.patients.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	db := &Dashboard{
		Patient:          p,
		DoctorName:       "Not Assigned",
		DoctorMobile:     "N/A",
		DoctorAddress:    "N/A",
		DoctorDepartment: "N/A",
		Symptoms:         p.Symptoms,
		AdmitDate:        p.AdmitDate,
	}
	if p.AssignedDoctorID != nil {
		d, err := s.doctors.GetByID(ctx, *p.AssignedDoctorID)
		if err != nil {
			return nil, err
		}
		db.DoctorName = d.FirstName + " " + d.LastName
		db.DoctorMobile = d.Mobile
		db.DoctorAddress = d.Address
		db.DoctorDepartment = d.Department
	}
	return db, nil
}

// List scopes results by role: doctors see only their assigned patients.
func (s *Service) List(ctx context.Context, actor auth.Actor, f ListFilter, limit, offset int) ([]*Patient, int, error) {
	if actor.Role == auth.RolePatient {
		return nil, 0, apperr.Authorization("patients cannot list patients")
	}
	if actor.Role == auth.RoleDoctor {
		d, err := s.doctors.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, 0, err
		}
		f.DoctorID = &d.ID
	}
	return s.patients.List(ctx, f, limit, offset)
}
