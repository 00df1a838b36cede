package doctor

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/identity"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

type Service struct {
	doctors Repository
	users   *identity.Service
}

func NewService(doctors Repository, users *identity.Service) *Service {
	return &Service{doctors: doctors, users: users}
}

// RegisterInput provisions a user account and its doctor profile together.
type RegisterInput struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Address    string `json:"address"`
	Mobile     string `json:"mobile"`
	Department string `json:"department"`
}

func (s *Service) Register(ctx context.Context, actor auth.Actor, in RegisterInput) (*Doctor, error) {
	if err := auth.Require(actor, auth.OpManageDoctors); err != nil {
		return nil, err
	}
	if in.Address == "" || in.Mobile == "" {
		return nil, apperr.Validation("address and mobile are required")
	}
	if in.Department == "" {
		in.Department = Departments[0]
	}
	if !ValidDepartment(in.Department) {
		return nil, apperr.Validation("unknown department: %s", in.Department)
	}

	u, err := s.users.ProvisionUser(ctx, identity.CreateUserInput{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		Role:      auth.RoleDoctor,
	})
	if err != nil {
		return nil, err
	}

	d := &Doctor{
		UserID:     u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Address:    in.Address,
		Mobile:     in.Mobile,
		Department: in.Department,
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

// GetByUser resolves the profile for a logged-in doctor actor.
func (s *Service) GetByUser(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByUserID(ctx, userID)
}

type UpdateInput struct {
	Address    *string `json:"address"`
	Mobile     *string `json:"mobile"`
	Department *string `json:"department"`
}

// Update lets admins edit any profile and doctors edit their own.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, in UpdateInput) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != auth.RoleAdmin && d.UserID != actor.UserID {
		return nil, apperr.Authorization("cannot modify another doctor's profile")
	}
	if in.Address != nil {
		d.Address = *in.Address
	}
	if in.Mobile != nil {
		d.Mobile = *in.Mobile
	}
	if in.Department != nil {
		if !ValidDepartment(*in.Department) {
			return nil, apperr.Validation("unknown department: %s", *in.Department)
		}
		d.Department = *in.Department
	}
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Approve marks the profile approved. Already-approved is a no-op.
func (s *Service) Approve(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Doctor, error) {
	if err := auth.Require(actor, auth.OpManageDoctors); err != nil {
		return nil, err
	}
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Approved {
		return d, nil
	}
	d.Approved = true
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := auth.Require(actor, auth.OpManageDoctors); err != nil {
		return err
	}
	return s.doctors.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, f, limit, offset)
}

// Dashboard returns workload counts. Doctors see their own board only.
func (s *Service) Dashboard(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Dashboard, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != auth.RoleAdmin && d.UserID != actor.UserID {
		return nil, apperr.Authorization("cannot view another doctor's dashboard")
	}
	return s.doctors.Dashboard(ctx, d.ID)
}
