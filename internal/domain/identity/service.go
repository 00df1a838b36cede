package identity

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

type Service struct {
	users Repository
}

func NewService(users Repository) *Service {
	return &Service{users: users}
}

// CreateUserInput carries the fields an admin supplies when provisioning an
// account. The plaintext password never reaches the store.
type CreateUserInput struct {
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Role      auth.Role `json:"role"`
}

func (in *CreateUserInput) validate() error {
	if in.FirstName == "" || in.LastName == "" {
		return apperr.Validation("first_name and last_name are required")
	}
	if in.Username == "" || in.Email == "" {
		return apperr.Validation("username and email are required")
	}
	if len(in.Password) < 8 {
		return apperr.Validation("password must be at least 8 characters")
	}
	if !auth.ValidRole(in.Role) {
		return apperr.Validation("invalid role: %s", in.Role)
	}
	return nil
}

func (s *Service) CreateUser(ctx context.Context, actor auth.Actor, in CreateUserInput) (*User, error) {
	if err := auth.Require(actor, auth.OpManageUsers); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	u := &User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ProvisionUser creates a user on behalf of another domain (doctor/patient
// registration). The caller is responsible for its own role gate.
func (s *Service) ProvisionUser(ctx context.Context, in CreateUserInput) (*User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	u := &User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

type UpdateUserInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
}

func (s *Service) UpdateUser(ctx context.Context, actor auth.Actor, id uuid.UUID, in UpdateUserInput) (*User, error) {
	// Admins may edit anyone; everyone may edit themselves.
	if actor.Role != auth.RoleAdmin && actor.UserID != id {
		return nil, apperr.Authorization("cannot modify another user's account")
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Password != nil {
		if len(*in.Password) < 8 {
			return nil, apperr.Validation("password must be at least 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperr.Internal("hash password", err)
		}
		u.PasswordHash = string(hash)
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser removes the account; the role profile goes with it via the
// cascading foreign key.
func (s *Service) DeleteUser(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := auth.Require(actor, auth.OpManageUsers); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, actor auth.Actor, limit, offset int) ([]*User, int, error) {
	if err := auth.Require(actor, auth.OpManageUsers); err != nil {
		return nil, 0, err
	}
	return s.users.List(ctx, limit, offset)
}

// AdminDashboard returns the approved/pending counts per entity, admin only.
func (s *Service) AdminDashboard(ctx context.Context, actor auth.Actor) (*AdminDashboard, error) {
	if err := auth.Require(actor, auth.OpManageUsers); err != nil {
		return nil, err
	}
	return s.users.AdminDashboard(ctx)
}
