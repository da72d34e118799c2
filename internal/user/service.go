package user

import (
	"log/slog"

	"github.com/fbo-launchpad/fuel-ops/internal"
	"github.com/fbo-launchpad/fuel-ops/internal/rbac"
)

// Repository is the user store, including technician qualification queries.
type Repository interface {
	Create(user *User) error
	GetByID(id int64) (*User, error)
	List(limit, offset int) ([]*User, error)
	Update(user *User) error
	SetRoles(userID int64, roleIDs []int64) error
	ActiveUserIDsWithRole(roleName string) ([]int64, error)
	HasActiveRole(userID int64, roleName string) (bool, error)
}

// PasswordHasher hashes plaintext passwords. Satisfied by auth.Service.
type PasswordHasher interface {
	HashPassword(plain string) (string, error)
}

type Service struct {
	repo   Repository
	hasher PasswordHasher
	logger *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, logger: logger}
}

func (s *Service) CreateUser(dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := &User{
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "email", dto.Email, "error", err)
		return nil, internal.NewStorageError("failed to create user", err)
	}

	if len(dto.RoleIDs) > 0 {
		if err := s.repo.SetRoles(u.ID, dto.RoleIDs); err != nil {
			s.logger.Error("failed to assign roles to new user", "user_id", u.ID, "error", err)
			return nil, internal.NewStorageError("failed to assign roles", err)
		}
	}

	return s.GetUser(u.ID)
}

func (s *Service) GetUser(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, internal.NewStorageError("failed to load user", err)
	}
	return u, nil
}

func (s *Service) ListUsers(limit, offset int) ([]*User, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.repo.List(limit, offset)
	if err != nil {
		return nil, internal.NewStorageError("failed to list users", err)
	}
	return users, nil
}

func (s *Service) UpdateUser(id int64, dto UpdateUserDTO) (*User, error) {
	u, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}
	if err := s.repo.Update(u); err != nil {
		return nil, internal.NewStorageError("failed to update user", err)
	}

	if dto.RoleIDs != nil {
		if err := s.repo.SetRoles(id, dto.RoleIDs); err != nil {
			return nil, internal.NewStorageError("failed to update user roles", err)
		}
	}

	return s.GetUser(id)
}

// ActiveTechnicianIDs implements fuelorder.TechnicianDirectory: active users
// carrying the technician role, in id order.
func (s *Service) ActiveTechnicianIDs() ([]int64, error) {
	return s.repo.ActiveUserIDsWithRole(rbac.RoleLST)
}

// IsActiveTechnician implements fuelorder.TechnicianDirectory.
func (s *Service) IsActiveTechnician(id int64) (bool, error) {
	return s.repo.HasActiveRole(id, rbac.RoleLST)
}
