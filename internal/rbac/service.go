package rbac

import (
	"log/slog"

	"github.com/fbo-launchpad/fuel-ops/internal"
)

// Repository defines the data access methods for role and permission
// administration, beyond what the resolver itself needs.
type Repository interface {
	ResolverRepository
	ListPermissions() ([]Permission, error)
	ListRoles() ([]Role, error)
	GetRoleByID(id int64) (*Role, error)
	CreateRole(role *Role) error
	UpdateRole(role *Role) error
	DeleteRole(id int64) error
	AddPermissionToRole(roleID, permissionID int64) error
	RemovePermissionFromRole(roleID, permissionID int64) error
}

// Service handles role and permission administration. Mutations go through
// explicit assignment/removal operations; roles never inherit from each other.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) ListPermissions() ([]Permission, error) {
	permissions, err := s.repo.ListPermissions()
	if err != nil {
		s.logger.Error("failed to list permissions", "error", err)
		return nil, internal.NewStorageError("failed to list permissions", err)
	}
	return permissions, nil
}

func (s *Service) ListRoles() ([]Role, error) {
	roles, err := s.repo.ListRoles()
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, internal.NewStorageError("failed to list roles", err)
	}
	return roles, nil
}

func (s *Service) GetRole(id int64) (*Role, error) {
	role, err := s.repo.GetRoleByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("role not found", internal.ErrCodeRoleNotFound)
	}
	return role, nil
}

func (s *Service) CreateRole(dto CreateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	role := &Role{Name: dto.Name, Description: dto.Description}
	if err := s.repo.CreateRole(role); err != nil {
		s.logger.Error("failed to create role", "error", err, "name", dto.Name)
		return nil, internal.NewStorageError("failed to create role", err)
	}

	s.logger.Info("role created", "role_id", role.ID, "name", role.Name)
	return role, nil
}

func (s *Service) UpdateRole(id int64, dto UpdateRoleDTO) (*Role, error) {
	role, err := s.repo.GetRoleByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("role not found", internal.ErrCodeRoleNotFound)
	}

	if dto.Name != "" {
		role.Name = dto.Name
	}
	if dto.Description != nil {
		role.Description = *dto.Description
	}

	if err := s.repo.UpdateRole(role); err != nil {
		s.logger.Error("failed to update role", "error", err, "role_id", id)
		return nil, internal.NewStorageError("failed to update role", err)
	}
	return role, nil
}

func (s *Service) DeleteRole(id int64) error {
	if _, err := s.repo.GetRoleByID(id); err != nil {
		return internal.NewNotFoundError("role not found", internal.ErrCodeRoleNotFound)
	}
	if err := s.repo.DeleteRole(id); err != nil {
		s.logger.Error("failed to delete role", "error", err, "role_id", id)
		return internal.NewStorageError("failed to delete role", err)
	}
	s.logger.Info("role deleted", "role_id", id)
	return nil
}

func (s *Service) GrantPermission(roleID, permissionID int64) error {
	if _, err := s.repo.GetRoleByID(roleID); err != nil {
		return internal.NewNotFoundError("role not found", internal.ErrCodeRoleNotFound)
	}
	if err := s.repo.AddPermissionToRole(roleID, permissionID); err != nil {
		s.logger.Error("failed to grant permission", "error", err, "role_id", roleID, "permission_id", permissionID)
		return internal.NewStorageError("failed to grant permission", err)
	}
	s.logger.Info("permission granted to role", "role_id", roleID, "permission_id", permissionID)
	return nil
}

func (s *Service) RevokePermission(roleID, permissionID int64) error {
	if _, err := s.repo.GetRoleByID(roleID); err != nil {
		return internal.NewNotFoundError("role not found", internal.ErrCodeRoleNotFound)
	}
	if err := s.repo.RemovePermissionFromRole(roleID, permissionID); err != nil {
		s.logger.Error("failed to revoke permission", "error", err, "role_id", roleID, "permission_id", permissionID)
		return internal.NewStorageError("failed to revoke permission", err)
	}
	s.logger.Info("permission revoked from role", "role_id", roleID, "permission_id", permissionID)
	return nil
}
