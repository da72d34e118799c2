package postgres

import (
	"errors"

	"github.com/fbo-launchpad/fuel-ops/internal/rbac"
	"gorm.io/gorm"
)

// Repository implements rbac.Repository using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UserHasPermission tests membership of perm in the union of the permission
// sets of all roles assigned to the user. Exact name match only.
func (r *Repository) UserHasPermission(userID int64, perm rbac.PermissionName) (bool, error) {
	var count int64
	err := r.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ? AND permissions.name = ?", userID, string(perm)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) ListPermissions() ([]rbac.Permission, error) {
	var permissions []rbac.Permission
	err := r.db.Order("name ASC").Find(&permissions).Error
	return permissions, err
}

func (r *Repository) ListRoles() ([]rbac.Role, error) {
	var roles []rbac.Role
	err := r.db.Preload("Permissions").Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *Repository) GetRoleByID(id int64) (*rbac.Role, error) {
	var role rbac.Role
	err := r.db.Preload("Permissions").Where("id = ?", id).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, err
	}
	return &role, nil
}

func (r *Repository) CreateRole(role *rbac.Role) error {
	return r.db.Create(role).Error
}

func (r *Repository) UpdateRole(role *rbac.Role) error {
	return r.db.Omit("Permissions").Save(role).Error
}

func (r *Repository) DeleteRole(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM role_permissions WHERE role_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM user_roles WHERE role_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&rbac.Role{}, id).Error
	})
}

func (r *Repository) AddPermissionToRole(roleID, permissionID int64) error {
	var exists int64
	if err := r.db.Table("role_permissions").
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Count(&exists).Error; err != nil {
		return err
	}
	if exists > 0 {
		return nil
	}
	return r.db.Exec(
		"INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)",
		roleID, permissionID,
	).Error
}

func (r *Repository) RemovePermissionFromRole(roleID, permissionID int64) error {
	return r.db.Exec(
		"DELETE FROM role_permissions WHERE role_id = ? AND permission_id = ?",
		roleID, permissionID,
	).Error
}

// PermissionNamesForUser returns every permission name the user holds through
// any role. The auth middleware uses it to precompute the principal's set.
func (r *Repository) PermissionNamesForUser(userID int64) ([]string, error) {
	var names []string
	err := r.db.Table("permissions").
		Select("permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Order("permissions.name ASC").
		Scan(&names).Error
	return names, err
}
