package postgres

import (
	"errors"
	"fmt"

	"github.com/fbo-launchpad/fuel-ops/internal"
	"github.com/fbo-launchpad/fuel-ops/internal/rbac"
	"github.com/fbo-launchpad/fuel-ops/internal/user"

	"gorm.io/gorm"
)

// UserRepository implements user.Repository using GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *user.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var u user.User
	err := r.db.Preload("Roles").Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError(fmt.Sprintf("user %d not found", id), internal.ErrCodeUserNotFound)
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) List(limit, offset int) ([]*user.User, error) {
	var users []*user.User
	err := r.db.Preload("Roles").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, err
}

func (r *UserRepository) Update(u *user.User) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"name":      u.Name,
			"is_active": u.IsActive,
		}).Error
}

// SetRoles replaces the user's role set atomically.
func (r *UserRepository) SetRoles(userID int64, roleIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM user_roles WHERE user_id = ?", userID).Error; err != nil {
			return err
		}
		for _, roleID := range roleIDs {
			var count int64
			if err := tx.Model(&rbac.Role{}).Where("id = ?", roleID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return internal.NewNotFoundError(fmt.Sprintf("role %d not found", roleID), internal.ErrCodeRoleNotFound)
			}
			if err := tx.Exec("INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", userID, roleID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepository) ActiveUserIDsWithRole(roleName string) ([]int64, error) {
	var ids []int64
	err := r.db.Table("users").
		Select("users.id").
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ? AND users.is_active = ?", roleName, true).
		Order("users.id ASC").
		Scan(&ids).Error
	return ids, err
}

func (r *UserRepository) HasActiveRole(userID int64, roleName string) (bool, error) {
	var count int64
	err := r.db.Table("users").
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("users.id = ? AND roles.name = ? AND users.is_active = ?", userID, roleName, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
