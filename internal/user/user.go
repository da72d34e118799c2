package user

import (
	"time"

	"github.com/fbo-launchpad/fuel-ops/internal/rbac"
)

// User is the persisted account record. The auth package carries its own
// lightweight view of this for request contexts.
type User struct {
	ID           int64       `json:"id" gorm:"primaryKey"`
	Email        string      `json:"email" gorm:"uniqueIndex;not null"`
	Name         string      `json:"name" gorm:"not null"`
	PasswordHash string      `json:"-" gorm:"column:password_hash;not null"`
	IsActive     bool        `json:"is_active" gorm:"column:is_active;default:true"`
	Roles        []rbac.Role `json:"roles,omitempty" gorm:"many2many:user_roles"`
	CreatedAt    time.Time   `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time   `json:"updated_at" gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(name string) bool {
	for _, role := range u.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}
