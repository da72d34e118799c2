package user

import (
	"strings"

	"github.com/fbo-launchpad/fuel-ops/internal"
)

type CreateUserDTO struct {
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Password string  `json:"password"`
	RoleIDs  []int64 `json:"role_ids,omitempty"`
}

func (dto CreateUserDTO) Validate() error {
	if strings.TrimSpace(dto.Email) == "" {
		return internal.NewValidationError("email is required", internal.ErrCodeMissingField)
	}
	if !strings.Contains(dto.Email, "@") {
		return internal.NewValidationError("email is invalid", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(dto.Name) == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeMissingField)
	}
	if len(dto.Password) < 8 {
		return internal.NewValidationError("password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateUserDTO struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	RoleIDs  []int64 `json:"role_ids,omitempty"`
}
