package rbac

import "github.com/fbo-launchpad/fuel-ops/internal"

type CreateRoleDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d CreateRoleDTO) Validate() error {
	if d.Name == "" {
		return internal.NewValidationError("role name is required", internal.ErrCodeMissingField)
	}
	return nil
}

type UpdateRoleDTO struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}
