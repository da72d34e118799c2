package customer

import (
	"strings"
	"time"

	"github.com/fbo-launchpad/fuel-ops/internal"
)

type Customer struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	ContactEmail string    `json:"contact_email,omitempty" gorm:"column:contact_email"`
	ContactPhone string    `json:"contact_phone,omitempty" gorm:"column:contact_phone"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

type CreateCustomerDTO struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
}

func (dto CreateCustomerDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return internal.NewValidationError("customer name is required", internal.ErrCodeMissingField)
	}
	return nil
}

type UpdateCustomerDTO struct {
	Name         *string `json:"name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
}
