package truck

import (
	"strings"
	"time"

	"github.com/fbo-launchpad/fuel-ops/internal"
)

// Truck is a fuel truck on the ramp. Only active trucks are eligible for
// order assignment.
type Truck struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	TruckNumber string    `json:"truck_number" gorm:"column:truck_number;uniqueIndex;not null"`
	FuelType    string    `json:"fuel_type" gorm:"column:fuel_type;not null"`
	Capacity    *float64  `json:"capacity,omitempty" gorm:"column:capacity"`
	IsActive    bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Truck) TableName() string {
	return "fuel_trucks"
}

type CreateTruckDTO struct {
	TruckNumber string   `json:"truck_number"`
	FuelType    string   `json:"fuel_type"`
	Capacity    *float64 `json:"capacity,omitempty"`
}

func (dto CreateTruckDTO) Validate() error {
	if strings.TrimSpace(dto.TruckNumber) == "" {
		return internal.NewValidationError("truck number is required", internal.ErrCodeMissingField)
	}
	if strings.TrimSpace(dto.FuelType) == "" {
		return internal.NewValidationError("fuel type is required", internal.ErrCodeMissingField)
	}
	return nil
}

type UpdateTruckDTO struct {
	TruckNumber *string  `json:"truck_number,omitempty"`
	FuelType    *string  `json:"fuel_type,omitempty"`
	Capacity    *float64 `json:"capacity,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}
