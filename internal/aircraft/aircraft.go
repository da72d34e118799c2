package aircraft

import (
	"strings"
	"time"

	"github.com/fbo-launchpad/fuel-ops/internal"
)

// PlaceholderType marks aircraft records auto-created during order dispatch,
// before anyone has entered real master data for the tail number.
const PlaceholderType = "UNKNOWN"

type Aircraft struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	TailNumber   string    `json:"tail_number" gorm:"column:tail_number;uniqueIndex;not null"`
	AircraftType string    `json:"aircraft_type" gorm:"column:aircraft_type;not null"`
	FuelType     string    `json:"fuel_type" gorm:"column:fuel_type;not null"`
	CustomerID   *int64    `json:"customer_id,omitempty" gorm:"column:customer_id"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Aircraft) TableName() string {
	return "aircraft"
}

type CreateAircraftDTO struct {
	TailNumber   string `json:"tail_number"`
	AircraftType string `json:"aircraft_type"`
	FuelType     string `json:"fuel_type"`
	CustomerID   *int64 `json:"customer_id,omitempty"`
}

func (dto CreateAircraftDTO) Validate() error {
	if strings.TrimSpace(dto.TailNumber) == "" {
		return internal.NewValidationError("tail number is required", internal.ErrCodeMissingField)
	}
	if strings.TrimSpace(dto.AircraftType) == "" {
		return internal.NewValidationError("aircraft type is required", internal.ErrCodeMissingField)
	}
	if strings.TrimSpace(dto.FuelType) == "" {
		return internal.NewValidationError("fuel type is required", internal.ErrCodeMissingField)
	}
	return nil
}

type UpdateAircraftDTO struct {
	AircraftType *string `json:"aircraft_type,omitempty"`
	FuelType     *string `json:"fuel_type,omitempty"`
	CustomerID   *int64  `json:"customer_id,omitempty"`
}
