package fuelorder

import (
	"github.com/fbo-launchpad/fuel-ops/internal"

	"github.com/shopspring/decimal"
)

// CreateOrderDTO is the request payload for creating a fuel order. Technician
// and truck ids accept the auto-assign sentinel.
type CreateOrderDTO struct {
	TailNumber         string           `json:"tail_number"`
	CustomerID         *int64           `json:"customer_id,omitempty"`
	FuelType           string           `json:"fuel_type"`
	AdditiveRequested  bool             `json:"additive_requested"`
	RequestedAmount    *decimal.Decimal `json:"requested_amount,omitempty"`
	AssignedTechnician int64            `json:"assigned_technician_id"`
	AssignedTruckID    int64            `json:"assigned_truck_id"`
	LocationOnRamp     string           `json:"location_on_ramp,omitempty"`
	CSRNotes           string           `json:"csr_notes,omitempty"`
}

func (dto CreateOrderDTO) Validate() error {
	if dto.TailNumber == "" {
		return internal.NewValidationError("tail number is required", internal.ErrCodeMissingField)
	}
	if dto.FuelType == "" {
		return internal.NewValidationError("fuel type is required", internal.ErrCodeMissingField)
	}
	if dto.AssignedTechnician == 0 {
		return internal.NewValidationError("assigned technician id is required", internal.ErrCodeMissingField)
	}
	if dto.AssignedTruckID == 0 {
		return internal.NewValidationError("assigned truck id is required", internal.ErrCodeMissingField)
	}
	if dto.AssignedTechnician < 0 && dto.AssignedTechnician != AutoAssignID {
		return internal.NewValidationError("assigned technician id is invalid", internal.ErrCodeValidationFailed)
	}
	if dto.AssignedTruckID < 0 && dto.AssignedTruckID != AutoAssignID {
		return internal.NewValidationError("assigned truck id is invalid", internal.ErrCodeValidationFailed)
	}
	if dto.RequestedAmount != nil && dto.RequestedAmount.IsNegative() {
		return internal.NewValidationError("requested amount cannot be negative", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateStatusDTO carries the technician's declared next status.
type UpdateStatusDTO struct {
	Status string `json:"status"`
}

func (dto UpdateStatusDTO) Validate() error {
	if dto.Status == "" {
		return internal.NewValidationError("status is required", internal.ErrCodeMissingField)
	}
	if _, ok := ParseStatus(dto.Status); !ok {
		return internal.NewValidationError("unknown status: "+dto.Status, internal.ErrCodeInvalidStatusValue)
	}
	return nil
}

// CompleteOrderDTO carries the meter readings submitted at the end of fueling.
type CompleteOrderDTO struct {
	StartMeterReading decimal.Decimal `json:"start_meter_reading"`
	EndMeterReading   decimal.Decimal `json:"end_meter_reading"`
	LSTNotes          string          `json:"lst_notes,omitempty"`
}

func (dto CompleteOrderDTO) Validate() error {
	if dto.StartMeterReading.IsNegative() || dto.EndMeterReading.IsNegative() {
		return internal.NewValidationError("meter readings cannot be negative", internal.ErrCodeInvalidMeterReadings)
	}
	if dto.EndMeterReading.LessThan(dto.StartMeterReading) {
		return internal.NewValidationError("end meter reading must be greater than or equal to start meter reading", internal.ErrCodeInvalidMeterReadings)
	}
	return nil
}

// ListFilters are the caller-supplied query parameters for listing orders.
// Visibility scoping is applied on top by the service.
type ListFilters struct {
	Status     string
	CustomerID *int64
	Page       int
	PerPage    int
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// normalize clamps pagination into the supported window.
func (f *ListFilters) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = defaultPerPage
	}
	if f.PerPage > maxPerPage {
		f.PerPage = maxPerPage
	}
}

// OrderPage is one page of list results.
type OrderPage struct {
	Orders  []*FuelOrder `json:"orders"`
	Total   int64        `json:"total"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
}
