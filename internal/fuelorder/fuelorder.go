package fuelorder

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a fuel order. The normal flow only ever
// moves forward; CANCELLED is an administrative exit from any non-terminal
// state.
type Status string

const (
	StatusDispatched   Status = "DISPATCHED"
	StatusAcknowledged Status = "ACKNOWLEDGED"
	StatusEnRoute      Status = "EN_ROUTE"
	StatusFueling      Status = "FUELING"
	StatusCompleted    Status = "COMPLETED"
	StatusReviewed     Status = "REVIEWED"
	StatusCancelled    Status = "CANCELLED"
)

// AutoAssignID is the reserved technician/truck id meaning "pick one for me".
const AutoAssignID int64 = -1

// technicianTransitions are the edges a technician may walk via the status
// update operation. Completion and review have their own operations.
var technicianTransitions = map[Status]Status{
	StatusDispatched:   StatusAcknowledged,
	StatusAcknowledged: StatusEnRoute,
	StatusEnRoute:      StatusFueling,
}

// OpenStatuses are the statuses that count toward a technician's workload.
var OpenStatuses = []Status{StatusDispatched, StatusAcknowledged, StatusEnRoute, StatusFueling}

var validStatuses = map[Status]bool{
	StatusDispatched:   true,
	StatusAcknowledged: true,
	StatusEnRoute:      true,
	StatusFueling:      true,
	StatusCompleted:    true,
	StatusReviewed:     true,
	StatusCancelled:    true,
}

// ParseStatus validates a raw status string against the enum.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	return s, validStatuses[s]
}

// FuelOrder is the central entity: one fueling job from dispatch to review.
type FuelOrder struct {
	ID                 int64            `json:"id" gorm:"primaryKey"`
	Status             Status           `json:"status" gorm:"not null;default:DISPATCHED"`
	TailNumber         string           `json:"tail_number" gorm:"column:tail_number;not null"`
	CustomerID         *int64           `json:"customer_id,omitempty" gorm:"column:customer_id"`
	FuelType           string           `json:"fuel_type" gorm:"column:fuel_type;not null"`
	AdditiveRequested  bool             `json:"additive_requested" gorm:"column:additive_requested"`
	RequestedAmount    *decimal.Decimal `json:"requested_amount,omitempty" gorm:"column:requested_amount;type:numeric(10,2)"`
	AssignedTechnician int64            `json:"assigned_technician_id" gorm:"column:assigned_technician_id;not null"`
	AssignedTruckID    int64            `json:"assigned_truck_id" gorm:"column:assigned_truck_id;not null"`
	LocationOnRamp     string           `json:"location_on_ramp,omitempty" gorm:"column:location_on_ramp"`
	CSRNotes           string           `json:"csr_notes,omitempty" gorm:"column:csr_notes"`
	LSTNotes           string           `json:"lst_notes,omitempty" gorm:"column:lst_notes"`

	StartMeterReading *decimal.Decimal `json:"start_meter_reading,omitempty" gorm:"column:start_meter_reading;type:numeric(12,2)"`
	EndMeterReading   *decimal.Decimal `json:"end_meter_reading,omitempty" gorm:"column:end_meter_reading;type:numeric(12,2)"`
	GallonsDispensed  *decimal.Decimal `json:"calculated_gallons_dispensed,omitempty" gorm:"column:calculated_gallons_dispensed;type:numeric(12,2)"`

	CreatedAt        time.Time  `json:"created_at" gorm:"column:created_at"`
	DispatchedAt     *time.Time `json:"dispatched_at,omitempty" gorm:"column:dispatched_at"`
	AcknowledgedAt   *time.Time `json:"acknowledged_at,omitempty" gorm:"column:acknowledged_at"`
	EnRouteAt        *time.Time `json:"en_route_at,omitempty" gorm:"column:en_route_at"`
	FuelingStartedAt *time.Time `json:"fueling_started_at,omitempty" gorm:"column:fueling_started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" gorm:"column:completed_at"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty" gorm:"column:reviewed_at"`
	ReviewedByUserID *int64     `json:"reviewed_by_user_id,omitempty" gorm:"column:reviewed_by_user_id"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (FuelOrder) TableName() string {
	return "fuel_orders"
}

// IsTerminal reports whether no further lifecycle operation applies.
func (o *FuelOrder) IsTerminal() bool {
	return o.Status == StatusReviewed || o.Status == StatusCancelled
}

// CanTransitionTo reports whether the technician status-update path allows
// moving this order to the target status.
func (o *FuelOrder) CanTransitionTo(target Status) bool {
	next, ok := technicianTransitions[o.Status]
	return ok && next == target
}

// stampForStatus records the stage timestamp that entering status implies.
func (o *FuelOrder) stampForStatus(status Status, at time.Time) {
	switch status {
	case StatusAcknowledged:
		o.AcknowledgedAt = &at
	case StatusEnRoute:
		o.EnRouteAt = &at
	case StatusFueling:
		o.FuelingStartedAt = &at
	case StatusCompleted:
		o.CompletedAt = &at
	case StatusReviewed:
		o.ReviewedAt = &at
	}
}
