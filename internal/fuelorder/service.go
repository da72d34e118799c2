package fuelorder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fbo-launchpad/fuel-ops/internal"
	"github.com/fbo-launchpad/fuel-ops/internal/rbac"

	"github.com/shopspring/decimal"
)

// Repository is the order store. Status-changing writes are conditional on
// the status the caller last observed; a write that matches zero rows lost a
// race and is reported as such, never silently applied.
type Repository interface {
	Create(order *FuelOrder) error
	GetByID(id int64) (*FuelOrder, error)
	List(q ListQuery) ([]*FuelOrder, int64, error)
	ListForExport(status Status) ([]*FuelOrder, error)
	UpdateStatus(order *FuelOrder, expected Status) error
	CountOpenByTechnician(technicianIDs []int64) (map[int64]int64, error)
	CountByStatus() (map[Status]int64, error)
}

// ListQuery is the repository-level shape of a scoped, filtered list request.
type ListQuery struct {
	Status             *Status
	AssignedTechnician *int64
	CustomerID         *int64
	Limit              int
	Offset             int
}

// PermissionGate answers authorization questions for a principal. Satisfied
// by rbac.Resolver.
type PermissionGate interface {
	HasPermission(ctx context.Context, principal rbac.Principal, perm rbac.PermissionName) (bool, error)
	Require(ctx context.Context, principal rbac.Principal, perm rbac.PermissionName) error
}

// TechnicianDirectory exposes the slice of user data the order engine needs.
type TechnicianDirectory interface {
	ActiveTechnicianIDs() ([]int64, error)
	IsActiveTechnician(id int64) (bool, error)
}

// TruckDirectory exposes the slice of truck data the order engine needs.
type TruckDirectory interface {
	FirstActiveTruckID() (int64, error)
	IsActiveTruck(id int64) (bool, error)
}

// AircraftDirectory lets order creation look up and lazily register aircraft.
type AircraftDirectory interface {
	Exists(tailNumber string) (bool, error)
	CreatePlaceholder(tailNumber, fuelType string) error
}

// Service owns the fuel order lifecycle: creation with auto-assignment,
// technician status progression, completion, review and cancellation.
type Service struct {
	repo        Repository
	permissions PermissionGate
	technicians TechnicianDirectory
	trucks      TruckDirectory
	aircraft    AircraftDirectory
	logger      *slog.Logger
}

func NewService(repo Repository, permissions PermissionGate, technicians TechnicianDirectory, trucks TruckDirectory, aircraft AircraftDirectory, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		permissions: permissions,
		technicians: technicians,
		trucks:      trucks,
		aircraft:    aircraft,
		logger:      logger,
	}
}

// CreateOrder dispatches a new order. Sentinel technician/truck ids are
// resolved by the assignment selectors; a missing aircraft record is created
// as a placeholder rather than failing the order.
func (s *Service) CreateOrder(ctx context.Context, principal rbac.Principal, dto CreateOrderDTO) (*FuelOrder, error) {
	if err := s.permissions.Require(ctx, principal, rbac.PermCreateOrder); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	technicianID := dto.AssignedTechnician
	if technicianID == AutoAssignID {
		selected, err := s.SelectTechnician()
		if err != nil {
			return nil, err
		}
		technicianID = selected
		s.logger.Info("auto-assigned technician", "technician_id", technicianID)
	} else {
		active, err := s.technicians.IsActiveTechnician(technicianID)
		if err != nil {
			return nil, internal.NewStorageError("failed to look up technician", err)
		}
		if !active {
			return nil, internal.NewValidationError(
				fmt.Sprintf("technician %d is not an active technician", technicianID),
				internal.ErrCodeValidationFailed)
		}
	}

	truckID := dto.AssignedTruckID
	if truckID == AutoAssignID {
		selected, err := s.SelectTruck()
		if err != nil {
			return nil, err
		}
		truckID = selected
		s.logger.Info("auto-assigned truck", "truck_id", truckID)
	} else {
		active, err := s.trucks.IsActiveTruck(truckID)
		if err != nil {
			return nil, internal.NewStorageError("failed to look up truck", err)
		}
		if !active {
			return nil, internal.NewValidationError(
				fmt.Sprintf("truck %d is not an active truck", truckID),
				internal.ErrCodeValidationFailed)
		}
	}

	if err := s.ensureAircraft(dto.TailNumber, dto.FuelType); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &FuelOrder{
		Status:             StatusDispatched,
		TailNumber:         dto.TailNumber,
		CustomerID:         dto.CustomerID,
		FuelType:           dto.FuelType,
		AdditiveRequested:  dto.AdditiveRequested,
		RequestedAmount:    dto.RequestedAmount,
		AssignedTechnician: technicianID,
		AssignedTruckID:    truckID,
		LocationOnRamp:     dto.LocationOnRamp,
		CSRNotes:           dto.CSRNotes,
		CreatedAt:          now,
		DispatchedAt:       &now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(order); err != nil {
		s.logger.Error("failed to create fuel order", "error", err)
		return nil, internal.NewStorageError("failed to create fuel order", err)
	}

	s.logger.Info("fuel order created", "order_id", order.ID, "technician_id", technicianID, "truck_id", truckID)
	return order, nil
}

// ensureAircraft registers a placeholder aircraft when the tail number is
// unknown. Order creation never blocks on missing master data.
func (s *Service) ensureAircraft(tailNumber, fuelType string) error {
	exists, err := s.aircraft.Exists(tailNumber)
	if err != nil {
		return internal.NewStorageError("failed to look up aircraft", err)
	}
	if exists {
		return nil
	}

	s.logger.Info("aircraft not found, creating placeholder", "tail_number", tailNumber)
	if err := s.aircraft.CreatePlaceholder(tailNumber, fuelType); err != nil {
		return internal.NewStorageError("failed to create placeholder aircraft", err)
	}
	return nil
}

// ListOrders returns one page of orders visible to the principal. Holders of
// VIEW_ALL_ORDERS see everything; everyone else is scoped to their own
// assignments.
func (s *Service) ListOrders(ctx context.Context, principal rbac.Principal, filters ListFilters) (*OrderPage, error) {
	q := ListQuery{CustomerID: filters.CustomerID}

	if filters.Status != "" {
		status, ok := ParseStatus(filters.Status)
		if !ok {
			return nil, internal.NewValidationError("unknown status: "+filters.Status, internal.ErrCodeInvalidStatusValue)
		}
		q.Status = &status
	}

	viewAll, err := s.permissions.HasPermission(ctx, principal, rbac.PermViewAllOrders)
	if err != nil {
		return nil, err
	}
	if !viewAll {
		if err := s.permissions.Require(ctx, principal, rbac.PermViewAssignedOrders); err != nil {
			return nil, err
		}
		assignee := principal.ID
		q.AssignedTechnician = &assignee
	}

	filters.normalize()
	q.Limit = filters.PerPage
	q.Offset = (filters.Page - 1) * filters.PerPage

	orders, total, err := s.repo.List(q)
	if err != nil {
		s.logger.Error("failed to list fuel orders", "error", err)
		return nil, internal.NewStorageError("failed to list fuel orders", err)
	}

	return &OrderPage{
		Orders:  orders,
		Total:   total,
		Page:    filters.Page,
		PerPage: filters.PerPage,
	}, nil
}

// GetOrderByID applies the same visibility rule as ListOrders. An order that
// exists but is outside the principal's scope is a Forbidden, not a NotFound.
func (s *Service) GetOrderByID(ctx context.Context, principal rbac.Principal, orderID int64) (*FuelOrder, error) {
	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}

	viewAll, err := s.permissions.HasPermission(ctx, principal, rbac.PermViewAllOrders)
	if err != nil {
		return nil, err
	}
	if viewAll {
		return order, nil
	}

	if order.AssignedTechnician != principal.ID {
		return nil, internal.NewForbiddenError("order is not visible to this user", internal.ErrCodeMissingPermission)
	}
	if err := s.permissions.Require(ctx, principal, rbac.PermViewAssignedOrders); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus advances an order along one of the three technician-declared
// edges. Only the assigned technician may call it; status progression is
// technician ground truth, dispatchers included out.
func (s *Service) UpdateStatus(ctx context.Context, principal rbac.Principal, orderID int64, dto UpdateStatusDTO) (*FuelOrder, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	target, _ := ParseStatus(dto.Status)

	if err := s.permissions.Require(ctx, principal, rbac.PermUpdateOwnOrderStatus); err != nil {
		return nil, err
	}

	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.AssignedTechnician != principal.ID {
		return nil, internal.NewForbiddenError("only the assigned technician may update order status", internal.ErrCodeNotOrderAssignee)
	}
	if !order.CanTransitionTo(target) {
		return nil, internal.NewInvalidTransitionError(
			fmt.Sprintf("cannot transition order from %s to %s", order.Status, target))
	}

	expected := order.Status
	order.Status = target
	order.stampForStatus(target, time.Now().UTC())

	if err := s.persistTransition(order, expected); err != nil {
		return nil, err
	}

	s.logger.Info("fuel order status updated", "order_id", order.ID, "from", expected, "to", target)
	return order, nil
}

// CompleteFueling records the meter readings and moves a FUELING order to
// COMPLETED, computing gallons dispensed from the readings.
func (s *Service) CompleteFueling(ctx context.Context, principal rbac.Principal, orderID int64, dto CompleteOrderDTO) (*FuelOrder, error) {
	if err := s.permissions.Require(ctx, principal, rbac.PermCompleteOwnOrder); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.AssignedTechnician != principal.ID {
		return nil, internal.NewForbiddenError("only the assigned technician may complete this order", internal.ErrCodeNotOrderAssignee)
	}
	if order.Status != StatusFueling {
		return nil, internal.NewInvalidStateError(
			fmt.Sprintf("order must be in %s status to be completed, currently %s", StatusFueling, order.Status))
	}

	gallons := dto.EndMeterReading.Sub(dto.StartMeterReading)

	expected := order.Status
	order.Status = StatusCompleted
	order.StartMeterReading = decimalPtr(dto.StartMeterReading)
	order.EndMeterReading = decimalPtr(dto.EndMeterReading)
	order.GallonsDispensed = decimalPtr(gallons)
	if dto.LSTNotes != "" {
		order.LSTNotes = dto.LSTNotes
	}
	order.stampForStatus(StatusCompleted, time.Now().UTC())

	if err := s.persistTransition(order, expected); err != nil {
		return nil, err
	}

	s.logger.Info("fuel order completed", "order_id", order.ID, "gallons_dispensed", gallons.String())
	return order, nil
}

// Review signs off a COMPLETED order, recording the reviewer.
func (s *Service) Review(ctx context.Context, principal rbac.Principal, orderID int64) (*FuelOrder, error) {
	if err := s.permissions.Require(ctx, principal, rbac.PermReviewOrders); err != nil {
		return nil, err
	}

	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != StatusCompleted {
		return nil, internal.NewInvalidStateError(
			fmt.Sprintf("order must be in %s status to be reviewed, currently %s", StatusCompleted, order.Status))
	}

	expected := order.Status
	order.Status = StatusReviewed
	reviewer := principal.ID
	order.ReviewedByUserID = &reviewer
	order.stampForStatus(StatusReviewed, time.Now().UTC())

	if err := s.persistTransition(order, expected); err != nil {
		return nil, err
	}

	s.logger.Info("fuel order reviewed", "order_id", order.ID, "reviewed_by", reviewer)
	return order, nil
}

// Cancel is the administrative escape hatch out of any non-terminal state.
func (s *Service) Cancel(ctx context.Context, principal rbac.Principal, orderID int64) (*FuelOrder, error) {
	if err := s.permissions.Require(ctx, principal, rbac.PermDeleteFuelOrder); err != nil {
		return nil, err
	}

	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.IsTerminal() {
		return nil, internal.NewInvalidStateError(
			fmt.Sprintf("order in %s status cannot be cancelled", order.Status))
	}

	expected := order.Status
	order.Status = StatusCancelled

	if err := s.persistTransition(order, expected); err != nil {
		return nil, err
	}

	s.logger.Info("fuel order cancelled", "order_id", order.ID, "cancelled_by", principal.ID)
	return order, nil
}

// StatusCounts returns the number of orders in each status.
func (s *Service) StatusCounts(ctx context.Context, principal rbac.Principal) (map[Status]int64, error) {
	if err := s.permissions.Require(ctx, principal, rbac.PermViewOrderStats); err != nil {
		return nil, err
	}

	counts, err := s.repo.CountByStatus()
	if err != nil {
		s.logger.Error("failed to count fuel orders by status", "error", err)
		return nil, internal.NewStorageError("failed to count fuel orders", err)
	}
	return counts, nil
}

func (s *Service) getOrder(orderID int64) (*FuelOrder, error) {
	order, err := s.repo.GetByID(orderID)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to load fuel order", "order_id", orderID, "error", err)
		return nil, internal.NewStorageError("failed to load fuel order", err)
	}
	return order, nil
}

// persistTransition commits a status change conditionally on the status the
// caller observed. A zero-row match means a concurrent writer got there first.
func (s *Service) persistTransition(order *FuelOrder, expected Status) error {
	order.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateStatus(order, expected); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return appErr
		}
		s.logger.Error("failed to persist status transition", "order_id", order.ID, "error", err)
		return internal.NewStorageError("failed to persist status transition", err)
	}
	return nil
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
