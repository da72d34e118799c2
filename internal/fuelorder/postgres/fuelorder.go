package postgres

import (
	"errors"
	"fmt"

	"github.com/fbo-launchpad/fuel-ops/internal"
	"github.com/fbo-launchpad/fuel-ops/internal/fuelorder"

	"gorm.io/gorm"
)

// FuelOrderRepository implements fuelorder.Repository using GORM.
type FuelOrderRepository struct {
	db *gorm.DB
}

func NewFuelOrderRepository(db *gorm.DB) fuelorder.Repository {
	return &FuelOrderRepository{db: db}
}

func (r *FuelOrderRepository) Create(order *fuelorder.FuelOrder) error {
	return r.db.Create(order).Error
}

func (r *FuelOrderRepository) GetByID(id int64) (*fuelorder.FuelOrder, error) {
	var order fuelorder.FuelOrder
	err := r.db.Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError(fmt.Sprintf("fuel order %d not found", id), internal.ErrCodeOrderNotFound)
		}
		return nil, err
	}
	return &order, nil
}

func (r *FuelOrderRepository) List(q fuelorder.ListQuery) ([]*fuelorder.FuelOrder, int64, error) {
	query := r.db.Model(&fuelorder.FuelOrder{})

	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}
	if q.AssignedTechnician != nil {
		query = query.Where("assigned_technician_id = ?", *q.AssignedTechnician)
	}
	if q.CustomerID != nil {
		query = query.Where("customer_id = ?", *q.CustomerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*fuelorder.FuelOrder
	err := query.
		Order("created_at DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *FuelOrderRepository) ListForExport(status fuelorder.Status) ([]*fuelorder.FuelOrder, error) {
	var orders []*fuelorder.FuelOrder
	err := r.db.
		Where("status = ?", status).
		Order("reviewed_at DESC").
		Find(&orders).Error
	return orders, err
}

// UpdateStatus writes the whole order conditionally on the status the caller
// last read. Zero matched rows means a concurrent transition won the race.
func (r *FuelOrderRepository) UpdateStatus(order *fuelorder.FuelOrder, expected fuelorder.Status) error {
	result := r.db.Model(&fuelorder.FuelOrder{}).
		Where("id = ? AND status = ?", order.ID, expected).
		Updates(map[string]interface{}{
			"status":                       order.Status,
			"lst_notes":                    order.LSTNotes,
			"start_meter_reading":          order.StartMeterReading,
			"end_meter_reading":            order.EndMeterReading,
			"calculated_gallons_dispensed": order.GallonsDispensed,
			"acknowledged_at":              order.AcknowledgedAt,
			"en_route_at":                  order.EnRouteAt,
			"fueling_started_at":           order.FuelingStartedAt,
			"completed_at":                 order.CompletedAt,
			"reviewed_at":                  order.ReviewedAt,
			"reviewed_by_user_id":          order.ReviewedByUserID,
			"updated_at":                   order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.NewConflictError(
			fmt.Sprintf("fuel order %d changed status concurrently, expected %s", order.ID, expected))
	}
	return nil
}

func (r *FuelOrderRepository) CountOpenByTechnician(technicianIDs []int64) (map[int64]int64, error) {
	type row struct {
		TechnicianID int64
		Total        int64
	}

	var rows []row
	err := r.db.Model(&fuelorder.FuelOrder{}).
		Select("assigned_technician_id AS technician_id, COUNT(*) AS total").
		Where("assigned_technician_id IN ?", technicianIDs).
		Where("status IN ?", fuelorder.OpenStatuses).
		Group("assigned_technician_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int64, len(technicianIDs))
	for _, rw := range rows {
		counts[rw.TechnicianID] = rw.Total
	}
	return counts, nil
}

func (r *FuelOrderRepository) CountByStatus() (map[fuelorder.Status]int64, error) {
	type row struct {
		Status fuelorder.Status
		Total  int64
	}

	var rows []row
	err := r.db.Model(&fuelorder.FuelOrder{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[fuelorder.Status]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Total
	}
	return counts, nil
}
