package postgres

import (
	"errors"
	"fmt"

	"github.com/fbo-launchpad/fuel-ops/internal"
	"github.com/fbo-launchpad/fuel-ops/internal/truck"

	"gorm.io/gorm"
)

// TruckRepository implements truck.Repository using GORM.
type TruckRepository struct {
	db *gorm.DB
}

func NewTruckRepository(db *gorm.DB) truck.Repository {
	return &TruckRepository{db: db}
}

func (r *TruckRepository) Create(t *truck.Truck) error {
	return r.db.Create(t).Error
}

func (r *TruckRepository) GetByID(id int64) (*truck.Truck, error) {
	var t truck.Truck
	err := r.db.Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError(fmt.Sprintf("truck %d not found", id), internal.ErrCodeTruckNotFound)
		}
		return nil, err
	}
	return &t, nil
}

func (r *TruckRepository) List() ([]*truck.Truck, error) {
	var trucks []*truck.Truck
	err := r.db.Order("id ASC").Find(&trucks).Error
	return trucks, err
}

func (r *TruckRepository) Update(t *truck.Truck) error {
	return r.db.Model(&truck.Truck{}).
		Where("id = ?", t.ID).
		Updates(map[string]interface{}{
			"truck_number": t.TruckNumber,
			"fuel_type":    t.FuelType,
			"capacity":     t.Capacity,
			"is_active":    t.IsActive,
		}).Error
}

func (r *TruckRepository) FirstActive() (*truck.Truck, error) {
	var t truck.Truck
	err := r.db.Where("is_active = ?", true).Order("id ASC").First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNoCandidateError("no active trucks available for assignment", internal.ErrCodeNoTruckAvailable)
		}
		return nil, err
	}
	return &t, nil
}
