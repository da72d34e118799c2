package postgres

import (
	"errors"
	"fmt"

	"github.com/fbo-launchpad/fuel-ops/internal"
	"github.com/fbo-launchpad/fuel-ops/internal/aircraft"

	"gorm.io/gorm"
)

// AircraftRepository implements aircraft.Repository using GORM.
type AircraftRepository struct {
	db *gorm.DB
}

func NewAircraftRepository(db *gorm.DB) aircraft.Repository {
	return &AircraftRepository{db: db}
}

func (r *AircraftRepository) Create(a *aircraft.Aircraft) error {
	return r.db.Create(a).Error
}

func (r *AircraftRepository) GetByTailNumber(tailNumber string) (*aircraft.Aircraft, error) {
	var a aircraft.Aircraft
	err := r.db.Where("tail_number = ?", tailNumber).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError(fmt.Sprintf("aircraft %s not found", tailNumber), internal.ErrCodeAircraftNotFound)
		}
		return nil, err
	}
	return &a, nil
}

func (r *AircraftRepository) List() ([]*aircraft.Aircraft, error) {
	var list []*aircraft.Aircraft
	err := r.db.Order("tail_number ASC").Find(&list).Error
	return list, err
}

func (r *AircraftRepository) Update(a *aircraft.Aircraft) error {
	return r.db.Model(&aircraft.Aircraft{}).
		Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"aircraft_type": a.AircraftType,
			"fuel_type":     a.FuelType,
			"customer_id":   a.CustomerID,
		}).Error
}
