package postgres

import (
	"errors"
	"fmt"

	"github.com/fbo-launchpad/fuel-ops/internal"
	"github.com/fbo-launchpad/fuel-ops/internal/customer"

	"gorm.io/gorm"
)

// CustomerRepository implements customer.Repository using GORM.
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) customer.Repository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(c *customer.Customer) error {
	return r.db.Create(c).Error
}

func (r *CustomerRepository) GetByID(id int64) (*customer.Customer, error) {
	var c customer.Customer
	err := r.db.Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError(fmt.Sprintf("customer %d not found", id), internal.ErrCodeCustomerNotFound)
		}
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) List() ([]*customer.Customer, error) {
	var customers []*customer.Customer
	err := r.db.Order("name ASC").Find(&customers).Error
	return customers, err
}

func (r *CustomerRepository) Update(c *customer.Customer) error {
	return r.db.Model(&customer.Customer{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"name":          c.Name,
			"contact_email": c.ContactEmail,
			"contact_phone": c.ContactPhone,
		}).Error
}
