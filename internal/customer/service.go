package customer

import (
	"log/slog"

	"github.com/fbo-launchpad/fuel-ops/internal"
)

type Repository interface {
	Create(customer *Customer) error
	GetByID(id int64) (*Customer, error)
	List() ([]*Customer, error)
	Update(customer *Customer) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateCustomer(dto CreateCustomerDTO) (*Customer, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c := &Customer{
		Name:         dto.Name,
		ContactEmail: dto.ContactEmail,
		ContactPhone: dto.ContactPhone,
	}
	if err := s.repo.Create(c); err != nil {
		s.logger.Error("failed to create customer", "name", dto.Name, "error", err)
		return nil, internal.NewStorageError("failed to create customer", err)
	}
	return c, nil
}

func (s *Service) GetCustomer(id int64) (*Customer, error) {
	c, err := s.repo.GetByID(id)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, internal.NewStorageError("failed to load customer", err)
	}
	return c, nil
}

func (s *Service) ListCustomers() ([]*Customer, error) {
	customers, err := s.repo.List()
	if err != nil {
		return nil, internal.NewStorageError("failed to list customers", err)
	}
	return customers, nil
}

func (s *Service) UpdateCustomer(id int64, dto UpdateCustomerDTO) (*Customer, error) {
	c, err := s.GetCustomer(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		c.Name = *dto.Name
	}
	if dto.ContactEmail != nil {
		c.ContactEmail = *dto.ContactEmail
	}
	if dto.ContactPhone != nil {
		c.ContactPhone = *dto.ContactPhone
	}

	if err := s.repo.Update(c); err != nil {
		return nil, internal.NewStorageError("failed to update customer", err)
	}
	return c, nil
}
