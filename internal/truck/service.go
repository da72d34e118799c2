package truck

import (
	"log/slog"

	"github.com/fbo-launchpad/fuel-ops/internal"
)

type Repository interface {
	Create(truck *Truck) error
	GetByID(id int64) (*Truck, error)
	List() ([]*Truck, error)
	Update(truck *Truck) error
	FirstActive() (*Truck, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateTruck(dto CreateTruckDTO) (*Truck, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t := &Truck{
		TruckNumber: dto.TruckNumber,
		FuelType:    dto.FuelType,
		Capacity:    dto.Capacity,
		IsActive:    true,
	}
	if err := s.repo.Create(t); err != nil {
		s.logger.Error("failed to create truck", "truck_number", dto.TruckNumber, "error", err)
		return nil, internal.NewStorageError("failed to create truck", err)
	}
	return t, nil
}

func (s *Service) GetTruck(id int64) (*Truck, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, internal.NewStorageError("failed to load truck", err)
	}
	return t, nil
}

func (s *Service) ListTrucks() ([]*Truck, error) {
	trucks, err := s.repo.List()
	if err != nil {
		return nil, internal.NewStorageError("failed to list trucks", err)
	}
	return trucks, nil
}

func (s *Service) UpdateTruck(id int64, dto UpdateTruckDTO) (*Truck, error) {
	t, err := s.GetTruck(id)
	if err != nil {
		return nil, err
	}

	if dto.TruckNumber != nil {
		t.TruckNumber = *dto.TruckNumber
	}
	if dto.FuelType != nil {
		t.FuelType = *dto.FuelType
	}
	if dto.Capacity != nil {
		t.Capacity = dto.Capacity
	}
	if dto.IsActive != nil {
		t.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(t); err != nil {
		return nil, internal.NewStorageError("failed to update truck", err)
	}
	return t, nil
}

// FirstActiveTruckID implements fuelorder.TruckDirectory: the first active
// truck by id, or NoCandidateError when none exists.
func (s *Service) FirstActiveTruckID() (int64, error) {
	t, err := s.repo.FirstActive()
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return 0, appErr
		}
		return 0, internal.NewStorageError("failed to find active truck", err)
	}
	return t.ID, nil
}

// IsActiveTruck implements fuelorder.TruckDirectory.
func (s *Service) IsActiveTruck(id int64) (bool, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeNotFound {
			return false, nil
		}
		return false, err
	}
	return t.IsActive, nil
}
