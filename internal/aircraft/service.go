package aircraft

import (
	"log/slog"

	"github.com/fbo-launchpad/fuel-ops/internal"
)

type Repository interface {
	Create(aircraft *Aircraft) error
	GetByTailNumber(tailNumber string) (*Aircraft, error)
	List() ([]*Aircraft, error)
	Update(aircraft *Aircraft) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateAircraft(dto CreateAircraftDTO) (*Aircraft, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	a := &Aircraft{
		TailNumber:   dto.TailNumber,
		AircraftType: dto.AircraftType,
		FuelType:     dto.FuelType,
		CustomerID:   dto.CustomerID,
	}
	if err := s.repo.Create(a); err != nil {
		s.logger.Error("failed to create aircraft", "tail_number", dto.TailNumber, "error", err)
		return nil, internal.NewStorageError("failed to create aircraft", err)
	}
	return a, nil
}

func (s *Service) GetAircraft(tailNumber string) (*Aircraft, error) {
	a, err := s.repo.GetByTailNumber(tailNumber)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, internal.NewStorageError("failed to load aircraft", err)
	}
	return a, nil
}

func (s *Service) ListAircraft() ([]*Aircraft, error) {
	list, err := s.repo.List()
	if err != nil {
		return nil, internal.NewStorageError("failed to list aircraft", err)
	}
	return list, nil
}

func (s *Service) UpdateAircraft(tailNumber string, dto UpdateAircraftDTO) (*Aircraft, error) {
	a, err := s.GetAircraft(tailNumber)
	if err != nil {
		return nil, err
	}

	if dto.AircraftType != nil {
		a.AircraftType = *dto.AircraftType
	}
	if dto.FuelType != nil {
		a.FuelType = *dto.FuelType
	}
	if dto.CustomerID != nil {
		a.CustomerID = dto.CustomerID
	}

	if err := s.repo.Update(a); err != nil {
		return nil, internal.NewStorageError("failed to update aircraft", err)
	}
	return a, nil
}

// Exists implements fuelorder.AircraftDirectory.
func (s *Service) Exists(tailNumber string) (bool, error) {
	_, err := s.repo.GetByTailNumber(tailNumber)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreatePlaceholder implements fuelorder.AircraftDirectory: registers an
// unknown tail number with a placeholder type so dispatch is never blocked on
// missing master data.
func (s *Service) CreatePlaceholder(tailNumber, fuelType string) error {
	a := &Aircraft{
		TailNumber:   tailNumber,
		AircraftType: PlaceholderType,
		FuelType:     fuelType,
	}
	if err := s.repo.Create(a); err != nil {
		return err
	}
	s.logger.Info("placeholder aircraft created", "tail_number", tailNumber, "fuel_type", fuelType)
	return nil
}
