package fuelorder

import (
	"github.com/fbo-launchpad/fuel-ops/internal"
)

// SelectTechnician picks the active technician with the fewest open orders.
// Ties go to the first candidate encountered; there is no secondary ordering
// key. Runs against the current snapshot, so two concurrent creations can
// both pick the same technician. Accepted as best-effort.
func (s *Service) SelectTechnician() (int64, error) {
	candidates, err := s.technicians.ActiveTechnicianIDs()
	if err != nil {
		return 0, internal.NewStorageError("failed to list active technicians", err)
	}
	if len(candidates) == 0 {
		return 0, internal.NewNoCandidateError("no active technicians available for assignment", internal.ErrCodeNoTechnicianAvailable)
	}

	counts, err := s.repo.CountOpenByTechnician(candidates)
	if err != nil {
		return 0, internal.NewStorageError("failed to count open orders per technician", err)
	}

	winner := candidates[0]
	best := counts[winner]
	for _, id := range candidates[1:] {
		if counts[id] < best {
			winner = id
			best = counts[id]
		}
	}
	return winner, nil
}

// SelectTruck picks the first active truck. No load balancing across trucks.
func (s *Service) SelectTruck() (int64, error) {
	id, err := s.trucks.FirstActiveTruckID()
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return 0, appErr
		}
		return 0, internal.NewStorageError("failed to find an active truck", err)
	}
	return id, nil
}
