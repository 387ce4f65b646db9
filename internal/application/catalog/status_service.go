package catalog

import (
	"context"

	"github.com/wms/backend/internal/domain/shared"
)

// StatusService serves the status lookup table
type StatusService struct {
	statusRepo shared.StatusRepository
}

// NewStatusService creates a new StatusService
func NewStatusService(statusRepo shared.StatusRepository) *StatusService {
	return &StatusService{statusRepo: statusRepo}
}

// List returns every status ordered by code
func (s *StatusService) List(ctx context.Context) ([]StatusResponse, error) {
	statuses, err := s.statusRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]StatusResponse, len(statuses))
	for i, st := range statuses {
		items[i] = ToStatusResponse(st)
	}
	return items, nil
}
