package store

import (
	"sync"

	"github.com/rzzdr/mc-scenario-pricer/pkg/models"
	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/errors"
	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/logger"
)

// LatestResultStore holds the result of the most recent completed run.
// Saving a new result replaces the previous one; nothing older is kept.
type LatestResultStore struct {
	result *models.SimulationResult
	mu     sync.RWMutex
	log    *logger.Logger
}

// NewLatestResultStore creates an empty store
func NewLatestResultStore() *LatestResultStore {
	return &LatestResultStore{
		log: logger.GetLogger("store.result"),
	}
}

// Latest returns the most recent result
func (s *LatestResultStore) Latest() (*models.SimulationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.result == nil {
		return nil, errors.NotFound("no simulation has completed yet")
	}

	return s.result, nil
}

// Save replaces the stored result
func (s *LatestResultStore) Save(result *models.SimulationResult) error {
	if result == nil {
		return errors.InvalidArgument("cannot save nil result")
	}

	if result.RunID == "" {
		return errors.InvalidArgument("result run ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result != nil {
		s.log.Debugf("Replacing run %s with run %s", s.result.RunID, result.RunID)
	}
	s.result = result
	return nil
}
