// Package servicecenter maintains the registry of maintenance providers.
package servicecenter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opfleet/fleethealth/core/model"
	"github.com/opfleet/fleethealth/core/store"
	"github.com/opfleet/fleethealth/infra/logger"
)

// Service implements service center workflows.
type Service struct {
	centers store.ServiceCenters
	log     logger.Logger
	now     func() time.Time
}

// NewService wires a service center registry over the given store.
func NewService(s store.Store, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{centers: s.ServiceCenters(), log: log, now: time.Now}
}

// Create registers a service center.
func (s *Service) Create(ctx context.Context, c model.ServiceCenter) (model.ServiceCenter, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = s.now()
	c.UpdatedAt = s.now()
	if err := c.Validate(); err != nil {
		return model.ServiceCenter{}, err
	}
	if err := s.centers.Insert(ctx, c); err != nil {
		return model.ServiceCenter{}, fmt.Errorf("create service center: %w", err)
	}
	s.log.Infof("service center %s registered (%s)", c.ID, c.Name)
	return c, nil
}

// Get returns one service center by id.
func (s *Service) Get(ctx context.Context, id string) (model.ServiceCenter, error) {
	return s.centers.Get(ctx, id)
}

// List returns all registered service centers.
func (s *Service) List(ctx context.Context) ([]model.ServiceCenter, error) {
	return s.centers.List(ctx)
}
