package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/transportease/internal/db"
	"github.com/ukydev/transportease/internal/metrics"
	"github.com/ukydev/transportease/internal/models"
)

var ErrVehicleNotFound = errors.New("vehicle not found")

// VehicleSource lists the catalog. *client.Client implements it.
type VehicleSource interface {
	ListVehicles(ctx context.Context) ([]models.Vehicle, error)
}

// Service loads the vehicle catalog, keeping an optional mirror current
// and reading from it when the API is unavailable.
type Service struct {
	source VehicleSource
	mirror db.VehicleCollection
	log    log.FieldLogger
}

// NewService creates a catalog service. mirror may be nil.
func NewService(source VehicleSource, mirror db.VehicleCollection, logger log.FieldLogger) *Service {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Service{source: source, mirror: mirror, log: logger}
}

// Vehicles returns the full catalog.
func (s *Service) Vehicles(ctx context.Context) ([]models.Vehicle, error) {
	vehicles, err := s.source.ListVehicles(ctx)
	if err == nil {
		if s.mirror != nil {
			if merr := s.mirror.ReplaceVehicles(ctx, vehicles); merr != nil {
				s.log.WithError(merr).Warn("Failed to refresh catalog mirror")
			}
		}
		return vehicles, nil
	}

	if s.mirror == nil {
		return nil, err
	}

	s.log.WithError(err).Warn("Catalog API unavailable, reading mirror")
	mirrored, merr := db.ReadAll(ctx, s.mirror)
	if merr != nil {
		s.log.WithError(merr).Error("Failed to read catalog mirror")
		return nil, err
	}
	metrics.CatalogFallbackTotal.Inc()
	return mirrored, nil
}

// Search returns the catalog narrowed by criteria.
func (s *Service) Search(ctx context.Context, criteria models.FilterCriteria) ([]models.Vehicle, error) {
	vehicles, err := s.Vehicles(ctx)
	if err != nil {
		return nil, err
	}
	return FilterVehicles(vehicles, criteria), nil
}

// Find looks a vehicle up by id, asking the mirror directly when the API is
// unavailable.
func (s *Service) Find(ctx context.Context, id string) (*models.Vehicle, error) {
	id = strings.TrimSpace(id)
	vehicles, err := s.source.ListVehicles(ctx)
	if err != nil {
		if s.mirror == nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		v, merr := s.mirror.FindVehicleByID(ctx, id)
		switch {
		case errors.Is(merr, db.ErrVehicleNotFound):
			return nil, ErrVehicleNotFound
		case merr != nil:
			s.log.WithError(merr).Error("Failed to read catalog mirror")
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		metrics.CatalogFallbackTotal.Inc()
		return v, nil
	}

	for i := range vehicles {
		if vehicles[i].ID == id {
			v := vehicles[i]
			return &v, nil
		}
	}
	return nil, ErrVehicleNotFound
}
