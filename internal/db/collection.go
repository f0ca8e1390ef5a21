package db

import (
	"context"

	"github.com/ukydev/transportease/internal/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VehicleCollection defines the interface for the catalog mirror.
type VehicleCollection interface {
	// ReplaceVehicles makes the mirror hold exactly vehicles, in order.
	ReplaceVehicles(ctx context.Context, vehicles []models.Vehicle) error
	FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (VehicleCursor, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
}

// VehicleCursor defines the interface for vehicle cursor operations.
type VehicleCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}
