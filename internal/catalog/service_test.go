package catalog

import (
	"context"
	"errors"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/transportease/internal/db"
	"github.com/ukydev/transportease/internal/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MockVehicleSource is a mock implementation of VehicleSource
type MockVehicleSource struct {
	mock.Mock
}

func (m *MockVehicleSource) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

// MockVehicleCollection is a mock implementation of db.VehicleCollection
type MockVehicleCollection struct {
	mock.Mock
}

func (m *MockVehicleCollection) ReplaceVehicles(ctx context.Context, vehicles []models.Vehicle) error {
	args := m.Called(ctx, vehicles)
	return args.Error(0)
}

func (m *MockVehicleCollection) FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (db.VehicleCursor, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(db.VehicleCursor), args.Error(1)
}

func (m *MockVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

// sliceCursor decodes a fixed set of mirror documents.
type sliceCursor struct {
	vehicles []models.Vehicle
}

func (c *sliceCursor) All(_ context.Context, out interface{}) error {
	docs := out.(*[]db.MirrorVehicle)
	for i, v := range c.vehicles {
		*docs = append(*docs, db.MirrorVehicle{Position: i, Vehicle: v})
	}
	return nil
}

func (c *sliceCursor) Close(context.Context) error { return nil }

func quietLogger() log.FieldLogger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func TestService_VehiclesRefreshesMirror(t *testing.T) {
	source := new(MockVehicleSource)
	mirror := new(MockVehicleCollection)
	vs := sampleVehicles()

	source.On("ListVehicles", mock.Anything).Return(vs, nil)
	mirror.On("ReplaceVehicles", mock.Anything, vs).Return(nil)

	svc := NewService(source, mirror, quietLogger())
	got, err := svc.Vehicles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, vs, got)
	mirror.AssertExpectations(t)
}

func TestService_VehiclesMirrorWriteFailureIsIgnored(t *testing.T) {
	source := new(MockVehicleSource)
	mirror := new(MockVehicleCollection)
	source.On("ListVehicles", mock.Anything).Return(sampleVehicles(), nil)
	mirror.On("ReplaceVehicles", mock.Anything, mock.Anything).Return(errors.New("mongo down"))

	svc := NewService(source, mirror, quietLogger())
	got, err := svc.Vehicles(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestService_VehiclesFallsBackToMirror(t *testing.T) {
	source := new(MockVehicleSource)
	mirror := new(MockVehicleCollection)
	vs := sampleVehicles()[:2]

	source.On("ListVehicles", mock.Anything).Return(nil, errors.New("connection refused"))
	mirror.On("FindVehicles", mock.Anything, mock.Anything).Return(&sliceCursor{vehicles: vs}, nil)

	svc := NewService(source, mirror, quietLogger())
	got, err := svc.Vehicles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, vs, got)
}

func TestService_VehiclesNoMirror(t *testing.T) {
	source := new(MockVehicleSource)
	upstream := errors.New("connection refused")
	source.On("ListVehicles", mock.Anything).Return(nil, upstream)

	svc := NewService(source, nil, quietLogger())
	_, err := svc.Vehicles(context.Background())
	assert.ErrorIs(t, err, upstream)
}

func TestService_VehiclesMirrorReadFailure(t *testing.T) {
	source := new(MockVehicleSource)
	mirror := new(MockVehicleCollection)
	upstream := errors.New("connection refused")

	source.On("ListVehicles", mock.Anything).Return(nil, upstream)
	mirror.On("FindVehicles", mock.Anything, mock.Anything).Return(nil, errors.New("mongo down"))

	svc := NewService(source, mirror, quietLogger())
	_, err := svc.Vehicles(context.Background())
	assert.ErrorIs(t, err, upstream)
}

func TestService_Search(t *testing.T) {
	source := new(MockVehicleSource)
	source.On("ListVehicles", mock.Anything).Return(sampleVehicles(), nil)

	svc := NewService(source, nil, quietLogger())
	got, err := svc.Search(context.Background(), models.FilterCriteria{City: "chennai", Type: "all", MaxPricePerKm: 100})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, ids(got))
}

func TestService_Find(t *testing.T) {
	source := new(MockVehicleSource)
	source.On("ListVehicles", mock.Anything).Return(sampleVehicles(), nil)

	svc := NewService(source, nil, quietLogger())

	v, err := svc.Find(context.Background(), " 4 ")
	require.NoError(t, err)
	assert.Equal(t, "Mercedes S-Class", v.Name)

	_, err = svc.Find(context.Background(), "99")
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestService_FindFallsBackToMirror(t *testing.T) {
	source := new(MockVehicleSource)
	mirror := new(MockVehicleCollection)
	upstream := errors.New("connection refused")

	source.On("ListVehicles", mock.Anything).Return(nil, upstream)
	mirror.On("FindVehicleByID", mock.Anything, "2").Return(&models.Vehicle{ID: "2", Name: "Honda City"}, nil)
	mirror.On("FindVehicleByID", mock.Anything, "99").Return(nil, db.ErrVehicleNotFound)
	mirror.On("FindVehicleByID", mock.Anything, "5").Return(nil, errors.New("mongo down"))

	svc := NewService(source, mirror, quietLogger())

	v, err := svc.Find(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "Honda City", v.Name)

	_, err = svc.Find(context.Background(), "99")
	assert.ErrorIs(t, err, ErrVehicleNotFound)

	_, err = svc.Find(context.Background(), "5")
	assert.ErrorIs(t, err, upstream)
}
