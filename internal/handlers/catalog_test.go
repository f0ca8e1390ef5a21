package handlers

import (
	"bytes"
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/transportease/internal/catalog"
	"github.com/ukydev/transportease/internal/models"
)

// MockCatalog is a mock implementation of Catalog
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Search(ctx context.Context, criteria models.FilterCriteria) ([]models.Vehicle, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *MockCatalog) Find(ctx context.Context, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func newTestCatalogHandler(c Catalog) *CatalogHandler {
	logger, _ := test.NewNullLogger()
	return NewCatalogHandler(c, logger)
}

func TestParseCriteria(t *testing.T) {
	c, err := ParseCriteria(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, models.FilterAll, c.City)
	assert.Equal(t, models.FilterAll, c.Type)
	assert.True(t, math.IsInf(c.MaxPricePerKm, 1))

	c, err = ParseCriteria(url.Values{
		"city":          {"Mumbai"},
		"type":          {"car"},
		"search":        {"ac"},
		"maxPricePerKm": {"25"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", c.City)
	assert.Equal(t, "car", c.Type)
	assert.Equal(t, "ac", c.Search)
	assert.Equal(t, 25.0, c.MaxPricePerKm)

	for _, bad := range []string{"abc", "-1", "NaN"} {
		_, err = ParseCriteria(url.Values{"maxPricePerKm": {bad}})
		assert.Error(t, err, bad)
	}
}

func TestListVehicles(t *testing.T) {
	mockCatalog := new(MockCatalog)
	handler := newTestCatalogHandler(mockCatalog)

	criteria := models.NewFilterCriteria()
	criteria.City = "Chennai"
	vehicles := []models.Vehicle{
		{ID: "v1", Name: "Innova", City: "Chennai", PricePerKm: 14},
		{ID: "v2", Name: "Tempo", City: "Chennai", PricePerKm: 22},
	}
	mockCatalog.On("Search", mock.Anything, criteria).Return(vehicles, nil)

	w := httptest.NewRecorder()
	handler.ListVehicles(w, httptest.NewRequest(http.MethodGet, "/api/catalog/vehicles?city=Chennai", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp vehiclesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "v1", resp.Vehicles[0].ID)
	mockCatalog.AssertExpectations(t)
}

func TestListVehiclesBadPrice(t *testing.T) {
	mockCatalog := new(MockCatalog)
	handler := newTestCatalogHandler(mockCatalog)

	w := httptest.NewRecorder()
	handler.ListVehicles(w, httptest.NewRequest(http.MethodGet, "/api/catalog/vehicles?maxPricePerKm=cheap", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeValidation(t, w)
	assert.NotEmpty(t, resp.Errors["maxPricePerKm"])
	mockCatalog.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestListVehiclesUpstreamFailure(t *testing.T) {
	mockCatalog := new(MockCatalog)
	handler := newTestCatalogHandler(mockCatalog)
	mockCatalog.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: refused"))

	w := httptest.NewRecorder()
	handler.ListVehicles(w, httptest.NewRequest(http.MethodGet, "/api/catalog/vehicles", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to fetch vehicles")
}

func postQuote(handler *CatalogHandler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler.Quote(w, httptest.NewRequest(http.MethodPost, "/api/quote", bytes.NewBufferString(body)))
	return w
}

func TestQuote(t *testing.T) {
	mockCatalog := new(MockCatalog)
	handler := newTestCatalogHandler(mockCatalog)
	mockCatalog.On("Find", mock.Anything, "v1").
		Return(&models.Vehicle{ID: "v1", Name: "Innova", PricePerKm: 15}, nil)

	for _, body := range []string{
		`{"distance":"100","vehicleId":"v1"}`,
		`{"distance":100,"vehicleId":"v1"}`,
	} {
		w := postQuote(handler, body)
		require.Equal(t, http.StatusOK, w.Code, body)

		var quote models.Quote
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
		assert.Equal(t, 1500.0, quote.TotalCost)
		assert.Equal(t, "₹1,500", quote.Formatted)
		assert.Equal(t, "Innova", quote.Vehicle)
	}
}

func TestQuoteWithRate(t *testing.T) {
	handler := newTestCatalogHandler(new(MockCatalog))

	w := postQuote(handler, `{"distance":"12.5","pricePerKm":20}`)

	require.Equal(t, http.StatusOK, w.Code)
	var quote models.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, 250.0, quote.TotalCost)
	assert.Equal(t, "₹250", quote.Formatted)
}

func TestQuoteValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
		msg   string
	}{
		{"missing distance", `{"vehicleId":"v1"}`, "distance", "Distance is required"},
		{"empty distance", `{"distance":"  ","vehicleId":"v1"}`, "distance", "Distance is required"},
		{"not a number", `{"distance":"ten","vehicleId":"v1"}`, "distance", "Distance must be a number"},
		{"zero", `{"distance":0,"vehicleId":"v1"}`, "distance", "Distance must be greater than 0"},
		{"negative", `{"distance":"-5","vehicleId":"v1"}`, "distance", "Distance must be greater than 0"},
		{"no vehicle", `{"distance":"10"}`, "vehicleId", "Please select a vehicle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCatalog := new(MockCatalog)
			w := postQuote(newTestCatalogHandler(mockCatalog), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeValidation(t, w)
			assert.Equal(t, []string{tt.msg}, resp.Errors[tt.field])
			mockCatalog.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
		})
	}
}

func TestQuoteUnknownVehicle(t *testing.T) {
	mockCatalog := new(MockCatalog)
	handler := newTestCatalogHandler(mockCatalog)
	mockCatalog.On("Find", mock.Anything, "nope").Return(nil, catalog.ErrVehicleNotFound)

	w := postQuote(handler, `{"distance":"10","vehicleId":"nope"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Vehicle not found")
}
