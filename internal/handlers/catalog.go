package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/transportease/internal/auth"
	"github.com/ukydev/transportease/internal/catalog"
	"github.com/ukydev/transportease/internal/models"
	"github.com/ukydev/transportease/internal/pricing"
)

// Catalog is what the browsing and calculator pages read.
// *catalog.Service implements it.
type Catalog interface {
	Search(ctx context.Context, criteria models.FilterCriteria) ([]models.Vehicle, error)
	Find(ctx context.Context, id string) (*models.Vehicle, error)
}

// CatalogHandler serves the vehicle browsing page and the cost calculator.
type CatalogHandler struct {
	catalog Catalog
	log     log.FieldLogger
}

func NewCatalogHandler(c Catalog, logger log.FieldLogger) *CatalogHandler {
	return &CatalogHandler{catalog: c, log: logger}
}

type vehiclesResponse struct {
	Vehicles []models.Vehicle `json:"vehicles"`
	Count    int              `json:"count"`
}

// ParseCriteria reads filter criteria from query parameters. Absent
// parameters disable their predicate.
func ParseCriteria(q map[string][]string) (models.FilterCriteria, error) {
	get := func(key string) string {
		if vs := q[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	c := models.NewFilterCriteria()
	if v := strings.TrimSpace(get("city")); v != "" {
		c.City = v
	}
	if v := strings.TrimSpace(get("type")); v != "" {
		c.Type = v
	}
	c.Search = get("search")

	if v := strings.TrimSpace(get("maxPricePerKm")); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(p) || p < 0 {
			verr := &auth.ValidationError{}
			verr.Add("maxPricePerKm", "Max price per km must be a non-negative number")
			return c, verr
		}
		c.MaxPricePerKm = p
	}
	return c, nil
}

// ListVehicles handles GET /api/catalog/vehicles
func (h *CatalogHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	criteria, err := ParseCriteria(r.URL.Query())
	if err != nil {
		var verr *auth.ValidationError
		if errors.As(err, &verr) {
			writeValidation(w, verr)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	vehicles, err := h.catalog.Search(r.Context(), criteria)
	if err != nil {
		h.log.WithError(err).Error("Failed to load catalog")
		writeError(w, http.StatusBadGateway, "Failed to fetch vehicles")
		return
	}
	writeJSON(w, http.StatusOK, vehiclesResponse{Vehicles: vehicles, Count: len(vehicles)})
}

type quoteRequest struct {
	Distance   json.RawMessage `json:"distance"`
	VehicleID  string          `json:"vehicleId"`
	PricePerKm *float64        `json:"pricePerKm"`
}

// parseDistance accepts the form value as a JSON string or number.
func parseDistance(raw json.RawMessage) (float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return pricing.ParseDistance("")
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, pricing.ErrDistanceNotANumber
		}
		return pricing.ParseDistance(str)
	}
	return pricing.ParseDistance(s)
}

// Quote handles POST /api/quote. The rate comes from vehicleId when given,
// otherwise from pricePerKm.
func (h *CatalogHandler) Quote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req quoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	verr := &auth.ValidationError{}
	distance, err := parseDistance(req.Distance)
	if err != nil {
		verr.Add("distance", err.Error())
	}
	if strings.TrimSpace(req.VehicleID) == "" {
		switch {
		case req.PricePerKm == nil:
			verr.Add("vehicleId", "Please select a vehicle")
		case *req.PricePerKm < 0:
			verr.Add("pricePerKm", "Price per km must not be negative")
		}
	}
	if verr.Err() != nil {
		writeValidation(w, verr)
		return
	}

	vehicle := models.Vehicle{}
	if req.VehicleID != "" {
		v, err := h.catalog.Find(r.Context(), req.VehicleID)
		switch {
		case errors.Is(err, catalog.ErrVehicleNotFound):
			writeError(w, http.StatusNotFound, "Vehicle not found")
			return
		case err != nil:
			h.log.WithError(err).Error("Failed to look up vehicle")
			writeError(w, http.StatusBadGateway, "Failed to fetch vehicles")
			return
		}
		vehicle = *v
	} else {
		vehicle.PricePerKm = *req.PricePerKm
	}

	quote, err := pricing.NewQuote(vehicle, distance)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, quote)
}
