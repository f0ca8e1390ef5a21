package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/ukydev/transportease/internal/models"
)

// apiVehicle is a possibly partial vehicle record as sent by the API.
// Older builds use ratePerKm instead of pricePerKm and numeric ids.
type apiVehicle struct {
	ID          json.RawMessage `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Capacity    int             `json:"capacity"`
	PricePerKm  *float64        `json:"pricePerKm"`
	RatePerKm   *float64        `json:"ratePerKm"`
	City        string          `json:"city"`
	Available   bool            `json:"available"`
	ImageURL    string          `json:"imageUrl"`
	Rating      *float64        `json:"rating"`
	ReviewCount *int            `json:"reviewCount"`
	OwnerEmail  string          `json:"ownerEmail"`
}

// Normalize fills the display defaults for fields the API left out.
func (a apiVehicle) Normalize() models.Vehicle {
	v := models.Vehicle{
		ID:          rawID(a.ID),
		Name:        a.Name,
		Type:        models.VehicleType(a.Type),
		Description: a.Description,
		Capacity:    a.Capacity,
		City:        a.City,
		Available:   a.Available,
		ImageURL:    a.ImageURL,
		Rating:      models.DefaultVehicleRating,
		ReviewCount: models.DefaultVehicleReviewCount,
		OwnerEmail:  a.OwnerEmail,
	}
	if t, ok := models.ParseVehicleType(a.Type); ok {
		v.Type = t
	}
	if v.Description == "" {
		v.Description = models.DefaultVehicleDescription
	}
	if v.ImageURL == "" {
		v.ImageURL = models.DefaultVehicleImageURL
	}
	switch {
	case a.PricePerKm != nil:
		v.PricePerKm = *a.PricePerKm
	case a.RatePerKm != nil:
		v.PricePerKm = *a.RatePerKm
	}
	if a.Rating != nil {
		v.Rating = *a.Rating
	}
	if a.ReviewCount != nil {
		v.ReviewCount = *a.ReviewCount
	}
	return v
}

func normalizeAll(in []apiVehicle) []models.Vehicle {
	out := make([]models.Vehicle, 0, len(in))
	for _, a := range in {
		out = append(out, a.Normalize())
	}
	return out
}

// ListVehicles returns the full catalog.
func (c *Client) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	var raw []apiVehicle
	if err := c.get(ctx, "list_vehicles", "/api/vehicles", "Failed to fetch vehicles", &raw); err != nil {
		return nil, err
	}
	return normalizeAll(raw), nil
}

// ListVehiclesByCity returns the vehicles the API lists for city.
func (c *Client) ListVehiclesByCity(ctx context.Context, city string) ([]models.Vehicle, error) {
	var raw []apiVehicle
	path := "/api/vehicles/city/" + url.PathEscape(city)
	if err := c.get(ctx, "list_vehicles_by_city", path, "Failed to fetch vehicles", &raw); err != nil {
		return nil, err
	}
	return normalizeAll(raw), nil
}

// CreateVehicle lists a new vehicle for an owner. The request is sent as
// multipart form data with an optional image part.
func (c *Client) CreateVehicle(ctx context.Context, req models.NewVehicleRequest) (*models.Vehicle, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"type", string(req.Type)},
		{"name", req.Name},
		{"registrationNumber", req.RegistrationNumber},
		{"capacity", strconv.Itoa(req.Capacity)},
		{"ratePerKm", strconv.FormatFloat(req.RatePerKm, 'f', -1, 64)},
		{"city", req.City},
		{"available", strconv.FormatBool(req.Available)},
		{"ownerEmail", req.OwnerEmail},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("failed to write %s field: %w", f.name, err)
		}
	}

	if len(req.Image) > 0 {
		name := req.ImageName
		if name == "" {
			name = "vehicle.jpg"
		}
		part, err := w.CreateFormFile("image", name)
		if err != nil {
			return nil, fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(req.Image); err != nil {
			return nil, fmt.Errorf("failed to write image part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	var raw apiVehicle
	if err := c.do(ctx, "create_vehicle", http.MethodPost, "/api/vehicles", w.FormDataContentType(), &buf, "Failed to add vehicle", &raw); err != nil {
		return nil, err
	}
	v := raw.Normalize()
	return &v, nil
}
