package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/ukydev/transportease/internal/models"
)

type apiBooking struct {
	ID             json.RawMessage `json:"id"`
	UserEmail      string          `json:"userEmail"`
	VehicleID      json.RawMessage `json:"vehicleId"`
	PickupLocation string          `json:"pickupLocation"`
	DropLocation   string          `json:"dropLocation"`
	DistanceKm     float64         `json:"distanceInKm"`
	TotalCost      float64         `json:"totalCost"`
	Status         string          `json:"status"`
	Paid           bool            `json:"paid"`
	Confirmed      bool            `json:"confirmed"`
}

func (a apiBooking) model() models.Booking {
	status := models.BookingStatus(a.Status)
	if status == "" {
		status = models.BookingPending
		if a.Confirmed {
			status = models.BookingConfirmed
		}
	}
	return models.Booking{
		ID:             rawID(a.ID),
		UserEmail:      a.UserEmail,
		VehicleID:      rawID(a.VehicleID),
		PickupLocation: a.PickupLocation,
		DropLocation:   a.DropLocation,
		DistanceKm:     a.DistanceKm,
		TotalCost:      a.TotalCost,
		Status:         status,
		Paid:           a.Paid,
	}
}

// CreateBooking books a trip. The API prices it at distance times the
// vehicle's rate.
func (c *Client) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	var raw apiBooking
	if err := c.postJSON(ctx, "create_booking", "/api/bookings", req, "Failed to create booking", &raw); err != nil {
		return nil, err
	}
	b := raw.model()
	return &b, nil
}

// ListBookings returns the bookings made by email.
func (c *Client) ListBookings(ctx context.Context, email string) ([]models.Booking, error) {
	var raw []apiBooking
	path := "/api/bookings/user/" + url.PathEscape(email)
	if err := c.get(ctx, "list_bookings", path, "Failed to fetch bookings", &raw); err != nil {
		return nil, err
	}
	out := make([]models.Booking, 0, len(raw))
	for _, b := range raw {
		out = append(out, b.model())
	}
	return out, nil
}

// PayBooking marks a booking as paid.
func (c *Client) PayBooking(ctx context.Context, id string) (*models.Booking, error) {
	var raw apiBooking
	path := "/api/bookings/" + url.PathEscape(id) + "/pay"
	if err := c.do(ctx, "pay_booking", http.MethodPost, path, "", nil, "Payment failed", &raw); err != nil {
		return nil, err
	}
	b := raw.model()
	return &b, nil
}
