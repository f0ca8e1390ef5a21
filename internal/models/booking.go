package models

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking represents a trip booked by a traveller.
type Booking struct {
	ID             string        `json:"id"`
	UserEmail      string        `json:"userEmail"`
	VehicleID      string        `json:"vehicleId"`
	PickupLocation string        `json:"pickupLocation"`
	DropLocation   string        `json:"dropLocation"`
	DistanceKm     float64       `json:"distanceInKm"`
	TotalCost      float64       `json:"totalCost"`
	Status         BookingStatus `json:"status"`
	Paid           bool          `json:"paid"`
}

// BookingRequest represents a booking request
type BookingRequest struct {
	UserEmail      string  `json:"userEmail" validate:"required,email"`
	VehicleID      string  `json:"vehicleId" validate:"required"`
	PickupLocation string  `json:"pickupLocation" validate:"required"`
	DropLocation   string  `json:"dropLocation" validate:"required"`
	DistanceKm     float64 `json:"distanceInKm" validate:"gt=0"`
}

// Quote is a trip cost estimate for one vehicle.
type Quote struct {
	DistanceKm float64 `json:"distanceKm"`
	VehicleID  string  `json:"vehicleId,omitempty"`
	Vehicle    string  `json:"vehicle,omitempty"`
	PricePerKm float64 `json:"pricePerKm"`
	TotalCost  float64 `json:"totalCost"`
	Formatted  string  `json:"formatted"`
}
