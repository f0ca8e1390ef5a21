package models

import (
	"slices"
	"strings"
)

// VehicleType is the rental category of a vehicle.
type VehicleType string

const (
	VehicleBus    VehicleType = "bus"
	VehicleVan    VehicleType = "van"
	VehicleCar    VehicleType = "car"
	VehicleLuxury VehicleType = "luxury"
)

// Client-side defaults applied to partial vehicle records returned by the API.
const (
	DefaultVehicleDescription = "Comfortable and reliable vehicle."
	DefaultVehicleImageURL    = "https://via.placeholder.com/400x200"
	DefaultVehicleRating      = 4.5
	DefaultVehicleReviewCount = 10
)

// VehicleTypes lists every supported vehicle type in display order.
var VehicleTypes = []VehicleType{VehicleBus, VehicleVan, VehicleCar, VehicleLuxury}

// ParseVehicleType parses s case-insensitively.
func ParseVehicleType(s string) (VehicleType, bool) {
	t := VehicleType(strings.ToLower(strings.TrimSpace(s)))
	return t, IsValidVehicleType(t)
}

// IsValidVehicleType checks if a vehicle type is supported
func IsValidVehicleType(t VehicleType) bool {
	return slices.Contains(VehicleTypes, t)
}

// Vehicle represents a rentable vehicle listed by an owner.
// Vehicles are created and updated only by the external API.
type Vehicle struct {
	ID          string      `bson:"_id" json:"id"`
	Name        string      `bson:"name" json:"name"`
	Type        VehicleType `bson:"type" json:"type"`
	Description string      `bson:"description" json:"description"`
	Capacity    int         `bson:"capacity" json:"capacity"`
	PricePerKm  float64     `bson:"price_per_km" json:"pricePerKm"`
	City        string      `bson:"city" json:"city"`
	Available   bool        `bson:"available" json:"available"`
	ImageURL    string      `bson:"image_url" json:"imageUrl"`
	Rating      float64     `bson:"rating" json:"rating"`            // 0-5
	ReviewCount int         `bson:"review_count" json:"reviewCount"` // >= 0
	OwnerEmail  string      `bson:"owner_email,omitempty" json:"ownerEmail,omitempty"`
}

// NewVehicleRequest is the owner dashboard payload for listing a vehicle.
// It is sent as multipart form data.
type NewVehicleRequest struct {
	Type               VehicleType `validate:"required,vehicletype"`
	Name               string      `validate:"required,min=2"`
	RegistrationNumber string      `validate:"omitempty,max=32"`
	Capacity           int         `validate:"gt=0"`
	RatePerKm          float64     `validate:"gte=0"`
	City               string      `validate:"required"`
	Available          bool
	OwnerEmail         string `validate:"required,email"`
	ImageName          string
	Image              []byte
}
