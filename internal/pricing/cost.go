// Package pricing implements the trip cost calculator.
package pricing

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/ukydev/transportease/internal/models"
)

var (
	ErrDistanceRequired    = errors.New("Distance is required")
	ErrDistanceNotANumber  = errors.New("Distance must be a number")
	ErrDistanceNotPositive = errors.New("Distance must be greater than 0")
)

// CalculateTripCost returns distanceKm * pricePerKm. Both inputs are
// expected to be finite and non-negative; no rounding is applied.
func CalculateTripCost(distanceKm, pricePerKm float64) float64 {
	return distanceKm * pricePerKm
}

// ParseDistance validates the distance field of the calculator form.
func ParseDistance(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrDistanceRequired
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, ErrDistanceNotANumber
	}
	return d, ValidateDistance(d)
}

// ValidateDistance rejects distances that are not strictly positive.
func ValidateDistance(d float64) error {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return ErrDistanceNotANumber
	}
	if d <= 0 {
		return ErrDistanceNotPositive
	}
	return nil
}

// NewQuote estimates the cost of driving distanceKm with v.
func NewQuote(v models.Vehicle, distanceKm float64) (models.Quote, error) {
	if err := ValidateDistance(distanceKm); err != nil {
		return models.Quote{}, err
	}
	total := CalculateTripCost(distanceKm, v.PricePerKm)
	return models.Quote{
		DistanceKm: distanceKm,
		VehicleID:  v.ID,
		Vehicle:    v.Name,
		PricePerKm: v.PricePerKm,
		TotalCost:  total,
		Formatted:  FormatCurrency(total),
	}, nil
}
