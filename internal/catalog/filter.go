// Package catalog holds the vehicle browsing logic: the filter engine and
// the service that loads the catalog from the API.
package catalog

import (
	"strings"

	"github.com/ukydev/transportease/internal/models"
)

// FilterVehicles returns the vehicles matching every active predicate of c,
// in their original order. The input slice is never modified.
func FilterVehicles(vehicles []models.Vehicle, c models.FilterCriteria) []models.Vehicle {
	// Lowercased but not trimmed: the trim only decides whether to search.
	term := strings.ToLower(c.Search)
	out := make([]models.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if matches(v, c, term) {
			out = append(out, v)
		}
	}
	return out
}

// Matches reports whether a single vehicle satisfies c.
func Matches(v models.Vehicle, c models.FilterCriteria) bool {
	return matches(v, c, strings.ToLower(c.Search))
}

func matches(v models.Vehicle, c models.FilterCriteria, term string) bool {
	if c.FiltersCity() && !strings.EqualFold(v.City, c.City) {
		return false
	}
	if c.FiltersType() && !strings.EqualFold(string(v.Type), c.Type) {
		return false
	}
	if !(v.PricePerKm <= c.MaxPricePerKm) {
		return false
	}
	if c.FiltersSearch() {
		return strings.Contains(strings.ToLower(v.Name), term) ||
			strings.Contains(strings.ToLower(v.Description), term)
	}
	return true
}
