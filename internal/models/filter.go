package models

import (
	"math"
	"strings"
)

// FilterAll disables the city or type filter.
const FilterAll = "all"

// DefaultMaxPricePerKm is the initial position of the price slider on the
// browsing page.
const DefaultMaxPricePerKm = 2000

// FilterCriteria is a set of predicates applied to a vehicle list.
type FilterCriteria struct {
	City          string  `json:"city"`
	Type          string  `json:"type"`
	Search        string  `json:"search"`
	MaxPricePerKm float64 `json:"maxPricePerKm"`
}

// NewFilterCriteria returns criteria that match every vehicle.
func NewFilterCriteria() FilterCriteria {
	return FilterCriteria{
		City:          FilterAll,
		Type:          FilterAll,
		MaxPricePerKm: math.Inf(1),
	}
}

// FiltersCity reports whether the city predicate is active.
func (c FilterCriteria) FiltersCity() bool {
	return isActive(c.City)
}

// FiltersType reports whether the type predicate is active.
func (c FilterCriteria) FiltersType() bool {
	return isActive(c.Type)
}

// FiltersSearch reports whether the search predicate is active.
func (c FilterCriteria) FiltersSearch() bool {
	return strings.TrimSpace(c.Search) != ""
}

// An empty value is treated like "all".
func isActive(v string) bool {
	return v != "" && !strings.EqualFold(v, FilterAll)
}
