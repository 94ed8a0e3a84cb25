package store

import "github.com/campusmaps/studyspot/core/model"

// Filters carry the optional predicates of the list endpoints. A zero
// value imposes no constraint; string fields marked as substring filters
// match case-insensitively anywhere in the column.

// StudySpotFilter filters study spot listings.
type StudySpotFilter struct {
	Name         string // substring
	City         string
	Neighborhood model.Neighborhood
	Wifi         *bool
	Outlets      *bool
	Seating      model.Seating
	Refreshments string // substring
	Environment  model.Environment
}

// AddressFilter filters address listings.
type AddressFilter struct {
	Street       string // substring
	City         string
	State        string
	PostalCode   string
	Neighborhood model.Neighborhood
}

// AmenitiesFilter filters amenities listings.
type AmenitiesFilter struct {
	Wifi    *bool
	Outlets *bool
	Seating model.Seating
}

// HoursFilter filters opening hours listings. There are no filterable
// columns, every listing returns the whole collection.
type HoursFilter struct{}

// PersonFilter filters person listings.
type PersonFilter struct {
	Email    string
	LastName string // substring
}

// PetFilter filters pet listings.
type PetFilter struct {
	Name   string // substring
	Animal string
	Breed  string
}

// PetShopFilter filters pet shop listings.
type PetShopFilter struct {
	StoreName string // substring
	City      string
}
