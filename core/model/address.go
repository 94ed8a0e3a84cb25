package model

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/google/uuid"
)

// Neighborhood is the enumerated Manhattan neighborhood of an address.
type Neighborhood string

// all supported neighborhoods
const (
	NeighborhoodFinancialDistrict Neighborhood = "Financial District (FiDi)"
	NeighborhoodTribeca           Neighborhood = "Tribeca"
	NeighborhoodSoHo              Neighborhood = "SoHo"
	NeighborhoodChinatown         Neighborhood = "Chinatown"
	NeighborhoodLowerEastSide     Neighborhood = "Lower East Side"
	NeighborhoodWestVillage       Neighborhood = "West Village"
	NeighborhoodEastVillage       Neighborhood = "East Village"
	NeighborhoodChelsea           Neighborhood = "Chelsea"
	NeighborhoodFlatironDistrict  Neighborhood = "Flatiron District"
	NeighborhoodMidtown           Neighborhood = "Midtown"
	NeighborhoodUpperWestSide     Neighborhood = "Upper West Side"
	NeighborhoodUpperEastSide     Neighborhood = "Upper East Side"
	NeighborhoodHarlem            Neighborhood = "Harlem"
	NeighborhoodWashingtonHeights Neighborhood = "Washington Heights"
	NeighborhoodInwood            Neighborhood = "Inwood"
)

// Valid returns true if n is one of the supported neighborhoods.
func (n Neighborhood) Valid() bool {
	switch n {
	case NeighborhoodFinancialDistrict, NeighborhoodTribeca, NeighborhoodSoHo,
		NeighborhoodChinatown, NeighborhoodLowerEastSide, NeighborhoodWestVillage,
		NeighborhoodEastVillage, NeighborhoodChelsea, NeighborhoodFlatironDistrict,
		NeighborhoodMidtown, NeighborhoodUpperWestSide, NeighborhoodUpperEastSide,
		NeighborhoodHarlem, NeighborhoodWashingtonHeights, NeighborhoodInwood:
		return true
	}
	return false
}

// UnmarshalJSON is a custom JSON unmarshaller that rejects unknown neighborhoods
func (n *Neighborhood) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*n = Neighborhood(s)
	if !n.Valid() {
		return fmt.Errorf("%s is not a valid neighborhood", s)
	}
	return nil
}

// Address is a postal address with optional resolved coordinates.
type Address struct {
	ID           uuid.UUID    `json:"id"`
	Street       string       `json:"street"`
	City         string       `json:"city"`
	State        string       `json:"state"`
	PostalCode   string       `json:"postal_code"`
	Latitude     *float64     `json:"latitude,omitempty"`
	Longitude    *float64     `json:"longitude,omitempty"`
	Neighborhood Neighborhood `json:"neighborhood"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// AddressCreate is the creation payload for an address. The ID is
// server-generated unless the client supplies one.
type AddressCreate struct {
	ID           *uuid.UUID   `json:"id,omitempty"`
	Street       string       `json:"street"`
	City         string       `json:"city"`
	State        string       `json:"state"`
	PostalCode   string       `json:"postal_code"`
	Latitude     *float64     `json:"latitude,omitempty"`
	Longitude    *float64     `json:"longitude,omitempty"`
	Neighborhood Neighborhood `json:"neighborhood"`
}

// NewAddress realizes an address from its creation payload. City and state
// default to New York, NY.
func NewAddress(c AddressCreate, now time.Time) Address {
	a := Address{
		ID:           uuid.New(),
		Street:       c.Street,
		City:         c.City,
		State:        c.State,
		PostalCode:   c.PostalCode,
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
		Neighborhood: c.Neighborhood,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if c.ID != nil {
		a.ID = *c.ID
	}
	if a.City == "" {
		a.City = "New York"
	}
	if a.State == "" {
		a.State = "NY"
	}
	return a
}

// AddressUpdate is the partial update for an address; only supplied
// fields change.
type AddressUpdate struct {
	Street       *string       `json:"street,omitempty"`
	City         *string       `json:"city,omitempty"`
	State        *string       `json:"state,omitempty"`
	PostalCode   *string       `json:"postal_code,omitempty"`
	Latitude     *float64      `json:"latitude,omitempty"`
	Longitude    *float64      `json:"longitude,omitempty"`
	Neighborhood *Neighborhood `json:"neighborhood,omitempty"`
}

// IsEmpty returns true if the update carries no fields
func (u AddressUpdate) IsEmpty() bool {
	return u.Street == nil && u.City == nil && u.State == nil &&
		u.PostalCode == nil && u.Latitude == nil && u.Longitude == nil &&
		u.Neighborhood == nil
}

// ApplyTo patches the supplied fields into a
func (u AddressUpdate) ApplyTo(a *Address) {
	if u.Street != nil {
		a.Street = *u.Street
	}
	if u.City != nil {
		a.City = *u.City
	}
	if u.State != nil {
		a.State = *u.State
	}
	if u.PostalCode != nil {
		a.PostalCode = *u.PostalCode
	}
	if u.Latitude != nil {
		a.Latitude = u.Latitude
	}
	if u.Longitude != nil {
		a.Longitude = u.Longitude
	}
	if u.Neighborhood != nil {
		a.Neighborhood = *u.Neighborhood
	}
}
