package model

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/google/uuid"
)

// Seating is the enumerated seating capacity bucket of a study spot.
type Seating string

// all supported seating buckets
const (
	SeatingOneToFive      Seating = "1-5"
	SeatingSixToTen       Seating = "6-10"
	SeatingElevenToTwenty Seating = "11-20"
	SeatingTwentyPlus     Seating = "20+"
)

// Valid returns true if s is one of the supported seating buckets.
func (s Seating) Valid() bool {
	switch s {
	case SeatingOneToFive, SeatingSixToTen, SeatingElevenToTwenty, SeatingTwentyPlus:
		return true
	}
	return false
}

// UnmarshalJSON is a custom JSON unmarshaller that rejects unknown seating buckets
func (s *Seating) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = Seating(str)
	if !s.Valid() {
		return fmt.Errorf("%s is not a valid seating bucket", str)
	}
	return nil
}

// Environment is an enumerated environment tag of a study spot.
type Environment string

// all supported environment tags
const (
	EnvironmentQuiet   Environment = "quiet"
	EnvironmentLively  Environment = "lively"
	EnvironmentOutdoor Environment = "outdoor"
	EnvironmentIndoor  Environment = "indoor"
)

// Valid returns true if e is one of the supported environment tags.
func (e Environment) Valid() bool {
	switch e {
	case EnvironmentQuiet, EnvironmentLively, EnvironmentOutdoor, EnvironmentIndoor:
		return true
	}
	return false
}

// UnmarshalJSON is a custom JSON unmarshaller that rejects unknown environment tags
func (e *Environment) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*e = Environment(s)
	if !e.Valid() {
		return fmt.Errorf("%s is not a valid environment tag", s)
	}
	return nil
}

// Amenities describes wifi, outlets, seating, refreshments and environment
// attributes of a study spot.
type Amenities struct {
	ID            uuid.UUID     `json:"id"`
	WifiAvailable bool          `json:"wifi_available"`
	WifiNetwork   *string       `json:"wifi_network,omitempty"`
	Outlets       bool          `json:"outlets"`
	Seating       Seating       `json:"seating"`
	Refreshments  *string       `json:"refreshments,omitempty"`
	Environment   []Environment `json:"environment"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// AmenitiesCreate is the creation payload for amenities.
type AmenitiesCreate struct {
	ID            *uuid.UUID    `json:"id,omitempty"`
	WifiAvailable bool          `json:"wifi_available"`
	WifiNetwork   *string       `json:"wifi_network,omitempty"`
	Outlets       bool          `json:"outlets"`
	Seating       Seating       `json:"seating"`
	Refreshments  *string       `json:"refreshments,omitempty"`
	Environment   []Environment `json:"environment"`
}

// NewAmenities realizes amenities from the creation payload.
func NewAmenities(c AmenitiesCreate, now time.Time) Amenities {
	a := Amenities{
		ID:            uuid.New(),
		WifiAvailable: c.WifiAvailable,
		WifiNetwork:   c.WifiNetwork,
		Outlets:       c.Outlets,
		Seating:       c.Seating,
		Refreshments:  c.Refreshments,
		Environment:   c.Environment,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if c.ID != nil {
		a.ID = *c.ID
	}
	return a
}

// AmenitiesUpdate is the partial update for amenities; only supplied
// fields change.
type AmenitiesUpdate struct {
	WifiAvailable *bool          `json:"wifi_available,omitempty"`
	WifiNetwork   *string        `json:"wifi_network,omitempty"`
	Outlets       *bool          `json:"outlets,omitempty"`
	Seating       *Seating       `json:"seating,omitempty"`
	Refreshments  *string        `json:"refreshments,omitempty"`
	Environment   *[]Environment `json:"environment,omitempty"`
}

// IsEmpty returns true if the update carries no fields
func (u AmenitiesUpdate) IsEmpty() bool {
	return u.WifiAvailable == nil && u.WifiNetwork == nil && u.Outlets == nil &&
		u.Seating == nil && u.Refreshments == nil && u.Environment == nil
}

// ApplyTo patches the supplied fields into a
func (u AmenitiesUpdate) ApplyTo(a *Amenities) {
	if u.WifiAvailable != nil {
		a.WifiAvailable = *u.WifiAvailable
	}
	if u.WifiNetwork != nil {
		a.WifiNetwork = u.WifiNetwork
	}
	if u.Outlets != nil {
		a.Outlets = *u.Outlets
	}
	if u.Seating != nil {
		a.Seating = *u.Seating
	}
	if u.Refreshments != nil {
		a.Refreshments = u.Refreshments
	}
	if u.Environment != nil {
		a.Environment = *u.Environment
	}
}
