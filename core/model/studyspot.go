// Package model defines the resource schemas of the StudySpot API with
// their create/update/read variants. Create payloads may carry a client
// supplied ID; update payloads use pointer fields so that absent fields
// are left untouched.
package model

import (
	"time"

	"github.com/google/uuid"
)

// StudySpot is a place to study, with its address, amenities and weekly
// opening hours embedded.
type StudySpot struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   Address   `json:"address"`
	Amenity   Amenities `json:"amenity"`
	Hours     Hours     `json:"hours"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudySpotCreate is the creation payload for a study spot.
type StudySpotCreate struct {
	ID      *uuid.UUID      `json:"id,omitempty"`
	Name    string          `json:"name"`
	Address AddressCreate   `json:"address"`
	Amenity AmenitiesCreate `json:"amenity"`
	Hours   HoursCreate     `json:"hours"`
}

// NewStudySpot realizes a study spot from the creation payload, including
// its embedded sub-entities.
func NewStudySpot(c StudySpotCreate, now time.Time) StudySpot {
	s := StudySpot{
		ID:        uuid.New(),
		Name:      c.Name,
		Address:   NewAddress(c.Address, now),
		Amenity:   NewAmenities(c.Amenity, now),
		Hours:     NewHours(c.Hours, now),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.ID != nil {
		s.ID = *c.ID
	}
	return s
}

// StudySpotUpdate is the partial update for a study spot. The embedded
// sub-entities are themselves patched sparsely.
type StudySpotUpdate struct {
	Name    *string          `json:"name,omitempty"`
	Address *AddressUpdate   `json:"address,omitempty"`
	Amenity *AmenitiesUpdate `json:"amenity,omitempty"`
	Hours   *HoursUpdate     `json:"hours,omitempty"`
}

// IsEmpty returns true if the update carries no fields
func (u StudySpotUpdate) IsEmpty() bool {
	return u.Name == nil && u.Address == nil && u.Amenity == nil && u.Hours == nil
}

// ApplyTo patches the supplied fields into s, touching the updated
// timestamps of patched sub-entities as well. A sub-entity that carries
// no fields is left entirely untouched, including its timestamp.
func (u StudySpotUpdate) ApplyTo(s *StudySpot, now time.Time) {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Address != nil && !u.Address.IsEmpty() {
		u.Address.ApplyTo(&s.Address)
		s.Address.UpdatedAt = now
	}
	if u.Amenity != nil && !u.Amenity.IsEmpty() {
		u.Amenity.ApplyTo(&s.Amenity)
		s.Amenity.UpdatedAt = now
	}
	if u.Hours != nil && !u.Hours.IsEmpty() {
		u.Hours.ApplyTo(&s.Hours)
		s.Hours.UpdatedAt = now
	}
}
