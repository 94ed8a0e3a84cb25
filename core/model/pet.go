package model

import (
	"time"

	"github.com/google/uuid"
)

// Pet is an animal, optionally living in a pet shop.
type Pet struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Animal    string    `json:"animal"`
	Breed     string    `json:"breed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PetCreate is the creation payload for a pet.
type PetCreate struct {
	ID     *uuid.UUID `json:"id,omitempty"`
	Name   string     `json:"name"`
	Animal string     `json:"animal"`
	Breed  string     `json:"breed"`
}

// NewPet realizes a pet from the creation payload.
func NewPet(c PetCreate, now time.Time) Pet {
	p := Pet{
		ID:        uuid.New(),
		Name:      c.Name,
		Animal:    c.Animal,
		Breed:     c.Breed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.ID != nil {
		p.ID = *c.ID
	}
	return p
}

// PetUpdate is the partial update for a pet; only supplied fields change.
type PetUpdate struct {
	Name   *string `json:"name,omitempty"`
	Animal *string `json:"animal,omitempty"`
	Breed  *string `json:"breed,omitempty"`
}

// IsEmpty returns true if the update carries no fields
func (u PetUpdate) IsEmpty() bool {
	return u.Name == nil && u.Animal == nil && u.Breed == nil
}

// ApplyTo patches the supplied fields into p
func (u PetUpdate) ApplyTo(p *Pet) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Animal != nil {
		p.Animal = *u.Animal
	}
	if u.Breed != nil {
		p.Breed = *u.Breed
	}
}
