package model

import (
	"time"

	"github.com/google/uuid"
)

// PetShop is a store selling pets, with its address embedded and the pets
// it currently holds.
type PetShop struct {
	ID        uuid.UUID `json:"id"`
	StoreName string    `json:"store_name"`
	Pets      []Pet     `json:"pets"`
	Address   Address   `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PetShopCreate is the creation payload for a pet shop.
type PetShopCreate struct {
	ID        *uuid.UUID    `json:"id,omitempty"`
	StoreName string        `json:"store_name"`
	Pets      []PetCreate   `json:"pets"`
	Address   AddressCreate `json:"address"`
}

// NewPetShop realizes a pet shop from the creation payload, including its
// pets and address.
func NewPetShop(c PetShopCreate, now time.Time) PetShop {
	s := PetShop{
		ID:        uuid.New(),
		StoreName: c.StoreName,
		Pets:      []Pet{},
		Address:   NewAddress(c.Address, now),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.ID != nil {
		s.ID = *c.ID
	}
	for _, pc := range c.Pets {
		s.Pets = append(s.Pets, NewPet(pc, now))
	}
	return s
}

// PetShopUpdate is the partial update for a pet shop. Supplying pets
// replaces the entire set of pets; supplying an address patches it sparsely.
type PetShopUpdate struct {
	StoreName *string        `json:"store_name,omitempty"`
	Pets      *[]PetCreate   `json:"pets,omitempty"`
	Address   *AddressUpdate `json:"address,omitempty"`
}

// IsEmpty returns true if the update carries no fields
func (u PetShopUpdate) IsEmpty() bool {
	return u.StoreName == nil && u.Pets == nil && u.Address == nil
}

// ApplyTo patches the supplied fields into s
func (u PetShopUpdate) ApplyTo(s *PetShop, now time.Time) {
	if u.StoreName != nil {
		s.StoreName = *u.StoreName
	}
	if u.Pets != nil {
		s.Pets = []Pet{}
		for _, pc := range *u.Pets {
			s.Pets = append(s.Pets, NewPet(pc, now))
		}
	}
	if u.Address != nil && !u.Address.IsEmpty() {
		u.Address.ApplyTo(&s.Address)
		s.Address.UpdatedAt = now
	}
}
