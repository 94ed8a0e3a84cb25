package model

import (
	"time"

	"github.com/google/uuid"
)

// Person is a registered user of the catalog.
type Person struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PersonCreate is the creation payload for a person.
type PersonCreate struct {
	ID        *uuid.UUID `json:"id,omitempty"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
}

// NewPerson realizes a person from the creation payload.
func NewPerson(c PersonCreate, now time.Time) Person {
	p := Person{
		ID:        uuid.New(),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.ID != nil {
		p.ID = *c.ID
	}
	return p
}

// PersonUpdate is the partial update for a person; only supplied
// fields change.
type PersonUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// IsEmpty returns true if the update carries no fields
func (u PersonUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil
}

// ApplyTo patches the supplied fields into p
func (u PersonUpdate) ApplyTo(p *Person) {
	if u.FirstName != nil {
		p.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		p.LastName = *u.LastName
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
}
