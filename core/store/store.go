// Package store defines the persistence contract of the StudySpot API.
// There are two implementations: memstore keeps everything in process
// memory, pgstore persists to PostgreSQL.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/campusmaps/studyspot/core/model"
)

// persistence errors surfaced to the HTTP layer
var (
	// ErrNotFound is returned when no entity exists under the requested id.
	ErrNotFound = errors.New("not found")
	// ErrNoFields is returned by Update when the sparse field set is empty.
	ErrNoFields = errors.New("no fields supplied")
	// ErrDuplicate is returned by Insert when the id already exists.
	ErrDuplicate = errors.New("id already exists")
)

// Page selects one page of a filtered listing. Number starts at 1.
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of items to skip before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Collection is the uniform CRUD contract every resource store fulfills.
// Update applies only the supplied fields and refreshes the updated
// timestamp; Delete returns the deleted representation. List returns one
// page plus the total number of matches.
type Collection[R, C, U, F any] interface {
	Insert(ctx context.Context, c C) (R, error)
	Get(ctx context.Context, id uuid.UUID) (R, error)
	Update(ctx context.Context, id uuid.UUID, u U) (R, error)
	Delete(ctx context.Context, id uuid.UUID) (R, error)
	List(ctx context.Context, filter F, page Page) ([]R, int, error)
}

// StudySpotCollection extends the uniform contract with the geocode
// write-back used by the background geocode job.
type StudySpotCollection interface {
	Collection[model.StudySpot, model.StudySpotCreate, model.StudySpotUpdate, StudySpotFilter]
	SetCoordinates(ctx context.Context, id uuid.UUID, latitude, longitude float64) error
}

// Store bundles all resource collections of one persistence backend.
type Store interface {
	StudySpots() StudySpotCollection
	Addresses() Collection[model.Address, model.AddressCreate, model.AddressUpdate, AddressFilter]
	Amenities() Collection[model.Amenities, model.AmenitiesCreate, model.AmenitiesUpdate, AmenitiesFilter]
	Hours() Collection[model.Hours, model.HoursCreate, model.HoursUpdate, HoursFilter]
	Persons() Collection[model.Person, model.PersonCreate, model.PersonUpdate, PersonFilter]
	Pets() Collection[model.Pet, model.PetCreate, model.PetUpdate, PetFilter]
	PetShops() Collection[model.PetShop, model.PetShopCreate, model.PetShopUpdate, PetShopFilter]
}
