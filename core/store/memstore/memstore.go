// Package memstore is the in-memory persistence backend. It serves the
// same contract as pgstore but keeps all entities in process maps, so it
// suits development and the test suite. All access is guarded by a
// read-write mutex per collection.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campusmaps/studyspot/core/model"
	"github.com/campusmaps/studyspot/core/store"
)

// collection is a generic in-memory resource collection. The entity
// specific behavior is injected as functions.
type collection[R, C, U, F any] struct {
	mu      sync.RWMutex
	items   map[uuid.UUID]R
	realize func(C, time.Time) R
	id      func(R) uuid.UUID
	created func(R) time.Time
	isEmpty func(U) bool
	apply   func(U, *R, time.Time)
	match   func(F, R) bool
}

func (c *collection[R, C, U, F]) Insert(ctx context.Context, create C) (R, error) {
	now := time.Now().UTC()
	item := c.realize(create, now)

	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.id(item)
	if _, ok := c.items[id]; ok {
		var zero R
		return zero, store.ErrDuplicate
	}
	c.items[id] = item
	return item, nil
}

func (c *collection[R, C, U, F]) Get(ctx context.Context, id uuid.UUID) (R, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	if !ok {
		var zero R
		return zero, store.ErrNotFound
	}
	return item, nil
}

func (c *collection[R, C, U, F]) Update(ctx context.Context, id uuid.UUID, update U) (R, error) {
	var zero R
	if c.isEmpty(update) {
		return zero, store.ErrNoFields
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	if !ok {
		return zero, store.ErrNotFound
	}
	c.apply(update, &item, time.Now().UTC())
	c.items[id] = item
	return item, nil
}

func (c *collection[R, C, U, F]) Delete(ctx context.Context, id uuid.UUID) (R, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	if !ok {
		var zero R
		return zero, store.ErrNotFound
	}
	delete(c.items, id)
	return item, nil
}

// List filters the collection, orders newest first and returns the
// requested page plus the total number of matches.
func (c *collection[R, C, U, F]) List(ctx context.Context, filter F, page store.Page) ([]R, int, error) {
	c.mu.RLock()
	matches := make([]R, 0, len(c.items))
	for _, item := range c.items {
		if c.match(filter, item) {
			matches = append(matches, item)
		}
	}
	c.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		ti, tj := c.created(matches[i]), c.created(matches[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return c.id(matches[i]).String() > c.id(matches[j]).String()
	})

	total := len(matches)
	offset := page.Offset()
	if offset >= total {
		return []R{}, total, nil
	}
	end := offset + page.Size
	if end > total {
		end = total
	}
	return matches[offset:end], total, nil
}

// containsFold reports whether needle occurs in haystack, ignoring case.
// This mirrors the ILIKE substring semantics of the SQL backend.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

type studySpotCollection struct {
	collection[model.StudySpot, model.StudySpotCreate, model.StudySpotUpdate, store.StudySpotFilter]
}

// SetCoordinates writes resolved coordinates back into the spot's address
// and refreshes the updated timestamps.
func (c *studySpotCollection) SetCoordinates(ctx context.Context, id uuid.UUID, latitude, longitude float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	spot, ok := c.items[id]
	if !ok {
		return store.ErrNotFound
	}
	now := time.Now().UTC()
	spot.Address.Latitude = &latitude
	spot.Address.Longitude = &longitude
	spot.Address.UpdatedAt = now
	spot.UpdatedAt = now
	c.items[id] = spot
	return nil
}

// Store is the in-memory persistence backend.
type Store struct {
	studySpots *studySpotCollection
	addresses  *collection[model.Address, model.AddressCreate, model.AddressUpdate, store.AddressFilter]
	amenities  *collection[model.Amenities, model.AmenitiesCreate, model.AmenitiesUpdate, store.AmenitiesFilter]
	hours      *collection[model.Hours, model.HoursCreate, model.HoursUpdate, store.HoursFilter]
	persons    *collection[model.Person, model.PersonCreate, model.PersonUpdate, store.PersonFilter]
	pets       *collection[model.Pet, model.PetCreate, model.PetUpdate, store.PetFilter]
	petShops   *collection[model.PetShop, model.PetShopCreate, model.PetShopUpdate, store.PetShopFilter]
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		studySpots: &studySpotCollection{collection[model.StudySpot, model.StudySpotCreate, model.StudySpotUpdate, store.StudySpotFilter]{
			items:   map[uuid.UUID]model.StudySpot{},
			realize: model.NewStudySpot,
			id:      func(s model.StudySpot) uuid.UUID { return s.ID },
			created: func(s model.StudySpot) time.Time { return s.CreatedAt },
			isEmpty: model.StudySpotUpdate.IsEmpty,
			apply: func(u model.StudySpotUpdate, s *model.StudySpot, now time.Time) {
				u.ApplyTo(s, now)
				s.UpdatedAt = now
			},
			match: matchStudySpot,
		}},
		addresses: &collection[model.Address, model.AddressCreate, model.AddressUpdate, store.AddressFilter]{
			items:   map[uuid.UUID]model.Address{},
			realize: model.NewAddress,
			id:      func(a model.Address) uuid.UUID { return a.ID },
			created: func(a model.Address) time.Time { return a.CreatedAt },
			isEmpty: model.AddressUpdate.IsEmpty,
			apply: func(u model.AddressUpdate, a *model.Address, now time.Time) {
				u.ApplyTo(a)
				a.UpdatedAt = now
			},
			match: matchAddress,
		},
		amenities: &collection[model.Amenities, model.AmenitiesCreate, model.AmenitiesUpdate, store.AmenitiesFilter]{
			items:   map[uuid.UUID]model.Amenities{},
			realize: model.NewAmenities,
			id:      func(a model.Amenities) uuid.UUID { return a.ID },
			created: func(a model.Amenities) time.Time { return a.CreatedAt },
			isEmpty: model.AmenitiesUpdate.IsEmpty,
			apply: func(u model.AmenitiesUpdate, a *model.Amenities, now time.Time) {
				u.ApplyTo(a)
				a.UpdatedAt = now
			},
			match: matchAmenities,
		},
		hours: &collection[model.Hours, model.HoursCreate, model.HoursUpdate, store.HoursFilter]{
			items:   map[uuid.UUID]model.Hours{},
			realize: model.NewHours,
			id:      func(h model.Hours) uuid.UUID { return h.ID },
			created: func(h model.Hours) time.Time { return h.CreatedAt },
			isEmpty: model.HoursUpdate.IsEmpty,
			apply: func(u model.HoursUpdate, h *model.Hours, now time.Time) {
				u.ApplyTo(h)
				h.UpdatedAt = now
			},
			match: func(store.HoursFilter, model.Hours) bool { return true },
		},
		persons: &collection[model.Person, model.PersonCreate, model.PersonUpdate, store.PersonFilter]{
			items:   map[uuid.UUID]model.Person{},
			realize: model.NewPerson,
			id:      func(p model.Person) uuid.UUID { return p.ID },
			created: func(p model.Person) time.Time { return p.CreatedAt },
			isEmpty: model.PersonUpdate.IsEmpty,
			apply: func(u model.PersonUpdate, p *model.Person, now time.Time) {
				u.ApplyTo(p)
				p.UpdatedAt = now
			},
			match: matchPerson,
		},
		pets: &collection[model.Pet, model.PetCreate, model.PetUpdate, store.PetFilter]{
			items:   map[uuid.UUID]model.Pet{},
			realize: model.NewPet,
			id:      func(p model.Pet) uuid.UUID { return p.ID },
			created: func(p model.Pet) time.Time { return p.CreatedAt },
			isEmpty: model.PetUpdate.IsEmpty,
			apply: func(u model.PetUpdate, p *model.Pet, now time.Time) {
				u.ApplyTo(p)
				p.UpdatedAt = now
			},
			match: matchPet,
		},
		petShops: &collection[model.PetShop, model.PetShopCreate, model.PetShopUpdate, store.PetShopFilter]{
			items:   map[uuid.UUID]model.PetShop{},
			realize: model.NewPetShop,
			id:      func(s model.PetShop) uuid.UUID { return s.ID },
			created: func(s model.PetShop) time.Time { return s.CreatedAt },
			isEmpty: model.PetShopUpdate.IsEmpty,
			apply: func(u model.PetShopUpdate, s *model.PetShop, now time.Time) {
				u.ApplyTo(s, now)
				s.UpdatedAt = now
			},
			match: matchPetShop,
		},
	}
}

// StudySpots returns the study spot collection.
func (s *Store) StudySpots() store.StudySpotCollection { return s.studySpots }

// Addresses returns the address collection.
func (s *Store) Addresses() store.Collection[model.Address, model.AddressCreate, model.AddressUpdate, store.AddressFilter] {
	return s.addresses
}

// Amenities returns the amenities collection.
func (s *Store) Amenities() store.Collection[model.Amenities, model.AmenitiesCreate, model.AmenitiesUpdate, store.AmenitiesFilter] {
	return s.amenities
}

// Hours returns the opening hours collection.
func (s *Store) Hours() store.Collection[model.Hours, model.HoursCreate, model.HoursUpdate, store.HoursFilter] {
	return s.hours
}

// Persons returns the person collection.
func (s *Store) Persons() store.Collection[model.Person, model.PersonCreate, model.PersonUpdate, store.PersonFilter] {
	return s.persons
}

// Pets returns the pet collection.
func (s *Store) Pets() store.Collection[model.Pet, model.PetCreate, model.PetUpdate, store.PetFilter] {
	return s.pets
}

// PetShops returns the pet shop collection.
func (s *Store) PetShops() store.Collection[model.PetShop, model.PetShopCreate, model.PetShopUpdate, store.PetShopFilter] {
	return s.petShops
}

func matchStudySpot(f store.StudySpotFilter, s model.StudySpot) bool {
	if f.Name != "" && !containsFold(s.Name, f.Name) {
		return false
	}
	if f.City != "" && s.Address.City != f.City {
		return false
	}
	if f.Neighborhood != "" && s.Address.Neighborhood != f.Neighborhood {
		return false
	}
	if f.Wifi != nil && s.Amenity.WifiAvailable != *f.Wifi {
		return false
	}
	if f.Outlets != nil && s.Amenity.Outlets != *f.Outlets {
		return false
	}
	if f.Seating != "" && s.Amenity.Seating != f.Seating {
		return false
	}
	if f.Refreshments != "" {
		if s.Amenity.Refreshments == nil || !containsFold(*s.Amenity.Refreshments, f.Refreshments) {
			return false
		}
	}
	if f.Environment != "" {
		found := false
		for _, e := range s.Amenity.Environment {
			if e == f.Environment {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func matchAddress(f store.AddressFilter, a model.Address) bool {
	if f.Street != "" && !containsFold(a.Street, f.Street) {
		return false
	}
	if f.City != "" && a.City != f.City {
		return false
	}
	if f.State != "" && a.State != f.State {
		return false
	}
	if f.PostalCode != "" && a.PostalCode != f.PostalCode {
		return false
	}
	if f.Neighborhood != "" && a.Neighborhood != f.Neighborhood {
		return false
	}
	return true
}

func matchAmenities(f store.AmenitiesFilter, a model.Amenities) bool {
	if f.Wifi != nil && a.WifiAvailable != *f.Wifi {
		return false
	}
	if f.Outlets != nil && a.Outlets != *f.Outlets {
		return false
	}
	if f.Seating != "" && a.Seating != f.Seating {
		return false
	}
	return true
}

func matchPerson(f store.PersonFilter, p model.Person) bool {
	if f.Email != "" && p.Email != f.Email {
		return false
	}
	if f.LastName != "" && !containsFold(p.LastName, f.LastName) {
		return false
	}
	return true
}

func matchPet(f store.PetFilter, p model.Pet) bool {
	if f.Name != "" && !containsFold(p.Name, f.Name) {
		return false
	}
	if f.Animal != "" && p.Animal != f.Animal {
		return false
	}
	if f.Breed != "" && p.Breed != f.Breed {
		return false
	}
	return true
}

func matchPetShop(f store.PetShopFilter, s model.PetShop) bool {
	if f.StoreName != "" && !containsFold(s.StoreName, f.StoreName) {
		return false
	}
	if f.City != "" && s.Address.City != f.City {
		return false
	}
	return true
}
