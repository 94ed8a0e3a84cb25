// Package pgstore is the PostgreSQL persistence backend. Embedded
// sub-entities live in their own tables and are referenced by foreign key,
// read back with JOINs. List predicates are assembled by a query builder
// from only the supplied filters; partial updates assemble a sparse SET
// clause the same way.
package pgstore

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/campusmaps/studyspot/core/csql"
	"github.com/campusmaps/studyspot/core/model"
	"github.com/campusmaps/studyspot/core/store"
)

// Store is the PostgreSQL persistence backend.
type Store struct {
	db         *csql.DB
	studySpots *studySpotCollection
	addresses  *addressCollection
	amenities  *amenitiesCollection
	hours      *hoursCollection
	persons    *personCollection
	pets       *petCollection
	petShops   *petShopCollection
}

// New creates the store and brings the relations up to date. Tables are
// created in dependency order so the foreign keys can be enforced.
func New(db *csql.DB) (*Store, error) {
	s := &Store{
		db:         db,
		studySpots: &studySpotCollection{db: db},
		addresses:  &addressCollection{db: db},
		amenities:  &amenitiesCollection{db: db},
		hours:      &hoursCollection{db: db},
		persons:    &personCollection{db: db},
		pets:       &petCollection{db: db},
		petShops:   &petShopCollection{db: db},
	}

	schema := db.Schema
	createQuery := fmt.Sprintf(`
CREATE table IF NOT EXISTS %[1]s."address" (
	address_id uuid NOT NULL PRIMARY KEY,
	street varchar NOT NULL,
	city varchar NOT NULL,
	state varchar NOT NULL,
	postal_code varchar NOT NULL,
	latitude double precision,
	longitude double precision,
	neighborhood varchar NOT NULL,
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);
CREATE table IF NOT EXISTS %[1]s."amenities" (
	amenities_id uuid NOT NULL PRIMARY KEY,
	wifi_available boolean NOT NULL,
	wifi_network varchar,
	outlets boolean NOT NULL,
	seating varchar NOT NULL,
	refreshments varchar,
	environment text[] NOT NULL DEFAULT '{}',
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);
CREATE table IF NOT EXISTS %[1]s."hours" (
	hours_id uuid NOT NULL PRIMARY KEY,
	mon_start varchar, mon_end varchar,
	tue_start varchar, tue_end varchar,
	wed_start varchar, wed_end varchar,
	thu_start varchar, thu_end varchar,
	fri_start varchar, fri_end varchar,
	sat_start varchar, sat_end varchar,
	sun_start varchar, sun_end varchar,
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);
CREATE table IF NOT EXISTS %[1]s."studyspot" (
	studyspot_id uuid NOT NULL PRIMARY KEY,
	name varchar NOT NULL,
	address_id uuid NOT NULL REFERENCES %[1]s."address" (address_id),
	amenities_id uuid NOT NULL REFERENCES %[1]s."amenities" (amenities_id),
	hours_id uuid NOT NULL REFERENCES %[1]s."hours" (hours_id),
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);
CREATE index IF NOT EXISTS studyspot_created_at ON %[1]s."studyspot" (created_at);
CREATE table IF NOT EXISTS %[1]s."person" (
	person_id uuid NOT NULL PRIMARY KEY,
	first_name varchar NOT NULL,
	last_name varchar NOT NULL,
	email varchar NOT NULL,
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);
CREATE table IF NOT EXISTS %[1]s."pet_shop" (
	pet_shop_id uuid NOT NULL PRIMARY KEY,
	store_name varchar NOT NULL,
	address_id uuid NOT NULL REFERENCES %[1]s."address" (address_id),
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);
CREATE table IF NOT EXISTS %[1]s."pet" (
	pet_id uuid NOT NULL PRIMARY KEY,
	name varchar NOT NULL,
	animal varchar NOT NULL,
	breed varchar NOT NULL,
	pet_shop_id uuid REFERENCES %[1]s."pet_shop" (pet_shop_id) ON DELETE CASCADE,
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);
CREATE index IF NOT EXISTS pet_pet_shop_id ON %[1]s."pet" (pet_shop_id);
`, schema)

	if _, err := db.Exec(createQuery); err != nil {
		return nil, fmt.Errorf("cannot update schema: %w", err)
	}
	return s, nil
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

// Pets returns the standalone pet collection. Pets living in a pet shop
// are reached through their shop, not through this collection.
func (s *Store) Pets() store.Collection[model.Pet, model.PetCreate, model.PetUpdate, store.PetFilter] {
	return s.pets
}

// PetShops returns the pet shop collection.
func (s *Store) PetShops() store.Collection[model.PetShop, model.PetShopCreate, model.PetShopUpdate, store.PetShopFilter] {
	return s.petShops
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// mapError translates driver errors to the store's error surface.
// Unique violations are reported as "23505" by the postgres driver.
func mapError(err error) error {
	if err == csql.ErrNoRows {
		return store.ErrNotFound
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return store.ErrDuplicate
	}
	return err
}

// rollback discards tx, keeping the original error.
func rollback(tx *sql.Tx, err error) error {
	tx.Rollback()
	return err
}
