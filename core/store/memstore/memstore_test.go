package memstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campusmaps/studyspot/core/model"
	"github.com/campusmaps/studyspot/core/store"
)

func TestPersonCRUD(t *testing.T) {
	ctx := context.Background()
	persons := New().Persons()

	created, err := persons.Insert(ctx, model.PersonCreate{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == (uuid.UUID{}) || created.CreatedAt.IsZero() {
		t.Fatalf("incomplete entity: %+v", created)
	}

	fetched, err := persons.Get(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fetched.Email != "ada@example.com" {
		t.Fatalf("got %+v", fetched)
	}

	email := "ada@lovelace.example"
	updated, err := persons.Update(ctx, created.ID, model.PersonUpdate{Email: &email})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Email != email || updated.FirstName != "Ada" {
		t.Fatalf("got %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatal("updated timestamp did not advance")
	}

	if _, err := persons.Update(ctx, created.ID, model.PersonUpdate{}); !errors.Is(err, store.ErrNoFields) {
		t.Fatalf("expected ErrNoFields, got %v", err)
	}

	deleted, err := persons.Delete(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if deleted.ID != created.ID {
		t.Fatal("delete did not return the deleted person")
	}
	if _, err := persons.Delete(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := persons.Get(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInsertDuplicateID(t *testing.T) {
	ctx := context.Background()
	pets := New().Pets()

	id := uuid.New()
	if _, err := pets.Insert(ctx, model.PetCreate{ID: &id, Name: "Rex", Animal: "dog", Breed: "Beagle"}); err != nil {
		t.Fatal(err)
	}
	_, err := pets.Insert(ctx, model.PetCreate{ID: &id, Name: "Rex", Animal: "dog", Breed: "Beagle"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestListOrderAndPagination(t *testing.T) {
	ctx := context.Background()
	pets := New().Pets()

	for i := 0; i < 5; i++ {
		if _, err := pets.Insert(ctx, model.PetCreate{
			Name:   fmt.Sprintf("pet-%d", i),
			Animal: "cat",
			Breed:  "Siamese",
		}); err != nil {
			t.Fatal(err)
		}
		time.Sleep(time.Millisecond)
	}

	page, total, err := pets.List(ctx, store.PetFilter{}, store.Page{Number: 1, Size: 3})
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(page) != 3 {
		t.Fatalf("got total %d, page of %d", total, len(page))
	}
	if page[0].Name != "pet-4" {
		t.Fatalf("newest entity must come first, got %s", page[0].Name)
	}
	for i := 1; i < len(page); i++ {
		if page[i].CreatedAt.After(page[i-1].CreatedAt) {
			t.Fatal("page not ordered newest first")
		}
	}

	page, total, err = pets.List(ctx, store.PetFilter{}, store.Page{Number: 2, Size: 3})
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(page) != 2 {
		t.Fatalf("got total %d, page of %d", total, len(page))
	}

	// a page beyond the last match is empty but keeps the total
	page, total, err = pets.List(ctx, store.PetFilter{}, store.Page{Number: 7, Size: 3})
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(page) != 0 {
		t.Fatalf("got total %d, page of %d", total, len(page))
	}
}

func TestFilterSubstringFold(t *testing.T) {
	ctx := context.Background()
	spots := New().StudySpots()

	names := []string{"Bryant Park Reading Room", "Think Coffee", "The Bean"}
	for _, name := range names {
		if _, err := spots.Insert(ctx, model.StudySpotCreate{
			Name: name,
			Address: model.AddressCreate{
				Street:       "1 Main St",
				PostalCode:   "10001",
				Neighborhood: model.NeighborhoodChelsea,
			},
			Amenity: model.AmenitiesCreate{Seating: model.SeatingOneToFive},
		}); err != nil {
			t.Fatal(err)
		}
	}

	page, total, err := spots.List(ctx, store.StudySpotFilter{Name: "COFFEE"}, store.Page{Number: 1, Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(page) != 1 || page[0].Name != "Think Coffee" {
		t.Fatalf("case-insensitive substring match failed: total %d, %+v", total, page)
	}

	_, total, err = spots.List(ctx, store.StudySpotFilter{Name: "the"}, store.Page{Number: 1, Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Fatalf("expected 2 matches for %q, got %d", "the", total)
	}
}

func TestFilterEnvironment(t *testing.T) {
	ctx := context.Background()
	spots := New().StudySpots()

	insert := func(name string, env []model.Environment) {
		t.Helper()
		if _, err := spots.Insert(ctx, model.StudySpotCreate{
			Name: name,
			Address: model.AddressCreate{
				Street:       "1 Main St",
				PostalCode:   "10001",
				Neighborhood: model.NeighborhoodSoHo,
			},
			Amenity: model.AmenitiesCreate{Seating: model.SeatingOneToFive, Environment: env},
		}); err != nil {
			t.Fatal(err)
		}
	}
	insert("quiet spot", []model.Environment{model.EnvironmentQuiet, model.EnvironmentIndoor})
	insert("lively spot", []model.Environment{model.EnvironmentLively})

	page, total, err := spots.List(ctx,
		store.StudySpotFilter{Environment: model.EnvironmentQuiet}, store.Page{Number: 1, Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || page[0].Name != "quiet spot" {
		t.Fatalf("environment filter failed: total %d, %+v", total, page)
	}
}

func TestSetCoordinates(t *testing.T) {
	ctx := context.Background()
	spots := New().StudySpots()

	created, err := spots.Insert(ctx, model.StudySpotCreate{
		Name: "Poets House",
		Address: model.AddressCreate{
			Street:       "10 River Terrace",
			PostalCode:   "10282",
			Neighborhood: model.NeighborhoodTribeca,
		},
		Amenity: model.AmenitiesCreate{Seating: model.SeatingSixToTen},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := spots.SetCoordinates(ctx, created.ID, 40.7156, -74.0165); err != nil {
		t.Fatal(err)
	}
	spot, err := spots.Get(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if spot.Address.Latitude == nil || *spot.Address.Latitude != 40.7156 {
		t.Fatalf("latitude not set: %+v", spot.Address)
	}
	if spot.Address.Longitude == nil || *spot.Address.Longitude != -74.0165 {
		t.Fatalf("longitude not set: %+v", spot.Address)
	}

	if err := spots.SetCoordinates(ctx, uuid.New(), 1, 2); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
