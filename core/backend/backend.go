// Package backend binds the store collections to REST routes. Every
// resource gets the same five operations: create, list with optional
// filters and pagination, read, partial update, and delete. Reads carry
// ETags, lists carry pagination headers and links. The geocode flow runs
// as a background job that writes resolved coordinates back into the
// owning study spot.
package backend

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/campusmaps/studyspot/core/geocode"
	"github.com/campusmaps/studyspot/core/jobs"
	"github.com/campusmaps/studyspot/core/logger"
	"github.com/campusmaps/studyspot/core/schema"
	"github.com/campusmaps/studyspot/core/store"
)

//go:embed schemas
var schemaFiles embed.FS

// Backend is the REST layer over a store.
type Backend struct {
	store     store.Store
	router    *mux.Router
	geocoder  geocode.Geocoder
	jobs      *jobs.Tracker
	validator *schema.Validator
}

// Builder collects the dependencies of a Backend.
type Builder struct {
	// Store is the persistence backend. This is mandatory.
	Store store.Store
	// Router is a mux router. This is mandatory.
	Router *mux.Router
	// Geocoder resolves addresses to coordinates. This is optional; without
	// it the geocode route answers 503.
	Geocoder geocode.Geocoder
}

// New realizes the backend and adds all routes to the router.
func New(bb *Builder) *Backend {
	if bb.Store == nil {
		panic("store is missing")
	}
	if bb.Router == nil {
		panic("router is missing")
	}

	schemaFS, err := fs.Sub(schemaFiles, "schemas")
	if err != nil {
		panic(fmt.Errorf("cannot open schema files: %s", err))
	}
	validator, err := schema.NewValidatorFromFS(schemaFS)
	if err != nil {
		panic(fmt.Errorf("cannot compile payload schemas: %s", err))
	}

	b := &Backend{
		store:     bb.Store,
		router:    bb.Router,
		geocoder:  bb.Geocoder,
		jobs:      jobs.NewTracker(),
		validator: validator,
	}

	b.handleCORS()
	logger.AddRequestID(b.router)
	b.handleHealthRoutes(b.router)
	b.handleResourceRoutes(b.router)
	b.handleGeocodeRoutes(b.router)
	return b
}

// Router returns the mux router the routes were added to.
func (b *Backend) Router() *mux.Router {
	return b.router
}

func (b *Backend) handleResourceRoutes(router *mux.Router) {
	logger.Default().Infoln("backend: adding resource routes")

	addResourceRoutes(b, router, "studyspot", b.store.StudySpots(), parseStudySpotFilter)
	addResourceRoutes(b, router, "address", b.store.Addresses(), parseAddressFilter)
	addResourceRoutes(b, router, "amenity", b.store.Amenities(), parseAmenitiesFilter)
	addResourceRoutes(b, router, "hours", b.store.Hours(), parseHoursFilter)
	addResourceRoutes(b, router, "person", b.store.Persons(), parsePersonFilter)
	addResourceRoutes(b, router, "pet", b.store.Pets(), parsePetFilter)
	addResourceRoutes(b, router, "petshop", b.store.PetShops(), parsePetShopFilter)
}

// filter parsers, one per resource. Unknown query parameters are
// rejected so that typos do not silently return the whole collection.

func parseStudySpotFilter(query url.Values) (store.StudySpotFilter, error) {
	var f store.StudySpotFilter
	for key := range query {
		value := query.Get(key)
		switch key {
		case "name":
			f.Name = value
		case "city":
			f.City = value
		case "neighborhood":
			n, err := parseNeighborhoodParam(key, value)
			if err != nil {
				return f, err
			}
			f.Neighborhood = n
		case "wifi":
			ptr, err := parseBoolParam(key, value)
			if err != nil {
				return f, err
			}
			f.Wifi = ptr
		case "outlets":
			ptr, err := parseBoolParam(key, value)
			if err != nil {
				return f, err
			}
			f.Outlets = ptr
		case "seating":
			s, err := parseSeatingParam(key, value)
			if err != nil {
				return f, err
			}
			f.Seating = s
		case "refreshments":
			f.Refreshments = value
		case "environment":
			e, err := parseEnvironmentParam(key, value)
			if err != nil {
				return f, err
			}
			f.Environment = e
		default:
			return f, errUnknownParameter(key)
		}
	}
	return f, nil
}

func parseAddressFilter(query url.Values) (store.AddressFilter, error) {
	var f store.AddressFilter
	for key := range query {
		value := query.Get(key)
		switch key {
		case "street":
			f.Street = value
		case "city":
			f.City = value
		case "state":
			f.State = value
		case "postal_code":
			f.PostalCode = value
		case "neighborhood":
			n, err := parseNeighborhoodParam(key, value)
			if err != nil {
				return f, err
			}
			f.Neighborhood = n
		default:
			return f, errUnknownParameter(key)
		}
	}
	return f, nil
}

func parseAmenitiesFilter(query url.Values) (store.AmenitiesFilter, error) {
	var f store.AmenitiesFilter
	for key := range query {
		value := query.Get(key)
		switch key {
		case "wifi":
			ptr, err := parseBoolParam(key, value)
			if err != nil {
				return f, err
			}
			f.Wifi = ptr
		case "outlets":
			ptr, err := parseBoolParam(key, value)
			if err != nil {
				return f, err
			}
			f.Outlets = ptr
		case "seating":
			s, err := parseSeatingParam(key, value)
			if err != nil {
				return f, err
			}
			f.Seating = s
		default:
			return f, errUnknownParameter(key)
		}
	}
	return f, nil
}

func parseHoursFilter(query url.Values) (store.HoursFilter, error) {
	var f store.HoursFilter
	for key := range query {
		return f, errUnknownParameter(key)
	}
	return f, nil
}

func parsePersonFilter(query url.Values) (store.PersonFilter, error) {
	var f store.PersonFilter
	for key := range query {
		value := query.Get(key)
		switch key {
		case "email":
			f.Email = value
		case "last_name":
			f.LastName = value
		default:
			return f, errUnknownParameter(key)
		}
	}
	return f, nil
}

func parsePetFilter(query url.Values) (store.PetFilter, error) {
	var f store.PetFilter
	for key := range query {
		value := query.Get(key)
		switch key {
		case "name":
			f.Name = value
		case "animal":
			f.Animal = value
		case "breed":
			f.Breed = value
		default:
			return f, errUnknownParameter(key)
		}
	}
	return f, nil
}

func parsePetShopFilter(query url.Values) (store.PetShopFilter, error) {
	var f store.PetShopFilter
	for key := range query {
		value := query.Get(key)
		switch key {
		case "store_name":
			f.StoreName = value
		case "city":
			f.City = value
		default:
			return f, errUnknownParameter(key)
		}
	}
	return f, nil
}

func errUnknownParameter(key string) error {
	return fmt.Errorf("parameter '%s': unknown query parameter", key)
}

func (b *Backend) handleCORS() {
	corsMiddleware := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "*")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				logger.FromContext(r.Context()).Debugln("called route for", r.URL, r.Method, " (handled by CORS middleware)")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			h.ServeHTTP(w, r)
		})
	}
	b.router.Use(corsMiddleware)
}
