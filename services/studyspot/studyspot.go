// The studyspot service is the StudySpot API: a CRUD REST catalog of
// study spots, addresses, amenities, opening hours, persons, pets and
// pet shops, with asynchronous geocoding of study spot addresses.
package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	"github.com/campusmaps/studyspot/core/backend"
	"github.com/campusmaps/studyspot/core/csql"
	"github.com/campusmaps/studyspot/core/geocode"
	"github.com/campusmaps/studyspot/core/logger"
	"github.com/campusmaps/studyspot/core/store"
	"github.com/campusmaps/studyspot/core/store/memstore"
	"github.com/campusmaps/studyspot/core/store/pgstore"
)

// Service holds the configuration for this service
//
// use POSTGRES="host=localhost port=5432 user=postgres dbname=postgres sslmode=disable"
type Service struct {
	Store            string `env:"STORE,default=postgres" description:"the persistence backend, postgres or memory"`
	Postgres         string `env:"POSTGRES,default=" description:"the connection string for the Postgres DB"`
	PostgresPassword string `env:"POSTGRES_PASSWORD,default=" description:"password to the Postgres DB"`
	Schema           string `env:"SCHEMA,default=studyspot" description:"the database schema to use"`
	Port             string `env:"PORT,default=3000" description:"the port the service listens on"`
	GeocoderURL      string `env:"GEOCODER_URL,default=" description:"search endpoint of the geocoding service, geocoding is disabled when empty"`
	LogLevel         string `env:"LOG_LEVEL,default=info" description:"the log level"`
}

func main() {
	service := &Service{}
	if err := envdecode.Decode(service); err != nil {
		panic(err)
	}

	logLevel, err := logrus.ParseLevel(service.LogLevel)
	if err != nil {
		panic(err)
	}
	logger.InitLogger(logLevel)
	log := logger.Default()

	var entityStore store.Store
	switch service.Store {
	case "memory":
		log.Infoln("using in-memory store")
		entityStore = memstore.New()
	case "postgres":
		if service.Postgres == "" {
			log.Fatalln("POSTGRES connection string is required for the postgres store")
		}
		db := csql.OpenWithSchema(service.Postgres, service.PostgresPassword, service.Schema)
		defer db.Close()
		entityStore, err = pgstore.New(db)
		if err != nil {
			log.Fatalln("cannot create postgres store:", err)
		}
	default:
		log.Fatalln("unknown store backend:", service.Store)
	}

	var geocoder geocode.Geocoder
	if service.GeocoderURL != "" {
		geocoder = geocode.NewClient(service.GeocoderURL)
	} else {
		log.Infoln("geocoding is disabled")
	}

	router := mux.NewRouter()
	backend.New(&backend.Builder{
		Store:    entityStore,
		Router:   router,
		Geocoder: geocoder,
	})

	log.Infoln("listen on port :" + service.Port)
	log.Fatalln(http.ListenAndServe(":"+service.Port, router))
}
