package backend

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"

	"github.com/campusmaps/studyspot/core"
	"github.com/campusmaps/studyspot/core/client"
	"github.com/campusmaps/studyspot/core/geocode"
	"github.com/campusmaps/studyspot/core/model"
	"github.com/campusmaps/studyspot/core/store/memstore"
)

// stubGeocoder lets each test decide how geocoding behaves.
type stubGeocoder struct {
	mu sync.Mutex
	fn func(query string) (geocode.Result, error)
}

func (g *stubGeocoder) set(fn func(query string) (geocode.Result, error)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fn = fn
}

func (g *stubGeocoder) Geocode(_ context.Context, query string) (geocode.Result, error) {
	g.mu.Lock()
	fn := g.fn
	g.mu.Unlock()
	if fn == nil {
		return geocode.Result{}, fmt.Errorf("no geocoder configured")
	}
	return fn(query)
}

type testServiceT struct {
	backend  *Backend
	client   client.Client
	geocoder *stubGeocoder
}

var testService testServiceT

func TestMain(m *testing.M) {
	router := mux.NewRouter()
	testService.geocoder = &stubGeocoder{}
	testService.backend = New(&Builder{
		Store:    memstore.New(),
		Router:   router,
		Geocoder: testService.geocoder,
	})
	testService.client = client.NewWithRouter(router)

	os.Exit(m.Run())
}

func newSpotPayload(name string) model.StudySpotCreate {
	return model.StudySpotCreate{
		Name: name,
		Address: model.AddressCreate{
			Street:       "11 Broadway",
			PostalCode:   "10004",
			Neighborhood: model.NeighborhoodFinancialDistrict,
		},
		Amenity: model.AmenitiesCreate{
			WifiAvailable: true,
			Outlets:       true,
			Seating:       model.SeatingSixToTen,
			Environment:   []model.Environment{model.EnvironmentQuiet, model.EnvironmentIndoor},
		},
		Hours: model.HoursCreate{
			MonStart: &model.TimeOfDay{Hour: 8},
			MonEnd:   &model.TimeOfDay{Hour: 22},
		},
	}
}

func TestWelcome(t *testing.T) {
	var welcome struct {
		Message string `json:"message"`
	}
	if _, err := testService.client.RawGet("/", &welcome); err != nil {
		t.Fatal(err)
	}
	if welcome.Message == "" {
		t.Fatal("no welcome message")
	}
}

func TestHealth(t *testing.T) {
	var health Health
	if _, err := testService.client.RawGet("/health?echo=ping", &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "OK" || health.StatusMessage != "Healthy" {
		t.Fatalf("unexpected health report: %+v", health)
	}
	if health.Echo != "ping" {
		t.Fatalf("echo not reflected: %+v", health)
	}
	if health.Timestamp.IsZero() {
		t.Fatal("no timestamp")
	}

	if _, err := testService.client.RawGet("/health/pong", &health); err != nil {
		t.Fatal(err)
	}
	if health.PathEcho != "pong" {
		t.Fatalf("path echo not reflected: %+v", health)
	}
}

func TestStudySpotCRUD(t *testing.T) {
	payload := newSpotPayload(t.Name())

	var created model.StudySpot
	if _, err := testService.client.RawPost("/studyspots", payload, &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == (uuid.UUID{}) {
		t.Fatal("no id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("no timestamps")
	}
	if created.Address.City != "New York" || created.Address.State != "NY" {
		t.Fatalf("city/state defaults not applied: %+v", created.Address)
	}

	var fetched model.StudySpot
	if _, err := testService.client.RawGet("/studyspots/"+created.ID.String(), &fetched); err != nil {
		t.Fatal(err)
	}
	if fetched.Name != payload.Name ||
		fetched.Address.Street != payload.Address.Street ||
		fetched.Amenity.Seating != payload.Amenity.Seating ||
		fetched.Hours.MonStart == nil || fetched.Hours.MonStart.Hour != 8 {
		t.Fatalf("fetched spot does not match created: %+v", fetched)
	}

	// patch a single field, everything else must stay
	newName := t.Name() + " renamed"
	var patched model.StudySpot
	if _, err := testService.client.RawPatch("/studyspots/"+created.ID.String(),
		model.StudySpotUpdate{Name: &newName}, &patched); err != nil {
		t.Fatal(err)
	}
	if patched.Name != newName {
		t.Fatal("name not patched")
	}
	if patched.Address.Street != payload.Address.Street {
		t.Fatal("patch changed an unsupplied field")
	}
	if !patched.UpdatedAt.After(created.UpdatedAt) {
		t.Fatal("updated timestamp did not advance")
	}

	// delete returns the deleted representation
	var deleted model.StudySpot
	if _, err := testService.client.RawDelete("/studyspots/"+created.ID.String(), &deleted); err != nil {
		t.Fatal(err)
	}
	if deleted.ID != created.ID {
		t.Fatal("delete did not return the deleted spot")
	}

	// second delete and get answer 404
	if status, _ := testService.client.RawDelete("/studyspots/"+created.ID.String(), nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", status)
	}
	if status, _ := testService.client.RawGet("/studyspots/"+created.ID.String(), nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
}

func TestCreateWithClientSuppliedID(t *testing.T) {
	id := uuid.New()
	payload := newSpotPayload(t.Name())
	payload.ID = &id

	var created model.StudySpot
	if _, err := testService.client.RawPost("/studyspots", payload, &created); err != nil {
		t.Fatal(err)
	}
	if created.ID != id {
		t.Fatalf("client id not honored, got %s", created.ID)
	}

	// the same id again is a bad request
	status, _ := testService.client.RawPost("/studyspots", payload, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate id, got %d", status)
	}
}

func TestCreateValidation(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"missing name", `{"address":{"street":"1 Main","postal_code":"10001","neighborhood":"Chelsea"},"amenity":{"wifi_available":true,"outlets":false,"seating":"1-5"},"hours":{}}`},
		{"unknown neighborhood", `{"name":"x","address":{"street":"1 Main","postal_code":"10001","neighborhood":"Brooklyn Heights"},"amenity":{"wifi_available":true,"outlets":false,"seating":"1-5"},"hours":{}}`},
		{"bad seating bucket", `{"name":"x","address":{"street":"1 Main","postal_code":"10001","neighborhood":"Chelsea"},"amenity":{"wifi_available":true,"outlets":false,"seating":"hundreds"},"hours":{}}`},
		{"bad opening time", `{"name":"x","address":{"street":"1 Main","postal_code":"10001","neighborhood":"Chelsea"},"amenity":{"wifi_available":true,"outlets":false,"seating":"1-5"},"hours":{"mon_start":"25:99"}}`},
		{"unknown property", `{"name":"x","rating":5,"address":{"street":"1 Main","postal_code":"10001","neighborhood":"Chelsea"},"amenity":{"wifi_available":true,"outlets":false,"seating":"1-5"},"hours":{}}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := testService.client.RawPost("/studyspots", []byte(tc.body), nil)
			if status != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", status)
			}
		})
	}
}

func TestUpdateWithoutFields(t *testing.T) {
	var created model.StudySpot
	if _, err := testService.client.RawPost("/studyspots", newSpotPayload(t.Name()), &created); err != nil {
		t.Fatal(err)
	}
	status, _ := testService.client.RawPatch("/studyspots/"+created.ID.String(), []byte(`{}`), nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty update, got %d", status)
	}
}

func TestNestedPartialUpdate(t *testing.T) {
	var created model.StudySpot
	if _, err := testService.client.RawPost("/studyspots", newSpotPayload(t.Name()), &created); err != nil {
		t.Fatal(err)
	}

	wifi := false
	var patched model.StudySpot
	if _, err := testService.client.RawPatch("/studyspots/"+created.ID.String(),
		model.StudySpotUpdate{Amenity: &model.AmenitiesUpdate{WifiAvailable: &wifi}}, &patched); err != nil {
		t.Fatal(err)
	}
	if patched.Amenity.WifiAvailable {
		t.Fatal("wifi flag not patched")
	}
	if patched.Amenity.Seating != created.Amenity.Seating {
		t.Fatal("patch changed an unsupplied amenity field")
	}
	if patched.Address.Street != created.Address.Street {
		t.Fatal("patch touched the address")
	}
	if !patched.Amenity.UpdatedAt.After(created.Amenity.UpdatedAt) {
		t.Fatal("amenity updated timestamp did not advance")
	}
}

func TestPersonListFilterAndPagination(t *testing.T) {
	for i := 0; i < 5; i++ {
		person := model.PersonCreate{
			FirstName: "Pat",
			LastName:  fmt.Sprintf("%s-%d", t.Name(), i),
			Email:     fmt.Sprintf("pat%d@%s.example.com", i, strings.ToLower(t.Name())),
		}
		if _, err := testService.client.RawPost("/persons", person, nil); err != nil {
			t.Fatal(err)
		}
	}

	// substring filter matches all five created here
	var persons []model.Person
	_, header, err := testService.client.RawGetWithHeader(
		"/persons?last_name="+t.Name()+"&page_size=2", nil, &persons)
	if err != nil {
		t.Fatal(err)
	}
	if len(persons) != 2 {
		t.Fatalf("expected page of 2, got %d", len(persons))
	}
	if got := header.Get("Pagination-Total-Count"); got != "5" {
		t.Fatalf("expected total count 5, got %s", got)
	}
	if got := header.Get("Pagination-Page-Count"); got != "3" {
		t.Fatalf("expected page count 3, got %s", got)
	}
	if got := header.Get("Pagination-Current-Page"); got != "1" {
		t.Fatalf("expected current page 1, got %s", got)
	}
	if got := header.Get("Pagination-Limit"); got != "2" {
		t.Fatalf("expected limit 2, got %s", got)
	}

	link := header.Get("Link")
	if !strings.Contains(link, `rel="first"`) || !strings.Contains(link, `rel="next"`) ||
		!strings.Contains(link, `rel="last"`) {
		t.Fatalf("incomplete link header: %s", link)
	}
	if strings.Contains(link, `rel="prev"`) {
		t.Fatalf("unexpected prev link on first page: %s", link)
	}

	// the last page has one element and a prev link
	_, header, err = testService.client.RawGetWithHeader(
		"/persons?last_name="+t.Name()+"&page_size=2&page=3", nil, &persons)
	if err != nil {
		t.Fatal(err)
	}
	if len(persons) != 1 {
		t.Fatalf("expected 1 person on last page, got %d", len(persons))
	}
	if link := header.Get("Link"); !strings.Contains(link, `rel="prev"`) {
		t.Fatalf("missing prev link on last page: %s", link)
	}

	// beyond the last page the list is empty but the total is kept
	_, header, err = testService.client.RawGetWithHeader(
		"/persons?last_name="+t.Name()+"&page_size=2&page=9", nil, &persons)
	if err != nil {
		t.Fatal(err)
	}
	if len(persons) != 0 {
		t.Fatalf("expected empty page, got %d", len(persons))
	}
	if got := header.Get("Pagination-Total-Count"); got != "5" {
		t.Fatalf("expected total count 5 beyond last page, got %s", got)
	}

	// an exact-match filter that matches nothing
	if _, err := testService.client.RawGet("/persons?email=nobody@example.org&last_name="+t.Name(), &persons); err != nil {
		t.Fatal(err)
	}
	if len(persons) != 0 {
		t.Fatalf("expected no persons, got %d", len(persons))
	}
}

func TestRequestLogCarriesOperation(t *testing.T) {
	hook := logrustest.NewGlobal()
	defer hook.Reset()
	level := logrus.GetLevel()
	logrus.SetLevel(logrus.DebugLevel)
	defer logrus.SetLevel(level)

	var created model.StudySpot
	if _, err := testService.client.RawPost("/studyspots", newSpotPayload(t.Name()), &created); err != nil {
		t.Fatal(err)
	}
	var persons []model.Person
	if _, err := testService.client.RawGet("/persons", &persons); err != nil {
		t.Fatal(err)
	}

	logged := map[core.Operation]bool{}
	for _, entry := range hook.AllEntries() {
		if op, ok := entry.Data["operation"].(core.Operation); ok {
			logged[op] = true
		}
	}
	if !logged[core.OperationCreate] {
		t.Fatal("create request not tagged with its operation")
	}
	if !logged[core.OperationList] {
		t.Fatal("list request not tagged with its operation")
	}
}

func TestListUnknownParameter(t *testing.T) {
	status, _ := testService.client.RawGet("/persons?shoe_size=44", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown parameter, got %d", status)
	}
}

func TestPageSizeCap(t *testing.T) {
	var persons []model.Person
	_, header, err := testService.client.RawGetWithHeader("/persons?page_size=1000", nil, &persons)
	if err != nil {
		t.Fatal(err)
	}
	limit, _ := strconv.Atoi(header.Get("Pagination-Limit"))
	if limit != maxPageSize {
		t.Fatalf("expected page size capped at %d, got %d", maxPageSize, limit)
	}
}

func TestEtagGet(t *testing.T) {
	var created model.StudySpot
	if _, err := testService.client.RawPost("/studyspots", newSpotPayload(t.Name()), &created); err != nil {
		t.Fatal(err)
	}

	_, header, err := testService.client.RawGetWithHeader("/studyspots/"+created.ID.String(), nil, &model.StudySpot{})
	if err != nil {
		t.Fatal(err)
	}
	etag := header.Get("Etag")
	if etag == "" {
		t.Fatal("Etag is not present in response header")
	}

	testCases := []struct {
		ifNoneMatch    string
		expectedStatus int
	}{
		{etag, http.StatusNotModified},
		{etag + ", \"1234\"", http.StatusNotModified},
		{"*", http.StatusNotModified},
		{"", http.StatusOK},
		{"\"54637\", \"1234\"", http.StatusOK},
	}
	for _, tc := range testCases {
		t.Run(tc.ifNoneMatch, func(t *testing.T) {
			header := map[string]string{}
			if tc.ifNoneMatch != "" {
				header["If-None-Match"] = tc.ifNoneMatch
			}
			status, _, err := testService.client.RawGetWithHeader("/studyspots/"+created.ID.String(), header, nil)
			if err != nil {
				t.Fatal(err)
			}
			if status != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d", tc.expectedStatus, status)
			}
		})
	}
}

func TestEtagListRegenerated(t *testing.T) {
	path := "/pets?breed=" + t.Name()

	_, header, err := testService.client.RawGetWithHeader(path, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	etag := header.Get("Etag")
	if etag == "" {
		t.Fatal("no list etag")
	}

	// unchanged collection answers 304
	status, _, err := testService.client.RawGetWithHeader(path, map[string]string{"If-None-Match": etag}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", status)
	}

	// a new pet invalidates the tag
	pet := model.PetCreate{Name: "Rex", Animal: "dog", Breed: t.Name()}
	if _, err := testService.client.RawPost("/pets", pet, nil); err != nil {
		t.Fatal(err)
	}
	status, _, err = testService.client.RawGetWithHeader(path, map[string]string{"If-None-Match": etag}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusOK {
		t.Fatalf("expected 200 after insert, got %d", status)
	}
}

func TestPetShopPets(t *testing.T) {
	shop := model.PetShopCreate{
		StoreName: t.Name(),
		Pets: []model.PetCreate{
			{Name: "Mia", Animal: "cat", Breed: "Maine Coon"},
			{Name: "Bo", Animal: "dog", Breed: "Beagle"},
		},
		Address: model.AddressCreate{
			Street:       "200 Amsterdam Ave",
			PostalCode:   "10023",
			Neighborhood: model.NeighborhoodUpperWestSide,
		},
	}

	var created model.PetShop
	if _, err := testService.client.RawPost("/petshops", shop, &created); err != nil {
		t.Fatal(err)
	}
	if len(created.Pets) != 2 {
		t.Fatalf("expected 2 pets, got %d", len(created.Pets))
	}

	// shop pets do not leak into the standalone pets collection
	var pets []model.Pet
	if _, err := testService.client.RawGet("/pets?name=Mia", &pets); err != nil {
		t.Fatal(err)
	}
	if len(pets) != 0 {
		t.Fatalf("shop pet visible in standalone collection: %+v", pets)
	}

	// supplying pets replaces the whole set
	var patched model.PetShop
	if _, err := testService.client.RawPatch("/petshops/"+created.ID.String(),
		model.PetShopUpdate{Pets: &[]model.PetCreate{{Name: "Zoe", Animal: "rabbit", Breed: "Holland Lop"}}},
		&patched); err != nil {
		t.Fatal(err)
	}
	if len(patched.Pets) != 1 || patched.Pets[0].Name != "Zoe" {
		t.Fatalf("pets not replaced: %+v", patched.Pets)
	}
	if patched.StoreName != created.StoreName {
		t.Fatal("patch changed the store name")
	}

	// sparse address patch
	street := "220 Amsterdam Ave"
	if _, err := testService.client.RawPatch("/petshops/"+created.ID.String(),
		model.PetShopUpdate{Address: &model.AddressUpdate{Street: &street}}, &patched); err != nil {
		t.Fatal(err)
	}
	if patched.Address.Street != street {
		t.Fatal("address street not patched")
	}
	if patched.Address.Neighborhood != created.Address.Neighborhood {
		t.Fatal("patch changed an unsupplied address field")
	}

	var deleted model.PetShop
	if _, err := testService.client.RawDelete("/petshops/"+created.ID.String(), &deleted); err != nil {
		t.Fatal(err)
	}
	if deleted.ID != created.ID {
		t.Fatal("delete did not return the deleted shop")
	}
}

func waitForJob(t *testing.T, jobID string) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var job map[string]interface{}
		if _, err := testService.client.RawGet("/jobs/"+jobID, &job); err != nil {
			t.Fatal(err)
		}
		switch job["status"] {
		case "complete", "failed":
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not reach a terminal state")
	return nil
}

func TestGeocodeJob(t *testing.T) {
	testService.geocoder.set(func(query string) (geocode.Result, error) {
		if !strings.Contains(query, "11 Broadway") {
			return geocode.Result{}, fmt.Errorf("unexpected query %q", query)
		}
		return geocode.Result{Latitude: 40.7061, Longitude: -74.0133}, nil
	})

	var created model.StudySpot
	if _, err := testService.client.RawPost("/studyspots", newSpotPayload(t.Name()), &created); err != nil {
		t.Fatal(err)
	}
	if created.Address.Latitude != nil {
		t.Fatal("coordinates must be unset on create")
	}

	var accepted struct {
		JobID uuid.UUID `json:"job_id"`
	}
	if _, err := testService.client.RawPostAccepted(
		"/studyspots/"+created.ID.String()+"/geocode", nil, &accepted); err != nil {
		t.Fatal(err)
	}
	if accepted.JobID == (uuid.UUID{}) {
		t.Fatal("no job id")
	}

	job := waitForJob(t, accepted.JobID.String())
	if job["status"] != "complete" {
		t.Fatalf("expected complete job, got %+v", job)
	}

	var spot model.StudySpot
	if _, err := testService.client.RawGet("/studyspots/"+created.ID.String(), &spot); err != nil {
		t.Fatal(err)
	}
	if spot.Address.Latitude == nil || spot.Address.Longitude == nil {
		t.Fatal("coordinates not written back")
	}
	if *spot.Address.Latitude != 40.7061 || *spot.Address.Longitude != -74.0133 {
		t.Fatalf("wrong coordinates: %v %v", *spot.Address.Latitude, *spot.Address.Longitude)
	}
}

func TestGeocodeJobFailure(t *testing.T) {
	testService.geocoder.set(func(query string) (geocode.Result, error) {
		return geocode.Result{}, fmt.Errorf("no coordinates found for %q", query)
	})

	var created model.StudySpot
	if _, err := testService.client.RawPost("/studyspots", newSpotPayload(t.Name()), &created); err != nil {
		t.Fatal(err)
	}

	var accepted struct {
		JobID uuid.UUID `json:"job_id"`
	}
	if _, err := testService.client.RawPostAccepted(
		"/studyspots/"+created.ID.String()+"/geocode", nil, &accepted); err != nil {
		t.Fatal(err)
	}

	job := waitForJob(t, accepted.JobID.String())
	if job["status"] != "failed" {
		t.Fatalf("expected failed job, got %+v", job)
	}
	result, _ := job["result"].(string)
	if !strings.Contains(result, "no coordinates found") {
		t.Fatalf("error text not captured as result: %+v", job)
	}
}

func TestGeocodeUnknownSpot(t *testing.T) {
	status, _ := testService.client.RawPostAccepted("/studyspots/"+uuid.NewString()+"/geocode", nil, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestJobNotFound(t *testing.T) {
	status, _ := testService.client.RawGet("/jobs/"+uuid.NewString(), nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	status, _ = testService.client.RawGet("/jobs/not-a-uuid", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}
