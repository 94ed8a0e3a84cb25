package model

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30")
	if err != nil {
		t.Fatal(err)
	}
	if tod.Hour != 9 || tod.Minute != 30 {
		t.Fatalf("got %+v", tod)
	}
	if tod.String() != "09:30" {
		t.Fatalf("got %q", tod.String())
	}

	for _, bad := range []string{"24:00", "12:60", "-1:30", "noon", "9"} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestTimeOfDayJSON(t *testing.T) {
	data, err := json.Marshal(TimeOfDay{Hour: 7, Minute: 5})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"07:05"` {
		t.Fatalf("got %s", data)
	}

	var tod TimeOfDay
	if err := json.Unmarshal(data, &tod); err != nil {
		t.Fatal(err)
	}
	if tod.Hour != 7 || tod.Minute != 5 {
		t.Fatalf("got %+v", tod)
	}
	if err := json.Unmarshal([]byte(`"25:99"`), &tod); err == nil {
		t.Fatal("expected error for out-of-range time")
	}
}

func TestEnumUnmarshal(t *testing.T) {
	var s Seating
	if err := json.Unmarshal([]byte(`"11-20"`), &s); err != nil {
		t.Fatal(err)
	}
	if s != SeatingElevenToTwenty {
		t.Fatalf("got %s", s)
	}
	if err := json.Unmarshal([]byte(`"lots"`), &s); err == nil {
		t.Fatal("expected error for unknown seating bucket")
	}

	var e Environment
	if err := json.Unmarshal([]byte(`"outdoor"`), &e); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(`"underwater"`), &e); err == nil {
		t.Fatal("expected error for unknown environment tag")
	}

	var n Neighborhood
	if err := json.Unmarshal([]byte(`"Chelsea"`), &n); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(`"Brooklyn Heights"`), &n); err == nil {
		t.Fatal("expected error for unknown neighborhood")
	}
}

func TestNewAddressDefaults(t *testing.T) {
	a := NewAddress(AddressCreate{
		Street:       "1 Main St",
		PostalCode:   "10001",
		Neighborhood: NeighborhoodChelsea,
	}, time.Now())
	if a.City != "New York" || a.State != "NY" {
		t.Fatalf("defaults not applied: %+v", a)
	}

	a = NewAddress(AddressCreate{City: "Albany", State: "New York"}, time.Now())
	if a.City != "Albany" || a.State != "New York" {
		t.Fatalf("supplied values overridden: %+v", a)
	}
}

func TestStudySpotUpdateApplyTo(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	spot := NewStudySpot(StudySpotCreate{
		Name: "Reading Room",
		Address: AddressCreate{
			Street:       "476 5th Ave",
			PostalCode:   "10018",
			Neighborhood: NeighborhoodMidtown,
		},
		Amenity: AmenitiesCreate{
			WifiAvailable: true,
			Seating:       SeatingTwentyPlus,
		},
		Hours: HoursCreate{MonStart: &TimeOfDay{Hour: 10}},
	}, created)

	if !(StudySpotUpdate{}).IsEmpty() {
		t.Fatal("zero update must be empty")
	}

	now := time.Now()
	wifi := false
	u := StudySpotUpdate{Amenity: &AmenitiesUpdate{WifiAvailable: &wifi}}
	if u.IsEmpty() {
		t.Fatal("update with a field must not be empty")
	}
	u.ApplyTo(&spot, now)

	if spot.Amenity.WifiAvailable {
		t.Fatal("wifi flag not applied")
	}
	if spot.Amenity.Seating != SeatingTwentyPlus {
		t.Fatal("unsupplied amenity field changed")
	}
	if !spot.Amenity.UpdatedAt.Equal(now) {
		t.Fatal("patched sub-entity timestamp not touched")
	}
	if !spot.Address.UpdatedAt.Equal(created) {
		t.Fatal("untouched sub-entity timestamp changed")
	}
	if spot.Name != "Reading Room" {
		t.Fatal("unsupplied field changed")
	}
}

func TestStudySpotUpdateEmptySubEntity(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	spot := NewStudySpot(StudySpotCreate{
		Name: "Quiet Corner",
		Address: AddressCreate{
			Street:       "31 Washington Sq W",
			PostalCode:   "10011",
			Neighborhood: NeighborhoodWestVillage,
		},
		Amenity: AmenitiesCreate{Seating: SeatingOneToFive},
	}, created)

	// a sub-entity object without fields must not touch its timestamp
	name := "Quieter Corner"
	u := StudySpotUpdate{Name: &name, Address: &AddressUpdate{}, Hours: &HoursUpdate{}}
	u.ApplyTo(&spot, time.Now())

	if spot.Name != name {
		t.Fatal("name not applied")
	}
	if !spot.Address.UpdatedAt.Equal(created) {
		t.Fatal("empty address patch touched the address timestamp")
	}
	if !spot.Hours.UpdatedAt.Equal(created) {
		t.Fatal("empty hours patch touched the hours timestamp")
	}
}

func TestHoursUpdateApplyTo(t *testing.T) {
	h := NewHours(HoursCreate{
		MonStart: &TimeOfDay{Hour: 9},
		MonEnd:   &TimeOfDay{Hour: 17},
	}, time.Now())

	u := HoursUpdate{MonEnd: &TimeOfDay{Hour: 20}}
	if u.IsEmpty() {
		t.Fatal("update with a field must not be empty")
	}
	u.ApplyTo(&h)
	if h.MonEnd.Hour != 20 {
		t.Fatal("mon_end not applied")
	}
	if h.MonStart.Hour != 9 {
		t.Fatal("unsupplied field changed")
	}
	if !(HoursUpdate{}).IsEmpty() {
		t.Fatal("zero update must be empty")
	}
}
