package pgstore

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campusmaps/studyspot/core/store"
)

func TestQueryBuilderNoFilters(t *testing.T) {
	var q queryBuilder
	query, args := q.selectPage("a, b", "thing", "created_at DESC, thing_id DESC",
		store.Page{Number: 1, Size: 20})
	want := "SELECT a, b, count(*) OVER() AS full_count FROM thing" +
		" ORDER BY created_at DESC, thing_id DESC LIMIT $1 OFFSET $2;"
	if query != want {
		t.Fatalf("got %q, want %q", query, want)
	}
	if len(args) != 2 || args[0] != 20 || args[1] != 0 {
		t.Fatalf("got args %v", args)
	}
}

func TestQueryBuilderConjunction(t *testing.T) {
	var q queryBuilder
	q.whereEqual("city", "New York")
	q.whereSubstring("name", "cafe")
	q.whereContains("environment", "quiet")
	q.whereNull("pet_shop_id")

	query, args := q.selectPage("a", "thing", "thing_id", store.Page{Number: 3, Size: 10})
	wantWhere := " WHERE city = $1 AND name ILIKE '%' || $2 || '%'" +
		" AND $3 = ANY(environment) AND pet_shop_id IS NULL"
	if !strings.Contains(query, wantWhere) {
		t.Fatalf("got %q, want predicate %q", query, wantWhere)
	}
	if !strings.HasSuffix(query, "LIMIT $4 OFFSET $5;") {
		t.Fatalf("pagination parameters misnumbered: %q", query)
	}
	if len(args) != 5 || args[0] != "New York" || args[1] != "cafe" ||
		args[2] != "quiet" || args[3] != 10 || args[4] != 20 {
		t.Fatalf("got args %v", args)
	}

	countQuery, countArgs := q.selectCount("thing")
	if countQuery != "SELECT count(*) FROM thing"+wantWhere+";" {
		t.Fatalf("got %q", countQuery)
	}
	if len(countArgs) != 3 {
		t.Fatalf("count query must not carry pagination args: %v", countArgs)
	}
}

func TestPrefixColumns(t *testing.T) {
	got := prefixColumns("a", "address_id, street, city")
	if got != "a.address_id, a.street, a.city" {
		t.Fatalf("got %q", got)
	}
}

func TestUpdateBuilder(t *testing.T) {
	var u updateBuilder
	if !u.empty() {
		t.Fatal("fresh builder must be empty")
	}

	u.set("name", "Grand Central")
	u.set("wifi_available", true)
	if u.empty() {
		t.Fatal("builder with assignments must not be empty")
	}

	id := uuid.New()
	now := time.Now()
	query, args := u.build("studyspot", "studyspot_id", id, now)
	want := "UPDATE studyspot SET name = $1, wifi_available = $2, updated_at = $3 WHERE studyspot_id = $4"
	if query != want {
		t.Fatalf("got %q, want %q", query, want)
	}
	if len(args) != 4 || args[0] != "Grand Central" || args[1] != true ||
		args[2] != now || args[3] != id {
		t.Fatalf("got args %v", args)
	}
	if strings.HasSuffix(query, ";") {
		t.Fatal("query must leave room for a RETURNING clause")
	}
}

func TestUpdateBuilderAlwaysTouchesTimestamp(t *testing.T) {
	var u updateBuilder
	query, args := u.build("pet_shop", "pet_shop_id", uuid.New(), time.Now())
	if query != "UPDATE pet_shop SET updated_at = $1 WHERE pet_shop_id = $2" {
		t.Fatalf("got %q", query)
	}
	if len(args) != 2 {
		t.Fatalf("got args %v", args)
	}
}
