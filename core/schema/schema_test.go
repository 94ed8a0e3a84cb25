package schema

import (
	"strings"
	"testing"
	"testing/fstest"
)

const petSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"$id": "pet",
	"type": "object",
	"properties": {
		"name": { "type": "string", "minLength": 1 },
		"animal": { "$ref": "definitions#/definitions/animal" }
	},
	"required": ["name", "animal"],
	"additionalProperties": false
}`

const animalRef = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"$id": "definitions",
	"definitions": {
		"animal": { "type": "string", "enum": ["dog", "cat", "rabbit"] }
	}
}`

func TestValidator(t *testing.T) {
	v, err := NewValidator([]string{petSchema}, []string{animalRef})
	if err != nil {
		t.Fatal(err)
	}
	if !v.HasSchema("pet") {
		t.Fatal("pet schema not registered")
	}
	if v.HasSchema("definitions") {
		t.Fatal("refs must not get a validator of their own")
	}

	if err := v.ValidateBytes([]byte(`{"name": "Rex", "animal": "dog"}`), "pet"); err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name string
		doc  string
	}{
		{"missing required field", `{"name": "Rex"}`},
		{"unknown enum value", `{"name": "Rex", "animal": "dragon"}`},
		{"unknown property", `{"name": "Rex", "animal": "dog", "age": 3}`},
		{"empty name", `{"name": "", "animal": "dog"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateBytes([]byte(tc.doc), "pet")
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), "not valid") {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}

	if err := v.ValidateBytes([]byte(`{}`), "nosuchschema"); err == nil {
		t.Fatal("expected error for unknown schema id")
	}
}

func TestValidatorRejectsSchemaWithoutID(t *testing.T) {
	if _, err := NewValidator([]string{`{"type": "object"}`}, nil); err == nil {
		t.Fatal("expected error for schema without $id")
	}
}

func TestNewValidatorFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"pet.json":              {Data: []byte(petSchema)},
		"refs/definitions.json": {Data: []byte(animalRef)},
		"notes.txt":             {Data: []byte("ignored")},
	}
	v, err := NewValidatorFromFS(fsys)
	if err != nil {
		t.Fatal(err)
	}
	if !v.HasSchema("pet") {
		t.Fatal("pet schema not registered")
	}
	if err := v.ValidateBytes([]byte(`{"name": "Mia", "animal": "cat"}`), "pet"); err != nil {
		t.Fatal(err)
	}

	// a schema pack without shared definitions is fine
	v, err = NewValidatorFromFS(fstest.MapFS{
		"plain.json": {Data: []byte(`{"$id": "plain", "type": "object"}`)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !v.HasSchema("plain") {
		t.Fatal("plain schema not registered")
	}
}
