// Package schema validates incoming JSON payloads against embedded JSON
// schemas before they are decoded into Go types.
package schema

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"
)

// Validator holds one compiled schema per resource, keyed by the $id of
// the schema document.
type Validator struct {
	compiled map[string]*gojsonschema.Schema
}

// NewValidatorFromFS compiles all *.json files at the root of schemaFS as
// top-level schemas. Files under refs/ are shared definitions the top
// level schemas may reference; they get no validator of their own. A
// missing refs directory is fine.
func NewValidatorFromFS(schemaFS fs.FS) (*Validator, error) {
	read := func(dir string) ([]string, error) {
		entries, err := fs.ReadDir(schemaFS, dir)
		if err != nil {
			return nil, fmt.Errorf("cannot read schema dir %s: %w", dir, err)
		}
		var docs []string
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			path := e.Name()
			if dir != "." {
				path = dir + "/" + e.Name()
			}
			raw, err := fs.ReadFile(schemaFS, path)
			if err != nil {
				return nil, fmt.Errorf("cannot read schema %s: %w", path, err)
			}
			docs = append(docs, string(raw))
		}
		return docs, nil
	}

	schemas, err := read(".")
	if err != nil {
		return nil, err
	}
	refs, err := read("refs")
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		refs = nil
	}
	return NewValidator(schemas, refs)
}

// NewValidator compiles the given top-level schemas. Each schema must
// carry a $id; references across top-level schemas are not supported,
// shared definitions go into refs.
func NewValidator(schemas, refs []string) (*Validator, error) {
	v := &Validator{compiled: map[string]*gojsonschema.Schema{}}
	for _, doc := range schemas {
		var head struct {
			ID string `json:"$id"`
		}
		if err := json.Unmarshal([]byte(doc), &head); err != nil {
			return nil, fmt.Errorf("parse error '%v' in schema: '%s'", err, doc)
		}
		if head.ID == "" {
			return nil, fmt.Errorf("schema does not contain $id: '%s'", doc)
		}

		sl := gojsonschema.NewSchemaLoader()
		for _, ref := range refs {
			if err := sl.AddSchemas(gojsonschema.NewStringLoader(ref)); err != nil {
				return nil, fmt.Errorf("cannot add schema ref: %s", err)
			}
		}
		compiled, err := sl.Compile(gojsonschema.NewStringLoader(doc))
		if err != nil {
			return nil, fmt.Errorf("cannot compile schema %s: %s", head.ID, err)
		}
		v.compiled[head.ID] = compiled
	}
	return v, nil
}

// HasSchema returns true if schemaID is known.
func (v *Validator) HasSchema(schemaID string) bool {
	_, ok := v.compiled[schemaID]
	return ok
}

// ValidateBytes validates a raw JSON document against schemaID. A nil
// return means the document is valid.
func (v *Validator) ValidateBytes(doc []byte, schemaID string) error {
	schema, ok := v.compiled[schemaID]
	if !ok {
		return fmt.Errorf("there is no schema %s", schemaID)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("cannot validate with schema %s: %s", schemaID, err)
	}
	if !result.Valid() {
		msg := "the document is not valid:\n"
		for _, e := range result.Errors() {
			msg += fmt.Sprintf("- %s\n", e)
		}
		return errors.New(msg)
	}
	return nil
}
