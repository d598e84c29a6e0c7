// Package schema validates raw response bodies against JSON Schema documents.
package schema

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Logical ids of the packaged schema documents
const (
	WeatherResponseSchema = "schema/weather/validResponse.json"
	ErrorResponseSchema   = "schema/weather/errorResponse.json"
)

//go:embed schema
var packaged embed.FS

// ErrUnknownSchema is returned when a schema id does not resolve to a document
var ErrUnknownSchema = errors.New("unknown schema")

// Document is a loaded schema document
type Document struct {
	ID      string
	Content []byte
}

// Validator validates bodies against schema documents resolved from a file
// system. Documents are compiled on first use and cached.
type Validator struct {
	fsys fs.FS

	mu       sync.Mutex
	compiled map[string]*gojsonschema.Schema
}

// NewValidator creates a validator resolving schema ids in fsys
func NewValidator(fsys fs.FS) *Validator {
	return &Validator{
		fsys:     fsys,
		compiled: make(map[string]*gojsonschema.Schema),
	}
}

// NewPackagedValidator creates a validator over the schemas shipped with the binary
func NewPackagedValidator() *Validator {
	return NewValidator(packaged)
}

// Load reads the schema document with the given id
func (v *Validator) Load(id string) (*Document, error) {
	name := path.Clean(strings.TrimPrefix(id, "/"))
	content, err := fs.ReadFile(v.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, id)
		}
		return nil, fmt.Errorf("failed to read schema %s: %w", id, err)
	}
	return &Document{ID: id, Content: content}, nil
}

func (v *Validator) schema(id string) (*gojsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.compiled[id]; ok {
		return s, nil
	}

	doc, err := v.Load(id)
	if err != nil {
		return nil, err
	}

	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(doc.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", id, err)
	}
	v.compiled[id] = s
	return s, nil
}

// Validate checks body against the schema with the given id. A body that
// violates the schema yields a *ValidationError listing every violation.
func (v *Validator) Validate(body []byte, schemaID string) error {
	s, err := v.schema(schemaID)
	if err != nil {
		return err
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &ValidationError{
			SchemaID: schemaID,
			Violations: []Violation{{
				Field:       "(root)",
				Type:        "invalid_json",
				Description: err.Error(),
			}},
		}
	}
	if result.Valid() {
		return nil
	}

	violations := make([]Violation, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		violations = append(violations, Violation{
			Field:       re.Field(),
			Type:        re.Type(),
			Description: re.Description(),
		})
	}
	return &ValidationError{SchemaID: schemaID, Violations: violations}
}

// Violation is one violated schema constraint
type Violation struct {
	Field       string
	Type        string
	Description string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Description)
}

// ValidationError reports a body that does not satisfy its schema
type ValidationError struct {
	SchemaID   string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("body does not match schema %s (%d violations): %s",
		e.SchemaID, len(e.Violations), strings.Join(parts, "; "))
}

// HasViolation reports whether a violation of the given type was recorded for field
func (e *ValidationError) HasViolation(field, violationType string) bool {
	for _, v := range e.Violations {
		if v.Field == field && v.Type == violationType {
			return true
		}
	}
	return false
}
