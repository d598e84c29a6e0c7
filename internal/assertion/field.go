// Package assertion checks individual fields of a raw JSON body.
package assertion

import (
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
)

// Field expects the value at Path to equal Equals. Path uses gjson syntax,
// e.g. "weather.0.id" or "coord.lon".
type Field struct {
	Path   string `json:"path" yaml:"path"`
	Equals any    `json:"equals" yaml:"equals"`
}

// FieldError reports a field whose value differs from the expected literal
type FieldError struct {
	Path     string
	Expected any
	Actual   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: expected %v, got %s", e.Path, e.Expected, e.Actual)
}

// Check evaluates every field against body and joins the failures
func Check(body []byte, fields ...Field) error {
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("body is not valid JSON")
	}

	var errs []error
	for _, f := range fields {
		if err := f.check(body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Field) check(body []byte) error {
	result := gjson.GetBytes(body, f.Path)
	if !result.Exists() {
		return &FieldError{Path: f.Path, Expected: f.Equals, Actual: "<absent>"}
	}
	if !matches(result, f.Equals) {
		return &FieldError{Path: f.Path, Expected: f.Equals, Actual: result.Raw}
	}
	return nil
}

func matches(result gjson.Result, want any) bool {
	switch w := want.(type) {
	case nil:
		return result.Type == gjson.Null
	case string:
		return result.Type == gjson.String && result.Str == w
	case bool:
		return (result.Type == gjson.True || result.Type == gjson.False) && result.Bool() == w
	case int:
		return result.Type == gjson.Number && result.Num == float64(w)
	case int64:
		return result.Type == gjson.Number && result.Num == float64(w)
	case float64:
		return result.Type == gjson.Number && math.Abs(result.Num-w) < 1e-9
	default:
		return result.Raw == fmt.Sprint(w)
	}
}
