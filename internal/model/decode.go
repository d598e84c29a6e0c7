package model

import (
	"encoding/json"
	"fmt"
)

// DecodeError reports a body that could not be turned into a model
type DecodeError struct {
	Model string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Model, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeWeather decodes a success body. Unknown fields are ignored and
// missing fields stay nil; malformed JSON or a mistyped value is an error.
func DecodeWeather(body []byte) (*WeatherResponse, error) {
	var w WeatherResponse
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, &DecodeError{Model: "weather response", Err: err}
	}
	return &w, nil
}

// DecodeErrorResponse decodes an error body. Unknown fields are ignored, but both
// cod and message must be present for the body to count as an error response.
func DecodeErrorResponse(body []byte) (*ErrorResponse, error) {
	var e ErrorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, &DecodeError{Model: "error response", Err: err}
	}
	if e.Cod == nil {
		return nil, &DecodeError{Model: "error response", Err: fmt.Errorf("missing required field %q", "cod")}
	}
	if e.Message == nil {
		return nil, &DecodeError{Model: "error response", Err: fmt.Errorf("missing required field %q", "message")}
	}
	return &e, nil
}
