package executor

import (
	"errors"
	"fmt"

	"weather-contract-tester/internal/assertion"
	"weather-contract-tester/internal/contract"
	"weather-contract-tester/internal/model"
	"weather-contract-tester/internal/schema"
	"weather-contract-tester/internal/spec"
)

var (
	// ErrScenarioTerminated is returned by every call after a scenario failed
	ErrScenarioTerminated = errors.New("scenario terminated by an earlier failure")

	// ErrNoResponse is returned when a response is needed before a request was issued
	ErrNoResponse = errors.New("no response received yet")

	// ErrRequestIssued is returned when a scenario tries to issue a second request
	ErrRequestIssued = errors.New("scenario already issued its request")
)

// TransportError reports a request that never produced a readable response
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Failure kinds recorded in results
const (
	FailureTransport = "transport"
	FailureDecode    = "decode"
	FailureMismatch  = "mismatch"
	FailureContract  = "contract"
	FailureSchema    = "schema"
	FailureAssertion = "assertion"
	FailureSetup     = "setup"
)

// Classify maps a scenario error onto its failure kind
func Classify(err error) string {
	var (
		transportErr *TransportError
		decodeErr    *model.DecodeError
		mismatchErr  *spec.MismatchError
		contractErr  *contract.ViolationError
		schemaErr    *schema.ValidationError
		fieldErr     *assertion.FieldError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &transportErr):
		return FailureTransport
	case errors.As(err, &decodeErr):
		return FailureDecode
	case errors.As(err, &mismatchErr):
		return FailureMismatch
	case errors.As(err, &contractErr):
		return FailureContract
	case errors.As(err, &schemaErr):
		return FailureSchema
	case errors.As(err, &fieldErr):
		return FailureAssertion
	default:
		return FailureSetup
	}
}
