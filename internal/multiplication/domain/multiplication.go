package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

const (
	// ServiceName identifies the service in health checks and telemetry
	ServiceName = "multiplication-service"

	// OperationMultiplication is the only arithmetic operation exposed
	OperationMultiplication = "multiplication"

	// StatusHealthy is reported by every health check
	StatusHealthy = "healthy"
)

// Number is a float64 that survives JSON encoding when it is not finite
type Number float64

// MarshalJSON writes finite values as JSON numbers and ±Inf/NaN as the strings
// "Infinity", "-Infinity" and "NaN".
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON accepts both encodings produced by MarshalJSON
func (n *Number) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "NaN":
			*n = Number(math.NaN())
		case "Infinity":
			*n = Number(math.Inf(1))
		case "-Infinity":
			*n = Number(math.Inf(-1))
		default:
			return fmt.Errorf("invalid number %q", s)
		}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// MultiplicationResult is the body returned for a successful multiplication
type MultiplicationResult struct {
	Result       Number `json:"result"`
	Operation    string `json:"operation"`
	FirstNumber  Number `json:"first_number"`
	SecondNumber Number `json:"second_number"`
}

// NewMultiplicationResult builds the result for a and b
func NewMultiplicationResult(a, b, product float64) *MultiplicationResult {
	return &MultiplicationResult{
		Result:       Number(product),
		Operation:    OperationMultiplication,
		FirstNumber:  Number(a),
		SecondNumber: Number(b),
	}
}

// HealthCheck is the body returned by the health endpoint
type HealthCheck struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// NewHealthCheck reports the service as healthy
func NewHealthCheck() HealthCheck {
	return HealthCheck{
		Status:  StatusHealthy,
		Service: ServiceName,
	}
}

// Calculator performs the arithmetic behind the service
type Calculator interface {
	Multiply(a, b float64) float64
}

// StandardCalculator uses plain IEEE-754 float64 arithmetic
type StandardCalculator struct{}

// NewStandardCalculator creates the default calculator
func NewStandardCalculator() Calculator {
	return StandardCalculator{}
}

// Multiply returns a*b. Overflow and NaN propagate unchanged.
func (StandardCalculator) Multiply(a, b float64) float64 {
	return Multiply(a, b)
}

// Multiply returns the product of a and b
func Multiply(a, b float64) float64 {
	return a * b
}

// ErrorKind classifies operation failures for the transport layer
type ErrorKind string

const (
	KindInternal ErrorKind = "internal"
	KindCanceled ErrorKind = "canceled"
)

// OperationError is returned when an arithmetic operation cannot produce a result
type OperationError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *OperationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// NewOperationError wraps err as a failure of operation op
func NewOperationError(op string, kind ErrorKind, err error) *OperationError {
	return &OperationError{Op: op, Kind: kind, Err: err}
}

// ErrorKindOf returns the kind of the first OperationError in err's chain
func ErrorKindOf(err error) (ErrorKind, bool) {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Kind, true
	}
	return "", false
}
