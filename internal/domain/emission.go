package domain

import (
	"context"
	"fmt"
	"time"
)

// EmissionEstimate is the result of a successful emissions calculation. CO2e
// is kilograms of CO2-equivalent as reported by the estimation service; it is
// never computed locally.
type EmissionEstimate struct {
	Activity  string    `json:"activity"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	CO2e      float64   `json:"co2e"`
	Timestamp time.Time `json:"timestamp"`
}

// FactorRequest is a single estimation attempt against one emission factor.
type FactorRequest struct {
	FactorID      string
	Region        string
	ParameterName string
	Value         float64
	Unit          string
}

// EmissionSource is the port for the external emissions-estimation service.
// Implementations return CO2e kilograms for one factor request, or an
// *EstimateError classifying the failure.
type EmissionSource interface {
	Estimate(ctx context.Context, req FactorRequest) (float64, error)
}

// EstimateCode classifies a failed calculation. Codes are the machine-readable
// strings surfaced in API error bodies.
type EstimateCode string

const (
	CodeInvalidInput         EstimateCode = "INVALID_INPUT"
	CodeUnsupportedActivity  EstimateCode = "UNSUPPORTED_ACTIVITY"
	CodeServiceMisconfigured EstimateCode = "SERVICE_MISCONFIGURED"
	CodeExternalAuth         EstimateCode = "API_AUTH_ERROR"
	CodeRateLimited          EstimateCode = "RATE_LIMIT_EXCEEDED"
	CodeExternalService      EstimateCode = "EXTERNAL_API_ERROR"
	CodeTimeout              EstimateCode = "TIMEOUT_ERROR"
)

// statusUnprocessableEntity is the upstream rejection that triggers the
// fallback-factor sequence. Kept here so app code need not import net/http.
const statusUnprocessableEntity = 422

// EstimateError is a classified calculation failure. UpstreamStatus is the
// HTTP status the estimation service answered with, or 0 when the failure
// never reached it. RetryAfter is a hint carried only when the upstream
// supplied one alongside a rate-limit rejection.
type EstimateError struct {
	Code           EstimateCode
	Message        string
	Activity       string
	UpstreamStatus int
	RetryAfter     time.Duration
}

func (e *EstimateError) Error() string {
	if e.Activity != "" {
		return fmt.Sprintf("%s. Activity: %s", e.Message, e.Activity)
	}
	return e.Message
}

// Unprocessable reports whether the upstream rejected the emission factor
// itself, which is the only failure class the fallback sequence retries.
func (e *EstimateError) Unprocessable() bool {
	return e.UpstreamStatus == statusUnprocessableEntity
}
