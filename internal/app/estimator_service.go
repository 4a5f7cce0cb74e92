// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"carbontrack/internal/domain"
)

// EstimatorService turns an activity key and quantity into a CO2e estimate by
// calling the external estimation service through the EmissionSource port.
type EstimatorService struct {
	source domain.EmissionSource
}

// NewEstimatorService creates an EstimatorService backed by the given source.
func NewEstimatorService(source domain.EmissionSource) *EstimatorService {
	return &EstimatorService{source: source}
}

// Calculate estimates emissions for one activity. On failure it always
// returns a *domain.EstimateError carrying the offending activity key.
//
// The primary emission factor is tried first. Only when the upstream rejects
// that factor as unprocessable are the definition's fallback factor ids tried,
// in declared order, stopping at the first success. A fallback attempt that
// fails for any other reason is logged and iteration continues; if every
// attempt fails, the classification of the primary attempt is what surfaces.
// Any non-unprocessable failure on the primary attempt surfaces immediately,
// without touching the fallbacks.
func (s *EstimatorService) Calculate(ctx context.Context, activity string, value float64) (*domain.EmissionEstimate, error) {
	if activity == "" {
		return nil, &domain.EstimateError{
			Code:    domain.CodeInvalidInput,
			Message: "Activity and value are required",
		}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return nil, &domain.EstimateError{
			Code:     domain.CodeInvalidInput,
			Message:  "Value must be a positive number",
			Activity: activity,
		}
	}

	def, ok := domain.LookupActivity(activity)
	if !ok {
		return nil, &domain.EstimateError{
			Code:     domain.CodeUnsupportedActivity,
			Message:  "Unsupported activity",
			Activity: activity,
		}
	}

	co2e, err := s.source.Estimate(ctx, factorRequest(def, def.FactorID, value))
	if err == nil {
		return newEstimate(def, activity, value, co2e), nil
	}

	primary := classify(err, activity)
	if primary.Unprocessable() && len(def.FallbackFactorIDs) > 0 {
		log.Printf("primary factor %s rejected for %s, trying %d fallbacks", def.FactorID, activity, len(def.FallbackFactorIDs))
		for _, factorID := range def.FallbackFactorIDs {
			co2e, ferr := s.source.Estimate(ctx, factorRequest(def, factorID, value))
			if ferr == nil {
				log.Printf("fallback factor %s succeeded for %s", factorID, activity)
				return newEstimate(def, activity, value, co2e), nil
			}
			log.Printf("fallback factor %s failed for %s: %v", factorID, activity, ferr)
		}
	}

	return nil, primary
}

func factorRequest(def domain.ActivityDefinition, factorID string, value float64) domain.FactorRequest {
	return domain.FactorRequest{
		FactorID:      factorID,
		Region:        def.Region,
		ParameterName: def.ParameterName,
		Value:         value,
		Unit:          def.Unit,
	}
}

func newEstimate(def domain.ActivityDefinition, activity string, value, co2e float64) *domain.EmissionEstimate {
	return &domain.EmissionEstimate{
		Activity:  activity,
		Value:     value,
		Unit:      def.Unit,
		CO2e:      co2e,
		Timestamp: time.Now().UTC(),
	}
}

// classify normalises a source failure into an *EstimateError enriched with
// the activity key. Sources return classified errors already; anything else
// is treated as a generic upstream failure so no raw transport error leaks.
func classify(err error, activity string) *domain.EstimateError {
	var estErr *domain.EstimateError
	if errors.As(err, &estErr) {
		enriched := *estErr
		enriched.Activity = activity
		return &enriched
	}
	return &domain.EstimateError{
		Code:     domain.CodeExternalService,
		Message:  "External API error: " + err.Error(),
		Activity: activity,
	}
}
