// Package climatiq implements the EmissionSource port against the Climatiq
// data API.
package climatiq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"carbontrack/internal/domain"
)

const (
	// DefaultBaseURL is the Climatiq data API root.
	DefaultBaseURL = "https://api.climatiq.io/data/v1"
	// dataVersion pins the emission-factor data set the factor ids in the
	// activity registry were validated against.
	dataVersion = "27.27"
	// defaultTimeout bounds each outbound estimate call.
	defaultTimeout = 10 * time.Second
)

// Config holds the client settings consumed from process configuration.
type Config struct {
	APIKey  string
	BaseURL string        // DefaultBaseURL if empty
	Timeout time.Duration // defaultTimeout if zero
}

// Client calls the Climatiq estimate endpoint. It holds no per-call state
// and is safe for concurrent use.
type Client struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// New creates a Client. A missing API key is not an error here: it surfaces
// as SERVICE_MISCONFIGURED on the first estimate attempt, before any dial.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
		http:    &http.Client{},
	}
}

type estimateRequest struct {
	EmissionFactor emissionFactor `json:"emission_factor"`
	Parameters     map[string]any `json:"parameters"`
}

type emissionFactor struct {
	ActivityID  string `json:"activity_id"`
	DataVersion string `json:"data_version"`
	Region      string `json:"region,omitempty"`
}

type estimateResponse struct {
	CO2e float64 `json:"co2e"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Estimate sends one estimation request for a single emission factor and
// returns the CO2e kilograms. Failures come back as *domain.EstimateError.
func (c *Client) Estimate(ctx context.Context, req domain.FactorRequest) (float64, error) {
	if c.apiKey == "" {
		return 0, &domain.EstimateError{
			Code:    domain.CodeServiceMisconfigured,
			Message: "Climatiq API key not configured",
		}
	}

	payload := estimateRequest{
		EmissionFactor: emissionFactor{
			ActivityID:  req.FactorID,
			DataVersion: dataVersion,
			Region:      req.Region,
		},
		Parameters: map[string]any{
			req.ParameterName:           req.Value,
			req.ParameterName + "_unit": req.Unit,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, &domain.EstimateError{
			Code:    domain.CodeExternalService,
			Message: fmt.Sprintf("encode estimate request: %v", err),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/estimate", bytes.NewReader(body))
	if err != nil {
		return 0, &domain.EstimateError{
			Code:    domain.CodeExternalService,
			Message: fmt.Sprintf("build estimate request: %v", err),
		}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return 0, &domain.EstimateError{
				Code:    domain.CodeTimeout,
				Message: "Request timeout. Please try again.",
			}
		}
		return 0, &domain.EstimateError{
			Code:    domain.CodeExternalService,
			Message: "External API error: " + err.Error(),
		}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var out estimateResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return 0, &domain.EstimateError{
				Code:    domain.CodeExternalService,
				Message: fmt.Sprintf("decode estimate response: %v", err),
			}
		}
		return out.CO2e, nil
	}

	return 0, classifyStatus(resp)
}

// classifyStatus maps an upstream non-2xx response onto the error taxonomy.
// 422 keeps its upstream status so the estimator can recognise factor
// rejections; its surfaced code is still the generic external-error class.
func classifyStatus(resp *http.Response) *domain.EstimateError {
	var upstream errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&upstream)
	if upstream.Message == "" {
		upstream.Message = "External API error"
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return &domain.EstimateError{
			Code:           domain.CodeExternalAuth,
			Message:        "Invalid API credentials",
			UpstreamStatus: resp.StatusCode,
		}
	case http.StatusTooManyRequests:
		return &domain.EstimateError{
			Code:           domain.CodeRateLimited,
			Message:        "API rate limit exceeded. Please try again later.",
			UpstreamStatus: resp.StatusCode,
			RetryAfter:     retryAfter(resp),
		}
	default:
		return &domain.EstimateError{
			Code:           domain.CodeExternalService,
			Message:        "External API error: " + upstream.Message,
			UpstreamStatus: resp.StatusCode,
		}
	}
}

// retryAfter parses the seconds form of a Retry-After header; 0 when absent.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
