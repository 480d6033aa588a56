package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HealthReport mirrors the detector's health endpoint.
type HealthReport struct {
	Status         string  `json:"status"`
	FPS            float64 `json:"fps"`
	AvgInferenceMS float64 `json:"avg_inference_ms"`
}

// Health queries the detector's health endpoint. Failures classify the same
// way Detect failures do.
func (c *Client) Health(ctx context.Context) (*HealthReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("build health request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrUnreachable, resp.Status)
	}

	var report HealthReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidResponse, err)
	}
	return &report, nil
}
