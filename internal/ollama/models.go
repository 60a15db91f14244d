package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Model is one entry of the server's installed model list.
type Model struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size,omitempty"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
}

type tagsResponse struct {
	Models []Model `json:"models"`
}

// ListModels is the liveness check: it fetches /api/tags and returns the
// installed models. Unlike Generate, failures are returned as errors.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	s := c.Open()
	defer s.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+tagsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("list models: create request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", &TransportFault{Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list models: %w", &StatusFault{Code: resp.StatusCode})
	}
	var out tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("list models: decode response: %w", err)
	}
	return out.Models, nil
}

// HasModel reports whether name is among models, ignoring a ":latest" tag.
func HasModel(models []Model, name string) bool {
	for _, m := range models {
		if m.Name == name || m.Name == name+":latest" {
			return true
		}
	}
	return false
}
