package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ModelInfo is one entry of the provider's model catalog.
type ModelInfo struct {
	Name               string `json:"name"`
	SupportsGeneration bool   `json:"supportsGeneration"`
}

// ModelLister queries the provider's OpenAI-style model listing endpoint.
type ModelLister struct {
	baseURL    string
	apiKey     string
	configured string
	client     *http.Client
}

// NewModelLister builds a lister for the given provider base URL. configured
// is the model id this service generates with.
func NewModelLister(baseURL, apiKey, configured string) *ModelLister {
	return &ModelLister{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		configured: configured,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// List fetches the available model identifiers. Generation support is
// reported for the model this service is configured with.
func (l *ModelLister) List(ctx context.Context) ([]ModelInfo, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("model credentials missing: set ARK_API_KEY")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build model listing request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model listing request failed: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode model listing: %w", err)
	}
	if resp.StatusCode >= 400 {
		msg := body.Error.Message
		if msg == "" {
			msg = "failed to list models"
		}
		return nil, fmt.Errorf("model listing failed: %s", msg)
	}

	models := make([]ModelInfo, 0, len(body.Data))
	for _, m := range body.Data {
		models = append(models, ModelInfo{
			Name:               m.ID,
			SupportsGeneration: m.ID == l.configured,
		})
	}
	return models, nil
}
