package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"appforge/internal/domain"
)

// CodegenClient talks to the app-generation service over HTTP. The
// generation algorithm itself is out of scope; this client only ferries the
// order in and the bundle out.
type CodegenClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCodegenClient(baseURL string, timeout time.Duration) *CodegenClient {
	return &CodegenClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *CodegenClient) Generate(ctx context.Context, order *domain.Order) (*domain.GeneratedApp, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("generation service returned status %d", resp.StatusCode)
	}

	var app domain.GeneratedApp
	if err := json.NewDecoder(resp.Body).Decode(&app); err != nil {
		return nil, err
	}
	if app.OrderID == "" {
		app.OrderID = order.ID
	}
	return &app, nil
}
