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

// ClusterClient talks to the internal deploy controller that owns cluster
// rollouts for enterprise-tier orders. The controller speaks a thin JSON
// API in front of the cluster, so the core never carries cluster
// credentials itself.
type ClusterClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClusterClient(baseURL, token string, timeout time.Duration) *ClusterClient {
	return &ClusterClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *ClusterClient) DeployApplication(ctx context.Context, namespace, appName, deploymentName string, spec ClusterSpec) (*domain.ClusterDeployment, error) {
	payload := map[string]any{
		"appName":        appName,
		"deploymentName": deploymentName,
		"spec":           spec,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/namespaces/%s/deployments", c.baseURL, namespace)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("deploy controller returned status %d", resp.StatusCode)
	}

	var out domain.ClusterDeployment
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Namespace == "" {
		out.Namespace = namespace
	}
	if out.Deployment == "" {
		out.Deployment = deploymentName
	}
	return &out, nil
}
