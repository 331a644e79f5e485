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

// VercelClient creates one project per order, links it to the provisioned
// repository and triggers the first deployment.
type VercelClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewVercelClient(baseURL, token string, timeout time.Duration) *VercelClient {
	if baseURL == "" {
		baseURL = "https://api.vercel.com"
	}
	return &VercelClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *VercelClient) do(ctx context.Context, method, path string, payload any, out any) error {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("vercel returned status %d for %s %s", resp.StatusCode, method, path)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *VercelClient) CreateProject(ctx context.Context, name, framework, sourceRepo string) (*domain.DeployProject, error) {
	payload := map[string]any{
		"name":      slugify(name),
		"framework": framework,
		"gitRepository": map[string]string{
			"type": "github",
			"repo": sourceRepo,
		},
	}
	var project domain.DeployProject
	if err := c.do(ctx, http.MethodPost, "/v11/projects", payload, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *VercelClient) LinkToSource(ctx context.Context, projectID, sourceRepo string) error {
	payload := map[string]any{
		"gitRepository": map[string]string{
			"type": "github",
			"repo": sourceRepo,
		},
	}
	return c.do(ctx, http.MethodPatch, "/v9/projects/"+projectID, payload, nil)
}

func (c *VercelClient) CreateDeployment(ctx context.Context, projectName string, files []domain.GeneratedFile, target string) (*domain.Deployment, error) {
	deployFiles := make([]map[string]string, 0, len(files))
	for _, f := range files {
		deployFiles = append(deployFiles, map[string]string{
			"file": f.Path,
			"data": f.Content,
		})
	}

	payload := map[string]any{
		"name":   projectName,
		"files":  deployFiles,
		"target": target,
	}
	var deployment domain.Deployment
	if err := c.do(ctx, http.MethodPost, "/v13/deployments", payload, &deployment); err != nil {
		return nil, err
	}
	return &deployment, nil
}
