package infra

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"appforge/internal/domain"
)

// GitHubClient provisions a private repository per order and pushes the
// generated bundle file by file through the contents API.
type GitHubClient struct {
	baseURL    string
	token      string
	owner      string
	httpClient *http.Client
}

func NewGitHubClient(baseURL, token, owner string, timeout time.Duration) *GitHubClient {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &GitHubClient{
		baseURL:    baseURL,
		token:      token,
		owner:      owner,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *GitHubClient) do(ctx context.Context, method, path string, payload any, out any) error {
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
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("github returned status %d for %s %s", resp.StatusCode, method, path)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *GitHubClient) CreateRepository(ctx context.Context, orderID, name string, private bool) (*domain.Repository, error) {
	payload := map[string]any{
		"name":        fmt.Sprintf("%s-%s", slugify(name), orderID),
		"description": fmt.Sprintf("Generated application for order %s", orderID),
		"private":     private,
		"auto_init":   true,
	}

	var created struct {
		FullName string `json:"full_name"`
		HTMLURL  string `json:"html_url"`
	}
	if err := c.do(ctx, http.MethodPost, "/user/repos", payload, &created); err != nil {
		return nil, err
	}
	return &domain.Repository{FullName: created.FullName, HTMLURL: created.HTMLURL}, nil
}

func (c *GitHubClient) PushCode(ctx context.Context, fullName string, files []domain.GeneratedFile, message, branch string) error {
	for _, f := range files {
		payload := map[string]any{
			"message": message,
			"branch":  branch,
			"content": base64.StdEncoding.EncodeToString([]byte(f.Content)),
		}
		path := fmt.Sprintf("/repos/%s/contents/%s", fullName, f.Path)
		if err := c.do(ctx, http.MethodPut, path, payload, nil); err != nil {
			return fmt.Errorf("push %s: %w", f.Path, err)
		}
	}
	return nil
}

func slugify(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ', r == '_', r == '-':
			out = append(out, '-')
		}
	}
	return string(out)
}
