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

// ContractClient fronts the e-signature provider. Contract generation and
// signature capture live there; the pipeline only needs the contract id and
// both signatures before it may proceed.
type ContractClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewContractClient(baseURL, apiKey string, timeout time.Duration) *ContractClient {
	return &ContractClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *ContractClient) do(ctx context.Context, method, path string, payload any, out any) error {
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
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("contract service returned status %d", resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *ContractClient) GenerateContract(ctx context.Context, order *domain.Order) (*domain.Contract, error) {
	payload := map[string]any{
		"orderId":     order.ID,
		"appName":     order.AppSpecification.Name,
		"totalAmount": order.Pricing.TotalAmount,
		"currency":    order.Pricing.Currency,
		"legal":       order.Legal,
	}
	var contract domain.Contract
	if err := c.do(ctx, http.MethodPost, "/contracts", payload, &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

func (c *ContractClient) SendForSignature(ctx context.Context, contractID string, parties []SignatureParty) error {
	return c.do(ctx, http.MethodPost, "/contracts/"+contractID+"/send", map[string]any{"parties": parties}, nil)
}

func (c *ContractClient) SignContract(ctx context.Context, contractID, partyID, signature string) error {
	payload := map[string]string{
		"partyId":   partyID,
		"signature": signature,
	}
	return c.do(ctx, http.MethodPost, "/contracts/"+contractID+"/sign", payload, nil)
}
