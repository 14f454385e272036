// Package peanut provides an HTTP client for the Peanut payment-link API.
//
// A Peanut link is a pre-funded claim: resolving it reveals which chain,
// token, and amount it holds, and claiming it gaslessly transfers those
// funds to a recipient address.
package peanut

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrGateway wraps any failure talking to the payment network.
var ErrGateway = errors.New("peanut: gateway request failed")

// DefaultTimeout bounds each API call.
const DefaultTimeout = 30 * time.Second

// LinkDetails describes the funds locked behind a payment link.
type LinkDetails struct {
	ChainID      string `json:"chainId"`
	TokenAddress string `json:"tokenAddress"`
	TokenAmount  string `json:"tokenAmount"`
}

// ClaimResult is the outcome of a successful gasless claim.
type ClaimResult struct {
	TxHash string `json:"txHash"`
}

// The API reports tokenAmount as a JSON number for native-decimal
// tokens and a string otherwise; json.Number preserves the literal.
type linkDetailsResponse struct {
	ChainID      string      `json:"chainId"`
	TokenAddress string      `json:"tokenAddress"`
	TokenAmount  json.Number `json:"tokenAmount"`
}

// Config configures the Peanut API client.
type Config struct {
	APIURL     string
	APIKey     string
	HTTPClient *http.Client  // optional
	Timeout    time.Duration // ignored when HTTPClient is set
}

// Client talks to the Peanut API.
type Client struct {
	apiURL string
	apiKey string
	http   *http.Client
}

// NewClient creates a Peanut API client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		http:   httpClient,
	}
}

// GetLinkDetails resolves a payment link to the chain, token, and amount
// it carries. The amount is returned exactly as the API reports it.
func (c *Client) GetLinkDetails(ctx context.Context, link string) (*LinkDetails, error) {
	var resp linkDetailsResponse

	err := c.post(ctx, "/get-link-details", map[string]string{
		"link":   link,
		"apiKey": c.apiKey,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &LinkDetails{
		ChainID:      resp.ChainID,
		TokenAddress: resp.TokenAddress,
		TokenAmount:  resp.TokenAmount.String(),
	}, nil
}

// ClaimGasless claims the link's funds to the recipient address. The
// Peanut service pays gas; the API key authorizes the claim.
func (c *Client) ClaimGasless(ctx context.Context, link, recipient string) (*ClaimResult, error) {
	var result ClaimResult

	err := c.post(ctx, "/claim-v2", map[string]string{
		"link":             link,
		"recipientAddress": recipient,
		"apiKey":           c.apiKey,
	}, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, body map[string]string, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", ErrGateway, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrGateway, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrGateway, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s returned %d: %s", ErrGateway, path, resp.StatusCode, apiErrorMessage(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrGateway, err)
	}
	return nil
}

// apiErrorMessage extracts the error field from an API error body,
// falling back to the raw body.
func apiErrorMessage(data []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &e); err == nil && e.Error != "" {
		return e.Error
	}
	if len(data) > 200 {
		data = data[:200]
	}
	return string(data)
}
