package dhlecs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TokenSource supplies bearer tokens for API authentication.
// Token refresh mechanics live behind this interface.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns a TokenSource that always yields the given token.
func StaticTokenSource(token string) TokenSource {
	return staticTokenSource(token)
}

type staticTokenSource string

func (s staticTokenSource) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// HTTPAPIClient is the production implementation of APIClient using HTTP.
type HTTPAPIClient struct {
	baseURL    string
	ekp        string
	tokens     TokenSource
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL string
	EKP     string // Customer account number, part of every shipping route
	Tokens  TokenSource
	Timeout time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		baseURL: cfg.BaseURL,
		ekp:     cfg.EKP,
		tokens:  cfg.Tokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateItem registers a new item via the DHL eCS API.
// POST dpi/shipping/v1/customers/{ekp}/items
func (c *HTTPAPIClient) CreateItem(ctx context.Context, req *ItemRequest) (*ItemResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, c.customerRoute("items"), req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp)
	}

	var result ItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode item response: %w", err)
	}
	return &result, nil
}

// DeleteItem removes an item via the DHL eCS API.
// DELETE dpi/shipping/v1/customers/{ekp}/items/{id}
func (c *HTTPAPIClient) DeleteItem(ctx context.Context, itemID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, c.customerRoute("items/"+itemID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parseError(resp)
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}

// GetItems lists the items currently registered with the carrier.
// GET dpi/shipping/v1/customers/{ekp}/items
func (c *HTTPAPIClient) GetItems(ctx context.Context) ([]ItemResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.customerRoute("items"), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp)
	}

	var result []ItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode items response: %w", err)
	}
	return result, nil
}

// CreateOrder submits a batch of item barcodes as a shipping order.
// POST dpi/shipping/v1/customers/{ekp}/orders
func (c *HTTPAPIClient) CreateOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, c.customerRoute("orders"), req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp)
	}

	var result OrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}
	return &result, nil
}

// GetItemLabel retrieves the label payload for an item by barcode.
// GET dpi/shipping/v1/customers/{ekp}/items/{barcode}/label
func (c *HTTPAPIClient) GetItemLabel(ctx context.Context, barcode string) (*LabelResponse, error) {
	path := c.customerRoute(fmt.Sprintf("items/%s/label", barcode))

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp)
	}

	var result LabelResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode label response: %w", err)
	}
	return &result, nil
}

// GetTracking retrieves tracking information for a shipment AWB.
// GET dpi/tracking/v1/trackings/awb/{awb}
func (c *HTTPAPIClient) GetTracking(ctx context.Context, awb string) (*TrackingResponse, error) {
	path := fmt.Sprintf("dpi/tracking/v1/trackings/awb/%s", awb)

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp)
	}

	var result TrackingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode tracking response: %w", err)
	}
	return &result, nil
}

// customerRoute prepends the customer namespace and EKP to a route.
func (c *HTTPAPIClient) customerRoute(route string) string {
	return fmt.Sprintf("dpi/shipping/v1/customers/%s/%s", c.ekp, route)
}

// doRequest performs an HTTP request with proper headers and authentication.
func (c *HTTPAPIClient) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	url := c.baseURL + "/" + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "dhlbridge/1.0")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain API token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpClient.Do(req)
}

// parseError extracts error information from a non-200 HTTP response.
func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return newAPIError(resp.StatusCode, body)
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
