/**
 * @description
 * This package provides a client for the external payment-link provisioning
 * API. It encapsulates the authenticated HTTP requests for creating a payable
 * link ahead of product persistence, and for voiding a link when a pipeline
 * compensation runs.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package paylinkclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client is a client for the payment-link provisioning API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new payment-link API client with a bounded call timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreatePaymentLinkRequest is the provisioning payload. Amount is the base
// amount in minor units; the platform fee is never sent downstream.
type CreatePaymentLinkRequest struct {
	Amount      int64   `json:"amount"`
	Description string  `json:"description"`
	PaymentType string  `json:"payment_type"`
	Currency    string  `json:"currency"`
	RedirectURL *string `json:"redirect_url"`
}

// CreatePaymentLinkResponse carries the opaque id of the provisioned link.
type CreatePaymentLinkResponse struct {
	PaymentLinkID string `json:"payment_link_id"`
}

// ErrorResponse represents an error returned by the provisioning API.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("payment link api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("payment link api error (status %d)", e.StatusCode)
}

// Create provisions a new payment link and returns its opaque id.
func (c *Client) Create(ctx context.Context, reqPayload CreatePaymentLinkRequest) (*CreatePaymentLinkResponse, error) {
	if reqPayload.PaymentType == "" {
		reqPayload.PaymentType = "product"
	}

	body, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment link request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/payment-links", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create payment link request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute payment link request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment link response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errResp := &ErrorResponse{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(bodyBytes, errResp); err != nil {
			log.Printf("level=warn component=paylink_client op=create status=%d msg=\"non-2xx response (unparsable error body)\"", resp.StatusCode)
		}
		return nil, errResp
	}

	var successResp CreatePaymentLinkResponse
	if err := json.Unmarshal(bodyBytes, &successResp); err != nil {
		return nil, fmt.Errorf("failed to decode payment link response: %w", err)
	}
	if successResp.PaymentLinkID == "" {
		return nil, fmt.Errorf("payment link api returned an empty payment_link_id")
	}

	return &successResp, nil
}

// Void disables a previously provisioned payment link. Used by pipeline
// compensation and by the orphan sweeper.
func (c *Client) Void(ctx context.Context, paymentLinkID string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.BaseURL+"/v1/payment-links/"+paymentLinkID, nil)
	if err != nil {
		return fmt.Errorf("failed to create void request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute void request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	// A link that is already gone counts as voided.
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("level=warn component=paylink_client op=void payment_link_id=%s status=%d", paymentLinkID, resp.StatusCode)
		return &ErrorResponse{StatusCode: resp.StatusCode}
	}
	return nil
}
