/**
 * @description
 * This package provides a client for the object storage collaborator used for
 * product images. The storage API is bucket-scoped: objects are uploaded under
 * a caller-chosen name and served back over a public URL.
 *
 * @dependencies
 * - bytes, context, fmt, net/http, time: Standard Go libraries.
 */
package storageclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client is a client for the object storage API.
type Client struct {
	BaseURL    string
	Bucket     string
	ServiceKey string
	HTTPClient *http.Client
}

// NewClient creates a new object storage client with a bounded call timeout.
func NewClient(baseURL, bucket, serviceKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:    baseURL,
		Bucket:     bucket,
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Upload stores data under objectName in the configured bucket.
func (c *Client) Upload(ctx context.Context, objectName string, data []byte, contentType string) error {
	url := fmt.Sprintf("%s/object/%s/%s", c.BaseURL, c.Bucket, objectName)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.ServiceKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("level=warn component=storage_client op=upload object=%s status=%d", objectName, resp.StatusCode)
		return fmt.Errorf("storage upload failed (status %d)", resp.StatusCode)
	}
	return nil
}

// PublicURL returns the public reference URL for an uploaded object. This is a
// pure derivation; no request is made.
func (c *Client) PublicURL(objectName string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.BaseURL, c.Bucket, objectName)
}

// Delete removes an object from the bucket. Used by pipeline compensation and
// by the orphan sweeper; the happy-path pipeline never deletes.
func (c *Client) Delete(ctx context.Context, objectName string) error {
	url := fmt.Sprintf("%s/object/%s/%s", c.BaseURL, c.Bucket, objectName)

	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.ServiceKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute delete request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	// An object that is already gone counts as deleted.
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("level=warn component=storage_client op=delete object=%s status=%d", objectName, resp.StatusCode)
		return fmt.Errorf("storage delete failed (status %d)", resp.StatusCode)
	}
	return nil
}
