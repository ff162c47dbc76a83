package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// BrowserUserAgent is sent with every request.
const BrowserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/93.0.4577.82 Safari/537.36"

// MaxImageBytes bounds the size of a downloaded image.
const MaxImageBytes = 32 << 20

// Client wraps HTTP operations with musare-dl specific configuration.
//
// Client provides:
//   - Browser User-Agent header for image hosts that filter clients
//   - Timeout handling
//   - Response size limits for in-memory downloads
//
// Example usage:
//
//	client := NewClient()
//	data, err := client.DownloadBytes(ctx, song.Thumbnail)
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client.
//
// The client is configured with:
//   - 60 second timeout
//   - BrowserUserAgent User-Agent header
func NewClient() *Client {
	return NewClientWith(&http.Client{Timeout: 60 * time.Second})
}

// NewClientWith creates a Client around an existing *http.Client.
func NewClientWith(hc *http.Client) *Client {
	return &Client{
		httpClient: hc,
		userAgent:  BrowserUserAgent,
	}
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK
//   - Reading the body fails or exceeds MaxImageBytes
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxImageBytes {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", url, MaxImageBytes)
	}
	return body, nil
}

// DownloadBytes downloads a file and returns the bytes in memory.
//
// Use this for small files like cover art images.
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url)
}
