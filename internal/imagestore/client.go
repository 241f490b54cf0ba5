package imagestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPDoer defines the http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the proof-image storage service. Uploads happen directly
// from the frontend; the backend only requests deletions by reference.
type Client struct {
	baseURL string
	client  HTTPDoer
}

// New builds a client with the storage service base URL.
func New(baseURL string, client HTTPDoer) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Delete asks the storage service to remove the object behind imageURL.
func (c *Client) Delete(ctx context.Context, imageURL string) error {
	payload, err := json.Marshal(map[string]string{"imageUrl": imageURL})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/delete", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("imagestore: delete returned status %d", resp.StatusCode)
	}
	return nil
}

// NewDefaultHTTPClient returns an *http.Client with timeout.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
