package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/openscholar/paperview/internal/domain"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20 // metadata documents are small; cap reads at 1MiB
)

// Client is the HTTP client used to fetch documents from the
// content-addressable gateway. It performs exactly one attempt per call;
// retry policy belongs to the cache orchestrator layered on top.
type Client struct {
	client    *http.Client
	userAgent string
	baseURL   string
}

// New creates a gateway client. baseURL is the gateway prefix the content
// hash is appended to, e.g. "https://ipfs.example/ipfs/".
func New(baseURL string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:    &httpClient,
		userAgent: "paperview/1.0",
		baseURL:   strings.TrimSuffix(baseURL, "/") + "/",
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// FetchJSON fetches the document at the given content hash and decodes it
// into response. A non-200 status or network failure is a TransientError;
// a 404 or a body that fails to decode is an absence.
func (c *Client) FetchJSON(ctx context.Context, contentHash string, response any) error {

	if contentHash == "" {
		return domain.NotFoundError{Resource: "metadata document"}
	}

	url := c.baseURL + contentHash
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.TransientError{Op: "gateway fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.NotFoundError{Resource: "metadata document"}
	}
	if resp.StatusCode != http.StatusOK {
		return domain.TransientError{
			Op:  "gateway fetch",
			Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	// A body that does not parse is "no metadata", not a retryable fault:
	// the document is content-addressed, so a second fetch returns the same
	// bytes.
	body := io.LimitReader(resp.Body, maxBodyBytes)
	err = json.NewDecoder(body).Decode(response)
	if err != nil {
		return domain.NotFoundError{Resource: "metadata document"}
	}

	return nil
}
