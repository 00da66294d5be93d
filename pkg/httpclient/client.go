package httpclient

import (
	"net/http"
	"time"
)

// browser-like User-Agent used for endpoints that reject default Go clients
const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client wraps an http.Client with a fixed header profile. A non-empty
// bearer token is attached to every request as an Authorization header.
type Client struct {
	client *http.Client
	token  string
}

// New creates a client with the given timeout and no authentication.
func New(timeout time.Duration) *Client {
	return newClient(timeout, "")
}

// NewBearer creates a client that authenticates every request with the
// given bearer token.
func NewBearer(token string, timeout time.Duration) *Client {
	return newClient(timeout, token)
}

func newClient(timeout time.Duration, token string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Follow up to 10 redirects
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		token: token,
	}
}

// Do executes an HTTP request with the client's header profile applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.setHeaders(req)
	return c.client.Do(req)
}

// Get is a convenience method for GET requests.
func (c *Client) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

func (c *Client) setHeaders(req *http.Request) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", browserUserAgent)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
