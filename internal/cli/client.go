package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dwalters/cardroom/internal/session"
)

// Client is an HTTP client for the server. It keeps a cookie jar so a
// login performed through it carries over to later requests and to the
// socket gateway handshake.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new client for the given server URL
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Login authenticates as the given username via the login form
func (c *Client) Login(username string) error {
	form := url.Values{}
	form.Set("auth", username)

	resp, err := c.httpClient.PostForm(c.baseURL+"/", form)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if c.SessionCookie() == nil {
		return fmt.Errorf("no session cookie after login")
	}
	return nil
}

// SessionCookie returns the current session cookie, or nil if absent
func (c *Client) SessionCookie() *http.Cookie {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil
	}
	for _, ck := range c.httpClient.Jar.Cookies(u) {
		if ck.Name == session.CookieName {
			return ck
		}
	}
	return nil
}

// Get performs a GET request and decodes the JSON response into result
func (c *Client) Get(path string, result any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// SocketURL returns the websocket endpoint derived from the server URL
func (c *Client) SocketURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	return u.String(), nil
}
