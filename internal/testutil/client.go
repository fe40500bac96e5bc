package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// Client is a browser-like test client: it keeps cookies and echoes the CSRF
// token rendered on the page into htmx requests.
type Client struct {
	t    testing.TB
	base string
	http *http.Client
	csrf string
}

// NewClient loads the landing page once to obtain the session and CSRF cookies.
func NewClient(t testing.TB, ts *httptest.Server) *Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	c := &Client{t: t, base: ts.URL, http: &http.Client{Jar: jar}}

	resp, body := c.Get("/", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("landing page: status %d", resp.StatusCode)
	}
	doc := ParseHTML(t, body)
	var headers map[string]string
	if err := json.Unmarshal([]byte(doc.Find("body").AttrOr("hx-headers", "{}")), &headers); err != nil {
		t.Fatalf("decode hx-headers: %v", err)
	}
	c.csrf = headers["X-CSRF-Token"]
	if c.csrf == "" {
		t.Fatalf("landing page did not render a csrf token")
	}
	return c
}

// CSRFToken returns the token rendered on the landing page.
func (c *Client) CSRFToken() string { return c.csrf }

// Get issues a GET, marked as an htmx request when htmx is true.
func (c *Client) Get(path string, htmx bool) (*http.Response, []byte) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return c.do(req)
}

// Post submits form as an htmx request carrying the CSRF header.
func (c *Client) Post(path string, form url.Values) (*http.Response, []byte) {
	c.t.Helper()
	return c.PostWithToken(path, form, c.csrf)
}

// PostWithToken is Post with an explicit CSRF header; empty omits it.
func (c *Client) PostWithToken(path string, form url.Values, token string) (*http.Response, []byte) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	if token != "" {
		req.Header.Set("X-CSRF-Token", token)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*http.Response, []byte) {
	c.t.Helper()
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	return resp, body
}
