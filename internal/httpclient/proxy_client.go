// Package httpclient builds the HTTP client exploration sessions use to
// reach a remote proxy.
package httpclient

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teranos/actorgraph/errors"
)

// DefaultMaxRedirects bounds redirect chains
const DefaultMaxRedirects = 5

// ProxyClient is an http.Client pinned to one proxy host. Redirects that
// leave that host are refused so session traffic never follows a proxy
// somewhere else.
type ProxyClient struct {
	*http.Client
	base         *url.URL
	maxRedirects int
}

// Options customizes a ProxyClient
type Options struct {
	MaxRedirects *int // Default: 5
	Transport    http.RoundTripper
}

// New validates baseURL and returns a client for it
func New(baseURL string, timeout time.Duration) (*ProxyClient, error) {
	return NewWithOptions(baseURL, timeout, Options{})
}

// NewWithOptions is New with custom redirect and transport settings
func NewWithOptions(baseURL string, timeout time.Duration, opts Options) (*ProxyClient, error) {
	u, err := ValidateURL(baseURL)
	if err != nil {
		return nil, err
	}

	maxRedirects := DefaultMaxRedirects
	if opts.MaxRedirects != nil {
		maxRedirects = *opts.MaxRedirects
	}

	c := &ProxyClient{
		Client:       &http.Client{Timeout: timeout, Transport: opts.Transport},
		base:         u,
		maxRedirects: maxRedirects,
	}
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= c.maxRedirects {
			return errors.Newf("stopped after %d redirects", c.maxRedirects)
		}
		if !strings.EqualFold(req.URL.Host, c.base.Host) {
			return errors.Newf("redirect to %s blocked: proxy is %s", req.URL.Host, c.base.Host)
		}
		return nil
	}
	return c, nil
}

// BaseURL returns the proxy URL without a trailing slash
func (c *ProxyClient) BaseURL() string {
	return strings.TrimRight(c.base.String(), "/")
}

// ValidateURL checks that s is an absolute http(s) URL without credentials
func ValidateURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, errors.Wrap(err, "invalid proxy URL")
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, errors.WithHint(
			errors.Newf("scheme %q not allowed for proxy URL", u.Scheme),
			"use http:// or https://",
		)
	}
	if u.Hostname() == "" {
		return nil, errors.New("proxy URL missing hostname")
	}
	if u.User != nil {
		return nil, errors.New("proxy URL must not contain credentials")
	}
	return u, nil
}
