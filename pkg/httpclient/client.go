package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	errs "vidscraper/pkg/errors"
	"vidscraper/pkg/logger"
	"vidscraper/pkg/ratelimit"
)

// Request describes a single HTTP exchange
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	// Timeout bounds this request only; zero uses the client default
	Timeout time.Duration
	Body    []byte
	// Platform tags errors produced by this request
	Platform string
}

// Response is a fully read HTTP response
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	// URL is the final URL after redirects
	URL string
}

// Fetcher performs HTTP requests. *Client implements it; tests stub it.
type Fetcher interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Options configures a Client
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Proxy     string
	Cookie    string

	// PlatformCookies replace Cookie on requests tagged with that platform
	PlatformCookies map[string]string
	// PlatformUserAgents replace UserAgent the same way
	PlatformUserAgents map[string]string

	Limiter   ratelimit.Limiter
	Logger    logger.Logger
	// Transport overrides the default transport
	Transport http.RoundTripper
}

// Client is the Fetcher used by the extractors and the downloader
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	cookies    map[string]string
	agents     map[string]string
	timeout    time.Duration
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

var _ Fetcher = (*Client)(nil)

// New creates a client. Redirects are followed, which resolves short links.
func New(opts Options) (*Client, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	transport := opts.Transport
	if transport == nil {
		base := http.DefaultTransport.(*http.Transport).Clone()
		if opts.Proxy != "" {
			proxyURL, err := url.Parse(opts.Proxy)
			if err != nil {
				return nil, fmt.Errorf("invalid proxy url: %w", err)
			}
			base.Proxy = http.ProxyURL(proxyURL)
		}
		transport = base
	}

	headers := map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
		"Cache-Control":   "no-cache",
		"Pragma":          "no-cache",
		"Sec-Fetch-Dest":  "document",
		"Sec-Fetch-Mode":  "navigate",
		"Sec-Fetch-Site":  "none",
	}
	if opts.UserAgent != "" {
		headers["User-Agent"] = opts.UserAgent
	}
	if opts.Cookie != "" {
		headers["Cookie"] = opts.Cookie
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		headers:    headers,
		cookies:    opts.PlatformCookies,
		agents:     opts.PlatformUserAgents,
		timeout:    opts.Timeout,
		limiter:    opts.Limiter,
		logger:     log,
	}, nil
}

// Do sends req and reads the whole body. Transport failures and non-2xx
// statuses are returned as network errors carrying req.Platform.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errs.NewNetworkError(req.Platform, "rate limiter wait aborted", 0, err)
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, errs.NewNetworkError(req.Platform, fmt.Sprintf("failed to create request: %v", err), 0, err)
	}
	for key, value := range c.headers {
		httpReq.Header.Set(key, value)
	}
	if cookie := c.cookies[req.Platform]; cookie != "" {
		httpReq.Header.Set("Cookie", cookie)
	}
	if ua := c.agents[req.Platform]; ua != "" {
		httpReq.Header.Set("User-Agent", ua)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   method,
			"url":      req.URL,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, errs.NewNetworkError(req.Platform, fmt.Sprintf("request to %s failed: %v", req.URL, err), 0, err)
	}
	defer resp.Body.Close()

	logger.LogRequest(c.logger, method, req.URL, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errs.NewNetworkError(req.Platform,
			fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, req.URL), resp.StatusCode, nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewNetworkError(req.Platform, fmt.Sprintf("failed to read response body: %v", err), resp.StatusCode, err)
	}

	finalURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   data,
		URL:    finalURL,
	}, nil
}
