package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/proxy"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sitectl/internal/model"
)

const (
	// DefaultTimeout bounds each request.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent identifies probe traffic in server logs.
	DefaultUserAgent = "sitectl/1.0 (+https://github.com/nao1215/sitectl)"

	// DefaultMaxBodySize caps how much of a response body is read.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// maxRedirects applies when redirects are followed.
	maxRedirects = 10
)

// Client sends probes. It is safe for concurrent use.
type Client struct {
	httpClient      *http.Client
	timeout         time.Duration
	userAgent       string
	maxBodySize     int64
	concurrency     int
	snapshot        bool
	followRedirects bool
	proxyAddress    string
	cookie          string
	headers         map[string]string
	logger          *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodySize caps how many body bytes are read per response.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithConcurrency sets how many probes ProbeAll runs at once.
// Values below 1 mean sequential.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n < 1 {
			n = 1
		}
		c.concurrency = n
	}
}

// WithSnapshot keeps the (capped) response body in Result.Body and its
// SHA3-256 digest in Result.Digest.
func WithSnapshot() Option {
	return func(c *Client) {
		c.snapshot = true
	}
}

// WithFollowRedirects makes the client follow up to 10 redirects.
// By default a 3xx answer is reported as failed, with its Location.
func WithFollowRedirects() Option {
	return func(c *Client) {
		c.followRedirects = true
	}
}

// WithProxy routes requests through a SOCKS5 proxy at host:port.
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithCookie sends cookie with every request.
func WithCookie(cookie string) Option {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// WithHeaders sends extra headers with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client. It fails only when the proxy address is malformed;
// it does not contact the proxy. Use CheckProxy for that.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		concurrency: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
	}

	if c.proxyAddress != "" {
		if !isValidProxyAddress(c.proxyAddress) {
			return nil, ErrInvalidProxyAddress
		}
		dialer, err := proxy.SOCKS5("tcp", c.proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		transport.DialContext = dialContextFunc(dialer)
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	c.httpClient = &http.Client{
		Transport: &headerInjectingTransport{
			base:      transport,
			userAgent: c.userAgent,
			cookie:    c.cookie,
			headers:   c.headers,
		},
		Timeout: c.timeout,
		Jar:     jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if !c.followRedirects || len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return c, nil
}

// dialContextFunc adapts a proxy.Dialer to http.Transport.DialContext.
func dialContextFunc(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		resultCh := make(chan dialResult, 1)
		go func() {
			conn, err := d.Dial(network, addr)
			resultCh <- dialResult{conn, err}
		}()
		select {
		case result := <-resultCh:
			return result.conn, result.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// isValidProxyAddress checks the "host:port" format with a numeric port.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" || port == "" {
		return false
	}
	portNum := 0
	for _, c := range port {
		if c < '0' || c > '9' {
			return false
		}
		portNum = portNum*10 + int(c-'0')
		if portNum > 65535 {
			return false
		}
	}
	return portNum >= 1
}

// HTTPClient returns the underlying HTTP client, for components such as
// the crawler that need full responses.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// ProxyAddress returns the configured SOCKS5 proxy, or "" for direct connections.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// Probe sends one GET request to rawURL and classifies the outcome.
func (c *Client) Probe(ctx context.Context, rawURL string) Result {
	return c.probe(ctx, rawURL, c.snapshot)
}

// Snapshot is Probe with the body and its digest kept, whatever the
// client's snapshot setting.
func (c *Client) Snapshot(ctx context.Context, rawURL string) Result {
	return c.probe(ctx, rawURL, true)
}

func (c *Client) probe(ctx context.Context, rawURL string, snapshot bool) Result {
	result := Result{URL: rawURL, CheckedAt: time.Now()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return c.finish(result, StatusFailed, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.Latency = time.Since(start)
		if isTimeout(err) {
			return c.finish(result, StatusTimedOut, err)
		}
		return c.finish(result, StatusFailed, err)
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	result.Location = resp.Header.Get("Location")

	// One byte past the cap tells a body of exactly maxBodySize from a longer one.
	body := io.LimitReader(resp.Body, c.maxBodySize+1)
	if snapshot {
		var buf bytes.Buffer
		_, err = io.Copy(&buf, body)
		if int64(buf.Len()) > c.maxBodySize {
			result.Truncated = true
			buf.Truncate(int(c.maxBodySize))
		}
		result.Body = buf.Bytes()
		result.Digest = model.HashBytes(result.Body)
	} else {
		var n int64
		n, err = io.Copy(io.Discard, body)
		result.Truncated = n > c.maxBodySize
	}
	result.Latency = time.Since(start)
	if err != nil && isTimeout(err) {
		return c.finish(result, StatusTimedOut, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return c.finish(result, StatusSucceeded, nil)
	}
	return c.finish(result, StatusFailed, nil)
}

func (c *Client) finish(result Result, status Status, err error) Result {
	result.Status = status
	if err != nil {
		result.Error = err.Error()
	}
	c.logger.Debug("probe",
		"url", result.URL,
		"status", result.Status.String(),
		"code", result.StatusCode,
		"latency", result.Latency,
	)
	return result
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ProbeAll probes every URL and returns the results in input order.
// With a concurrency of 1 the requests are sent one after another.
func (c *Client) ProbeAll(ctx context.Context, urls []string) Summary {
	results := make([]Result, len(urls))

	if c.concurrency <= 1 {
		for i, u := range urls {
			results[i] = c.Probe(ctx, u)
		}
		return newSummary(results)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = c.Probe(gctx, u)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // probes never return errors

	return newSummary(results)
}

// headerInjectingTransport adds the User-Agent, a cookie and custom headers
// to every request, including redirects.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
	cookie    string
	headers   map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.userAgent != "" && clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
