package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/sitectl/internal/model"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "hello")
	})
	mux.HandleFunc("/created", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})
	mux.HandleFunc("/error", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
			w.WriteHeader(http.StatusOK)
		case <-r.Context().Done():
		}
	})
	mux.HandleFunc("/headers", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "probe-test" || r.Header.Get("X-Token") != "abc" || r.Header.Get("Cookie") != "s=1" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status  Status
		text    string
		wantErr error
	}{
		{StatusSucceeded, "succeeded", nil},
		{StatusFailed, "failed", ErrRequestFailed},
		{StatusTimedOut, "timed out", ErrTimedOut},
		{Status(42), "unknown", ErrRequestFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			t.Parallel()
			if tc.status.String() != tc.text {
				t.Errorf("String() = %q, want %q", tc.status.String(), tc.text)
			}
			if !errors.Is(tc.status.Error(), tc.wantErr) {
				t.Errorf("Error() = %v, want %v", tc.status.Error(), tc.wantErr)
			}
		})
	}
}

func TestResultJSON(t *testing.T) {
	t.Parallel()

	failed := Result{URL: "https://example.com/", Status: StatusFailed, StatusCode: http.StatusNotFound}
	data, err := json.Marshal(failed)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"status":"failed"`) {
		t.Errorf("expected status by name, got %s", data)
	}

	var decoded Result
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.OK() || decoded.Status != StatusFailed {
		t.Errorf("decoded result must stay failed, got %v", decoded.Status)
	}

	if err := json.Unmarshal([]byte(`{"status":"maybe"}`), &decoded); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}
	if _, err := json.Marshal(Result{Status: Status(42)}); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		c, err := NewClient()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Timeout() != DefaultTimeout {
			t.Errorf("expected default timeout, got %v", c.Timeout())
		}
		if c.ProxyAddress() != "" {
			t.Errorf("expected no proxy, got %q", c.ProxyAddress())
		}
		if c.HTTPClient() == nil {
			t.Error("expected HTTP client")
		}
	})

	t.Run("valid proxy", func(t *testing.T) {
		t.Parallel()
		c, err := NewClient(WithProxy("127.0.0.1:1080"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.ProxyAddress() != "127.0.0.1:1080" {
			t.Errorf("unexpected proxy %q", c.ProxyAddress())
		}
	})

	for _, addr := range []string{"127.0.0.1", ":1080", "127.0.0.1:", "host:port", "host:70000", "host:0"} {
		t.Run("invalid proxy "+addr, func(t *testing.T) {
			t.Parallel()
			if _, err := NewClient(WithProxy(addr)); !errors.Is(err, ErrInvalidProxyAddress) {
				t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
			}
		})
	}
}

func TestClientProbe(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	testCases := []struct {
		name   string
		path   string
		status Status
		code   int
	}{
		{"200 succeeds", "/ok", StatusSucceeded, http.StatusOK},
		{"201 succeeds", "/created", StatusSucceeded, http.StatusCreated},
		{"404 fails", "/missing", StatusFailed, http.StatusNotFound},
		{"500 fails", "/error", StatusFailed, http.StatusInternalServerError},
		{"redirect is not followed", "/redirect", StatusFailed, http.StatusMovedPermanently},
	}

	c, err := NewClient(WithTimeout(2 * time.Second))
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result := c.Probe(t.Context(), server.URL+tc.path)
			if result.Status != tc.status {
				t.Errorf("status = %v, want %v", result.Status, tc.status)
			}
			if result.StatusCode != tc.code {
				t.Errorf("code = %d, want %d", result.StatusCode, tc.code)
			}
			if result.CheckedAt.IsZero() {
				t.Error("expected CheckedAt")
			}
			if result.Body != nil {
				t.Error("body must not be retained without snapshot")
			}
		})
	}

	t.Run("redirect location is recorded", func(t *testing.T) {
		t.Parallel()
		result := c.Probe(t.Context(), server.URL+"/redirect")
		if result.Location != "/ok" {
			t.Errorf("expected Location /ok, got %q", result.Location)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		fast, err := NewClient(WithTimeout(50 * time.Millisecond))
		if err != nil {
			t.Fatal(err)
		}
		result := fast.Probe(t.Context(), server.URL+"/slow")
		if result.Status != StatusTimedOut {
			t.Errorf("expected timed out, got %v (%s)", result.Status, result.Error)
		}
		if result.Error == "" {
			t.Error("expected error text")
		}
	})

	t.Run("connection refused fails", func(t *testing.T) {
		t.Parallel()
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		addr := ln.Addr().String()
		ln.Close()

		result := c.Probe(t.Context(), "http://"+addr+"/")
		if result.Status != StatusFailed {
			t.Errorf("expected failed, got %v", result.Status)
		}
		if result.StatusCode != 0 {
			t.Errorf("expected no status code, got %d", result.StatusCode)
		}
	})

	t.Run("malformed URL fails", func(t *testing.T) {
		t.Parallel()
		result := c.Probe(t.Context(), "http://[::1")
		if result.Status != StatusFailed || result.Error == "" {
			t.Errorf("expected failed with error, got %+v", result)
		}
	})

	t.Run("canceled context fails", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		result := c.Probe(ctx, server.URL+"/ok")
		if result.OK() {
			t.Error("expected canceled probe to not succeed")
		}
	})
}

func TestClientProbeOptions(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	t.Run("follow redirects", func(t *testing.T) {
		t.Parallel()
		c, err := NewClient(WithFollowRedirects())
		if err != nil {
			t.Fatal(err)
		}
		result := c.Probe(t.Context(), server.URL+"/redirect")
		if !result.OK() || result.StatusCode != http.StatusOK {
			t.Errorf("expected redirect to be followed, got %+v", result)
		}
	})

	t.Run("snapshot keeps body and digest", func(t *testing.T) {
		t.Parallel()
		c, err := NewClient(WithSnapshot())
		if err != nil {
			t.Fatal(err)
		}
		result := c.Probe(t.Context(), server.URL+"/ok")
		if string(result.Body) != "hello" {
			t.Errorf("unexpected body %q", result.Body)
		}
		if result.Digest != model.HashBytes([]byte("hello")) {
			t.Errorf("unexpected digest %q", result.Digest)
		}
	})

	t.Run("Snapshot keeps the body without the option", func(t *testing.T) {
		t.Parallel()
		c, err := NewClient()
		if err != nil {
			t.Fatal(err)
		}
		if r := c.Probe(t.Context(), server.URL+"/ok"); r.Body != nil || r.Digest != "" {
			t.Error("Probe must not keep the body by default")
		}
		r := c.Snapshot(t.Context(), server.URL+"/ok")
		if string(r.Body) != "hello" || r.Digest != model.HashBytes([]byte("hello")) {
			t.Errorf("unexpected snapshot %q %q", r.Body, r.Digest)
		}
	})

	t.Run("snapshot is capped", func(t *testing.T) {
		t.Parallel()
		c, err := NewClient(WithSnapshot(), WithMaxBodySize(2))
		if err != nil {
			t.Fatal(err)
		}
		result := c.Probe(t.Context(), server.URL+"/ok")
		if string(result.Body) != "he" || !result.Truncated {
			t.Errorf("expected capped body, got %q (truncated %v)", result.Body, result.Truncated)
		}
		if result.Digest != model.HashBytes([]byte("he")) {
			t.Error("digest should cover the kept part")
		}

		exact, err := NewClient(WithSnapshot(), WithMaxBodySize(5))
		if err != nil {
			t.Fatal(err)
		}
		if r := exact.Probe(t.Context(), server.URL+"/ok"); r.Truncated || string(r.Body) != "hello" {
			t.Errorf("a body of exactly the cap is complete, got %q (truncated %v)", r.Body, r.Truncated)
		}

		plain, err := NewClient(WithMaxBodySize(2))
		if err != nil {
			t.Fatal(err)
		}
		if r := plain.Probe(t.Context(), server.URL+"/ok"); !r.Truncated || !r.OK() {
			t.Errorf("expected a successful truncated result, got %+v", r)
		}
	})

	t.Run("headers, cookie and user agent are sent", func(t *testing.T) {
		t.Parallel()
		c, err := NewClient(
			WithUserAgent("probe-test"),
			WithCookie("s=1"),
			WithHeaders(map[string]string{"X-Token": "abc"}),
		)
		if err != nil {
			t.Fatal(err)
		}
		result := c.Probe(t.Context(), server.URL+"/headers")
		if result.StatusCode != http.StatusNoContent {
			t.Errorf("expected 204, got %d", result.StatusCode)
		}
	})
}

func TestClientProbeAll(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	urls := []string{
		server.URL + "/ok",
		server.URL + "/missing",
		server.URL + "/created",
		server.URL + "/error",
	}

	for _, concurrency := range []int{1, 3} {
		t.Run(fmt.Sprintf("concurrency %d", concurrency), func(t *testing.T) {
			t.Parallel()
			c, err := NewClient(WithConcurrency(concurrency))
			if err != nil {
				t.Fatal(err)
			}
			summary := c.ProbeAll(t.Context(), urls)
			if summary.Total != 4 || summary.Succeeded != 2 || summary.Failed() != 2 {
				t.Errorf("unexpected counters: %+v", summary)
			}
			if summary.AllSucceeded() {
				t.Error("expected AllSucceeded false")
			}
			for i, r := range summary.Results {
				if r.URL != urls[i] {
					t.Errorf("result %d is %q, want %q", i, r.URL, urls[i])
				}
			}
		})
	}

	t.Run("sequential requests never overlap", func(t *testing.T) {
		t.Parallel()
		var inFlight, maxInFlight atomic.Int32
		seq := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			n := inFlight.Add(1)
			for {
				old := maxInFlight.Load()
				if n <= old || maxInFlight.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(seq.Close)

		c, err := NewClient()
		if err != nil {
			t.Fatal(err)
		}
		summary := c.ProbeAll(t.Context(), []string{seq.URL + "/a", seq.URL + "/b", seq.URL + "/c"})
		if !summary.AllSucceeded() {
			t.Errorf("expected all to succeed: %+v", summary)
		}
		if maxInFlight.Load() != 1 {
			t.Errorf("expected one request at a time, saw %d", maxInFlight.Load())
		}
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()
		c, err := NewClient()
		if err != nil {
			t.Fatal(err)
		}
		summary := c.ProbeAll(t.Context(), nil)
		if summary.Total != 0 || summary.AllSucceeded() {
			t.Errorf("unexpected summary %+v", summary)
		}
	})
}

func TestProxyStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status  ProxyStatus
		text    string
		wantErr error
	}{
		{ProxyStatusOK, "OK", nil},
		{ProxyStatusWrongType, "wrong type (not SOCKS5)", ErrProxyNotSOCKS5},
		{ProxyStatusCannotConnect, "cannot connect", ErrProxyCannotConnect},
		{ProxyStatusTimeout, "timeout", ErrProxyTimeout},
	}
	for _, tc := range testCases {
		if tc.status.String() != tc.text {
			t.Errorf("String() = %q, want %q", tc.status.String(), tc.text)
		}
		if !errors.Is(tc.status.Error(), tc.wantErr) {
			t.Errorf("Error() = %v, want %v", tc.status.Error(), tc.wantErr)
		}
	}
	if ProxyStatus(99).String() != "unknown" || ProxyStatus(99).Error() == nil {
		t.Error("unexpected handling of unknown status")
	}
}

// serveOnce accepts one connection and hands it to handle.
func serveOnce(t *testing.T, handle func(net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}()
	return ln.Addr().String()
}

func TestCheckProxy(t *testing.T) {
	t.Parallel()

	t.Run("no proxy is OK", func(t *testing.T) {
		t.Parallel()
		c, err := NewClient()
		if err != nil {
			t.Fatal(err)
		}
		if got := c.CheckProxy(t.Context(), "example.com", 443); got != ProxyStatusOK {
			t.Errorf("expected OK, got %v", got)
		}
	})

	t.Run("SOCKS5 proxy is OK", func(t *testing.T) {
		t.Parallel()
		addr := serveOnce(t, func(conn net.Conn) {
			greeting := make([]byte, 3)
			if _, err := io.ReadFull(conn, greeting); err != nil {
				return
			}
			conn.Write([]byte{0x05, 0x00})
			header := make([]byte, 5)
			if _, err := io.ReadFull(conn, header); err != nil {
				return
			}
			rest := make([]byte, int(header[4])+2)
			if _, err := io.ReadFull(conn, rest); err != nil {
				return
			}
			// host unreachable still proves the proxy works
			conn.Write([]byte{0x05, 0x04, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
		})

		c, err := NewClient(WithProxy(addr))
		if err != nil {
			t.Fatal(err)
		}
		if got := c.CheckProxy(t.Context(), "example.com", 443); got != ProxyStatusOK {
			t.Errorf("expected OK, got %v", got)
		}
	})

	t.Run("HTTP server is wrong type", func(t *testing.T) {
		t.Parallel()
		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			io.ReadFull(conn, buf)
			io.WriteString(conn, "HTTP/1.1 400 Bad Request\r\n\r\n")
		})

		c, err := NewClient(WithProxy(addr))
		if err != nil {
			t.Fatal(err)
		}
		if got := c.CheckProxy(t.Context(), "example.com", 443); got != ProxyStatusWrongType {
			t.Errorf("expected wrong type, got %v", got)
		}
	})

	t.Run("closed port cannot connect", func(t *testing.T) {
		t.Parallel()
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		addr := ln.Addr().String()
		ln.Close()

		c, err := NewClient(WithProxy(addr))
		if err != nil {
			t.Fatal(err)
		}
		if got := c.CheckProxy(t.Context(), "example.com", 443); got != ProxyStatusCannotConnect {
			t.Errorf("expected cannot connect, got %v", got)
		}
	})
}

func TestIsTimeout(t *testing.T) {
	t.Parallel()

	if !isTimeout(context.DeadlineExceeded) {
		t.Error("deadline exceeded should be a timeout")
	}
	if !isTimeout(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)) {
		t.Error("wrapped deadline exceeded should be a timeout")
	}
	if isTimeout(errors.New("connection reset")) {
		t.Error("plain error should not be a timeout")
	}
	if isTimeout(context.Canceled) {
		t.Error("cancellation should not be a timeout")
	}
}
