package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestHTTPFetcherRender covers the plain fetch path.
func TestHTTPFetcherRender(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><h1>hello</h1></body></html>"))
	}))
	t.Cleanup(srv.Close)

	f := NewHTTPFetcher(Options{Timeout: 5 * time.Second})
	t.Cleanup(func() { _ = f.Close() })

	html, err := f.Render(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, "<h1>hello</h1>") {
		t.Errorf("expected body content, got %q", html)
	}
}

// TestHTTPFetcherCustomHeaders verifies configured headers reach the server
// and override the built-in defaults.
func TestHTTPFetcherCustomHeaders(t *testing.T) {
	t.Parallel()

	var gotLang, gotCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.Header.Get("Accept-Language")
		gotCustom = r.Header.Get("X-Snapshot")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	t.Cleanup(srv.Close)

	f := NewHTTPFetcher(Options{
		Timeout: 5 * time.Second,
		Headers: map[string]string{
			"Accept-Language": "de-DE",
			"X-Snapshot":      "1",
		},
	})
	t.Cleanup(func() { _ = f.Close() })

	if _, err := f.Render(context.Background(), srv.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLang != "de-DE" {
		t.Errorf("Accept-Language = %q, want override de-DE", gotLang)
	}
	if gotCustom != "1" {
		t.Errorf("X-Snapshot = %q, want 1", gotCustom)
	}
}

// TestHTTPFetcherGzip verifies content-encoding decompression.
func TestHTTPFetcherGzip(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte("<html><body>compressed</body></html>"))
		_ = gz.Close()
	}))
	t.Cleanup(srv.Close)

	f := NewHTTPFetcher(Options{Timeout: 5 * time.Second})
	t.Cleanup(func() { _ = f.Close() })

	html, err := f.Render(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, "compressed") {
		t.Errorf("expected decompressed body, got %q", html)
	}
}

// TestHTTPFetcherStatusFailure verifies non-2xx responses become typed
// failures.
func TestHTTPFetcherStatusFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	t.Cleanup(srv.Close)

	f := NewHTTPFetcher(Options{Timeout: 5 * time.Second})
	t.Cleanup(func() { _ = f.Close() })

	_, err := f.Render(context.Background(), srv.URL)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.Kind != FailHTTPStatus {
		t.Errorf("expected kind %q, got %q", FailHTTPStatus, fe.Kind)
	}
}

// TestHTTPFetcherTimeout verifies that a slow page becomes a timeout
// failure, not a crawl-fatal error.
func TestHTTPFetcherTimeout(t *testing.T) {
	t.Parallel()

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(slow.Close)

	f := NewHTTPFetcher(Options{Timeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = f.Close() })

	_, err := f.Render(context.Background(), slow.URL)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.Kind != FailTimeout {
		t.Errorf("expected kind %q, got %q", FailTimeout, fe.Kind)
	}
}

// TestHTTPFetcherBodyCap verifies oversized bodies are rejected.
func TestHTTPFetcherBodyCap(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	t.Cleanup(srv.Close)

	f := NewHTTPFetcher(Options{Timeout: 5 * time.Second, MaxBodyBytes: 1024})
	t.Cleanup(func() { _ = f.Close() })

	_, err := f.Render(context.Background(), srv.URL)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.Kind != FailBodyTooLarge {
		t.Errorf("expected kind %q, got %q", FailBodyTooLarge, fe.Kind)
	}
}

// TestFetchErrorUnwrap verifies the error chain stays inspectable.
func TestFetchErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	fe := newFetchError(FailNetwork, "https://example.com", cause)
	if !errors.Is(fe, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.Contains(fe.Error(), "network") {
		t.Errorf("expected kind in message, got %q", fe.Error())
	}
}
