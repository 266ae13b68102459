package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"context"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/html/charset"
)

// HTTPFetcher fetches pages with a plain HTTP client. It does not execute
// JavaScript; use it for static sites where a browser session is overkill.
type HTTPFetcher struct {
	client *http.Client
	opts   Options
}

// NewHTTPFetcher constructs an HTTP fetcher with a tuned transport.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	opts = opts.withDefaults()

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts: opts,
	}
}

// Render fetches pageURL and returns the response body decoded to UTF-8.
func (f *HTTPFetcher) Render(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", newFetchError(FailNetwork, pageURL, err)
	}

	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for name, value := range f.opts.Headers {
		req.Header.Set(name, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", newFetchError(FailNetwork, pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", newFetchError(FailHTTPStatus, pageURL,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := f.readBody(resp)
	if err != nil {
		return "", newFetchError(FailNetwork, pageURL, err)
	}
	if int64(len(body)) > f.opts.MaxBodyBytes {
		return "", newFetchError(FailBodyTooLarge, pageURL,
			fmt.Errorf("body exceeds %d byte cap", f.opts.MaxBodyBytes))
	}

	// Decode to UTF-8 using the declared charset; pages with no declaration
	// pass through unchanged.
	decoded, err := charset.NewReader(strings.NewReader(string(body)), resp.Header.Get("Content-Type"))
	if err != nil {
		return string(body), nil
	}
	utf8Body, err := io.ReadAll(decoded)
	if err != nil {
		return string(body), nil
	}
	return string(utf8Body), nil
}

// readBody reads the response body, applying content-encoding decompression
// and the size cap. One byte past the cap is read so the overflow is
// detectable.
func (f *HTTPFetcher) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)
	var closers []io.Closer

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		reader = gz
		closers = append(closers, gz)
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		reader = fl
		closers = append(closers, fl)
	}

	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	return io.ReadAll(io.LimitReader(reader, f.opts.MaxBodyBytes+1))
}

// Close releases idle connections held by the transport.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
