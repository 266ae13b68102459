package safety

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
)

// fakeResolver returns canned answers per hostname.
type fakeResolver struct {
	addrs map[string][]net.IPAddr
	err   error
}

func (f *fakeResolver) LookupIPAddr(_ context.Context, host string) ([]net.IPAddr, error) {
	if f.err != nil {
		return nil, f.err
	}
	addrs, ok := f.addrs[host]
	if !ok {
		return nil, errors.New("no such host")
	}
	return addrs, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ipAddrs(ips ...string) []net.IPAddr {
	out := make([]net.IPAddr, 0, len(ips))
	for _, s := range ips {
		out = append(out, net.IPAddr{IP: net.ParseIP(s)})
	}
	return out
}

// TestValidatorIsSafe covers the address classes the validator must reject
// and the public addresses it must allow.
func TestValidatorIsSafe(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{addrs: map[string][]net.IPAddr{
		"public.example.com":    ipAddrs("93.184.216.34"),
		"public6.example.com":   ipAddrs("2606:2800:220:1:248:1893:25c8:1946"),
		"loopback.example.com":  ipAddrs("127.0.0.1"),
		"private.example.com":   ipAddrs("10.0.0.5"),
		"private2.example.com":  ipAddrs("192.168.1.1"),
		"linklocal.example.com": ipAddrs("169.254.169.254"),
		"multicast.example.com": ipAddrs("224.0.0.1"),
		"zero.example.com":      ipAddrs("0.0.0.0"),
		"rebind.example.com":    ipAddrs("93.184.216.34", "10.0.0.5"),
		"loopback6.example.com": ipAddrs("::1"),
	}}
	v := NewValidator(resolver, discardLogger())
	ctx := context.Background()

	cases := []struct {
		name string
		host string
		want bool
	}{
		{"public IPv4 allowed", "public.example.com", true},
		{"public IPv6 allowed", "public6.example.com", true},
		{"loopback rejected", "loopback.example.com", false},
		{"private 10/8 rejected", "private.example.com", false},
		{"private 192.168/16 rejected", "private2.example.com", false},
		{"link-local rejected", "linklocal.example.com", false},
		{"multicast rejected", "multicast.example.com", false},
		{"unspecified rejected", "zero.example.com", false},
		{"mixed public and private rejected", "rebind.example.com", false},
		{"IPv6 loopback rejected", "loopback6.example.com", false},
		{"unresolvable host rejected", "nxdomain.example.com", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := v.IsSafe(ctx, "http://"+tc.host+"/", tc.host)
			if got != tc.want {
				t.Errorf("IsSafe(%q) = %v, want %v", tc.host, got, tc.want)
			}
		})
	}
}

// TestValidatorLiteralIPs verifies that literal IP hosts bypass DNS but are
// still classified.
func TestValidatorLiteralIPs(t *testing.T) {
	t.Parallel()

	// A resolver that always errors proves DNS is never consulted.
	v := NewValidator(&fakeResolver{err: errors.New("resolver must not be called")}, discardLogger())
	ctx := context.Background()

	cases := []struct {
		name string
		host string
		want bool
	}{
		{"public literal allowed", "93.184.216.34", true},
		{"metadata endpoint rejected", "169.254.169.254", false},
		{"loopback literal rejected", "127.0.0.1", false},
		{"private literal rejected", "172.16.0.1", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := v.IsSafe(ctx, "http://"+tc.host+"/", tc.host)
			if got != tc.want {
				t.Errorf("IsSafe(%q) = %v, want %v", tc.host, got, tc.want)
			}
		})
	}
}

// TestValidatorFailsClosed verifies a resolver error rejects the URL.
func TestValidatorFailsClosed(t *testing.T) {
	t.Parallel()

	v := NewValidator(&fakeResolver{err: errors.New("dns timeout")}, discardLogger())
	if v.IsSafe(context.Background(), "https://example.com/", "example.com") {
		t.Error("expected rejection when resolution fails")
	}
}

// TestValidatorEmptyHost verifies URLs without a host are rejected.
func TestValidatorEmptyHost(t *testing.T) {
	t.Parallel()

	v := NewValidator(&fakeResolver{}, discardLogger())
	if v.IsSafe(context.Background(), "https:///path", "") {
		t.Error("expected rejection for empty host")
	}
}
