// Package safety guards the crawler against server-side request forgery.
//
// Every URL is validated immediately before it is fetched, not only at crawl
// start: redirects and discovered links may point at hosts the seed never
// mentioned. A URL is fetchable only when its hostname resolves and every
// resolved address is a public unicast address. Resolution failure fails
// closed.
package safety

import (
	"context"
	"log/slog"
	"net"
)

// Resolver resolves hostnames to IP addresses. net.DefaultResolver satisfies
// it; tests inject a fake to avoid real DNS.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Validator decides whether a URL is safe to fetch.
type Validator struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewValidator creates a Validator using the given resolver. A nil resolver
// falls back to net.DefaultResolver, and a nil logger to slog.Default().
func NewValidator(resolver Resolver, logger *slog.Logger) *Validator {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{resolver: resolver, logger: logger}
}

// IsSafe reports whether the host may be fetched. The hostname is resolved
// via DNS; if resolution fails the URL is rejected. Private, loopback,
// link-local, multicast, unspecified, and otherwise non-public addresses are
// all rejected, and each rejection is logged with the offending address.
//
// All resolved addresses must be acceptable: a hostname with one public and
// one private address is an SSRF vector (DNS rebinding), so it is rejected.
func (v *Validator) IsSafe(ctx context.Context, rawURL, host string) bool {
	if host == "" {
		v.logger.Warn("rejecting URL with empty host", "url", rawURL)
		return false
	}

	// Literal IPs skip DNS entirely.
	if ip := net.ParseIP(host); ip != nil {
		if !isPublicUnicast(ip) {
			v.logger.Warn("rejecting unsafe fetch target",
				"url", rawURL,
				"address", ip.String(),
			)
			return false
		}
		return true
	}

	addrs, err := v.resolver.LookupIPAddr(ctx, host)
	if err != nil || len(addrs) == 0 {
		// Fail closed: an unresolvable host is not fetchable.
		v.logger.Warn("rejecting unresolvable host",
			"url", rawURL,
			"host", host,
			"error", err,
		)
		return false
	}

	for _, addr := range addrs {
		if !isPublicUnicast(addr.IP) {
			v.logger.Warn("rejecting unsafe fetch target",
				"url", rawURL,
				"host", host,
				"address", addr.IP.String(),
			)
			return false
		}
	}

	return true
}

// isPublicUnicast reports whether ip is a plain public unicast address.
func isPublicUnicast(ip net.IP) bool {
	switch {
	case ip.IsUnspecified(),
		ip.IsLoopback(),
		ip.IsPrivate(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsMulticast(),
		ip.IsInterfaceLocalMulticast():
		return false
	}
	return ip.IsGlobalUnicast()
}
