// Package lookup resolves printers to addresses and addresses to printers
// on top of a spooler.Directory.
package lookup

import (
	"context"
	"errors"
	"net"
	"strings"
)

// UnresolvedPrefix starts every address placeholder
const UnresolvedPrefix = "Unable to determine IP address"

// AddressResolver looks up the addresses of a host name.
// This interface allows for mocking DNS resolution in tests.
type AddressResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// systemResolver wraps the standard library's net.Resolver.
type systemResolver struct {
	resolver *net.Resolver
}

// NewSystemResolver returns a resolver that uses the host's DNS
// configuration and hosts file.
func NewSystemResolver() AddressResolver {
	return &systemResolver{resolver: net.DefaultResolver}
}

func (r *systemResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []string{ip.String()}, nil
	}
	return r.resolver.LookupHost(ctx, host)
}

var errNoAddresses = errors.New("no addresses found")

// ResolveAddress resolves a port identifier as a host name. It never fails:
// an unresolvable port yields a placeholder that embeds the cause. IPv4
// addresses are preferred over IPv6.
func ResolveAddress(ctx context.Context, r AddressResolver, port string) string {
	addrs, err := r.LookupHost(ctx, strings.TrimSpace(port))
	if err == nil && len(addrs) == 0 {
		err = errNoAddresses
	}
	if err != nil {
		return UnresolvedPrefix + ": " + err.Error()
	}

	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
			return a
		}
	}
	return addrs[0]
}

// IsResolved reports whether an address returned by ResolveAddress is a
// real address rather than a placeholder
func IsResolved(address string) bool {
	return !strings.HasPrefix(address, UnresolvedPrefix)
}

// sameAddress compares two addresses, treating equal IPs in different
// notations as the same
func sameAddress(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == b {
		return true
	}
	ipA, ipB := net.ParseIP(a), net.ParseIP(b)
	return ipA != nil && ipB != nil && ipA.Equal(ipB)
}
