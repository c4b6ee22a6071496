// Package host resolves the identity of the process acquiring the lock, which
// is recorded in the lock row so that operators can tell who holds it.
//
// The resolution strategy is chosen once at startup with NewResolver, and the
// result is usually resolved once per process with Cached.
package host

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"

	"go4.org/netipx"
)

// Identity is the host identity of a lock holder.
type Identity struct {
	Hostname string
	Address  string
}

// String returns the identity in the format stored in the lock row, e.g.
// "worker-1 (10.0.0.5)".
func (id Identity) String() string {
	return fmt.Sprintf("%s (%s)", id.Hostname, id.Address)
}

// Resolver resolves the identity of the current host.
type Resolver interface {
	Resolve(ctx context.Context) (Identity, error)
}

// EnvironmentError is returned when the host identity can't be determined. It
// is not recoverable, since a lock held by an unknown host can't be diagnosed.
type EnvironmentError struct {
	Msg string
	Err error
}

func (e EnvironmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected environment: %s: %s", e.Msg, e.Err)
	}
	return fmt.Sprintf("unexpected environment: %s", e.Msg)
}

// Unwrap returns the underlying error for error unwrapping.
func (e EnvironmentError) Unwrap() error {
	return e.Err
}

// Runtimes in which resolving the local host over the network is restricted or
// unreliable.
var constrainedRuntimes = []string{"android", "ios", "android runtime"}

// DefaultRuntimeName returns the name of the runtime this binary was built for.
func DefaultRuntimeName() string {
	return runtime.GOOS
}

// IsConstrained reports whether runtimeName identifies a constrained runtime.
func IsConstrained(runtimeName string) bool {
	return slices.Contains(constrainedRuntimes, strings.ToLower(strings.TrimSpace(runtimeName)))
}

// NewResolver returns a FixedLocalResolver for constrained runtimes, and a
// NetworkResolver otherwise.
func NewResolver(runtimeName string) Resolver {
	if IsConstrained(runtimeName) {
		return FixedLocalResolver{}
	}
	return NewNetworkResolver()
}

// FixedLocalResolver returns the loopback identity without any network I/O.
type FixedLocalResolver struct{}

var _ Resolver = FixedLocalResolver{}

// Resolve implements the Resolver interface.
func (FixedLocalResolver) Resolve(context.Context) (Identity, error) {
	return Identity{Hostname: "localhost", Address: "127.0.0.1"}, nil
}

// NetworkResolver resolves the host name of the system and one of its network
// addresses.
type NetworkResolver struct {
	Hostname       func() (string, error)
	LookupIP       func(ctx context.Context, host string) ([]net.IP, error)
	InterfaceAddrs func() ([]net.Addr, error)
}

var _ Resolver = (*NetworkResolver)(nil)

// NewNetworkResolver returns a NetworkResolver backed by the operating system.
func NewNetworkResolver() *NetworkResolver {
	return &NetworkResolver{
		Hostname: os.Hostname,
		LookupIP: func(ctx context.Context, host string) ([]net.IP, error) {
			return net.DefaultResolver.LookupIP(ctx, "ip", host)
		},
		InterfaceAddrs: net.InterfaceAddrs,
	}
}

// Resolve implements the Resolver interface. The host address is looked up by
// host name first, falling back to the addresses of the network interfaces.
func (r *NetworkResolver) Resolve(ctx context.Context) (Identity, error) {
	hostname, err := r.Hostname()
	if err != nil {
		return Identity{}, EnvironmentError{Msg: "failed reading host name", Err: err}
	}
	if hostname == "" {
		return Identity{}, EnvironmentError{Msg: "empty host name"}
	}

	var addrs []netip.Addr
	ips, lookupErr := r.LookupIP(ctx, hostname)
	for _, ip := range ips {
		if addr, ok := netipx.FromStdIP(ip); ok {
			addrs = append(addrs, addr)
		}
	}

	if !hasNonLoopback(addrs) {
		ifAddrs, ifErr := r.InterfaceAddrs()
		if ifErr != nil && len(addrs) == 0 {
			return Identity{}, EnvironmentError{
				Msg: fmt.Sprintf("failed resolving address of host '%s'", hostname),
				Err: errors.Join(lookupErr, ifErr),
			}
		}
		for _, ifAddr := range ifAddrs {
			if addr, ok := parseNetAddr(ifAddr); ok {
				addrs = append(addrs, addr)
			}
		}
	}

	addr, ok := pickAddr(addrs)
	if !ok {
		return Identity{}, EnvironmentError{
			Msg: fmt.Sprintf("no network address found for host '%s'", hostname),
			Err: lookupErr,
		}
	}

	return Identity{Hostname: hostname, Address: addr.String()}, nil
}

func parseNetAddr(a net.Addr) (netip.Addr, bool) {
	switch v := a.(type) {
	case *net.IPNet:
		return netipx.FromStdIP(v.IP)
	case *net.IPAddr:
		return netipx.FromStdIP(v.IP)
	}
	if prefix, err := netip.ParsePrefix(a.String()); err == nil {
		return prefix.Addr().Unmap(), true
	}
	addr, err := netip.ParseAddr(a.String())
	return addr.Unmap(), err == nil
}

func hasNonLoopback(addrs []netip.Addr) bool {
	for _, a := range addrs {
		if !a.IsLoopback() {
			return true
		}
	}
	return false
}

// pickAddr prefers non-loopback IPv4 addresses, then any non-loopback address,
// then link-local and finally loopback addresses.
func pickAddr(addrs []netip.Addr) (netip.Addr, bool) {
	rank := func(a netip.Addr) int {
		switch {
		case a.IsLoopback():
			return 4
		case a.IsLinkLocalUnicast():
			return 3
		case a.Is4():
			return 1
		default:
			return 2
		}
	}

	var (
		best  netip.Addr
		bestR = 5
	)
	for _, a := range addrs {
		if !a.IsValid() || a.IsUnspecified() {
			continue
		}
		if r := rank(a); r < bestR {
			best, bestR = a, r
		}
	}

	return best, best.IsValid()
}

// CachedResolver resolves the identity once, and returns the same result for
// every subsequent call. Context errors aren't cached, so a later call with a
// live context resolves the identity again.
type CachedResolver struct {
	r    Resolver
	mx   sync.Mutex
	done bool
	id   Identity
	err  error
}

var _ Resolver = (*CachedResolver)(nil)

// Cached wraps r so that it's only resolved once.
func Cached(r Resolver) *CachedResolver {
	return &CachedResolver{r: r}
}

// Resolve implements the Resolver interface.
func (c *CachedResolver) Resolve(ctx context.Context) (Identity, error) {
	c.mx.Lock()
	defer c.mx.Unlock()

	if c.done {
		return c.id, c.err
	}

	id, err := c.r.Resolve(ctx)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return Identity{}, err
	}
	c.id, c.err, c.done = id, err, true

	return id, err
}
