package rpc

import (
	"context"
	"fmt"
	"net/url"
)

// ClientName is sent as the User-Agent of every request.
const ClientName = "VergeClient-Go/0.1.0"

// Transport carries one request envelope to the daemon and returns the raw
// response body. For notifications the body may be nil.
//
// Implementations return *ConnectionError when the daemon cannot be reached
// and *ResponseError when it rejects the exchange at the transport level.
type Transport interface {
	RoundTrip(ctx context.Context, req *Request) ([]byte, error)
}

// parseEndpoint checks the scheme and splits credentials off the URL.
func parseEndpoint(endpoint string, schemes ...string) (*url.URL, *url.Userinfo, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if u.Host == "" {
		return nil, nil, fmt.Errorf("%w: missing host in %q", ErrInvalidEndpoint, u.Redacted())
	}

	supported := false
	for _, s := range schemes {
		if u.Scheme == s {
			supported = true
			break
		}
	}
	if !supported {
		return nil, nil, fmt.Errorf("%w: scheme %q is not one of %v", ErrInvalidEndpoint, u.Scheme, schemes)
	}

	user := u.User
	u.User = nil
	if u.Path == "" {
		u.Path = "/"
	}
	return u, user, nil
}

// redact renders u with user's password masked.
func redact(u *url.URL, user *url.Userinfo) string {
	c := *u
	c.User = user
	return c.Redacted()
}
