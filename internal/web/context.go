package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/minuta/internal/core"
)

// WithRequestMetadata attaches the client IP and User-Agent to ctx so the
// generation log lines identify the operator's machine. r.RemoteAddr has
// already been resolved by middleware.TrustedRealIP.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return core.ContextWithClient(ctx, ip, r.UserAgent())
}
