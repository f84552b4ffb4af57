package core

import "context"

type contextKey string

const (
	ctxKeyClientIP  contextKey = "client_ip"
	ctxKeyUserAgent contextKey = "client_ua"
)

// ContextWithClient records who issued the request so service logs can
// name the client.
func ContextWithClient(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyClientIP, ip)
	return context.WithValue(ctx, ctxKeyUserAgent, userAgent)
}

// ClientIPFromContext returns the client address stored by ContextWithClient.
func ClientIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyClientIP).(string); ok {
		return v
	}
	return ""
}

// UserAgentFromContext returns the User-Agent stored by ContextWithClient.
func UserAgentFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserAgent).(string); ok {
		return v
	}
	return ""
}

// clientAttrs returns log attributes for the request's client, if known.
func clientAttrs(ctx context.Context) []any {
	var attrs []any
	if ip := ClientIPFromContext(ctx); ip != "" {
		attrs = append(attrs, "client_ip", ip)
	}
	if ua := UserAgentFromContext(ctx); ua != "" {
		attrs = append(attrs, "user_agent", ua)
	}
	return attrs
}
