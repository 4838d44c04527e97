package goGate

import "context"

type clientIDContextKey struct{}
type userAgentContextKey struct{}

// WithClientID attaches the caller's network identifier to ctx. The engine
// records it on audit events and on sessions registered from ctx.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDContextKey{}, clientID)
}

// WithUserAgent attaches the HTTP User-Agent to ctx. It is stored as session
// metadata by [Engine.RegisterSession].
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

// ClientIDFromContext returns the identifier set by [WithClientID], or "".
func ClientIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(clientIDContextKey{}).(string)
	return id
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ua, _ := ctx.Value(userAgentContextKey{}).(string)
	return ua
}

// metadataFromContext fills the empty fields of md from ctx.
func metadataFromContext(ctx context.Context, md SessionMetadata) SessionMetadata {
	if md.RemoteAddr == "" {
		md.RemoteAddr = ClientIDFromContext(ctx)
	}
	if md.UserAgent == "" {
		md.UserAgent = userAgentFromContext(ctx)
	}
	return md
}
