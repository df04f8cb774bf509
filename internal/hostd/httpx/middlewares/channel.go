package middlewares

import (
	"context"
	"net/http"
)

// HeaderRequestChannel carries the front-door channel of the host request:
// "rest" for REST API traffic, anything else is treated as storefront.
const HeaderRequestChannel = "X-Request-Channel"

type contextKey string

// ContextKeyChannel is the context key the channel is stored under.
const ContextKeyChannel contextKey = "request_channel"

// AttachChannel copies the request's channel header into the context so
// handlers can pass it to the core as an explicit flag instead of sniffing
// the environment.
func AttachChannel(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		channel := r.Header.Get(HeaderRequestChannel)
		if channel == "" {
			channel = "storefront"
		}
		ctx := context.WithValue(r.Context(), ContextKeyChannel, channel)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ChannelFromContext returns the channel attached by AttachChannel, or
// "storefront" when absent.
func ChannelFromContext(ctx context.Context) string {
	if ch, ok := ctx.Value(ContextKeyChannel).(string); ok && ch != "" {
		return ch
	}
	return "storefront"
}
