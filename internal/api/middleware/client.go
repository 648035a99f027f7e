package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

// ClientIDKey is the context key for the requesting client's id.
const ClientIDKey contextKey = "client_id"

// ClientExtractor pulls the owning client id from the request: the
// X-Client-Id header first, then the client query parameter. An empty value
// means "all clients" for list endpoints.
func ClientExtractor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := strings.TrimSpace(r.Header.Get("X-Client-Id"))
		if clientID == "" {
			clientID = strings.TrimSpace(r.URL.Query().Get("client"))
		}

		ctx := context.WithValue(r.Context(), ClientIDKey, clientID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClientID retrieves the client id from the request context; empty when
// the request did not scope itself to a client.
func GetClientID(ctx context.Context) string {
	if v, ok := ctx.Value(ClientIDKey).(string); ok {
		return v
	}
	return ""
}
