package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const callerIDKey contextKey = "callerID"

// WithCallerID attaches the authenticated subject id to the request context.
func WithCallerID(r *http.Request, callerID string) *http.Request {
	ctx := context.WithValue(r.Context(), callerIDKey, callerID)
	return r.WithContext(ctx)
}

// CallerID returns the authenticated subject id, or "" for an anonymous
// request. Anonymous requests are legal: the public document read and
// public-edit paths decide authorization per document.
func CallerID(r *http.Request) string {
	callerID, _ := r.Context().Value(callerIDKey).(string)
	return callerID
}
