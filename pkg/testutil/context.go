package testutil

import (
	"net/http"
	"time"

	"caregate/pkg/requestcontext"
)

// WithActor sets the acting admin on the request context, as the admin
// middleware does after validating a token.
func WithActor(req *http.Request, actorID string) *http.Request {
	return req.WithContext(requestcontext.WithActorID(req.Context(), actorID))
}

// AtTime pins the request clock so handlers read a fixed now.
func AtTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
