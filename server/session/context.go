package session

import (
	"context"
	"net/http"
)

type sessionKey struct{}

var sessionContextKey = &sessionKey{}

func Set(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

func Get(r *http.Request) Session {
	return r.Context().Value(sessionContextKey).(Session)
}
