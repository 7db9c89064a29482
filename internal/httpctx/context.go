package httpctx

import (
	"context"

	"schoolhub/backend/internal/models"
	"schoolhub/backend/internal/session"
)

type ctxKey string

const (
	userKey    ctxKey = "user"
	sessionKey ctxKey = "session"
)

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func WithSession(ctx context.Context, sess session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

func UserFromContext(ctx context.Context) *models.User {
	if val := ctx.Value(userKey); val != nil {
		if user, ok := val.(*models.User); ok {
			return user
		}
	}
	return nil
}

func SessionFromContext(ctx context.Context) *session.Session {
	if val := ctx.Value(sessionKey); val != nil {
		if sess, ok := val.(session.Session); ok {
			return &sess
		}
	}
	return nil
}
