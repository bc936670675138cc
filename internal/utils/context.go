package utils

import (
	"context"
)

type contextKey string

const ContextUserIDKey contextKey = "userID"
const ContextSessionIDKey contextKey = "sessionID"

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID := ctx.Value(ContextUserIDKey)
	userIDStr, ok := userID.(string)
	return userIDStr, ok
}

func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID := ctx.Value(ContextSessionIDKey)
	sessionIDStr, ok := sessionID.(string)
	return sessionIDStr, ok
}
