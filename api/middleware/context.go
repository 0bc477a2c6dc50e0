package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/harborlane/importdesk-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext returns the authenticated user id and role. The id is
// uuid.Nil when the request is unauthenticated or the claim is malformed.
func ActorFromContext(ctx context.Context) (uuid.UUID, enums.UserRole) {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		id = uuid.Nil
	}
	return id, enums.UserRole(RoleFromContext(ctx))
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}
