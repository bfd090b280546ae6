package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/rentfleet/rentfleet-backend/pkg/auth"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
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

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext rebuilds the authenticated actor seeded by Auth.
// The zero Actor is returned when the context carries no valid identity.
func ActorFromContext(ctx context.Context) auth.Actor {
	userID, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return auth.Actor{}
	}
	return auth.Actor{
		UserID: userID,
		Role:   enums.MemberRole(RoleFromContext(ctx)),
	}
}

// WithActor injects the actor's identity into the context. Used by tests
// that exercise handlers without the full auth middleware.
func WithActor(ctx context.Context, actor auth.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, actor.UserID.String())
	return context.WithValue(ctx, ctxRole, string(actor.Role))
}
