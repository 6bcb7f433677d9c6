package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

// RequestData is the authenticated identity attached by the auth middleware.
// Tenant scoping for vector search is always derived from this, never from
// request-body fields.
type RequestData struct {
	UserID      uuid.UUID
	Email       string
	TokenString string
	IsDemo      bool
}

type requestDataKey struct{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	rd, _ := ctx.Value(requestDataKey{}).(*RequestData)
	return rd
}

func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
