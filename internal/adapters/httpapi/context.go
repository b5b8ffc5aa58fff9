package httpapi

import (
	"context"

	"github.com/newmeca/membership-api/internal/domain"
)

type profileKey struct{}

func WithProfile(ctx context.Context, id domain.ProfileID) context.Context {
	return context.WithValue(ctx, profileKey{}, id)
}

func ProfileFromContext(ctx context.Context) (domain.ProfileID, bool) {
	v, ok := ctx.Value(profileKey{}).(domain.ProfileID)
	return v, ok && v != ""
}
