// Package orgcontext carries the tenant scope through request contexts.
package orgcontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type orgIDKey struct{}

// WithOrgID returns a context scoped to the given organization.
func WithOrgID(ctx context.Context, orgID snowflake.ID) context.Context {
	return context.WithValue(ctx, orgIDKey{}, orgID)
}

// OrgIDFromContext extracts the organization scope, if any.
func OrgIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(orgIDKey{}).(snowflake.ID)
	return id, ok
}
