package testutil

import (
	"context"

	"github.com/renderbase/renderbase/internal/types"
)

// SetupContext creates a context with default test values
func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxUserID, types.DefaultUserID)
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	return ctx
}

// SetupContextWithAccount creates a test context scoped to an account
func SetupContextWithAccount(accountID string) context.Context {
	return context.WithValue(SetupContext(), types.CtxAccountID, accountID)
}
