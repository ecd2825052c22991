package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/renderbase/renderbase/internal/types"
)

// RequestIDMiddleware tags every request with an ID for log correlation
func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx = context.WithValue(ctx, types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)

	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// AccountContextMiddleware resolves the calling account from request headers
// and stores it on the request context. Upstream auth terminates before this
// service; the gateway forwards the verified account ID.
func AccountContextMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	if accountID := c.GetHeader(types.HeaderAccountID); accountID != "" {
		ctx = context.WithValue(ctx, types.CtxAccountID, accountID)
	}
	if userID := c.GetHeader(types.HeaderUserID); userID != "" {
		ctx = context.WithValue(ctx, types.CtxUserID, userID)
	}

	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
