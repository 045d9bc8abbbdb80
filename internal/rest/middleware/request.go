package middleware

import (
	"context"

	"github.com/billforge/billforge/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDMiddleware tags every request with an id, generating one when the
// caller did not send any.
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

// TenantContextMiddleware resolves the tenant scope from request headers.
// Every downstream read and write is keyed off these context values.
func TenantContextMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID := c.GetHeader(types.HeaderTenantID)
	if tenantID == "" {
		tenantID = types.DefaultTenantID
	}
	userID := c.GetHeader(types.HeaderUserID)
	if userID == "" {
		userID = types.DefaultUserID
	}

	ctx = types.SetTenantID(ctx, tenantID)
	ctx = types.SetUserID(ctx, userID)
	if workspaceID := c.GetHeader(types.HeaderWorkspaceID); workspaceID != "" {
		ctx = types.SetWorkspaceID(ctx, workspaceID)
	}

	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
