package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/JackOfPrompt/policy-pulse-commissions/internal/tenantctx"
)

const (
	headerTenantID    = "X-Tenant-ID"
	headerActorID     = "X-Actor-ID"
	headerActorRole   = "X-Actor-Role"
	headerActorTenant = "X-Actor-Tenant-ID"
)

// TenantContext reads the identity headers asserted by the upstream
// gateway and binds tenant and actor to the request context. Requests
// for a foreign tenant are rejected unless the role crosses tenants.
func (s *Server) TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantRaw := strings.TrimSpace(c.GetHeader(headerTenantID))
		if tenantRaw == "" {
			AbortWithError(c, newValidationError("tenant", "invalid_tenant", "missing X-Tenant-ID header"))
			return
		}
		tenantID, err := snowflake.ParseString(tenantRaw)
		if err != nil || tenantID == 0 {
			AbortWithError(c, newValidationError("tenant", "invalid_tenant", "invalid X-Tenant-ID header"))
			return
		}

		actor := tenantctx.Actor{
			ID:   strings.TrimSpace(c.GetHeader(headerActorID)),
			Role: strings.TrimSpace(c.GetHeader(headerActorRole)),
		}
		if actor.ID == "" {
			actor.ID = "system"
		}

		actorTenant := strings.TrimSpace(c.GetHeader(headerActorTenant))
		if actorTenant != "" && actorTenant != tenantRaw && !s.authzSvc.CrossTenant(actor.Role) {
			AbortWithError(c, ErrForbidden)
			return
		}

		actor.TenantID = tenantID
		ctx := c.Request.Context()
		ctx = tenantctx.WithActor(ctx, actor)
		c.Request = c.Request.WithContext(tenantctx.WithTenantID(ctx, int64(tenantID)))
		c.Next()
	}
}

// RequireAuthz gates a route on one casbin (object, action) pair.
func (s *Server) RequireAuthz(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		tenantID, ok := tenantctx.TenantIDFromContext(ctx)
		if !ok || tenantID == 0 {
			AbortWithError(c, newValidationError("tenant", "invalid_tenant", "invalid X-Tenant-ID header"))
			return
		}
		actor, _ := tenantctx.ActorFromContext(ctx)

		if err := s.authzSvc.Authorize(ctx, actor.ID, actor.Role, tenantID.String(), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}
