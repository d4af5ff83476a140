package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	calcdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/calculation/domain"
	"github.com/JackOfPrompt/policy-pulse-commissions/internal/tenantctx"
)

func (s *Server) Calculate(c *gin.Context) {
	ctx := c.Request.Context()

	if tenantID, ok := tenantctx.TenantIDFromContext(ctx); ok {
		allowed, retryAfter := s.calcLimiter.Allow(ctx, tenantID.String())
		if !allowed {
			if retryAfter > 0 {
				c.Header("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))
			}
			AbortWithError(c, ErrRateLimited)
			return
		}
	}

	var req calcdomain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.InsurerID = strings.TrimSpace(req.InsurerID)
	req.ProductID = strings.TrimSpace(req.ProductID)
	req.LOBID = strings.TrimSpace(req.LOBID)
	req.Channel = strings.TrimSpace(req.Channel)

	resp, err := s.calculationSvc.Calculate(ctx, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
