package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	auditdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/audit/domain"
)

func (s *Server) ListAuditLogs(c *gin.Context) {
	req := auditdomain.ListRequest{}

	if raw := strings.TrimSpace(c.Query("rule_id")); raw != "" {
		ruleID, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("rule_id", "invalid_rule", "invalid rule id"))
			return
		}
		req.RuleID = &ruleID
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			AbortWithError(c, newValidationError("limit", "invalid_request", "invalid limit"))
			return
		}
		req.Limit = limit
	}

	resp, err := s.auditSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
