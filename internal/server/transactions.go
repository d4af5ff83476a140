package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	ledgerdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/ledger/domain"
)

func (s *Server) ListTransactions(c *gin.Context) {
	var req ledgerdomain.ListRequest

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		ts, err := parseTimestamp(raw)
		if err != nil {
			AbortWithError(c, newValidationError("from", "invalid_period", "invalid timestamp"))
			return
		}
		req.From = ts
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		ts, err := parseTimestamp(raw)
		if err != nil {
			AbortWithError(c, newValidationError("to", "invalid_period", "invalid timestamp"))
			return
		}
		req.To = ts
	}
	if raw := strings.TrimSpace(c.Query("lob_id")); raw != "" {
		lobID, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("lob_id", "invalid_lob_id", "invalid value"))
			return
		}
		req.LOBID = &lobID
	}
	req.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))

	resp, err := s.ledgerSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
