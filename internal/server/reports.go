package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	reportdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/report/domain"
)

func (s *Server) CommissionReport(c *gin.Context) {
	period, err := parsePeriod(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.reportSvc.CommissionReport(c.Request.Context(), period)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// parsePeriod reads optional from/to query params (RFC 3339 or date-only).
// Both absent means the service defaults to the current quarter.
func parsePeriod(c *gin.Context) (*reportdomain.Period, error) {
	fromRaw := strings.TrimSpace(c.Query("from"))
	toRaw := strings.TrimSpace(c.Query("to"))
	if fromRaw == "" && toRaw == "" {
		return nil, nil
	}
	if fromRaw == "" || toRaw == "" {
		return nil, newValidationError("period", "invalid_period", "from and to must be provided together")
	}

	from, err := parseTimestamp(fromRaw)
	if err != nil {
		return nil, newValidationError("from", "invalid_period", "invalid timestamp")
	}
	to, err := parseTimestamp(toRaw)
	if err != nil {
		return nil, newValidationError("to", "invalid_period", "invalid timestamp")
	}
	return &reportdomain.Period{From: from, To: to}, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", raw)
}
