package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	capdomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/irdaicap/domain"
)

func (s *Server) ListCaps(c *gin.Context) {
	req := capdomain.ListRequest{
		LOBID:   strings.TrimSpace(c.Query("lob_id")),
		Channel: strings.TrimSpace(c.Query("channel")),
	}

	resp, err := s.capSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
