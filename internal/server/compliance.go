package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ComplianceAlerts(c *gin.Context) {
	resp, err := s.complianceSvc.Alerts(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
