package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListInsurers(c *gin.Context) {
	resp, err := s.refRepo.ListInsurers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListLinesOfBusiness(c *gin.Context) {
	resp, err := s.refRepo.ListLinesOfBusiness(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	insurerID := strings.TrimSpace(c.Query("insurer_id"))
	resp, err := s.refRepo.ListProductsByInsurer(c.Request.Context(), insurerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
