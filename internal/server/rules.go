package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	ruledomain "github.com/JackOfPrompt/policy-pulse-commissions/internal/rule/domain"
)

func (s *Server) ListRules(c *gin.Context) {
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	req := ruledomain.ListRequest{
		InsurerID: strings.TrimSpace(c.Query("insurer_id")),
		ProductID: strings.TrimSpace(c.Query("product_id")),
		LOBID:     strings.TrimSpace(c.Query("lob_id")),
		RuleType:  ruledomain.RuleType(strings.TrimSpace(c.Query("rule_type"))),
		Status:    ruledomain.Status(strings.TrimSpace(c.Query("status"))),
		PageToken: strings.TrimSpace(c.Query("page_token")),
		PageSize:  pageSize,
	}

	resp, err := s.ruleSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRule(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.ruleSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateRule(c *gin.Context) {
	var req ruledomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.InsurerID = strings.TrimSpace(req.InsurerID)
	req.ProductID = strings.TrimSpace(req.ProductID)
	req.LOBID = strings.TrimSpace(req.LOBID)
	req.Channel = strings.TrimSpace(req.Channel)

	resp, err := s.ruleSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateRule(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req ruledomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ruleSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivateRule(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	resp, err := s.ruleSvc.Deactivate(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteRule(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	if err := s.ruleSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) AddRuleBonus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	bonusType := ruledomain.BonusType(strings.TrimSpace(c.Param("bonus_type")))

	var req ruledomain.BonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ruleSvc.AddBonus(c.Request.Context(), id, bonusType, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func isRuleValidationError(err error) bool {
	switch err {
	case ruledomain.ErrInvalidID,
		ruledomain.ErrInvalidTenant,
		ruledomain.ErrInvalidInsurer,
		ruledomain.ErrInvalidProduct,
		ruledomain.ErrInvalidLOB,
		ruledomain.ErrInvalidRuleType,
		ruledomain.ErrInvalidStatus,
		ruledomain.ErrInvalidBaseRate,
		ruledomain.ErrInvalidPolicyYear,
		ruledomain.ErrInvalidValidity,
		ruledomain.ErrMissingSlabs,
		ruledomain.ErrInvalidSlab,
		ruledomain.ErrOverlappingSlabs,
		ruledomain.ErrMissingFlatAmount,
		ruledomain.ErrInvalidBonusType,
		ruledomain.ErrInvalidBonusPayload,
		ruledomain.ErrRuleInactive,
		ruledomain.ErrInvalidPageToken:
		return true
	default:
		return false
	}
}
