package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	vatdomain "github.com/nairabooks/taxcore/internal/vat/domain"
)

func (s *Server) ComputeVatLine(c *gin.Context) {
	var req vatdomain.ComputeLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	resp, err := s.vatSvc.ComputeLine(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type generateReturnRequest struct {
	// Period as "2006-01"; any date inside the month also works.
	Period string `json:"period" binding:"required"`
}

func (s *Server) GenerateVatReturn(c *gin.Context) {
	var req generateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("period", "invalid_period", "invalid period"))
		return
	}

	periodStart, err := parsePeriod(req.Period)
	if err != nil {
		AbortWithError(c, newValidationError("period", "invalid_period", "invalid period"))
		return
	}

	resp, err := s.vatSvc.GenerateReturn(c.Request.Context(), vatdomain.GenerateReturnRequest{
		PeriodStart: periodStart,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListVatReturns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, err := s.vatSvc.List(c.Request.Context(), vatdomain.ListReturnsRequest{
		Limit: limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetVatReturn(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := s.vatSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RegenerateVatReturn(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := s.vatSvc.RegenerateReturn(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SubmitVatReturn(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := s.vatSvc.SubmitReturn(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// parsePeriod accepts "2006-01" or a full RFC 3339 date.
func parsePeriod(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id := strings.TrimSpace(c.Param("id"))
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return 0, false
	}
	return int64(parsed), true
}
