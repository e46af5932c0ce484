package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	profiledomain "github.com/nairabooks/taxcore/internal/taxprofile/domain"
	profileservice "github.com/nairabooks/taxcore/internal/taxprofile/service"
)

type classifyRequest struct {
	TurnoverKobo    int64 `json:"turnover_kobo"`
	FixedAssetsKobo int64 `json:"fixed_assets_kobo"`
}

// ClassifyBusiness applies the current thresholds without persisting anything.
func (s *Server) ClassifyBusiness(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	policy := s.policy.Get()
	classification, err := profileservice.Classify(req.TurnoverKobo, req.FixedAssetsKobo, profiledomain.Thresholds{
		Turnover:    policy.SmallBusinessTurnoverThreshold,
		FixedAssets: policy.SmallBusinessAssetThreshold,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": classification})
}

func (s *Server) RecordTaxProfile(c *gin.Context) {
	var req profiledomain.SnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	resp, err := s.profileSvc.RecordSnapshot(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) CurrentTaxProfile(c *gin.Context) {
	resp, err := s.profileSvc.Current(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTaxProfiles(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, err := s.profileSvc.History(c.Request.Context(), profiledomain.HistoryRequest{Limit: limit})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
