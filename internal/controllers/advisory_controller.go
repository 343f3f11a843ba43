package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civicdesk/backend/internal/services"
)

type AdvisoryController struct {
	advisory   *services.AdvisoryService
	complaints *services.ComplaintService
}

func NewAdvisoryController(advisory *services.AdvisoryService, complaints *services.ComplaintService) *AdvisoryController {
	return &AdvisoryController{advisory: advisory, complaints: complaints}
}

type SuggestCategoryRequest struct {
	Description string `json:"description" binding:"required"`
}

// SuggestCategory returns a best-effort category for a draft complaint.
// Always answers 200; failures degrade to the default category.
func (ad *AdvisoryController) SuggestCategory(c *gin.Context) {
	var req SuggestCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := ad.advisory.SuggestCategory(c.Request.Context(), req.Description)
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// AdminReport produces the executive briefing over all complaints. The
// briefing itself is best-effort; only the store read can fail.
func (ad *AdvisoryController) AdminReport(c *gin.Context) {
	complaints, err := ad.complaints.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}

	report := ad.advisory.AdminBriefing(c.Request.Context(), complaints)
	c.JSON(http.StatusOK, gin.H{"report": report})
}
