package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/civicdesk/backend/internal/logger"
	"github.com/civicdesk/backend/internal/models"
	"github.com/civicdesk/backend/internal/services"
	"github.com/civicdesk/backend/internal/store"
)

type ComplaintController struct {
	complaints *services.ComplaintService
	identity   *services.IdentityService
	advisory   *services.AdvisoryService
}

func NewComplaintController(complaints *services.ComplaintService, identity *services.IdentityService, advisory *services.AdvisoryService) *ComplaintController {
	return &ComplaintController{
		complaints: complaints,
		identity:   identity,
		advisory:   advisory,
	}
}

type CreateComplaintRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	VoiceNote   string `json:"voiceNote"`
}

type UpdateComplaintRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Image       string `json:"image"`
	VoiceNote   string `json:"voiceNote"`
}

type UpdateStatusRequest struct {
	Status models.ComplaintStatus `json:"status" binding:"required"`
	Note   string                 `json:"note"`
}

type AddLogRequest struct {
	Action string `json:"action" binding:"required"`
	Note   string `json:"note"`
}

func (cc *ComplaintController) actor(c *gin.Context) (models.User, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return models.User{}, false
	}
	user, err := cc.identity.UserByID(c.Request.Context(), userID.(string))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
		} else {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		}
		return models.User{}, false
	}
	return user, true
}

// CreateComplaint files a complaint for the authenticated citizen. When no
// category is given the advisory service picks one; its failure modes all
// collapse to "General", so filing never blocks on it.
func (cc *ComplaintController) CreateComplaint(c *gin.Context) {
	var req CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creator, ok := cc.actor(c)
	if !ok {
		return
	}

	category := req.Category
	if category == "" {
		category = cc.advisory.SuggestCategory(c.Request.Context(), req.Description)
	}

	cp, err := cc.complaints.Create(c.Request.Context(), services.CreateComplaintInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		Image:       req.Image,
		VoiceNote:   req.VoiceNote,
	}, creator)
	if err != nil {
		logger.WithError(err, "complaint_controller").Error("Complaint creation failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Complaint not saved"})
		return
	}

	c.JSON(http.StatusCreated, cp)
}

// GetComplaints lists complaints scoped by the caller's role: citizens see
// their own, employees see their routed queue, admins see everything.
func (cc *ComplaintController) GetComplaints(c *gin.Context) {
	user, ok := cc.actor(c)
	if !ok {
		return
	}

	var (
		complaints []models.Complaint
		err        error
	)
	switch user.Role {
	case models.RoleEmployee:
		complaints, err = cc.complaints.ListForEmployee(c.Request.Context(), user.ID, user.Department)
	case models.RoleAdmin:
		complaints, err = cc.complaints.ListAll(c.Request.Context())
	default:
		complaints, err = cc.complaints.ListForUser(c.Request.Context(), user.ID)
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}

	c.JSON(http.StatusOK, complaints)
}

func (cc *ComplaintController) GetComplaint(c *gin.Context) {
	cp, err := cc.complaints.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, cp)
}

// UpdateComplaint is the citizen edit path: a full overwrite of the
// editable fields. Status, assignment and logs are untouched here.
func (cc *ComplaintController) UpdateComplaint(c *gin.Context) {
	var req UpdateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := cc.actor(c)
	if !ok {
		return
	}

	cp, err := cc.complaints.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}

	if user.Role == models.RoleCitizen && cp.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your complaint"})
		return
	}

	cp.Title = req.Title
	cp.Description = req.Description
	cp.Category = req.Category
	cp.Image = req.Image
	cp.VoiceNote = req.VoiceNote
	cp.UpdatedAt = time.Now().UTC()

	if err := cc.complaints.Save(c.Request.Context(), cp); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Complaint not saved"})
		return
	}

	c.JSON(http.StatusOK, cp)
}

// UpdateStatus moves a complaint to a new status. Employee actors claim the
// complaint as a side effect.
func (cc *ComplaintController) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
		return
	}

	actor, ok := cc.actor(c)
	if !ok {
		return
	}

	cp, err := cc.complaints.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, actor, req.Note)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Complaint not saved"})
		return
	}

	c.JSON(http.StatusOK, cp)
}

func (cc *ComplaintController) AddLog(c *gin.Context) {
	var req AddLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, ok := cc.actor(c)
	if !ok {
		return
	}

	cp, err := cc.complaints.AppendLog(c.Request.Context(), c.Param("id"), req.Action, actor.Name, req.Note)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Complaint not saved"})
		return
	}

	c.JSON(http.StatusOK, cp)
}

func (cc *ComplaintController) DeleteComplaint(c *gin.Context) {
	if err := cc.complaints.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetStats aggregates counts over the caller's complaint scope.
func (cc *ComplaintController) GetStats(c *gin.Context) {
	user, ok := cc.actor(c)
	if !ok {
		return
	}

	var (
		complaints []models.Complaint
		err        error
	)
	switch user.Role {
	case models.RoleEmployee:
		complaints, err = cc.complaints.ListForEmployee(c.Request.Context(), user.ID, user.Department)
	case models.RoleAdmin:
		complaints, err = cc.complaints.ListAll(c.Request.Context())
	default:
		complaints, err = cc.complaints.ListForUser(c.Request.Context(), user.ID)
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}

	c.JSON(http.StatusOK, services.Stats(complaints))
}
