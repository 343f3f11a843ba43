package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civicdesk/backend/internal/logger"
	"github.com/civicdesk/backend/internal/models"
	"github.com/civicdesk/backend/internal/services"
	"github.com/civicdesk/backend/internal/store"
)

type UserController struct {
	identity *services.IdentityService
}

func NewUserController(identity *services.IdentityService) *UserController {
	return &UserController{identity: identity}
}

type UpdateProfileRequest struct {
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	DOB     string `json:"dob"`
	Mobile  string `json:"mobile"`
	Aadhaar string `json:"aadhaar"`
	Address string `json:"address"`
	Gender  string `json:"gender"`
}

func (uc *UserController) GetCurrentUser(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	user, err := uc.identity.UserByID(c.Request.Context(), userID.(string))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}

	c.JSON(http.StatusOK, user.Sanitized())
}

// UpdateCurrentUser overwrites the caller's mutable profile fields. Email
// and role never change here.
func (uc *UserController) UpdateCurrentUser(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := uc.identity.UserByID(c.Request.Context(), userID.(string))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	user.DOB = req.DOB
	user.Mobile = req.Mobile
	user.Aadhaar = req.Aadhaar
	user.Address = req.Address
	user.Gender = req.Gender

	if err := uc.identity.SaveUser(c.Request.Context(), user); err != nil {
		logger.WithError(err, "user_controller").Error("Profile save failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Profile not saved"})
		return
	}

	c.JSON(http.StatusOK, user.Sanitized())
}

func (uc *UserController) GetUsers(c *gin.Context) {
	users, err := uc.identity.Users(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}
	for i := range users {
		users[i].Password = ""
	}
	c.JSON(http.StatusOK, users)
}

func (uc *UserController) GetEmployees(c *gin.Context) {
	employees, err := uc.identity.Employees(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}
	for i := range employees {
		employees[i].Password = ""
	}
	c.JSON(http.StatusOK, employees)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	id := c.Param("id")

	actorRole, _ := c.Get("userRole")
	if actorRole != string(models.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	if err := uc.identity.DeleteUser(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
