package routes

import (
	"os"

	"github.com/gin-gonic/gin"

	"github.com/civicdesk/backend/internal/controllers"
	"github.com/civicdesk/backend/internal/middleware"
	"github.com/civicdesk/backend/internal/models"
	"github.com/civicdesk/backend/internal/services"
	"github.com/civicdesk/backend/internal/store"
)

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, st store.RecordStore) {
	// Initialize services
	advisoryService := services.NewAdvisoryService(
		os.Getenv("OLLAMA_URL"),
		os.Getenv("OLLAMA_MODEL"),
	)
	identityService := services.NewIdentityService(st)
	complaintService := services.NewComplaintService(st)

	// Initialize controllers
	authController := controllers.NewAuthController(identityService)
	userController := controllers.NewUserController(identityService)
	complaintController := controllers.NewComplaintController(complaintService, identityService, advisoryService)
	advisoryController := controllers.NewAdvisoryController(advisoryService, complaintService)

	// API routes
	api := r.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authController.Login)
			auth.POST("/register", authController.Register)
			auth.POST("/logout", authController.Logout)
			auth.GET("/check-email", authController.CheckEmail)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// Users
			users := protected.Group("/users")
			{
				users.GET("/me", userController.GetCurrentUser)
				users.PUT("/me", userController.UpdateCurrentUser)
				users.GET("/employees", userController.GetEmployees)
				users.GET("", middleware.RequireRole(models.RoleAdmin), userController.GetUsers)
				users.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), userController.DeleteUser)
			}

			// Complaints
			complaints := protected.Group("/complaints")
			{
				complaints.GET("", complaintController.GetComplaints)
				complaints.POST("", complaintController.CreateComplaint)
				complaints.GET("/stats", complaintController.GetStats)
				complaints.GET("/:id", complaintController.GetComplaint)
				complaints.PUT("/:id", complaintController.UpdateComplaint)
				complaints.PUT("/:id/status", middleware.RequireRole(models.RoleEmployee, models.RoleAdmin), complaintController.UpdateStatus)
				complaints.POST("/:id/logs", complaintController.AddLog)
				complaints.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), complaintController.DeleteComplaint)
			}

			// Advisory
			advisory := protected.Group("/advisory")
			{
				advisory.POST("/suggest-category", advisoryController.SuggestCategory)
				advisory.GET("/admin-report", middleware.RequireRole(models.RoleAdmin), advisoryController.AdminReport)
			}
		}
	}
}
