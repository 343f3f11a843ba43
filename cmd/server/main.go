package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/civicdesk/backend/internal/logger"
	"github.com/civicdesk/backend/internal/middleware"
	"github.com/civicdesk/backend/internal/routes"
	"github.com/civicdesk/backend/internal/store"
)

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Set CORS headers for all requests
		origin := "http://localhost:5173"
		if os.Getenv("ENV") != "local" && os.Getenv("ENV") != "" {
			if corsOrigin := os.Getenv("CORS_ORIGIN"); corsOrigin != "" {
				origin = corsOrigin
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		// Handle preflight request
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

// buildStore selects the record store backend at composition time: the
// embedded local database by default, or a remote proxy when
// STORE_BACKEND=remote. The session pointer always stays on the local
// device, so remote mode still opens the local database for it.
func buildStore() (store.RecordStore, func(), error) {
	path := os.Getenv("STORE_PATH")
	if path == "" {
		path = "data/store"
	}

	local, err := store.OpenLocal(store.LocalOptions{Path: path})
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := local.Close(); err != nil {
			logger.WithError(err, "store").Error("Failed to close record store")
		}
	}

	if os.Getenv("STORE_BACKEND") == "remote" {
		baseURL := os.Getenv("STORE_API_URL")
		if baseURL == "" {
			baseURL = "http://localhost:8081"
		}
		return store.NewRemote(baseURL, local), closer, nil
	}
	return local, closer, nil
}

func main() {
	// Initialize logger first
	logger.Initialize()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using environment variables", nil)
	}

	// Open the record store and seed it on first run
	st, closeStore, err := buildStore()
	if err != nil {
		logger.Fatal("Failed to open record store", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer closeStore()

	if err := st.Initialize(context.Background()); err != nil {
		logger.Fatal("Failed to initialize record store", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Setup graceful shutdown
	stopChan := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		logger.Warn("Received shutdown signal, stopping server...", nil)
		close(stopChan)
	}()

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	r := gin.New()

	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	// Use our custom logging middleware instead of gin.Default()
	r.Use(middleware.CustomLoggerMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		storeStatus := "ok"
		var storeError string
		if err := st.Ping(c.Request.Context()); err != nil {
			storeStatus = "error"
			storeError = err.Error()
		}

		overallStatus := "ok"
		statusCode := http.StatusOK
		if storeStatus != "ok" {
			overallStatus = "error"
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":    overallStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   "1.0.0",
			"services": gin.H{
				"store": gin.H{
					"status": storeStatus,
					"error":  storeError,
				},
			},
		})
	})

	// Setup routes
	routes.SetupRoutes(r, st)

	// Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	logger.Info("Starting CivicDesk backend server", map[string]interface{}{
		"port":     port,
		"gin_mode": gin.Mode(),
	})

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Wait for shutdown signal
	<-stopChan
	logger.Info("Shutting down server gracefully...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		logger.Info("Server exited gracefully", nil)
	}
}
