package app

import (
	"github.com/gin-gonic/gin"

	"github.com/akash-tk/contactflix/internal/sdk/middleware"
)

// ----------------------------------------------------------------------------
// Route Registration
// ----------------------------------------------------------------------------

func (a *App) RegisterRoutes() *gin.Engine {
	router := gin.New()

	// Global middleware chain
	router.Use(gin.Recovery())      // Panic recovery
	router.Use(middleware.Logger()) // slog request logger
	router.Use(middleware.CORS())   // CORS support

	// Stored profile pictures (public, like the SPA's /uploads)
	router.GET("/uploads/:object", a.HandleServeUpload)

	api := router.Group("/api")
	{
		// Health check routes (public)
		health := api.Group("/health")
		{
			health.GET("/readiness", a.HandleReadiness)
			health.GET("/liveness", a.HandleLiveness)
		}

		// Auth routes (public)
		api.POST("/register", a.HandleRegister)
		api.POST("/login", a.HandleLogin)

		// Everything below requires a valid bearer token
		protected := api.Group("")
		protected.Use(middleware.Authenticate(a.jwt, a.db))
		{
			protected.GET("/me", a.HandleMe)
			protected.POST("/contact", a.HandleCreateContact)
			protected.GET("/mycontacts", a.HandleListContacts)
			protected.GET("/contact/:id", a.HandleGetContact)
			protected.PUT("/contact/:id", a.HandleUpdateContact)
			protected.DELETE("/delete/:id", a.HandleDeleteContact)
		}
	}

	return router
}
