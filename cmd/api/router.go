package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"photovault-backend/internal/shared/middleware"
	"photovault-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupPeopleRoutes(v1, c)
	}

	return router
}

func setupPeopleRoutes(v1 *gin.RouterGroup, c *container.Container) {
	people := v1.Group("/people")
	people.Use(middleware.Auth(c.JWTManager))
	{
		people.GET("", c.PersonHandler.ListPeople)
		people.PUT("", c.PersonHandler.BulkUpdatePeople)
		people.GET("/export", c.PersonHandler.ExportPeople)
		people.GET("/:id", c.PersonHandler.GetPerson)
		people.PUT("/:id", c.PersonHandler.UpdatePerson)
		people.GET("/:id/thumbnail", c.PersonHandler.GetPersonThumbnail)
		people.GET("/:id/assets", c.PersonHandler.GetPersonAssets)
		people.POST("/:id/merge", c.PersonHandler.MergePerson)
	}
}

func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := appCtx.DB.HealthCheck(ctx); err != nil {
			dbStatus = "error"
			health["status"] = "degraded"
		}

		redisStatus := "ok"
		if err := appCtx.Cache.Ping(ctx); err != nil {
			redisStatus = "error"
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
