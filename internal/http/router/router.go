package router

import (
	"github.com/gin-gonic/gin"

	"github.com/NadavGB86/event-pragmetizer-oss/internal/http/handler"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		planningHandler := handler.NewPlanningHandler(services.Planning())
		SessionRouter(v1.Group("/sessions"), planningHandler)
		v1.POST("/evaluate", planningHandler.Evaluate)
	}
}
