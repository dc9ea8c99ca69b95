package router

import (
	"github.com/gin-gonic/gin"

	"github.com/NadavGB86/event-pragmetizer-oss/internal/http/handler"
)

func SessionRouter(rg *gin.RouterGroup, h *handler.PlanningHandler) {
	rg.POST("", h.Create)
	rg.POST("/import", h.Import)

	s := rg.Group("/:id")
	{
		s.GET("", h.Get)
		s.DELETE("", h.Delete)
		s.POST("/messages", h.SendMessage)
		s.POST("/profile", h.UpdateProfile)
		s.GET("/readiness", h.Readiness)
		s.GET("/synthesis", h.Synthesis)
		s.POST("/plans", h.GeneratePlans)
		s.POST("/plans/select", h.SelectPlan)
		s.POST("/plans/refine", h.RefinePlan)
		s.GET("/advisory", h.Advisory)
		s.GET("/export", h.Export)
	}
}
