package handlers

import (
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Equipment *EquipmentHandler
	Reports   *ReportHandler
	Auth      *AuthHandler
	Health    *HealthHandler
}

// RegisterRoutes mounts the API under /api. requireAuth guards every data route.
func RegisterRoutes(r *gin.Engine, h Handlers, requireAuth gin.HandlerFunc) {
	api := r.Group("/api")

	api.GET("/health", h.Health.Health)
	api.POST("/login/", h.Auth.Login)
	api.POST("/token/refresh/", h.Auth.Refresh)

	protected := api.Group("", requireAuth)
	protected.POST("/upload/", h.Equipment.Upload)
	protected.GET("/equipment/", h.Equipment.List)
	protected.GET("/summary/", h.Equipment.Summary)
	protected.GET("/history/", h.Equipment.History)
	protected.GET("/report/pdf/", h.Reports.PDF)
	protected.GET("/report/xlsx/", h.Reports.Excel)
}
