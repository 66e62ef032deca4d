package controllers

import (
	"net/http"

	"github.com/SeraphMX/grupofinancial-hub-sub000/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DashboardController atiende los agregados del panel de asesores
type DashboardController struct {
	dashboardService *services.DashboardService
}

// NewDashboardController crea una nueva instancia de DashboardController
func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{
		dashboardService: services.NewDashboardService(db),
	}
}

// Summary regresa el resumen completo del panel
func (c *DashboardController) Summary(ctx *gin.Context) {
	summary, err := c.dashboardService.GetSummary()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar el resumen"})
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

// PendingReviews regresa cuántos documentos esperan revisión
func (c *DashboardController) PendingReviews(ctx *gin.Context) {
	count, err := c.dashboardService.CountPendingReviews()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar los pendientes"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"pending_reviews": count})
}
