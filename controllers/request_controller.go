package controllers

import (
	"net/http"
	"strconv"

	"github.com/SeraphMX/grupofinancial-hub-sub000/database"
	"github.com/SeraphMX/grupofinancial-hub-sub000/middleware"
	"github.com/SeraphMX/grupofinancial-hub-sub000/models"
	"github.com/SeraphMX/grupofinancial-hub-sub000/services"
	"github.com/gin-gonic/gin"
)

// RequestController atiende las peticiones del asistente y las solicitudes
type RequestController struct {
	requestService *services.RequestService
}

// NewRequestController crea una nueva instancia de RequestController
func NewRequestController(db *database.Database, email *services.EmailService) *RequestController {
	return &RequestController{
		requestService: services.NewRequestService(db.DB, email),
	}
}

// Quote cotiza un crédito, es el único endpoint público del asistente
func (c *RequestController) Quote(ctx *gin.Context) {
	var dto services.QuoteRequestDTO
	if err := ctx.ShouldBindJSON(&dto); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de petición no válido"})
		return
	}

	quote, err := c.requestService.Quote(dto)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, quote)
}

// Create registra una nueva solicitud del usuario autenticado
func (c *RequestController) Create(ctx *gin.Context) {
	userID, _, err := middleware.Identity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no válida"})
		return
	}

	var dto services.CreateRequestDTO
	if err := ctx.ShouldBindJSON(&dto); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de petición no válido"})
		return
	}
	dto.UserID = userID

	request, err := c.requestService.Create(dto)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, request)
}

// List regresa las solicitudes: las propias para clientes, todas para
// asesores y administradores con filtro opcional por estado
func (c *RequestController) List(ctx *gin.Context) {
	userID, role, err := middleware.Identity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no válida"})
		return
	}

	if role.CanReview() {
		requests, err := c.requestService.ListAll(ctx.Query("status"))
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, requests)
		return
	}

	requests, err := c.requestService.ListByUser(userID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, requests)
}

// requestID obtiene el ID de solicitud de la ruta
func requestID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "ID de solicitud no válido"})
		return 0, false
	}
	return uint(id), true
}

// Get regresa el detalle de una solicitud verificando propiedad
func (c *RequestController) Get(ctx *gin.Context) {
	userID, role, err := middleware.Identity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no válida"})
		return
	}

	id, ok := requestID(ctx)
	if !ok {
		return
	}

	request, err := c.requestService.GetByID(id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	if !role.CanReview() && request.UserID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Acceso denegado"})
		return
	}

	ctx.JSON(http.StatusOK, request)
}

// UpdateStatusRequest representa el cuerpo del cambio de estado
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus cambia el estado de una solicitud, solo revisores
func (c *RequestController) UpdateStatus(ctx *gin.Context) {
	id, ok := requestID(ctx)
	if !ok {
		return
	}

	var body UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de petición no válido"})
		return
	}

	request, err := c.requestService.UpdateStatus(id, models.RequestStatus(body.Status))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, request)
}

// Cancel cancela una solicitud propia
func (c *RequestController) Cancel(ctx *gin.Context) {
	userID, _, err := middleware.Identity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no válida"})
		return
	}

	id, ok := requestID(ctx)
	if !ok {
		return
	}

	request, err := c.requestService.Cancel(id, userID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, request)
}
