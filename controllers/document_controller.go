package controllers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SeraphMX/grupofinancial-hub-sub000/middleware"
	"github.com/SeraphMX/grupofinancial-hub-sub000/models"
	"github.com/SeraphMX/grupofinancial-hub-sub000/services"
	"github.com/SeraphMX/grupofinancial-hub-sub000/utils"
	"github.com/gin-gonic/gin"
)

// DocumentController atiende el checklist documental y sus archivos
type DocumentController struct {
	documentService  *services.DocumentService
	checklistService *services.ChecklistService
	ticketKey        []byte
}

// NewDocumentController crea una nueva instancia de DocumentController
func NewDocumentController(documents *services.DocumentService, checklist *services.ChecklistService, ticketKey []byte) *DocumentController {
	return &DocumentController{
		documentService:  documents,
		checklistService: checklist,
		ticketKey:        ticketKey,
	}
}

// documentID obtiene el ID de documento de la ruta
func documentID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("docId"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "ID de documento no válido"})
		return 0, false
	}
	return uint(id), true
}

// GetChecklist regresa el checklist documental de una solicitud
func (c *DocumentController) GetChecklist(ctx *gin.Context) {
	userID, role, err := middleware.Identity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no válida"})
		return
	}

	id, ok := requestID(ctx)
	if !ok {
		return
	}

	// La propiedad se valida contra la solicitud antes de armar el checklist
	if err := c.documentService.EnsureAccess(id, userID, role); err != nil {
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	checklist, err := c.checklistService.Get(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, checklist)
}

// Upload recibe un archivo para un espacio documental
func (c *DocumentController) Upload(ctx *gin.Context) {
	userID, role, err := middleware.Identity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no válida"})
		return
	}

	id, ok := requestID(ctx)
	if !ok {
		return
	}

	slotType := ctx.PostForm("slot_type")
	if slotType == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Se requiere el campo slot_type"})
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Se requiere el archivo"})
		return
	}

	doc, err := c.documentService.Upload(ctx.Request.Context(), id, slotType, file, userID, role)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, doc)
}

// Delete elimina un documento pendiente o rechazado
func (c *DocumentController) Delete(ctx *gin.Context) {
	userID, role, err := middleware.Identity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no válida"})
		return
	}

	id, ok := documentID(ctx)
	if !ok {
		return
	}

	if err := c.documentService.Delete(ctx.Request.Context(), id, userID, role); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// SendToReview envía a revisión los pendientes de un espacio
func (c *DocumentController) SendToReview(ctx *gin.Context) {
	userID, role, err := middleware.Identity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no válida"})
		return
	}

	id, ok := requestID(ctx)
	if !ok {
		return
	}

	slotType := ctx.Param("slot")

	updated, err := c.documentService.SendToReview(ctx.Request.Context(), id, slotType, userID, role)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"updated": updated})
}

// ReviewRequest representa el cuerpo de una resolución de documento
type ReviewRequest struct {
	Accept bool   `json:"accept"`
	Cause  string `json:"cause"`
}

// Review acepta o rechaza un documento, solo revisores
func (c *DocumentController) Review(ctx *gin.Context) {
	_, role, err := middleware.Identity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no válida"})
		return
	}

	id, ok := documentID(ctx)
	if !ok {
		return
	}

	var body ReviewRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo de petición no válido"})
		return
	}

	doc, err := c.documentService.Review(ctx.Request.Context(), id, body.Accept, models.RejectCause(body.Cause), role)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, doc)
}

// Exclude marca un espacio opcional como no aplicable
func (c *DocumentController) Exclude(ctx *gin.Context) {
	userID, role, err := middleware.Identity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no válida"})
		return
	}

	id, ok := requestID(ctx)
	if !ok {
		return
	}

	marker, err := c.documentService.Exclude(ctx.Request.Context(), id, ctx.Param("slot"), userID, role)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, marker)
}

// Include revierte la exclusión de un espacio
func (c *DocumentController) Include(ctx *gin.Context) {
	userID, role, err := middleware.Identity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no válida"})
		return
	}

	id, ok := requestID(ctx)
	if !ok {
		return
	}

	if err := c.documentService.Include(ctx.Request.Context(), id, ctx.Param("slot"), userID, role); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// DownloadURL genera una URL firmada de descarga
func (c *DocumentController) DownloadURL(ctx *gin.Context) {
	userID, role, err := middleware.Identity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no válida"})
		return
	}

	id, ok := documentID(ctx)
	if !ok {
		return
	}

	url, err := c.documentService.DownloadURL(ctx.Request.Context(), id, userID, role)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"url": url})
}

// Vigencia de los boletos de suscripción SSE
const eventTicketTTL = time.Minute

// EventsTicket emite un boleto firmado de corta vida para abrir el canal de
// eventos. EventSource no puede mandar el encabezado Authorization, así que
// la suscripción se autoriza con este boleto en la URL.
func (c *DocumentController) EventsTicket(ctx *gin.Context) {
	userID, role, err := middleware.Identity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no válida"})
		return
	}

	id, ok := requestID(ctx)
	if !ok {
		return
	}

	if err := c.documentService.EnsureAccess(id, userID, role); err != nil {
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	expires := time.Now().Add(eventTicketTTL).Unix()
	data := fmt.Sprintf("%d:%d:%s:%d", id, userID, role, expires)
	mac := utils.GenerateHMAC(data, c.ticketKey)
	ticket := base64.URLEncoding.EncodeToString([]byte(data)) + "." + mac

	ctx.JSON(http.StatusOK, gin.H{"ticket": ticket, "expires": expires})
}

// parseEventTicket valida un boleto y regresa la identidad que lo emitió
func (c *DocumentController) parseEventTicket(ticket string) (uint, uint, models.UserRole, error) {
	encoded, mac, found := strings.Cut(ticket, ".")
	if !found {
		return 0, 0, "", errors.New("boleto mal formado")
	}

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return 0, 0, "", errors.New("boleto mal formado")
	}
	data := string(raw)

	if !utils.ValidateHMAC(data, mac, c.ticketKey) {
		return 0, 0, "", errors.New("la firma del boleto no es válida")
	}

	parts := strings.Split(data, ":")
	if len(parts) != 4 {
		return 0, 0, "", errors.New("boleto mal formado")
	}

	requestID, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, 0, "", errors.New("boleto mal formado")
	}
	userID, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, 0, "", errors.New("boleto mal formado")
	}
	expires, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return 0, 0, "", errors.New("boleto mal formado")
	}
	if time.Now().Unix() > expires {
		return 0, 0, "", errors.New("el boleto ya venció")
	}

	return uint(requestID), uint(userID), models.UserRole(parts[2]), nil
}

// Events transmite por SSE los snapshots del checklist cada vez que el
// canal de cambios notifica movimiento en los documentos de la solicitud.
// La ruta es pública; la autorización viaja en el boleto.
func (c *DocumentController) Events(ctx *gin.Context) {
	id, userID, role, err := c.parseEventTicket(ctx.Query("ticket"))
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if err := c.documentService.EnsureAccess(id, userID, role); err != nil {
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	ctx.Writer.Header().Set("Content-Type", "text/event-stream")
	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")

	updates := make(chan *services.Checklist, 4)

	// Snapshot inicial para que el cliente no arranque vacío
	if snapshot, err := c.checklistService.Get(ctx.Request.Context(), id); err == nil {
		writeEvent(ctx.Writer, snapshot)
		ctx.Writer.Flush()
	}

	c.checklistService.Watch(ctx.Request.Context(), id, func(snapshot *services.Checklist) {
		select {
		case updates <- snapshot:
		default:
			// El cliente va lento; el siguiente snapshot lo pone al día
		}
	})

	for {
		select {
		case <-ctx.Request.Context().Done():
			return
		case snapshot := <-updates:
			writeEvent(ctx.Writer, snapshot)
			ctx.Writer.Flush()
		}
	}
}

// writeEvent serializa un snapshot como evento SSE
func writeEvent(w io.Writer, snapshot *services.Checklist) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	w.Write([]byte("event: checklist\ndata: "))
	w.Write(payload)
	w.Write([]byte("\n\n"))
}
