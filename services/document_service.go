package services

import (
	"context"
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/SeraphMX/grupofinancial-hub-sub000/models"
	"github.com/SeraphMX/grupofinancial-hub-sub000/storage"
	"github.com/SeraphMX/grupofinancial-hub-sub000/utils"
	"gorm.io/gorm"
)

// DocumentService implementa el ciclo de vida de los documentos de una
// solicitud: subida, envío a revisión, aceptación, rechazo, exclusión y
// eliminación. Cada escritura publica una notificación en el canal de
// cambios para que los clientes abiertos vuelvan a consultar.
type DocumentService struct {
	db      *gorm.DB
	storage *storage.Storage
	feed    DocumentChangeFeed
	email   *EmailService
}

// NewDocumentService crea una nueva instancia de DocumentService
func NewDocumentService(db *gorm.DB, st *storage.Storage, feed DocumentChangeFeed, email *EmailService) *DocumentService {
	return &DocumentService{
		db:      db,
		storage: st,
		feed:    feed,
		email:   email,
	}
}

// notifyChange publica el cambio sin frenar la operación que lo originó
func (s *DocumentService) notifyChange(ctx context.Context, requestID uint) {
	if err := s.feed.PublishDocumentChange(ctx, requestID); err != nil {
		utils.LogError("error al publicar cambio de documentos de la solicitud %d: %v", requestID, err)
	}
}

// resolveSlot busca el espacio documental de una solicitud. Un producto no
// reconocido degrada a los documentos base, política heredada del asistente.
func resolveSlot(request *models.CreditRequest, slotType string) (models.RequiredDocumentSlot, error) {
	slots, err := models.ResolveRequiredDocuments(request.ProductType, request.ClientType, request.Conditions)
	if err != nil && !errors.Is(err, models.ErrUnknownProduct) {
		return models.RequiredDocumentSlot{}, err
	}

	slot, ok := models.FindSlot(slots, slotType)
	if !ok {
		return models.RequiredDocumentSlot{}, errors.New("el documento no aplica para esta solicitud")
	}
	return slot, nil
}

// loadRequest obtiene una solicitud validando propiedad cuando el rol no revisa
func (s *DocumentService) loadRequest(requestID uint, userID uint, role models.UserRole) (*models.CreditRequest, error) {
	var request models.CreditRequest
	if err := s.db.Preload("User").First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("solicitud no encontrada")
		}
		return nil, err
	}

	if !role.CanReview() && request.UserID != userID {
		return nil, errors.New("la solicitud no pertenece al usuario")
	}
	return &request, nil
}

// EnsureAccess valida que el usuario pueda consultar la solicitud
func (s *DocumentService) EnsureAccess(requestID uint, userID uint, role models.UserRole) error {
	_, err := s.loadRequest(requestID, userID, role)
	return err
}

// Upload sube un archivo para un espacio documental. En espacios de archivo
// único el documento pasa directo a revisión; en espacios de varios archivos
// queda pendiente hasta el envío a revisión.
func (s *DocumentService) Upload(ctx context.Context, requestID uint, slotType string, file *multipart.FileHeader, userID uint, role models.UserRole) (*models.RequestDocument, error) {
	request, err := s.loadRequest(requestID, userID, role)
	if err != nil {
		return nil, err
	}
	if request.Status.IsFinal() {
		return nil, errors.New("la solicitud ya no admite documentos")
	}

	slot, err := resolveSlot(request, slotType)
	if err != nil {
		return nil, err
	}

	// Verificamos el estado actual del espacio
	var existing []models.RequestDocument
	if err := s.db.Where("request_id = ? AND slot_type = ?", requestID, slotType).Find(&existing).Error; err != nil {
		return nil, errors.New("error al consultar los documentos del espacio")
	}
	for _, d := range existing {
		if d.IsExclusionMarker() {
			return nil, errors.New("el espacio está marcado como no aplicable")
		}
		if !slot.MultipleFiles {
			switch d.Status {
			case models.DocumentStatusPending, models.DocumentStatusInReview, models.DocumentStatusAccepted:
				return nil, errors.New("el espacio ya tiene un documento vigente")
			}
		}
	}

	src, err := file.Open()
	if err != nil {
		return nil, errors.New("error al leer el archivo")
	}
	defer src.Close()

	key := storage.BuildKey(request.Folio, slotType, file.Filename)
	contentType := file.Header.Get("Content-Type")

	result, err := s.storage.Upload(ctx, key, src, file.Size, contentType)
	if err != nil {
		return nil, errors.New("error al subir el archivo")
	}

	status := models.DocumentStatusPending
	if !slot.MultipleFiles {
		status = models.DocumentStatusInReview
	}

	doc := &models.RequestDocument{
		RequestID:    requestID,
		SlotType:     slotType,
		StorageKey:   result.Key,
		OriginalName: file.Filename,
		FileSize:     result.Size,
		ContentType:  contentType,
		Status:       status,
		UploadedBy:   userID,
	}

	// Si el espacio es fiscal y el archivo es XML intentamos extraer los
	// datos del CFDI; si no es un comprobante se guarda sin metadatos.
	if IsFiscalSlot(slotType) && strings.EqualFold(filepath.Ext(file.Filename), ".xml") {
		if fiscal, err := s.sniffCFDI(file); err == nil {
			doc.FiscalRFC = fiscal.EmisorRFC
			doc.FiscalTotal = fiscal.Total
		}
	}

	if err := s.db.Create(doc).Error; err != nil {
		// El registro falló, no dejamos el archivo huérfano
		if delErr := s.storage.Delete(ctx, result.Key); delErr != nil {
			utils.LogError("error al limpiar archivo huérfano %s: %v", result.Key, delErr)
		}
		return nil, errors.New("error al guardar el documento")
	}

	utils.GetMetrics().RecordDocumentOperation("upload")
	s.notifyChange(ctx, requestID)

	return doc, nil
}

// sniffCFDI abre el archivo de nuevo para inspeccionarlo sin consumir la
// lectura que ya se subió al almacenamiento
func (s *DocumentService) sniffCFDI(file *multipart.FileHeader) (*CFDIData, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return ParseCFDI(src)
}

// SendToReview pasa a revisión todos los documentos pendientes de un espacio
// con una sola actualización condicionada: solo toca los pendientes de esa
// solicitud y ese espacio, y repetir la llamada sin pendientes no hace nada.
func (s *DocumentService) SendToReview(ctx context.Context, requestID uint, slotType string, userID uint, role models.UserRole) (int64, error) {
	if _, err := s.loadRequest(requestID, userID, role); err != nil {
		return 0, err
	}

	result := s.db.Model(&models.RequestDocument{}).
		Where("request_id = ? AND slot_type = ? AND status = ?", requestID, slotType, models.DocumentStatusPending).
		Update("status", models.DocumentStatusInReview)
	if result.Error != nil {
		return 0, errors.New("error al enviar los documentos a revisión")
	}

	if result.RowsAffected > 0 {
		s.notifyChange(ctx, requestID)
	}
	return result.RowsAffected, nil
}

// Review acepta o rechaza un documento en revisión. Solo asesores y
// administradores pueden resolver documentos.
func (s *DocumentService) Review(ctx context.Context, docID uint, accept bool, cause models.RejectCause, role models.UserRole) (*models.RequestDocument, error) {
	if !role.CanReview() {
		return nil, errors.New("el rol no tiene permisos de revisión")
	}

	var doc models.RequestDocument
	if err := s.db.Preload("Request.User").First(&doc, docID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("documento no encontrado")
		}
		return nil, err
	}

	if doc.Status != models.DocumentStatusInReview {
		return nil, errors.New("el documento no está en revisión")
	}

	if accept {
		doc.Status = models.DocumentStatusAccepted
		doc.RejectCause = nil
	} else {
		switch cause {
		case models.RejectCauseIlegible, models.RejectCauseIncompleto, models.RejectCauseVencido, models.RejectCauseIncorrecto, models.RejectCauseOtro:
		default:
			return nil, errors.New("causa de rechazo no válida")
		}
		doc.Status = models.DocumentStatusRejected
		doc.RejectCause = &cause
	}

	if err := s.db.Save(&doc).Error; err != nil {
		return nil, errors.New("error al actualizar el documento")
	}

	if accept {
		utils.GetMetrics().RecordDocumentOperation("accept")
	} else {
		utils.GetMetrics().RecordDocumentOperation("reject")
		if err := s.email.SendDocumentRejectedNotification(doc.Request.User.Email, doc.Request.Folio, doc.OriginalName, cause); err != nil {
			utils.LogError("error al enviar notificación de documento rechazado: %v", err)
		}
	}

	s.notifyChange(ctx, doc.RequestID)
	return &doc, nil
}

// Delete elimina un archivo pendiente o rechazado: primero el objeto en el
// almacenamiento y después el registro. El espacio vuelve a quedar vacío si
// no quedan más archivos.
func (s *DocumentService) Delete(ctx context.Context, docID uint, userID uint, role models.UserRole) error {
	var doc models.RequestDocument
	if err := s.db.First(&doc, docID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("documento no encontrado")
		}
		return err
	}

	if _, err := s.loadRequest(doc.RequestID, userID, role); err != nil {
		return err
	}

	switch doc.Status {
	case models.DocumentStatusPending, models.DocumentStatusRejected:
	default:
		return errors.New("solo se pueden eliminar documentos pendientes o rechazados")
	}

	if doc.StorageKey != "" {
		if err := s.storage.Delete(ctx, doc.StorageKey); err != nil {
			return errors.New("error al eliminar el archivo del almacenamiento")
		}
	}

	if err := s.db.Delete(&doc).Error; err != nil {
		return errors.New("error al eliminar el registro del documento")
	}

	utils.GetMetrics().RecordDocumentOperation("delete")
	s.notifyChange(ctx, doc.RequestID)
	return nil
}

// Exclude marca como no aplicable un espacio opcional sin archivos subidos.
// La exclusión se persiste como un registro marcador sin llave de
// almacenamiento.
func (s *DocumentService) Exclude(ctx context.Context, requestID uint, slotType string, userID uint, role models.UserRole) (*models.RequestDocument, error) {
	request, err := s.loadRequest(requestID, userID, role)
	if err != nil {
		return nil, err
	}

	slot, err := resolveSlot(request, slotType)
	if err != nil {
		return nil, err
	}
	if slot.Required {
		return nil, errors.New("un documento obligatorio no se puede excluir")
	}

	var count int64
	if err := s.db.Model(&models.RequestDocument{}).
		Where("request_id = ? AND slot_type = ?", requestID, slotType).
		Count(&count).Error; err != nil {
		return nil, errors.New("error al consultar el espacio")
	}
	if count > 0 {
		return nil, errors.New("el espacio ya tiene archivos o está excluido")
	}

	marker := &models.RequestDocument{
		RequestID:  requestID,
		SlotType:   slotType,
		Status:     models.DocumentStatusExcluded,
		UploadedBy: userID,
	}
	if err := s.db.Create(marker).Error; err != nil {
		return nil, errors.New("error al excluir el espacio")
	}

	s.notifyChange(ctx, requestID)
	return marker, nil
}

// Include revierte la exclusión de un espacio eliminando el marcador
func (s *DocumentService) Include(ctx context.Context, requestID uint, slotType string, userID uint, role models.UserRole) error {
	if _, err := s.loadRequest(requestID, userID, role); err != nil {
		return err
	}

	var marker models.RequestDocument
	err := s.db.Where("request_id = ? AND slot_type = ? AND status = ? AND (storage_key IS NULL OR storage_key = '')",
		requestID, slotType, models.DocumentStatusExcluded).
		First(&marker).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("el espacio no está excluido")
		}
		return err
	}

	if err := s.db.Delete(&marker).Error; err != nil {
		return errors.New("error al reincluir el espacio")
	}

	s.notifyChange(ctx, requestID)
	return nil
}

// DownloadURL genera una URL firmada de descarga para un documento
func (s *DocumentService) DownloadURL(ctx context.Context, docID uint, userID uint, role models.UserRole) (string, error) {
	var doc models.RequestDocument
	if err := s.db.First(&doc, docID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.New("documento no encontrado")
		}
		return "", err
	}

	if _, err := s.loadRequest(doc.RequestID, userID, role); err != nil {
		return "", err
	}

	if doc.StorageKey == "" {
		return "", errors.New("el documento no tiene archivo asociado")
	}

	return s.storage.PresignedURL(ctx, doc.StorageKey, doc.OriginalName, 15*time.Minute)
}
