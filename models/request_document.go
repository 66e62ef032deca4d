package models

import (
	"errors"

	"gorm.io/gorm"
)

// DocumentStatus representa el estado de un documento subido
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusInReview DocumentStatus = "in_review"
	DocumentStatusAccepted DocumentStatus = "accepted"
	DocumentStatusRejected DocumentStatus = "rejected"
	DocumentStatusExcluded DocumentStatus = "excluded"
)

// RejectCause representa el motivo de rechazo de un documento
type RejectCause string

const (
	RejectCauseIlegible   RejectCause = "ilegible"
	RejectCauseIncompleto RejectCause = "incompleto"
	RejectCauseVencido    RejectCause = "vencido"
	RejectCauseIncorrecto RejectCause = "incorrecto"
	RejectCauseOtro       RejectCause = "otro"
)

// RequestDocument representa un archivo subido para un espacio documental
// de una solicitud. Un registro con status excluded y sin llave de
// almacenamiento es un marcador de exclusión, no un archivo.
type RequestDocument struct {
	gorm.Model
	RequestID    uint           `gorm:"column:request_id;not null;index"`
	Request      CreditRequest  `gorm:"foreignKey:RequestID"`
	SlotType     string         `gorm:"column:slot_type;not null;size:50;index"`
	StorageKey   string         `gorm:"column:storage_key;size:255"`
	OriginalName string         `gorm:"column:original_name;size:255"`
	FileSize     int64          `gorm:"column:file_size;not null;default:0"`
	ContentType  string         `gorm:"column:content_type;size:128"`
	Status       DocumentStatus `gorm:"column:status;type:varchar(20);not null;default:'pending'"`
	RejectCause  *RejectCause   `gorm:"column:reject_cause;type:varchar(20)"`
	FiscalRFC    string         `gorm:"column:fiscal_rfc;size:13"`
	FiscalTotal  float64        `gorm:"column:fiscal_total;default:0"`
	UploadedBy   uint           `gorm:"column:uploaded_by;not null"`
}

func (RequestDocument) TableName() string {
	return "request_documents"
}

// IsExclusionMarker indica si el registro marca un espacio como no aplicable
func (d *RequestDocument) IsExclusionMarker() bool {
	return d.Status == DocumentStatusExcluded && d.StorageKey == ""
}

// BeforeSave valida el invariante: causa de rechazo si y solo si está rechazado
func (d *RequestDocument) BeforeSave(tx *gorm.DB) error {
	if d.Status == DocumentStatusRejected && d.RejectCause == nil {
		return errors.New("un documento rechazado requiere causa de rechazo")
	}
	if d.Status != DocumentStatusRejected && d.RejectCause != nil {
		return errors.New("la causa de rechazo solo aplica a documentos rechazados")
	}
	return nil
}
