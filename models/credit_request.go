package models

import (
	"gorm.io/gorm"
)

// ProductType representa el tipo de producto de crédito
type ProductType string

const (
	ProductSimple        ProductType = "simple"
	ProductRevolvente    ProductType = "revolvente"
	ProductArrendamiento ProductType = "arrendamiento"
)

// ClientType representa el tipo de cliente que solicita el crédito
type ClientType string

const (
	ClientPersonal    ClientType = "personal"
	ClientEmpresarial ClientType = "empresarial"
)

// Condiciones específicas por producto (subvariante del crédito).
// Afectan tasas y límites del cotizador, nunca la lista de documentos.
const (
	CondicionConGarantia   = "con-garantia"
	CondicionSinGarantia   = "sin-garantia"
	CondicionArrPuro       = "arrendamiento-puro"
	CondicionArrFinanciero = "arrendamiento-financiero"
)

// RequestStatus representa el estado de una solicitud de crédito
type RequestStatus string

const (
	RequestStatusNueva         RequestStatus = "nueva"
	RequestStatusEnRevision    RequestStatus = "en_revision"
	RequestStatusDocumentacion RequestStatus = "documentacion"
	RequestStatusAprobada      RequestStatus = "aprobada"
	RequestStatusRechazada     RequestStatus = "rechazada"
	RequestStatusCancelada     RequestStatus = "cancelada"
)

// IsFinal indica si la solicitud ya no admite cambios
func (s RequestStatus) IsFinal() bool {
	return s == RequestStatusAprobada || s == RequestStatusRechazada || s == RequestStatusCancelada
}

// CreditRequest representa una solicitud de crédito
type CreditRequest struct {
	gorm.Model
	Folio          string            `gorm:"column:folio;unique;not null;size:26"`
	ClientType     ClientType        `gorm:"column:client_type;type:varchar(20);not null"`
	ProductType    ProductType       `gorm:"column:product_type;type:varchar(20);not null"`
	Conditions     string            `gorm:"column:conditions;size:40"`
	Amount         float64           `gorm:"column:amount;not null"`
	TermMonths     int               `gorm:"column:term_months;not null"`
	Rate           float64           `gorm:"column:rate;not null"`
	MonthlyPayment float64           `gorm:"column:monthly_payment;not null"`
	Status         RequestStatus     `gorm:"column:status;type:varchar(20);not null;default:'nueva'"`
	UserID         uint              `gorm:"column:user_id;not null;index"`
	User           User              `gorm:"foreignKey:UserID;references:ID"`
	Documents      []RequestDocument `gorm:"foreignKey:RequestID"`
}

func (CreditRequest) TableName() string {
	return "credit_requests"
}
