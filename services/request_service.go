package services

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/SeraphMX/grupofinancial-hub-sub000/models"
	"github.com/SeraphMX/grupofinancial-hub-sub000/utils"
	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// QuoteRequestDTO representa los datos para cotizar un crédito
type QuoteRequestDTO struct {
	ProductType string  `json:"product_type" validate:"required"`
	Conditions  string  `json:"conditions"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	TermMonths  int     `json:"term_months" validate:"required,gt=0"`
}

// QuoteResponseDTO representa el resultado del cotizador
type QuoteResponseDTO struct {
	ProductType    string  `json:"product_type"`
	Conditions     string  `json:"conditions,omitempty"`
	Amount         float64 `json:"amount"`
	TermMonths     int     `json:"term_months"`
	AnnualRate     float64 `json:"annual_rate"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPayment   float64 `json:"total_payment"`
}

// CreateRequestDTO representa los datos para crear una solicitud
type CreateRequestDTO struct {
	ClientType  string  `json:"client_type" validate:"required,oneof=personal empresarial"`
	ProductType string  `json:"product_type" validate:"required"`
	Conditions  string  `json:"conditions"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	TermMonths  int     `json:"term_months" validate:"required,gt=0"`
	UserID      uint    `json:"-" validate:"required"`
}

// RequestResponseDTO representa la respuesta con los datos de una solicitud
type RequestResponseDTO struct {
	ID             uint      `json:"id"`
	Folio          string    `json:"folio"`
	ClientType     string    `json:"client_type"`
	ProductType    string    `json:"product_type"`
	Conditions     string    `json:"conditions,omitempty"`
	Amount         float64   `json:"amount"`
	TermMonths     int       `json:"term_months"`
	Rate           float64   `json:"rate"`
	MonthlyPayment float64   `json:"monthly_payment"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	User           UserDTO   `json:"user"`
}

// productTerms define tasa y límites por producto y condición
type productTerms struct {
	AnnualRate float64
	MinAmount  float64
	MaxAmount  float64
	MinMonths  int
	MaxMonths  int
}

// Tabla de condiciones de producto. La subvariante ajusta la tasa; los
// límites de monto y plazo son por producto.
var termsTable = map[models.ProductType]map[string]productTerms{
	models.ProductSimple: {
		models.CondicionConGarantia: {AnnualRate: 16.0, MinAmount: 100_000, MaxAmount: 5_000_000, MinMonths: 6, MaxMonths: 60},
		models.CondicionSinGarantia: {AnnualRate: 22.0, MinAmount: 100_000, MaxAmount: 2_000_000, MinMonths: 6, MaxMonths: 48},
		"":                          {AnnualRate: 22.0, MinAmount: 100_000, MaxAmount: 2_000_000, MinMonths: 6, MaxMonths: 48},
	},
	models.ProductRevolvente: {
		"": {AnnualRate: 18.0, MinAmount: 50_000, MaxAmount: 2_000_000, MinMonths: 12, MaxMonths: 36},
	},
	models.ProductArrendamiento: {
		models.CondicionArrPuro:       {AnnualRate: 15.0, MinAmount: 250_000, MaxAmount: 10_000_000, MinMonths: 12, MaxMonths: 72},
		models.CondicionArrFinanciero: {AnnualRate: 17.0, MinAmount: 250_000, MaxAmount: 10_000_000, MinMonths: 12, MaxMonths: 72},
		"":                            {AnnualRate: 15.0, MinAmount: 250_000, MaxAmount: 10_000_000, MinMonths: 12, MaxMonths: 72},
	},
}

// RequestService provee métodos para trabajar con solicitudes de crédito
type RequestService struct {
	db        *gorm.DB
	validator *validator.Validate
	email     *EmailService
}

// NewRequestService crea una nueva instancia de RequestService
func NewRequestService(db *gorm.DB, email *EmailService) *RequestService {
	return &RequestService{
		db:        db,
		validator: validator.New(),
		email:     email,
	}
}

// validateStruct valida un DTO y traduce los errores a mensajes legibles
func (s *RequestService) validateStruct(dto interface{}) error {
	if err := s.validator.Struct(dto); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, "el campo "+e.Field()+" es obligatorio")
			case "gt":
				messages = append(messages, "el campo "+e.Field()+" debe ser mayor a 0")
			case "oneof":
				messages = append(messages, "el campo "+e.Field()+" debe ser uno de: "+e.Param())
			default:
				messages = append(messages, "el campo "+e.Field()+" no es válido")
			}
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return nil
}

// calculateAnnuityPayment calcula el pago mensual con fórmula de anualidad
func calculateAnnuityPayment(amount float64, annualRate float64, months int) float64 {
	// Convertimos la tasa anual a mensual (en fracción)
	monthlyRate := annualRate / 12 / 100

	if monthlyRate == 0 {
		return amount / float64(months)
	}

	factor := math.Pow(1+monthlyRate, float64(months))
	return amount * (monthlyRate * factor) / (factor - 1)
}

// lookupTerms busca las condiciones aplicables a un producto y subvariante
func lookupTerms(product models.ProductType, conditions string) (productTerms, error) {
	byCondition, ok := termsTable[product]
	if !ok {
		return productTerms{}, models.ErrUnknownProduct
	}

	terms, ok := byCondition[conditions]
	if !ok {
		return productTerms{}, errors.New("condiciones de crédito no válidas para el producto")
	}
	return terms, nil
}

// Quote cotiza un crédito sin persistir nada
func (s *RequestService) Quote(dto QuoteRequestDTO) (*QuoteResponseDTO, error) {
	if err := s.validateStruct(dto); err != nil {
		return nil, err
	}

	terms, err := lookupTerms(models.ProductType(dto.ProductType), dto.Conditions)
	if err != nil {
		return nil, err
	}

	if dto.Amount < terms.MinAmount || dto.Amount > terms.MaxAmount {
		return nil, errors.New("el monto está fuera de los límites del producto")
	}
	if dto.TermMonths < terms.MinMonths || dto.TermMonths > terms.MaxMonths {
		return nil, errors.New("el plazo está fuera de los límites del producto")
	}

	payment := calculateAnnuityPayment(dto.Amount, terms.AnnualRate, dto.TermMonths)

	return &QuoteResponseDTO{
		ProductType:    dto.ProductType,
		Conditions:     dto.Conditions,
		Amount:         dto.Amount,
		TermMonths:     dto.TermMonths,
		AnnualRate:     terms.AnnualRate,
		MonthlyPayment: math.Round(payment*100) / 100,
		TotalPayment:   math.Round(payment*float64(dto.TermMonths)*100) / 100,
	}, nil
}

// newFolio genera un folio ULID ordenable por fecha
func newFolio() string {
	return ulid.Make().String()
}

// toRequestDTO convierte el modelo en su DTO de respuesta
func toRequestDTO(r *models.CreditRequest) *RequestResponseDTO {
	return &RequestResponseDTO{
		ID:             r.ID,
		Folio:          r.Folio,
		ClientType:     string(r.ClientType),
		ProductType:    string(r.ProductType),
		Conditions:     r.Conditions,
		Amount:         r.Amount,
		TermMonths:     r.TermMonths,
		Rate:           r.Rate,
		MonthlyPayment: r.MonthlyPayment,
		Status:         string(r.Status),
		CreatedAt:      r.CreatedAt,
		User:           ToUserDTO(&r.User),
	}
}

// Create registra una nueva solicitud a partir del asistente de cotización
func (s *RequestService) Create(dto CreateRequestDTO) (*RequestResponseDTO, error) {
	if err := s.validateStruct(dto); err != nil {
		return nil, err
	}

	terms, err := lookupTerms(models.ProductType(dto.ProductType), dto.Conditions)
	if err != nil {
		return nil, err
	}

	if dto.Amount < terms.MinAmount || dto.Amount > terms.MaxAmount {
		return nil, errors.New("el monto está fuera de los límites del producto")
	}
	if dto.TermMonths < terms.MinMonths || dto.TermMonths > terms.MaxMonths {
		return nil, errors.New("el plazo está fuera de los límites del producto")
	}

	payment := calculateAnnuityPayment(dto.Amount, terms.AnnualRate, dto.TermMonths)

	request := &models.CreditRequest{
		Folio:          newFolio(),
		ClientType:     models.ClientType(dto.ClientType),
		ProductType:    models.ProductType(dto.ProductType),
		Conditions:     dto.Conditions,
		Amount:         dto.Amount,
		TermMonths:     dto.TermMonths,
		Rate:           terms.AnnualRate,
		MonthlyPayment: math.Round(payment*100) / 100,
		Status:         models.RequestStatusNueva,
		UserID:         dto.UserID,
	}

	if err := s.db.Create(request).Error; err != nil {
		return nil, errors.New("error al crear la solicitud")
	}

	if err := s.db.Preload("User").First(request, request.ID).Error; err != nil {
		return nil, errors.New("error al recuperar la solicitud creada")
	}

	utils.GetMetrics().RecordRequestLifecycle("created")

	// El correo no debe frenar la creación
	if err := s.email.SendRequestCreatedNotification(request.User.Email, request.Folio, request.Amount, request.TermMonths); err != nil {
		utils.LogError("error al enviar notificación de solicitud creada: %v", err)
	}

	return toRequestDTO(request), nil
}

// GetByID regresa una solicitud por ID
func (s *RequestService) GetByID(id uint) (*models.CreditRequest, error) {
	var request models.CreditRequest
	if err := s.db.Preload("User").First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("solicitud no encontrada")
		}
		return nil, err
	}
	return &request, nil
}

// ListByUser regresa las solicitudes de un usuario
func (s *RequestService) ListByUser(userID uint) ([]RequestResponseDTO, error) {
	var requests []models.CreditRequest
	if err := s.db.Where("user_id = ?", userID).
		Preload("User").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}

	dtos := make([]RequestResponseDTO, len(requests))
	for i := range requests {
		dtos[i] = *toRequestDTO(&requests[i])
	}
	return dtos, nil
}

// ListAll regresa todas las solicitudes, con filtro opcional por estado
func (s *RequestService) ListAll(status string) ([]RequestResponseDTO, error) {
	query := s.db.Preload("User").Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var requests []models.CreditRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}

	dtos := make([]RequestResponseDTO, len(requests))
	for i := range requests {
		dtos[i] = *toRequestDTO(&requests[i])
	}
	return dtos, nil
}

// validStatusTransitions define el flujo de estados de una solicitud
var validStatusTransitions = map[models.RequestStatus][]models.RequestStatus{
	models.RequestStatusNueva:         {models.RequestStatusEnRevision, models.RequestStatusCancelada},
	models.RequestStatusEnRevision:    {models.RequestStatusDocumentacion, models.RequestStatusRechazada, models.RequestStatusCancelada},
	models.RequestStatusDocumentacion: {models.RequestStatusEnRevision, models.RequestStatusAprobada, models.RequestStatusRechazada, models.RequestStatusCancelada},
}

// CanTransition verifica si el cambio de estado es válido
func CanTransition(from, to models.RequestStatus) bool {
	for _, allowed := range validStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// UpdateStatus cambia el estado de una solicitud siguiendo el flujo permitido
func (s *RequestService) UpdateStatus(id uint, newStatus models.RequestStatus) (*RequestResponseDTO, error) {
	request, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(request.Status, newStatus) {
		return nil, errors.New("cambio de estado no permitido")
	}

	request.Status = newStatus
	if err := s.db.Save(request).Error; err != nil {
		return nil, errors.New("error al actualizar el estado de la solicitud")
	}

	switch newStatus {
	case models.RequestStatusAprobada:
		utils.GetMetrics().RecordRequestLifecycle("approved")
	case models.RequestStatusRechazada:
		utils.GetMetrics().RecordRequestLifecycle("rejected")
	case models.RequestStatusCancelada:
		utils.GetMetrics().RecordRequestLifecycle("cancelled")
	}

	if err := s.email.SendRequestStatusNotification(request.User.Email, request.Folio, newStatus); err != nil {
		utils.LogError("error al enviar notificación de cambio de estado: %v", err)
	}

	return toRequestDTO(request), nil
}

// Cancel cancela una solicitud propia que aún no llega a resolución
func (s *RequestService) Cancel(id uint, userID uint) (*RequestResponseDTO, error) {
	request, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if request.UserID != userID {
		return nil, errors.New("la solicitud no pertenece al usuario")
	}
	if request.Status.IsFinal() {
		return nil, errors.New("la solicitud ya tiene una resolución final")
	}

	return s.UpdateStatus(id, models.RequestStatusCancelada)
}
