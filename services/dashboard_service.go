package services

import (
	"github.com/SeraphMX/grupofinancial-hub-sub000/models"
	"gorm.io/gorm"
)

// DashboardService calcula los agregados que alimentan las gráficas del panel
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService crea una nueva instancia de DashboardService
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// StatusCount representa el conteo de solicitudes por estado
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// ProductSummary representa los totales por producto
type ProductSummary struct {
	ProductType string  `json:"product_type"`
	Count       int64   `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}

// MonthlyPoint representa un punto de la serie mensual de solicitudes
type MonthlyPoint struct {
	Month       string  `json:"month"`
	Count       int64   `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}

// DashboardSummary agrupa los agregados del panel
type DashboardSummary struct {
	TotalRequests   int64            `json:"total_requests"`
	ActiveRequests  int64            `json:"active_requests"`
	ByStatus        []StatusCount    `json:"by_status"`
	ByProduct       []ProductSummary `json:"by_product"`
	MonthlyRequests []MonthlyPoint   `json:"monthly_requests"`
}

// GetSummary arma el resumen completo del panel
func (s *DashboardService) GetSummary() (*DashboardSummary, error) {
	summary := &DashboardSummary{}

	if err := s.db.Model(&models.CreditRequest{}).Count(&summary.TotalRequests).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.CreditRequest{}).
		Where("status NOT IN ?", []models.RequestStatus{
			models.RequestStatusAprobada,
			models.RequestStatusRechazada,
			models.RequestStatusCancelada,
		}).
		Count(&summary.ActiveRequests).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.CreditRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&summary.ByStatus).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.CreditRequest{}).
		Select("product_type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total_amount").
		Group("product_type").
		Scan(&summary.ByProduct).Error; err != nil {
		return nil, err
	}

	// Serie de los últimos 12 meses
	if err := s.db.Model(&models.CreditRequest{}).
		Select("TO_CHAR(created_at, 'YYYY-MM') AS month, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total_amount").
		Where("created_at >= NOW() - INTERVAL '12 months'").
		Group("month").
		Order("month ASC").
		Scan(&summary.MonthlyRequests).Error; err != nil {
		return nil, err
	}

	return summary, nil
}

// CountPendingReviews regresa cuántos documentos esperan revisión
func (s *DashboardService) CountPendingReviews() (int64, error) {
	var count int64
	err := s.db.Model(&models.RequestDocument{}).
		Where("status = ?", models.DocumentStatusInReview).
		Count(&count).Error
	return count, err
}
