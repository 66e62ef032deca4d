package utils

import (
	"sync"
	"time"
)

// Metrics contiene las métricas de la aplicación
type Metrics struct {
	mu sync.RWMutex

	// Métricas de peticiones
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Métricas de documentos
	DocumentsUploaded int64
	DocumentsDeleted  int64
	DocumentsAccepted int64
	DocumentsRejected int64
	LastDocumentOp    time.Time

	// Métricas de solicitudes de crédito
	RequestsCreated   int64
	RequestsApproved  int64
	RequestsRejected  int64
	RequestsCancelled int64

	// Métricas de errores
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics regresa la instancia única de métricas
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			ErrorTypes: make(map[string]int64),
		}
	})
	return metrics
}

// RecordRequest registra las métricas de una petición HTTP
func (m *Metrics) RecordRequest(duration time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if failed {
		m.FailedRequests++
	}
}

// RecordDocumentOperation registra una operación sobre documentos
func (m *Metrics) RecordDocumentOperation(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastDocumentOp = time.Now()

	switch operation {
	case "upload":
		m.DocumentsUploaded++
	case "delete":
		m.DocumentsDeleted++
	case "accept":
		m.DocumentsAccepted++
	case "reject":
		m.DocumentsRejected++
	}
}

// RecordRequestLifecycle registra un cambio de estado de solicitud
func (m *Metrics) RecordRequestLifecycle(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch event {
	case "created":
		m.RequestsCreated++
	case "approved":
		m.RequestsApproved++
	case "rejected":
		m.RequestsRejected++
	case "cancelled":
		m.RequestsCancelled++
	}
}

// RecordError registra las métricas de un error
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}

	m.ErrorTypes[errorType]++
}

// GetMetricsSnapshot regresa una copia de las métricas actuales
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	errorTypes := make(map[string]int64, len(m.ErrorTypes))
	for k, v := range m.ErrorTypes {
		errorTypes[k] = v
	}

	return map[string]interface{}{
		"total_requests":     m.TotalRequests,
		"failed_requests":    m.FailedRequests,
		"average_latency":    m.AverageLatency.String(),
		"documents_uploaded": m.DocumentsUploaded,
		"documents_deleted":  m.DocumentsDeleted,
		"documents_accepted": m.DocumentsAccepted,
		"documents_rejected": m.DocumentsRejected,
		"requests_created":   m.RequestsCreated,
		"requests_approved":  m.RequestsApproved,
		"requests_rejected":  m.RequestsRejected,
		"requests_cancelled": m.RequestsCancelled,
		"error_count":        m.ErrorCount,
		"error_types":        errorTypes,
	}
}

// ResetMetrics reinicia todas las métricas
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.RequestLatency = 0
	m.AverageLatency = 0
	m.DocumentsUploaded = 0
	m.DocumentsDeleted = 0
	m.DocumentsAccepted = 0
	m.DocumentsRejected = 0
	m.RequestsCreated = 0
	m.RequestsApproved = 0
	m.RequestsRejected = 0
	m.RequestsCancelled = 0
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}
