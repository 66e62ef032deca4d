package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/SeraphMX/grupofinancial-hub-sub000/models"
	"github.com/SeraphMX/grupofinancial-hub-sub000/utils"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// SlotStatus representa el estado derivado de un espacio documental
type SlotStatus string

const (
	SlotStatusEmpty    SlotStatus = "empty"
	SlotStatusPending  SlotStatus = "pending"
	SlotStatusInReview SlotStatus = "in_review"
	SlotStatusAccepted SlotStatus = "accepted"
	SlotStatusRejected SlotStatus = "rejected"
	SlotStatusExcluded SlotStatus = "excluded"
)

// Orden total de prioridad para elegir el documento vigente de un espacio
// de archivo único: un rechazado queda al fondo para que el usuario vuelva
// a subir, y un aceptado domina sobre cualquier rechazado viejo.
var statusPriority = map[models.DocumentStatus]int{
	models.DocumentStatusRejected: 0,
	models.DocumentStatusInReview: 1,
	models.DocumentStatusPending:  2,
	models.DocumentStatusAccepted: 3,
}

// SlotState representa el estado de un espacio documental dentro del checklist
type SlotState struct {
	Slot        models.RequiredDocumentSlot `json:"slot"`
	Status      SlotStatus                  `json:"status"`
	Current     *models.RequestDocument     `json:"current,omitempty"`
	Documents   []models.RequestDocument    `json:"documents,omitempty"`
	HasPending  bool                        `json:"has_pending"`
	HasRejected bool                        `json:"has_rejected"`
}

// Checklist representa el estado documental completo de una solicitud
type Checklist struct {
	RequestID uint        `json:"request_id"`
	Slots     []SlotState `json:"slots"`
	Progress  int         `json:"progress"`
}

// BuildChecklist deriva el checklist a partir de los espacios resueltos y los
// documentos ya consultados. Es una derivación pura: no toca la base, tolera
// documentos cuyo espacio ya no resuelve y nunca falla por datos parciales.
func BuildChecklist(requestID uint, slots []models.RequiredDocumentSlot, docs []models.RequestDocument) *Checklist {
	bySlot := make(map[string][]models.RequestDocument)
	for _, d := range docs {
		bySlot[d.SlotType] = append(bySlot[d.SlotType], d)
	}

	checklist := &Checklist{
		RequestID: requestID,
		Slots:     make([]SlotState, 0, len(slots)),
	}

	requiredTotal := 0
	requiredDone := 0

	for _, slot := range slots {
		state := buildSlotState(slot, bySlot[slot.ID])
		checklist.Slots = append(checklist.Slots, state)

		if slot.Required {
			requiredTotal++
			if state.Status == SlotStatusAccepted || state.Status == SlotStatusInReview {
				requiredDone++
			}
		}
	}

	// El avance se calcula solo sobre los espacios obligatorios; sin
	// obligatorios el avance es 0, nunca NaN.
	if requiredTotal > 0 {
		checklist.Progress = int(math.Round(100 * float64(requiredDone) / float64(requiredTotal)))
	}

	return checklist
}

// buildSlotState deriva el estado de un espacio a partir de sus documentos
func buildSlotState(slot models.RequiredDocumentSlot, docs []models.RequestDocument) SlotState {
	state := SlotState{Slot: slot, Status: SlotStatusEmpty}

	// Un marcador de exclusión domina cualquier otra cosa
	for i := range docs {
		if docs[i].IsExclusionMarker() {
			marker := docs[i]
			state.Status = SlotStatusExcluded
			state.Current = &marker
			return state
		}
	}

	// Descartamos registros excluidos que no sean marcadores
	files := make([]models.RequestDocument, 0, len(docs))
	for _, d := range docs {
		if d.Status == models.DocumentStatusExcluded {
			continue
		}
		files = append(files, d)
	}

	if len(files) == 0 {
		return state
	}

	if slot.MultipleFiles {
		sort.SliceStable(files, func(i, j int) bool {
			return files[i].CreatedAt.Before(files[j].CreatedAt)
		})
		state.Documents = files
		best := files[0]
		for _, d := range files {
			if d.Status == models.DocumentStatusPending {
				state.HasPending = true
			}
			if d.Status == models.DocumentStatusRejected {
				state.HasRejected = true
			}
			if betterCandidate(d, best) {
				best = d
			}
		}
		state.Status = SlotStatus(best.Status)
		return state
	}

	// Archivo único: el documento vigente es el de mayor prioridad de
	// estado; a igual prioridad gana el más reciente.
	current := files[0]
	for _, d := range files[1:] {
		if betterCandidate(d, current) {
			current = d
		}
	}
	state.Current = &current
	state.Status = SlotStatus(current.Status)
	state.HasRejected = current.Status == models.DocumentStatusRejected
	return state
}

// betterCandidate decide si a debe desplazar a b como documento vigente
func betterCandidate(a, b models.RequestDocument) bool {
	pa, pb := statusPriority[a.Status], statusPriority[b.Status]
	if pa != pb {
		return pa > pb
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// ChecklistService arma el checklist documental de una solicitud y mantiene
// una caché de lectura por solicitud que se invalida con el canal de cambios.
// Las consultas concurrentes de una misma solicitud se funden en una sola ida
// a la base.
type ChecklistService struct {
	db    *gorm.DB
	feed  DocumentChangeFeed
	group singleflight.Group

	mu    sync.RWMutex
	cache map[uint]*Checklist
}

// NewChecklistService crea una nueva instancia de ChecklistService con un
// suscriptor permanente que invalida la caché de la solicitud afectada en
// cada cambio de documentos, venga de este proceso o de otro.
func NewChecklistService(db *gorm.DB, feed DocumentChangeFeed) *ChecklistService {
	s := &ChecklistService{
		db:    db,
		feed:  feed,
		cache: make(map[uint]*Checklist),
	}
	feed.SubscribeAllDocumentChanges(context.Background(), s.Invalidate)
	return s
}

// Get regresa el checklist de una solicitud, desde caché cuando está vigente
func (s *ChecklistService) Get(ctx context.Context, requestID uint) (*Checklist, error) {
	s.mu.RLock()
	cached, ok := s.cache[requestID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	return s.refresh(ctx, requestID)
}

// Invalidate descarta la entrada en caché de una solicitud
func (s *ChecklistService) Invalidate(requestID uint) {
	s.mu.Lock()
	delete(s.cache, requestID)
	s.mu.Unlock()
}

// refresh consulta un snapshot fresco, fundiendo llamadas concurrentes
func (s *ChecklistService) refresh(ctx context.Context, requestID uint) (*Checklist, error) {
	v, err, _ := s.group.Do(requestKey(requestID), func() (interface{}, error) {
		checklist, err := s.fetch(ctx, requestID)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[requestID] = checklist
		s.mu.Unlock()
		return checklist, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Checklist), nil
}

// fetch arma el checklist desde la base de datos
func (s *ChecklistService) fetch(ctx context.Context, requestID uint) (*Checklist, error) {
	var request models.CreditRequest
	if err := s.db.WithContext(ctx).First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("solicitud no encontrada")
		}
		return nil, err
	}

	slots, err := models.ResolveRequiredDocuments(request.ProductType, request.ClientType, request.Conditions)
	if err != nil && !errors.Is(err, models.ErrUnknownProduct) {
		return nil, err
	}
	if errors.Is(err, models.ErrUnknownProduct) {
		// Degradamos a los documentos base pero dejamos rastro
		utils.LogError("solicitud %d con producto no reconocido %q", requestID, request.ProductType)
	}

	var docs []models.RequestDocument
	if err := s.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&docs).Error; err != nil {
		return nil, err
	}

	return BuildChecklist(requestID, slots, docs), nil
}

// Watch invalida la caché y recalcula cada vez que el canal de cambios
// notifica movimiento en los documentos de la solicitud, hasta que el
// contexto se cancele. onUpdate recibe cada snapshot recalculado.
func (s *ChecklistService) Watch(ctx context.Context, requestID uint, onUpdate func(*Checklist)) {
	s.feed.SubscribeDocumentChanges(ctx, requestID, func() {
		s.Invalidate(requestID)
		checklist, err := s.refresh(ctx, requestID)
		if err != nil {
			utils.LogError("error al recalcular checklist de la solicitud %d: %v", requestID, err)
			return
		}
		if onUpdate != nil {
			onUpdate(checklist)
		}
	})
}

func requestKey(requestID uint) string {
	return "solicitud:" + strconv.FormatUint(uint64(requestID), 10)
}
