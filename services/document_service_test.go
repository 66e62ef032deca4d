package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SeraphMX/grupofinancial-hub-sub000/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openMockDB abre una conexión GORM sobre un *sql.DB simulado
func openMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error al crear la base simulada: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("error al abrir GORM sobre la base simulada: %v", err)
	}
	return db, mock
}

// fakeFeed implementa DocumentChangeFeed en memoria: cada publicación se
// entrega de inmediato al suscriptor de invalidación
type fakeFeed struct {
	published  []uint
	invalidate func(uint)
}

func (f *fakeFeed) PublishDocumentChange(ctx context.Context, requestID uint) error {
	f.published = append(f.published, requestID)
	if f.invalidate != nil {
		f.invalidate(requestID)
	}
	return nil
}

func (f *fakeFeed) SubscribeDocumentChanges(ctx context.Context, requestID uint, onChange func()) {}

func (f *fakeFeed) SubscribeAllDocumentChanges(ctx context.Context, onChange func(requestID uint)) {
	f.invalidate = onChange
}

func expectLoadRequest(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT \* FROM "credit_requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "user_id"}).
			AddRow(1, "documentacion", 7))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
			AddRow(7, "cliente@example.com"))
}

// El envío a revisión es una sola actualización condicionada por solicitud,
// espacio y estado pendiente; repetirlo sin pendientes no toca nada y no
// vuelve a notificar.
func TestSendToReviewConditionalUpdate(t *testing.T) {
	db, mock := openMockDB(t)
	feed := &fakeFeed{}
	svc := NewDocumentService(db, nil, feed, nil)

	expectLoadRequest(mock)
	mock.ExpectExec(`UPDATE "request_documents" SET .+ WHERE request_id = \$\d+ AND slot_type = \$\d+ AND status = \$\d+`).
		WithArgs("in_review", sqlmock.AnyArg(), 1, "estado-cuenta", "pending").
		WillReturnResult(sqlmock.NewResult(0, 2))

	updated, err := svc.SendToReview(context.Background(), 1, "estado-cuenta", 7, models.RoleAsesor)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if updated != 2 {
		t.Errorf("esperaba 2 documentos actualizados, obtuvo %d", updated)
	}
	if len(feed.published) != 1 || feed.published[0] != 1 {
		t.Errorf("esperaba una notificación para la solicitud 1, obtuvo %v", feed.published)
	}

	// Segunda llamada sin pendientes: cero filas y ninguna notificación nueva
	expectLoadRequest(mock)
	mock.ExpectExec(`UPDATE "request_documents" SET .+ WHERE request_id = \$\d+ AND slot_type = \$\d+ AND status = \$\d+`).
		WithArgs("in_review", sqlmock.AnyArg(), 1, "estado-cuenta", "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err = svc.SendToReview(context.Background(), 1, "estado-cuenta", 7, models.RoleAsesor)
	if err != nil {
		t.Fatalf("error inesperado en la repetición: %v", err)
	}
	if updated != 0 {
		t.Errorf("sin pendientes esperaba 0 actualizados, obtuvo %d", updated)
	}
	if len(feed.published) != 1 {
		t.Errorf("la repetición sin efecto no debe notificar, publicaciones: %v", feed.published)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("consultas pendientes o de más: %v", err)
	}
}
