package services

import "context"

// DocumentChangeFeed publica y entrega notificaciones de cambios en los
// documentos de una solicitud. realtime.Feed lo implementa sobre pub/sub
// de Redis; las pruebas usan una implementación en memoria.
type DocumentChangeFeed interface {
	PublishDocumentChange(ctx context.Context, requestID uint) error
	SubscribeDocumentChanges(ctx context.Context, requestID uint, onChange func())
	SubscribeAllDocumentChanges(ctx context.Context, onChange func(requestID uint))
}
