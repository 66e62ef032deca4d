package realtime

import (
	"context"
	"fmt"

	"github.com/SeraphMX/grupofinancial-hub-sub000/config"
	"github.com/redis/go-redis/v9"
)

// Feed publica y entrega notificaciones de cambio por solicitud usando
// pub/sub de Redis. Las notificaciones no llevan carga útil: quien escucha
// debe volver a consultar el estado completo.
type Feed struct {
	rdb *redis.Client
}

// NewFeed crea el canal de notificaciones verificando la conexión a Redis
func NewFeed(cfg *config.Config) (*Feed, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("error de conexión a redis: %v", err)
	}
	return &Feed{rdb: rdb}, nil
}

// Close cierra la conexión a Redis
func (f *Feed) Close() error {
	return f.rdb.Close()
}

// channelFor arma el nombre del canal de una solicitud
func channelFor(requestID uint) string {
	return fmt.Sprintf("solicitudes:%d:documentos", requestID)
}

// PublishDocumentChange notifica que los documentos de una solicitud cambiaron
func (f *Feed) PublishDocumentChange(ctx context.Context, requestID uint) error {
	return f.rdb.Publish(ctx, channelFor(requestID), "changed").Err()
}

// SubscribeDocumentChanges entrega una notificación sin payload por cada
// cambio en los documentos de la solicitud hasta que el contexto se cancele.
// onChange se invoca desde una goroutine propia del suscriptor.
func (f *Feed) SubscribeDocumentChanges(ctx context.Context, requestID uint, onChange func()) {
	sub := f.rdb.Subscribe(ctx, channelFor(requestID))

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				onChange()
			}
		}
	}()
}

// SubscribeAllDocumentChanges entrega el ID de solicitud de cada cambio de
// documentos publicado por cualquier proceso, hasta que el contexto se
// cancele. Se usa para invalidar cachés por solicitud.
func (f *Feed) SubscribeAllDocumentChanges(ctx context.Context, onChange func(requestID uint)) {
	sub := f.rdb.PSubscribe(ctx, "solicitudes:*:documentos")

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var requestID uint
				if _, err := fmt.Sscanf(msg.Channel, "solicitudes:%d:documentos", &requestID); err == nil {
					onChange(requestID)
				}
			}
		}
	}()
}
