package event

import (
	"context"

	"github.com/tu-usuario/farmacore-api/internal/domain/inventory"
	"github.com/tu-usuario/farmacore-api/pkg/logger"
)

var _ inventory.EventSink = (*LogSink)(nil)

// LogSink publica los eventos de dominio como entradas estructuradas del log.
// Punto de enganche para un transporte real (websockets, cola) sin tocar los
// casos de uso.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log}
}

// Publish registra cada evento. Nunca falla la operación de negocio.
func (s *LogSink) Publish(_ context.Context, events ...inventory.Event) {
	for _, ev := range events {
		s.log.Info().
			Str("event", ev.Type).
			Str("tenant_id", ev.TenantID).
			Str("aggregate_id", ev.AggregateID).
			Time("occurred_at", ev.OccurredAt).
			Interface("data", ev.Data).
			Msg("evento de dominio")
	}
}
