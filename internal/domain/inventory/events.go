package inventory

import (
	"context"
	"time"
)

// Eventos de dominio emitidos después de confirmar la transacción. El
// transporte (sockets, notificaciones, reportes) es un colaborador externo;
// el núcleo solo los entrega al EventSink configurado.
const (
	EventBalanceChanged           = "BalanceChanged"
	EventMovementRequestCreated   = "MovementRequestCreated"
	EventMovementRequestCancelled = "MovementRequestCancelled"
	EventMovementRequestFulfilled = "MovementRequestFulfilled"
	EventMovementRequestReceived  = "MovementRequestReceived"
	EventShipmentReturned         = "ShipmentReturned"
	EventStockReturnCreated       = "StockReturnCreated"
)

// Event es un hecho de dominio ya ocurrido (post-commit).
type Event struct {
	Type        string
	TenantID    string
	AggregateID string
	OccurredAt  time.Time
	Data        map[string]any
}

// NewEvent construye un evento con la hora actual.
func NewEvent(eventType, tenantID, aggregateID string, data map[string]any) Event {
	return Event{
		Type:        eventType,
		TenantID:    tenantID,
		AggregateID: aggregateID,
		OccurredAt:  time.Now(),
		Data:        data,
	}
}

// EventSink recibe eventos de dominio después del commit. Las implementaciones
// no deben fallar la operación de negocio: errores de entrega se registran y
// se siguen de largo.
type EventSink interface {
	Publish(ctx context.Context, events ...Event)
}
