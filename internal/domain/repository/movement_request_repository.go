package repository

import (
	"context"

	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
)

// MovementRequestRepository define el puerto para las solicitudes de traslado
// y sus ítems. Las actualizaciones de estado condicionan por versión.
type MovementRequestRepository interface {
	// Create persiste la solicitud con sus ítems.
	Create(ctx context.Context, request *entity.MovementRequest) error
	// GetByID devuelve la solicitud con ítems; nil si no existe.
	GetByID(ctx context.Context, tenantID, id string) (*entity.MovementRequest, error)
	// GetForUpdate bloquea la fila de la solicitud y carga los ítems.
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.MovementRequest, error)
	// Update persiste estado, confirmación, fulfilled_at y los remanentes de
	// los ítems, condicionando por la versión leída (la incrementa en 1);
	// ErrConcurrentModification si la versión no coincide.
	Update(ctx context.Context, request *entity.MovementRequest) error
	// List lista solicitudes del tenant, opcionalmente por estado.
	List(ctx context.Context, tenantID, status string, limit, offset int) ([]*entity.MovementRequest, error)
}
