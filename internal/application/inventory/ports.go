package inventory

import (
	"context"

	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
)

// TxRunner ejecuta callbacks dentro de una transacción del almacén de datos.
// Toda operación del núcleo (aplicar movimiento, despachar, recibir, devolver)
// corre completa dentro de un Run: las lecturas que informan la decisión se
// re-hacen adentro y las escrituras condicionan por versión o fila bloqueada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		balanceRepo repository.BalanceRepository,
		movementRepo repository.StockMovementRepository,
		requestRepo repository.MovementRequestRepository,
		returnRepo repository.StockReturnRepository,
	) error) error
}
