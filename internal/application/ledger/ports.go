package ledger

import (
	"context"

	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor del ledger:
// toda operación multi-fila (recepción, deducción FIFO, restauración) escribe
// dentro de un único Run, y cualquier fallo revierte todo.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		adjRepo repository.AdjustmentRepository,
		variantRepo repository.VariantCatalog,
		flowLog repository.FlowLog,
		auditLog repository.AuditLog,
	) error) error
}
