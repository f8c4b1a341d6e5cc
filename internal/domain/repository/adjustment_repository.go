package repository

import (
	"context"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// AdjustmentRepository acceso al registro append-only de ajustes.
// Create asigna ID y SeqNo (secuencia por variante); nada actualiza ni borra ajustes.
type AdjustmentRepository interface {
	Create(ctx context.Context, adj *entity.InventoryAdjustment) error
	// ListByVariant lista ajustes de una variante, más reciente primero (SeqNo descendente).
	ListByVariant(ctx context.Context, variantID string, limit, offset int) ([]*entity.InventoryAdjustment, error)
	// ListByReference lista los ajustes escritos contra (referenceType, referenceID)
	// para la variante, más reciente primero (SeqNo descendente).
	ListByReference(ctx context.Context, variantID, referenceType, referenceID string) ([]*entity.InventoryAdjustment, error)
	// SumStockDelta suma los ajustes que cuentan para el stock de la variante
	// (excluye confirm_receive ligado a lote; ver ledger.CountsTowardStock).
	SumStockDelta(ctx context.Context, variantID string) (int64, error)
	// SumStockDeltaBatch igual que SumStockDelta para varias variantes en una pasada.
	SumStockDeltaBatch(ctx context.Context, variantIDs []string) (map[string]int64, error)
	// SumByLot suma los ajustes ligados a un lote con razón distinta de
	// confirm_receive (término de ajuste de RemainingQuantity).
	SumByLot(ctx context.Context, lotID string) (int64, error)
	// SumReversals suma lo ya revertido contra un ajuste original (tope de
	// idempotencia del motor de restauración).
	SumReversals(ctx context.Context, adjustmentID string) (int64, error)
}
