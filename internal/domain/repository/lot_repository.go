package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// AvailableLot es un lote con su cantidad restante derivada, listo para el
// recorrido FIFO.
type AvailableLot struct {
	Lot       *entity.InventoryLot
	Remaining int64
}

// ExpiringLot es un lote próximo a vencer con contexto de producto/variante
// para la proyección de alertas.
type ExpiringLot struct {
	Lot         *entity.InventoryLot
	SKU         string
	VariantName string
	ProductName string
}

// LotRepository acceso al registro append-only de lotes.
// Create asigna ID y SeqNo (secuencia por variante); nada actualiza ni borra lotes.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.InventoryLot) error
	GetByID(ctx context.Context, id string) (*entity.InventoryLot, error)
	// ListByVariant lista los lotes de una variante, más reciente primero.
	ListByVariant(ctx context.Context, variantID string) ([]*entity.InventoryLot, error)
	// ListAvailableFIFO lista los lotes con cantidad restante > 0 en orden de
	// recepción (SeqNo ascendente, lote más antiguo primero).
	ListAvailableFIFO(ctx context.Context, variantID string) ([]AvailableLot, error)
	// SumQuantity suma la cantidad original de todos los lotes de la variante.
	SumQuantity(ctx context.Context, variantID string) (int64, error)
	// SumQuantityBatch igual que SumQuantity para varias variantes en una pasada.
	SumQuantityBatch(ctx context.Context, variantIDs []string) (map[string]int64, error)
	// ListExpiringWithin lotes con vencimiento en [from, to] de variantes no
	// borradas, ordenados por fecha de vencimiento ascendente.
	ListExpiringWithin(ctx context.Context, from, to time.Time) ([]ExpiringLot, error)
}
