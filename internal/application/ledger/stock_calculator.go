package ledger

import (
	"context"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// StockCalculator proyección de solo-lectura: deriva el stock actual desde el
// ledger (lotes + ajustes) sin efectos secundarios. Nunca se cachea como verdad.
type StockCalculator struct {
	lotRepo repository.LotRepository
	adjRepo repository.AdjustmentRepository
}

// NewStockCalculator construye la proyección sobre los repositorios dados.
func NewStockCalculator(lotRepo repository.LotRepository, adjRepo repository.AdjustmentRepository) *StockCalculator {
	return &StockCalculator{lotRepo: lotRepo, adjRepo: adjRepo}
}

// GetStock aplica la fórmula computedStock para una variante.
func (c *StockCalculator) GetStock(ctx context.Context, variantID string) (int64, error) {
	return computeStock(ctx, c.lotRepo, c.adjRepo, variantID)
}

// GetStockBatch computa el stock de varias variantes en una pasada, para
// evitar consultas N+1 desde vistas de listado.
func (c *StockCalculator) GetStockBatch(ctx context.Context, variantIDs []string) (map[string]int64, error) {
	lotSums, err := c.lotRepo.SumQuantityBatch(ctx, variantIDs)
	if err != nil {
		return nil, err
	}
	adjSums, err := c.adjRepo.SumStockDeltaBatch(ctx, variantIDs)
	if err != nil {
		return nil, err
	}
	stocks := make(map[string]int64, len(variantIDs))
	for _, id := range variantIDs {
		stocks[id] = lotSums[id] + adjSums[id]
	}
	return stocks, nil
}

// RemainingQuantity deriva lo disponible de un lote concreto. Nunca negativo
// en un ledger consistente; los callers deben tolerar cero.
func (c *StockCalculator) RemainingQuantity(ctx context.Context, lot *entity.InventoryLot) (int64, error) {
	delta, err := c.adjRepo.SumByLot(ctx, lot.ID)
	if err != nil {
		return 0, err
	}
	return lot.Quantity + delta, nil
}

// computeStock fórmula computedStock sobre repositorios (del pool o de una tx).
func computeStock(ctx context.Context, lotRepo repository.LotRepository, adjRepo repository.AdjustmentRepository, variantID string) (int64, error) {
	lotSum, err := lotRepo.SumQuantity(ctx, variantID)
	if err != nil {
		return 0, err
	}
	adjSum, err := adjRepo.SumStockDelta(ctx, variantID)
	if err != nil {
		return 0, err
	}
	return lotSum + adjSum, nil
}
