package ledger

import "github.com/tu-usuario/pos-ledger/internal/domain/entity"

// Fórmulas puras de proyección del ledger (servicio de dominio).
// El stock nunca se guarda como contador mutable: se deriva de lotes y ajustes.

// CountsTowardStock indica si un ajuste entra en la suma de stock de la variante.
// La recepción de un lote (confirm_receive ligado a lote) se excluye porque la
// cantidad del lote ya cuenta; un confirm_receive headless no debería existir,
// pero si existiera sí contaría para no perder unidades.
func CountsTowardStock(adj *entity.InventoryAdjustment) bool {
	return !(adj.Reason == entity.ReasonConfirmReceive && adj.Target.IsBound())
}

// ComputedStock deriva el stock actual de una variante:
// Σ cantidad de lotes + Σ ajustes que cuentan (ver CountsTowardStock).
// Los lotes y ajustes deben pertenecer todos a la misma variante.
func ComputedStock(lots []*entity.InventoryLot, adjustments []*entity.InventoryAdjustment) int64 {
	var total int64
	for _, lot := range lots {
		total += lot.Quantity
	}
	for _, adj := range adjustments {
		if CountsTowardStock(adj) {
			total += adj.QuantityChange
		}
	}
	return total
}

// RemainingQuantity deriva lo que queda disponible de un lote concreto:
// cantidad original + Σ ajustes ligados al lote con razón distinta de
// confirm_receive. En un ledger consistente nunca es negativo, pero los
// callers deben tolerar cero.
func RemainingQuantity(lot *entity.InventoryLot, adjustments []*entity.InventoryAdjustment) int64 {
	remaining := lot.Quantity
	for _, adj := range adjustments {
		lotID, bound := adj.Target.LotID()
		if !bound || lotID != lot.ID {
			continue
		}
		if adj.Reason == entity.ReasonConfirmReceive {
			continue
		}
		remaining += adj.QuantityChange
	}
	return remaining
}
