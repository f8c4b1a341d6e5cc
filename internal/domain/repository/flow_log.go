package repository

import "context"

// Tipos de evento de flujo de producto.
const (
	FlowPurchase   = "purchase"
	FlowSale       = "sale"
	FlowReturn     = "return"
	FlowAdjustment = "adjustment"
)

// FlowLog rastro append-only de movimientos de stock para reporting.
// Colaborador externo; las escrituras deben ocurrir dentro de la misma
// transacción que los ajustes que las originan.
type FlowLog interface {
	Record(ctx context.Context, variantID, eventType string, quantity int64, referenceType, referenceID string) error
}
