package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryLot representa un lote recibido de una variante. Es append-only:
// Quantity es la cantidad original recibida y nunca cambia; lo que queda
// disponible del lote se deriva de los ajustes ligados a él.
type InventoryLot struct {
	ID                  string
	VariantID           string
	SeqNo               int64 // secuencia monótona por variante, asignada al insertar
	BatchNumber         string
	ManufacturedDate    *time.Time
	ExpiryDate          *time.Time
	Quantity            int64 // cantidad original recibida, inmutable
	UnitCost            decimal.Decimal
	PurchaseOrderItemID string
	CreatedAt           time.Time
}
