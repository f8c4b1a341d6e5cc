package repository

import "context"

// LowStockItem es una variante en o por debajo de su umbral de alerta, con el
// stock derivado del ledger y contexto de producto.
type LowStockItem struct {
	VariantID     string
	SKU           string
	VariantName   string
	ProductName   string
	CurrentStock  int64
	StockAlertCap int64
}

// VariantCatalog vista de solo-lectura (más el lock de escritura) sobre el
// catálogo de variantes, propiedad del módulo de productos.
type VariantCatalog interface {
	// GetAlertThreshold devuelve el umbral de alerta de stock de la variante.
	GetAlertThreshold(ctx context.Context, variantID string) (int64, error)
	// LockForAdjust bloquea la fila de la variante (SELECT FOR UPDATE) para
	// serializar lectura-decisión-escritura entre ajustes concurrentes.
	// Devuelve domain.ErrNotFound si la variante no existe o está borrada.
	LockForAdjust(ctx context.Context, variantID string) error
	// ListLowStock variantes no borradas (ni su producto) con stock derivado
	// <= umbral, ordenadas por stock ascendente.
	ListLowStock(ctx context.Context) ([]LowStockItem, error)
}
