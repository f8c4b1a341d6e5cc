package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveRequest body para POST /api/inventory/receivings.
type ReceiveRequest struct {
	VariantID           string          `json:"variant_id"`
	Quantity            int64           `json:"quantity"`
	UnitCost            decimal.Decimal `json:"unit_cost"`
	BatchNumber         string          `json:"batch_number,omitempty"`
	ManufacturedDate    *time.Time      `json:"manufactured_date,omitempty"`
	ExpiryDate          *time.Time      `json:"expiry_date,omitempty"`
	PurchaseOrderItemID string          `json:"purchase_order_item_id,omitempty"`
}

// ReceiveResponse respuesta de una recepción.
type ReceiveResponse struct {
	LotID     string `json:"lot_id"`
	VariantID string `json:"variant_id"`
	Quantity  int64  `json:"quantity"`
	NewStock  int64  `json:"new_stock"`
}

// AdjustRequest body para POST /api/inventory/adjustments.
// lot_id vacío en una salida delega en la deducción FIFO.
type AdjustRequest struct {
	VariantID      string `json:"variant_id"`
	LotID          string `json:"lot_id,omitempty"`
	QuantityChange int64  `json:"quantity_change"`
	Reason         string `json:"reason"`
	ReferenceType  string `json:"reference_type,omitempty"`
	ReferenceID    string `json:"reference_id,omitempty"`
}

// AdjustResponse respuesta de un ajuste.
type AdjustResponse struct {
	ID             string `json:"id"`
	VariantID      string `json:"variant_id"`
	QuantityChange int64  `json:"quantity_change"`
	Reason         string `json:"reason"`
	NewStock       int64  `json:"new_stock"`
}

// RestoreRequest body para POST /api/inventory/restorations.
type RestoreRequest struct {
	VariantID        string `json:"variant_id"`
	ReferenceType    string `json:"reference_type"`
	ReferenceID      string `json:"reference_id"`
	Quantity         int64  `json:"quantity"`
	Reason           string `json:"reason"`
	NewReferenceType string `json:"new_reference_type,omitempty"`
	NewReferenceID   string `json:"new_reference_id,omitempty"`
}

// RestoreResponse respuesta de una restauración.
type RestoreResponse struct {
	Restored int64 `json:"restored"`
	NewStock int64 `json:"new_stock"`
}

// StockResponse stock derivado de una variante.
type StockResponse struct {
	VariantID string `json:"variant_id"`
	Stock     int64  `json:"stock"`
}

// LotDTO lote para listados.
type LotDTO struct {
	ID                  string          `json:"id"`
	VariantID           string          `json:"variant_id"`
	BatchNumber         string          `json:"batch_number,omitempty"`
	ManufacturedDate    *time.Time      `json:"manufactured_date,omitempty"`
	ExpiryDate          *time.Time      `json:"expiry_date,omitempty"`
	Quantity            int64           `json:"quantity"`
	UnitCost            decimal.Decimal `json:"unit_cost"`
	PurchaseOrderItemID string          `json:"purchase_order_item_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

// AdjustmentDTO ajuste para listados.
type AdjustmentDTO struct {
	ID             string    `json:"id"`
	VariantID      string    `json:"variant_id"`
	LotID          string    `json:"lot_id,omitempty"` // vacío = ajuste headless
	QuantityChange int64     `json:"quantity_change"`
	Reason         string    `json:"reason"`
	ReferenceType  string    `json:"reference_type,omitempty"`
	ReferenceID    string    `json:"reference_id,omitempty"`
	AdjustedBy     string    `json:"adjusted_by"`
	AdjustedAt     time.Time `json:"adjusted_at"`
}

// LowStockItemDTO variante en o por debajo de su umbral de alerta.
type LowStockItemDTO struct {
	VariantID     string `json:"variant_id"`
	SKU           string `json:"sku"`
	VariantName   string `json:"variant_name"`
	ProductName   string `json:"product_name"`
	CurrentStock  int64  `json:"current_stock"`
	StockAlertCap int64  `json:"stock_alert_cap"`
}

// ExpiringLotDTO lote próximo a vencer con contexto de producto/variante.
type ExpiringLotDTO struct {
	LotID       string     `json:"lot_id"`
	VariantID   string     `json:"variant_id"`
	SKU         string     `json:"sku"`
	VariantName string     `json:"variant_name"`
	ProductName string     `json:"product_name"`
	BatchNumber string     `json:"batch_number,omitempty"`
	ExpiryDate  *time.Time `json:"expiry_date"`
	Quantity    int64      `json:"quantity"`
}
