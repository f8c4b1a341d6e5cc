package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// ReceivingUseCase registra la recepción de un lote: inserta el lote y su
// ajuste confirm_receive en una sola transacción. Es el único escritor de
// lotes y de ajustes confirm_receive del sistema.
type ReceivingUseCase struct {
	txRunner TxRunner
}

// NewReceivingUseCase construye el caso de uso.
func NewReceivingUseCase(txRunner TxRunner) *ReceivingUseCase {
	return &ReceivingUseCase{txRunner: txRunner}
}

// ReceiveInput entrada para recibir un lote.
type ReceiveInput struct {
	VariantID           string
	Quantity            int64
	UnitCost            decimal.Decimal
	BatchNumber         string
	ManufacturedDate    *time.Time
	ExpiryDate          *time.Time
	PurchaseOrderItemID string
	UserID              string
}

// ReceiveResult resultado de una recepción.
type ReceiveResult struct {
	LotID     string
	VariantID string
	Quantity  int64
	NewStock  int64
}

// Receive inserta el lote, su ajuste confirm_receive (quantityChange = +cantidad,
// ligado al lote) y los eventos de flujo/auditoría, todo en una transacción.
// Garantiza: en éxito el stock sube exactamente en Quantity; en fallo no
// persiste nada.
func (uc *ReceivingUseCase) Receive(ctx context.Context, input ReceiveInput) (*ReceiveResult, error) {
	if input.VariantID == "" || input.UserID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if input.UnitCost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	result := &ReceiveResult{VariantID: input.VariantID, Quantity: input.Quantity}

	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		adjRepo repository.AdjustmentRepository,
		variantRepo repository.VariantCatalog,
		flowLog repository.FlowLog,
		auditLog repository.AuditLog,
	) error {
		// Serializa contra ajustes concurrentes de la misma variante
		if err := variantRepo.LockForAdjust(ctx, input.VariantID); err != nil {
			return err
		}

		lot := &entity.InventoryLot{
			ID:                  uuid.New().String(),
			VariantID:           input.VariantID,
			BatchNumber:         input.BatchNumber,
			ManufacturedDate:    input.ManufacturedDate,
			ExpiryDate:          input.ExpiryDate,
			Quantity:            input.Quantity,
			UnitCost:            input.UnitCost,
			PurchaseOrderItemID: input.PurchaseOrderItemID,
			CreatedAt:           now,
		}
		if err := lotRepo.Create(ctx, lot); err != nil {
			return err
		}

		adj := &entity.InventoryAdjustment{
			ID:             uuid.New().String(),
			VariantID:      input.VariantID,
			Target:         entity.LotBound(lot.ID),
			QuantityChange: input.Quantity,
			Reason:         entity.ReasonConfirmReceive,
			ReferenceType:  referenceTypeForPO(input.PurchaseOrderItemID),
			ReferenceID:    input.PurchaseOrderItemID,
			AdjustedBy:     input.UserID,
			AdjustedAt:     now,
		}
		if err := adjRepo.Create(ctx, adj); err != nil {
			return err
		}

		if err := flowLog.Record(ctx, input.VariantID, repository.FlowPurchase, input.Quantity,
			referenceTypeForPO(input.PurchaseOrderItemID), input.PurchaseOrderItemID); err != nil {
			return err
		}
		if err := auditLog.RecordCreate(ctx, input.UserID, "inventory_lots", lot.ID, map[string]any{
			"variant_id":   lot.VariantID,
			"batch_number": lot.BatchNumber,
			"quantity":     lot.Quantity,
			"unit_cost":    lot.UnitCost,
		}); err != nil {
			return err
		}

		newStock, err := computeStock(ctx, lotRepo, adjRepo, input.VariantID)
		if err != nil {
			return err
		}
		result.LotID = lot.ID
		result.NewStock = newStock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func referenceTypeForPO(purchaseOrderItemID string) string {
	if purchaseOrderItemID == "" {
		return ""
	}
	return "purchase_order_item"
}
