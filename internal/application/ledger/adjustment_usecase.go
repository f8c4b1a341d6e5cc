package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// AdjustmentUseCase punto de entrada orquestador de ajustes: valida, aplica el
// guard de sobre-deducción y enruta a un ajuste único o al motor FIFO.
// Toda la secuencia (lectura de stock, decisión y escrituras) corre en una
// transacción con la fila de la variante bloqueada, de modo que el guard
// equivale a un compare-and-decrement atómico.
type AdjustmentUseCase struct {
	txRunner TxRunner
	fifo     *FIFODeductionEngine
}

// NewAdjustmentUseCase construye el caso de uso.
func NewAdjustmentUseCase(txRunner TxRunner, fifo *FIFODeductionEngine) *AdjustmentUseCase {
	return &AdjustmentUseCase{txRunner: txRunner, fifo: fifo}
}

// AdjustInput entrada para un ajuste manual o automático.
// LotID vacío en una salida significa "descuenta N de la variante" y delega en
// el motor FIFO; LotID presente significa "descuenta de este lote concreto".
type AdjustInput struct {
	VariantID      string
	LotID          string
	QuantityChange int64 // != 0; positivo entrada, negativo salida
	Reason         string
	ReferenceType  string
	ReferenceID    string
	UserID         string
}

// AdjustResult resultado de un ajuste.
type AdjustResult struct {
	ID             string
	VariantID      string
	QuantityChange int64
	Reason         string
	NewStock       int64
}

// Adjust valida la entrada, bloquea la variante, aplica el guard de stock para
// salidas y escribe el o los ajustes. Falla con InsufficientStock (sin escribir
// nada) si una salida dejaría el stock agregado por debajo de cero.
func (uc *AdjustmentUseCase) Adjust(ctx context.Context, input AdjustInput) (*AdjustResult, error) {
	if input.VariantID == "" || input.UserID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.QuantityChange == 0 {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidReason(input.Reason) {
		return nil, domain.ErrInvalidInput
	}
	// confirm_receive solo lo escribe ReceivingUseCase, siempre ligado a un lote;
	// así se garantiza que nunca existan recepciones headless.
	if input.Reason == entity.ReasonConfirmReceive {
		return nil, domain.ErrInvalidInput
	}

	result := &AdjustResult{
		VariantID:      input.VariantID,
		QuantityChange: input.QuantityChange,
		Reason:         input.Reason,
	}

	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		adjRepo repository.AdjustmentRepository,
		variantRepo repository.VariantCatalog,
		flowLog repository.FlowLog,
		auditLog repository.AuditLog,
	) error {
		if err := variantRepo.LockForAdjust(ctx, input.VariantID); err != nil {
			return err
		}

		// Guard de sobre-deducción, serializado por el lock de la variante
		if input.QuantityChange < 0 {
			current, err := computeStock(ctx, lotRepo, adjRepo, input.VariantID)
			if err != nil {
				return err
			}
			if current+input.QuantityChange < 0 {
				return &domain.InsufficientStockError{
					VariantID: input.VariantID,
					Available: current,
					Requested: -input.QuantityChange,
				}
			}
		}

		// Salida sin lote nombrado: deducción FIFO multi-lote
		if input.QuantityChange < 0 && input.LotID == "" {
			created, err := uc.fifo.deductInTx(ctx, lotRepo, adjRepo, flowLog, auditLog, DeductInput{
				VariantID:     input.VariantID,
				Quantity:      -input.QuantityChange,
				Reason:        input.Reason,
				ReferenceType: input.ReferenceType,
				ReferenceID:   input.ReferenceID,
				UserID:        input.UserID,
			})
			if err != nil {
				return err
			}
			result.ID = created[0].ID
			newStock, err := computeStock(ctx, lotRepo, adjRepo, input.VariantID)
			if err != nil {
				return err
			}
			result.NewStock = newStock
			return nil
		}

		// Entrada, o salida contra un lote nombrado: una sola fila
		target := entity.Unbound()
		if input.LotID != "" {
			lot, err := lotRepo.GetByID(ctx, input.LotID)
			if err != nil {
				return err
			}
			if lot == nil || lot.VariantID != input.VariantID {
				return domain.ErrNotFound
			}
			target = entity.LotBound(lot.ID)
		}

		adj := &entity.InventoryAdjustment{
			ID:             uuid.New().String(),
			VariantID:      input.VariantID,
			Target:         target,
			QuantityChange: input.QuantityChange,
			Reason:         input.Reason,
			ReferenceType:  input.ReferenceType,
			ReferenceID:    input.ReferenceID,
			AdjustedBy:     input.UserID,
			AdjustedAt:     time.Now(),
		}
		if err := adjRepo.Create(ctx, adj); err != nil {
			return err
		}

		qty := input.QuantityChange
		if qty < 0 {
			qty = -qty
		}
		if err := flowLog.Record(ctx, input.VariantID, flowEventForReason(input.Reason),
			qty, input.ReferenceType, input.ReferenceID); err != nil {
			return err
		}
		if err := auditLog.RecordCreate(ctx, input.UserID, "inventory_adjustments", adj.ID, auditPayload(adj)); err != nil {
			return err
		}

		result.ID = adj.ID
		newStock, err := computeStock(ctx, lotRepo, adjRepo, input.VariantID)
		if err != nil {
			return err
		}
		result.NewStock = newStock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
