package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
	"github.com/tu-usuario/pos-ledger/pkg/logger"
)

// FIFODeductionEngine consume lotes disponibles en orden de recepción (lote
// más antiguo primero) para satisfacer una salida de stock, escribiendo un
// ajuste por lote consumido. Si los lotes no alcanzan a explicar la cantidad
// pedida, completa con un ajuste headless (desfase de conciliación) en vez de
// fallar: el guard agregado del AdjustmentUseCase ya aprobó la operación.
type FIFODeductionEngine struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewFIFODeductionEngine construye el motor.
func NewFIFODeductionEngine(txRunner TxRunner, log *logger.Logger) *FIFODeductionEngine {
	return &FIFODeductionEngine{txRunner: txRunner, log: log}
}

// DeductInput entrada para una deducción FIFO.
type DeductInput struct {
	VariantID     string
	Quantity      int64 // cantidad a descontar, > 0
	Reason        string
	ReferenceType string
	ReferenceID   string
	UserID        string
}

// DeductResult resultado de una deducción FIFO.
type DeductResult struct {
	Deducted int64
}

// Deduct ejecuta la deducción en su propia transacción. Invocado normalmente
// vía AdjustmentUseCase (que aplica el guard agregado antes de delegar).
func (e *FIFODeductionEngine) Deduct(ctx context.Context, input DeductInput) (*DeductResult, error) {
	if input.VariantID == "" || input.UserID == "" || input.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidReason(input.Reason) || input.Reason == entity.ReasonConfirmReceive {
		return nil, domain.ErrInvalidInput
	}

	err := e.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		adjRepo repository.AdjustmentRepository,
		variantRepo repository.VariantCatalog,
		flowLog repository.FlowLog,
		auditLog repository.AuditLog,
	) error {
		if err := variantRepo.LockForAdjust(ctx, input.VariantID); err != nil {
			return err
		}
		_, err := e.deductInTx(ctx, lotRepo, adjRepo, flowLog, auditLog, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &DeductResult{Deducted: input.Quantity}, nil
}

// deductInTx recorre los lotes disponibles (SeqNo ascendente) dentro de la
// transacción del caller y devuelve los ajustes creados. Emite un único evento
// de flujo agregado por el total pedido, no uno por lote.
func (e *FIFODeductionEngine) deductInTx(
	ctx context.Context,
	lotRepo repository.LotRepository,
	adjRepo repository.AdjustmentRepository,
	flowLog repository.FlowLog,
	auditLog repository.AuditLog,
	input DeductInput,
) ([]*entity.InventoryAdjustment, error) {
	available, err := lotRepo.ListAvailableFIFO(ctx, input.VariantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	remaining := input.Quantity
	var created []*entity.InventoryAdjustment

	for _, al := range available {
		if remaining == 0 {
			break
		}
		take := remaining
		if al.Remaining < take {
			take = al.Remaining
		}
		adj := &entity.InventoryAdjustment{
			ID:             uuid.New().String(),
			VariantID:      input.VariantID,
			Target:         entity.LotBound(al.Lot.ID),
			QuantityChange: -take,
			Reason:         input.Reason,
			ReferenceType:  input.ReferenceType,
			ReferenceID:    input.ReferenceID,
			AdjustedBy:     input.UserID,
			AdjustedAt:     now,
		}
		if err := adjRepo.Create(ctx, adj); err != nil {
			return nil, err
		}
		created = append(created, adj)
		remaining -= take
	}

	if remaining > 0 {
		// Desfase de conciliación: el agregado dijo que alcanzaba pero los
		// lotes no lo explican. Se completa headless y se deja señal operativa.
		e.log.Warn().
			Str("variant_id", input.VariantID).
			Int64("shortfall", remaining).
			Str("reference_type", input.ReferenceType).
			Str("reference_id", input.ReferenceID).
			Msg("deducción FIFO sin lotes suficientes: ajuste headless por el resto")

		adj := &entity.InventoryAdjustment{
			ID:             uuid.New().String(),
			VariantID:      input.VariantID,
			Target:         entity.Unbound(),
			QuantityChange: -remaining,
			Reason:         input.Reason,
			ReferenceType:  input.ReferenceType,
			ReferenceID:    input.ReferenceID,
			AdjustedBy:     input.UserID,
			AdjustedAt:     now,
		}
		if err := adjRepo.Create(ctx, adj); err != nil {
			return nil, err
		}
		created = append(created, adj)
	}

	// Una deducción solo produce eventos sale o adjustment: aunque la razón sea
	// return (devolución a proveedor), el movimiento es una salida de stock.
	eventType := repository.FlowAdjustment
	if input.Reason == entity.ReasonSale {
		eventType = repository.FlowSale
	}
	if err := flowLog.Record(ctx, input.VariantID, eventType,
		input.Quantity, input.ReferenceType, input.ReferenceID); err != nil {
		return nil, err
	}
	for _, adj := range created {
		if err := auditLog.RecordCreate(ctx, input.UserID, "inventory_adjustments", adj.ID, auditPayload(adj)); err != nil {
			return nil, err
		}
	}
	return created, nil
}

// flowEventForReason deriva el tipo de evento de flujo desde la razón.
func flowEventForReason(reason string) string {
	switch reason {
	case entity.ReasonSale:
		return repository.FlowSale
	case entity.ReasonReturn:
		return repository.FlowReturn
	default:
		return repository.FlowAdjustment
	}
}

// auditPayload arma el payload de auditoría de un ajuste.
func auditPayload(adj *entity.InventoryAdjustment) map[string]any {
	lotID, _ := adj.Target.LotID()
	return map[string]any{
		"variant_id":      adj.VariantID,
		"lot_id":          lotID,
		"quantity_change": adj.QuantityChange,
		"reason":          adj.Reason,
		"reference_type":  adj.ReferenceType,
		"reference_id":    adj.ReferenceID,
	}
}
