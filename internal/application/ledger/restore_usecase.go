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

// RestorationEngine revierte una deducción previa ligada a una referencia
// (ej. deshacer una línea de venta al procesar una devolución), devolviendo
// las cantidades a los mismos lotes de los que salieron, en orden inverso de
// aplicación: el lote tocado de último por la deducción original recupera
// stock primero.
type RestorationEngine struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewRestorationEngine construye el motor.
func NewRestorationEngine(txRunner TxRunner, log *logger.Logger) *RestorationEngine {
	return &RestorationEngine{txRunner: txRunner, log: log}
}

// RestoreInput entrada para una restauración.
type RestoreInput struct {
	VariantID        string
	ReferenceType    string // referencia de la deducción original
	ReferenceID      string
	Quantity         int64 // cantidad a restaurar, > 0
	UserID           string
	Reason           string
	NewReferenceType string // referencia del evento que restaura (línea de devolución...)
	NewReferenceID   string
}

// RestoreResult resultado de una restauración.
type RestoreResult struct {
	Restored int64
	NewStock int64
}

// Restore carga los ajustes escritos contra la referencia original, los
// recorre de más reciente a más antiguo (SeqNo descendente) y escribe un
// ajuste positivo por lote, ligado al mismo lote que la deducción original.
// Cada fila nueva registra ReversalOf; lo restaurable por fila original queda
// topado por lo que aún no se ha revertido, de modo que restaurar dos veces la
// misma referencia no duplica stock por lote. Lo que la historia de la
// referencia no explica se completa con un ajuste headless. Una transacción
// por llamada.
func (e *RestorationEngine) Restore(ctx context.Context, input RestoreInput) (*RestoreResult, error) {
	if input.VariantID == "" || input.UserID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.ReferenceType == "" || input.ReferenceID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidReason(input.Reason) || input.Reason == entity.ReasonConfirmReceive {
		return nil, domain.ErrInvalidInput
	}

	result := &RestoreResult{Restored: input.Quantity}

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

		originals, err := adjRepo.ListByReference(ctx, input.VariantID, input.ReferenceType, input.ReferenceID)
		if err != nil {
			return err
		}

		now := time.Now()
		remaining := input.Quantity
		var created []*entity.InventoryAdjustment

		for _, orig := range originals {
			if remaining == 0 {
				break
			}
			if orig.QuantityChange >= 0 {
				continue // solo las deducciones son reversibles
			}
			reversed, err := adjRepo.SumReversals(ctx, orig.ID)
			if err != nil {
				return err
			}
			reversible := -orig.QuantityChange - reversed
			if reversible <= 0 {
				continue
			}
			take := remaining
			if reversible < take {
				take = reversible
			}
			adj := &entity.InventoryAdjustment{
				ID:             uuid.New().String(),
				VariantID:      input.VariantID,
				Target:         orig.Target, // de vuelta al mismo lote
				QuantityChange: take,
				Reason:         input.Reason,
				ReferenceType:  input.NewReferenceType,
				ReferenceID:    input.NewReferenceID,
				ReversalOf:     orig.ID,
				AdjustedBy:     input.UserID,
				AdjustedAt:     now,
			}
			if err := adjRepo.Create(ctx, adj); err != nil {
				return err
			}
			created = append(created, adj)
			remaining -= take
		}

		if remaining > 0 {
			// Se pidió restaurar más de lo que la historia de la referencia
			// explica: resto headless y señal operativa de desfase.
			e.log.Warn().
				Str("variant_id", input.VariantID).
				Int64("unexplained", remaining).
				Str("reference_type", input.ReferenceType).
				Str("reference_id", input.ReferenceID).
				Msg("restauración sin historia suficiente: ajuste headless por el resto")

			adj := &entity.InventoryAdjustment{
				ID:             uuid.New().String(),
				VariantID:      input.VariantID,
				Target:         entity.Unbound(),
				QuantityChange: remaining,
				Reason:         input.Reason,
				ReferenceType:  input.NewReferenceType,
				ReferenceID:    input.NewReferenceID,
				AdjustedBy:     input.UserID,
				AdjustedAt:     now,
			}
			if err := adjRepo.Create(ctx, adj); err != nil {
				return err
			}
			created = append(created, adj)
		}

		// Un único evento de flujo agregado por el total restaurado
		if err := flowLog.Record(ctx, input.VariantID, flowEventForReason(input.Reason),
			input.Quantity, input.NewReferenceType, input.NewReferenceID); err != nil {
			return err
		}
		for _, adj := range created {
			if err := auditLog.RecordCreate(ctx, input.UserID, "inventory_adjustments", adj.ID, auditPayload(adj)); err != nil {
				return err
			}
		}

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
