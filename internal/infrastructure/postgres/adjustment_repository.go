package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

const adjustmentColumns = `id, variant_id, lot_id, seq_no, quantity_change, reason, reference_type, reference_id, reversal_of, adjusted_by, adjusted_at`

// AdjustmentRepo implementación de AdjustmentRepository sobre PostgreSQL (usable con pool o tx).
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador de ajustes. Pasar pool o tx (Querier).
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

// Create persiste un ajuste y le asigna su secuencia por variante.
// El SeqNo se calcula dentro del INSERT bajo el lock de la variante, lo que da
// un orden total por variante sin depender del reloj de pared.
func (r *AdjustmentRepo) Create(ctx context.Context, adj *entity.InventoryAdjustment) error {
	if adj.ID == "" {
		adj.ID = uuid.New().String()
	}
	lotID, bound := adj.Target.LotID()
	var lotIDParam *string
	if bound {
		lotIDParam = &lotID
	}
	query := `
		INSERT INTO inventory_adjustments (id, variant_id, lot_id, seq_no, quantity_change, reason, reference_type, reference_id, reversal_of, adjusted_by, adjusted_at)
		VALUES ($1, $2, $3, (SELECT coalesce(max(seq_no), 0) + 1 FROM inventory_adjustments WHERE variant_id = $2), $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq_no`
	err := r.q.QueryRow(ctx, query,
		adj.ID, adj.VariantID, lotIDParam, adj.QuantityChange, adj.Reason,
		nullStr(adj.ReferenceType), nullStr(adj.ReferenceID), nullStr(adj.ReversalOf),
		adj.AdjustedBy, adj.AdjustedAt,
	).Scan(&adj.SeqNo)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create adjustment: %w", err)
	}
	return nil
}

// ListByVariant ajustes de una variante paginados, más reciente primero.
func (r *AdjustmentRepo) ListByVariant(ctx context.Context, variantID string, limit, offset int) ([]*entity.InventoryAdjustment, error) {
	query := `SELECT ` + adjustmentColumns + `
		FROM inventory_adjustments WHERE variant_id = $1
		ORDER BY seq_no DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, variantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	return collectAdjustments(rows)
}

// ListByReference ajustes escritos contra (referenceType, referenceID) para la
// variante, más reciente primero (orden inverso de aplicación).
func (r *AdjustmentRepo) ListByReference(ctx context.Context, variantID, referenceType, referenceID string) ([]*entity.InventoryAdjustment, error) {
	query := `SELECT ` + adjustmentColumns + `
		FROM inventory_adjustments
		WHERE variant_id = $1 AND reference_type = $2 AND reference_id = $3
		ORDER BY seq_no DESC`
	rows, err := r.q.Query(ctx, query, variantID, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("list adjustments by reference: %w", err)
	}
	return collectAdjustments(rows)
}

// SumStockDelta término de ajustes de la fórmula computedStock: excluye los
// confirm_receive ligados a lote (la cantidad del lote ya cuenta).
func (r *AdjustmentRepo) SumStockDelta(ctx context.Context, variantID string) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx,
		`SELECT coalesce(sum(quantity_change), 0)
		 FROM inventory_adjustments
		 WHERE variant_id = $1 AND NOT (reason = 'confirm_receive' AND lot_id IS NOT NULL)`,
		variantID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum stock delta: %w", err)
	}
	return total, nil
}

// SumStockDeltaBatch igual que SumStockDelta para varias variantes en una pasada.
func (r *AdjustmentRepo) SumStockDeltaBatch(ctx context.Context, variantIDs []string) (map[string]int64, error) {
	sums := make(map[string]int64, len(variantIDs))
	if len(variantIDs) == 0 {
		return sums, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT variant_id, coalesce(sum(quantity_change), 0)
		 FROM inventory_adjustments
		 WHERE variant_id = ANY($1) AND NOT (reason = 'confirm_receive' AND lot_id IS NOT NULL)
		 GROUP BY variant_id`,
		variantIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("sum stock delta batch: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var total int64
		if err := rows.Scan(&id, &total); err != nil {
			return nil, fmt.Errorf("scan stock delta: %w", err)
		}
		sums[id] = total
	}
	return sums, rows.Err()
}

// SumByLot término de ajustes de remainingQuantity para un lote.
func (r *AdjustmentRepo) SumByLot(ctx context.Context, lotID string) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx,
		`SELECT coalesce(sum(quantity_change), 0)
		 FROM inventory_adjustments WHERE lot_id = $1 AND reason <> 'confirm_receive'`,
		lotID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum by lot: %w", err)
	}
	return total, nil
}

// SumReversals total ya revertido contra un ajuste original.
func (r *AdjustmentRepo) SumReversals(ctx context.Context, adjustmentID string) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx,
		`SELECT coalesce(sum(quantity_change), 0)
		 FROM inventory_adjustments WHERE reversal_of = $1`,
		adjustmentID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum reversals: %w", err)
	}
	return total, nil
}

func collectAdjustments(rows pgx.Rows) ([]*entity.InventoryAdjustment, error) {
	defer rows.Close()
	var list []*entity.InventoryAdjustment
	for rows.Next() {
		var adj entity.InventoryAdjustment
		var lotID, refType, refID, reversalOf *string
		if err := rows.Scan(&adj.ID, &adj.VariantID, &lotID, &adj.SeqNo,
			&adj.QuantityChange, &adj.Reason, &refType, &refID, &reversalOf,
			&adj.AdjustedBy, &adj.AdjustedAt); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		if lotID != nil {
			adj.Target = entity.LotBound(*lotID)
		} else {
			adj.Target = entity.Unbound()
		}
		adj.ReferenceType = strOrEmpty(refType)
		adj.ReferenceID = strOrEmpty(refID)
		adj.ReversalOf = strOrEmpty(reversalOf)
		list = append(list, &adj)
	}
	return list, rows.Err()
}
