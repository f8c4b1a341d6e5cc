package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, variant_id, seq_no, batch_number, manufactured_date, expiry_date, quantity, unit_cost, purchase_order_item_id, created_at`

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// Create persiste un lote y le asigna su secuencia por variante.
// El SeqNo se calcula dentro del INSERT; el lock de la variante en la misma
// transacción garantiza que no haya dos inserciones con la misma secuencia.
func (r *LotRepo) Create(ctx context.Context, lot *entity.InventoryLot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_lots (id, variant_id, seq_no, batch_number, manufactured_date, expiry_date, quantity, unit_cost, purchase_order_item_id, created_at)
		VALUES ($1, $2, (SELECT coalesce(max(seq_no), 0) + 1 FROM inventory_lots WHERE variant_id = $2), $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq_no`
	err := r.q.QueryRow(ctx, query,
		lot.ID, lot.VariantID, nullStr(lot.BatchNumber),
		lot.ManufacturedDate, lot.ExpiryDate,
		lot.Quantity, lot.UnitCost, nullStr(lot.PurchaseOrderItemID), lot.CreatedAt,
	).Scan(&lot.SeqNo)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create lot: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID; nil si no existe.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.InventoryLot, error) {
	query := `SELECT ` + lotColumns + ` FROM inventory_lots WHERE id = $1`
	lot, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return lot, nil
}

// ListByVariant lista los lotes de una variante, más reciente primero.
func (r *LotRepo) ListByVariant(ctx context.Context, variantID string) ([]*entity.InventoryLot, error) {
	query := `SELECT ` + lotColumns + ` FROM inventory_lots WHERE variant_id = $1 ORDER BY seq_no DESC`
	rows, err := r.q.Query(ctx, query, variantID)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryLot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, lot)
	}
	return list, rows.Err()
}

// ListAvailableFIFO lotes con cantidad restante derivada > 0 en orden de
// recepción (SeqNo ascendente). La cantidad restante se computa en SQL:
// cantidad original + ajustes ligados al lote con razón != confirm_receive.
func (r *LotRepo) ListAvailableFIFO(ctx context.Context, variantID string) ([]repository.AvailableLot, error) {
	query := `
		SELECT l.id, l.variant_id, l.seq_no, l.batch_number, l.manufactured_date, l.expiry_date,
		       l.quantity, l.unit_cost, l.purchase_order_item_id, l.created_at,
		       l.quantity + coalesce(sum(a.quantity_change), 0) AS remaining
		FROM inventory_lots l
		LEFT JOIN inventory_adjustments a
		  ON a.lot_id = l.id AND a.reason <> 'confirm_receive'
		WHERE l.variant_id = $1
		GROUP BY l.id
		HAVING l.quantity + coalesce(sum(a.quantity_change), 0) > 0
		ORDER BY l.seq_no ASC`
	rows, err := r.q.Query(ctx, query, variantID)
	if err != nil {
		return nil, fmt.Errorf("list available lots: %w", err)
	}
	defer rows.Close()
	var list []repository.AvailableLot
	for rows.Next() {
		var lot entity.InventoryLot
		var batchNumber, poItemID *string
		var remaining int64
		if err := rows.Scan(&lot.ID, &lot.VariantID, &lot.SeqNo, &batchNumber,
			&lot.ManufacturedDate, &lot.ExpiryDate, &lot.Quantity, &lot.UnitCost,
			&poItemID, &lot.CreatedAt, &remaining); err != nil {
			return nil, fmt.Errorf("scan available lot: %w", err)
		}
		lot.BatchNumber = strOrEmpty(batchNumber)
		lot.PurchaseOrderItemID = strOrEmpty(poItemID)
		list = append(list, repository.AvailableLot{Lot: &lot, Remaining: remaining})
	}
	return list, rows.Err()
}

// SumQuantity suma la cantidad original de los lotes de la variante.
func (r *LotRepo) SumQuantity(ctx context.Context, variantID string) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx,
		`SELECT coalesce(sum(quantity), 0) FROM inventory_lots WHERE variant_id = $1`,
		variantID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum lot quantity: %w", err)
	}
	return total, nil
}

// SumQuantityBatch suma por variante para varias variantes en una pasada.
func (r *LotRepo) SumQuantityBatch(ctx context.Context, variantIDs []string) (map[string]int64, error) {
	sums := make(map[string]int64, len(variantIDs))
	if len(variantIDs) == 0 {
		return sums, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT variant_id, coalesce(sum(quantity), 0)
		 FROM inventory_lots WHERE variant_id = ANY($1) GROUP BY variant_id`,
		variantIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("sum lot quantity batch: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var total int64
		if err := rows.Scan(&id, &total); err != nil {
			return nil, fmt.Errorf("scan lot sum: %w", err)
		}
		sums[id] = total
	}
	return sums, rows.Err()
}

// ListExpiringWithin lotes con vencimiento en [from, to] de variantes y
// productos no borrados, ordenados por vencimiento ascendente.
func (r *LotRepo) ListExpiringWithin(ctx context.Context, from, to time.Time) ([]repository.ExpiringLot, error) {
	query := `
		SELECT l.id, l.variant_id, l.seq_no, l.batch_number, l.manufactured_date, l.expiry_date,
		       l.quantity, l.unit_cost, l.purchase_order_item_id, l.created_at,
		       v.sku, v.name, p.name
		FROM inventory_lots l
		JOIN variants v ON v.id = l.variant_id AND v.deleted_at IS NULL
		JOIN products p ON p.id = v.product_id AND p.deleted_at IS NULL
		WHERE l.expiry_date IS NOT NULL AND l.expiry_date BETWEEN $1 AND $2
		ORDER BY l.expiry_date ASC`
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list expiring lots: %w", err)
	}
	defer rows.Close()
	var list []repository.ExpiringLot
	for rows.Next() {
		var lot entity.InventoryLot
		var batchNumber, poItemID *string
		var el repository.ExpiringLot
		if err := rows.Scan(&lot.ID, &lot.VariantID, &lot.SeqNo, &batchNumber,
			&lot.ManufacturedDate, &lot.ExpiryDate, &lot.Quantity, &lot.UnitCost,
			&poItemID, &lot.CreatedAt, &el.SKU, &el.VariantName, &el.ProductName); err != nil {
			return nil, fmt.Errorf("scan expiring lot: %w", err)
		}
		lot.BatchNumber = strOrEmpty(batchNumber)
		lot.PurchaseOrderItemID = strOrEmpty(poItemID)
		el.Lot = &lot
		list = append(list, el)
	}
	return list, rows.Err()
}

func scanLot(row pgx.Row) (*entity.InventoryLot, error) {
	var lot entity.InventoryLot
	var batchNumber, poItemID *string
	err := row.Scan(&lot.ID, &lot.VariantID, &lot.SeqNo, &batchNumber,
		&lot.ManufacturedDate, &lot.ExpiryDate, &lot.Quantity, &lot.UnitCost,
		&poItemID, &lot.CreatedAt)
	if err != nil {
		return nil, err
	}
	lot.BatchNumber = strOrEmpty(batchNumber)
	lot.PurchaseOrderItemID = strOrEmpty(poItemID)
	return &lot, nil
}
