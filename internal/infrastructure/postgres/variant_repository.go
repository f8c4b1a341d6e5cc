package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ repository.VariantCatalog = (*VariantRepo)(nil)

// VariantRepo vista sobre el catálogo de variantes (propiedad del módulo de
// productos), limitada a lo que el ledger necesita: umbral de alerta, lock de
// escritura y la proyección de stock bajo.
type VariantRepo struct {
	q Querier
}

// NewVariantRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVariantRepository(q Querier) *VariantRepo {
	return &VariantRepo{q: q}
}

// GetAlertThreshold devuelve el umbral de alerta de stock de la variante.
func (r *VariantRepo) GetAlertThreshold(ctx context.Context, variantID string) (int64, error) {
	var cap int64
	err := r.q.QueryRow(ctx,
		`SELECT stock_alert_cap FROM variants WHERE id = $1 AND deleted_at IS NULL`,
		variantID,
	).Scan(&cap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get alert threshold: %w", err)
	}
	return cap, nil
}

// LockForAdjust bloquea la fila de la variante (SELECT FOR UPDATE) para
// serializar lectura-decisión-escritura entre ajustes concurrentes de la
// misma variante.
func (r *VariantRepo) LockForAdjust(ctx context.Context, variantID string) error {
	var id string
	err := r.q.QueryRow(ctx,
		`SELECT id FROM variants WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
		variantID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock variant: %w", err)
	}
	return nil
}

// ListLowStock computa el stock derivado por variante en SQL y devuelve las
// variantes no borradas (ni su producto) en o por debajo del umbral, ordenadas
// por stock ascendente.
func (r *VariantRepo) ListLowStock(ctx context.Context) ([]repository.LowStockItem, error) {
	query := `
		SELECT v.id, v.sku, v.name, p.name,
		       coalesce(lt.total, 0) + coalesce(ad.delta, 0) AS current_stock,
		       v.stock_alert_cap
		FROM variants v
		JOIN products p ON p.id = v.product_id AND p.deleted_at IS NULL
		LEFT JOIN (
			SELECT variant_id, sum(quantity) AS total
			FROM inventory_lots GROUP BY variant_id
		) lt ON lt.variant_id = v.id
		LEFT JOIN (
			SELECT variant_id, sum(quantity_change) AS delta
			FROM inventory_adjustments
			WHERE NOT (reason = 'confirm_receive' AND lot_id IS NOT NULL)
			GROUP BY variant_id
		) ad ON ad.variant_id = v.id
		WHERE v.deleted_at IS NULL
		  AND coalesce(lt.total, 0) + coalesce(ad.delta, 0) <= v.stock_alert_cap
		ORDER BY current_stock ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	var list []repository.LowStockItem
	for rows.Next() {
		var it repository.LowStockItem
		if err := rows.Scan(&it.VariantID, &it.SKU, &it.VariantName, &it.ProductName,
			&it.CurrentStock, &it.StockAlertCap); err != nil {
			return nil, fmt.Errorf("scan low stock: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}
