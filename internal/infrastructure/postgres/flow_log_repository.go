package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ repository.FlowLog = (*FlowLogRepo)(nil)

// FlowLogRepo rastro append-only de movimientos de stock (product_flows).
// Se construye sobre la misma tx que los ajustes para que el evento y las
// filas del ledger se confirmen o reviertan juntos.
type FlowLogRepo struct {
	q Querier
}

// NewFlowLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFlowLogRepository(q Querier) *FlowLogRepo {
	return &FlowLogRepo{q: q}
}

// Record agrega un evento de flujo.
func (r *FlowLogRepo) Record(ctx context.Context, variantID, eventType string, quantity int64, referenceType, referenceID string) error {
	query := `
		INSERT INTO product_flows (id, variant_id, event_type, quantity, reference_type, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		uuid.New().String(), variantID, eventType, quantity,
		nullStr(referenceType), nullStr(referenceID), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("record flow event: %w", err)
	}
	return nil
}
