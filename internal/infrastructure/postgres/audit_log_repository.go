package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ repository.AuditLog = (*AuditLogRepo)(nil)

// AuditLogRepo rastro de cumplimiento (audit_logs). Misma exigencia
// transaccional que FlowLogRepo.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// RecordCreate agrega un evento de creación de entidad con su payload en JSONB.
func (r *AuditLogRepo) RecordCreate(ctx context.Context, userID, entityName, entityID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	query := `
		INSERT INTO audit_logs (id, user_id, action, entity_name, entity_id, payload, created_at)
		VALUES ($1, $2, 'create', $3, $4, $5, $6)`
	_, err = r.q.Exec(ctx, query,
		uuid.New().String(), userID, entityName, entityID, body, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}
	return nil
}
