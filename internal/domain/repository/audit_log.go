package repository

import "context"

// AuditLog rastro de cumplimiento por creación de entidades. Colaborador
// externo; misma exigencia transaccional que FlowLog.
type AuditLog interface {
	RecordCreate(ctx context.Context, userID, entityName, entityID string, payload any) error
}
