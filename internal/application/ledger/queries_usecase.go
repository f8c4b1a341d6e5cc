package ledger

import (
	"context"

	"github.com/tu-usuario/pos-ledger/internal/application/dto"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// QueriesUseCase consultas de listado sobre el ledger (lotes y ajustes).
type QueriesUseCase struct {
	lotRepo         repository.LotRepository
	adjRepo         repository.AdjustmentRepository
	defaultPageSize int
	maxPageSize     int
}

// NewQueriesUseCase construye el caso de uso con los límites de paginación.
func NewQueriesUseCase(lotRepo repository.LotRepository, adjRepo repository.AdjustmentRepository, defaultPageSize, maxPageSize int) *QueriesUseCase {
	return &QueriesUseCase{
		lotRepo:         lotRepo,
		adjRepo:         adjRepo,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// GetLots lotes de una variante, más reciente primero.
func (uc *QueriesUseCase) GetLots(ctx context.Context, variantID string) ([]dto.LotDTO, error) {
	if variantID == "" {
		return nil, domain.ErrInvalidInput
	}
	lots, err := uc.lotRepo.ListByVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LotDTO, 0, len(lots))
	for _, lot := range lots {
		out = append(out, dto.LotDTO{
			ID:                  lot.ID,
			VariantID:           lot.VariantID,
			BatchNumber:         lot.BatchNumber,
			ManufacturedDate:    lot.ManufacturedDate,
			ExpiryDate:          lot.ExpiryDate,
			Quantity:            lot.Quantity,
			UnitCost:            lot.UnitCost,
			PurchaseOrderItemID: lot.PurchaseOrderItemID,
			CreatedAt:           lot.CreatedAt,
		})
	}
	return out, nil
}

// GetAdjustments ajustes de una variante paginados, más reciente primero.
func (uc *QueriesUseCase) GetAdjustments(ctx context.Context, variantID string, limit, offset int) ([]dto.AdjustmentDTO, error) {
	if variantID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = uc.defaultPageSize
	}
	if limit > uc.maxPageSize {
		limit = uc.maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	adjs, err := uc.adjRepo.ListByVariant(ctx, variantID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AdjustmentDTO, 0, len(adjs))
	for _, adj := range adjs {
		lotID, _ := adj.Target.LotID()
		out = append(out, dto.AdjustmentDTO{
			ID:             adj.ID,
			VariantID:      adj.VariantID,
			LotID:          lotID,
			QuantityChange: adj.QuantityChange,
			Reason:         adj.Reason,
			ReferenceType:  adj.ReferenceType,
			ReferenceID:    adj.ReferenceID,
			AdjustedBy:     adj.AdjustedBy,
			AdjustedAt:     adj.AdjustedAt,
		})
	}
	return out, nil
}
