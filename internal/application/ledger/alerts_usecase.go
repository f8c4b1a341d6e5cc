package ledger

import (
	"context"
	"time"

	"github.com/tu-usuario/pos-ledger/internal/application/dto"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// AlertsUseCase proyecciones de solo-lectura sobre el ledger: stock bajo y
// lotes próximos a vencer.
type AlertsUseCase struct {
	lotRepo           repository.LotRepository
	variantRepo       repository.VariantCatalog
	defaultWindowDays int
}

// NewAlertsUseCase construye el caso de uso. defaultWindowDays se usa cuando
// el caller no indica ventana de vencimiento.
func NewAlertsUseCase(lotRepo repository.LotRepository, variantRepo repository.VariantCatalog, defaultWindowDays int) *AlertsUseCase {
	return &AlertsUseCase{
		lotRepo:           lotRepo,
		variantRepo:       variantRepo,
		defaultWindowDays: defaultWindowDays,
	}
}

// ListLowStock variantes no borradas con computedStock <= umbral de alerta,
// ordenadas por stock ascendente.
func (uc *AlertsUseCase) ListLowStock(ctx context.Context) ([]dto.LowStockItemDTO, error) {
	items, err := uc.variantRepo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, dto.LowStockItemDTO{
			VariantID:     it.VariantID,
			SKU:           it.SKU,
			VariantName:   it.VariantName,
			ProductName:   it.ProductName,
			CurrentStock:  it.CurrentStock,
			StockAlertCap: it.StockAlertCap,
		})
	}
	return out, nil
}

// ListExpiringLots lotes con vencimiento dentro de [hoy, hoy+windowDays]
// inclusive, de variantes no borradas, ordenados por vencimiento ascendente.
// Nota: no mira la cantidad restante; un lote ya consumido aparece igual.
func (uc *AlertsUseCase) ListExpiringLots(ctx context.Context, windowDays int) ([]dto.ExpiringLotDTO, error) {
	if windowDays <= 0 {
		windowDays = uc.defaultWindowDays
	}
	// Medianoche local, no el corte UTC de Truncate: un lote que vence "hoy"
	// debe entrar a la ventana en cualquier zona horaria.
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	until := today.AddDate(0, 0, windowDays)

	lots, err := uc.lotRepo.ListExpiringWithin(ctx, today, until)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExpiringLotDTO, 0, len(lots))
	for _, el := range lots {
		out = append(out, dto.ExpiringLotDTO{
			LotID:       el.Lot.ID,
			VariantID:   el.Lot.VariantID,
			SKU:         el.SKU,
			VariantName: el.VariantName,
			ProductName: el.ProductName,
			BatchNumber: el.Lot.BatchNumber,
			ExpiryDate:  el.Lot.ExpiryDate,
			Quantity:    el.Lot.Quantity,
		})
	}
	return out, nil
}
