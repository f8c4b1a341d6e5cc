package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/pos-ledger/internal/application/ledger"
	"github.com/tu-usuario/pos-ledger/pkg/logger"
)

const (
	testVariantID = "7f8c8f2e-0000-4000-8000-000000000001"
	testUserID    = "7f8c8f2e-0000-4000-8000-0000000000ff"
)

// fixture arma el memStore y todos los casos de uso encima, como lo hace main.
type fixture struct {
	store     *memStore
	stock     *ledger.StockCalculator
	fifo      *ledger.FIFODeductionEngine
	receiving *ledger.ReceivingUseCase
	adjust    *ledger.AdjustmentUseCase
	restore   *ledger.RestorationEngine
	alerts    *ledger.AlertsUseCase
	queries   *ledger.QueriesUseCase
}

func newFixture() *fixture {
	s := newMemStore()
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	fifo := ledger.NewFIFODeductionEngine(s, log)
	return &fixture{
		store:     s,
		stock:     ledger.NewStockCalculator(s.lotRepo(), s.adjRepo()),
		fifo:      fifo,
		receiving: ledger.NewReceivingUseCase(s),
		adjust:    ledger.NewAdjustmentUseCase(s, fifo),
		restore:   ledger.NewRestorationEngine(s, log),
		alerts:    ledger.NewAlertsUseCase(s.lotRepo(), s.variantRepo(), 30),
		queries:   ledger.NewQueriesUseCase(s.lotRepo(), s.adjRepo(), 50, 200),
	}
}

// mustReceive recibe un lote con datos por defecto y devuelve su ID.
func mustReceive(t *testing.T, f *fixture, variantID string, quantity int64) string {
	t.Helper()
	res, err := f.receiving.Receive(context.Background(), ledger.ReceiveInput{
		VariantID: variantID,
		Quantity:  quantity,
		UnitCost:  decimal.NewFromFloat(12.50),
		UserID:    testUserID,
	})
	require.NoError(t, err)
	return res.LotID
}

// mustStock deriva el stock actual o falla el test.
func mustStock(t *testing.T, f *fixture, variantID string) int64 {
	t.Helper()
	stock, err := f.stock.GetStock(context.Background(), variantID)
	require.NoError(t, err)
	return stock
}

func datePtr(t time.Time) *time.Time { return &t }
