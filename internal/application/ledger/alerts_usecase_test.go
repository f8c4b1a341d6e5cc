package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/pos-ledger/internal/application/ledger"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

func TestListLowStock_UmbralInclusivoYOrden(t *testing.T) {
	f := newFixture()

	low := "7f8c8f2e-0000-4000-8000-00000000000a"
	atCap := "7f8c8f2e-0000-4000-8000-00000000000b"
	healthy := "7f8c8f2e-0000-4000-8000-00000000000c"
	f.store.addVariant(low, "SKU-A", "Variante baja", 10)
	f.store.addVariant(atCap, "SKU-B", "Variante al límite", 5)
	f.store.addVariant(healthy, "SKU-C", "Variante sana", 5)

	mustReceive(t, f, low, 2)
	mustReceive(t, f, atCap, 5)
	mustReceive(t, f, healthy, 50)

	items, err := f.alerts.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Orden ascendente por stock; el umbral es inclusivo (stock == cap alerta)
	assert.Equal(t, low, items[0].VariantID)
	assert.Equal(t, int64(2), items[0].CurrentStock)
	assert.Equal(t, int64(10), items[0].StockAlertCap)
	assert.Equal(t, atCap, items[1].VariantID)
	assert.Equal(t, int64(5), items[1].CurrentStock)
}

func TestListLowStock_UsaStockDerivado(t *testing.T) {
	f := newFixture()
	f.store.addVariant(testVariantID, "SKU-001", "Café 500g", 10)
	mustReceive(t, f, testVariantID, 20)

	items, err := f.alerts.ListLowStock(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)

	// Una venta FIFO la deja por debajo del umbral sin tocar ningún contador
	_, err = f.adjust.Adjust(context.Background(), ledger.AdjustInput{
		VariantID:      testVariantID,
		QuantityChange: -15,
		Reason:         entity.ReasonSale,
		UserID:         testUserID,
	})
	require.NoError(t, err)

	items, err = f.alerts.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(5), items[0].CurrentStock)
}

func TestGetAlertThreshold(t *testing.T) {
	f := newFixture()
	f.store.addVariant(testVariantID, "SKU-001", "Café 500g", 12)

	threshold, err := f.store.variantRepo().GetAlertThreshold(context.Background(), testVariantID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), threshold)

	_, err = f.store.variantRepo().GetAlertThreshold(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListExpiringLots_VentanaInclusiva(t *testing.T) {
	f := newFixture()
	f.store.addVariant(testVariantID, "SKU-001", "Café 500g", 5)

	receive := func(batch string, expiry *time.Time) {
		_, err := f.receiving.Receive(context.Background(), ledger.ReceiveInput{
			VariantID:   testVariantID,
			Quantity:    10,
			UnitCost:    decimal.NewFromInt(3),
			BatchNumber: batch,
			ExpiryDate:  expiry,
			UserID:      testUserID,
		})
		require.NoError(t, err)
	}

	now := time.Now()
	receive("B-pronto", datePtr(now.AddDate(0, 0, 5)))
	receive("B-borde", datePtr(now.AddDate(0, 0, 29)))
	receive("B-lejos", datePtr(now.AddDate(0, 0, 90)))
	receive("B-sin-vencimiento", nil)

	lots, err := f.alerts.ListExpiringLots(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, lots, 2)

	// Orden por vencimiento ascendente
	assert.Equal(t, "B-pronto", lots[0].BatchNumber)
	assert.Equal(t, "B-borde", lots[1].BatchNumber)
	assert.Equal(t, "SKU-001", lots[0].SKU)
}

func TestListExpiringLots_IncluyeVencimientoDeHoy(t *testing.T) {
	f := newFixture()
	f.store.addVariant(testVariantID, "SKU-001", "Café 500g", 5)

	// Un lote que vence hoy a medianoche local es el borde inferior de la ventana.
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	_, err := f.receiving.Receive(context.Background(), ledger.ReceiveInput{
		VariantID:  testVariantID,
		Quantity:   10,
		UnitCost:   decimal.NewFromInt(3),
		ExpiryDate: &midnight,
		UserID:     testUserID,
	})
	require.NoError(t, err)

	lots, err := f.alerts.ListExpiringLots(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, lots, 1)
}

func TestListExpiringLots_VentanaPorDefecto(t *testing.T) {
	f := newFixture()
	f.store.addVariant(testVariantID, "SKU-001", "Café 500g", 5)

	_, err := f.receiving.Receive(context.Background(), ledger.ReceiveInput{
		VariantID:  testVariantID,
		Quantity:   10,
		UnitCost:   decimal.NewFromInt(3),
		ExpiryDate: datePtr(time.Now().AddDate(0, 0, 10)),
		UserID:     testUserID,
	})
	require.NoError(t, err)

	// windowDays <= 0 cae a la ventana configurada (30 días en la fixture)
	lots, err := f.alerts.ListExpiringLots(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, lots, 1)
}

func TestGetAdjustments_PaginadoMasRecientePrimero(t *testing.T) {
	f := newFixture()
	f.store.addVariant(testVariantID, "SKU-001", "Café 500g", 5)
	mustReceive(t, f, testVariantID, 50)

	for i := 0; i < 5; i++ {
		_, err := f.adjust.Adjust(context.Background(), ledger.AdjustInput{
			VariantID:      testVariantID,
			QuantityChange: -1,
			Reason:         entity.ReasonSale,
			UserID:         testUserID,
		})
		require.NoError(t, err)
	}

	page, err := f.queries.GetAdjustments(context.Background(), testVariantID, 3, 0)
	require.NoError(t, err)
	require.Len(t, page, 3)

	// Más reciente primero: las tres últimas ventas
	for _, adj := range page {
		assert.Equal(t, entity.ReasonSale, adj.Reason)
	}

	rest, err := f.queries.GetAdjustments(context.Background(), testVariantID, 10, 3)
	require.NoError(t, err)
	// 6 ajustes en total (confirm_receive + 5 ventas), quedan 3
	assert.Len(t, rest, 3)
}

func TestGetLots_MasRecientePrimero(t *testing.T) {
	f := newFixture()
	f.store.addVariant(testVariantID, "SKU-001", "Café 500g", 5)
	mustReceive(t, f, testVariantID, 4)
	newest := mustReceive(t, f, testVariantID, 6)

	lots, err := f.queries.GetLots(context.Background(), testVariantID)
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, newest, lots[0].ID)
}

func TestGetStockBatch(t *testing.T) {
	f := newFixture()
	other := "7f8c8f2e-0000-4000-8000-000000000002"
	f.store.addVariant(testVariantID, "SKU-001", "Café 500g", 5)
	f.store.addVariant(other, "SKU-002", "Café 1kg", 5)
	mustReceive(t, f, testVariantID, 8)
	mustReceive(t, f, other, 3)

	stocks, err := f.stock.GetStockBatch(context.Background(), []string{testVariantID, other, "missing"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), stocks[testVariantID])
	assert.Equal(t, int64(3), stocks[other])
	assert.Equal(t, int64(0), stocks["missing"])
}
