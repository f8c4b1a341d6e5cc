package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/pos-ledger/internal/application/ledger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Receiving *ledger.ReceivingUseCase
	Adjust    *ledger.AdjustmentUseCase
	Restore   *ledger.RestorationEngine
	Stock     *ledger.StockCalculator
	Queries   *ledger.QueriesUseCase
	Alerts    *ledger.AlertsUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	handler := NewLedgerHandler(deps.Receiving, deps.Adjust, deps.Restore, deps.Stock, deps.Queries, deps.Alerts)

	inv := api.Group("/inventory")
	inv.Post("/receivings", handler.Receive)
	inv.Post("/adjustments", handler.Adjust)
	inv.Post("/restorations", handler.Restore)
	inv.Get("/stock", handler.GetStockBatch)
	inv.Get("/variants/:id/stock", handler.GetStock)
	inv.Get("/variants/:id/lots", handler.GetLots)
	inv.Get("/variants/:id/adjustments", handler.GetAdjustments)

	alerts := inv.Group("/alerts")
	alerts.Get("/low-stock", handler.ListLowStock)
	alerts.Get("/expiring-lots", handler.ListExpiringLots)
}
