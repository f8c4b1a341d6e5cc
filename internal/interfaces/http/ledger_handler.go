package http

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/pos-ledger/internal/application/dto"
	"github.com/tu-usuario/pos-ledger/internal/application/ledger"
	"github.com/tu-usuario/pos-ledger/internal/domain"
)

// LedgerHandler maneja las peticiones HTTP del motor de inventario.
// La autenticación vive en el gateway; el usuario llega en X-User-Id.
type LedgerHandler struct {
	receiving *ledger.ReceivingUseCase
	adjust    *ledger.AdjustmentUseCase
	restore   *ledger.RestorationEngine
	stock     *ledger.StockCalculator
	queries   *ledger.QueriesUseCase
	alerts    *ledger.AlertsUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(
	receiving *ledger.ReceivingUseCase,
	adjust *ledger.AdjustmentUseCase,
	restore *ledger.RestorationEngine,
	stock *ledger.StockCalculator,
	queries *ledger.QueriesUseCase,
	alerts *ledger.AlertsUseCase,
) *LedgerHandler {
	return &LedgerHandler{
		receiving: receiving,
		adjust:    adjust,
		restore:   restore,
		stock:     stock,
		queries:   queries,
		alerts:    alerts,
	}
}

// GetUserID extrae el usuario autenticado inyectado por el gateway.
func GetUserID(c *fiber.Ctx) string {
	return c.Get("X-User-Id")
}

// Receive godoc
// @Summary      Recibir un lote
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveRequest  true  "variant_id, quantity, unit_cost, batch_number?, expiry_date?, purchase_order_item_id?"
// @Success      201  {object}  dto.ReceiveResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/receivings [post]
func (h *LedgerHandler) Receive(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "usuario no identificado"})
	}
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.receiving.Receive(c.Context(), ledger.ReceiveInput{
		VariantID:           in.VariantID,
		Quantity:            in.Quantity,
		UnitCost:            in.UnitCost,
		BatchNumber:         in.BatchNumber,
		ManufacturedDate:    in.ManufacturedDate,
		ExpiryDate:          in.ExpiryDate,
		PurchaseOrderItemID: in.PurchaseOrderItemID,
		UserID:              userID,
	})
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReceiveResponse{
		LotID:     result.LotID,
		VariantID: result.VariantID,
		Quantity:  result.Quantity,
		NewStock:  result.NewStock,
	})
}

// Adjust godoc
// @Summary      Registrar un ajuste de inventario
// @Description  Con quantity_change negativo y sin lot_id la salida se reparte FIFO entre lotes.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustRequest  true  "variant_id, quantity_change, reason, lot_id?, reference_type?, reference_id?"
// @Success      201  {object}  dto.AdjustResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *LedgerHandler) Adjust(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "usuario no identificado"})
	}
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.adjust.Adjust(c.Context(), ledger.AdjustInput{
		VariantID:      in.VariantID,
		LotID:          in.LotID,
		QuantityChange: in.QuantityChange,
		Reason:         in.Reason,
		ReferenceType:  in.ReferenceType,
		ReferenceID:    in.ReferenceID,
		UserID:         userID,
	})
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AdjustResponse{
		ID:             result.ID,
		VariantID:      result.VariantID,
		QuantityChange: result.QuantityChange,
		Reason:         result.Reason,
		NewStock:       result.NewStock,
	})
}

// Restore godoc
// @Summary      Restaurar una deducción previa
// @Description  Revierte los ajustes de (reference_type, reference_id) en orden inverso de aplicación.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RestoreRequest  true  "variant_id, reference_type, reference_id, quantity, reason"
// @Success      201  {object}  dto.RestoreResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/restorations [post]
func (h *LedgerHandler) Restore(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "usuario no identificado"})
	}
	var in dto.RestoreRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.restore.Restore(c.Context(), ledger.RestoreInput{
		VariantID:        in.VariantID,
		ReferenceType:    in.ReferenceType,
		ReferenceID:      in.ReferenceID,
		Quantity:         in.Quantity,
		UserID:           userID,
		Reason:           in.Reason,
		NewReferenceType: in.NewReferenceType,
		NewReferenceID:   in.NewReferenceID,
	})
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RestoreResponse{
		Restored: result.Restored,
		NewStock: result.NewStock,
	})
}

// GetStock godoc
// @Summary      Stock derivado de una variante
// @Tags         inventory
// @Produce      json
// @Param        id  path  string  true  "ID de la variante"
// @Success      200  {object}  dto.StockResponse
// @Router       /api/inventory/variants/{id}/stock [get]
func (h *LedgerHandler) GetStock(c *fiber.Ctx) error {
	variantID := c.Params("id")
	stock, err := h.stock.GetStock(c.Context(), variantID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.StockResponse{VariantID: variantID, Stock: stock})
}

// GetStockBatch godoc
// @Summary      Stock derivado de varias variantes
// @Tags         inventory
// @Produce      json
// @Param        variant_ids  query  string  true  "IDs separados por coma"
// @Success      200  {object}  map[string]int64
// @Router       /api/inventory/stock [get]
func (h *LedgerHandler) GetStockBatch(c *fiber.Ctx) error {
	raw := c.Query("variant_ids")
	if raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "variant_ids requerido"})
	}
	ids := strings.Split(raw, ",")
	stocks, err := h.stock.GetStockBatch(c.Context(), ids)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stocks)
}

// GetLots godoc
// @Summary      Lotes de una variante, más reciente primero
// @Tags         inventory
// @Produce      json
// @Param        id  path  string  true  "ID de la variante"
// @Success      200  {array}  dto.LotDTO
// @Router       /api/inventory/variants/{id}/lots [get]
func (h *LedgerHandler) GetLots(c *fiber.Ctx) error {
	lots, err := h.queries.GetLots(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(lots)
}

// GetAdjustments godoc
// @Summary      Ajustes de una variante, paginados, más reciente primero
// @Tags         inventory
// @Produce      json
// @Param        id      path   string  true   "ID de la variante"
// @Param        limit   query  int     false  "Tamaño de página"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.AdjustmentDTO
// @Router       /api/inventory/variants/{id}/adjustments [get]
func (h *LedgerHandler) GetAdjustments(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	adjs, err := h.queries.GetAdjustments(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(adjs)
}

// ListLowStock godoc
// @Summary      Variantes en o por debajo de su umbral de alerta
// @Tags         alerts
// @Produce      json
// @Success      200  {array}  dto.LowStockItemDTO
// @Router       /api/inventory/alerts/low-stock [get]
func (h *LedgerHandler) ListLowStock(c *fiber.Ctx) error {
	items, err := h.alerts.ListLowStock(c.Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}

// ListExpiringLots godoc
// @Summary      Lotes próximos a vencer
// @Tags         alerts
// @Produce      json
// @Param        window_days  query  int  false  "Ventana en días (por defecto la configurada)"
// @Success      200  {array}  dto.ExpiringLotDTO
// @Router       /api/inventory/alerts/expiring-lots [get]
func (h *LedgerHandler) ListExpiringLots(c *fiber.Ctx) error {
	windowDays, _ := strconv.Atoi(c.Query("window_days"))
	lots, err := h.alerts.ListExpiringLots(c.Context(), windowDays)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(lots), "items": lots})
}

// handleError mapea errores de dominio a códigos HTTP.
func handleError(c *fiber.Ctx, err error) error {
	var insufficientErr *domain.InsufficientStockError
	if errors.As(err, &insufficientErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: insufficientErr.Error()})
	}
	if errors.Is(err, domain.ErrInsufficientStock) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "variante o lote no encontrado"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
