package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// InsufficientStockError detalla un rechazo por stock insuficiente: cuánto hay
// disponible y cuánto se pidió descontar. errors.Is(err, ErrInsufficientStock)
// sigue funcionando para los callers que solo comparan el centinela.
type InsufficientStockError struct {
	VariantID string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para variante %s: disponible %d, solicitado %d",
		e.VariantID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
