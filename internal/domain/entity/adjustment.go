package entity

import "time"

// Razones de ajuste de inventario (value object conceptual).
const (
	ReasonSale           = "sale"
	ReasonReturn         = "return"
	ReasonConfirmReceive = "confirm_receive"
	ReasonSpoilage       = "spoilage"
	ReasonDamage         = "damage"
	ReasonTheft          = "theft"
	ReasonCorrection     = "correction"
)

// ValidReason verifica que la razón sea una de las siete reconocidas.
func ValidReason(reason string) bool {
	switch reason {
	case ReasonSale, ReasonReturn, ReasonConfirmReceive, ReasonSpoilage,
		ReasonDamage, ReasonTheft, ReasonCorrection:
		return true
	}
	return false
}

// AdjustmentTarget indica a qué lote apunta un ajuste: ligado a un lote concreto
// (LotBound) o sin lote ("headless", Unbound). Se modela como variante etiquetada
// en vez de un puntero opcional para que el camino de conciliación sea explícito.
type AdjustmentTarget struct {
	lotID string
	bound bool
}

// LotBound crea un destino ligado al lote dado.
func LotBound(lotID string) AdjustmentTarget {
	return AdjustmentTarget{lotID: lotID, bound: true}
}

// Unbound crea un destino sin lote (ajuste headless).
func Unbound() AdjustmentTarget {
	return AdjustmentTarget{}
}

// LotID devuelve el lote y true si el destino está ligado a uno.
func (t AdjustmentTarget) LotID() (string, bool) {
	return t.lotID, t.bound
}

// IsBound indica si el ajuste apunta a un lote concreto.
func (t AdjustmentTarget) IsBound() bool { return t.bound }

// InventoryAdjustment representa un evento de cambio de stock con signo.
// Append-only: nunca se actualiza ni se borra. Toda variación de stock,
// incluida la recepción de un lote, queda registrada como un ajuste.
type InventoryAdjustment struct {
	ID             string
	VariantID      string
	Target         AdjustmentTarget
	SeqNo          int64 // secuencia monótona por variante, asignada al insertar
	QuantityChange int64 // positivo = entrada, negativo = salida
	Reason         string
	ReferenceType  string // evento de negocio que lo originó (línea de venta, ítem de OC...)
	ReferenceID    string
	ReversalOf     string // id del ajuste que este revierte (restauraciones); vacío si no aplica
	AdjustedBy     string // UserID
	AdjustedAt     time.Time
}
