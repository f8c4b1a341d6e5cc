package ledger_test

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/pos-ledger/internal/domain"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	domledger "github.com/tu-usuario/pos-ledger/internal/domain/ledger"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// memStore fake en memoria del LedgerStore: guarda lotes, ajustes y eventos en
// slices y expone los repositorios y el TxRunner sobre ese estado, con
// snapshot/restore para simular el rollback. Permite probar los casos de uso
// sin PostgreSQL.
type memStore struct {
	products    map[string]*memProduct
	variants    map[string]*memVariant
	lots        []*entity.InventoryLot
	adjustments []*entity.InventoryAdjustment
	flows       []flowEvent
	audits      []auditEvent
	lotSeq      map[string]int64
	adjSeq      map[string]int64
}

type memProduct struct {
	name    string
	deleted bool
}

// memVariant fila del catálogo de variantes (propiedad del módulo de productos;
// el ledger solo la consulta, nunca la materializa como entidad propia).
type memVariant struct {
	id        string
	productID string
	sku       string
	name      string
	alertCap  int64
	deleted   bool
}

type flowEvent struct {
	variantID     string
	eventType     string
	quantity      int64
	referenceType string
	referenceID   string
}

type auditEvent struct {
	userID     string
	entityName string
	entityID   string
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]*memProduct),
		variants: make(map[string]*memVariant),
		lotSeq:   make(map[string]int64),
		adjSeq:   make(map[string]int64),
	}
}

func (s *memStore) addVariant(id, sku, name string, alertCap int64) {
	productID := uuid.New().String()
	s.products[productID] = &memProduct{name: name + " (producto)"}
	s.variants[id] = &memVariant{
		id:        id,
		productID: productID,
		sku:       sku,
		name:      name,
		alertCap:  alertCap,
	}
}

// Vistas de repositorio sobre el mismo estado.
func (s *memStore) lotRepo() repository.LotRepository            { return &memLotRepo{s} }
func (s *memStore) adjRepo() repository.AdjustmentRepository     { return &memAdjRepo{s} }
func (s *memStore) variantRepo() repository.VariantCatalog       { return &memVariantRepo{s} }
func (s *memStore) variantStock(variantID string) int64 {
	var lots []*entity.InventoryLot
	for _, lot := range s.lots {
		if lot.VariantID == variantID {
			lots = append(lots, lot)
		}
	}
	var adjs []*entity.InventoryAdjustment
	for _, adj := range s.adjustments {
		if adj.VariantID == variantID {
			adjs = append(adjs, adj)
		}
	}
	return domledger.ComputedStock(lots, adjs)
}

// Run implementa ledger.TxRunner: pasa las vistas y restaura el estado si fn falla.
func (s *memStore) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	adjRepo repository.AdjustmentRepository,
	variantRepo repository.VariantCatalog,
	flowLog repository.FlowLog,
	auditLog repository.AuditLog,
) error) error {
	lots := append([]*entity.InventoryLot(nil), s.lots...)
	adjs := append([]*entity.InventoryAdjustment(nil), s.adjustments...)
	flows := append([]flowEvent(nil), s.flows...)
	audits := append([]auditEvent(nil), s.audits...)
	lotSeq := copyMap(s.lotSeq)
	adjSeq := copyMap(s.adjSeq)

	if err := fn(&memLotRepo{s}, &memAdjRepo{s}, &memVariantRepo{s}, &memFlowLog{s}, &memAuditLog{s}); err != nil {
		s.lots, s.adjustments, s.flows, s.audits = lots, adjs, flows, audits
		s.lotSeq, s.adjSeq = lotSeq, adjSeq
		return err
	}
	return nil
}

func copyMap(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ── LotRepository ───────────────────────────────────────────────────────────

type memLotRepo struct{ s *memStore }

func (r *memLotRepo) Create(ctx context.Context, lot *entity.InventoryLot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	r.s.lotSeq[lot.VariantID]++
	lot.SeqNo = r.s.lotSeq[lot.VariantID]
	r.s.lots = append(r.s.lots, lot)
	return nil
}

func (r *memLotRepo) GetByID(ctx context.Context, id string) (*entity.InventoryLot, error) {
	for _, lot := range r.s.lots {
		if lot.ID == id {
			return lot, nil
		}
	}
	return nil, nil
}

func (r *memLotRepo) ListByVariant(ctx context.Context, variantID string) ([]*entity.InventoryLot, error) {
	var list []*entity.InventoryLot
	for _, lot := range r.s.lots {
		if lot.VariantID == variantID {
			list = append(list, lot)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SeqNo > list[j].SeqNo })
	return list, nil
}

func (r *memLotRepo) ListAvailableFIFO(ctx context.Context, variantID string) ([]repository.AvailableLot, error) {
	var list []repository.AvailableLot
	for _, lot := range r.s.lots {
		if lot.VariantID != variantID {
			continue
		}
		remaining := domledger.RemainingQuantity(lot, r.s.adjustments)
		if remaining > 0 {
			list = append(list, repository.AvailableLot{Lot: lot, Remaining: remaining})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Lot.SeqNo < list[j].Lot.SeqNo })
	return list, nil
}

func (r *memLotRepo) SumQuantity(ctx context.Context, variantID string) (int64, error) {
	var total int64
	for _, lot := range r.s.lots {
		if lot.VariantID == variantID {
			total += lot.Quantity
		}
	}
	return total, nil
}

func (r *memLotRepo) SumQuantityBatch(ctx context.Context, variantIDs []string) (map[string]int64, error) {
	sums := make(map[string]int64, len(variantIDs))
	for _, id := range variantIDs {
		total, _ := r.SumQuantity(ctx, id)
		sums[id] = total
	}
	return sums, nil
}

func (r *memLotRepo) ListExpiringWithin(ctx context.Context, from, to time.Time) ([]repository.ExpiringLot, error) {
	var list []repository.ExpiringLot
	for _, lot := range r.s.lots {
		if lot.ExpiryDate == nil || lot.ExpiryDate.Before(from) || lot.ExpiryDate.After(to) {
			continue
		}
		variant, ok := r.s.variants[lot.VariantID]
		if !ok || variant.deleted {
			continue
		}
		product := r.s.products[variant.productID]
		if product == nil || product.deleted {
			continue
		}
		list = append(list, repository.ExpiringLot{
			Lot:         lot,
			SKU:         variant.sku,
			VariantName: variant.name,
			ProductName: product.name,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Lot.ExpiryDate.Before(*list[j].Lot.ExpiryDate) })
	return list, nil
}

// ── AdjustmentRepository ────────────────────────────────────────────────────

type memAdjRepo struct{ s *memStore }

func (r *memAdjRepo) Create(ctx context.Context, adj *entity.InventoryAdjustment) error {
	if adj.ID == "" {
		adj.ID = uuid.New().String()
	}
	r.s.adjSeq[adj.VariantID]++
	adj.SeqNo = r.s.adjSeq[adj.VariantID]
	r.s.adjustments = append(r.s.adjustments, adj)
	return nil
}

func (r *memAdjRepo) ListByVariant(ctx context.Context, variantID string, limit, offset int) ([]*entity.InventoryAdjustment, error) {
	var list []*entity.InventoryAdjustment
	for _, adj := range r.s.adjustments {
		if adj.VariantID == variantID {
			list = append(list, adj)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SeqNo > list[j].SeqNo })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (r *memAdjRepo) ListByReference(ctx context.Context, variantID, referenceType, referenceID string) ([]*entity.InventoryAdjustment, error) {
	var list []*entity.InventoryAdjustment
	for _, adj := range r.s.adjustments {
		if adj.VariantID == variantID && adj.ReferenceType == referenceType && adj.ReferenceID == referenceID {
			list = append(list, adj)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SeqNo > list[j].SeqNo })
	return list, nil
}

func (r *memAdjRepo) SumStockDelta(ctx context.Context, variantID string) (int64, error) {
	var total int64
	for _, adj := range r.s.adjustments {
		if adj.VariantID == variantID && domledger.CountsTowardStock(adj) {
			total += adj.QuantityChange
		}
	}
	return total, nil
}

func (r *memAdjRepo) SumStockDeltaBatch(ctx context.Context, variantIDs []string) (map[string]int64, error) {
	sums := make(map[string]int64, len(variantIDs))
	for _, id := range variantIDs {
		total, _ := r.SumStockDelta(ctx, id)
		sums[id] = total
	}
	return sums, nil
}

func (r *memAdjRepo) SumByLot(ctx context.Context, lotID string) (int64, error) {
	var total int64
	for _, adj := range r.s.adjustments {
		id, bound := adj.Target.LotID()
		if bound && id == lotID && adj.Reason != entity.ReasonConfirmReceive {
			total += adj.QuantityChange
		}
	}
	return total, nil
}

func (r *memAdjRepo) SumReversals(ctx context.Context, adjustmentID string) (int64, error) {
	var total int64
	for _, adj := range r.s.adjustments {
		if adj.ReversalOf == adjustmentID {
			total += adj.QuantityChange
		}
	}
	return total, nil
}

// ── VariantCatalog ──────────────────────────────────────────────────────────

type memVariantRepo struct{ s *memStore }

func (r *memVariantRepo) GetAlertThreshold(ctx context.Context, variantID string) (int64, error) {
	variant, ok := r.s.variants[variantID]
	if !ok || variant.deleted {
		return 0, domain.ErrNotFound
	}
	return variant.alertCap, nil
}

func (r *memVariantRepo) LockForAdjust(ctx context.Context, variantID string) error {
	variant, ok := r.s.variants[variantID]
	if !ok || variant.deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (r *memVariantRepo) ListLowStock(ctx context.Context) ([]repository.LowStockItem, error) {
	var list []repository.LowStockItem
	for _, variant := range r.s.variants {
		if variant.deleted {
			continue
		}
		product := r.s.products[variant.productID]
		if product == nil || product.deleted {
			continue
		}
		stock := r.s.variantStock(variant.id)
		if stock <= variant.alertCap {
			list = append(list, repository.LowStockItem{
				VariantID:     variant.id,
				SKU:           variant.sku,
				VariantName:   variant.name,
				ProductName:   product.name,
				CurrentStock:  stock,
				StockAlertCap: variant.alertCap,
			})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CurrentStock < list[j].CurrentStock })
	return list, nil
}

// ── FlowLog / AuditLog ──────────────────────────────────────────────────────

type memFlowLog struct{ s *memStore }

func (l *memFlowLog) Record(ctx context.Context, variantID, eventType string, quantity int64, referenceType, referenceID string) error {
	l.s.flows = append(l.s.flows, flowEvent{
		variantID:     variantID,
		eventType:     eventType,
		quantity:      quantity,
		referenceType: referenceType,
		referenceID:   referenceID,
	})
	return nil
}

type memAuditLog struct{ s *memStore }

func (l *memAuditLog) RecordCreate(ctx context.Context, userID, entityName, entityID string, payload any) error {
	l.s.audits = append(l.s.audits, auditEvent{userID: userID, entityName: entityName, entityID: entityID})
	return nil
}
