package inventory_test

// Dobles en memoria de los puertos de persistencia. Imitan la semántica del
// adaptador PostgreSQL que importa para los casos de uso: saldo en cero cuando
// no hay fila, Save condicionado por versión y pendiente que solo decrece.

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinv "github.com/tu-usuario/farmacore-api/internal/application/inventory"
	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	dominv "github.com/tu-usuario/farmacore-api/internal/domain/inventory"
	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
	"github.com/tu-usuario/farmacore-api/pkg/logger"
)

// ─── Balances ────────────────────────────────────────────────────────────────

type fakeBalanceRepo struct {
	rows map[string]*entity.Balance
}

func newFakeBalanceRepo() *fakeBalanceRepo {
	return &fakeBalanceRepo{rows: make(map[string]*entity.Balance)}
}

func balanceKey(tenantID, productID string, batchID *string, locationID string) string {
	batch := ""
	if batchID != nil {
		batch = *batchID
	}
	return strings.Join([]string{tenantID, productID, batch, locationID}, "|")
}

func copyBalance(b *entity.Balance) *entity.Balance {
	c := *b
	return &c
}

// seed registra un saldo existente (versión 1) para armar escenarios.
func (r *fakeBalanceRepo) seed(tenantID, productID string, batchID *string, locationID string, qty, reserved decimal.Decimal) {
	key := balanceKey(tenantID, productID, batchID, locationID)
	r.rows[key] = &entity.Balance{
		ID:               uuid.New().String(),
		TenantID:         tenantID,
		ProductID:        productID,
		BatchID:          batchID,
		LocationID:       locationID,
		Quantity:         qty,
		ReservedQuantity: reserved,
		Version:          1,
	}
}

func (r *fakeBalanceRepo) Get(_ context.Context, tenantID, productID string, batchID *string, locationID string) (*entity.Balance, error) {
	if b, ok := r.rows[balanceKey(tenantID, productID, batchID, locationID)]; ok {
		return copyBalance(b), nil
	}
	return &entity.Balance{
		TenantID:   tenantID,
		ProductID:  productID,
		BatchID:    batchID,
		LocationID: locationID,
		Quantity:   decimal.Zero,
	}, nil
}

func (r *fakeBalanceRepo) GetForUpdate(ctx context.Context, tenantID, productID string, batchID *string, locationID string) (*entity.Balance, error) {
	return r.Get(ctx, tenantID, productID, batchID, locationID)
}

func (r *fakeBalanceRepo) Save(_ context.Context, balance *entity.Balance) error {
	key := balanceKey(balance.TenantID, balance.ProductID, balance.BatchID, balance.LocationID)
	existing, ok := r.rows[key]
	if balance.Version == 0 {
		if ok {
			return domain.ErrConcurrentModification
		}
		if balance.ID == "" {
			balance.ID = uuid.New().String()
		}
		balance.Version = 1
		r.rows[key] = copyBalance(balance)
		return nil
	}
	if !ok || existing.Version != balance.Version {
		return domain.ErrConcurrentModification
	}
	balance.Version++
	r.rows[key] = copyBalance(balance)
	return nil
}

func (r *fakeBalanceRepo) ListByLocation(_ context.Context, tenantID, locationID string, _, _ int) ([]*entity.Balance, error) {
	var out []*entity.Balance
	for _, b := range r.rows {
		if b.TenantID == tenantID && b.LocationID == locationID {
			out = append(out, copyBalance(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *fakeBalanceRepo) ListByProduct(_ context.Context, tenantID, productID string) ([]*entity.Balance, error) {
	var out []*entity.Balance
	for _, b := range r.rows {
		if b.TenantID == tenantID && b.ProductID == productID {
			out = append(out, copyBalance(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocationID < out[j].LocationID })
	return out, nil
}

// quantity devuelve la cantidad en mano persistida (cero si no hay fila).
func (r *fakeBalanceRepo) quantity(tenantID, productID string, batchID *string, locationID string) decimal.Decimal {
	if b, ok := r.rows[balanceKey(tenantID, productID, batchID, locationID)]; ok {
		return b.Quantity
	}
	return decimal.Zero
}

// ─── Movimientos ─────────────────────────────────────────────────────────────

type fakeMovementRepo struct {
	rows []*entity.StockMovement
}

func newFakeMovementRepo() *fakeMovementRepo { return &fakeMovementRepo{} }

func copyMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	return &c
}

func (r *fakeMovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	movement.Version = 1
	r.rows = append(r.rows, copyMovement(movement))
	return nil
}

func (r *fakeMovementRepo) GetByID(_ context.Context, tenantID, id string) (*entity.StockMovement, error) {
	for _, m := range r.rows {
		if m.TenantID == tenantID && m.ID == id {
			return copyMovement(m), nil
		}
	}
	return nil, nil
}

func (r *fakeMovementRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.StockMovement, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *fakeMovementRepo) ListByReference(_ context.Context, tenantID, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.rows {
		if m.TenantID == tenantID && m.ReferenceType == referenceType && m.ReferenceID != nil && *m.ReferenceID == referenceID {
			out = append(out, copyMovement(m))
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) DecrementPending(_ context.Context, tenantID, id string, newPending decimal.Decimal, version int64) error {
	if newPending.IsNegative() {
		return domain.ErrInvalidInput
	}
	for _, m := range r.rows {
		if m.TenantID == tenantID && m.ID == id {
			if m.Version != version || newPending.GreaterThan(m.PendingQuantity) {
				return domain.ErrConcurrentModification
			}
			m.PendingQuantity = newPending
			m.Version++
			return nil
		}
	}
	return domain.ErrConcurrentModification
}

func (r *fakeMovementRepo) List(_ context.Context, tenantID string, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.rows {
		if m.TenantID != tenantID {
			continue
		}
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		out = append(out, copyMovement(m))
	}
	return out, nil
}

// ─── Solicitudes ─────────────────────────────────────────────────────────────

type fakeRequestRepo struct {
	rows map[string]*entity.MovementRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{rows: make(map[string]*entity.MovementRequest)}
}

func copyRequest(req *entity.MovementRequest) *entity.MovementRequest {
	c := *req
	c.Items = make([]*entity.MovementRequestItem, len(req.Items))
	for i, it := range req.Items {
		itemCopy := *it
		c.Items[i] = &itemCopy
	}
	return &c
}

func (r *fakeRequestRepo) Create(_ context.Context, request *entity.MovementRequest) error {
	if request.ID == "" {
		request.ID = uuid.New().String()
	}
	request.Version = 1
	for _, it := range request.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.RequestID = request.ID
	}
	r.rows[request.ID] = copyRequest(request)
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, tenantID, id string) (*entity.MovementRequest, error) {
	req, ok := r.rows[id]
	if !ok || req.TenantID != tenantID {
		return nil, nil
	}
	return copyRequest(req), nil
}

func (r *fakeRequestRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.MovementRequest, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *fakeRequestRepo) Update(_ context.Context, request *entity.MovementRequest) error {
	existing, ok := r.rows[request.ID]
	if !ok || existing.Version != request.Version {
		return domain.ErrConcurrentModification
	}
	request.Version++
	r.rows[request.ID] = copyRequest(request)
	return nil
}

func (r *fakeRequestRepo) List(_ context.Context, tenantID, status string, _, _ int) ([]*entity.MovementRequest, error) {
	var out []*entity.MovementRequest
	for _, req := range r.rows {
		if req.TenantID != tenantID {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		out = append(out, copyRequest(req))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ─── Devoluciones ────────────────────────────────────────────────────────────

type fakeReturnRepo struct {
	rows map[string]*entity.StockReturn
}

func newFakeReturnRepo() *fakeReturnRepo {
	return &fakeReturnRepo{rows: make(map[string]*entity.StockReturn)}
}

func (r *fakeReturnRepo) Create(_ context.Context, stockReturn *entity.StockReturn) error {
	if stockReturn.ID == "" {
		stockReturn.ID = uuid.New().String()
	}
	for _, it := range stockReturn.Items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.ReturnID = stockReturn.ID
	}
	r.rows[stockReturn.ID] = stockReturn
	return nil
}

func (r *fakeReturnRepo) GetByID(_ context.Context, tenantID, id string) (*entity.StockReturn, error) {
	ret, ok := r.rows[id]
	if !ok || ret.TenantID != tenantID {
		return nil, nil
	}
	return ret, nil
}

func (r *fakeReturnRepo) ListByRequest(_ context.Context, tenantID, requestID string) ([]*entity.StockReturn, error) {
	var out []*entity.StockReturn
	for _, ret := range r.rows {
		if ret.TenantID == tenantID && ret.RequestID != nil && *ret.RequestID == requestID {
			out = append(out, ret)
		}
	}
	return out, nil
}

func (r *fakeReturnRepo) List(_ context.Context, tenantID string, _, _ int) ([]*entity.StockReturn, error) {
	var out []*entity.StockReturn
	for _, ret := range r.rows {
		if ret.TenantID == tenantID {
			out = append(out, ret)
		}
	}
	return out, nil
}

// ─── Catálogo ────────────────────────────────────────────────────────────────

type fakeProductRepo struct {
	products      map[string]*entity.Product
	presentations map[string]*entity.Presentation
	batches       map[string]*entity.ProductBatch
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		products:      make(map[string]*entity.Product),
		presentations: make(map[string]*entity.Presentation),
		batches:       make(map[string]*entity.ProductBatch),
	}
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.products[id], nil
}

func (r *fakeProductRepo) GetBySKU(_ context.Context, tenantID, sku string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.TenantID == tenantID && p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) ListByTenant(_ context.Context, tenantID string, _, _ int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.products {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) CreatePresentation(_ context.Context, p *entity.Presentation) error {
	r.presentations[p.ID] = p
	return nil
}

func (r *fakeProductRepo) ListPresentations(_ context.Context, productID string) ([]*entity.Presentation, error) {
	var out []*entity.Presentation
	for _, p := range r.presentations {
		if p.ProductID == productID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) GetPresentation(_ context.Context, id string) (*entity.Presentation, error) {
	return r.presentations[id], nil
}

func (r *fakeProductRepo) CreateBatch(_ context.Context, b *entity.ProductBatch) error {
	r.batches[b.ID] = b
	return nil
}

func (r *fakeProductRepo) GetBatch(_ context.Context, tenantID, id string) (*entity.ProductBatch, error) {
	b, ok := r.batches[id]
	if !ok || b.TenantID != tenantID {
		return nil, nil
	}
	return b, nil
}

func (r *fakeProductRepo) ListBatches(_ context.Context, tenantID, productID string) ([]*entity.ProductBatch, error) {
	var out []*entity.ProductBatch
	for _, b := range r.batches {
		if b.TenantID == tenantID && b.ProductID == productID {
			out = append(out, b)
		}
	}
	return out, nil
}

// ─── Bodegas ─────────────────────────────────────────────────────────────────

type fakeWarehouseRepo struct {
	warehouses map[string]*entity.Warehouse
	locations  map[string]*entity.Location
}

func newFakeWarehouseRepo() *fakeWarehouseRepo {
	return &fakeWarehouseRepo{
		warehouses: make(map[string]*entity.Warehouse),
		locations:  make(map[string]*entity.Location),
	}
}

func (r *fakeWarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	r.warehouses[w.ID] = w
	return nil
}

func (r *fakeWarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	return r.warehouses[id], nil
}

func (r *fakeWarehouseRepo) ListByTenant(_ context.Context, tenantID string, _, _ int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	for _, w := range r.warehouses {
		if w.TenantID == tenantID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeWarehouseRepo) CreateLocation(_ context.Context, l *entity.Location) error {
	r.locations[l.ID] = l
	return nil
}

func (r *fakeWarehouseRepo) GetLocation(_ context.Context, tenantID, id string) (*entity.Location, error) {
	l, ok := r.locations[id]
	if !ok || l.TenantID != tenantID {
		return nil, nil
	}
	return l, nil
}

func (r *fakeWarehouseRepo) GetDefaultLocation(_ context.Context, tenantID, warehouseID string) (*entity.Location, error) {
	for _, l := range r.locations {
		if l.TenantID == tenantID && l.WarehouseID == warehouseID && l.IsDefault {
			return l, nil
		}
	}
	return nil, nil
}

func (r *fakeWarehouseRepo) ListLocations(_ context.Context, tenantID, warehouseID string) ([]*entity.Location, error) {
	var out []*entity.Location
	for _, l := range r.locations {
		if l.TenantID == tenantID && l.WarehouseID == warehouseID {
			out = append(out, l)
		}
	}
	return out, nil
}

// ─── Entorno de prueba ───────────────────────────────────────────────────────

// testEnv arma el grafo completo de casos de uso sobre los repos en memoria.
type testEnv struct {
	balances   *fakeBalanceRepo
	movements  *fakeMovementRepo
	requests   *fakeRequestRepo
	returns    *fakeReturnRepo
	products   *fakeProductRepo
	warehouses *fakeWarehouseRepo
	sink       *recordingSink

	ledger        *appinv.Ledger
	registerUC    *appinv.RegisterMovementUseCase
	requestUC     *appinv.MovementRequestUseCase
	fulfillmentUC *appinv.FulfillmentUseCase
	receptionUC   *appinv.ReceptionUseCase
}

func newTestEnv() *testEnv {
	env := &testEnv{
		balances:   newFakeBalanceRepo(),
		movements:  newFakeMovementRepo(),
		requests:   newFakeRequestRepo(),
		returns:    newFakeReturnRepo(),
		products:   newFakeProductRepo(),
		warehouses: newFakeWarehouseRepo(),
		sink:       &recordingSink{},
	}
	tx := &fakeTxRunner{
		balances:  env.balances,
		movements: env.movements,
		requests:  env.requests,
		returns:   env.returns,
	}
	env.ledger = appinv.NewLedger(tx, env.balances, logger.Nop(), env.sink)
	env.registerUC = appinv.NewRegisterMovementUseCase(env.ledger, env.products, env.warehouses)
	env.requestUC = appinv.NewMovementRequestUseCase(tx, env.requests, env.movements, env.products, env.warehouses, env.sink)
	env.fulfillmentUC = appinv.NewFulfillmentUseCase(tx, env.ledger, env.products, env.sink)
	env.receptionUC = appinv.NewReceptionUseCase(tx, env.ledger, env.warehouses, env.sink)
	return env
}

func (env *testEnv) seedProduct(tenantID, id, sku string) {
	env.products.products[id] = &entity.Product{ID: id, TenantID: tenantID, SKU: sku, Name: "Producto " + sku}
}

func (env *testEnv) seedPresentation(id, productID string, factor decimal.Decimal) {
	env.products.presentations[id] = &entity.Presentation{ID: id, ProductID: productID, Factor: factor}
}

// seedWarehouse crea la bodega con su ubicación de recepción por defecto.
func (env *testEnv) seedWarehouse(tenantID, id, defaultLocationID string) {
	env.warehouses.warehouses[id] = &entity.Warehouse{ID: id, TenantID: tenantID, Name: "Bodega " + id}
	env.warehouses.locations[defaultLocationID] = &entity.Location{
		ID:          defaultLocationID,
		TenantID:    tenantID,
		WarehouseID: id,
		Name:        "Recepción",
		IsDefault:   true,
	}
}

func (env *testEnv) seedLocation(tenantID, warehouseID, id string) {
	env.warehouses.locations[id] = &entity.Location{ID: id, TenantID: tenantID, WarehouseID: warehouseID, Name: "Ubicación " + id}
}

// ─── TxRunner y EventSink ────────────────────────────────────────────────────

// fakeTxRunner entrega siempre los mismos repos en memoria; no hay rollback,
// así que los tests de atomicidad verifican el error antes de cualquier
// escritura (el conciliador valida todo el lote primero).
type fakeTxRunner struct {
	balances  repository.BalanceRepository
	movements repository.StockMovementRepository
	requests  repository.MovementRequestRepository
	returns   repository.StockReturnRepository
}

func (tr *fakeTxRunner) Run(_ context.Context, fn func(
	repository.BalanceRepository,
	repository.StockMovementRepository,
	repository.MovementRequestRepository,
	repository.StockReturnRepository,
) error) error {
	return fn(tr.balances, tr.movements, tr.requests, tr.returns)
}

// recordingSink acumula los eventos publicados.
type recordingSink struct {
	events []dominv.Event
}

func (s *recordingSink) Publish(_ context.Context, events ...dominv.Event) {
	s.events = append(s.events, events...)
}

func (s *recordingSink) typesSeen() []string {
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Type)
	}
	return out
}
