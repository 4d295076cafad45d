package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"restopos/internal/caching"
	"restopos/internal/common"
	"restopos/internal/messaging"
	"restopos/internal/models"
	"restopos/internal/repositories"
	"restopos/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory repositories.Store. Transactions are serialized
// and roll back by restoring a snapshot. Rows are copied in and out so
// callers never share state with the store.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data memData

	// fail makes the named operation, e.g. "Orders.Count", return the error
	fail map[string]error
}

type memData struct {
	orders     map[uuid.UUID]*models.Order
	tables     map[uuid.UUID]*models.RestaurantTable
	products   map[uuid.UUID]*models.Product
	categories map[uuid.UUID]*models.Category
	customers  map[uuid.UUID]*models.Customer
}

func newMemStore() *memStore {
	return &memStore{
		data: memData{
			orders:     map[uuid.UUID]*models.Order{},
			tables:     map[uuid.UUID]*models.RestaurantTable{},
			products:   map[uuid.UUID]*models.Product{},
			categories: map[uuid.UUID]*models.Category{},
			customers:  map[uuid.UUID]*models.Customer{},
		},
		fail: map[string]error{},
	}
}

func (d memData) clone() memData {
	c := memData{
		orders:     make(map[uuid.UUID]*models.Order, len(d.orders)),
		tables:     make(map[uuid.UUID]*models.RestaurantTable, len(d.tables)),
		products:   make(map[uuid.UUID]*models.Product, len(d.products)),
		categories: make(map[uuid.UUID]*models.Category, len(d.categories)),
		customers:  make(map[uuid.UUID]*models.Customer, len(d.customers)),
	}
	for k, v := range d.orders {
		c.orders[k] = cloneOrder(v)
	}
	for k, v := range d.tables {
		t := *v
		c.tables[k] = &t
	}
	for k, v := range d.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range d.categories {
		cat := *v
		c.categories[k] = &cat
	}
	for k, v := range d.customers {
		cust := *v
		c.customers[k] = &cust
	}
	return c
}

func cloneOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = make([]*models.OrderItem, len(o.Items))
	for i, item := range o.Items {
		copied := *item
		c.Items[i] = &copied
	}
	return &c
}

func cloneTable(t *models.RestaurantTable) *models.RestaurantTable {
	c := *t
	return &c
}

func (s *memStore) Orders() repositories.OrderRepository         { return memOrders{s} }
func (s *memStore) OrderItems() repositories.OrderItemRepository { return memOrderItems{s} }
func (s *memStore) Tables() repositories.TableRepository         { return memTables{s} }
func (s *memStore) Products() repositories.ProductRepository     { return memProducts{s} }
func (s *memStore) Categories() repositories.CategoryRepository  { return memCategories{s} }
func (s *memStore) Customers() repositories.CustomerRepository   { return memCustomers{s} }

func (s *memStore) WithinTx(ctx context.Context, fn func(repositories.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func TestMemStore_WithinTxSerializes(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	tenantID := uuid.New()
	first := store.addTable(tenantID, "T1", models.TableStatusAvailable)
	second := store.addTable(tenantID, "T2", models.TableStatusAvailable)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- store.WithinTx(ctx, func(tx repositories.Store) error {
			if _, err := tx.Tables().GetByIDForUpdate(ctx, tenantID, first.ID); err != nil {
				return err
			}
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	ran := make(chan struct{})
	go func() {
		_ = store.WithinTx(ctx, func(tx repositories.Store) error {
			_, err := tx.Tables().GetByIDForUpdate(ctx, tenantID, second.ID)
			close(ran)
			return err
		})
	}()

	select {
	case <-ran:
		t.Fatal("second transaction ran while the first was open")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-done)
	assert.Eventually(t, func() bool {
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func (s *memStore) failure(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail[op]
}

func (s *memStore) setFailure(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

// seed helpers

func (s *memStore) addTable(tenantID uuid.UUID, number string, status models.TableStatus) *models.RestaurantTable {
	now := time.Now()
	table := &models.RestaurantTable{
		ID:          uuid.New(),
		TenantID:    tenantID,
		TableNumber: number,
		Capacity:    4,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	s.data.tables[table.ID] = cloneTable(table)
	s.mu.Unlock()
	return table
}

func (s *memStore) addProduct(tenantID uuid.UUID, name, price string) *models.Product {
	product := &models.Product{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Active:   true,
	}
	s.mu.Lock()
	p := *product
	s.data.products[product.ID] = &p
	s.mu.Unlock()
	return product
}

func (s *memStore) addCustomer(tenantID uuid.UUID, name string) *models.Customer {
	customer := &models.Customer{ID: uuid.New(), TenantID: tenantID, Name: name}
	s.mu.Lock()
	c := *customer
	s.data.customers[customer.ID] = &c
	s.mu.Unlock()
	return customer
}

func (s *memStore) table(id uuid.UUID) *models.RestaurantTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.data.tables[id]; ok {
		return cloneTable(t)
	}
	return nil
}

func (s *memStore) order(id uuid.UUID) *models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.data.orders[id]; ok {
		return cloneOrder(o)
	}
	return nil
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.orders)
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

type memOrders struct{ s *memStore }

func (r memOrders) Create(ctx context.Context, order *models.Order) error {
	if err := r.s.failure("Orders.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r memOrders) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.data.orders[id]
	if !ok || o.TenantID != tenantID {
		return nil, common.NotFound("order", id)
	}
	return cloneOrder(o), nil
}

func (r memOrders) GetByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r memOrders) GetByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*models.Order, error) {
	for _, o := range r.filter(tenantID, func(o *models.Order) bool { return o.OrderNumber == orderNumber }) {
		return o, nil
	}
	return nil, common.NotFound("order", orderNumber)
}

func (r memOrders) Update(ctx context.Context, order *models.Order) error {
	if err := r.s.failure("Orders.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.orders[order.ID]
	if !ok || existing.TenantID != order.TenantID {
		return common.NotFound("order", order.ID)
	}
	r.s.data.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r memOrders) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.data.orders[id]
	if !ok || o.TenantID != tenantID {
		return common.NotFound("order", id)
	}
	delete(r.s.data.orders, id)
	return nil
}

// filter returns copies of the tenant's orders matching keep, newest first
func (r memOrders) filter(tenantID uuid.UUID, keep func(*models.Order) bool) []*models.Order {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	orders := []*models.Order{}
	for _, o := range r.s.data.orders {
		if o.TenantID == tenantID && keep(o) {
			orders = append(orders, cloneOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders
}

func (r memOrders) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	return paginate(r.filter(tenantID, func(*models.Order) bool { return true }), limit, offset), nil
}

func (r memOrders) ListByTable(ctx context.Context, tenantID, tableID uuid.UUID) ([]*models.Order, error) {
	return r.filter(tenantID, func(o *models.Order) bool { return o.BelongsToTable(tableID) }), nil
}

func (r memOrders) ListByStatus(ctx context.Context, tenantID uuid.UUID, status models.OrderStatus, limit, offset int) ([]*models.Order, error) {
	return paginate(r.filter(tenantID, func(o *models.Order) bool { return o.Status == status }), limit, offset), nil
}

func (r memOrders) ListByType(ctx context.Context, tenantID uuid.UUID, orderType models.OrderType, limit, offset int) ([]*models.Order, error) {
	return paginate(r.filter(tenantID, func(o *models.Order) bool { return o.OrderType == orderType }), limit, offset), nil
}

func (r memOrders) ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*models.Order, error) {
	return r.filter(tenantID, func(o *models.Order) bool {
		return o.CustomerID != nil && *o.CustomerID == customerID
	}), nil
}

func (r memOrders) ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]*models.Order, error) {
	if err := r.s.failure("Orders.ListRecent"); err != nil {
		return nil, err
	}
	return paginate(r.filter(tenantID, func(*models.Order) bool { return true }), limit, 0), nil
}

func (r memOrders) Count(ctx context.Context, tenantID uuid.UUID) (int, error) {
	if err := r.s.failure("Orders.Count"); err != nil {
		return 0, err
	}
	return len(r.filter(tenantID, func(*models.Order) bool { return true })), nil
}

func (r memOrders) SumTotalByStatus(ctx context.Context, tenantID uuid.UUID, status models.OrderStatus) (decimal.Decimal, error) {
	if err := r.s.failure("Orders.SumTotalByStatus"); err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, o := range r.filter(tenantID, func(o *models.Order) bool { return o.Status == status }) {
		total = total.Add(o.TotalAmount)
	}
	return total, nil
}

type memOrderItems struct{ s *memStore }

func (r memOrderItems) ReplaceForOrder(ctx context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.orders[order.ID]
	if !ok {
		return common.NotFound("order", order.ID)
	}
	existing.Items = cloneOrder(order).Items
	return nil
}

func (r memOrderItems) ListByOrderID(ctx context.Context, tenantID, orderID uuid.UUID) ([]*models.OrderItem, error) {
	order, err := memOrders(r).GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	return order.Items, nil
}

func (r memOrderItems) ListByOrderIDs(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) ([]*models.OrderItem, error) {
	items := []*models.OrderItem{}
	for _, id := range orderIDs {
		if order, err := memOrders(r).GetByID(ctx, tenantID, id); err == nil {
			items = append(items, order.Items...)
		}
	}
	return items, nil
}

type memTables struct{ s *memStore }

func (r memTables) Create(ctx context.Context, table *models.RestaurantTable) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.tables[table.ID] = cloneTable(table)
	return nil
}

func (r memTables) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.RestaurantTable, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.data.tables[id]
	if !ok || t.TenantID != tenantID {
		return nil, common.NotFound("table", id)
	}
	return cloneTable(t), nil
}

func (r memTables) GetByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.RestaurantTable, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r memTables) GetByNumber(ctx context.Context, tenantID uuid.UUID, tableNumber string) (*models.RestaurantTable, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.data.tables {
		if t.TenantID == tenantID && t.TableNumber == tableNumber {
			return cloneTable(t), nil
		}
	}
	return nil, common.NotFound("table", tableNumber)
}

func (r memTables) Update(ctx context.Context, table *models.RestaurantTable) error {
	if err := r.s.failure("Tables.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.tables[table.ID]
	if !ok || existing.TenantID != table.TenantID {
		return common.NotFound("table", table.ID)
	}
	r.s.data.tables[table.ID] = cloneTable(table)
	return nil
}

func (r memTables) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.data.tables[id]
	if !ok || t.TenantID != tenantID {
		return common.NotFound("table", id)
	}
	delete(r.s.data.tables, id)
	return nil
}

func (r memTables) List(ctx context.Context, tenantID uuid.UUID) ([]*models.RestaurantTable, error) {
	return r.Filter(ctx, tenantID, models.TableFilter{})
}

func (r memTables) Filter(ctx context.Context, tenantID uuid.UUID, filter models.TableFilter) ([]*models.RestaurantTable, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tables := []*models.RestaurantTable{}
	for _, t := range r.s.data.tables {
		if t.TenantID != tenantID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Location != "" && (t.Location == nil || !strings.EqualFold(*t.Location, filter.Location)) {
			continue
		}
		if filter.MinCapacity != nil && t.Capacity < *filter.MinCapacity {
			continue
		}
		tables = append(tables, cloneTable(t))
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].TableNumber < tables[j].TableNumber })
	return tables, nil
}

type memProducts struct{ s *memStore }

func (r memProducts) Create(ctx context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := *product
	r.s.data.products[product.ID] = &p
	return nil
}

func (r memProducts) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.products[id]
	if !ok || p.TenantID != tenantID {
		return nil, common.NotFound("product", id)
	}
	copied := *p
	return &copied, nil
}

func (r memProducts) Update(ctx context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.products[product.ID]
	if !ok || existing.TenantID != product.TenantID {
		return common.NotFound("product", product.ID)
	}
	p := *product
	r.s.data.products[product.ID] = &p
	return nil
}

func (r memProducts) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.products[id]
	if !ok || p.TenantID != tenantID {
		return common.NotFound("product", id)
	}
	delete(r.s.data.products, id)
	return nil
}

func (r memProducts) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	products := []*models.Product{}
	for _, p := range r.s.data.products {
		if p.TenantID == tenantID {
			copied := *p
			products = append(products, &copied)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return paginate(products, limit, offset), nil
}

func (r memProducts) Count(ctx context.Context, tenantID uuid.UUID) (int, error) {
	if err := r.s.failure("Products.Count"); err != nil {
		return 0, err
	}
	products, _ := r.List(ctx, tenantID, 0, 0)
	return len(products), nil
}

type memCategories struct{ s *memStore }

func (r memCategories) Create(ctx context.Context, category *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *category
	r.s.data.categories[category.ID] = &c
	return nil
}

func (r memCategories) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.categories[id]
	if !ok || c.TenantID != tenantID {
		return nil, common.NotFound("category", id)
	}
	copied := *c
	return &copied, nil
}

func (r memCategories) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	categories := []*models.Category{}
	for _, c := range r.s.data.categories {
		if c.TenantID == tenantID {
			copied := *c
			categories = append(categories, &copied)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return paginate(categories, limit, offset), nil
}

type memCustomers struct{ s *memStore }

func (r memCustomers) Create(ctx context.Context, customer *models.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *customer
	r.s.data.customers[customer.ID] = &c
	return nil
}

func (r memCustomers) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.customers[id]
	if !ok || c.TenantID != tenantID {
		return nil, common.NotFound("customer", id)
	}
	copied := *c
	return &copied, nil
}

func (r memCustomers) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	customers := []*models.Customer{}
	for _, c := range r.s.data.customers {
		if c.TenantID == tenantID {
			copied := *c
			customers = append(customers, &copied)
		}
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].Name < customers[j].Name })
	return paginate(customers, limit, offset), nil
}

func (r memCustomers) Count(ctx context.Context, tenantID uuid.UUID) (int, error) {
	if err := r.s.failure("Customers.Count"); err != nil {
		return 0, err
	}
	customers, _ := r.List(ctx, tenantID, 0, 0)
	return len(customers), nil
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event messaging.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// publishedTypes lists the event types passed to Publish, in call order
func (m *MockEventPublisher) publishedTypes() []messaging.EventType {
	types := []messaging.EventType{}
	for _, call := range m.Calls {
		if call.Method == "Publish" {
			types = append(types, call.Arguments.Get(1).(messaging.Event).Type)
		}
	}
	return types
}

type MockReceiptStore struct {
	mock.Mock
}

func (m *MockReceiptStore) Archive(ctx context.Context, tenantID uuid.UUID, receipt *storage.Receipt) (string, error) {
	args := m.Called(ctx, tenantID, receipt)
	return args.String(0), args.Error(1)
}

func (m *MockReceiptStore) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockReceiptStore) EnsureBucketExists(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockReceiptStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCacheService) SetProduct(ctx context.Context, tenantID uuid.UUID, product *models.Product, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, product, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) error {
	args := m.Called(ctx, tenantID, productID)
	return args.Error(0)
}

func (m *MockCacheService) GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*models.DashboardStats, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

func (m *MockCacheService) SetDashboardStats(ctx context.Context, tenantID uuid.UUID, stats *models.DashboardStats, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, stats, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteDashboardStats(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ caching.CacheService = (*MockCacheService)(nil)
var _ storage.ReceiptStore = (*MockReceiptStore)(nil)
var _ messaging.EventPublisher = (*MockEventPublisher)(nil)
