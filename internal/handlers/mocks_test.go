package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"restopos/internal/middleware"
	"restopos/internal/models"
	"restopos/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
)

type MockTableOrderService struct {
	mock.Mock
}

var _ services.TableOrderService = (*MockTableOrderService)(nil)

func orderResult(args mock.Arguments) (*models.Order, error) {
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *MockTableOrderService) GetOrCreateCart(ctx context.Context, tenantID, actorID, tableID uuid.UUID, seed models.CartSeed) (*models.Order, error) {
	return orderResult(m.Called(ctx, tenantID, actorID, tableID, seed))
}

func (m *MockTableOrderService) AddToCart(ctx context.Context, tenantID, actorID, tableID uuid.UUID, req models.AddToCartRequest) (*models.Order, error) {
	return orderResult(m.Called(ctx, tenantID, actorID, tableID, req))
}

func (m *MockTableOrderService) RemoveFromCart(ctx context.Context, tenantID, actorID, tableID uuid.UUID, req models.RemoveFromCartRequest) (*models.Order, error) {
	return orderResult(m.Called(ctx, tenantID, actorID, tableID, req))
}

func (m *MockTableOrderService) CompleteAndClear(ctx context.Context, tenantID, actorID, orderID uuid.UUID, payment models.PaymentDetails) (*models.CompletionResult, error) {
	args := m.Called(ctx, tenantID, actorID, orderID, payment)
	result, _ := args.Get(0).(*models.CompletionResult)
	return result, args.Error(1)
}

func (m *MockTableOrderService) CreateTableOrder(ctx context.Context, tenantID, actorID, tableID uuid.UUID, req models.CreateTableOrderRequest) (*models.Order, error) {
	return orderResult(m.Called(ctx, tenantID, actorID, tableID, req))
}

func (m *MockTableOrderService) GetCurrentOrder(ctx context.Context, tenantID, tableID uuid.UUID) (*models.Order, error) {
	return orderResult(m.Called(ctx, tenantID, tableID))
}

func (m *MockTableOrderService) GetActiveCart(ctx context.Context, tenantID, tableID uuid.UUID) (*models.Order, error) {
	return orderResult(m.Called(ctx, tenantID, tableID))
}

func (m *MockTableOrderService) ListTableOrders(ctx context.Context, tenantID, tableID uuid.UUID) ([]*models.Order, error) {
	args := m.Called(ctx, tenantID, tableID)
	orders, _ := args.Get(0).([]*models.Order)
	return orders, args.Error(1)
}

type MockTableService struct {
	mock.Mock
}

var _ services.TableService = (*MockTableService)(nil)

func tableResult(args mock.Arguments) (*models.RestaurantTable, error) {
	table, _ := args.Get(0).(*models.RestaurantTable)
	return table, args.Error(1)
}

func tablesResult(args mock.Arguments) ([]*models.RestaurantTable, error) {
	tables, _ := args.Get(0).([]*models.RestaurantTable)
	return tables, args.Error(1)
}

func (m *MockTableService) Create(ctx context.Context, tenantID uuid.UUID, table *models.RestaurantTable) error {
	return m.Called(ctx, tenantID, table).Error(0)
}

func (m *MockTableService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.RestaurantTable, error) {
	return tableResult(m.Called(ctx, tenantID, id))
}

func (m *MockTableService) GetByNumber(ctx context.Context, tenantID uuid.UUID, tableNumber string) (*models.RestaurantTable, error) {
	return tableResult(m.Called(ctx, tenantID, tableNumber))
}

func (m *MockTableService) List(ctx context.Context, tenantID uuid.UUID) ([]*models.RestaurantTable, error) {
	return tablesResult(m.Called(ctx, tenantID))
}

func (m *MockTableService) Filter(ctx context.Context, tenantID uuid.UUID, status, location string, minCapacity *int) ([]*models.RestaurantTable, error) {
	return tablesResult(m.Called(ctx, tenantID, status, location, minCapacity))
}

func (m *MockTableService) Update(ctx context.Context, tenantID uuid.UUID, table *models.RestaurantTable) (*models.RestaurantTable, error) {
	return tableResult(m.Called(ctx, tenantID, table))
}

func (m *MockTableService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockTableService) Clear(ctx context.Context, tenantID, actorID, id uuid.UUID) (*models.RestaurantTable, error) {
	return tableResult(m.Called(ctx, tenantID, actorID, id))
}

func (m *MockTableService) MarkAvailable(ctx context.Context, tenantID, id uuid.UUID) (*models.RestaurantTable, error) {
	return tableResult(m.Called(ctx, tenantID, id))
}

func (m *MockTableService) ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (*models.RestaurantTable, error) {
	return tableResult(m.Called(ctx, tenantID, id, status))
}

func (m *MockTableService) UpdatePosition(ctx context.Context, tenantID, id uuid.UUID, position models.TablePosition) (*models.RestaurantTable, error) {
	return tableResult(m.Called(ctx, tenantID, id, position))
}

type MockOrderService struct {
	mock.Mock
}

var _ services.OrderService = (*MockOrderService)(nil)

func ordersResult(args mock.Arguments) ([]*models.Order, error) {
	orders, _ := args.Get(0).([]*models.Order)
	return orders, args.Error(1)
}

func (m *MockOrderService) CreateOrder(ctx context.Context, tenantID, actorID uuid.UUID, req models.CreateOrderRequest) (*models.Order, error) {
	return orderResult(m.Called(ctx, tenantID, actorID, req))
}

func (m *MockOrderService) GetOrderByID(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	return orderResult(m.Called(ctx, tenantID, orderID))
}

func (m *MockOrderService) GetOrderByNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*models.Order, error) {
	return orderResult(m.Called(ctx, tenantID, orderNumber))
}

func (m *MockOrderService) ListOrders(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	return ordersResult(m.Called(ctx, tenantID, limit, offset))
}

func (m *MockOrderService) ListOrdersByStatus(ctx context.Context, tenantID uuid.UUID, status string, limit, offset int) ([]*models.Order, error) {
	return ordersResult(m.Called(ctx, tenantID, status, limit, offset))
}

func (m *MockOrderService) ListOrdersByType(ctx context.Context, tenantID uuid.UUID, orderType string, limit, offset int) ([]*models.Order, error) {
	return ordersResult(m.Called(ctx, tenantID, orderType, limit, offset))
}

func (m *MockOrderService) ListOrdersByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*models.Order, error) {
	return ordersResult(m.Called(ctx, tenantID, customerID))
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, tenantID, actorID, orderID uuid.UUID, status string) (*models.Order, error) {
	return orderResult(m.Called(ctx, tenantID, actorID, orderID, status))
}

func (m *MockOrderService) AddItem(ctx context.Context, tenantID, orderID uuid.UUID, line models.OrderLineRequest) (*models.Order, error) {
	return orderResult(m.Called(ctx, tenantID, orderID, line))
}

func (m *MockOrderService) RemoveItem(ctx context.Context, tenantID, orderID, itemID uuid.UUID) (*models.Order, error) {
	return orderResult(m.Called(ctx, tenantID, orderID, itemID))
}

func (m *MockOrderService) DeleteOrder(ctx context.Context, tenantID, orderID uuid.UUID) error {
	return m.Called(ctx, tenantID, orderID).Error(0)
}

// caller is the identity attached to handler test requests
type caller struct {
	tenantID uuid.UUID
	userID   uuid.UUID
	role     string
}

func newCaller(role string) caller {
	return caller{tenantID: uuid.New(), userID: uuid.New(), role: role}
}

// newContext builds an echo context for calling a handler directly, with the
// caller's identity in the request context and the given path parameters
func newContext(e *echo.Echo, who caller, method, body string, params map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/", reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req = req.WithContext(middleware.WithIdentity(req.Context(), &middleware.JWTCustomClaims{
		UserID:   who.userID,
		TenantID: who.tenantID,
		Role:     who.role,
	}))

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for name, value := range params {
		names = append(names, name)
		values = append(values, value)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}
