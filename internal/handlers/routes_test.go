package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"restopos/internal/common"
	"restopos/internal/jobs/background"
	"restopos/internal/middleware"
	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const routeSecret = "route-secret"

type fakeRunner struct {
	ran []string
}

func (f *fakeRunner) GetJobStatus() []background.JobStatus {
	return []background.JobStatus{{Name: background.JobDashboardRefresh}}
}

func (f *fakeRunner) RunNow(name string) error {
	if name != background.JobDashboardRefresh {
		return errors.New("job not found")
	}
	f.ran = append(f.ran, name)
	return nil
}

type routeFixture struct {
	e           *echo.Echo
	tables      *MockTableService
	tableOrders *MockTableOrderService
	orders      *MockOrderService
	jobs        *fakeRunner
	tenantID    uuid.UUID
}

func newRouteFixture(t *testing.T) *routeFixture {
	t.Helper()
	f := &routeFixture{
		e:           echo.New(),
		tables:      new(MockTableService),
		tableOrders: new(MockTableOrderService),
		orders:      new(MockOrderService),
		jobs:        &fakeRunner{},
		tenantID:    uuid.New(),
	}
	router := &Router{
		Tables:      NewTableHandlers(f.tables),
		TableOrders: NewTableOrderHandlers(f.tableOrders),
		Orders:      NewOrderHandlers(f.orders, nil),
		Products:    NewProductHandlers(nil),
		Categories:  NewCategoryHandlers(nil),
		Customers:   NewCustomerHandlers(nil),
		Dashboard:   NewDashboardHandlers(nil),
		Jobs:        NewJobHandlers(f.jobs),
	}
	router.Register(f.e.Group("/v1", middleware.JWTMiddleware(routeSecret)))
	return f
}

func (f *routeFixture) do(t *testing.T, role, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if role != "" {
		token, err := middleware.IssueToken(routeSecret, uuid.New(), f.tenantID, role, time.Hour)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_RequireToken(t *testing.T) {
	f := newRouteFixture(t)
	rec := f.do(t, "", http.MethodGet, "/v1/tables", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_TableWritesNeedManagement(t *testing.T) {
	f := newRouteFixture(t)
	f.tables.On("Create", mock.Anything, f.tenantID, mock.AnythingOfType("*models.RestaurantTable")).Return(nil).Once()

	body := `{"table_number":"T9","capacity":4}`
	assert.Equal(t, http.StatusForbidden, f.do(t, middleware.RoleCashier, http.MethodPost, "/v1/tables", body).Code)
	assert.Equal(t, http.StatusCreated, f.do(t, middleware.RoleManager, http.MethodPost, "/v1/tables", body).Code)
	f.tables.AssertExpectations(t)
}

func TestRoutes_CashierCanRunCart(t *testing.T) {
	f := newRouteFixture(t)
	tableID := uuid.New()
	cart := &models.Order{ID: uuid.New(), Status: models.OrderStatusPending}
	f.tableOrders.On("AddToCart", mock.Anything, f.tenantID, mock.Anything, tableID, mock.Anything).Return(cart, nil).Once()

	body := `{"product_id":"` + uuid.NewString() + `","quantity":1}`
	rec := f.do(t, middleware.RoleCashier, http.MethodPost, "/v1/table-orders/table/"+tableID.String()+"/cart", body)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, "WAITER", http.MethodPost, "/v1/table-orders/table/"+tableID.String()+"/cart", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.tableOrders.AssertExpectations(t)
}

func TestRoutes_StaticSegmentsWinOverIDs(t *testing.T) {
	f := newRouteFixture(t)
	f.tables.On("List", mock.Anything, f.tenantID).Return([]*models.RestaurantTable{
		{ID: uuid.New(), TableNumber: "T1", Status: models.TableStatusOccupied, CurrentOrderID: ptrUUID(uuid.New())},
	}, nil).Once()
	f.tables.On("GetByNumber", mock.Anything, f.tenantID, "T1").Return(&models.RestaurantTable{TableNumber: "T1"}, nil).Once()

	rec := f.do(t, middleware.RoleCashier, http.MethodGet, "/v1/tables/floor-plan", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"has_order":true`)

	rec = f.do(t, middleware.RoleCashier, http.MethodGet, "/v1/tables/number/T1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	f.tables.AssertExpectations(t)
}

func TestRoutes_FilterTables(t *testing.T) {
	f := newRouteFixture(t)
	f.tables.On("Filter", mock.Anything, f.tenantID, "available", "patio", mock.MatchedBy(func(c *int) bool {
		return c != nil && *c == 4
	})).Return([]*models.RestaurantTable{}, nil).Once()

	rec := f.do(t, middleware.RoleCashier, http.MethodGet, "/v1/tables/filter?status=available&location=patio&capacity=4", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, middleware.RoleCashier, http.MethodGet, "/v1/tables/filter?capacity=many", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.tables.AssertExpectations(t)
}

func TestRoutes_DeleteOccupiedTable(t *testing.T) {
	f := newRouteFixture(t)
	tableID := uuid.New()
	f.tables.On("Delete", mock.Anything, f.tenantID, tableID).Return(common.InvalidState("table T1 still has a current order")).Once()

	rec := f.do(t, middleware.RoleAdmin, http.MethodDelete, "/v1/tables/"+tableID.String(), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "CLIENT_ERROR")
}

func TestRoutes_OrderStatus(t *testing.T) {
	f := newRouteFixture(t)
	orderID := uuid.New()
	f.orders.On("UpdateStatus", mock.Anything, f.tenantID, mock.Anything, orderID, "READY").
		Return(&models.Order{ID: orderID, Status: models.OrderStatusReady}, nil).Once()

	rec := f.do(t, middleware.RoleCashier, http.MethodPatch, "/v1/orders/"+orderID.String()+"/status", `{"status":"READY"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, middleware.RoleCashier, http.MethodPatch, "/v1/orders/"+orderID.String()+"/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.orders.AssertExpectations(t)
}

func TestRoutes_ListOrdersPagination(t *testing.T) {
	f := newRouteFixture(t)
	f.orders.On("ListOrders", mock.Anything, f.tenantID, 20, 40).Return([]*models.Order{}, nil).Once()

	rec := f.do(t, middleware.RoleCashier, http.MethodGet, "/v1/orders?limit=20&offset=40", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"limit":20`)

	rec = f.do(t, middleware.RoleCashier, http.MethodGet, "/v1/orders?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.orders.AssertExpectations(t)
}

func TestRoutes_ReceiptWithoutArchive(t *testing.T) {
	f := newRouteFixture(t)
	rec := f.do(t, middleware.RoleCashier, http.MethodGet, "/v1/orders/"+uuid.NewString()+"/receipt", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutes_JobsAreAdminOnly(t *testing.T) {
	f := newRouteFixture(t)

	assert.Equal(t, http.StatusForbidden, f.do(t, middleware.RoleManager, http.MethodGet, "/v1/jobs", "").Code)

	rec := f.do(t, middleware.RoleAdmin, http.MethodGet, "/v1/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), background.JobDashboardRefresh)

	rec = f.do(t, middleware.RoleAdmin, http.MethodPost, "/v1/jobs/"+background.JobDashboardRefresh+"/run", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{background.JobDashboardRefresh}, f.jobs.ran)

	rec = f.do(t, middleware.RoleAdmin, http.MethodPost, "/v1/jobs/nope/run", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	e := echo.New()

	h := NewHealthHandlers(fakePinger{}, fakePinger{err: errors.New("redis down")}, nil, "test")
	rec := httptest.NewRecorder()
	require.NoError(t, h.HealthCheck(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
	assert.Contains(t, rec.Body.String(), `"redis":"unhealthy"`)
	assert.Contains(t, rec.Body.String(), `"storage":"disabled"`)

	rec = httptest.NewRecorder()
	require.NoError(t, h.ReadinessCheck(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	down := NewHealthHandlers(fakePinger{err: errors.New("no db")}, nil, nil, "test")
	rec = httptest.NewRecorder()
	require.NoError(t, down.HealthCheck(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	require.NoError(t, down.ReadinessCheck(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func ptrUUID(id uuid.UUID) *uuid.UUID {
	return &id
}
