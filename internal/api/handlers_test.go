package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoparts-tn/orders-api/internal/clients"
	"github.com/autoparts-tn/orders-api/internal/models"
	"github.com/autoparts-tn/orders-api/internal/repository"
	"github.com/autoparts-tn/orders-api/internal/service"
	"github.com/autoparts-tn/orders-api/pkg/logger"
	"github.com/autoparts-tn/orders-api/pkg/middleware"
)

type stubOrderService struct {
	createFn        func(ctx context.Context, data *service.CreateOrderData) (*models.Order, error)
	getByIDFn       func(ctx context.Context, id string) (*models.Order, error)
	getByNumberFn   func(ctx context.Context, orderNumber string) (*models.Order, error)
	userOrdersFn    func(ctx context.Context, userID string) ([]*models.Order, error)
	allOrdersFn     func(ctx context.Context, page, limit int, status models.OrderStatus) (*service.OrderPage, error)
	listFn          func(ctx context.Context, filter repository.ListFilter) (*service.OrderPage, error)
	updateStatusFn  func(ctx context.Context, data *service.UpdateOrderStatusData) (*models.Order, error)
	updatePaymentFn func(ctx context.Context, orderID string, paymentStatus models.PaymentStatus, paymentIntentID *string) (*models.Order, error)
	statsFn         func(ctx context.Context) (*models.OrderStats, error)
}

func (s *stubOrderService) CreateOrder(ctx context.Context, data *service.CreateOrderData) (*models.Order, error) {
	return s.createFn(ctx, data)
}

func (s *stubOrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubOrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return s.getByNumberFn(ctx, orderNumber)
}

func (s *stubOrderService) GetUserOrders(ctx context.Context, userID string) ([]*models.Order, error) {
	return s.userOrdersFn(ctx, userID)
}

func (s *stubOrderService) GetAllOrders(ctx context.Context, page, limit int, status models.OrderStatus) (*service.OrderPage, error) {
	return s.allOrdersFn(ctx, page, limit, status)
}

func (s *stubOrderService) ListOrders(ctx context.Context, filter repository.ListFilter) (*service.OrderPage, error) {
	return s.listFn(ctx, filter)
}

func (s *stubOrderService) UpdateOrderStatus(ctx context.Context, data *service.UpdateOrderStatusData) (*models.Order, error) {
	return s.updateStatusFn(ctx, data)
}

func (s *stubOrderService) UpdatePaymentStatus(ctx context.Context, orderID string, paymentStatus models.PaymentStatus, paymentIntentID *string) (*models.Order, error) {
	return s.updatePaymentFn(ctx, orderID, paymentStatus, paymentIntentID)
}

func (s *stubOrderService) Stats(ctx context.Context) (*models.OrderStats, error) {
	return s.statsFn(ctx)
}

func newTestServer(t *testing.T, orders OrderService, catalog CatalogService) *Server {
	t.Helper()

	rateLimiter := middleware.NewRateLimiter(&middleware.RateLimiterConfig{
		GlobalMaxTokens:  1000,
		GlobalRefillRate: 1000,
		IPMaxTokens:      1000,
		IPRefillRate:     1000,
	}, logger.Nop())
	t.Cleanup(rateLimiter.Stop)

	s := &Server{
		router:       mux.NewRouter(),
		logger:       logger.Nop(),
		orderService: orders,
		catalog:      catalog,
		rateLimiter:  rateLimiter,
	}
	s.setupRoutes()
	return s
}

func doRequest(s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func validCheckoutPayload() map[string]interface{} {
	return map[string]interface{}{
		"customerEmail":     "sami@example.tn",
		"customerFirstName": "Sami",
		"customerLastName":  "Ben Ali",
		"shippingAddress": map[string]interface{}{
			"firstName":    "Sami",
			"lastName":     "Ben Ali",
			"addressLine1": "12 Rue de Carthage",
			"city":         "Tunis",
			"postalCode":   "1001",
		},
		"orderItems": []map[string]interface{}{
			{"articleId": 1045108, "articleNo": "OC 90", "name": "Oil Filter", "supplier": "MAHLE", "price": 25.5, "quantity": 2},
		},
		"subtotal":    51.0,
		"totalAmount": 59.0,
	}
}

func TestCreateOrderCreated(t *testing.T) {
	var received *service.CreateOrderData
	stub := &stubOrderService{
		createFn: func(ctx context.Context, data *service.CreateOrderData) (*models.Order, error) {
			received = data
			return &models.Order{
				ID:          "ord-12345678",
				OrderNumber: "ORD-20250314-0042",
				Status:      models.OrderStatusPending,
				TotalAmount: data.TotalAmount,
				Currency:    "TND",
			}, nil
		},
	}
	s := newTestServer(t, stub, nil)

	payload, _ := json.Marshal(validCheckoutPayload())
	rr := doRequest(s, http.MethodPost, "/api/v1/orders", payload)

	require.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Order created successfully", body["message"])

	order := body["order"].(map[string]interface{})
	assert.Equal(t, "ORD-20250314-0042", order["orderNumber"])
	assert.Equal(t, "PENDING", order["status"])
	assert.Equal(t, 59.0, order["totalAmount"])

	require.NotNil(t, received)
	assert.Equal(t, "sami@example.tn", received.CustomerEmail)
	require.Len(t, received.Items, 1)
	assert.Equal(t, 2, received.Items[0].Quantity)
}

func TestCreateOrderMissingCustomerInfo(t *testing.T) {
	s := newTestServer(t, &stubOrderService{}, nil)

	payload := validCheckoutPayload()
	delete(payload, "customerEmail")
	raw, _ := json.Marshal(payload)

	rr := doRequest(s, http.MethodPost, "/api/v1/orders", raw)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Missing required customer information", decodeBody(t, rr)["error"])
}

func TestCreateOrderMissingItems(t *testing.T) {
	s := newTestServer(t, &stubOrderService{}, nil)

	payload := validCheckoutPayload()
	payload["orderItems"] = []map[string]interface{}{}
	raw, _ := json.Marshal(payload)

	rr := doRequest(s, http.MethodPost, "/api/v1/orders", raw)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Missing shipping address or order items", decodeBody(t, rr)["error"])
}

func TestCreateOrderInvalidJSON(t *testing.T) {
	s := newTestServer(t, &stubOrderService{}, nil)

	rr := doRequest(s, http.MethodPost, "/api/v1/orders", []byte("{not json"))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid request payload", decodeBody(t, rr)["error"])
}

func TestCreateOrderNumberConflict(t *testing.T) {
	stub := &stubOrderService{
		createFn: func(ctx context.Context, data *service.CreateOrderData) (*models.Order, error) {
			return nil, repository.ErrDuplicateOrderNumber
		},
	}
	s := newTestServer(t, stub, nil)

	payload, _ := json.Marshal(validCheckoutPayload())
	rr := doRequest(s, http.MethodPost, "/api/v1/orders", payload)

	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Order number conflict", decodeBody(t, rr)["error"])
}

func TestGetOrdersByUser(t *testing.T) {
	stub := &stubOrderService{
		userOrdersFn: func(ctx context.Context, userID string) ([]*models.Order, error) {
			assert.Equal(t, "usr-42", userID)
			return []*models.Order{{ID: "ord-1", OrderNumber: "ORD-20250314-0001"}}, nil
		},
	}
	s := newTestServer(t, stub, nil)

	rr := doRequest(s, http.MethodGet, "/api/v1/orders?userId=usr-42", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["orders"], 1)
}

func TestGetOrdersPaged(t *testing.T) {
	stub := &stubOrderService{
		allOrdersFn: func(ctx context.Context, page, limit int, status models.OrderStatus) (*service.OrderPage, error) {
			assert.Equal(t, 2, page)
			assert.Equal(t, 5, limit)
			assert.Equal(t, models.OrderStatusShipped, status)
			return &service.OrderPage{Orders: []*models.Order{}, Total: 11, Pages: 3, CurrentPage: 2}, nil
		},
	}
	s := newTestServer(t, stub, nil)

	rr := doRequest(s, http.MethodGet, "/api/v1/orders?page=2&limit=5&status=SHIPPED", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, float64(11), body["total"])
	assert.Equal(t, float64(3), body["pages"])
	assert.Equal(t, float64(2), body["currentPage"])
}

func TestGetOrderByNumberNotFound(t *testing.T) {
	stub := &stubOrderService{
		getByNumberFn: func(ctx context.Context, orderNumber string) (*models.Order, error) {
			return nil, repository.ErrNotFound
		},
	}
	s := newTestServer(t, stub, nil)

	rr := doRequest(s, http.MethodGet, "/api/v1/orders/number/ORD-20250101-9999", nil)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Order not found", decodeBody(t, rr)["error"])
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, &stubOrderService{}, nil)

	rr := doRequest(s, http.MethodGet, "/api/v1/health", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decodeBody(t, rr)["status"])
}

type stubCatalog struct {
	manufacturers []clients.Manufacturer
	err           error
}

func (s *stubCatalog) GetManufacturers(ctx context.Context) ([]clients.Manufacturer, error) {
	return s.manufacturers, s.err
}

func (s *stubCatalog) GetModels(ctx context.Context, manufacturerID int64) ([]clients.Model, error) {
	return nil, s.err
}

func (s *stubCatalog) GetVehicles(ctx context.Context, manufacturerID, modelID int64) ([]clients.Vehicle, error) {
	return nil, s.err
}

func (s *stubCatalog) GetCategories(ctx context.Context, manufacturerID, vehicleID int64) ([]clients.Category, error) {
	return nil, s.err
}

func (s *stubCatalog) GetArticles(ctx context.Context, manufacturerID, vehicleID, productGroupID int64) ([]clients.Article, error) {
	return nil, s.err
}

func (s *stubCatalog) SearchArticles(ctx context.Context, articleNo string) ([]clients.Article, error) {
	return nil, s.err
}

func TestGetManufacturers(t *testing.T) {
	catalog := &stubCatalog{manufacturers: []clients.Manufacturer{{ManufacturerID: 183, Brand: "VW"}}}
	s := newTestServer(t, &stubOrderService{}, catalog)

	rr := doRequest(s, http.MethodGet, "/api/v1/catalog/manufacturers", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Len(t, body["data"], 1)
	assert.Nil(t, body["error"])
}

func TestGetModelsRequiresManufacturerID(t *testing.T) {
	s := newTestServer(t, &stubOrderService{}, &stubCatalog{})

	rr := doRequest(s, http.MethodGet, "/api/v1/catalog/models", nil)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "manufacturerId is required", decodeBody(t, rr)["error"])
}

func TestCatalogErrorDegradesToEmptyData(t *testing.T) {
	catalog := &stubCatalog{err: assert.AnError}
	s := newTestServer(t, &stubOrderService{}, catalog)

	rr := doRequest(s, http.MethodGet, "/api/v1/catalog/vehicles?manufacturerId=183&modelId=9465", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.NotEmpty(t, body["error"])
	assert.Empty(t, body["data"])
}
