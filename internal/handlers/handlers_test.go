package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/storefront-checkout/internal/idempotency"
	"github.com/imrishuroy/storefront-checkout/internal/orders"
	"github.com/imrishuroy/storefront-checkout/internal/products"
)

type memProducts struct {
	mu    sync.Mutex
	items map[string]*products.Product
}

func (m *memProducts) Get(ctx context.Context, id string) (*products.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memProducts) DecrementStock(ctx context.Context, id string, qty int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok || p.Stock < qty {
		return 0, products.ErrInsufficientStock
	}
	p.Stock -= qty
	return p.Stock, nil
}

func (m *memProducts) RestoreStock(ctx context.Context, id string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id].Stock += qty
	return nil
}

type memOrders struct {
	mu     sync.Mutex
	orders map[string]orders.Order
	items  []orders.OrderItem
}

func (m *memOrders) Create(ctx context.Context, o orders.Order) (*orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.OrderID] = o
	return &o, nil
}

func (m *memOrders) CreateItems(ctx context.Context, items []orders.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, items...)
	return nil
}

func (m *memOrders) UpdateStatus(ctx context.Context, id, expected, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := m.orders[id]
	if o.Status != expected {
		return orders.ErrStatusMismatch
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

func (m *memOrders) Get(ctx context.Context, id string) (*orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

type memAttempts struct {
	mu      sync.Mutex
	records map[string]*idempotency.Record
}

func (m *memAttempts) Get(ctx context.Context, key string) (*idempotency.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[key]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memAttempts) CreateIfNotExists(ctx context.Context, key, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[key]; ok {
		return false, nil
	}
	m.records[key] = &idempotency.Record{IdempotencyKey: key, UserID: userID, Status: idempotency.StatusInProgress}
	return true, nil
}

func (m *memAttempts) Reclaim(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.records[key]
	if r == nil || r.Status != idempotency.StatusFailed {
		return false, nil
	}
	r.Status = idempotency.StatusInProgress
	return true, nil
}

func (m *memAttempts) MarkDone(ctx context.Context, key, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key].Status = idempotency.StatusDone
	m.records[key].OrderID = orderID
	return nil
}

func (m *memAttempts) MarkFailed(ctx context.Context, key, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key].Status = idempotency.StatusFailed
	return nil
}

type testServer struct {
	router   *gin.Engine
	products *memProducts
	orders   *memOrders
	attempts *memAttempts
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)
	s := &testServer{
		products: &memProducts{items: map[string]*products.Product{
			"p-1": {ID: "p-1", Name: "Polo Lino", Price: 50, Stock: 5},
			"p-2": {ID: "p-2", Name: "Gorra", Price: 19.9, Stock: 0},
		}},
		orders:   &memOrders{orders: map[string]orders.Order{}},
		attempts: &memAttempts{records: map[string]*idempotency.Record{}},
	}
	cfg := HandlerConfig{Products: s.products, Orders: s.orders, Attempts: s.attempts}

	r := gin.New()
	r.Use(Identity())
	RegisterShippingRoutes(r)
	RegisterCheckoutRoutes(r, cfg)
	RegisterOrdersRoutes(r, cfg)
	s.router = r
	return s
}

func (s *testServer) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

const checkoutBody = `{
	"items": [{"product_id": "p-1", "quantity": 2}],
	"delivery_method": "regular-lima",
	"customer": {
		"email": "ana@example.com",
		"first_name": "Ana",
		"last_name": "Quispe",
		"document_type": "dni",
		"document_id": "12345678",
		"phone": "987654321",
		"country": "PE",
		"province": "Lima",
		"district": "Miraflores",
		"address": "Av. Larco 123"
	},
	"payment": {"card_number": "4111111111111111", "card_name": "ana quispe", "expiry_date": "1228", "cvv": "123"}
}`

var authHeaders = map[string]string{
	"Idempotency-Key": "key-1",
	"X-User-Id":       "u-1",
	"X-User-Email":    "ana@example.com",
}

func TestShippingOptions(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodGet, "/shipping/options?country=pe&province=Lima&district=Miraflores", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	opts := body["options"].([]interface{})
	require.Len(t, opts, 3)
	first := opts[0].(map[string]interface{})
	assert.Equal(t, "pickup", first["id"])
	assert.Equal(t, "Gratis", first["formatted_cost"])
	assert.Equal(t, "regular-lima", body["default"])

	w = s.do(http.MethodGet, "/shipping/options?country=PE", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShippingQuote(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodPost, "/shipping/quote", `{"country":"PE","province":"Cusco","subtotal":100}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "118.00", body["total"])
	assert.Equal(t, "18.00", body["shipping_cost"])

	w = s.do(http.MethodPost, "/shipping/quote", `{"country":"US","province":"New York","subtotal":0}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "131.25", decode(t, w)["total"])

	w = s.do(http.MethodPost, "/shipping/quote", `{"country":"PE","province":"Lima","district":"Carabayllo","delivery_method":"express-lima"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "shipping_option_unavailable", decode(t, w)["error"])

	w = s.do(http.MethodPost, "/shipping/quote", `{"country":"PE","province":"Cusco","delivery_method":"express-lima"}`, nil)
	assert.Equal(t, "shipping_option_not_offered", decode(t, w)["error"])
}

func TestDescribeForm(t *testing.T) {
	s := newTestServer()
	w := s.do(http.MethodGet, "/checkout/form?country=us", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "US", body["country"])
	assert.Equal(t, true, body["international"])
	assert.NotEmpty(t, body["document_types"])
}

func TestCheckout_Created(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodPost, "/checkout", checkoutBody, authHeaders)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	orderID := body["order_id"].(string)
	assert.NotEmpty(t, orderID)
	assert.Equal(t, "/orders/"+orderID, w.Header().Get("Location"))

	require.Len(t, s.orders.orders, 1)
	assert.InDelta(t, 112.0, s.orders.orders[orderID].Total, 1e-9)
	assert.Equal(t, 3, s.products.items["p-1"].Stock)

	// same key replays without a second order
	w = s.do(http.MethodPost, "/checkout", checkoutBody, authHeaders)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["replayed"])
	assert.Len(t, s.orders.orders, 1)
	assert.Equal(t, 3, s.products.items["p-1"].Stock)

	// owner can read the order, others cannot
	w = s.do(http.MethodGet, "/orders/"+orderID, "", map[string]string{"X-User-Id": "u-1"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/orders/"+orderID, "", map[string]string{"X-User-Id": "u-2"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, "/orders/"+orderID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckout_ReplayAfterBuyingLastUnits(t *testing.T) {
	s := newTestServer()
	s.products.items["p-1"].Stock = 2

	w := s.do(http.MethodPost, "/checkout", checkoutBody, authHeaders)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	orderID := body["order_id"].(string)
	assert.Equal(t, "success", body["state"])
	assert.Equal(t, 0, s.products.items["p-1"].Stock)

	w = s.do(http.MethodPost, "/checkout", checkoutBody, authHeaders)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	replay := decode(t, w)
	assert.Equal(t, true, replay["replayed"])
	assert.Equal(t, orderID, replay["order_id"])
	assert.Len(t, s.orders.orders, 1)
	assert.Equal(t, 0, s.products.items["p-1"].Stock)

	// a fresh key sees the sold-out product
	headers := map[string]string{"Idempotency-Key": "key-2", "X-User-Id": "u-1", "X-User-Email": "ana@example.com"}
	w = s.do(http.MethodPost, "/checkout", checkoutBody, headers)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "stock_unavailable", decode(t, w)["error"])
}

func TestCheckout_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		headers map[string]string
		status  int
		code    string
	}{
		{
			name:    "missing idempotency key",
			body:    checkoutBody,
			headers: map[string]string{"X-User-Id": "u-1"},
			status:  http.StatusBadRequest,
			code:    "missing_idempotency_key",
		},
		{
			name:    "anonymous",
			body:    checkoutBody,
			headers: map[string]string{"Idempotency-Key": "k"},
			status:  http.StatusUnauthorized,
			code:    "unauthenticated",
		},
		{
			name:    "out of stock",
			body:    strings.Replace(checkoutBody, `"p-1"`, `"p-2"`, 1),
			headers: authHeaders,
			status:  http.StatusConflict,
			code:    "stock_unavailable",
		},
		{
			name:    "unknown product",
			body:    strings.Replace(checkoutBody, `"p-1"`, `"p-9"`, 1),
			headers: authHeaders,
			status:  http.StatusNotFound,
			code:    "product_not_found",
		},
		{
			name:    "incomplete document",
			body:    strings.Replace(checkoutBody, `"12345678"`, `"123"`, 1),
			headers: authHeaders,
			status:  http.StatusBadRequest,
			code:    "precondition_failed",
		},
		{
			name:    "express not offered in province",
			body:    strings.Replace(strings.Replace(checkoutBody, `"regular-lima"`, `"express-lima"`, 1), `"province": "Lima"`, `"province": "Cusco"`, 1),
			headers: authHeaders,
			status:  http.StatusBadRequest,
			code:    "shipping_option_not_offered",
		},
		{
			name:    "invalid body",
			body:    `{"items": []}`,
			headers: authHeaders,
			status:  http.StatusBadRequest,
			code:    "validation_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			w := s.do(http.MethodPost, "/checkout", tt.body, tt.headers)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode(t, w)["error"])
			assert.Empty(t, s.orders.orders)
		})
	}
}

func TestCheckout_InvalidDocumentReportsField(t *testing.T) {
	s := newTestServer()
	w := s.do(http.MethodPost, "/checkout", strings.Replace(checkoutBody, `"12345678"`, `"123"`, 1), authHeaders)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Equal(t, "Debe tener 8 dígitos", fields["document_id"])
}

func TestCheckout_InProgressKey(t *testing.T) {
	s := newTestServer()
	s.attempts.records["key-1"] = &idempotency.Record{IdempotencyKey: "key-1", UserID: "u-1", Status: idempotency.StatusInProgress}

	w := s.do(http.MethodPost, "/checkout", checkoutBody, authHeaders)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 5, s.products.items["p-1"].Stock)
}

func TestCheckout_KeyOfAnotherUser(t *testing.T) {
	s := newTestServer()
	s.attempts.records["key-1"] = &idempotency.Record{IdempotencyKey: "key-1", UserID: "u-2", Status: idempotency.StatusDone, OrderID: "o-2"}

	w := s.do(http.MethodPost, "/checkout", checkoutBody, authHeaders)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(t, "idempotency_key_conflict", decode(t, w)["error"])
	assert.Equal(t, 5, s.products.items["p-1"].Stock)
	assert.Empty(t, s.orders.orders)
}
