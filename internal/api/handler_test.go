package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bistro-service/internal/broker"
	"bistro-service/internal/cart"
	"bistro-service/internal/feed"
	"bistro-service/internal/models"
	"bistro-service/internal/service"
	"bistro-service/internal/store"
	"bistro-service/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	router *gin.Engine
	repo   *store.MemoryStore
	hub    *feed.Hub
	carts  *cart.Registry
}

func newTestServer(t *testing.T, policy service.StatusPolicy) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := store.NewMemoryStore()
	hub := feed.NewHub()
	t.Cleanup(hub.Close)
	publisher := broker.NewEventPublisher(broker.NewLocalSink(worker.NewFeedHandler(hub).HandleMessage))

	catalog := service.NewCatalogService(repo, publisher, "")
	require.NoError(t, catalog.Seed(context.Background()))

	auth, err := service.NewAuthService(repo, service.AuthOptions{
		Secret:   []byte("test-secret"),
		TokenTTL: time.Hour,
		Fallback: map[string]string{"admin": "admin"},
		Cost:     bcrypt.MinCost,
	})
	require.NoError(t, err)

	carts := cart.NewRegistry()
	h := NewHandler(Services{
		Catalog:   catalog,
		Checkout:  service.NewCheckoutService(repo, publisher),
		Orders:    service.NewOrderService(repo, publisher, policy),
		Analytics: service.NewAnalyticsService(repo, service.AnalyticsOptions{}),
		Auth:      auth,
		Waiter:    service.NewWaiterService(catalog, nil, time.Second),
		Carts:     carts,
		Feed:      hub,
		Store:     repo,
	}, Config{LoginRatePerMinute: 60, LoginBurst: 3})

	router := gin.New()
	h.SetupRoutes(router)
	return &testServer{router: router, repo: repo, hub: hub, carts: carts}
}

func (s *testServer) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T) map[string]string {
	t.Helper()
	w := s.do(http.MethodPost, "/api/v1/admin/login", gin.H{"username": "admin", "password": "admin"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return map[string]string{"Authorization": "Bearer " + resp.Token}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, service.PolicyStrict)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", nil, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/ready", nil, nil).Code)
}

func TestMenuEndpoints(t *testing.T) {
	s := newTestServer(t, service.PolicyStrict)

	w := s.do(http.MethodGet, "/api/v1/menu?q=lassi", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	menu := decode[struct{ Items []models.MenuItem }](t, w)
	require.Len(t, menu.Items, 1)
	assert.Equal(t, "Mango Lassi", menu.Items[0].Name)

	w = s.do(http.MethodGet, "/api/v1/menu/categories", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cats := decode[struct{ Categories []string }](t, w)
	assert.Equal(t, []string{"All", "Main Course", "Starters", "Dessert", "Drinks"}, cats.Categories)

	w = s.do(http.MethodGet, "/api/v1/menu/6/variants", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	variants := decode[struct{ Variants []service.Variant }](t, w)
	require.Len(t, variants.Variants, 3)
	assert.Equal(t, int64(210), variants.Variants[2].Price)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/menu/nope/variants", nil, nil).Code)
}

func TestCartFlowAndCheckout(t *testing.T) {
	s := newTestServer(t, service.PolicyStrict)

	w := s.do(http.MethodPost, "/api/v1/cart/items", gin.H{"item_id": "1"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session := w.Header().Get(CartSessionHeader)
	require.NotEmpty(t, session)
	hdr := map[string]string{CartSessionHeader: session}

	w = s.do(http.MethodPost, "/api/v1/cart/items", gin.H{"item_id": "5", "unit": "Large"}, hdr)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodPost, "/api/v1/cart/items", gin.H{"item_id": "1"}, hdr)
	require.Equal(t, http.StatusOK, w.Code)

	view := decode[cartView](t, w)
	assert.Equal(t, session, view.Session)
	assert.Equal(t, 3, view.Count)
	assert.Equal(t, int64(2*350+70), view.Total)
	assert.True(t, view.Open)

	w = s.do(http.MethodPatch, "/api/v1/cart/items", gin.H{"item_id": "5", "unit": "Large", "delta": -1}, hdr)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[cartView](t, w).Count)

	w = s.do(http.MethodPost, "/api/v1/checkout", gin.H{
		"customer_name":  "Asha",
		"customer_phone": "98765",
		"payment_method": "Card",
	}, hdr)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[models.Order](t, w)
	assert.Equal(t, int64(700), order.Total)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	w = s.do(http.MethodGet, "/api/v1/cart", nil, hdr)
	assert.Zero(t, decode[cartView](t, w).Count)

	w = s.do(http.MethodPost, "/api/v1/checkout", gin.H{
		"customer_name":  "Asha",
		"customer_phone": "98765",
		"payment_method": "Card",
	}, hdr)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartSurvivesCheckout(t *testing.T) {
	s := newTestServer(t, service.PolicyStrict)

	w := s.do(http.MethodPost, "/api/v1/cart/items", gin.H{"item_id": "2"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	session := w.Header().Get(CartSessionHeader)
	hdr := map[string]string{CartSessionHeader: session}
	held := s.carts.Get(session)

	w = s.do(http.MethodPost, "/api/v1/checkout", gin.H{"customer_name": "Asha", "customer_phone": "98765", "payment_method": "UPI"}, hdr)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// an add that fetched the cart before checkout finished still lands
	menu, err := s.repo.ListMenu(context.Background())
	require.NoError(t, err)
	held.Add(menu[0], cart.DefaultUnit, 0)

	assert.Same(t, held, s.carts.Get(session))
	w = s.do(http.MethodGet, "/api/v1/cart", nil, hdr)
	view := decode[cartView](t, w)
	assert.Equal(t, 1, view.Count)
	assert.Equal(t, menu[0].Price, view.Total)
}

func TestCartRejections(t *testing.T) {
	s := newTestServer(t, service.PolicyStrict)
	hdrs := s.login(t)

	unavailable := false
	w := s.do(http.MethodPost, "/api/v1/admin/menu/items", gin.H{"id": "4", "name": "Gulab Jamun", "price": 120, "category": "Dessert", "available": unavailable}, hdrs)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodPost, "/api/v1/cart/items", gin.H{"item_id": "4"}, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/v1/cart/items", gin.H{"item_id": "99"}, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/cart/items", gin.H{"item_id": "1", "unit": "Bucket"}, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/api/v1/cart/items", nil, nil).Code)
}

func TestCheckoutValidation(t *testing.T) {
	s := newTestServer(t, service.PolicyStrict)
	w := s.do(http.MethodPost, "/api/v1/cart/items", gin.H{"item_id": "2"}, nil)
	hdr := map[string]string{CartSessionHeader: w.Header().Get(CartSessionHeader)}

	w = s.do(http.MethodPost, "/api/v1/checkout", gin.H{"customer_name": "A", "customer_phone": "1", "payment_method": "Cheque"}, hdr)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid order")

	w = s.do(http.MethodGet, "/api/v1/cart", nil, hdr)
	assert.Equal(t, 1, decode[cartView](t, w).Count)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, service.PolicyStrict)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/admin/orders", nil, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/admin/orders", nil, map[string]string{"Authorization": "Bearer junk"}).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/v1/admin/login", gin.H{"username": "admin", "password": "bad"}, nil).Code)
}

func TestRegisterAdmin(t *testing.T) {
	s := newTestServer(t, service.PolicyStrict)
	hdrs := s.login(t)

	w := s.do(http.MethodPost, "/api/v1/admin/register", gin.H{"username": "chef", "password": "pw"}, hdrs)
	assert.Equal(t, http.StatusCreated, w.Code)
	w = s.do(http.MethodPost, "/api/v1/admin/register", gin.H{"username": "chef", "password": "pw2"}, hdrs)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/admin/login", gin.H{"username": "chef", "password": "pw"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrderStatusStrict(t *testing.T) {
	s := newTestServer(t, service.PolicyStrict)
	hdrs := s.login(t)
	require.NoError(t, s.repo.AppendOrder(context.Background(), &models.Order{
		ID: "ORD-00000001", Total: 100, Status: models.OrderStatusPending, Timestamp: time.Now().UnixMilli(),
	}))

	w := s.do(http.MethodPatch, "/api/v1/admin/orders/ORD-00000001/status", gin.H{"status": "Completed"}, hdrs)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodPatch, "/api/v1/admin/orders/ORD-00000001/status", gin.H{"status": "Preparing"}, hdrs)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.OrderStatusPreparing, decode[models.Order](t, w).Status)

	w = s.do(http.MethodPatch, "/api/v1/admin/orders/ORD-404/status", gin.H{"status": "Preparing"}, hdrs)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/v1/admin/orders?status=Preparing", nil, hdrs)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[struct{ Orders []models.Order }](t, w).Orders, 1)

	w = s.do(http.MethodGet, "/api/v1/admin/orders?status=Pending", nil, hdrs)
	assert.Empty(t, decode[struct{ Orders []models.Order }](t, w).Orders)
}

func TestOrderStatusLenient(t *testing.T) {
	s := newTestServer(t, service.PolicyLenient)
	hdrs := s.login(t)

	w := s.do(http.MethodPatch, "/api/v1/admin/orders/ORD-404/status", gin.H{"status": "Preparing"}, hdrs)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAnalyticsEndpoint(t *testing.T) {
	s := newTestServer(t, service.PolicyStrict)
	hdrs := s.login(t)
	now := time.Now()
	for i, st := range []models.OrderStatus{models.OrderStatusCompleted, models.OrderStatusPending, models.OrderStatusCancelled} {
		require.NoError(t, s.repo.AppendOrder(context.Background(), &models.Order{
			ID: "ORD-" + string(rune('A'+i)), Total: int64(100 * (i + 1)), Status: st, Timestamp: now.UnixMilli(),
		}))
	}

	w := s.do(http.MethodGet, "/api/v1/admin/analytics", nil, hdrs)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[models.Analytics](t, w)
	assert.Equal(t, int64(300), summary.DailyRevenue)
	assert.Equal(t, 2, summary.TotalOrders)
	assert.Len(t, summary.ChartData, 7)
}

func TestAdminMenuManagement(t *testing.T) {
	s := newTestServer(t, service.PolicyStrict)
	hdrs := s.login(t)

	w := s.do(http.MethodPut, "/api/v1/admin/menu", []gin.H{
		{"id": "a", "name": "Idli", "price": 60, "category": "Breakfast", "available": true},
		{"name": "Vada", "price": 40},
	}, hdrs)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/menu", nil, nil)
	items := decode[struct{ Items []models.MenuItem }](t, w).Items
	require.Len(t, items, 2)
	assert.Equal(t, "Main Course", items[1].Category)

	w = s.do(http.MethodPost, "/api/v1/admin/menu/items", gin.H{"name": "Free Thali", "price": 0}, hdrs)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodPut, "/api/v1/admin/menu", []gin.H{{"name": "Free Thali", "price": 0}}, hdrs)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/admin/menu/items/a", nil, hdrs).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/v1/admin/menu/items/a", nil, hdrs).Code)
}

func TestChatWithoutKey(t *testing.T) {
	s := newTestServer(t, service.PolicyStrict)
	w := s.do(http.MethodPost, "/api/v1/chat", gin.H{"message": "What's good?"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ReplyUnavailable, decode[struct{ Reply string }](t, w).Reply)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/chat", gin.H{}, nil).Code)
}

func TestLoginRateLimited(t *testing.T) {
	s := newTestServer(t, service.PolicyStrict)

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		codes = append(codes, s.do(http.MethodPost, "/api/v1/admin/login", gin.H{"username": "x", "password": "y"}, nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, codes[4])
}

func TestAdminFeedReceivesOrderEvents(t *testing.T) {
	s := newTestServer(t, service.PolicyStrict)
	hdrs := s.login(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	token := strings.TrimPrefix(hdrs["Authorization"], "Bearer ")
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/admin/feed?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	w := s.do(http.MethodPost, "/api/v1/cart/items", gin.H{"item_id": "3"}, nil)
	hdr := map[string]string{CartSessionHeader: w.Header().Get(CartSessionHeader)}
	w = s.do(http.MethodPost, "/api/v1/checkout", gin.H{"customer_name": "B", "customer_phone": "2", "payment_method": "Cash"}, hdr)
	require.Equal(t, http.StatusCreated, w.Code)
	placed := decode[models.Order](t, w)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event models.OrderPlacedEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, models.EventTypeOrderPlaced, event.EventType)
	assert.Equal(t, placed.ID, event.Order.ID)
}
