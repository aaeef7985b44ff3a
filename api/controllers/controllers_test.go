package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/stallpos/api/validators"
	"github.com/angelmondragon/stallpos/internal/orders"
	"github.com/angelmondragon/stallpos/internal/store"
	"github.com/angelmondragon/stallpos/pkg/config"
	"github.com/angelmondragon/stallpos/pkg/logger"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "controllers-test", Output: &bytes.Buffer{}})
	s, err := store.New(store.NewFilePersister(filepath.Join(t.TempDir(), "state.json")), store.Options{Logger: logg})
	require.NoError(t, err)
	require.NoError(t, s.Load(context.Background()))

	r := chi.NewRouter()
	r.Get("/api/state", GetState(s))
	r.Post("/api/state/pause", SetPause(s, logg))
	r.Get("/api/catalog", GetCatalog(s))
	r.Put("/api/catalog", ReplaceCatalog(s, logg))
	r.Post("/api/catalog/reset", ResetCatalog(s, logg))
	r.Get("/api/catalog/templates", ListTemplates(s))
	r.Get("/api/catalog/categories", ListCategories())
	r.Get("/api/catalog/products/{productId}", GetProduct(s, logg))
	r.Post("/api/catalog/products/{productId}/summary", SummarizeProduct(s, logg))
	r.Get("/api/orders", ListOrders(s, logg))
	r.Post("/api/orders", CreateOrder(s, logg))
	r.Post("/api/orders/clear", ClearOrders(s, logg))
	r.Get("/api/orders/{orderId}", GetOrder(s, logg))
	r.Patch("/api/orders/{orderId}", PatchOrder(s, logg))
	r.Delete("/api/orders/{orderId}", DeleteOrder(s, logg))
	r.Post("/api/orders/{orderId}/status", SetOrderStatus(s, logg))
	r.Post("/api/orders/{orderId}/advance", AdvanceOrder(s, logg))
	r.Post("/api/orders/{orderId}/revert", RevertOrder(s, logg))
	r.Post("/api/orders/{orderId}/acknowledge", AcknowledgeOrder(s, logg))
	r.Get("/api/displays/kds", KitchenBoard(s, logg))
	r.Get("/api/displays/call", CallView(s, logg))
	return r, s
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	var env envelope
	if resp.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	}
	return resp, env
}

func decodeOrder(t *testing.T, env envelope) orders.Order {
	t.Helper()
	var o orders.Order
	require.NoError(t, json.Unmarshal(env.Data, &o))
	return o
}

const createBody = `{"customerName":" Sato ","items":[{"productId":"crepe-savory","name":"Savory crepe","unitPrice":"450","quantity":2,"options":{"sauce":"ketchup"}}]}`

func TestCreateOrderAssignsNumber(t *testing.T) {
	h, _ := newTestRouter(t)

	resp, env := do(t, h, http.MethodPost, "/api/orders", createBody)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	o := decodeOrder(t, env)
	assert.Equal(t, "0001", o.Number)
	assert.Equal(t, "0001", o.ID)
	assert.Equal(t, "Sato", o.CustomerName)
	assert.Equal(t, int64(900), o.Total)
	require.Len(t, o.Items, 1)
	assert.Contains(t, o.Items[0].OptionSummary, "ケチャ")

	resp, env = do(t, h, http.MethodPost, "/api/orders", createBody)
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "0002", decodeOrder(t, env).Number)
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	h, _ := newTestRouter(t)

	resp, env := do(t, h, http.MethodPost, "/api/orders", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	resp, _ = do(t, h, http.MethodPost, "/api/orders", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestOrderLifecycleEndpoints(t *testing.T) {
	h, _ := newTestRouter(t)
	do(t, h, http.MethodPost, "/api/orders", createBody)

	resp, env := do(t, h, http.MethodPost, "/api/orders/0001/advance", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "in_progress", string(decodeOrder(t, env).Status))

	resp, env = do(t, h, http.MethodPost, "/api/orders/0001/status", `{"status":"ready"}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	ready := decodeOrder(t, env)
	assert.Equal(t, "ready", string(ready.Status))
	assert.False(t, ready.ReadyAcknowledged)

	resp, env = do(t, h, http.MethodPost, "/api/orders/0001/acknowledge", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, decodeOrder(t, env).ReadyAcknowledged)

	resp, env = do(t, h, http.MethodPost, "/api/orders/0001/advance", "")
	require.Equal(t, http.StatusOK, resp.Code)
	picked := decodeOrder(t, env)
	assert.Equal(t, "picked_up", string(picked.Status))
	assert.NotNil(t, picked.PickedUpAt)

	resp, env = do(t, h, http.MethodPost, "/api/orders/0001/advance", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "STATE_CONFLICT", env.Error.Code)

	resp, env = do(t, h, http.MethodPost, "/api/orders/0001/revert", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ready", string(decodeOrder(t, env).Status))
}

func TestSetOrderStatusValidation(t *testing.T) {
	h, _ := newTestRouter(t)
	do(t, h, http.MethodPost, "/api/orders", createBody)

	resp, env := do(t, h, http.MethodPost, "/api/orders/0001/status", `{"status":"burnt"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	resp, _ = do(t, h, http.MethodPost, "/api/orders/0001/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp, env = do(t, h, http.MethodPost, "/api/orders/9999/status", `{"status":"ready"}`)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestPatchOrder(t *testing.T) {
	h, _ := newTestRouter(t)
	do(t, h, http.MethodPost, "/api/orders", createBody)

	resp, env := do(t, h, http.MethodPatch, "/api/orders/0001", `{"customerName":"Kato","readyAcknowledged":1,"unknown":true}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	o := decodeOrder(t, env)
	assert.Equal(t, "Kato", o.CustomerName)
	assert.True(t, o.ReadyAcknowledged)

	resp, _ = do(t, h, http.MethodPatch, "/api/orders/0001", `{"status":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp, _ = do(t, h, http.MethodPatch, "/api/orders/0001", `"text"`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListAndGetOrders(t *testing.T) {
	h, _ := newTestRouter(t)
	do(t, h, http.MethodPost, "/api/orders", createBody)
	do(t, h, http.MethodPost, "/api/orders", `{"customerName":"Ito","items":[{"productId":"drink-coffee","name":"Coffee","unitPrice":200,"quantity":1,"category":"drink"}]}`)
	do(t, h, http.MethodPost, "/api/orders/0002/advance", "")

	_, env := do(t, h, http.MethodGet, "/api/orders", "")
	var list []orders.Order
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 2)

	_, env = do(t, h, http.MethodGet, "/api/orders?status=in_progress", "")
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "0002", list[0].Number)

	_, env = do(t, h, http.MethodGet, "/api/orders?q=sato", "")
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "0001", list[0].Number)

	resp, _ := do(t, h, http.MethodGet, "/api/orders?category=soup", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp, env = do(t, h, http.MethodGet, "/api/orders/0002", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Ito", decodeOrder(t, env).CustomerName)

	resp, _ = do(t, h, http.MethodGet, "/api/orders/4242", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteAndClearOrders(t *testing.T) {
	h, s := newTestRouter(t)
	do(t, h, http.MethodPost, "/api/orders", createBody)
	do(t, h, http.MethodPost, "/api/orders", createBody)

	resp, _ := do(t, h, http.MethodDelete, "/api/orders/0001", "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	resp, _ = do(t, h, http.MethodDelete, "/api/orders/0001", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp, _ = do(t, h, http.MethodPost, "/api/orders/clear", "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, s.Orders(orders.Filter{}))

	_, env := do(t, h, http.MethodPost, "/api/orders", createBody)
	assert.Equal(t, "0003", decodeOrder(t, env).Number)
}

func TestPauseState(t *testing.T) {
	h, s := newTestRouter(t)

	_, env := do(t, h, http.MethodGet, "/api/state", "")
	assert.JSONEq(t, `{"pause":false}`, string(env.Data))

	resp, env := do(t, h, http.MethodPost, "/api/state/pause", `{"pause":"yes"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"pause":true}`, string(env.Data))
	assert.True(t, s.Pause())

	resp, _ = do(t, h, http.MethodPost, "/api/orders", createBody)
	assert.Equal(t, http.StatusCreated, resp.Code, "pause is advisory for the order taker")

	_, env = do(t, h, http.MethodPost, "/api/state/pause", `{"pause":0}`)
	assert.JSONEq(t, `{"pause":false}`, string(env.Data))
}

func TestCatalogEndpoints(t *testing.T) {
	h, _ := newTestRouter(t)

	resp, env := do(t, h, http.MethodGet, "/api/catalog/products/crepe-savory", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, string(env.Data), "sauce")

	resp, env = do(t, h, http.MethodPost, "/api/catalog/products/crepe-savory/summary", `{"selections":{"sauce":"mayo"}}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var summary summaryResponse
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, []string{"マヨ"}, summary.Summary)

	resp, _ = do(t, h, http.MethodPost, "/api/catalog/products/crepe-savory/summary", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp, _ = do(t, h, http.MethodGet, "/api/catalog/products/ghost", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp, _ = do(t, h, http.MethodGet, "/api/catalog/templates", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	resp, _ = do(t, h, http.MethodGet, "/api/catalog/categories", "")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestReplaceAndResetCatalog(t *testing.T) {
	h, _ := newTestRouter(t)

	resp, env := do(t, h, http.MethodPut, "/api/catalog", `{"products":[{"id":"yakisoba","name":"Yakisoba","price":"600","category":"sausage"}]}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, string(env.Data), "yakisoba")

	resp, env = do(t, h, http.MethodPut, "/api/catalog", `{"products":[{"id":"a","name":"A"},{"id":"a","name":"B"}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	require.NotNil(t, env.Error)

	_, env = do(t, h, http.MethodGet, "/api/catalog", "")
	assert.Contains(t, string(env.Data), "yakisoba", "rejected replace keeps the previous catalog")

	resp, env = do(t, h, http.MethodPost, "/api/catalog/reset", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, string(env.Data), "yakisoba")
	assert.Contains(t, string(env.Data), "crepe-savory")
}

func TestReplaceCatalogAcceptsInlineImages(t *testing.T) {
	h, s := newTestRouter(t)

	image := "data:image/png;base64," + strings.Repeat("iVBORw0KGgo", 150_000)
	body := `{"products":[{"id":"yakisoba","name":"Yakisoba","price":600,"category":"sausage","image":"` + image + `"}]}`
	require.Greater(t, len(body), 1<<20)

	resp, _ := do(t, h, http.MethodPut, "/api/catalog", body)
	require.Equal(t, http.StatusOK, resp.Code)
	p, err := s.Product("yakisoba")
	require.NoError(t, err)
	assert.Equal(t, image, p.Image)
}

func TestReplaceCatalogRejectsOversizedBody(t *testing.T) {
	h, _ := newTestRouter(t)

	body := `{"products":[{"id":"x","image":"` + strings.Repeat("a", validators.MaxBodyBytes) + `"}]}`
	resp, env := do(t, h, http.MethodPut, "/api/catalog", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", env.Error.Code)

	_, env = do(t, h, http.MethodGet, "/api/catalog", "")
	assert.Contains(t, string(env.Data), "crepe-savory", "catalog untouched")
}

func TestDisplayEndpoints(t *testing.T) {
	h, _ := newTestRouter(t)
	do(t, h, http.MethodPost, "/api/orders", createBody)
	do(t, h, http.MethodPost, "/api/orders", createBody)
	do(t, h, http.MethodPost, "/api/orders/0002/status", `{"status":"ready"}`)

	resp, env := do(t, h, http.MethodGet, "/api/displays/kds", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var board struct {
		Columns []struct {
			Status string         `json:"status"`
			Orders []orders.Order `json:"orders"`
		} `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &board))
	require.NotEmpty(t, board.Columns)
	assert.Equal(t, "queued", board.Columns[0].Status)
	assert.Len(t, board.Columns[0].Orders, 1)

	resp, env = do(t, h, http.MethodGet, "/api/displays/call?ready=5", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var view struct {
		Ready   []orders.Order `json:"ready"`
		Pending []string       `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Len(t, view.Ready, 1)
	assert.Equal(t, []string{"0002"}, view.Pending)

	resp, _ = do(t, h, http.MethodGet, "/api/displays/call?ready=0", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthEndpoints(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	logg := logger.New(logger.Options{ServiceName: "controllers-test", Output: &bytes.Buffer{}})

	resp := httptest.NewRecorder()
	HealthLive(cfg)(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "test", resp.Header().Get(envHeader))

	resp = httptest.NewRecorder()
	HealthReady(cfg, logg, map[string]Pinger{"store": stubPinger{}, "redis": nil})(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = httptest.NewRecorder()
	HealthReady(cfg, logg, map[string]Pinger{"store": stubPinger{err: errors.New("disk gone")}})(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, resp.Body.String(), "DEPENDENCY_ERROR")
}
