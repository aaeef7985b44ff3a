package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/stallpos/internal/orders"
	"github.com/angelmondragon/stallpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/stallpos/pkg/errors"
)

type captured struct {
	method  string
	path    string
	query   string
	body    map[string]any
	headers http.Header
}

func newTestClient(t *testing.T, status int, payload string, seen *captured) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			seen.method = r.Method
			seen.path = r.URL.Path
			seen.query = r.URL.RawQuery
			seen.headers = r.Header.Clone()
			raw, _ := io.ReadAll(r.Body)
			if len(raw) > 0 {
				assert.NoError(t, json.Unmarshal(raw, &seen.body))
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, payload)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", WithTimeout(time.Second))
	require.NoError(t, err)
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New("  ")
	assert.ErrorIs(t, err, errBaseURLRequired)
}

func TestOrdersSendsFilters(t *testing.T) {
	var seen captured
	c := newTestClient(t, http.StatusOK, `{"data":[{"id":"0001","number":"0001","status":"queued","items":[]}]}`, &seen)

	list, err := c.Orders(context.Background(), orders.Filter{Status: enums.OrderStatusQueued, Category: enums.ProductCategoryCrepe, Query: " 0001 "})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, enums.OrderStatusQueued, list[0].Status)
	assert.Equal(t, http.MethodGet, seen.method)
	assert.Equal(t, "/api/orders", seen.path)
	assert.Equal(t, "category=crepe&q=0001&status=queued", seen.query)
}

func TestCreateOrderSendsIdempotencyKey(t *testing.T) {
	var seen captured
	c := newTestClient(t, http.StatusCreated, `{"data":{"id":"0007","number":"0007","status":"queued","total":700}}`, &seen)

	o, err := c.CreateOrder(context.Background(), map[string]any{"items": []any{map[string]any{"unitPrice": 350, "quantity": 2}}}, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "0007", o.Number)
	assert.Equal(t, int64(700), o.Total)
	assert.Equal(t, "key-1", seen.headers.Get("Idempotency-Key"))
	assert.Equal(t, "application/json", seen.headers.Get("Content-Type"))
	assert.NotNil(t, seen.body["items"])
}

func TestLifecycleRoutes(t *testing.T) {
	cases := []struct {
		name string
		call func(*Client) error
		path string
	}{
		{"advance", func(c *Client) error { _, err := c.AdvanceOrder(context.Background(), "0001"); return err }, "/api/orders/0001/advance"},
		{"revert", func(c *Client) error { _, err := c.RevertOrder(context.Background(), "0001"); return err }, "/api/orders/0001/revert"},
		{"acknowledge", func(c *Client) error { _, err := c.AcknowledgeOrder(context.Background(), "0001"); return err }, "/api/orders/0001/acknowledge"},
		{"status", func(c *Client) error {
			_, err := c.SetOrderStatus(context.Background(), "0001", enums.OrderStatusReady)
			return err
		}, "/api/orders/0001/status"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen captured
			c := newTestClient(t, http.StatusOK, `{"data":{"id":"0001"}}`, &seen)
			require.NoError(t, tc.call(c))
			assert.Equal(t, http.MethodPost, seen.method)
			assert.Equal(t, tc.path, seen.path)
		})
	}
}

func TestNoContentResponses(t *testing.T) {
	var seen captured
	c := newTestClient(t, http.StatusNoContent, ``, &seen)
	require.NoError(t, c.DeleteOrder(context.Background(), "0001"))
	assert.Equal(t, http.MethodDelete, seen.method)
	require.NoError(t, c.ClearOrders(context.Background()))
	assert.Equal(t, "/api/orders/clear", seen.path)
}

func TestTypedErrorsRoundTrip(t *testing.T) {
	c := newTestClient(t, http.StatusUnprocessableEntity,
		`{"error":{"code":"STATE_CONFLICT","message":"order is already picked up","details":{"orderId":"0001"}}}`, nil)

	_, err := c.AdvanceOrder(context.Background(), "0001")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	assert.Equal(t, "order is already picked up", typed.Message())
	assert.NotNil(t, typed.Details())
}

func TestUnstructuredErrorsAreDependencyErrors(t *testing.T) {
	c := newTestClient(t, http.StatusBadGateway, `upstream down`, nil)

	_, err := c.State(context.Background())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestTransportErrorsAreDependencyErrors(t *testing.T) {
	c, err := New("http://127.0.0.1:1", WithTimeout(200*time.Millisecond))
	require.NoError(t, err)

	_, err = c.Catalog(context.Background())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestStateAndPause(t *testing.T) {
	var seen captured
	c := newTestClient(t, http.StatusOK, `{"data":{"pause":true}}`, &seen)

	pause, err := c.SetPause(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, pause)
	assert.Equal(t, true, seen.body["pause"])
}

func TestDisplayProjections(t *testing.T) {
	c := newTestClient(t, http.StatusOK, `{"data":{"flow":["queued","ready","picked_up"],"columns":[{"status":"queued","orders":[]}]}}`, nil)
	board, err := c.KitchenBoard(context.Background(), orders.Filter{})
	require.NoError(t, err)
	require.Len(t, board.Columns, 1)

	c = newTestClient(t, http.StatusOK, `{"data":{"ready":[{"id":"0002"}],"recent":[],"pending":["0002"]}}`, nil)
	view, err := c.CallView(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0002"}, view.Pending)
}
