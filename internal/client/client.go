package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/stallpos/internal/catalog"
	"github.com/angelmondragon/stallpos/internal/display"
	"github.com/angelmondragon/stallpos/internal/orders"
	"github.com/angelmondragon/stallpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/stallpos/pkg/errors"
	"github.com/angelmondragon/stallpos/pkg/types"
)

const (
	defaultTimeout     = 5 * time.Second
	errorBodyReadLimit = 4096
	idempotencyHeader  = "Idempotency-Key"
	contentTypeJSON    = "application/json"
)

var errBaseURLRequired = errors.New("api base url is required")

// Client talks to the stallpos HTTP API and unwraps its envelopes. API
// errors come back as typed errors carrying the server's code.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// New builds a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	c := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
}

type pauseBody struct {
	Pause bool `json:"pause"`
}

type statusBody struct {
	Status enums.OrderStatus `json:"status"`
}

// State returns the pause flag.
func (c *Client) State(ctx context.Context) (bool, error) {
	out, err := call[pauseBody](ctx, c, request{method: http.MethodGet, path: "/api/state"})
	return out.Pause, err
}

// SetPause sets the pause flag.
func (c *Client) SetPause(ctx context.Context, pause bool) (bool, error) {
	out, err := call[pauseBody](ctx, c, request{method: http.MethodPost, path: "/api/state/pause", body: pauseBody{Pause: pause}})
	return out.Pause, err
}

// Orders lists orders, oldest first, narrowed by filter.
func (c *Client) Orders(ctx context.Context, filter orders.Filter) ([]orders.Order, error) {
	return call[[]orders.Order](ctx, c, request{method: http.MethodGet, path: "/api/orders", query: filterQuery(filter)})
}

// Order fetches one order.
func (c *Client) Order(ctx context.Context, id string) (orders.Order, error) {
	return call[orders.Order](ctx, c, request{method: http.MethodGet, path: orderPath(id, "")})
}

// CreateOrder places an order. A non-empty idempotency key makes retries
// safe.
func (c *Client) CreateOrder(ctx context.Context, payload any, idempotencyKey string) (orders.Order, error) {
	req := request{method: http.MethodPost, path: "/api/orders", body: payload}
	if idempotencyKey != "" {
		req.headers = map[string]string{idempotencyHeader: idempotencyKey}
	}
	return call[orders.Order](ctx, c, req)
}

// PatchOrder sends a field-level update. Keys absent from patch are left
// untouched on the server.
func (c *Client) PatchOrder(ctx context.Context, id string, patch map[string]any) (orders.Order, error) {
	return call[orders.Order](ctx, c, request{method: http.MethodPatch, path: orderPath(id, ""), body: patch})
}

// SetOrderStatus moves an order to status with lifecycle side effects.
func (c *Client) SetOrderStatus(ctx context.Context, id string, status enums.OrderStatus) (orders.Order, error) {
	return call[orders.Order](ctx, c, request{method: http.MethodPost, path: orderPath(id, "status"), body: statusBody{Status: status}})
}

func (c *Client) AdvanceOrder(ctx context.Context, id string) (orders.Order, error) {
	return call[orders.Order](ctx, c, request{method: http.MethodPost, path: orderPath(id, "advance")})
}

func (c *Client) RevertOrder(ctx context.Context, id string) (orders.Order, error) {
	return call[orders.Order](ctx, c, request{method: http.MethodPost, path: orderPath(id, "revert")})
}

// AcknowledgeOrder marks a ready order as announced.
func (c *Client) AcknowledgeOrder(ctx context.Context, id string) (orders.Order, error) {
	return call[orders.Order](ctx, c, request{method: http.MethodPost, path: orderPath(id, "acknowledge")})
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	_, err := call[struct{}](ctx, c, request{method: http.MethodDelete, path: orderPath(id, "")})
	return err
}

func (c *Client) ClearOrders(ctx context.Context) error {
	_, err := call[struct{}](ctx, c, request{method: http.MethodPost, path: "/api/orders/clear"})
	return err
}

// Catalog returns the product catalog.
func (c *Client) Catalog(ctx context.Context) (catalog.Catalog, error) {
	return call[catalog.Catalog](ctx, c, request{method: http.MethodGet, path: "/api/catalog"})
}

// ReplaceCatalog uploads a full catalog document.
func (c *Client) ReplaceCatalog(ctx context.Context, doc any) (catalog.Catalog, error) {
	return call[catalog.Catalog](ctx, c, request{method: http.MethodPut, path: "/api/catalog", body: doc})
}

func (c *Client) ResetCatalog(ctx context.Context) (catalog.Catalog, error) {
	return call[catalog.Catalog](ctx, c, request{method: http.MethodPost, path: "/api/catalog/reset"})
}

// KitchenBoard fetches the kitchen display columns.
func (c *Client) KitchenBoard(ctx context.Context, filter orders.Filter) (display.Board, error) {
	return call[display.Board](ctx, c, request{method: http.MethodGet, path: "/api/displays/kds", query: filterQuery(filter)})
}

// CallView fetches the pickup-call screen projection.
func (c *Client) CallView(ctx context.Context) (display.CallView, error) {
	return call[display.CallView](ctx, c, request{method: http.MethodGet, path: "/api/displays/call"})
}

// Ping hits the readiness endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := call[map[string]any](ctx, c, request{method: http.MethodGet, path: "/health/ready"})
	return err
}

func call[T any](ctx context.Context, c *Client, r request) (T, error) {
	var zero T
	if c == nil {
		return zero, pkgerrors.New(pkgerrors.CodeDependency, "api client not configured")
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "marshal request body")
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build api request")
	}
	httpReq.Header.Set("Accept", contentTypeJSON)
	if body != nil {
		httpReq.Header.Set("Content-Type", contentTypeJSON)
	}
	for k, v := range r.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return zero, pkgerrors.Wrapf(pkgerrors.CodeDependency, err, "%s %s", r.method, r.path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return zero, decodeError(resp)
	}
	if resp.StatusCode == http.StatusNoContent {
		return zero, nil
	}

	var envelope types.SuccessEnvelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode api response")
	}
	return envelope.Data, nil
}

// decodeError rebuilds the server's typed error from the error envelope.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Code == "" {
		return pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
			"api request failed")
	}
	typed := pkgerrors.New(pkgerrors.Code(envelope.Error.Code), envelope.Error.Message)
	if envelope.Error.Details != nil {
		typed = typed.WithDetails(envelope.Error.Details)
	}
	return typed
}

func orderPath(id, action string) string {
	p := "/api/orders/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

func filterQuery(f orders.Filter) url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status.String())
	}
	if f.Category != "" {
		q.Set("category", f.Category.String())
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		q.Set("q", s)
	}
	return q
}
