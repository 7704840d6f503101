package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/ariefcatur/go-warehouse-api.git/internal/orders"
	"github.com/go-chi/chi/v5"
	kafkago "github.com/segmentio/kafka-go"
)

type fakeProductStore struct {
	createFn func(context.Context, orders.Product) (orders.Product, error)
	listFn   func(context.Context) ([]orders.Product, error)
	getFn    func(context.Context, string) (orders.Product, error)
	updateFn func(context.Context, string, orders.ProductPatch) (orders.Product, error)
	deleteFn func(context.Context, string) error
}

func (f *fakeProductStore) Create(ctx context.Context, p orders.Product) (orders.Product, error) {
	return f.createFn(ctx, p)
}
func (f *fakeProductStore) List(ctx context.Context) ([]orders.Product, error) {
	return f.listFn(ctx)
}
func (f *fakeProductStore) Get(ctx context.Context, id string) (orders.Product, error) {
	return f.getFn(ctx, id)
}
func (f *fakeProductStore) Update(ctx context.Context, id string, patch orders.ProductPatch) (orders.Product, error) {
	return f.updateFn(ctx, id, patch)
}
func (f *fakeProductStore) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

type fakeOrderStore struct {
	placeFn        func(context.Context, []orders.LineInput) (*orders.OrderDetail, error)
	getFn          func(context.Context, string) (*orders.OrderDetail, error)
	listFn         func(context.Context, int, int) ([]orders.OrderDetail, error)
	updateStatusFn func(context.Context, string, orders.Status) (*orders.OrderDetail, error)
	deleteFn       func(context.Context, string) (bool, error)
	getItemFn      func(context.Context, string) (*orders.ItemDetail, error)
}

func (f *fakeOrderStore) Place(ctx context.Context, lines []orders.LineInput) (*orders.OrderDetail, error) {
	return f.placeFn(ctx, lines)
}
func (f *fakeOrderStore) Get(ctx context.Context, id string) (*orders.OrderDetail, error) {
	return f.getFn(ctx, id)
}
func (f *fakeOrderStore) List(ctx context.Context, skip, limit int) ([]orders.OrderDetail, error) {
	return f.listFn(ctx, skip, limit)
}
func (f *fakeOrderStore) UpdateStatus(ctx context.Context, id string, st orders.Status) (*orders.OrderDetail, error) {
	return f.updateStatusFn(ctx, id, st)
}
func (f *fakeOrderStore) Delete(ctx context.Context, id string) (bool, error) {
	return f.deleteFn(ctx, id)
}
func (f *fakeOrderStore) GetItem(ctx context.Context, itemID string) (*orders.ItemDetail, error) {
	return f.getItemFn(ctx, itemID)
}

var errCacheMiss = errors.New("cache miss")

type memCache struct{ m map[string]string }

func newMemCache() *memCache { return &memCache{m: map[string]string{}} }

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.m[key]
	if !ok {
		return "", errCacheMiss
	}
	return v, nil
}
func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.m[key] = string(value)
	return nil
}
func (c *memCache) Del(_ context.Context, key string) error {
	delete(c.m, key)
	return nil
}

type capturePub struct{ envs []orders.Envelope }

func (p *capturePub) Publish(_, value []byte, _ ...kafkago.Header) {
	var env orders.Envelope
	_ = json.Unmarshal(value, &env)
	p.envs = append(p.envs, env)
}

func do(r *chi.Mux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
