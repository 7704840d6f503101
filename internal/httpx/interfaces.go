package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/go-warehouse-api.git/internal/orders"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ProductStore is the inventory store surface the product handler needs.
type ProductStore interface {
	Create(ctx context.Context, p orders.Product) (orders.Product, error)
	List(ctx context.Context) ([]orders.Product, error)
	Get(ctx context.Context, id string) (orders.Product, error)
	Update(ctx context.Context, id string, patch orders.ProductPatch) (orders.Product, error)
	Delete(ctx context.Context, id string) error
}

// OrderStore is the ledger + lifecycle surface the order handler needs.
type OrderStore interface {
	Place(ctx context.Context, lines []orders.LineInput) (*orders.OrderDetail, error)
	Get(ctx context.Context, id string) (*orders.OrderDetail, error)
	List(ctx context.Context, skip, limit int) ([]orders.OrderDetail, error)
	UpdateStatus(ctx context.Context, id string, st orders.Status) (*orders.OrderDetail, error)
	Delete(ctx context.Context, id string) (bool, error)
	GetItem(ctx context.Context, itemID string) (*orders.ItemDetail, error)
}

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var nf *orders.NotFoundError
	var se *orders.StockError
	switch {
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": nf.Error()})
	case errors.As(err, &se):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":              se.Error(),
			"insufficient_stock": se.Lines,
		})
	default:
		log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
