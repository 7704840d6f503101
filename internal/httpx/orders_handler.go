package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-warehouse-api.git/internal/kafka"
	"github.com/ariefcatur/go-warehouse-api.git/internal/orders"
	"github.com/ariefcatur/go-warehouse-api.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type OrdersHandler struct {
	Store     OrderStore
	Cache     Cache
	Placed    Publisher
	Statuses  Publisher
	Deletions Publisher
	Service   string
	Log       *zap.Logger
}

type CreateOrderReq struct {
	Items []orders.LineInput `json:"items"`
}

type orderMessage struct {
	Message string              `json:"message"`
	Order   *orders.OrderDetail `json:"order,omitempty"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.create)
	r.Get("/orders", h.list)
	r.Get("/orders/items/{itemID}", h.getItem)
	r.Get("/orders/{id}", h.get)
	r.Put("/orders/{id}/status", h.updateStatus)
	r.Delete("/orders/{id}", h.delete)
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items must not be empty"})
		return
	}
	for _, ln := range req.Items {
		if ln.ProductID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_id is required"})
			return
		}
		if ln.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("quantity must be positive for product %s", ln.ProductID)})
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	detail, err := h.Store.Place(ctx, req.Items)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.Log.Info("order placed",
		zap.String("order_id", detail.ID),
		zap.Int("items", len(detail.Items)),
		zap.Float64("order_total", detail.Total))

	lines := make([]orders.PlacedLine, 0, len(detail.Items))
	for _, it := range detail.Items {
		lines = append(lines, orders.PlacedLine{
			ProductID: it.Product.ID,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal,
		})
	}
	h.publish(h.Placed, orders.EventOrderPlaced, r, detail.ID, orders.OrderPlacedPayload{
		OrderID: detail.ID,
		Total:   detail.Total,
		Lines:   lines,
	})

	writeJSON(w, http.StatusCreated, orderMessage{Message: "order successfully created", Order: detail})
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "skip must be an integer"})
		return
	}
	limit, err := queryInt(r, "limit", orders.DefaultPageSize)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be an integer"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := h.Store.List(ctx, skip, limit)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache first, DB stays the source of truth
	key := fmt.Sprintf(redisx.KeyOrderDetail, orderID)
	if s, err := h.Cache.Get(ctx, key); err == nil && s != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s))
		return
	}

	detail, err := h.Store.Get(ctx, orderID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	b, _ := json.Marshal(detail)
	_ = h.Cache.Set(ctx, key, b, redisx.TTLOrderDetail)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	raw := r.URL.Query().Get("status")
	if raw == "" {
		var body struct {
			Status string `json:"status"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		raw = body.Status
	}
	st, err := orders.ParseStatus(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	detail, err := h.Store.UpdateStatus(ctx, orderID, st)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	_ = h.Cache.Del(ctx, fmt.Sprintf(redisx.KeyOrderDetail, orderID))
	h.publish(h.Statuses, orders.EventOrderStatusChanged, r, orderID, orders.OrderStatusChangedPayload{
		OrderID: orderID,
		Status:  st,
	})
	writeJSON(w, http.StatusOK, detail)
}

func (h *OrdersHandler) getItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	d, err := h.Store.GetItem(ctx, chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	existed, err := h.Store.Delete(ctx, orderID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if !existed {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	_ = h.Cache.Del(ctx, fmt.Sprintf(redisx.KeyOrderDetail, orderID))
	h.publish(h.Deletions, orders.EventOrderDeleted, r, orderID, orders.OrderDeletedPayload{OrderID: orderID})
	writeJSON(w, http.StatusOK, orderMessage{Message: fmt.Sprintf("order %s deleted successfully", orderID)})
}

// publish wraps the payload in the v1 envelope and hands it to the async
// producer; delivery never affects the HTTP response.
func (h *OrdersHandler) publish(p Publisher, eventType string, r *http.Request, orderID string, payload any) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       middleware.GetReqID(r.Context()),
		CorrelationID: orderID,
		Payload:       kafka.MustMarshal(payload),
	}
	p.Publish(orders.PartitionKey(orderID), kafka.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
