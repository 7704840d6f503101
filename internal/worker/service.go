package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-warehouse-api.git/internal/kafka"
	"github.com/ariefcatur/go-warehouse-api.git/internal/orders"
	"github.com/ariefcatur/go-warehouse-api.git/internal/redisx"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ProductGetter is the slice of the inventory store the worker reads.
type ProductGetter interface {
	Get(ctx context.Context, id string) (orders.Product, error)
}

type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Service reacts to committed order events: drops stale cached order details
// and warns when a placement leaves a product at or below the low-stock
// threshold. It never mutates inventory; that happens only inside the
// placement transaction.
type Service struct {
	Products    ProductGetter
	Cache       Cache
	LowStock    int
	ServiceName string
	Log         *zap.Logger
}

// HandleEvent is the consumer handler for all three order topics.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup by event_id; at-least-once delivery means replays happen
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if seen, _ := s.Cache.Exists(ctx, dkey); seen {
		return nil
	}
	_ = s.Cache.Set(ctx, dkey, []byte("1"), redisx.TTLDedup)

	switch env.EventType {
	case orders.EventOrderPlaced:
		p, err := kafka.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.checkStock(ctx, p)
	case orders.EventOrderStatusChanged:
		p, err := kafka.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		s.Log.Info("order status changed", zap.String("order_id", p.OrderID), zap.String("status", string(p.Status)))
		return s.Cache.Del(ctx, fmt.Sprintf(redisx.KeyOrderDetail, p.OrderID))
	case orders.EventOrderDeleted:
		p, err := kafka.UnwrapPayload[orders.OrderDeletedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.Cache.Del(ctx, fmt.Sprintf(redisx.KeyOrderDetail, p.OrderID))
	}
	return nil
}

func (s *Service) checkStock(ctx context.Context, p orders.OrderPlacedPayload) error {
	for _, ln := range p.Lines {
		prod, err := s.Products.Get(ctx, ln.ProductID)
		if err != nil {
			var nf *orders.NotFoundError
			if errors.As(err, &nf) {
				// product removed since the order was placed
				continue
			}
			return err
		}
		if prod.Stock <= s.LowStock {
			s.Log.Warn("low stock",
				zap.String("product_id", prod.ID),
				zap.String("name", prod.Name),
				zap.Int("stock", prod.Stock),
				zap.String("order_id", p.OrderID))
		}
	}
	return nil
}
