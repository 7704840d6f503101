package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the transactional surface the placement engine drives. The pgx
// implementation takes FOR UPDATE row locks in ProductForUpdate, so a stock
// value read during validation stays valid through the commit pass.
type Store interface {
	ProductForUpdate(ctx context.Context, id string) (Product, error)
	DecrementStock(ctx context.Context, id string, qty int) error
	InsertOrder(ctx context.Context, o Order) error
	InsertItems(ctx context.Context, items []OrderItem) error
}

// Engine places orders: validate every line, aggregate every shortage, then
// decrement stock and record the order. The caller owns the transaction; any
// error returned here must roll the whole unit back.
type Engine struct {
	Now func() time.Time // override in tests; defaults to time.Now
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

func (e *Engine) Place(ctx context.Context, s Store, lines []LineInput) (*OrderDetail, error) {
	// validation pass: every referenced product must exist. Rows come back
	// locked, nothing is mutated yet.
	products := make(map[string]Product, len(lines))
	for _, ln := range lines {
		if _, ok := products[ln.ProductID]; ok {
			continue
		}
		p, err := s.ProductForUpdate(ctx, ln.ProductID)
		if err != nil {
			return nil, err
		}
		products[ln.ProductID] = p
	}

	// availability pass: walk every line and collect every shortage before
	// failing. remaining tracks stock already claimed by earlier lines of
	// the same request.
	remaining := make(map[string]int, len(products))
	for id, p := range products {
		remaining[id] = p.Stock
	}
	var short []ShortageLine
	for _, ln := range lines {
		p := products[ln.ProductID]
		avail := remaining[ln.ProductID]
		if ln.Quantity > avail {
			short = append(short, ShortageLine{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   ln.Quantity,
				Available:   avail,
			})
			continue
		}
		remaining[ln.ProductID] -= ln.Quantity
	}
	if len(short) > 0 {
		return nil, &StockError{Lines: short}
	}

	// commit pass: decrement stock, capture prices, build the item list.
	o := Order{ID: uuid.NewString(), Status: StatusPending, CreatedAt: e.now()}
	items := make([]OrderItem, 0, len(lines))
	details := make([]ItemDetail, 0, len(lines))
	for _, ln := range lines {
		p := products[ln.ProductID]
		if err := s.DecrementStock(ctx, p.ID, ln.Quantity); err != nil {
			return nil, err
		}
		it := OrderItem{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			ProductID: p.ID,
			Quantity:  ln.Quantity,
		}
		items = append(items, it)

		lineTotal := p.Price * float64(ln.Quantity)
		o.Total += lineTotal
		details = append(details, ItemDetail{
			ItemID:    it.ID,
			Product:   ProductInfo{ID: p.ID, Name: p.Name, Price: p.Price},
			Quantity:  ln.Quantity,
			LineTotal: lineTotal,
		})
	}

	if err := s.InsertOrder(ctx, o); err != nil {
		return nil, err
	}
	if err := s.InsertItems(ctx, items); err != nil {
		return nil, err
	}

	return &OrderDetail{
		ID:        o.ID,
		CreatedAt: o.CreatedAt,
		Status:    o.Status,
		Items:     details,
		Total:     o.Total,
	}, nil
}
