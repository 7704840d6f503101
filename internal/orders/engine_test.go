package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore keeps the engine honest without a database. It refuses to go
// below zero stock, like the schema CHECK would.
type memStore struct {
	products  map[string]Product
	order     *Order
	items     []OrderItem
	insertErr error
}

func newMemStore(ps ...Product) *memStore {
	m := &memStore{products: map[string]Product{}}
	for _, p := range ps {
		m.products[p.ID] = p
	}
	return m
}

func (m *memStore) ProductForUpdate(_ context.Context, id string) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, NotFound("product", id)
	}
	return p, nil
}

func (m *memStore) DecrementStock(_ context.Context, id string, qty int) error {
	p := m.products[id]
	if p.Stock < qty {
		return errors.New("stock constraint violated")
	}
	p.Stock -= qty
	m.products[id] = p
	return nil
}

func (m *memStore) InsertOrder(_ context.Context, o Order) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.order = &o
	return nil
}

func (m *memStore) InsertItems(_ context.Context, items []OrderItem) error {
	m.items = items
	return nil
}

func TestPlaceComputesTotalAndDecrementsStock(t *testing.T) {
	s := newMemStore(Product{ID: "a", Name: "Product A", Price: 10.0, Stock: 5})
	eng := Engine{Now: func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }}

	d, err := eng.Place(context.Background(), s, []LineInput{{ProductID: "a", Quantity: 3}})
	require.NoError(t, err)

	assert.Equal(t, 30.0, d.Total)
	assert.Equal(t, StatusPending, d.Status)
	assert.Equal(t, 2, s.products["a"].Stock)
	require.Len(t, d.Items, 1)
	assert.Equal(t, 30.0, d.Items[0].LineTotal)
	assert.Equal(t, 3, d.Items[0].Quantity)
	assert.Equal(t, "Product A", d.Items[0].Product.Name)
	assert.Equal(t, 10.0, d.Items[0].Product.Price)

	require.NotNil(t, s.order)
	assert.Equal(t, d.ID, s.order.ID)
	assert.Equal(t, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), s.order.CreatedAt)
	require.Len(t, s.items, 1)
	assert.Equal(t, d.ID, s.items[0].OrderID)
	assert.Equal(t, "a", s.items[0].ProductID)
}

func TestPlaceMultiLineTotal(t *testing.T) {
	s := newMemStore(
		Product{ID: "a", Name: "A", Price: 10.0, Stock: 5},
		Product{ID: "b", Name: "B", Price: 2.5, Stock: 4},
	)
	eng := Engine{}

	d, err := eng.Place(context.Background(), s, []LineInput{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 4},
	})
	require.NoError(t, err)

	assert.Equal(t, 30.0, d.Total) // 2*10 + 4*2.5
	assert.Equal(t, 3, s.products["a"].Stock)
	assert.Equal(t, 0, s.products["b"].Stock)
	require.Len(t, d.Items, 2)
	assert.Equal(t, 20.0, d.Items[0].LineTotal)
	assert.Equal(t, 10.0, d.Items[1].LineTotal)
}

func TestPlaceShortageReportsOnlyShortLines(t *testing.T) {
	// Product A (stock=5) is fine, Product B (stock=0) is short: the report
	// must contain exactly B and nothing may change.
	s := newMemStore(
		Product{ID: "a", Name: "Product A", Price: 10.0, Stock: 5},
		Product{ID: "b", Name: "Product B", Price: 20.0, Stock: 0},
	)
	eng := Engine{}

	d, err := eng.Place(context.Background(), s, []LineInput{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 1},
	})
	require.Error(t, err)
	assert.Nil(t, d)

	var se *StockError
	require.ErrorAs(t, err, &se)
	require.Len(t, se.Lines, 1)
	assert.Equal(t, ShortageLine{ProductID: "b", ProductName: "Product B", Requested: 1, Available: 0}, se.Lines[0])

	assert.Equal(t, 5, s.products["a"].Stock)
	assert.Equal(t, 0, s.products["b"].Stock)
	assert.Nil(t, s.order)
	assert.Empty(t, s.items)
}

func TestPlaceAggregatesEveryShortage(t *testing.T) {
	s := newMemStore(
		Product{ID: "a", Name: "A", Price: 1.0, Stock: 1},
		Product{ID: "b", Name: "B", Price: 1.0, Stock: 2},
		Product{ID: "c", Name: "C", Price: 1.0, Stock: 10},
	)
	eng := Engine{}

	_, err := eng.Place(context.Background(), s, []LineInput{
		{ProductID: "a", Quantity: 3},
		{ProductID: "b", Quantity: 5},
		{ProductID: "c", Quantity: 1},
	})
	var se *StockError
	require.ErrorAs(t, err, &se)
	require.Len(t, se.Lines, 2)
	assert.Equal(t, "a", se.Lines[0].ProductID)
	assert.Equal(t, 3, se.Lines[0].Requested)
	assert.Equal(t, 1, se.Lines[0].Available)
	assert.Equal(t, "b", se.Lines[1].ProductID)

	// nothing moved, including the line that had enough stock
	assert.Equal(t, 10, s.products["c"].Stock)
	assert.Nil(t, s.order)
}

func TestPlaceUnknownProductFailsBeforeAnyMutation(t *testing.T) {
	s := newMemStore(Product{ID: "a", Name: "A", Price: 10.0, Stock: 5})
	eng := Engine{}

	_, err := eng.Place(context.Background(), s, []LineInput{
		{ProductID: "a", Quantity: 1},
		{ProductID: "ghost", Quantity: 1},
	})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ghost", nf.ID)
	assert.Equal(t, "product", nf.Kind)

	assert.Equal(t, 5, s.products["a"].Stock)
	assert.Nil(t, s.order)
	assert.Empty(t, s.items)
}

func TestPlaceDuplicateLinesShareStock(t *testing.T) {
	// Two lines for the same product must not together overdraw it.
	s := newMemStore(Product{ID: "a", Name: "A", Price: 1.0, Stock: 5})
	eng := Engine{}

	_, err := eng.Place(context.Background(), s, []LineInput{
		{ProductID: "a", Quantity: 3},
		{ProductID: "a", Quantity: 3},
	})
	var se *StockError
	require.ErrorAs(t, err, &se)
	require.Len(t, se.Lines, 1)
	assert.Equal(t, 3, se.Lines[0].Requested)
	assert.Equal(t, 2, se.Lines[0].Available)
	assert.Equal(t, 5, s.products["a"].Stock)
}

func TestPlaceStoreFailurePropagates(t *testing.T) {
	s := newMemStore(Product{ID: "a", Name: "A", Price: 10.0, Stock: 5})
	s.insertErr = errors.New("disk on fire")
	eng := Engine{}

	_, err := eng.Place(context.Background(), s, []LineInput{{ProductID: "a", Quantity: 1}})
	require.Error(t, err)
	var se *StockError
	assert.False(t, errors.As(err, &se))
	var nf *NotFoundError
	assert.False(t, errors.As(err, &nf))
}
