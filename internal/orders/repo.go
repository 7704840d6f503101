package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultPageSize applies when a list request does not set a limit.
const DefaultPageSize = 100

// Repo is the order ledger: placement, lookup, paging, status updates and
// deletion against Postgres.
type Repo struct{ DB *pgxpool.Pool }

// Place runs the placement engine inside one transaction. Either the stock
// decrements and the new order all commit, or none of them do.
func (r *Repo) Place(ctx context.Context, lines []LineInput) (*OrderDetail, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	eng := Engine{}
	detail, err := eng.Place(ctx, &txStore{tx: tx}, lines)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return detail, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*OrderDetail, error) {
	var d OrderDetail
	var status string
	err := r.DB.QueryRow(ctx, `SELECT id, status, total, created_at FROM orders WHERE id=$1`, id).
		Scan(&d.ID, &status, &d.Total, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFound("order", id)
	}
	if err != nil {
		return nil, err
	}
	d.Status = Status(status)

	byOrder, err := r.itemsByOrder(ctx, []string{d.ID})
	if err != nil {
		return nil, err
	}
	d.Items = byOrder[d.ID]
	if d.Items == nil {
		d.Items = []ItemDetail{}
	}
	return &d, nil
}

func (r *Repo) List(ctx context.Context, skip, limit int) ([]OrderDetail, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	rows, err := r.DB.Query(ctx, `SELECT id, status, total, created_at FROM orders
	                              ORDER BY seq OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []OrderDetail{}
	ids := make([]string, 0, limit)
	for rows.Next() {
		var d OrderDetail
		var status string
		if err := rows.Scan(&d.ID, &status, &d.Total, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Status = Status(status)
		d.Items = []ItemDetail{}
		out = append(out, d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	// one items query for the whole page instead of one per order
	byOrder, err := r.itemsByOrder(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if items := byOrder[out[i].ID]; items != nil {
			out[i].Items = items
		}
	}
	return out, nil
}

// UpdateStatus overwrites the status unconditionally; any of the nine states
// may follow any other. Returns the updated order with resolved items.
func (r *Repo) UpdateStatus(ctx context.Context, id string, st Status) (*OrderDetail, error) {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, id, string(st))
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, NotFound("order", id)
	}
	return r.Get(ctx, id)
}

// Delete removes the order; its items go with it via the cascading FK.
// Returns whether an order existed to delete.
func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *Repo) GetItem(ctx context.Context, itemID string) (*ItemDetail, error) {
	var d ItemDetail
	err := r.DB.QueryRow(ctx, `
		SELECT i.id, i.quantity, p.id, p.name, p.price
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.id=$1`, itemID).
		Scan(&d.ItemID, &d.Quantity, &d.Product.ID, &d.Product.Name, &d.Product.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFound("order item", itemID)
	}
	if err != nil {
		return nil, err
	}
	d.LineTotal = d.Product.Price * float64(d.Quantity)
	return &d, nil
}

// itemsByOrder eagerly joins items with their products for a set of orders.
func (r *Repo) itemsByOrder(ctx context.Context, orderIDs []string) (map[string][]ItemDetail, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT i.id, i.order_id, i.quantity, p.id, p.name, p.price
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.seq`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]ItemDetail{}
	for rows.Next() {
		var d ItemDetail
		var orderID string
		if err := rows.Scan(&d.ItemID, &orderID, &d.Quantity, &d.Product.ID, &d.Product.Name, &d.Product.Price); err != nil {
			return nil, err
		}
		d.LineTotal = d.Product.Price * float64(d.Quantity)
		out[orderID] = append(out[orderID], d)
	}
	return out, rows.Err()
}

// txStore adapts a pgx transaction to the engine's Store contract.
type txStore struct{ tx pgx.Tx }

func (s *txStore) ProductForUpdate(ctx context.Context, id string) (Product, error) {
	var p Product
	err := s.tx.QueryRow(ctx, `SELECT id, name, description, price, stock
	                           FROM products WHERE id=$1 FOR UPDATE`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, NotFound("product", id)
	}
	return p, err
}

func (s *txStore) DecrementStock(ctx context.Context, id string, qty int) error {
	ct, err := s.tx.Exec(ctx, `UPDATE products SET stock = stock - $2, updated_at = now()
	                           WHERE id=$1 AND stock >= $2`, id, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("stock decrement lost for product %s", id)
	}
	return nil
}

func (s *txStore) InsertOrder(ctx context.Context, o Order) error {
	_, err := s.tx.Exec(ctx, `INSERT INTO orders(id, status, total, created_at)
	                          VALUES ($1,$2,$3,$4)`, o.ID, string(o.Status), o.Total, o.CreatedAt)
	return err
}

func (s *txStore) InsertItems(ctx context.Context, items []OrderItem) error {
	for _, it := range items {
		if _, err := s.tx.Exec(ctx, `INSERT INTO order_items(id, order_id, product_id, quantity)
		                             VALUES ($1,$2,$3,$4)`, it.ID, it.OrderID, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}
