package orders

import (
	"fmt"
	"strings"
)

// NotFoundError reports an absent entity by kind and id.
type NotFoundError struct {
	Kind string // "product" | "order" | "order item"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func NotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// ShortageLine is one entry of the aggregated insufficient-stock report.
type ShortageLine struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// StockError carries every short line of a placement request, not just the
// first one encountered.
type StockError struct {
	Lines []ShortageLine
}

func (e *StockError) Error() string {
	var b strings.Builder
	b.WriteString("not enough stock for products:")
	for _, l := range e.Lines {
		fmt.Fprintf(&b, "\n- %s: requested %d, available %d", l.ProductName, l.Requested, l.Available)
	}
	return b.String()
}
