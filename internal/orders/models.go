package orders

import "time"

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Order struct {
	ID        string
	Status    Status // see status.go
	Total     float64
	CreatedAt time.Time
}

type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
}

// LineInput is one requested (product, quantity) pair of a placement request.
type LineInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// ProductPatch is a partial product update; nil fields are left unchanged.
type ProductPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
}

// ---- resolved shapes: items carry nested product info and line totals ----

type ProductInfo struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type ItemDetail struct {
	ItemID    string      `json:"item_id"`
	Product   ProductInfo `json:"product"`
	Quantity  int         `json:"quantity"`
	LineTotal float64     `json:"total_price"`
}

type OrderDetail struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Status    Status       `json:"status"`
	Items     []ItemDetail `json:"items"`
	Total     float64      `json:"order_total"`
}
