package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundErrorMessage(t *testing.T) {
	err := NotFound("product", "p-1")
	assert.Equal(t, "product p-1 not found", err.Error())
}

func TestStockErrorListsEveryLine(t *testing.T) {
	err := &StockError{Lines: []ShortageLine{
		{ProductID: "a", ProductName: "Widget", Requested: 4, Available: 1},
		{ProductID: "b", ProductName: "Gadget", Requested: 2, Available: 0},
	}}
	msg := err.Error()
	assert.Contains(t, msg, "not enough stock for products:")
	assert.Contains(t, msg, "- Widget: requested 4, available 1")
	assert.Contains(t, msg, "- Gadget: requested 2, available 0")
}
