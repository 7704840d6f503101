package orders

const (
	TopicOrderPlaced  = "warehouse.order.placed"
	TopicOrderStatus  = "warehouse.order.status"
	TopicOrderDeleted = "warehouse.order.deleted"
)

// Partition key = order_id so all events for one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
