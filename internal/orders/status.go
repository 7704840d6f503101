package orders

import "fmt"

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in progress"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
	StatusFailed     Status = "failed"
)

var statuses = map[Status]bool{
	StatusPending:    true,
	StatusConfirmed:  true,
	StatusInProgress: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCompleted:  true,
	StatusCancelled:  true,
	StatusRefunded:   true,
	StatusFailed:     true,
}

// ParseStatus rejects anything outside the nine known states, so an invalid
// status never reaches storage. Transitions between states are not
// restricted: operators may overwrite any status with any other.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !statuses[st] {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}
