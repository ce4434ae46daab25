package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
)

// Order is the record produced when a shopper confirms checkout. Lines are
// a copy of the cart at confirmation time.
type Order struct {
	ID          string
	SessionID   string
	Lines       []CartLine
	Total       int
	Status      OrderStatus
	CreatedAt   time.Time
	ConfirmedAt time.Time
}

func (o Order) Items() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}
