package model

// EventItem is a line of an order event.
type EventItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// EventData is the payload of order.confirmed and order.cancelled.
type EventData struct {
	OrderID       string        `json:"orderId"`
	OrderNumber   string        `json:"orderNumber"`
	UserID        string        `json:"userId"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Total         string        `json:"total"`
	Items         []EventItem   `json:"items"`
}

func NewEventData(o *Order) EventData {
	items := make([]EventItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = EventItem{ProductID: it.ProductID.String(), Quantity: it.Quantity}
	}
	return EventData{
		OrderID:       o.ID.String(),
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID.String(),
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Total:         o.Total.StringFixed(2),
		Items:         items,
	}
}
