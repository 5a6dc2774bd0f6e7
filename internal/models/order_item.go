package models

// OrderItem is a line item frozen at order-creation time. Price and name
// are snapshots, not live references to catalog pricing.
type OrderItem struct {
	ID        string  `db:"id" json:"id"`
	OrderID   string  `db:"order_id" json:"orderId"`
	ArticleID int64   `db:"article_id" json:"articleId"`
	ArticleNo string  `db:"article_no" json:"articleNo"`
	Name      string  `db:"name" json:"name"`
	Supplier  string  `db:"supplier" json:"supplier"`
	Price     float64 `db:"price" json:"price"`
	Quantity  int     `db:"quantity" json:"quantity"`
	Image     *string `db:"image" json:"image,omitempty"`
}

// OrderItemInput is a cart line submitted at checkout.
type OrderItemInput struct {
	ArticleID int64   `json:"articleId"`
	ArticleNo string  `json:"articleNo"`
	Name      string  `json:"name"`
	Supplier  string  `json:"supplier"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     *string `json:"image,omitempty"`
}

// NewOrderItem freezes a cart line into an order item row.
func NewOrderItem(orderID string, in OrderItemInput) *OrderItem {
	return &OrderItem{
		ID:        GenerateID("itm"),
		OrderID:   orderID,
		ArticleID: in.ArticleID,
		ArticleNo: in.ArticleNo,
		Name:      in.Name,
		Supplier:  in.Supplier,
		Price:     in.Price,
		Quantity:  in.Quantity,
		Image:     in.Image,
	}
}

// LineTotal is price times quantity.
func (i *OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}
