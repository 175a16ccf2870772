package orders

import "time"

// Order statuses
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Order represents the item stored in the orders DynamoDB table.
type Order struct {
	OrderID         string          `dynamodbav:"order_id" json:"order_id"` // PK
	UserID          string          `dynamodbav:"user_id" json:"user_id"`
	UserEmail       string          `dynamodbav:"user_email" json:"user_email"`
	Total           float64         `dynamodbav:"total" json:"total"`
	Status          string          `dynamodbav:"status" json:"status"` // completed | failed
	DeliveryMethod  string          `dynamodbav:"delivery_method" json:"delivery_method"`
	ShippingAddress ShippingAddress `dynamodbav:"shipping_address" json:"shipping_address"`
	CreatedAt       time.Time       `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `dynamodbav:"updated_at" json:"updated_at"`
}

// ShippingAddress is the denormalized snapshot of the checkout form and the
// chosen shipping option at commit time.
type ShippingAddress struct {
	FirstName      string  `dynamodbav:"firstName" json:"firstName"`
	LastName       string  `dynamodbav:"lastName" json:"lastName"`
	DocumentType   string  `dynamodbav:"documentType" json:"documentType"`
	DocumentID     string  `dynamodbav:"documentId" json:"documentId"`
	Email          string  `dynamodbav:"email,omitempty" json:"email,omitempty"`
	Phone          string  `dynamodbav:"phone" json:"phone"`
	Country        string  `dynamodbav:"country" json:"country"`
	Address        string  `dynamodbav:"address" json:"address"`
	Apartment      string  `dynamodbav:"apartment,omitempty" json:"apartment,omitempty"`
	District       string  `dynamodbav:"district" json:"district"`
	Province       string  `dynamodbav:"province" json:"province"`
	PostalCode     string  `dynamodbav:"postalCode,omitempty" json:"postalCode,omitempty"`
	ShippingMethod string  `dynamodbav:"shippingMethod" json:"shippingMethod"`
	ShippingCost   float64 `dynamodbav:"shippingCost" json:"shippingCost"`
	Currency       string  `dynamodbav:"currency" json:"currency"`
	DeliveryTime   string  `dynamodbav:"deliveryTime" json:"deliveryTime"`
}

// OrderItem is one line of an order, snapshotted from the cart so the
// order stays stable when the product changes later.
type OrderItem struct {
	OrderID     string  `dynamodbav:"order_id" json:"order_id"`     // PK
	ProductID   string  `dynamodbav:"product_id" json:"product_id"` // SK
	ProductName string  `dynamodbav:"product_name" json:"product_name"`
	Price       float64 `dynamodbav:"product_price" json:"product_price"`
	Size        string  `dynamodbav:"product_size,omitempty" json:"product_size,omitempty"`
	Color       string  `dynamodbav:"product_color,omitempty" json:"product_color,omitempty"`
	ImageURL    string  `dynamodbav:"product_image_url,omitempty" json:"product_image_url,omitempty"`
	Quantity    int     `dynamodbav:"quantity" json:"quantity"`
	Subtotal    float64 `dynamodbav:"subtotal" json:"subtotal"`
}
