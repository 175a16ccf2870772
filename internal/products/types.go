package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents the item stored in the products DynamoDB table.
type Product struct {
	ID           string    `dynamodbav:"id" json:"id"` // PK
	Name         string    `dynamodbav:"name" json:"name"`
	Description  string    `dynamodbav:"description,omitempty" json:"description,omitempty"`
	Price        float64   `dynamodbav:"price" json:"price"`
	Stock        int       `dynamodbav:"stock" json:"stock"`
	Category     string    `dynamodbav:"category" json:"category"`
	Size         string    `dynamodbav:"size,omitempty" json:"size,omitempty"`
	Color        string    `dynamodbav:"color,omitempty" json:"color,omitempty"`
	ImageURL     string    `dynamodbav:"image_url,omitempty" json:"image_url,omitempty"`
	Collection   string    `dynamodbav:"collection,omitempty" json:"collection,omitempty"`
	ProductGroup string    `dynamodbav:"product_group,omitempty" json:"product_group,omitempty"` // groups size/color variants
	CreatedAt    time.Time `dynamodbav:"created_at" json:"created_at"`
}

// UnitPrice returns Price as an exact decimal.
func (p Product) UnitPrice() decimal.Decimal {
	return decimal.NewFromFloat(p.Price)
}
