package validation

// LineItem is one product and quantity of a checkout request.
type LineItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// Customer carries the contact and address fields of the checkout form.
type Customer struct {
	Email        string `json:"email" validate:"required,email"`
	Newsletter   bool   `json:"newsletter"`
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	DocumentType string `json:"document_type" validate:"required"`
	DocumentID   string `json:"document_id" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Country      string `json:"country" validate:"required,len=2"`
	Province     string `json:"province" validate:"required"`
	District     string `json:"district"`
	PostalCode   string `json:"postal_code"`
	Address      string `json:"address" validate:"required"`
	Apartment    string `json:"apartment,omitempty"`
}

// Card is the raw payment form; formatting rules are applied server side.
type Card struct {
	Number string `json:"card_number" validate:"required"`
	Name   string `json:"card_name" validate:"required"`
	Expiry string `json:"expiry_date" validate:"required"`
	CVV    string `json:"cvv" validate:"required"`
}

// CheckoutRequest is the payload for POST /checkout. Items is capped at
// orders.MaxItems, the lines one order transaction can hold.
type CheckoutRequest struct {
	Items          []LineItem `json:"items" validate:"required,min=1,max=100,dive"`
	DeliveryMethod string     `json:"delivery_method" validate:"required"`
	Customer       Customer   `json:"customer"`
	Payment        Card       `json:"payment"`
}

// ShippingQuoteRequest is the payload for POST /shipping/quote
type ShippingQuoteRequest struct {
	Country        string  `json:"country" validate:"required,len=2"`
	Province       string  `json:"province" validate:"required"`
	District       string  `json:"district"`
	Subtotal       float64 `json:"subtotal" validate:"gte=0"`
	DeliveryMethod string  `json:"delivery_method"`
}

// ProductRequest is the payload for PUT /admin/products/:id
type ProductRequest struct {
	Name         string  `json:"name" validate:"required"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" validate:"gt=0"`
	Stock        int     `json:"stock" validate:"gte=0"`
	Category     string  `json:"category" validate:"required"`
	Size         string  `json:"size"`
	Color        string  `json:"color"`
	ImageURL     string  `json:"image_url" validate:"omitempty,url"`
	Collection   string  `json:"collection"`
	ProductGroup string  `json:"product_group"`
}
