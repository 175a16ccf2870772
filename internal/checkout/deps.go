package checkout

import (
	"context"

	"github.com/imrishuroy/storefront-checkout/internal/auth"
	"github.com/imrishuroy/storefront-checkout/internal/cart"
	"github.com/imrishuroy/storefront-checkout/internal/checkoutform"
	"github.com/imrishuroy/storefront-checkout/internal/idempotency"
	"github.com/imrishuroy/storefront-checkout/internal/orders"
	"github.com/imrishuroy/storefront-checkout/internal/products"
	"github.com/imrishuroy/storefront-checkout/internal/shipping"
)

// ProductStore is satisfied by *products.Store.
type ProductStore interface {
	Get(ctx context.Context, productID string) (*products.Product, error)
	DecrementStock(ctx context.Context, productID string, quantity int) (int, error)
	RestoreStock(ctx context.Context, productID string, quantity int) error
}

// OrderStore is satisfied by *orders.Store.
type OrderStore interface {
	Create(ctx context.Context, order orders.Order) (*orders.Order, error)
	CreateItems(ctx context.Context, items []orders.OrderItem) error
	UpdateStatus(ctx context.Context, orderID, expectedStatus, newStatus string) error
}

// AttemptStore is satisfied by *idempotency.Store.
type AttemptStore interface {
	Get(ctx context.Context, key string) (*idempotency.Record, error)
	CreateIfNotExists(ctx context.Context, key, userID string) (bool, error)
	Reclaim(ctx context.Context, key string) (bool, error)
	MarkDone(ctx context.Context, key, orderID string) error
	MarkFailed(ctx context.Context, key, note string) error
}

// Notifier is satisfied by *notify.SQSDispatcher.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order orders.Order, items []orders.OrderItem) error
}

// Metrics is satisfied by *metrics.Recorder.
type Metrics interface {
	RecordCheckout(ctx context.Context, outcome string)
	RecordStockConflict(ctx context.Context, productID string)
}

// Identity is satisfied by *auth.Session and auth.StaticIdentity.
type Identity interface {
	CurrentUser() (auth.User, bool)
}

// Cart is satisfied by *cart.Ledger.
type Cart interface {
	Items() []cart.Item
	IsEmpty() bool
	Clear()
}

// AddressForm is satisfied by *checkoutform.State.
type AddressForm interface {
	Form() checkoutform.Form
	IsFormValid() bool
	HasErrors() bool
	SelectedShippingOption() *shipping.Option
}

// PaymentForm is satisfied by *payment.State.
type PaymentForm interface {
	IsValid() bool
}
