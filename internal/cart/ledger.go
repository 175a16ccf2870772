// Package cart holds the line items a shopper intends to buy. Every line is
// bounded by the most recently observed stock of its product.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/imrishuroy/storefront-checkout/internal/products"
)

// StockReader fetches the authoritative product record.
type StockReader interface {
	Get(ctx context.Context, productID string) (*products.Product, error)
}

// Item is a product snapshot plus the quantity requested.
type Item struct {
	Product  products.Product `json:"product"`
	Quantity int              `json:"quantity"`
}

// LineTotal is price × quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Product.UnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// WarningCode classifies a non-fatal cart problem.
type WarningCode string

const (
	WarningOutOfStock   WarningCode = "out_of_stock"
	WarningClamped      WarningCode = "clamped"
	WarningLookupFailed WarningCode = "lookup_failed"
)

// Warning is surfaced to the shopper instead of an error; the cart stays usable.
type Warning struct {
	Code      WarningCode `json:"code"`
	ProductID string      `json:"product_id"`
	Message   string      `json:"message"`
}

// Ledger is safe for concurrent use.
type Ledger struct {
	mu     sync.RWMutex
	stock  StockReader
	logger *zap.Logger
	items  []Item
	open   bool
}

// NewLedger returns an empty, closed cart. A nil logger is replaced by zap.NewNop.
func NewLedger(stock StockReader, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{stock: stock, logger: logger}
}

// AddItem re-reads the product stock and adds quantity units, clamped to the
// fresh stock. Quantities below 1 are treated as 1. On success the cart is
// opened. A failed lookup or an out-of-stock product leaves the cart unchanged.
func (l *Ledger) AddItem(ctx context.Context, product products.Product, quantity int) *Warning {
	if quantity < 1 {
		quantity = 1
	}

	live, err := l.stock.Get(ctx, product.ID)
	if err != nil || live == nil {
		l.logger.Warn("stock lookup failed", zap.String("product_id", product.ID), zap.Error(err))
		return &Warning{
			Code:      WarningLookupFailed,
			ProductID: product.ID,
			Message:   fmt.Sprintf("could not verify stock for %s, please try again", product.Name),
		}
	}
	if live.Stock <= 0 {
		return &Warning{
			Code:      WarningOutOfStock,
			ProductID: product.ID,
			Message:   fmt.Sprintf("%s is out of stock", product.Name),
		}
	}

	product.Stock = live.Stock

	l.mu.Lock()
	defer l.mu.Unlock()

	var warn *Warning
	idx := l.indexOf(product.ID)
	requested := quantity
	if idx >= 0 {
		requested += l.items[idx].Quantity
	}
	if requested > live.Stock {
		warn = &Warning{
			Code:      WarningClamped,
			ProductID: product.ID,
			Message:   fmt.Sprintf("only %d units of %s available", live.Stock, product.Name),
		}
		requested = live.Stock
	}

	if idx >= 0 {
		l.items[idx].Product = product
		l.items[idx].Quantity = requested
	} else {
		l.items = append(l.items, Item{Product: product, Quantity: requested})
	}
	l.open = true
	return warn
}

// RemoveItem drops the line for productID, if any.
func (l *Ledger) RemoveItem(productID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remove(productID)
}

// UpdateQuantity sets the line quantity clamped to [0, stock]; 0 removes the
// line. Returns a warning when the request was clamped.
func (l *Ledger) UpdateQuantity(productID string, quantity int) *Warning {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setQuantity(productID, quantity)
}

// IncrementQuantity adds one unit, up to the stock ceiling.
func (l *Ledger) IncrementQuantity(productID string) *Warning {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.indexOf(productID)
	if idx < 0 {
		return nil
	}
	return l.setQuantity(productID, l.items[idx].Quantity+1)
}

// DecrementQuantity removes one unit; a line at quantity 1 is removed.
func (l *Ledger) DecrementQuantity(productID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.indexOf(productID)
	if idx < 0 {
		return
	}
	l.setQuantity(productID, l.items[idx].Quantity-1)
}

// Clear empties the cart.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}

// Items returns a copy of the lines in insertion order.
func (l *Ledger) Items() []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

func (l *Ledger) IsEmpty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items) == 0
}

// ItemsCount is the sum of quantities.
func (l *Ledger) ItemsCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, it := range l.items {
		n += it.Quantity
	}
	return n
}

// Subtotal is the sum of price × quantity over all lines.
func (l *Ledger) Subtotal() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sum := decimal.Zero
	for _, it := range l.items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// Total equals Subtotal; shipping is priced by the checkout.
func (l *Ledger) Total() decimal.Decimal {
	return l.Subtotal()
}

func (l *Ledger) Open() {
	l.mu.Lock()
	l.open = true
	l.mu.Unlock()
}

func (l *Ledger) Close() {
	l.mu.Lock()
	l.open = false
	l.mu.Unlock()
}

func (l *Ledger) Toggle() {
	l.mu.Lock()
	l.open = !l.open
	l.mu.Unlock()
}

func (l *Ledger) IsOpen() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.open
}

// setQuantity expects l.mu to be held.
func (l *Ledger) setQuantity(productID string, quantity int) *Warning {
	idx := l.indexOf(productID)
	if idx < 0 {
		return nil
	}
	if quantity <= 0 {
		l.remove(productID)
		return nil
	}
	item := &l.items[idx]
	if quantity > item.Product.Stock {
		item.Quantity = item.Product.Stock
		return &Warning{
			Code:      WarningClamped,
			ProductID: productID,
			Message:   fmt.Sprintf("only %d units of %s available", item.Product.Stock, item.Product.Name),
		}
	}
	item.Quantity = quantity
	return nil
}

func (l *Ledger) remove(productID string) {
	idx := l.indexOf(productID)
	if idx < 0 {
		return
	}
	l.items = append(l.items[:idx], l.items[idx+1:]...)
}

func (l *Ledger) indexOf(productID string) int {
	for i, it := range l.items {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}
