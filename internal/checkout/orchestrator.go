// Package checkout converts the cart of one session into a persisted order.
//
// An attempt verifies stock, decrements it with a conditional write per line,
// creates the order and its items, then sends a best-effort confirmation and
// clears the cart. A failure after the first write runs the compensations of
// the steps that already succeeded.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/imrishuroy/storefront-checkout/internal/auth"
	"github.com/imrishuroy/storefront-checkout/internal/cart"
	"github.com/imrishuroy/storefront-checkout/internal/idempotency"
	"github.com/imrishuroy/storefront-checkout/internal/orders"
	"github.com/imrishuroy/storefront-checkout/internal/products"
)

// State of the orchestrator.
type State int

const (
	StateIdle State = iota
	StateProcessing
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Metric outcomes besides the failure kinds.
const (
	OutcomeSuccess  = "success"
	OutcomeReplayed = "replayed"
	OutcomeError    = "error"
)

// StockUpdate records one committed decrement.
type StockUpdate struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	Quantity      int    `json:"quantity"`
	PreviousStock int    `json:"previous_stock"`
	NewStock      int    `json:"new_stock"`
}

// Result of a successful attempt. A replayed attempt only carries OrderID.
type Result struct {
	State        State              `json:"state"`
	OrderID      string             `json:"order_id"`
	Order        *orders.Order      `json:"order,omitempty"`
	Items        []orders.OrderItem `json:"items,omitempty"`
	StockUpdates []StockUpdate      `json:"stock_updates,omitempty"`
	Replayed     bool               `json:"replayed"`
}

// Deps wires the orchestrator. Attempts, Notifier, Metrics, Logger, NewID and
// OnStateChange are optional.
type Deps struct {
	Products ProductStore
	Orders   OrderStore
	Attempts AttemptStore
	Notifier Notifier
	Metrics  Metrics

	Identity Identity
	Cart     Cart
	Address  AddressForm
	Payment  PaymentForm

	Logger *zap.Logger
	NewID  func() string
	// OnStateChange is called after every transition, outside the lock.
	OnStateChange func(State)
}

// Orchestrator runs checkout attempts for one session. At most one attempt
// is processing at a time.
type Orchestrator struct {
	deps   Deps
	logger *zap.Logger
	newID  func() string

	mu    sync.Mutex
	state State
}

func New(deps Deps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	newID := deps.NewID
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}
	return &Orchestrator{deps: deps, logger: logger, newID: newID}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Checkout runs one attempt. key is the client idempotency key; when it is
// empty or no AttemptStore is wired, retries are not deduplicated.
//
// A failed attempt passes through StateFailed and returns the orchestrator
// to StateIdle so the shopper can retry. Errors are *Error values.
func (o *Orchestrator) Checkout(ctx context.Context, key string) (*Result, error) {
	user, err := o.begin()
	if err != nil {
		o.record(ctx, nil, err)
		return nil, err
	}

	res, err := o.run(ctx, user, key)
	if err != nil {
		o.transition(StateFailed)
		o.transition(StateIdle)
		o.record(ctx, nil, err)
		return nil, err
	}

	o.transition(StateSuccess)
	res.State = StateSuccess
	o.record(ctx, res, nil)
	return res, nil
}

// begin checks the preconditions and moves to StateProcessing atomically.
func (o *Orchestrator) begin() (auth.User, error) {
	o.mu.Lock()
	if o.state == StateProcessing {
		o.mu.Unlock()
		return auth.User{}, newError(KindPrecondition, "A checkout is already in progress", ErrAlreadyProcessing)
	}
	user, err := o.preflight()
	if err != nil {
		o.mu.Unlock()
		return auth.User{}, err
	}
	o.state = StateProcessing
	o.mu.Unlock()

	o.notifyState(StateProcessing)
	return user, nil
}

func (o *Orchestrator) preflight() (auth.User, error) {
	if o.deps.Cart.IsEmpty() {
		return auth.User{}, newError(KindPrecondition, "Your cart is empty", ErrEmptyCart)
	}
	user, ok := o.deps.Identity.CurrentUser()
	if !ok {
		return auth.User{}, newError(KindUnauthenticated, "You must sign in to complete your purchase", ErrUnauthenticated)
	}
	if o.deps.Address.SelectedShippingOption() == nil {
		return auth.User{}, newError(KindPrecondition, "Please select a shipping method", ErrNoShippingOption)
	}
	if !o.deps.Address.IsFormValid() || o.deps.Address.HasErrors() {
		return auth.User{}, newError(KindPrecondition, "Please complete all required fields", ErrInvalidForm)
	}
	if !o.deps.Payment.IsValid() {
		return auth.User{}, newError(KindPrecondition, "Please check your payment details", ErrInvalidPayment)
	}
	return user, nil
}

func (o *Orchestrator) run(ctx context.Context, user auth.User, key string) (*Result, error) {
	logger := o.logger.With(zap.String("user_id", user.ID), zap.String("idempotency_key", key))
	items := o.deps.Cart.Items()
	option := o.deps.Address.SelectedShippingOption()
	form := o.deps.Address.Form()
	subtotal := subtotalOf(items)

	// Step 1: a key already used either replays its order or is refused.
	attempt, err := o.lookupAttempt(ctx, key, user.ID)
	if err != nil {
		return nil, err
	}
	if attempt != nil && attempt.Status == idempotency.StatusDone {
		logger.Info("checkout replayed", zap.String("order_id", attempt.OrderID))
		o.deps.Cart.Clear()
		return &Result{OrderID: attempt.OrderID, Replayed: true}, nil
	}

	// Step 2: verify every line before the first write.
	if err := o.validateStock(ctx, logger, items); err != nil {
		return nil, err
	}

	// Step 3: claim the key.
	if err := o.claimAttempt(ctx, key, user.ID, attempt); err != nil {
		return nil, err
	}

	sg := &saga{logger: logger}
	abort := func(cause *Error) (*Result, error) {
		logger.Warn("checkout aborted", zap.Stringer("kind", cause.Kind), zap.Error(cause))
		if err := sg.rollback(ctx); err != nil {
			logger.Error("rollback incomplete", zap.Error(err))
		}
		o.releaseAttempt(ctx, logger, key, cause.Error())
		return nil, cause
	}

	// Step 4: decrement stock, one conditional write per line.
	updates, cerr := o.commitStock(ctx, items, sg)
	if cerr != nil {
		return abort(cerr)
	}

	// Step 5: create the order.
	order := buildOrder(o.newID(), user, form, option, subtotal)
	created, err := o.deps.Orders.Create(ctx, order)
	if err != nil {
		return abort(newError(KindCommit, "We could not create your order", err))
	}
	sg.add("mark order failed", func(ctx context.Context) error {
		return o.deps.Orders.UpdateStatus(ctx, created.OrderID, orders.StatusCompleted, orders.StatusFailed)
	})

	// Step 6: persist the order lines.
	orderItems := buildItems(created.OrderID, items)
	if err := o.deps.Orders.CreateItems(ctx, orderItems); err != nil {
		return abort(newError(KindCommit, "We could not save the items of your order", err))
	}

	// Step 7: the confirmation is best effort.
	if o.deps.Notifier != nil {
		if err := o.deps.Notifier.SendOrderConfirmation(ctx, *created, orderItems); err != nil {
			logger.Warn("order confirmation not sent", zap.String("order_id", created.OrderID), zap.Error(err))
		}
	}

	if key != "" && o.deps.Attempts != nil {
		if err := o.deps.Attempts.MarkDone(context.WithoutCancel(ctx), key, created.OrderID); err != nil {
			logger.Error("mark checkout attempt done failed", zap.String("order_id", created.OrderID), zap.Error(err))
		}
	}

	// Step 8: the order exists; empty the cart.
	o.deps.Cart.Clear()

	logger.Info("checkout completed",
		zap.String("order_id", created.OrderID),
		zap.Float64("total", created.Total),
		zap.Int("items", len(orderItems)))

	return &Result{
		OrderID:      created.OrderID,
		Order:        created,
		Items:        orderItems,
		StockUpdates: updates,
	}, nil
}

// lookupAttempt returns the record stored for key, nil when the key is new
// or unused. An in-progress key, or a key owned by another user, is a
// conflict.
func (o *Orchestrator) lookupAttempt(ctx context.Context, key, userID string) (*idempotency.Record, error) {
	if key == "" || o.deps.Attempts == nil {
		return nil, nil
	}
	rec, err := o.deps.Attempts.Get(ctx, key)
	if err != nil {
		return nil, newError(KindCommit, "Could not start checkout", err)
	}
	if rec == nil {
		return nil, nil
	}
	if rec.UserID != "" && rec.UserID != userID {
		return nil, newError(KindConflict, "This checkout key belongs to another session", ErrAttemptForeign)
	}
	if rec.Status == idempotency.StatusInProgress {
		return nil, newError(KindConflict, "This checkout is already being processed", ErrAttemptInProgress)
	}
	return rec, nil
}

func (o *Orchestrator) claimAttempt(ctx context.Context, key, userID string, prev *idempotency.Record) error {
	if key == "" || o.deps.Attempts == nil {
		return nil
	}
	var (
		claimed bool
		err     error
	)
	if prev == nil {
		claimed, err = o.deps.Attempts.CreateIfNotExists(ctx, key, userID)
	} else {
		claimed, err = o.deps.Attempts.Reclaim(ctx, key)
	}
	if err != nil {
		return newError(KindCommit, "Could not start checkout", err)
	}
	if !claimed {
		return newError(KindConflict, "This checkout is already being processed", ErrAttemptInProgress)
	}
	return nil
}

func (o *Orchestrator) releaseAttempt(ctx context.Context, logger *zap.Logger, key, note string) {
	if key == "" || o.deps.Attempts == nil {
		return
	}
	if err := o.deps.Attempts.MarkFailed(context.WithoutCancel(ctx), key, note); err != nil {
		logger.Error("mark checkout attempt failed failed", zap.Error(err))
	}
}

// validateStock re-reads every product and aggregates all problems into one
// availability error. It never writes.
func (o *Orchestrator) validateStock(ctx context.Context, logger *zap.Logger, items []cart.Item) error {
	var problems error
	for _, it := range items {
		name := productName(it)
		p, err := o.deps.Products.Get(ctx, it.Product.ID)
		switch {
		case err != nil:
			logger.Warn("stock lookup failed", zap.String("product_id", it.Product.ID), zap.Error(err))
			problems = multierr.Append(problems, fmt.Errorf("could not verify %s", name))
		case p == nil:
			problems = multierr.Append(problems, fmt.Errorf("could not verify %s", name))
		case p.Stock <= 0:
			problems = multierr.Append(problems, fmt.Errorf("%s is out of stock", name))
		case p.Stock < it.Quantity:
			problems = multierr.Append(problems, fmt.Errorf("%s has only %d available", name, p.Stock))
		}
	}
	if problems == nil {
		return nil
	}
	return newError(KindAvailability, "Some items in your cart are not available", problems)
}

// commitStock decrements each line conditionally and registers a restore
// for every decrement that succeeded.
func (o *Orchestrator) commitStock(ctx context.Context, items []cart.Item, sg *saga) ([]StockUpdate, *Error) {
	updates := make([]StockUpdate, 0, len(items))
	for _, it := range items {
		id, qty, name := it.Product.ID, it.Quantity, productName(it)

		newStock, err := o.deps.Products.DecrementStock(ctx, id, qty)
		if errors.Is(err, products.ErrInsufficientStock) {
			if o.deps.Metrics != nil {
				o.deps.Metrics.RecordStockConflict(ctx, id)
			}
			return nil, newError(KindCommit, fmt.Sprintf("%s sold out while you were checking out", name), err)
		}
		if err != nil {
			return nil, newError(KindCommit, fmt.Sprintf("Could not update stock for %s", name), err)
		}

		sg.add("restore stock "+id, func(ctx context.Context) error {
			return o.deps.Products.RestoreStock(ctx, id, qty)
		})
		updates = append(updates, StockUpdate{
			ProductID:     id,
			ProductName:   name,
			Quantity:      qty,
			PreviousStock: newStock + qty,
			NewStock:      newStock,
		})
	}
	return updates, nil
}

func (o *Orchestrator) transition(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	o.notifyState(s)
}

func (o *Orchestrator) notifyState(s State) {
	if o.deps.OnStateChange != nil {
		o.deps.OnStateChange(s)
	}
}

func (o *Orchestrator) record(ctx context.Context, res *Result, err error) {
	if o.deps.Metrics == nil {
		return
	}
	outcome := OutcomeSuccess
	switch {
	case err != nil:
		outcome = OutcomeError
		if kind, ok := KindOf(err); ok {
			outcome = kind.String()
		}
	case res != nil && res.Replayed:
		outcome = OutcomeReplayed
	}
	o.deps.Metrics.RecordCheckout(ctx, outcome)
}
