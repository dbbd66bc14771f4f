package service

import (
	"context"
	"time"

	"pos-till/internal/apperror"
	"pos-till/internal/clock"
	"pos-till/internal/display"
	"pos-till/internal/domain"
	"pos-till/internal/metrics"
	"pos-till/internal/repository"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CartStatus string

const (
	CartActive    CartStatus = "active"
	CartSuspended CartStatus = "suspended"
)

var hundred = decimal.NewFromInt(100)

// CartDeps are the collaborators shared by every cart.
type CartDeps struct {
	Suspended      repository.SuspendedSaleRepository
	Sessions       SessionReader
	Ledger         *SaleLedger
	Display        display.Notifier
	Clock          clock.Clock
	IDs            *snowflake.Node
	Metrics        *metrics.TillMetrics
	Logger         *zap.Logger
	DefaultTaxRate decimal.Decimal
}

// Payment is what the customer hands over at checkout. For non-cash methods
// a zero Tendered means the exact total.
type Payment struct {
	Method   domain.PaymentMethod
	Tendered decimal.Decimal
}

// CartView is a read-only snapshot of a cart with its computed totals.
type CartView struct {
	Items          []domain.LineItem   `json:"items"`
	Customer       *domain.CustomerRef `json:"customer"`
	Discount       decimal.Decimal     `json:"discount"`
	Status         CartStatus          `json:"status"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	Tax            decimal.Decimal     `json:"tax"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	Total          decimal.Decimal     `json:"total"`
}

// Cart is the sale being built by one operator. It is not safe for
// concurrent use; Workspace serialises access.
type Cart struct {
	owner     Operator
	deps      CartDeps
	items     []domain.LineItem
	customer  *domain.CustomerRef
	discount  decimal.Decimal
	status    CartStatus
	startedAt time.Time
}

func NewCart(owner Operator, deps CartDeps) *Cart {
	if deps.Display == nil {
		deps.Display = display.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.DefaultTaxRate.IsZero() {
		deps.DefaultTaxRate = domain.DefaultTaxRate
	}
	return &Cart{
		owner:    owner,
		deps:     deps,
		discount: decimal.Zero,
		status:   CartActive,
	}
}

// Hydrate restores a suspended cart left in the store, if any.
func (c *Cart) Hydrate(ctx context.Context) {
	saved := c.deps.Suspended.Get(ctx, c.owner.ID)
	if saved == nil {
		return
	}
	c.items = append([]domain.LineItem(nil), saved.Cart...)
	c.customer = saved.Customer
	c.discount = saved.Discount
	c.status = CartSuspended
	c.startedAt = saved.Timestamp
}

func (c *Cart) Status() CartStatus {
	return c.status
}

func (c *Cart) Items() []domain.LineItem {
	return append([]domain.LineItem(nil), c.items...)
}

func (c *Cart) Customer() *domain.CustomerRef {
	return c.customer
}

func (c *Cart) Discount() decimal.Decimal {
	return c.discount
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// editable rejects changes to a suspended cart, whose stored copy would
// otherwise go stale.
func (c *Cart) editable() error {
	if c.status == CartSuspended {
		return apperror.NewPrecondition("cart is suspended; resume it first")
	}
	return nil
}

// AddItem merges quantity into the product's line, or appends a new line
// snapshotting the product.
func (c *Cart) AddItem(ctx context.Context, product domain.Product, quantity int) error {
	if err := c.editable(); err != nil {
		return err
	}
	if quantity < 1 {
		return apperror.NewFieldValidation("quantity", "quantity must be at least 1")
	}
	if product.ID == "" {
		return apperror.NewFieldValidation("product", "product id is required")
	}
	if len(c.items) == 0 {
		c.startedAt = c.deps.Clock.Now()
	}

	idx := c.indexOf(product.ID)
	if idx >= 0 {
		c.items[idx].Quantity += quantity
	} else {
		c.items = append(c.items, domain.NewLineItem(product, quantity))
		idx = len(c.items) - 1
	}

	c.deps.Display.Publish(ctx, c.owner.ID, display.UpdateMessage(c.items[idx], c.Total()))
	return nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
// Unknown products are ignored.
func (c *Cart) UpdateQuantity(productID string, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(productID)
	}
	if err := c.editable(); err != nil {
		return err
	}
	if idx := c.indexOf(productID); idx >= 0 {
		c.items[idx].Quantity = quantity
	}
	return nil
}

// RemoveItem drops the product's line. Removing an absent product is a no-op.
func (c *Cart) RemoveItem(productID string) error {
	if err := c.editable(); err != nil {
		return err
	}
	if idx := c.indexOf(productID); idx >= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	}
	return nil
}

func (c *Cart) SetCustomer(customer *domain.CustomerRef) error {
	if err := c.editable(); err != nil {
		return err
	}
	c.customer = customer
	return nil
}

// SetDiscount sets the whole-cart discount percentage, 0 to 100 inclusive.
func (c *Cart) SetDiscount(pct decimal.Decimal) error {
	if err := c.editable(); err != nil {
		return err
	}
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return apperror.NewFieldValidation("discount", "discount must be between 0 and 100")
	}
	c.discount = pct
	return nil
}

// Subtotal is the sum of price times quantity over all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.items {
		sum = sum.Add(item.Amount())
	}
	return sum
}

// Tax applies each line's own rate, or the default rate when it has none.
func (c *Cart) Tax() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.items {
		sum = sum.Add(item.Amount().Mul(item.Rate(c.deps.DefaultTaxRate)))
	}
	return sum
}

// DiscountAmount applies the discount percentage to the subtotal only.
func (c *Cart) DiscountAmount() decimal.Decimal {
	return c.Subtotal().Mul(c.discount).Div(hundred)
}

func (c *Cart) Total() decimal.Decimal {
	return c.Subtotal().Add(c.Tax()).Sub(c.DiscountAmount())
}

func (c *Cart) View() CartView {
	items := c.Items()
	if items == nil {
		items = []domain.LineItem{}
	}
	return CartView{
		Items:          items,
		Customer:       c.customer,
		Discount:       c.discount,
		Status:         c.status,
		Subtotal:       c.Subtotal(),
		Tax:            c.Tax(),
		DiscountAmount: c.DiscountAmount(),
		Total:          c.Total(),
	}
}

// Suspend parks the cart in the store so it survives a restart.
func (c *Cart) Suspend(ctx context.Context) error {
	if c.IsEmpty() {
		return apperror.NewValidation("cannot suspend an empty cart")
	}
	c.deps.Suspended.Save(ctx, c.owner.ID, &domain.SuspendedSale{
		V:         domain.SchemaVersion,
		Cart:      c.Items(),
		Customer:  c.customer,
		Discount:  c.discount,
		Timestamp: c.deps.Clock.Now(),
	})
	c.status = CartSuspended
	c.deps.Metrics.CartSuspended()
	return nil
}

// Resume reactivates a suspended cart and drops its stored copy.
func (c *Cart) Resume(ctx context.Context) {
	if c.status == CartSuspended {
		c.deps.Suspended.Remove(ctx, c.owner.ID)
	}
	c.status = CartActive
}

// Clear empties the cart and forgets any suspended copy.
func (c *Cart) Clear(ctx context.Context) {
	c.items = nil
	c.customer = nil
	c.discount = decimal.Zero
	c.status = CartActive
	c.startedAt = time.Time{}
	c.deps.Suspended.Remove(ctx, c.owner.ID)
}

// Confirm commits the cart as a sale. On any error the cart and the ledger
// are left untouched.
func (c *Cart) Confirm(ctx context.Context, payment Payment) (*domain.SaleRecord, error) {
	if c.IsEmpty() {
		c.deps.Metrics.CheckoutRejected("empty_cart")
		return nil, apperror.NewPrecondition("cart is empty")
	}
	if c.status == CartSuspended {
		c.deps.Metrics.CheckoutRejected("suspended")
		return nil, apperror.NewPrecondition("cart is suspended; resume it first")
	}

	// the session may not close between the lookup and the ledger append
	defer c.deps.Sessions.Hold(c.owner.ID)()
	session := c.deps.Sessions.Current(ctx, c.owner.ID)
	if session == nil {
		c.deps.Metrics.CheckoutRejected("no_session")
		return nil, apperror.NewPrecondition("no open cash session")
	}
	if !payment.Method.Valid() {
		return nil, apperror.NewFieldValidation("method", "payment method must be cash, card or qr")
	}

	total := c.Total()
	paid := payment.Tendered
	change := decimal.Zero
	switch {
	case payment.Method == domain.PaymentCash:
		if paid.LessThan(total) {
			c.deps.Metrics.CheckoutRejected("insufficient_cash")
			return nil, apperror.NewFieldValidation("tendered", "cash tendered is less than the total")
		}
		change = paid.Sub(total)
	case paid.IsZero():
		paid = total
	case paid.LessThan(total):
		return nil, apperror.NewFieldValidation("tendered", "payment amount is less than the total")
	}

	sale := c.buildRecord(session, payment.Method, paid, change)
	c.deps.Ledger.Append(ctx, sale)
	c.deps.Metrics.SaleConfirmed(string(sale.Payment.Method), sale.Total)

	c.deps.Logger.Info("Sale confirmed",
		zap.String("sale_id", sale.ID),
		zap.String("number", sale.Number),
		zap.String("user_id", sale.UserID),
		zap.String("total", sale.Total.String()),
		zap.String("method", string(sale.Payment.Method)),
	)

	c.Clear(ctx)
	c.deps.Display.Publish(ctx, c.owner.ID, display.ThanksMessage())
	return sale, nil
}

func (c *Cart) buildRecord(session *domain.CashSession, method domain.PaymentMethod, paid, change decimal.Decimal) *domain.SaleRecord {
	now := c.deps.Clock.Now()
	startedAt := c.startedAt
	if startedAt.IsZero() {
		startedAt = now
	}

	items := make([]domain.SaleItem, 0, len(c.items))
	for _, line := range c.items {
		items = append(items, domain.SaleItem{
			ProductID:   line.ProductID,
			Name:        line.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.Price,
			TaxRate:     line.Rate(c.deps.DefaultTaxRate),
			DiscountPct: decimal.Zero,
			Total:       line.Amount(),
		})
	}

	sale := &domain.SaleRecord{
		V:             domain.SchemaVersion,
		ID:            uuid.NewString(),
		Number:        "V-" + c.deps.IDs.Generate().String(),
		Status:        domain.SaleCompleted,
		Items:         items,
		Subtotal:      c.Subtotal(),
		TaxTotal:      c.Tax(),
		DiscountPct:   c.discount,
		DiscountTotal: c.DiscountAmount(),
		Total:         c.Total(),
		PaidTotal:     paid,
		Change:        change,
		Payment:       domain.Payment{Method: method, Amount: paid},
		UserID:        c.owner.ID,
		UserName:      c.owner.Name,
		CashSessionID: session.ID,
		OpenedAt:      startedAt,
		ClosedAt:      now,
	}
	if c.customer != nil {
		sale.CustomerID = c.customer.ID
		sale.CustomerName = c.customer.Name
	}
	return sale
}

func (c *Cart) indexOf(productID string) int {
	for i, item := range c.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
