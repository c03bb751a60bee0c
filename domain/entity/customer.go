package entity

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/fixora/archive/domain"
)

// PremiumMarker is the extra initial entry of premium customers
const PremiumMarker = "Customer is a Premium Customer!"

// customerVariant bundles what differs between customer kinds
type customerVariant struct {
	kind    string
	premium bool
	// providers returns the variant's own initial providers, most specific first
	providers func(c *Customer) []InitialMessages
	policy    OrderPolicy
}

var standardVariant = customerVariant{
	kind:      KindCustomer,
	providers: standardProviders,
	policy:    ShippingFeePolicy{Fee: DefaultShippingFee},
}

var premiumVariant = customerVariant{
	kind:    KindPremiumCustomer,
	premium: true,
	providers: func(c *Customer) []InitialMessages {
		own := []InitialMessages{single(func() string { return PremiumMarker })}
		return append(own, standardProviders(c)...)
	},
	policy: NoFeePolicy{},
}

func standardProviders(c *Customer) []InitialMessages {
	return []InitialMessages{
		single(func() string { return fmt.Sprintf("Current address: %s", c.address) }),
	}
}

// CustomerOption configures a customer
type CustomerOption func(*Customer)

// WithShippingFee overrides the shipping fee of standard customers
func WithShippingFee(fee float64) CustomerOption {
	return func(c *Customer) {
		if _, ok := c.policy.(ShippingFeePolicy); ok {
			c.policy = ShippingFeePolicy{Fee: fee}
		}
	}
}

// WithOrderPolicy replaces the variant's order policy
func WithOrderPolicy(policy OrderPolicy) CustomerOption {
	return func(c *Customer) {
		c.policy = policy
	}
}

// WithOrderNumbers replaces the order number generator
func WithOrderNumbers(next func() int) CustomerOption {
	return func(c *Customer) {
		c.nextNumber = next
	}
}

// RandomOrderNumber draws an order number in [100, 999]. Numbers are not unique.
func RandomOrderNumber() int {
	return 100 + rand.IntN(900)
}

// Customer places orders and owns them. The name is fixed, address changes are archived.
type Customer struct {
	name       string
	address    Address
	orders     []*Order
	variant    customerVariant
	policy     OrderPolicy
	nextNumber func() int
	opener     Opener
	archive    Archive
}

// NewCustomer creates a standard customer. Standard customers pay a shipping fee.
func NewCustomer(ctx context.Context, opener Opener, name string, address Address, opts ...CustomerOption) (*Customer, error) {
	return newCustomer(ctx, opener, standardVariant, name, address, opts)
}

// NewPremiumCustomer creates a premium customer. Premium customers ship for free.
func NewPremiumCustomer(ctx context.Context, opener Opener, name string, address Address, opts ...CustomerOption) (*Customer, error) {
	return newCustomer(ctx, opener, premiumVariant, name, address, opts)
}

func newCustomer(ctx context.Context, opener Opener, variant customerVariant, name string, address Address, opts []CustomerOption) (*Customer, error) {
	c := &Customer{
		name:       name,
		address:    address,
		variant:    variant,
		policy:     variant.policy,
		nextNumber: RandomOrderNumber,
		opener:     opener,
	}
	for _, opt := range opts {
		opt(c)
	}

	archive, err := openArchived(ctx, opener, domain.NewIdentity(variant.kind, name), variant.providers(c))
	if err != nil {
		return nil, err
	}
	c.archive = archive
	return c, nil
}

func (c *Customer) Name() string {
	return c.name
}

func (c *Customer) Address() Address {
	return c.address
}

// Kind returns the customer's entity kind
func (c *Customer) Kind() string {
	return c.variant.kind
}

func (c *Customer) IsPremium() bool {
	return c.variant.premium
}

// Orders returns the customer's orders in placement order
func (c *Customer) Orders() []*Order {
	orders := make([]*Order, len(c.orders))
	copy(orders, c.orders)
	return orders
}

// Archive returns the customer's change log
func (c *Customer) Archive() Archive {
	return c.archive
}

// SetAddress updates the address and archives the change.
// The previous address is restored when the entry cannot be written.
func (c *Customer) SetAddress(ctx context.Context, address Address) error {
	previous := c.address
	c.address = address
	if err := c.archive.Append(ctx, fmt.Sprintf("Address has been updated to: %s", address)); err != nil {
		c.address = previous
		return err
	}
	return nil
}

// PlaceOrder creates an order from positions according to the customer's policy.
// The caller's slice is never modified.
func (c *Customer) PlaceOrder(ctx context.Context, positions []*Product) (*Order, error) {
	prepared, owned, err := c.policy.Prepare(ctx, c.opener, positions)
	if err != nil {
		return nil, err
	}

	order, err := newOrder(ctx, c.opener, c, c.nextNumber(), prepared, owned)
	if err != nil {
		closeProducts(owned)
		return nil, err
	}

	if err := c.archive.Append(ctx, fmt.Sprintf("Order %s placed", order.Label())); err != nil {
		_ = order.Close()
		return nil, err
	}
	c.orders = append(c.orders, order)
	return order, nil
}

// Forget destroys the customer's archive. Customers hold personal data; once
// forgotten, every further change of the customer fails.
func (c *Customer) Forget(ctx context.Context) error {
	return c.archive.Destroy(ctx)
}

// Close releases the archives of the customer and of every order it owns
func (c *Customer) Close() error {
	var errs []error
	for _, order := range c.orders {
		errs = append(errs, order.Close())
	}
	errs = append(errs, c.archive.Close())
	return errors.Join(errs...)
}

func closeProducts(products []*Product) {
	for _, p := range products {
		_ = p.Close()
	}
}
