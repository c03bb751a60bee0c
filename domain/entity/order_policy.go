package entity

import "context"

const (
	// ShippingProductName names the fee position added by ShippingFeePolicy
	ShippingProductName = "Shipping"
	// DefaultShippingFee is the shipping fee charged to standard customers
	DefaultShippingFee = 2.0
)

// OrderPolicy decides the final positions of a new order.
// owned lists the positions created by the policy; the order releases them on Close.
type OrderPolicy interface {
	Prepare(ctx context.Context, opener Opener, positions []*Product) (prepared []*Product, owned []*Product, err error)
}

// ShippingFeePolicy appends a shipping fee position
type ShippingFeePolicy struct {
	Fee float64
}

func (p ShippingFeePolicy) Prepare(ctx context.Context, opener Opener, positions []*Product) ([]*Product, []*Product, error) {
	fee, err := NewProduct(ctx, opener, ShippingProductName, p.Fee)
	if err != nil {
		return nil, nil, err
	}

	prepared := make([]*Product, 0, len(positions)+1)
	prepared = append(prepared, positions...)
	prepared = append(prepared, fee)
	return prepared, []*Product{fee}, nil
}

// NoFeePolicy keeps the positions as given
type NoFeePolicy struct{}

func (NoFeePolicy) Prepare(_ context.Context, _ Opener, positions []*Product) ([]*Product, []*Product, error) {
	prepared := make([]*Product, len(positions))
	copy(prepared, positions)
	return prepared, nil, nil
}
