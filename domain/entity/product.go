package entity

import (
	"context"
	"fmt"

	"github.com/fixora/archive/domain"
)

// Product is a priced item. The name is fixed, every price change is archived.
type Product struct {
	name    string
	price   float64
	archive Archive
}

// NewProduct creates a product and opens its archive
func NewProduct(ctx context.Context, opener Opener, name string, price float64) (*Product, error) {
	p := &Product{
		name:  name,
		price: price,
	}

	archive, err := openArchived(ctx, opener, domain.NewIdentity(KindProduct, name), p.initialMessages())
	if err != nil {
		return nil, err
	}
	p.archive = archive
	return p, nil
}

func (p *Product) initialMessages() []InitialMessages {
	return []InitialMessages{
		single(func() string { return fmt.Sprintf("Current price: %s $", FormatAmount(p.price)) }),
	}
}

func (p *Product) Name() string {
	return p.name
}

func (p *Product) Price() float64 {
	return p.price
}

// Archive returns the product's change log
func (p *Product) Archive() Archive {
	return p.archive
}

// SetPrice updates the price and archives the change.
// The previous price is restored when the entry cannot be written.
func (p *Product) SetPrice(ctx context.Context, price float64) error {
	previous := p.price
	p.price = price
	if err := p.archive.Append(ctx, fmt.Sprintf("Price has been updated to: %s $", FormatAmount(price))); err != nil {
		p.price = previous
		return err
	}
	return nil
}

// Close releases the product's archive
func (p *Product) Close() error {
	return p.archive.Close()
}
