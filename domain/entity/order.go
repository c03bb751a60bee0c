package entity

import (
	"context"
	"errors"
	"fmt"

	"github.com/fixora/archive/domain"
	apperr "github.com/fixora/archive/domain/error"
)

// OrderStatus is a free-form status label. No transition graph is enforced.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "Created"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// Order is a list of positions placed by a customer
type Order struct {
	number    int
	owner     *Customer
	positions []*Product
	owned     []*Product
	status    OrderStatus
	archive   Archive
}

func newOrder(ctx context.Context, opener Opener, owner *Customer, number int, positions, owned []*Product) (*Order, error) {
	o := &Order{
		number:    number,
		owner:     owner,
		positions: positions,
		owned:     owned,
		status:    OrderStatusCreated,
	}

	archive, err := openArchived(ctx, opener, domain.NewIdentity(KindOrder, o.Label()), o.initialMessages())
	if err != nil {
		return nil, err
	}
	o.archive = archive
	return o, nil
}

func (o *Order) initialMessages() []InitialMessages {
	return []InitialMessages{
		func() []string {
			messages := make([]string, 0, len(o.positions))
			for _, p := range o.positions {
				messages = append(messages, fmt.Sprintf("%s added to Order", p.Name()))
			}
			return messages
		},
		single(o.totalMessage),
	}
}

// Number returns the order number
func (o *Order) Number() int {
	return o.number
}

// Label returns the archive label of the order, e.g. #482
func (o *Order) Label() string {
	return OrderLabel(o.number)
}

// OrderLabel formats an order number as its archive label
func OrderLabel(number int) string {
	return fmt.Sprintf("#%d", number)
}

// Owner returns the customer that placed the order
func (o *Order) Owner() *Customer {
	return o.owner
}

// Positions returns the order's positions in insertion order
func (o *Order) Positions() []*Product {
	positions := make([]*Product, len(o.positions))
	copy(positions, o.positions)
	return positions
}

func (o *Order) Status() OrderStatus {
	return o.status
}

// Archive returns the order's change log
func (o *Order) Archive() Archive {
	return o.archive
}

// AddItem adds a position and archives it followed by the recomputed total.
// The position is dropped again when its entry cannot be written.
func (o *Order) AddItem(ctx context.Context, position *Product) error {
	if position == nil {
		return apperr.ErrInvalidArgument("position is required")
	}

	o.positions = append(o.positions, position)
	if err := o.archive.Append(ctx, fmt.Sprintf("%s added to order", position.Name())); err != nil {
		o.positions = o.positions[:len(o.positions)-1]
		return err
	}
	return o.archive.Append(ctx, o.totalMessage())
}

// SetStatus updates the status and archives it, first to the order's own log and
// then to ownerLog, the archive of the customer that placed the order. A status
// whose own entry cannot be written is rolled back.
func (o *Order) SetStatus(ctx context.Context, status OrderStatus, ownerLog Archive) error {
	if ownerLog == nil {
		return apperr.ErrInvalidArgument("owner archive is required")
	}

	previous := o.status
	o.status = status
	if err := o.archive.Append(ctx, fmt.Sprintf("Status has been updated to: %s", status)); err != nil {
		o.status = previous
		return err
	}
	return ownerLog.Append(ctx, fmt.Sprintf("Order %s has been updated to: %s", o.Label(), status))
}

// total sums the position prices. It is never stored.
func (o *Order) total() float64 {
	var total float64
	for _, p := range o.positions {
		total += p.Price()
	}
	return total
}

func (o *Order) totalMessage() string {
	return fmt.Sprintf("ORDER TOTAL: %s $", FormatAmount(o.total()))
}

// Close releases the order's archive and the positions the order created
func (o *Order) Close() error {
	errs := []error{o.archive.Close()}
	for _, p := range o.owned {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}
