package inbound

import (
	"context"

	"github.com/fixora/archive/domain"
	"github.com/fixora/archive/domain/entity"
)

// RegisterCustomerRequest describes a new customer
type RegisterCustomerRequest struct {
	Name    string         `json:"name"`
	Address entity.Address `json:"address"`
	Premium bool           `json:"premium"`
}

// ShopUseCase keeps the tracked entities of a shop by label.
// Every mutation is archived before it returns; lookups of unknown labels
// fail with a not found error.
type ShopUseCase interface {
	RegisterProduct(ctx context.Context, name string, price float64) (*entity.Product, error)
	RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*entity.Customer, error)

	FindProduct(ctx context.Context, name string) (*entity.Product, error)
	FindCustomer(ctx context.Context, name string) (*entity.Customer, error)
	FindOrder(ctx context.Context, customerName string, orderNumber int) (*entity.Order, error)

	UpdatePrice(ctx context.Context, productName string, price float64) error
	UpdateAddress(ctx context.Context, customerName string, address entity.Address) error

	PlaceOrder(ctx context.Context, customerName string, productNames []string) (*entity.Order, error)
	AddItem(ctx context.Context, customerName string, orderNumber int, productName string) error
	UpdateOrderStatus(ctx context.Context, customerName string, orderNumber int, status entity.OrderStatus) error

	ForgetCustomer(ctx context.Context, customerName string) error
	Close() error
}

// HistoryUseCase reads archived entries back
type HistoryUseCase interface {
	History(ctx context.Context, kind, label string) ([]domain.Entry, error)
}
