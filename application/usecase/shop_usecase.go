package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/fixora/archive/application/port/inbound"
	"github.com/fixora/archive/domain/entity"
	apperr "github.com/fixora/archive/domain/error"
	"github.com/fixora/archive/infrastructure/service/logger"
)

type ShopUseCase struct {
	mu          sync.Mutex
	opener      entity.Opener
	logger      logger.Logger
	shippingFee float64
	products    map[string]*entity.Product
	customers   map[string]*entity.Customer
}

func NewShopUseCase(opener entity.Opener, shippingFee float64, log logger.Logger) *ShopUseCase {
	return &ShopUseCase{
		opener:      opener,
		logger:      log,
		shippingFee: shippingFee,
		products:    make(map[string]*entity.Product),
		customers:   make(map[string]*entity.Customer),
	}
}

var _ inbound.ShopUseCase = (*ShopUseCase)(nil)

func (uc *ShopUseCase) RegisterProduct(ctx context.Context, name string, price float64) (*entity.Product, error) {
	if err := validateName("product", name); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, exists := uc.products[name]; exists {
		return nil, apperr.ErrAlreadyExists(entity.KindProduct, name)
	}

	product, err := entity.NewProduct(ctx, uc.opener, name, price)
	if err != nil {
		uc.logger.Error(ctx, "Failed to register product", err, map[string]interface{}{"product": name})
		return nil, err
	}
	uc.products[name] = product

	uc.logger.Info(ctx, "Product registered", map[string]interface{}{
		"product": name,
		"price":   price,
	})
	return product, nil
}

func (uc *ShopUseCase) RegisterCustomer(ctx context.Context, req inbound.RegisterCustomerRequest) (*entity.Customer, error) {
	if err := validateName("customer", req.Name); err != nil {
		return nil, err
	}
	if err := validateAddress(req.Address); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, exists := uc.customers[req.Name]; exists {
		return nil, apperr.ErrAlreadyExists(entity.KindCustomer, req.Name)
	}

	var (
		customer *entity.Customer
		err      error
	)
	if req.Premium {
		customer, err = entity.NewPremiumCustomer(ctx, uc.opener, req.Name, req.Address)
	} else {
		customer, err = entity.NewCustomer(ctx, uc.opener, req.Name, req.Address, entity.WithShippingFee(uc.shippingFee))
	}
	if err != nil {
		uc.logger.Error(ctx, "Failed to register customer", err, map[string]interface{}{"customer": req.Name})
		return nil, err
	}
	uc.customers[req.Name] = customer

	uc.logger.Info(ctx, "Customer registered", map[string]interface{}{
		"customer": req.Name,
		"premium":  req.Premium,
	})
	return customer, nil
}

func (uc *ShopUseCase) FindProduct(_ context.Context, name string) (*entity.Product, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.findProduct(name)
}

func (uc *ShopUseCase) FindCustomer(_ context.Context, name string) (*entity.Customer, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.findCustomer(name)
}

// FindOrder returns the customer's most recent order with the given number
func (uc *ShopUseCase) FindOrder(_ context.Context, customerName string, orderNumber int) (*entity.Order, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.findOrder(customerName, orderNumber)
}

func (uc *ShopUseCase) UpdatePrice(ctx context.Context, productName string, price float64) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	product, err := uc.findProduct(productName)
	if err != nil {
		return err
	}
	if err := product.SetPrice(ctx, price); err != nil {
		uc.logger.Error(ctx, "Failed to update price", err, map[string]interface{}{"product": productName})
		return err
	}
	return nil
}

func (uc *ShopUseCase) UpdateAddress(ctx context.Context, customerName string, address entity.Address) error {
	if err := validateAddress(address); err != nil {
		return err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	customer, err := uc.findCustomer(customerName)
	if err != nil {
		return err
	}
	if err := customer.SetAddress(ctx, address); err != nil {
		uc.logger.Error(ctx, "Failed to update address", err, map[string]interface{}{"customer": customerName})
		return err
	}
	return nil
}

func (uc *ShopUseCase) PlaceOrder(ctx context.Context, customerName string, productNames []string) (*entity.Order, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	customer, err := uc.findCustomer(customerName)
	if err != nil {
		return nil, err
	}

	positions := make([]*entity.Product, 0, len(productNames))
	for _, name := range productNames {
		product, err := uc.findProduct(name)
		if err != nil {
			return nil, err
		}
		positions = append(positions, product)
	}

	order, err := customer.PlaceOrder(ctx, positions)
	if err != nil {
		uc.logger.Error(ctx, "Failed to place order", err, map[string]interface{}{"customer": customerName})
		return nil, err
	}

	uc.logger.Info(ctx, "Order placed", map[string]interface{}{
		"customer":  customerName,
		"order":     order.Label(),
		"positions": len(order.Positions()),
	})
	return order, nil
}

func (uc *ShopUseCase) AddItem(ctx context.Context, customerName string, orderNumber int, productName string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	order, err := uc.findOrder(customerName, orderNumber)
	if err != nil {
		return err
	}
	product, err := uc.findProduct(productName)
	if err != nil {
		return err
	}
	return order.AddItem(ctx, product)
}

func (uc *ShopUseCase) UpdateOrderStatus(ctx context.Context, customerName string, orderNumber int, status entity.OrderStatus) error {
	if strings.TrimSpace(string(status)) == "" {
		return apperr.ErrInvalidArgument("status is required")
	}
	if !singleLine(string(status)) {
		return apperr.ErrInvalidArgument("status must be a single line")
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	order, err := uc.findOrder(customerName, orderNumber)
	if err != nil {
		return err
	}
	if err := order.SetStatus(ctx, status, order.Owner().Archive()); err != nil {
		uc.logger.Error(ctx, "Failed to update order status", err, map[string]interface{}{
			"customer": customerName,
			"order":    order.Label(),
		})
		return err
	}

	uc.logger.Info(ctx, "Order status updated", map[string]interface{}{
		"customer": customerName,
		"order":    order.Label(),
		"status":   string(status),
	})
	return nil
}

// ForgetCustomer destroys the customer's archive and drops the customer
func (uc *ShopUseCase) ForgetCustomer(ctx context.Context, customerName string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	customer, err := uc.findCustomer(customerName)
	if err != nil {
		return err
	}
	if err := customer.Forget(ctx); err != nil {
		uc.logger.Error(ctx, "Failed to forget customer", err, map[string]interface{}{"customer": customerName})
		return err
	}
	_ = customer.Close()
	delete(uc.customers, customerName)

	uc.logger.Info(ctx, "Customer forgotten", map[string]interface{}{"customer": customerName})
	return nil
}

// Close releases every archive held by the shop
func (uc *ShopUseCase) Close() error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	var errs []error
	for _, customer := range uc.customers {
		errs = append(errs, customer.Close())
	}
	for _, product := range uc.products {
		errs = append(errs, product.Close())
	}
	return errors.Join(errs...)
}

func (uc *ShopUseCase) findProduct(name string) (*entity.Product, error) {
	product, exists := uc.products[name]
	if !exists {
		return nil, apperr.ErrNotFound(entity.KindProduct, name)
	}
	return product, nil
}

func (uc *ShopUseCase) findCustomer(name string) (*entity.Customer, error) {
	customer, exists := uc.customers[name]
	if !exists {
		return nil, apperr.ErrNotFound(entity.KindCustomer, name)
	}
	return customer, nil
}

func (uc *ShopUseCase) findOrder(customerName string, orderNumber int) (*entity.Order, error) {
	customer, err := uc.findCustomer(customerName)
	if err != nil {
		return nil, err
	}

	orders := customer.Orders()
	for i := len(orders) - 1; i >= 0; i-- {
		if orders[i].Number() == orderNumber {
			return orders[i], nil
		}
	}
	return nil, apperr.ErrNotFound(entity.KindOrder, entity.OrderLabel(orderNumber))
}

func validateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.ErrInvalidArgument(field + " name is required")
	}
	if !singleLine(name) {
		return apperr.ErrInvalidArgument(field + " name must be a single line")
	}
	return nil
}

// validateAddress keeps archived address entries on one line
func validateAddress(address entity.Address) error {
	if !singleLine(address.Street) || !singleLine(address.City) {
		return apperr.ErrInvalidArgument("address must be a single line")
	}
	return nil
}

// singleLine reports whether value fits in one archive entry line
func singleLine(value string) bool {
	return !strings.ContainsAny(value, "\r\n")
}
