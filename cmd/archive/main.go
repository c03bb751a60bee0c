package main

import (
	"context"
	"fmt"
	"log"

	"github.com/sirupsen/logrus"

	"github.com/fixora/archive/application/archive"
	"github.com/fixora/archive/application/port/inbound"
	"github.com/fixora/archive/application/usecase"
	"github.com/fixora/archive/domain/entity"
	"github.com/fixora/archive/infrastructure/config"
	"github.com/fixora/archive/infrastructure/persistence"
	"github.com/fixora/archive/infrastructure/service/clock"
	"github.com/fixora/archive/infrastructure/service/logger"
)

// archive runs a small shop scenario and leaves one change log per entity
// in the configured storage.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := logger.WithCorrelationID(context.Background(), "")
	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "archive",
	})

	storage, closeStorage, err := persistence.NewLogStorage(ctx, cfg, logrus.StandardLogger())
	if err != nil {
		log.Fatalf("Failed to initialize archive storage: %v", err)
	}
	defer closeStorage()

	archiver := archive.NewArchiver(storage, clock.NewSystemClock(), structuredLogger)
	shop := usecase.NewShopUseCase(archiver, cfg.ShippingFee, structuredLogger)
	defer shop.Close()

	if err := run(ctx, shop); err != nil {
		structuredLogger.Error(ctx, "Scenario aborted", err, nil)
		log.Fatalf("Scenario aborted: %v", err)
	}

	history := usecase.NewHistoryUseCase(archiver, structuredLogger)
	for _, id := range [][2]string{{entity.KindProduct, "Salami"}, {entity.KindPremiumCustomer, "John"}} {
		entries, err := history.History(ctx, id[0], id[1])
		if err != nil {
			log.Fatalf("Failed to read history: %v", err)
		}
		fmt.Printf("%s_%s\n", id[0], id[1])
		for _, e := range entries {
			fmt.Println("  " + e.Line())
		}
	}
}

func run(ctx context.Context, shop inbound.ShopUseCase) error {
	if _, err := shop.RegisterProduct(ctx, "Bread", 2.5); err != nil {
		return err
	}
	if _, err := shop.RegisterProduct(ctx, "Salami", 3); err != nil {
		return err
	}
	if err := shop.UpdatePrice(ctx, "Salami", 2); err != nil {
		return err
	}

	if _, err := shop.RegisterCustomer(ctx, inbound.RegisterCustomerRequest{
		Name:    "John",
		Address: entity.NewAddress("Jackson Blvd", 15, "Chicago"),
		Premium: true,
	}); err != nil {
		return err
	}

	order, err := shop.PlaceOrder(ctx, "John", []string{"Salami"})
	if err != nil {
		return err
	}
	for _, status := range []entity.OrderStatus{entity.OrderStatusShipped, entity.OrderStatusCompleted} {
		if err := shop.UpdateOrderStatus(ctx, "John", order.Number(), status); err != nil {
			return err
		}
	}
	return nil
}
