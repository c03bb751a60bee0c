package entity

import (
	"context"
	"strconv"

	"github.com/fixora/archive/domain"
)

// Entity kinds, used as the first half of an archive identity
const (
	KindProduct         = "Product"
	KindCustomer        = "Customer"
	KindPremiumCustomer = "PremiumCustomer"
	KindOrder           = "Order"
)

// Archive is the append-only change log a tracked entity writes to
type Archive interface {
	Identity() domain.Identity
	Append(ctx context.Context, message string) error
	Destroy(ctx context.Context) error
	Close() error
}

// Opener opens the archive bound to an identity
type Opener interface {
	OpenArchive(ctx context.Context, id domain.Identity) (Archive, error)
}

// InitialMessages produces initial-state entries, evaluated after the archive is opened
type InitialMessages func() []string

// single wraps a one-line provider
func single(f func() string) InitialMessages {
	return func() []string { return []string{f()} }
}

// writeInitial appends the messages of every provider in order
func writeInitial(ctx context.Context, archive Archive, providers []InitialMessages) error {
	for _, provide := range providers {
		for _, message := range provide() {
			if err := archive.Append(ctx, message); err != nil {
				return err
			}
		}
	}
	return nil
}

// openArchived opens the archive for id and writes the initial entries.
// The archive is released again when any initial entry fails.
func openArchived(ctx context.Context, opener Opener, id domain.Identity, providers []InitialMessages) (Archive, error) {
	archive, err := opener.OpenArchive(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := writeInitial(ctx, archive, providers); err != nil {
		_ = archive.Close()
		return nil, err
	}
	return archive, nil
}

// FormatAmount renders a price the way it appears in archive entries
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
