package usecase

import (
	"context"
	"strings"

	"github.com/fixora/archive/domain"
	apperr "github.com/fixora/archive/domain/error"
	"github.com/fixora/archive/infrastructure/service/logger"
)

// HistoryReader reads the stored entries of an identity
type HistoryReader interface {
	History(ctx context.Context, id domain.Identity) ([]domain.Entry, error)
}

type HistoryUseCase struct {
	reader HistoryReader
	logger logger.Logger
}

func NewHistoryUseCase(reader HistoryReader, log logger.Logger) *HistoryUseCase {
	return &HistoryUseCase{reader: reader, logger: log}
}

func (uc *HistoryUseCase) History(ctx context.Context, kind, label string) ([]domain.Entry, error) {
	if strings.TrimSpace(kind) == "" || label == "" {
		return nil, apperr.ErrInvalidArgument("kind and label are required")
	}

	entries, err := uc.reader.History(ctx, domain.NewIdentity(kind, label))
	if err != nil {
		if !apperr.IsNotFound(err) {
			uc.logger.Error(ctx, "Failed to read history", err, map[string]interface{}{
				"kind":  kind,
				"label": label,
			})
		}
		return nil, err
	}
	return entries, nil
}
