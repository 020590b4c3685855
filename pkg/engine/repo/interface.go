package repo

import (
	"context"

	"github.com/equitix/exchange-core/pkg/engine/model"
)

type IOrderEvent interface {
	Create(ctx context.Context, record *model.OrderEvent) (*model.OrderEvent, error)
	BulkCreate(ctx context.Context, records []*model.OrderEvent) ([]*model.OrderEvent, error)
}

type ITrade interface {
	BulkCreate(ctx context.Context, records []*model.Trade) ([]*model.Trade, error)
	FindBySecurity(ctx context.Context, securityID string, limit int) ([]*model.Trade, error)
}
