package repo

import (
	"context"

	"github.com/equitix/exchange-core/pkg/engine/model"
	"gorm.io/gorm"
)

type TradeSQLRepo struct {
	db *gorm.DB
}

func NewTradeSQLRepo(db *gorm.DB) *TradeSQLRepo {
	return &TradeSQLRepo{
		db: db,
	}
}

func (r *TradeSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *TradeSQLRepo) BulkCreate(ctx context.Context, records []*model.Trade) ([]*model.Trade, error) {
	return records, r.dbWithContext(ctx).Create(records).Error
}

func (r *TradeSQLRepo) FindBySecurity(ctx context.Context, securityID string, limit int) ([]*model.Trade, error) {
	var records []*model.Trade
	err := r.dbWithContext(ctx).
		Where("security_id = ?", securityID).
		Order("id desc").
		Limit(limit).
		Find(&records).Error
	return records, err
}
