package model

import "time"

// Trade is a persisted execution. Both continuous matches and auction sweeps
// produce rows in the same table.
type Trade struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	SecurityID  string    `gorm:"column:security_id"`
	Price       int64     `gorm:"column:price"`
	Quantity    int64     `gorm:"column:quantity"`
	BuyOrderID  int64     `gorm:"column:buy_order_id"`
	SellOrderID int64     `gorm:"column:sell_order_id"`
	ExecutedAt  time.Time `gorm:"column:executed_at"`
}

func (Trade) TableName() string {
	return "trades"
}
