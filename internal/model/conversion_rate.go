package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionRate 汇率记录，估值引擎按币对取最接近目标时间的一条
type ConversionRate struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	FromCurrency string          `json:"from_currency" gorm:"index:idx_rate_pair,priority:1;not null"`
	ToCurrency   string          `json:"to_currency" gorm:"index:idx_rate_pair,priority:2;not null"`
	Timestamp    time.Time       `json:"timestamp" gorm:"index:idx_rate_pair,priority:3;not null"`
	FromAmount   decimal.Decimal `json:"from_amount" gorm:"type:numeric(50,18);default:1"`
	ToAmount     decimal.Decimal `json:"to_amount" gorm:"type:numeric(50,18);not null"`
	Source       string          `json:"source"`
}

// Rate 换算比率 to/from
func (r *ConversionRate) Rate() decimal.Decimal {
	if r.FromAmount.IsZero() {
		return decimal.Zero
	}
	return r.ToAmount.Div(r.FromAmount)
}

// TableName 自定义表名
func (ConversionRate) TableName() string {
	return "conversion_rate"
}
