package rates

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/blues/bms/internal/model"
	"github.com/blues/bms/internal/valuation"
)

// Converter 基于 conversion_rate 表的汇率换算，实现 valuation.RateConverter。
// 同一币对可能有多条汇率记录，取时间上最接近目标时刻的一条；
// 正向币对缺失时尝试反向币对取倒数。
type Converter struct {
	db *gorm.DB
}

// NewConverter 创建汇率换算器
func NewConverter(db *gorm.DB) *Converter {
	return &Converter{db: db}
}

// ConvertAmount 金额换算。at 为 nil 时取当前时间。
func (c *Converter) ConvertAmount(amount decimal.Decimal, from, to string, at *time.Time) (decimal.Decimal, error) {
	rate, err := c.rateAt(from, to, at)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// ConvertTokenToUsdt 单币 USDT 价格
func (c *Converter) ConvertTokenToUsdt(symbol string, at *time.Time) (decimal.Decimal, error) {
	return c.rateAt(symbol, "USDT", at)
}

func (c *Converter) rateAt(from, to string, at *time.Time) (decimal.Decimal, error) {
	target := time.Now()
	if at != nil {
		target = *at
	}

	rec, err := c.nearest(from, to, target)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate lookup %s/%s: %w", from, to, err)
	}
	if rec != nil {
		return rec.Rate(), nil
	}

	// 反向币对兜底
	rec, err = c.nearest(to, from, target)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate lookup %s/%s: %w", to, from, err)
	}
	if rec == nil || rec.Rate().IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %s/%s", valuation.ErrRateNotFound, from, to)
	}
	return decimal.NewFromInt(1).Div(rec.Rate()), nil
}

// nearest 取币对在目标时刻前后最接近的一条记录，没有则返回 nil
func (c *Converter) nearest(from, to string, target time.Time) (*model.ConversionRate, error) {
	var rec model.ConversionRate
	err := c.db.Raw(`
		SELECT * FROM conversion_rate
		WHERE from_currency = ? AND to_currency = ?
		ORDER BY ABS(EXTRACT(EPOCH FROM (timestamp - ?::timestamptz))) ASC
		LIMIT 1
	`, from, to, target).Scan(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return &rec, nil
}

// Record 写入一条汇率
func (c *Converter) Record(rec *model.ConversionRate) error {
	return c.db.Create(rec).Error
}
