package valuation

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/blues/bms/internal/model"
)

// ErrRateNotFound 汇率缺失，调用方把它当作"未知"而不是 0
var ErrRateNotFound = errors.New("conversion rate not found")

// RateConverter 汇率换算能力。at 为 nil 时取当前汇率，否则取历史汇率。
type RateConverter interface {
	ConvertAmount(amount decimal.Decimal, from, to string, at *time.Time) (decimal.Decimal, error)
	ConvertTokenToUsdt(symbol string, at *time.Time) (decimal.Decimal, error)
}

// Value 估值结果。汇率缺失时 Known 为 false，绝不以 0 充当未知值。
type Value struct {
	Known  bool
	Amount decimal.Decimal
	Reason string
}

// Known 已知值
func KnownValue(d decimal.Decimal) Value {
	return Value{Known: true, Amount: d}
}

// Unavailable 未知值及原因
func Unavailable(reason string) Value {
	return Value{Reason: reason}
}

// NullDecimal 转成可落库的 NullDecimal
func (v Value) NullDecimal() decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: v.Amount, Valid: v.Known}
}

var weiPerEth = decimal.New(1, 18) // 10^18

// Engine 估值引擎
type Engine struct {
	rates RateConverter
}

// NewEngine 创建估值引擎
func NewEngine(rates RateConverter) *Engine {
	return &Engine{rates: rates}
}

// BountyNaturalValue 悬赏的自然值 = 原始最小单位 / 10^decimals。
// 未注册代币返回 0（面板必须能渲染所有悬赏）。
func (e *Engine) BountyNaturalValue(b *model.Bounty) decimal.Decimal {
	token, err := model.TokenByAddress(b.TokenAddress)
	if err != nil {
		return decimal.Zero
	}
	return b.ValueInToken.Div(decimal.New(1, int32(token.Decimals)))
}

// TipNaturalValue 打赏的自然值。未注册代币视为错误，不做静默兜底。
func (e *Engine) TipNaturalValue(t *model.Tip) (decimal.Decimal, error) {
	token, err := model.TokenByAddress(t.TokenAddress)
	if err != nil {
		return decimal.Zero, err
	}
	return t.Amount.Div(decimal.New(1, int32(token.Decimals))), nil
}

// TipAmountInWei 打赏金额换算为最小单位。未注册代币按 18 位处理。
func (e *Engine) TipAmountInWei(t *model.Tip) decimal.Decimal {
	decimals := 18
	if token, err := model.TokenByAddress(t.TokenAddress); err == nil {
		decimals = token.Decimals
	}
	return t.Amount.Mul(decimal.New(1, int32(decimals)))
}

// BountyValueInEth 悬赏的 ETH 估值
func (e *Engine) BountyValueInEth(b *model.Bounty) Value {
	if b.TokenName == "ETH" {
		return KnownValue(b.ValueInToken)
	}
	v, err := e.rates.ConvertAmount(b.ValueInToken, b.TokenName, "ETH", nil)
	if err != nil {
		return Unavailable(err.Error())
	}
	return KnownValue(v)
}

// BountyValueInUsdtNow 悬赏按当前汇率的 USDT 估值。
// 注意：非稳定币分支额外除以 10^18，Bounty 侧历史存量数据如此入账，
// Tip 侧没有这一缩放，两者不可混用。
func (e *Engine) BountyValueInUsdtNow(b *model.Bounty) Value {
	return e.bountyValueInUsdt(b, nil)
}

// BountyValueInUsdtThen 悬赏按创建时刻历史汇率的 USDT 估值
func (e *Engine) BountyValueInUsdtThen(b *model.Bounty) Value {
	at := b.Web3Created
	return e.bountyValueInUsdt(b, &at)
}

func (e *Engine) bountyValueInUsdt(b *model.Bounty, at *time.Time) Value {
	if b.TokenName == "USDT" {
		return KnownValue(b.ValueInToken)
	}
	if b.TokenName == "DAI" {
		return KnownValue(b.ValueInToken.Div(weiPerEth))
	}
	v, err := e.rates.ConvertAmount(b.ValueInToken, b.TokenName, "USDT", at)
	if err != nil {
		return Unavailable(err.Error())
	}
	return KnownValue(v.Div(weiPerEth).Round(2))
}

// BountyValueInUsdt 定价纪元由状态决定：进行中的悬赏跟随实时行情，
// 已关闭的悬赏钉在关闭时刻的历史汇率。
func (e *Engine) BountyValueInUsdt(b *model.Bounty, resolvedStatus string) Value {
	if model.IsOpenStatus(resolvedStatus) {
		return e.BountyValueInUsdtNow(b)
	}
	return e.BountyValueInUsdtThen(b)
}

// BountyTokenValueInUsdt 单个代币的 USDT 价格，纪元选择同上
func (e *Engine) BountyTokenValueInUsdt(b *model.Bounty, resolvedStatus string) Value {
	var at *time.Time
	if !model.IsOpenStatus(resolvedStatus) {
		t := b.Web3Created
		at = &t
	}
	v, err := e.rates.ConvertTokenToUsdt(b.TokenName, at)
	if err != nil {
		return Unavailable(err.Error())
	}
	return KnownValue(v.Round(2))
}

// TokenValueTimePeg 估值锚定时间
func (e *Engine) TokenValueTimePeg(b *model.Bounty, resolvedStatus string, now time.Time) time.Time {
	if model.IsOpenStatus(resolvedStatus) {
		return now
	}
	return b.Web3Created
}

// TipValueInEth 打赏的 ETH 估值
func (e *Engine) TipValueInEth(t *model.Tip) Value {
	if t.TokenName == "ETH" {
		return KnownValue(t.Amount)
	}
	v, err := e.rates.ConvertAmount(t.Amount, t.TokenName, "ETH", nil)
	if err != nil {
		return Unavailable(err.Error())
	}
	return KnownValue(v)
}

// TipValueInUsdtNow 打赏按当前汇率的 USDT 估值（无 10^18 缩放）
func (e *Engine) TipValueInUsdtNow(t *model.Tip) Value {
	return e.tipValueInUsdt(t, nil)
}

// TipValueInUsdtThen 打赏按创建时刻历史汇率的 USDT 估值
func (e *Engine) TipValueInUsdtThen(t *model.Tip) Value {
	at := t.CreatedAt
	return e.tipValueInUsdt(t, &at)
}

func (e *Engine) tipValueInUsdt(t *model.Tip, at *time.Time) Value {
	if t.TokenName == "USDT" || t.TokenName == "DAI" {
		return KnownValue(t.Amount)
	}
	v, err := e.rates.ConvertAmount(t.Amount, t.TokenName, "USDT", at)
	if err != nil {
		return Unavailable(err.Error())
	}
	return KnownValue(v.Round(2))
}
