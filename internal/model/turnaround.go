package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TurnaroundAccepted 从发布到验收的耗时，未验收返回 nil
func (b *Bounty) TurnaroundAccepted() *time.Duration {
	return b.turnaround(b.FulfillmentAcceptedOn)
}

// TurnaroundStarted 从发布到首次认领的耗时
func (b *Bounty) TurnaroundStarted() *time.Duration {
	return b.turnaround(b.FulfillmentStartedOn)
}

// TurnaroundSubmitted 从发布到首次提交的耗时
func (b *Bounty) TurnaroundSubmitted() *time.Duration {
	return b.turnaround(b.FulfillmentSubmittedOn)
}

func (b *Bounty) turnaround(until *time.Time) *time.Duration {
	if until == nil || b.Web3Created.IsZero() {
		return nil
	}
	d := until.Sub(b.Web3Created)
	if d < 0 {
		return nil
	}
	return &d
}

// HoursWorked 已验收提交上报的总工时，缺报时返回 nil
func (b *Bounty) HoursWorked() *decimal.Decimal {
	total := decimal.Zero
	reported := false
	for i := range b.Fulfillments {
		f := &b.Fulfillments[i]
		if !f.Accepted || !f.FulfillerHoursWorked.Valid {
			continue
		}
		total = total.Add(f.FulfillerHoursWorked.Decimal)
		reported = true
	}
	if !reported || total.IsZero() {
		return nil
	}
	return &total
}

// HourlyRate 时薪 = USDT 估值 / 总工时，任一缺失返回 nil
func (b *Bounty) HourlyRate() *decimal.Decimal {
	hours := b.HoursWorked()
	if hours == nil || !b.ValueInUsdt.Valid {
		return nil
	}
	rate := b.ValueInUsdt.Decimal.Div(*hours).Round(2)
	return &rate
}
