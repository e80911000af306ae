package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTurnaroundDurations(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	accepted := created.Add(72 * time.Hour)

	b := &Bounty{Web3Created: created, FulfillmentAcceptedOn: &accepted}
	d := b.TurnaroundAccepted()
	if d == nil || *d != 72*time.Hour {
		t.Fatalf("expected 72h turnaround, got %v", d)
	}

	if b.TurnaroundStarted() != nil {
		t.Fatalf("missing started timestamp must yield nil")
	}

	// timestamps before creation are bad data, not negative durations
	before := created.Add(-time.Hour)
	b.FulfillmentAcceptedOn = &before
	if b.TurnaroundAccepted() != nil {
		t.Fatalf("timestamp before creation must yield nil")
	}
}

func TestHourlyRate(t *testing.T) {
	hours := decimal.NullDecimal{Decimal: decimal.NewFromInt(10), Valid: true}
	b := &Bounty{
		ValueInUsdt: decimal.NullDecimal{Decimal: decimal.NewFromInt(500), Valid: true},
		Fulfillments: []BountyFulfillment{
			{Accepted: true, FulfillerHoursWorked: hours},
			{Accepted: false, FulfillerHoursWorked: hours}, // rejected, ignored
		},
	}

	rate := b.HourlyRate()
	if rate == nil || rate.Cmp(decimal.NewFromInt(50)) != 0 {
		t.Fatalf("expected rate 50, got %v", rate)
	}

	b.ValueInUsdt.Valid = false
	if b.HourlyRate() != nil {
		t.Fatalf("unknown usd value must yield nil rate")
	}

	b.ValueInUsdt.Valid = true
	b.Fulfillments = nil
	if b.HourlyRate() != nil {
		t.Fatalf("no reported hours must yield nil rate")
	}
}
