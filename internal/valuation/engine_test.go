package valuation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/blues/bms/internal/model"
)

// stubConverter counts rate lookups so tests can assert the stablecoin
// fast paths never hit the rate table.
type stubConverter struct {
	rate      decimal.Decimal
	err       error
	calls     int
	lastAt    *time.Time
	lastFrom  string
	lastTo    string
	tokenRate decimal.Decimal
}

func (s *stubConverter) ConvertAmount(amount decimal.Decimal, from, to string, at *time.Time) (decimal.Decimal, error) {
	s.calls++
	s.lastFrom, s.lastTo, s.lastAt = from, to, at
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return amount.Mul(s.rate), nil
}

func (s *stubConverter) ConvertTokenToUsdt(symbol string, at *time.Time) (decimal.Decimal, error) {
	s.calls++
	s.lastFrom, s.lastTo, s.lastAt = symbol, "USDT", at
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.tokenRate, nil
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestBountyValueInUsdtPassthroughUSDT(t *testing.T) {
	stub := &stubConverter{}
	engine := NewEngine(stub)
	b := &model.Bounty{TokenName: "USDT", ValueInToken: mustDecimal(t, "150.5")}

	v := engine.BountyValueInUsdtNow(b)
	if !v.Known {
		t.Fatalf("expected known value, got reason %q", v.Reason)
	}
	if v.Amount.Cmp(mustDecimal(t, "150.5")) != 0 {
		t.Fatalf("expected 150.5, got %s", v.Amount)
	}
	if stub.calls != 0 {
		t.Fatalf("USDT passthrough should not touch the rate table, got %d calls", stub.calls)
	}
}

func TestBountyValueInUsdtDAIScaled(t *testing.T) {
	stub := &stubConverter{}
	engine := NewEngine(stub)
	// 2 DAI stored in wei units
	b := &model.Bounty{TokenName: "DAI", ValueInToken: decimal.New(2, 18)}

	v := engine.BountyValueInUsdtNow(b)
	if !v.Known {
		t.Fatalf("expected known value, got reason %q", v.Reason)
	}
	if v.Amount.Cmp(decimal.NewFromInt(2)) != 0 {
		t.Fatalf("expected 2, got %s", v.Amount)
	}
	if stub.calls != 0 {
		t.Fatalf("DAI passthrough should not touch the rate table, got %d calls", stub.calls)
	}
}

func TestBountyValueInUsdtConvertedScaledByWei(t *testing.T) {
	stub := &stubConverter{rate: decimal.NewFromInt(3000)}
	engine := NewEngine(stub)
	b := &model.Bounty{TokenName: "ETH", ValueInToken: decimal.New(1, 18)}

	v := engine.BountyValueInUsdtNow(b)
	if !v.Known {
		t.Fatalf("expected known value, got reason %q", v.Reason)
	}
	// converted value gets divided by 10^18 on the bounty side
	if v.Amount.Cmp(decimal.NewFromInt(3000)) != 0 {
		t.Fatalf("expected 3000, got %s", v.Amount)
	}
	if stub.calls != 1 {
		t.Fatalf("expected one rate lookup, got %d", stub.calls)
	}
}

func TestBountyValueRateUnavailableIsNotZero(t *testing.T) {
	stub := &stubConverter{err: ErrRateNotFound}
	engine := NewEngine(stub)
	b := &model.Bounty{TokenName: "BAT", ValueInToken: decimal.NewFromInt(100)}

	v := engine.BountyValueInUsdtNow(b)
	if v.Known {
		t.Fatalf("missing rate must yield unknown value, got %s", v.Amount)
	}
	if v.Reason == "" {
		t.Fatalf("unknown value must carry a reason")
	}
	nd := v.NullDecimal()
	if nd.Valid {
		t.Fatalf("unknown value must persist as NULL, not %s", nd.Decimal)
	}
}

func TestBountyValueInUsdtEpochSelection(t *testing.T) {
	created := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	stub := &stubConverter{rate: decimal.NewFromInt(1)}
	engine := NewEngine(stub)
	b := &model.Bounty{TokenName: "ETH", ValueInToken: decimal.New(1, 18), Web3Created: created}

	engine.BountyValueInUsdt(b, model.StatusOpen)
	if stub.lastAt != nil {
		t.Fatalf("open bounty should use current rates, got pegged at %v", stub.lastAt)
	}

	engine.BountyValueInUsdt(b, model.StatusDone)
	if stub.lastAt == nil || !stub.lastAt.Equal(created) {
		t.Fatalf("closed bounty should peg to creation time, got %v", stub.lastAt)
	}
}

func TestTokenValueTimePeg(t *testing.T) {
	created := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	engine := NewEngine(&stubConverter{})
	b := &model.Bounty{Web3Created: created}

	if peg := engine.TokenValueTimePeg(b, model.StatusStarted, now); !peg.Equal(now) {
		t.Fatalf("open status should peg to now, got %v", peg)
	}
	if peg := engine.TokenValueTimePeg(b, model.StatusCancelled, now); !peg.Equal(created) {
		t.Fatalf("closed status should peg to creation, got %v", peg)
	}
}

func TestBountyNaturalValue(t *testing.T) {
	engine := NewEngine(&stubConverter{})

	usdt, _ := model.TokenByName("USDT")
	b := &model.Bounty{TokenAddress: usdt.Address, ValueInToken: decimal.New(25, 6)}
	if got := engine.BountyNaturalValue(b); got.Cmp(decimal.NewFromInt(25)) != 0 {
		t.Fatalf("expected 25, got %s", got)
	}

	// unregistered tokens render as zero, never an error
	b = &model.Bounty{TokenAddress: "0xdeadbeef", ValueInToken: decimal.NewFromInt(100)}
	if got := engine.BountyNaturalValue(b); !got.IsZero() {
		t.Fatalf("unregistered token should value at zero, got %s", got)
	}
}

func TestTipNaturalValueUnknownTokenErrors(t *testing.T) {
	engine := NewEngine(&stubConverter{})
	tip := &model.Tip{TokenAddress: "0xdeadbeef", Amount: decimal.NewFromInt(1)}
	if _, err := engine.TipNaturalValue(tip); err == nil {
		t.Fatalf("expected error for unregistered tip token")
	}
}

func TestTipAmountInWei(t *testing.T) {
	engine := NewEngine(&stubConverter{})

	usdt, _ := model.TokenByName("USDT")
	tip := &model.Tip{TokenAddress: usdt.Address, Amount: decimal.NewFromInt(5)}
	if got := engine.TipAmountInWei(tip); got.Cmp(decimal.New(5, 6)) != 0 {
		t.Fatalf("expected 5e6, got %s", got)
	}

	// unregistered tokens fall back to 18 decimals
	tip = &model.Tip{TokenAddress: "0xdeadbeef", Amount: decimal.NewFromInt(1)}
	if got := engine.TipAmountInWei(tip); got.Cmp(decimal.New(1, 18)) != 0 {
		t.Fatalf("expected 1e18, got %s", got)
	}
}

func TestTipValueInUsdtNoWeiScaling(t *testing.T) {
	stub := &stubConverter{rate: decimal.NewFromFloat(0.5)}
	engine := NewEngine(stub)
	tip := &model.Tip{TokenName: "BAT", Amount: decimal.NewFromInt(10)}

	v := engine.TipValueInUsdtNow(tip)
	if !v.Known {
		t.Fatalf("expected known value, got reason %q", v.Reason)
	}
	if v.Amount.Cmp(decimal.NewFromInt(5)) != 0 {
		t.Fatalf("tip conversion must not scale by 10^18, expected 5, got %s", v.Amount)
	}
}

func TestTipValueInUsdtStablecoinPassthrough(t *testing.T) {
	stub := &stubConverter{}
	engine := NewEngine(stub)

	for _, token := range []string{"USDT", "DAI"} {
		tip := &model.Tip{TokenName: token, Amount: mustDecimal(t, "12.34")}
		v := engine.TipValueInUsdtNow(tip)
		if !v.Known || v.Amount.Cmp(mustDecimal(t, "12.34")) != 0 {
			t.Fatalf("%s passthrough failed: %+v", token, v)
		}
	}
	if stub.calls != 0 {
		t.Fatalf("stablecoin passthrough should not touch the rate table")
	}
}

func TestBountyValueInEth(t *testing.T) {
	stub := &stubConverter{rate: decimal.NewFromFloat(0.001)}
	engine := NewEngine(stub)

	b := &model.Bounty{TokenName: "ETH", ValueInToken: decimal.NewFromInt(2)}
	v := engine.BountyValueInEth(b)
	if !v.Known || v.Amount.Cmp(decimal.NewFromInt(2)) != 0 {
		t.Fatalf("ETH passthrough failed: %+v", v)
	}

	b = &model.Bounty{TokenName: "BAT", ValueInToken: decimal.NewFromInt(1000)}
	v = engine.BountyValueInEth(b)
	if !v.Known || v.Amount.Cmp(decimal.NewFromInt(1)) != 0 {
		t.Fatalf("expected 1 ETH, got %+v", v)
	}
	if stub.lastTo != "ETH" {
		t.Fatalf("expected conversion to ETH, got %q", stub.lastTo)
	}
}
