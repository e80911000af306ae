package model

import "testing"

func TestInterestCanTransition(t *testing.T) {
	cases := []struct {
		from string
		to   string
		want bool
	}{
		{InterestStatusPending, InterestStatusOkay, true},
		{InterestStatusPending, InterestStatusSnoozed, true},
		{InterestStatusPending, InterestStatusWarned, false},
		{InterestStatusOkay, InterestStatusWarned, true},
		{InterestStatusOkay, InterestStatusReview, false},
		{InterestStatusWarned, InterestStatusOkay, true},
		{InterestStatusWarned, InterestStatusReview, true},
		{InterestStatusReview, InterestStatusSnoozed, true},
		{InterestStatusReview, InterestStatusOkay, false},
		{InterestStatusSnoozed, InterestStatusOkay, false},
	}
	for _, tc := range cases {
		i := &Interest{Status: tc.from}
		if got := i.CanTransition(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestTipStatus(t *testing.T) {
	tip := &Tip{}
	if got := tip.Status(); got != TipStatusPending {
		t.Fatalf("expected pending, got %q", got)
	}
	tip.ReceiveTxid = "0xabc"
	if got := tip.Status(); got != TipStatusReceived {
		t.Fatalf("expected received, got %q", got)
	}
}

func TestTokenRegistry(t *testing.T) {
	usdt, err := TokenByName("usdt")
	if err != nil {
		t.Fatalf("TokenByName: %v", err)
	}
	if usdt.Decimals != 6 {
		t.Fatalf("expected 6 decimals for USDT, got %d", usdt.Decimals)
	}

	byAddr, err := TokenByAddress(usdt.Address)
	if err != nil {
		t.Fatalf("TokenByAddress: %v", err)
	}
	if byAddr.Name != usdt.Name {
		t.Fatalf("expected %q, got %q", usdt.Name, byAddr.Name)
	}

	if _, err := TokenByAddress("0xdoesnotexist"); err == nil {
		t.Fatalf("expected error for unregistered address")
	}
}

func TestIsOpenStatus(t *testing.T) {
	for _, s := range OpenStatuses {
		if !IsOpenStatus(s) {
			t.Fatalf("%q should be open", s)
		}
	}
	for _, s := range ClosedStatuses {
		if IsOpenStatus(s) {
			t.Fatalf("%q should not be open", s)
		}
	}
}
