package status

import (
	"testing"
	"time"

	"github.com/blues/bms/internal/model"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func openInput() Input {
	return Input{
		Persisted:   true,
		IsOpen:      true,
		ExpiresDate: testNow.Add(24 * time.Hour),
		ProjectType: model.ProjectTypeTraditional,
	}
}

func TestResolveOverrideWinsOverEverything(t *testing.T) {
	in := openInput()
	in.OverrideStatus = model.StatusExpired
	in.Accepted = true
	in.FulfillmentCount = 3

	res := Resolve(in, testNow)
	if res.Status != model.StatusExpired {
		t.Fatalf("expected override status %q, got %q", model.StatusExpired, res.Status)
	}
	if res.Source != SourceOverride {
		t.Fatalf("expected SourceOverride, got %v", res.Source)
	}
}

func TestResolveLegacyUsesCachedStatus(t *testing.T) {
	in := openInput()
	in.Legacy = true
	in.CachedStatus = model.StatusStarted

	res := Resolve(in, testNow)
	if res.Status != model.StatusStarted || res.Source != SourceCached {
		t.Fatalf("expected cached started, got %+v", res)
	}
}

func TestResolveClosedAccepted(t *testing.T) {
	in := openInput()
	in.IsOpen = false
	in.Accepted = true

	res := Resolve(in, testNow)
	if res.Status != model.StatusDone || res.Source != SourceDerived {
		t.Fatalf("expected derived done, got %+v", res)
	}
}

func TestResolveClosedPastHardExpiration(t *testing.T) {
	in := openInput()
	in.IsOpen = false
	in.ExpiresDate = testNow.Add(-time.Hour)

	res := Resolve(in, testNow)
	if res.Status != model.StatusExpired {
		t.Fatalf("expected expired, got %q", res.Status)
	}
}

func TestResolveClosedExpiredButSubmittableIsNotExpired(t *testing.T) {
	// 合约截止时间晚于 ipfs 截止时间时过期后仍可提交
	in := openInput()
	in.IsOpen = false
	in.ExpiresDate = testNow.Add(-time.Hour)
	in.IPFSDeadline = 1000
	in.ContractDeadline = 2000

	res := Resolve(in, testNow)
	if res.Status == model.StatusExpired {
		t.Fatalf("bounty submittable after expiration should not resolve expired")
	}
	if res.Status != model.StatusCancelled {
		t.Fatalf("expected cancelled, got %q", res.Status)
	}
}

func TestResolveClosedFundedExternalTip(t *testing.T) {
	in := openInput()
	in.IsOpen = false
	in.HasFundedExternalTip = true

	res := Resolve(in, testNow)
	if res.Status != model.StatusDone {
		t.Fatalf("funded external tip should resolve done, got %q", res.Status)
	}
}

func TestResolveClosedCancelled(t *testing.T) {
	in := openInput()
	in.IsOpen = false

	res := Resolve(in, testNow)
	if res.Status != model.StatusCancelled {
		t.Fatalf("expected cancelled, got %q", res.Status)
	}
}

func TestResolveContestStaysOpen(t *testing.T) {
	for _, pt := range []string{model.ProjectTypeContest, model.ProjectTypeCooperative} {
		in := openInput()
		in.ProjectType = pt
		in.FulfillmentCount = 5
		in.HasNonPendingInterest = true

		res := Resolve(in, testNow)
		if res.Status != model.StatusOpen {
			t.Fatalf("%s bounty should stay open, got %q", pt, res.Status)
		}
	}
}

func TestResolveStartedRequiresNonPendingInterest(t *testing.T) {
	in := openInput()
	in.HasNonPendingInterest = true

	res := Resolve(in, testNow)
	if res.Status != model.StatusStarted {
		t.Fatalf("expected started, got %q", res.Status)
	}

	in.HasNonPendingInterest = false
	res = Resolve(in, testNow)
	if res.Status != model.StatusOpen {
		t.Fatalf("expected open without interest, got %q", res.Status)
	}
}

func TestResolveUnpersistedIgnoresInterestAndType(t *testing.T) {
	in := openInput()
	in.Persisted = false
	in.HasNonPendingInterest = true
	in.ProjectType = model.ProjectTypeContest

	res := Resolve(in, testNow)
	if res.Status != model.StatusOpen {
		t.Fatalf("unpersisted bounty should resolve open, got %q", res.Status)
	}
}

func TestResolveSubmitted(t *testing.T) {
	in := openInput()
	in.FulfillmentCount = 1
	in.HasNonPendingInterest = true

	res := Resolve(in, testNow)
	if res.Status != model.StatusSubmitted {
		t.Fatalf("expected submitted, got %q", res.Status)
	}
}

func TestResolveIdempotent(t *testing.T) {
	in := openInput()
	in.FulfillmentCount = 2

	first := Resolve(in, testNow)
	for i := 0; i < 10; i++ {
		if got := Resolve(in, testNow); got != first {
			t.Fatalf("resolve not idempotent: %+v vs %+v", got, first)
		}
	}
}

func TestCanSubmitAfterExpiration(t *testing.T) {
	cases := []struct {
		name string
		in   Input
		want bool
	}{
		{"legacy always", Input{Legacy: true}, true},
		{"missing ipfs deadline", Input{ContractDeadline: 2000}, false},
		{"contract after ipfs", Input{ContractDeadline: 2000, IPFSDeadline: 1000}, true},
		{"contract equals ipfs", Input{ContractDeadline: 1000, IPFSDeadline: 1000}, false},
		{"contract before ipfs", Input{ContractDeadline: 500, IPFSDeadline: 1000}, false},
	}
	for _, tc := range cases {
		if got := CanSubmitAfterExpiration(tc.in); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestOrdinals(t *testing.T) {
	if got := ExperienceOrdinal("Advanced"); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if got := ExperienceOrdinal("nonsense"); got != 0 {
		t.Fatalf("expected 0 for unmapped level, got %d", got)
	}
	if got := ProjectLengthOrdinal("Months"); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := ProjectLengthOrdinal(""); got != 0 {
		t.Fatalf("expected 0 for empty length, got %d", got)
	}
}
