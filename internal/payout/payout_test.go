package payout

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/blues/bms/internal/model"
	"github.com/blues/bms/internal/valuation"
)

type fakeChain struct {
	balance     *big.Int
	nonce       uint64
	gasEstimate uint64
	chainID     *big.Int

	balanceCalls int
	nonceCalls   int
	sent         []*types.Transaction
	sendErr      error
}

func (f *fakeChain) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	f.balanceCalls++
	return new(big.Int).Set(f.balance), nil
}

func (f *fakeChain) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	f.nonceCalls++
	return f.nonce, nil
}

func (f *fakeChain) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return f.gasEstimate, nil
}

func (f *fakeChain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeChain) ChainID(ctx context.Context) (*big.Int, error) {
	return f.chainID, nil
}

type fakeOracle struct {
	gwei  *big.Int
	calls int
}

func (f *fakeOracle) RecommendedGasPrice(ctx context.Context, confirmWithin int) (*big.Int, error) {
	f.calls++
	return f.gwei, nil
}

func newTestChain() *fakeChain {
	return &fakeChain{
		balance:     big.NewInt(1e18),
		nonce:       7,
		gasEstimate: 50000,
		chainID:     big.NewInt(1),
	}
}

func newTestConstructor(t *testing.T, chain *fakeChain, oracle *fakeOracle) *Constructor {
	t.Helper()
	engine := valuation.NewEngine(nil)
	c, err := NewConstructor(chain, oracle, engine)
	if err != nil {
		t.Fatalf("NewConstructor: %v", err)
	}
	return c
}

func escrowMetadata(t *testing.T) datatypes.JSON {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	addr := crypto.PubkeyToAddress(key.PublicKey)
	raw, err := json.Marshal(map[string]string{
		"address":  addr.Hex(),
		"priv_key": common.Bytes2Hex(crypto.FromECDSA(key)),
	})
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}
	return datatypes.JSON(raw)
}

func ethTip(t *testing.T) *model.Tip {
	return &model.Tip{
		TokenName: "ETH",
		Amount:    decimal.NewFromFloat(0.1),
		Metadata:  escrowMetadata(t),
	}
}

func TestPayoutRejectsBadAddress(t *testing.T) {
	chain := newTestChain()
	oracle := &fakeOracle{gwei: big.NewInt(10)}
	c := newTestConstructor(t, chain, oracle)

	for _, addr := range []string{"", "0x0"} {
		_, err := c.PayoutTo(context.Background(), ethTip(t), addr, nil)
		var perr *Error
		if !errors.As(err, &perr) || perr.Reason != ReasonBadAddress {
			t.Fatalf("address %q: expected bad address error, got %v", addr, err)
		}
	}
	// preconditions fail before any chain interaction
	if chain.nonceCalls != 0 || chain.balanceCalls != 0 || oracle.calls != 0 {
		t.Fatalf("precondition failure must not touch the chain")
	}
}

func TestPayoutRejectsYgeWeb3Type(t *testing.T) {
	c := newTestConstructor(t, newTestChain(), &fakeOracle{gwei: big.NewInt(10)})

	tip := ethTip(t)
	tip.Web3Type = model.Web3TypeYge
	_, err := c.PayoutTo(context.Background(), tip, "0x1111111111111111111111111111111111111111", nil)
	var perr *Error
	if !errors.As(err, &perr) || perr.Reason != ReasonBadWeb3Type {
		t.Fatalf("expected bad web3_type error, got %v", err)
	}
}

func TestPayoutRejectsAlreadyReceived(t *testing.T) {
	chain := newTestChain()
	c := newTestConstructor(t, chain, &fakeOracle{gwei: big.NewInt(10)})

	tip := ethTip(t)
	tip.ReceiveTxid = "0xabc"
	_, err := c.PayoutTo(context.Background(), tip, "0x1111111111111111111111111111111111111111", nil)
	var perr *Error
	if !errors.As(err, &perr) || perr.Reason != ReasonAlreadyReceived {
		t.Fatalf("expected already received error, got %v", err)
	}
	if len(chain.sent) != 0 {
		t.Fatalf("received tip must never broadcast again")
	}
}

func TestPayoutEthDeductsFeeFromAmount(t *testing.T) {
	chain := newTestChain()
	oracle := &fakeOracle{gwei: big.NewInt(10)}
	c := newTestConstructor(t, chain, oracle)

	amount := big.NewInt(1e16) // 0.01 ETH in wei
	txid, err := c.PayoutTo(context.Background(), ethTip(t), "0x1111111111111111111111111111111111111111", amount)
	if err != nil {
		t.Fatalf("PayoutTo: %v", err)
	}
	if txid == "" {
		t.Fatalf("expected transaction hash")
	}
	if len(chain.sent) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(chain.sent))
	}

	tx := chain.sent[0]
	gasPrice := new(big.Int).Mul(oracle.gwei, big.NewInt(1e9))
	fee := new(big.Int).Mul(big.NewInt(100000), gasPrice)
	want := new(big.Int).Sub(amount, fee)
	if tx.Value().Cmp(want) != 0 {
		t.Fatalf("expected value %s, got %s", want, tx.Value())
	}
	if tx.Gas() != 100000 {
		t.Fatalf("expected fixed gas 100000, got %d", tx.Gas())
	}
	if tx.Nonce() != chain.nonce {
		t.Fatalf("expected nonce %d, got %d", chain.nonce, tx.Nonce())
	}
}

func TestPayoutEthAmountBelowFee(t *testing.T) {
	c := newTestConstructor(t, newTestChain(), &fakeOracle{gwei: big.NewInt(10)})

	// fee is 100000 * 10 gwei = 1e15 wei, amount below that fails
	_, err := c.PayoutTo(context.Background(), ethTip(t), "0x1111111111111111111111111111111111111111", big.NewInt(1e14))
	if err == nil {
		t.Fatalf("expected error when amount does not cover fee")
	}
}

func TestPayoutERC20UsesEstimatePlusOne(t *testing.T) {
	chain := newTestChain()
	c := newTestConstructor(t, chain, &fakeOracle{gwei: big.NewInt(10)})

	tip := ethTip(t)
	tip.TokenName = "DAI"
	tip.TokenAddress = "0x6b175474e89094c44da98b954eedeac495271d0f"

	_, err := c.PayoutTo(context.Background(), tip, "0x1111111111111111111111111111111111111111", big.NewInt(1e18))
	if err != nil {
		t.Fatalf("PayoutTo: %v", err)
	}
	tx := chain.sent[0]
	if tx.Gas() != chain.gasEstimate+1 {
		t.Fatalf("expected gas %d, got %d", chain.gasEstimate+1, tx.Gas())
	}
	if tx.Value().Sign() != 0 {
		t.Fatalf("token transfer must carry zero value, got %s", tx.Value())
	}
	if tx.To() == nil || tx.To().Hex() != common.HexToAddress(tip.TokenAddress).Hex() {
		t.Fatalf("token transfer must target the token contract")
	}
}

func TestPayoutERC20CapsGasPriceToBalance(t *testing.T) {
	chain := newTestChain()
	chain.balance = big.NewInt(1e12) // far below estimated fee
	c := newTestConstructor(t, chain, &fakeOracle{gwei: big.NewInt(100)})

	tip := ethTip(t)
	tip.TokenName = "DAI"
	tip.TokenAddress = "0x6b175474e89094c44da98b954eedeac495271d0f"

	_, err := c.PayoutTo(context.Background(), tip, "0x1111111111111111111111111111111111111111", big.NewInt(1e18))
	if err != nil {
		t.Fatalf("PayoutTo: %v", err)
	}
	tx := chain.sent[0]
	gas := new(big.Int).SetUint64(tx.Gas())
	want := new(big.Int).Div(chain.balance, gas)
	if tx.GasPrice().Cmp(want) != 0 {
		t.Fatalf("expected capped gas price %s, got %s", want, tx.GasPrice())
	}
}

func TestPayoutBadMetadataAddress(t *testing.T) {
	c := newTestConstructor(t, newTestChain(), &fakeOracle{gwei: big.NewInt(10)})

	tip := ethTip(t)
	tip.Metadata = datatypes.JSON(`{"address":"not-an-address","priv_key":"00"}`)
	_, err := c.PayoutTo(context.Background(), tip, "0x1111111111111111111111111111111111111111", nil)
	var perr *Error
	if !errors.As(err, &perr) || perr.Reason != ReasonBadAddress {
		t.Fatalf("expected bad address error for malformed escrow, got %v", err)
	}
}
