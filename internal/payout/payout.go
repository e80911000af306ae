package payout

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/blues/bms/internal/model"
	"github.com/blues/bms/internal/valuation"
)

// Error 支付前置校验或构造失败，Reason 为机器可读的简短原因
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "tip payout: " + e.Reason
}

// 校验失败原因
const (
	ReasonBadAddress      = "bad forwarding address"
	ReasonBadWeb3Type     = "bad web3_type"
	ReasonAlreadyReceived = "already received"
)

// ChainClient 账户模型链的标准操作
type ChainClient interface {
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	ChainID(ctx context.Context) (*big.Int, error)
}

// GasOracle 推荐指定确认时长内的 gas 价格（gwei）
type GasOracle interface {
	RecommendedGasPrice(ctx context.Context, confirmWithin int) (*big.Int, error)
}

// ethTransferGas ETH 直转的固定 gas 上限
const ethTransferGas = 100000

const erc20TransferABI = `[{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}]`

// Constructor 打赏托管付款构造器
type Constructor struct {
	chain  ChainClient
	oracle GasOracle
	engine *valuation.Engine
	abi    abi.ABI
}

// NewConstructor 创建付款构造器
func NewConstructor(chain ChainClient, oracle GasOracle, engine *valuation.Engine) (*Constructor, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20TransferABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 abi: %w", err)
	}
	return &Constructor{chain: chain, oracle: oracle, engine: engine, abi: parsed}, nil
}

// tipEscrow 打赏 metadata 中保存的托管账户信息
type tipEscrow struct {
	Address string `json:"address"`
	PrivKey string `json:"priv_key"`
}

// PayoutTo 把打赏托管账户中的资金转给 address，返回广播后的交易哈希。
// amountOverride 非 nil 时覆盖默认转账金额（最小单位）。
// 成功返回后由调用方负责把 receive_txid 写回 Tip；广播与落库不具原子性。
func (c *Constructor) PayoutTo(ctx context.Context, tip *model.Tip, address string, amountOverride *big.Int) (string, error) {
	if address == "" || address == "0x0" {
		return "", &Error{Reason: ReasonBadAddress}
	}
	if tip.Web3Type == model.Web3TypeYge {
		return "", &Error{Reason: ReasonBadWeb3Type}
	}
	if tip.ReceiveTxid != "" {
		return "", &Error{Reason: ReasonAlreadyReceived}
	}

	var escrow tipEscrow
	if err := json.Unmarshal(tip.Metadata, &escrow); err != nil {
		return "", fmt.Errorf("failed to decode tip metadata: %w", err)
	}
	if !common.IsHexAddress(escrow.Address) {
		return "", &Error{Reason: ReasonBadAddress}
	}

	to := common.HexToAddress(address)
	from := common.HexToAddress(escrow.Address)
	isERC20 := strings.ToLower(tip.TokenName) != "eth"

	amount := new(big.Int)
	if amountOverride != nil {
		amount.Set(amountOverride)
	} else {
		amount = c.engine.TipAmountInWei(tip).BigInt()
	}

	// 60 秒内确认的推荐 gas 价格，gwei 换算成 wei
	gasPriceGwei, err := c.oracle.RecommendedGasPrice(ctx, 60)
	if err != nil {
		return "", fmt.Errorf("failed to fetch recommended gas price: %w", err)
	}
	gasPrice := new(big.Int).Mul(gasPriceGwei, big.NewInt(1e9))

	nonce, err := c.chain.PendingNonceAt(ctx, from)
	if err != nil {
		return "", fmt.Errorf("failed to fetch nonce: %w", err)
	}

	var tx *types.Transaction
	if isERC20 {
		tx, err = c.buildTokenTransfer(ctx, tip, from, to, amount, nonce, gasPrice)
	} else {
		tx, err = c.buildEthTransfer(to, amount, nonce, gasPrice)
	}
	if err != nil {
		return "", err
	}

	chainID, err := c.chain.ChainID(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch chain id: %w", err)
	}
	privKey, err := crypto.HexToECDSA(strings.TrimPrefix(escrow.PrivKey, "0x"))
	if err != nil {
		return "", fmt.Errorf("failed to parse escrow private key: %w", err)
	}
	signed, err := types.SignTx(tx, types.NewEIP155Signer(chainID), privKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.chain.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("failed to broadcast transaction: %w", err)
	}
	return signed.Hash().Hex(), nil
}

// buildTokenTransfer 构造 ERC20 transfer 调用。估算费用超出托管账户
// ETH 余额时把 gas 价格压到 balance/gas，宁可慢也不直接失败。
func (c *Constructor) buildTokenTransfer(ctx context.Context, tip *model.Tip, from, to common.Address, amount *big.Int, nonce uint64, gasPrice *big.Int) (*types.Transaction, error) {
	balance, err := c.chain.BalanceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch escrow balance: %w", err)
	}

	data, err := c.abi.Pack("transfer", to, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack transfer call: %w", err)
	}

	tokenAddr := common.HexToAddress(tip.TokenAddress)
	gas, err := c.chain.EstimateGas(ctx, ethereum.CallMsg{
		From: from,
		To:   &tokenAddr,
		Data: data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}
	gas++

	fee := new(big.Int).Mul(new(big.Int).SetUint64(gas), gasPrice)
	if fee.Cmp(balance) >= 0 {
		gasPrice = new(big.Int).Div(balance, new(big.Int).SetUint64(gas))
	}

	return types.NewTransaction(nonce, tokenAddr, big.NewInt(0), gas, gasPrice, data), nil
}

// buildEthTransfer 构造 ETH 直转。手续费从转账金额里扣，
// 收款人拿到的是 amount 减去费用。
func (c *Constructor) buildEthTransfer(to common.Address, amount *big.Int, nonce uint64, gasPrice *big.Int) (*types.Transaction, error) {
	fee := new(big.Int).Mul(big.NewInt(ethTransferGas), gasPrice)
	value := new(big.Int).Sub(amount, fee)
	if value.Sign() <= 0 {
		return nil, fmt.Errorf("tip amount %s does not cover gas fee %s", amount, fee)
	}
	return types.NewTransaction(nonce, to, value, ethTransferGas, gasPrice, nil), nil
}
