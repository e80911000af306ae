package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/blues/bms/internal/config"
)

// Client 以太坊客户端封装，付款构造器与事件摄取共用
type Client struct {
	client  *ethclient.Client
	chainID *big.Int
	network string
}

// Init 连接 RPC 节点
func Init(cfg config.ChainConfig) (*Client, error) {
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	return &Client{
		client:  client,
		chainID: big.NewInt(cfg.ChainId),
		network: cfg.Network,
	}, nil
}

// Network 网络名（mainnet / sepolia / ...）
func (c *Client) Network() string {
	return c.network
}

// BalanceAt 查询账户 ETH 余额
func (c *Client) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	return c.client.BalanceAt(ctx, account, nil)
}

// PendingNonceAt 查询账户 nonce（含 pending）
func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return c.client.PendingNonceAt(ctx, account)
}

// EstimateGas 估算调用 gas
func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return c.client.EstimateGas(ctx, msg)
}

// SendTransaction 广播已签名交易
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return c.client.SendTransaction(ctx, tx)
}

// ChainID 链 ID
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	if c.chainID != nil && c.chainID.Sign() > 0 {
		return c.chainID, nil
	}
	return c.client.ChainID(ctx)
}

// RecommendedGasPrice 推荐 gas 价格（gwei）。confirmWithin 秒内要求确认时
// 在节点建议价上浮 10%。
func (c *Client) RecommendedGasPrice(ctx context.Context, confirmWithin int) (*big.Int, error) {
	price, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch suggested gas price: %w", err)
	}
	if confirmWithin > 0 && confirmWithin <= 60 {
		price = new(big.Int).Div(new(big.Int).Mul(price, big.NewInt(110)), big.NewInt(100))
	}
	// wei -> gwei
	return new(big.Int).Div(price, big.NewInt(1e9)), nil
}

// GetLatestBlock 获取最新区块号
func (c *Client) GetLatestBlock(ctx context.Context) (uint64, error) {
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Uint64(), nil
}

// GetLogs 获取指定区块范围内某合约的日志
func (c *Client) GetLogs(ctx context.Context, contract common.Address, fromBlock, toBlock uint64) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{contract},
	}
	return c.client.FilterLogs(ctx, query)
}
