package monitor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/blues/bms/internal/config"
	"github.com/blues/bms/internal/ethereum"
	"github.com/blues/bms/internal/logger"
)

// StandardBounties 合约事件 ABI（仅摄取需要的事件）
const bountiesABI = `[
	{
		"anonymous": false,
		"inputs": [{"indexed": false, "name": "bountyId", "type": "uint256"}],
		"name": "BountyIssued",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": false, "name": "bountyId", "type": "uint256"},
			{"indexed": true, "name": "fulfiller", "type": "address"},
			{"indexed": false, "name": "_fulfillmentId", "type": "uint256"}
		],
		"name": "BountyFulfilled",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": false, "name": "bountyId", "type": "uint256"},
			{"indexed": false, "name": "_fulfillmentId", "type": "uint256"}
		],
		"name": "FulfillmentAccepted",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": false, "name": "bountyId", "type": "uint256"},
			{"indexed": true, "name": "issuer", "type": "address"}
		],
		"name": "BountyKilled",
		"type": "event"
	}
]`

// Processor 收到链上事件后的处理回调
type Processor interface {
	HandleBountyIssued(standardBountiesID int64, log types.Log) error
	HandleBountyFulfilled(standardBountiesID int64, fulfiller string, fulfillmentID int64, log types.Log) error
	HandleFulfillmentAccepted(standardBountiesID int64, fulfillmentID int64, log types.Log) error
	HandleBountyKilled(standardBountiesID int64, log types.Log) error
}

// EventMonitor 轮询 StandardBounties 合约日志并派发给处理器
type EventMonitor struct {
	client    *ethereum.Client
	processor Processor
	contract  common.Address
	abi       abi.ABI

	pollInterval  time.Duration
	confirmations uint64

	mu            sync.RWMutex
	nextBlock     uint64

	ctx    context.Context
	cancel context.CancelFunc
}

// NewEventMonitor 创建事件监控器
func NewEventMonitor(client *ethereum.Client, processor Processor, cfg config.ChainConfig) (*EventMonitor, error) {
	parsed, err := abi.JSON(strings.NewReader(bountiesABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse bounties ABI: %w", err)
	}

	interval := time.Duration(cfg.PollInterval) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &EventMonitor{
		client:        client,
		processor:     processor,
		contract:      common.HexToAddress(cfg.ContractAddress),
		abi:           parsed,
		pollInterval:  interval,
		confirmations: uint64(cfg.Confirmations),
		nextBlock:     uint64(cfg.StartBlock),
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// Start 启动监控
func (m *EventMonitor) Start() error {
	current, err := m.client.GetLatestBlock(m.ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to blockchain: %w", err)
	}
	logger.Info("Connected to blockchain, current block: %d", current)

	m.mu.Lock()
	if m.nextBlock == 0 {
		m.nextBlock = current
	}
	m.mu.Unlock()

	go m.loop()
	logger.Info("Bounty event monitor started from block %d", m.nextBlock)
	return nil
}

// Stop 停止监控
func (m *EventMonitor) Stop() {
	m.cancel()
	logger.Info("Bounty event monitor stopped")
}

func (m *EventMonitor) loop() {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	backoff := 5 * time.Second
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if err := m.poll(); err != nil {
				logger.Error("Event poll failed: %v", err)
				// 指数退避，封顶 5 分钟
				select {
				case <-m.ctx.Done():
					return
				case <-time.After(backoff):
				}
				if backoff < 5*time.Minute {
					backoff *= 2
				}
				continue
			}
			backoff = 5 * time.Second
		}
	}
}

// poll 处理一个已确认的区块区间
func (m *EventMonitor) poll() error {
	latest, err := m.client.GetLatestBlock(m.ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch latest block: %w", err)
	}
	if latest < m.confirmations {
		return nil
	}
	confirmed := latest - m.confirmations

	m.mu.RLock()
	from := m.nextBlock
	m.mu.RUnlock()
	if from > confirmed {
		return nil
	}

	// 单次最多 2000 个区块，避免一次拉取过大
	to := confirmed
	if to-from > 2000 {
		to = from + 2000
	}

	logs, err := m.client.GetLogs(m.ctx, m.contract, from, to)
	if err != nil {
		return fmt.Errorf("failed to fetch logs [%d, %d]: %w", from, to, err)
	}

	for _, lg := range logs {
		if err := m.dispatch(lg); err != nil {
			logger.Error("Failed to process log tx=%s index=%d: %v", lg.TxHash.Hex(), lg.Index, err)
		}
	}

	m.mu.Lock()
	m.nextBlock = to + 1
	m.mu.Unlock()

	if len(logs) > 0 {
		logger.Info("Processed %d bounty events in blocks [%d, %d]", len(logs), from, to)
	}
	return nil
}

func (m *EventMonitor) dispatch(lg types.Log) error {
	if len(lg.Topics) == 0 {
		return nil
	}
	sig := lg.Topics[0]

	switch sig {
	case m.abi.Events["BountyIssued"].ID:
		vals, err := m.abi.Events["BountyIssued"].Inputs.Unpack(lg.Data)
		if err != nil {
			return fmt.Errorf("failed to unpack BountyIssued: %w", err)
		}
		return m.processor.HandleBountyIssued(bigToInt64(vals[0]), lg)

	case m.abi.Events["BountyFulfilled"].ID:
		vals, err := m.abi.Events["BountyFulfilled"].Inputs.NonIndexed().Unpack(lg.Data)
		if err != nil {
			return fmt.Errorf("failed to unpack BountyFulfilled: %w", err)
		}
		if len(lg.Topics) < 2 {
			return fmt.Errorf("BountyFulfilled event missing fulfiller topic")
		}
		fulfiller := common.BytesToAddress(lg.Topics[1].Bytes()).Hex()
		return m.processor.HandleBountyFulfilled(bigToInt64(vals[0]), fulfiller, bigToInt64(vals[1]), lg)

	case m.abi.Events["FulfillmentAccepted"].ID:
		vals, err := m.abi.Events["FulfillmentAccepted"].Inputs.Unpack(lg.Data)
		if err != nil {
			return fmt.Errorf("failed to unpack FulfillmentAccepted: %w", err)
		}
		return m.processor.HandleFulfillmentAccepted(bigToInt64(vals[0]), bigToInt64(vals[1]), lg)

	case m.abi.Events["BountyKilled"].ID:
		vals, err := m.abi.Events["BountyKilled"].Inputs.NonIndexed().Unpack(lg.Data)
		if err != nil {
			return fmt.Errorf("failed to unpack BountyKilled: %w", err)
		}
		return m.processor.HandleBountyKilled(bigToInt64(vals[0]), lg)
	}
	return nil
}

func bigToInt64(v interface{}) int64 {
	if b, ok := v.(interface{ Int64() int64 }); ok {
		return b.Int64()
	}
	return 0
}
