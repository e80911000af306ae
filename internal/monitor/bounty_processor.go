package monitor

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"gorm.io/gorm"

	"github.com/blues/bms/internal/logic"
	"github.com/blues/bms/internal/logger"
	"github.com/blues/bms/internal/model"
)

// BountyProcessor 把链上事件落成悬赏版本与提交记录
type BountyProcessor struct {
	db      *gorm.DB
	bounty  *logic.BountyLogic
	network string
}

// NewBountyProcessor 创建事件处理器
func NewBountyProcessor(db *gorm.DB, bounty *logic.BountyLogic, network string) *BountyProcessor {
	return &BountyProcessor{db: db, bounty: bounty, network: network}
}

// HandleBountyIssued 新悬赏上链。详情（标题、金额、issue 地址）由
// ipfs 数据同步流程补齐，这里先落一个 open 版本占位。
func (p *BountyProcessor) HandleBountyIssued(standardBountiesID int64, lg types.Log) error {
	existing, err := p.currentRevision(standardBountiesID)
	if err != nil {
		return err
	}
	if existing != nil {
		logger.Debug("Bounty %d already ingested", standardBountiesID)
		return nil
	}

	b := &model.Bounty{
		StandardBountiesID: standardBountiesID,
		Network:            p.network,
		Web3Created:        time.Now(),
		IsOpen:             true,
		ContractAddress:    lg.Address.Hex(),
	}
	if err := p.bounty.CreateRevision(b); err != nil {
		return fmt.Errorf("failed to ingest bounty %d: %w", standardBountiesID, err)
	}
	logger.Info("Ingested bounty %d (tx %s)", standardBountiesID, lg.TxHash.Hex())
	return nil
}

// HandleBountyFulfilled 收到一次链上提交
func (p *BountyProcessor) HandleBountyFulfilled(standardBountiesID int64, fulfiller string, fulfillmentID int64, lg types.Log) error {
	b, err := p.currentRevision(standardBountiesID)
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("fulfillment for unknown bounty %d", standardBountiesID)
	}

	f := &model.BountyFulfillment{
		FulfillerAddress: fulfiller,
		FulfillmentID:    &fulfillmentID,
	}
	if err := p.bounty.AddFulfillment(b, f); err != nil {
		return fmt.Errorf("failed to record fulfillment for bounty %d: %w", standardBountiesID, err)
	}
	logger.Info("Recorded fulfillment %d for bounty %d", fulfillmentID, standardBountiesID)
	return nil
}

// HandleFulfillmentAccepted 链上验收
func (p *BountyProcessor) HandleFulfillmentAccepted(standardBountiesID int64, fulfillmentID int64, lg types.Log) error {
	b, err := p.currentRevision(standardBountiesID)
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("acceptance for unknown bounty %d", standardBountiesID)
	}

	var f model.BountyFulfillment
	err = p.db.Where("bounty_id = ? AND fulfillment_id = ?", b.ID, fulfillmentID).First(&f).Error
	if err != nil {
		return fmt.Errorf("failed to find fulfillment %d for bounty %d: %w", fulfillmentID, standardBountiesID, err)
	}
	return p.bounty.AcceptFulfillment(b, f.ID)
}

// HandleBountyKilled 发布者撤销悬赏
func (p *BountyProcessor) HandleBountyKilled(standardBountiesID int64, lg types.Log) error {
	b, err := p.currentRevision(standardBountiesID)
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("kill for unknown bounty %d", standardBountiesID)
	}

	now := time.Now()
	b.IsOpen = false
	b.CanceledOn = &now
	if err := p.bounty.Save(b); err != nil {
		return fmt.Errorf("failed to cancel bounty %d: %w", standardBountiesID, err)
	}
	logger.Info("Cancelled bounty %d (tx %s)", standardBountiesID, lg.TxHash.Hex())
	return nil
}

func (p *BountyProcessor) currentRevision(standardBountiesID int64) (*model.Bounty, error) {
	var b model.Bounty
	err := p.db.
		Where("standard_bounties_id = ? AND network = ? AND current_bounty = true", standardBountiesID, p.network).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bounty %d: %w", standardBountiesID, err)
	}
	return &b, nil
}
