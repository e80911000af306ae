package logic

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blues/bms/internal/model"
	"github.com/blues/bms/internal/payout"
	"github.com/blues/bms/internal/valuation"
)

// ErrTipNotFound 打赏不存在
var ErrTipNotFound = errors.New("tip not found")

// TipLogic 打赏业务逻辑
type TipLogic struct {
	db          *gorm.DB
	engine      *valuation.Engine
	constructor *payout.Constructor
}

// NewTipLogic 创建打赏业务逻辑
func NewTipLogic(db *gorm.DB, engine *valuation.Engine, constructor *payout.Constructor) *TipLogic {
	return &TipLogic{db: db, engine: engine, constructor: constructor}
}

// CreateTip 落库打赏并维护 bounty_tip_link 关联
func (l *TipLogic) CreateTip(tip *model.Tip) error {
	tip.Username = normalizeUsername(tip.Username)

	return l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tip).Error; err != nil {
			return fmt.Errorf("failed to create tip: %w", err)
		}
		if tip.GithubURL != "" {
			link := &model.BountyTipLink{
				NormalizedURL: NormalizeIssueURL(tip.GithubURL),
				Network:       tip.Network,
				TipID:         tip.ID,
			}
			if err := tx.Create(link).Error; err != nil {
				return fmt.Errorf("failed to link tip: %w", err)
			}
		}
		return nil
	})
}

// GetTip 获取打赏
func (l *TipLogic) GetTip(id int64) (*model.Tip, error) {
	var tip model.Tip
	if err := l.db.First(&tip, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTipNotFound
		}
		return nil, fmt.Errorf("failed to fetch tip: %w", err)
	}
	return &tip, nil
}

// TipsForBounty 通过链接表取某悬赏关联的全部打赏
func (l *TipLogic) TipsForBounty(b *model.Bounty) ([]model.Tip, error) {
	var tips []model.Tip
	err := l.db.
		Joins("JOIN bounty_tip_link ON bounty_tip_link.tip_id = tip.id").
		Where("bounty_tip_link.normalized_url = ? AND bounty_tip_link.network = ?",
			NormalizeIssueURL(b.GithubURL), b.Network).
		Order("tip.created_at DESC").
		Find(&tips).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tips: %w", err)
	}
	return tips, nil
}

// Payout 托管付款。整个流程持有打赏行的行级锁，并发的第二次付款
// 会在锁内看到已写入的 receive_txid 而被拒绝。
// 广播成功与 receive_txid 落库之间仍非原子：中间崩溃会留下链上已付、
// 库里仍 PENDING 的记录，需对账任务扫链修复。
func (l *TipLogic) Payout(ctx context.Context, tipID int64, address string, amountOverride *big.Int) (string, error) {
	var txid string
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var tip model.Tip
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&tip, tipID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTipNotFound
			}
			return fmt.Errorf("failed to lock tip: %w", err)
		}

		hash, err := l.constructor.PayoutTo(ctx, &tip, address, amountOverride)
		if err != nil {
			return err
		}
		txid = hash

		now := time.Now()
		tip.ReceiveTxid = hash
		tip.ReceivedOn = &now
		tip.ReceiveAddress = address
		if err := tx.Save(&tip).Error; err != nil {
			return fmt.Errorf("failed to persist receive txid %s: %w", hash, err)
		}

		if tip.RecipientProfileID != nil {
			activity := &model.Activity{
				ProfileID:    *tip.RecipientProfileID,
				TipID:        &tip.ID,
				ActivityType: model.ActivityReceiveTip,
			}
			if err := tx.Create(activity).Error; err != nil {
				return fmt.Errorf("failed to record receive activity: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return txid, nil
}

func normalizeUsername(username string) string {
	out := make([]rune, 0, len(username))
	for _, r := range username {
		if r != ' ' {
			out = append(out, r)
		}
	}
	return string(out)
}
