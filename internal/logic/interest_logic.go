package logic

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/blues/bms/internal/logger"
	"github.com/blues/bms/internal/model"
)

// ErrInvalidTransition 不允许的意向状态流转
var ErrInvalidTransition = errors.New("invalid interest status transition")

// RecomputeEnqueuer 意向变更后异步重算相关悬赏，
// 替代逐条级联保存，压平写放大
type RecomputeEnqueuer interface {
	Enqueue(interestID int64)
}

// InterestLogic 认领意向业务逻辑
type InterestLogic struct {
	db        *gorm.DB
	recompute RecomputeEnqueuer
}

// NewInterestLogic 创建意向业务逻辑
func NewInterestLogic(db *gorm.DB, recompute RecomputeEnqueuer) *InterestLogic {
	return &InterestLogic{db: db, recompute: recompute}
}

// StartWork 工作者认领悬赏。approval 类型的悬赏先进 pending 状态。
func (l *InterestLogic) StartWork(b *model.Bounty, profileID int64, message string) (*model.Interest, error) {
	interest := &model.Interest{
		ProfileID:    profileID,
		IssueMessage: message,
		Status:       model.InterestStatusOkay,
	}
	if b.PermissionType == "approval" {
		interest.Pending = true
		interest.Status = model.InterestStatusPending
	}

	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(interest).Error; err != nil {
			return fmt.Errorf("failed to create interest: %w", err)
		}
		if err := tx.Exec(
			"INSERT INTO bounty_interests (bounty_id, interest_id) VALUES (?, ?)",
			b.ID, interest.ID,
		).Error; err != nil {
			return fmt.Errorf("failed to link interest: %w", err)
		}
		return l.recordActivity(tx, profileID, &b.ID, model.ActivityStartWork, false)
	})
	if err != nil {
		return nil, err
	}

	l.recompute.Enqueue(interest.ID)
	return interest, nil
}

// Approve 发布者批准 pending 意向
func (l *InterestLogic) Approve(interest *model.Interest) error {
	if !interest.Pending {
		return nil
	}
	now := time.Now()
	interest.Pending = false
	interest.AcceptanceDate = &now
	if interest.Status == model.InterestStatusPending {
		interest.Status = model.InterestStatusOkay
	}
	if err := l.db.Save(interest).Error; err != nil {
		return fmt.Errorf("failed to approve interest: %w", err)
	}
	l.recompute.Enqueue(interest.ID)
	return nil
}

// ChangeStatus 按状态机流转意向状态，必要时写审计事件
func (l *InterestLogic) ChangeStatus(interest *model.Interest, next string, profileID int64) error {
	if !interest.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, interest.Status, next)
	}

	err := l.db.Transaction(func(tx *gorm.DB) error {
		interest.Status = next
		if err := tx.Save(interest).Error; err != nil {
			return fmt.Errorf("failed to update interest: %w", err)
		}

		switch next {
		case model.InterestStatusWarned:
			return l.recordActivityForInterest(tx, interest, profileID, model.ActivityAbandonmentWarning, true)
		case model.InterestStatusReview:
			return l.recordActivityForInterest(tx, interest, profileID, model.ActivityAbandonmentEscalation, true)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// started 状态依赖非 pending 意向的存在，变更后批量重算引用方
	l.recompute.Enqueue(interest.ID)
	return nil
}

// Snooze 暂停意向的催办升级
func (l *InterestLogic) Snooze(interest *model.Interest, profileID int64) error {
	return l.ChangeStatus(interest, model.InterestStatusSnoozed, profileID)
}

// GetInterest 获取意向
func (l *InterestLogic) GetInterest(id int64) (*model.Interest, error) {
	var interest model.Interest
	if err := l.db.First(&interest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("interest not found")
		}
		return nil, fmt.Errorf("failed to fetch interest: %w", err)
	}
	return &interest, nil
}

// InterestsForBounty 某悬赏的全部意向
func (l *InterestLogic) InterestsForBounty(bountyID int64) ([]model.Interest, error) {
	var interests []model.Interest
	err := l.db.Table("interest").
		Joins("JOIN bounty_interests ON bounty_interests.interest_id = interest.id").
		Where("bounty_interests.bounty_id = ?", bountyID).
		Order("interest.created_at ASC").
		Find(&interests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interests: %w", err)
	}
	return interests, nil
}

func (l *InterestLogic) recordActivityForInterest(tx *gorm.DB, interest *model.Interest, profileID int64, activityType string, needsReview bool) error {
	var bountyIDs []int64
	if err := tx.Table("bounty_interests").
		Where("interest_id = ?", interest.ID).
		Pluck("bounty_id", &bountyIDs).Error; err != nil {
		logger.Warn("Failed to resolve bounties for interest %d: %v", interest.ID, err)
	}
	if len(bountyIDs) == 0 {
		return l.recordActivity(tx, profileID, nil, activityType, needsReview)
	}
	for _, id := range bountyIDs {
		bid := id
		if err := l.recordActivity(tx, profileID, &bid, activityType, needsReview); err != nil {
			return err
		}
	}
	return nil
}

func (l *InterestLogic) recordActivity(tx *gorm.DB, profileID int64, bountyID *int64, activityType string, needsReview bool) error {
	activity := &model.Activity{
		ProfileID:    profileID,
		BountyID:     bountyID,
		ActivityType: activityType,
		NeedsReview:  needsReview,
	}
	if err := tx.Create(activity).Error; err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}
