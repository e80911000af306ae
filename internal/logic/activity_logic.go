package logic

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/blues/bms/internal/model"
)

// ActivityLogic 审计事件业务逻辑
type ActivityLogic struct {
	db *gorm.DB
}

// NewActivityLogic 创建审计事件业务逻辑
func NewActivityLogic(db *gorm.DB) *ActivityLogic {
	return &ActivityLogic{db: db}
}

// Record 追加一条审计事件
func (l *ActivityLogic) Record(activity *model.Activity) error {
	if err := l.db.Create(activity).Error; err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// NeedsReview 待审核事件队列
func (l *ActivityLogic) NeedsReview() ([]model.Activity, error) {
	var activities []model.Activity
	err := l.db.Where("needs_review = true").
		Order("created_at ASC").
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch review queue: %w", err)
	}
	return activities, nil
}

// MarkReviewed 审核完成。审核标记是事件创建后唯一可变的字段。
func (l *ActivityLogic) MarkReviewed(id int64) error {
	result := l.db.Model(&model.Activity{}).
		Where("id = ?", id).
		Update("needs_review", false)
	if result.Error != nil {
		return fmt.Errorf("failed to mark activity reviewed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("activity %d not found", id)
	}
	return nil
}

// ForBounty 某悬赏的事件流
func (l *ActivityLogic) ForBounty(bountyID int64) ([]model.Activity, error) {
	var activities []model.Activity
	err := l.db.Where("bounty_id = ?", bountyID).
		Order("created_at DESC").
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	return activities, nil
}
