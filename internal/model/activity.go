package model

import (
	"time"

	"gorm.io/datatypes"
)

// Activity 追加写入的审计事件，创建后除审核标记外不再修改
type Activity struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ProfileID int64  `json:"profile_id" gorm:"index;not null"`
	BountyID  *int64 `json:"bounty_id" gorm:"index"`
	TipID     *int64 `json:"tip_id" gorm:"index"`

	ActivityType string         `json:"activity_type" gorm:"index"`
	Metadata     datatypes.JSON `json:"metadata"`
	NeedsReview  bool           `json:"needs_review" gorm:"default:false;index"`
}

// 事件类型
const (
	ActivityNewBounty              = "new_bounty"
	ActivityStartWork              = "start_work"
	ActivityStopWork               = "stop_work"
	ActivityWorkSubmitted          = "work_submitted"
	ActivityWorkDone               = "work_done"
	ActivityWorkerApproved         = "worker_approved"
	ActivityWorkerRejected         = "worker_rejected"
	ActivityWorkerApplied          = "worker_applied"
	ActivityIncreasedBounty        = "increased_bounty"
	ActivityKilledBounty           = "killed_bounty"
	ActivityNewTip                 = "new_tip"
	ActivityReceiveTip             = "receive_tip"
	ActivityAbandonmentEscalation  = "bounty_abandonment_escalation_to_mods"
	ActivityAbandonmentWarning     = "bounty_abandonment_warning"
	ActivityRemovedSlashedByStaff  = "bounty_removed_slashed_by_staff"
	ActivityRemovedByStaff         = "bounty_removed_by_staff"
	ActivityRemovedByFunder        = "bounty_removed_by_funder"
	ActivityNewCrowdfund           = "new_crowdfund"
)

// TableName 自定义表名
func (Activity) TableName() string {
	return "activity"
}
