package model

import (
	"time"
)

// Interest 工作者对某个悬赏的认领意向，独立于提交记录
type Interest struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProfileID    int64  `json:"profile_id" gorm:"index;not null"`
	IssueMessage string `json:"issue_message" gorm:"type:text"`

	// Pending 为 true 时意向尚未被发布者批准，不计入 started 状态
	Pending        bool       `json:"pending" gorm:"default:false"`
	AcceptanceDate *time.Time `json:"acceptance_date"`

	Status string `json:"status" gorm:"default:'okay'"`
}

// Interest 审核状态
const (
	InterestStatusReview  = "review"
	InterestStatusWarned  = "warned"
	InterestStatusOkay    = "okay"
	InterestStatusSnoozed = "snoozed"
	InterestStatusPending = "pending"
)

// interestTransitions 审核状态机：pending→okay，okay⇄warned→review，任意→snoozed
var interestTransitions = map[string][]string{
	InterestStatusPending: {InterestStatusOkay, InterestStatusSnoozed},
	InterestStatusOkay:    {InterestStatusWarned, InterestStatusSnoozed},
	InterestStatusWarned:  {InterestStatusOkay, InterestStatusReview, InterestStatusSnoozed},
	InterestStatusReview:  {InterestStatusSnoozed},
	InterestStatusSnoozed: {},
}

// CanTransition 校验状态流转是否合法
func (i *Interest) CanTransition(next string) bool {
	for _, s := range interestTransitions[i.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// TableName 自定义表名
func (Interest) TableName() string {
	return "interest"
}
