package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// BountyFulfillment 针对某个悬赏提交的完成记录
type BountyFulfillment struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BountyID  int64 `json:"bounty_id" gorm:"index;not null"`
	ProfileID *int64 `json:"profile_id"`

	// 提交者信息
	FulfillerAddress        string `json:"fulfiller_address"`
	FulfillerEmail          string `json:"fulfiller_email"`
	FulfillerGithubUsername string `json:"fulfiller_github_username"`
	FulfillerName           string `json:"fulfiller_name"`
	FulfillerGithubURL      string `json:"fulfiller_github_url"`
	FulfillerMetadata       datatypes.JSON `json:"fulfiller_metadata"`

	// 链上提交序号
	FulfillmentID *int64 `json:"fulfillment_id"`

	FulfillerHoursWorked decimal.NullDecimal `json:"fulfiller_hours_worked" gorm:"type:numeric(50,2)"`

	// 验收只会发生一次，没有撤销路径
	Accepted   bool       `json:"accepted" gorm:"default:false"`
	AcceptedOn *time.Time `json:"accepted_on"`
}

// NullAddress 零地址，用于标记未提交的占位记录
const NullAddress = "0x0000000000000000000000000000000000000000"

// IsSubmitted 是否为真实提交（排除零地址占位）
func (f *BountyFulfillment) IsSubmitted() bool {
	return f.FulfillerAddress != NullAddress
}

// TableName 自定义表名
func (BountyFulfillment) TableName() string {
	return "bounty_fulfillment"
}
