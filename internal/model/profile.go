package model

import (
	"time"
)

// Profile 用户档案（仅保留本服务需要的最小字段集）
type Profile struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Handle string `json:"handle" gorm:"index;not null"`
	Email  string `json:"email" gorm:"index"`

	PreferredPayoutAddress string `json:"preferred_payout_address"`
	MaxNumIssuesStartWork  int    `json:"max_num_issues_start_work" gorm:"default:3"`
}

// TableName 自定义表名
func (Profile) TableName() string {
	return "profile"
}
