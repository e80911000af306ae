package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Tip 打赏/众筹转账记录，通过 bounty_tip_link 表与悬赏关联
type Tip struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Web3Type string `json:"web3_type" gorm:"default:'v3'"`

	// 金额信息（Amount 为整币单位，与 Bounty 的原始最小单位不同）
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric(50,4);default:1"`
	TokenName    string          `json:"token_name"`
	TokenAddress string          `json:"token_address"`

	// 收发双方
	FromName     string `json:"from_name"`
	FromEmail    string `json:"from_email"`
	FromUsername string `json:"from_username"`
	FromAddress  string `json:"from_address"`
	Username     string `json:"username"` // 收款人用户名
	ReceiveAddress string `json:"receive_address"`

	RecipientProfileID *int64 `json:"recipient_profile_id"`
	SenderProfileID    *int64 `json:"sender_profile_id"`

	// 关联与网络
	GithubURL string `json:"github_url"`
	Network   string `json:"network"`
	URL       string `json:"url"`

	// 交易信息
	Txid         string     `json:"txid"`
	ReceiveTxid  string     `json:"receive_txid"`
	ReceivedOn   *time.Time `json:"received_on"`
	ExpiresDate  time.Time  `json:"expires_date"`

	CommentsPriv   string `json:"comments_priv" gorm:"type:text"`
	CommentsPublic string `json:"comments_public" gorm:"type:text"`

	// Metadata 保存托管私钥（priv_key / address）与收款引用哈希
	Metadata datatypes.JSON `json:"metadata"`

	// 为 true 时打赏自动支付给悬赏完成者而不是 Username
	IsForBountyFulfiller bool `json:"is_for_bounty_fulfiller" gorm:"default:false"`
}

// Tip 派生状态
const (
	TipStatusReceived = "RECEIVED"
	TipStatusPending  = "PENDING"
)

// Web3TypeYge 最早一代打赏协议，不支持托管付款路径
const Web3TypeYge = "yge"

// Status 派生状态：有领取交易即为 RECEIVED
func (t *Tip) Status() string {
	if t.ReceiveTxid != "" {
		return TipStatusReceived
	}
	return TipStatusPending
}

// TableName 自定义表名
func (Tip) TableName() string {
	return "tip"
}

// BountyTipLink 悬赏与打赏的显式关联表，按 (normalized_url, network) 建索引，
// 写入时维护，避免按 URL 字符串全表扫描
type BountyTipLink struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	NormalizedURL string `json:"normalized_url" gorm:"uniqueIndex:idx_tip_link,priority:1;not null"`
	Network       string `json:"network" gorm:"uniqueIndex:idx_tip_link,priority:2;not null"`
	TipID         int64  `json:"tip_id" gorm:"uniqueIndex:idx_tip_link,priority:3;index"`
}

// TableName 自定义表名
func (BountyTipLink) TableName() string {
	return "bounty_tip_link"
}
