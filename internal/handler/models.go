package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/blues/bms/internal/model"
)

// CreateBountyRequest 创建悬赏请求
type CreateBountyRequest struct {
	Title              string          `json:"title" binding:"required"`
	GithubURL          string          `json:"github_url" binding:"required"`
	ValueInToken       decimal.Decimal `json:"value_in_token" binding:"required"`
	TokenName          string          `json:"token_name" binding:"required"`
	TokenAddress       string          `json:"token_address"`
	Network            string          `json:"network" binding:"required"`
	StandardBountiesID int64           `json:"standard_bounties_id"`
	ExpiresDate        time.Time       `json:"expires_date" binding:"required"`
	ProjectType        string          `json:"project_type"`
	PermissionType     string          `json:"permission_type"`
	BountyType         string          `json:"bounty_type"`
	ProjectLength      string          `json:"project_length"`
	ExperienceLevel    string          `json:"experience_level"`
	OwnerAddress       string          `json:"bounty_owner_address"`
	OwnerGithubUsername string         `json:"bounty_owner_github_username"`
}

// BountyResponse 悬赏响应模型
type BountyResponse struct {
	ID                 int64           `json:"id"`
	Title              string          `json:"title"`
	GithubURL          string          `json:"github_url"`
	StandardBountiesID int64           `json:"standard_bounties_id"`
	Network            string          `json:"network"`
	TokenName          string          `json:"token_name"`
	ValueInToken       decimal.Decimal `json:"value_in_token"`
	ValueTrue          *decimal.Decimal `json:"value_true"`
	ValueInUsdt        *decimal.Decimal `json:"value_in_usdt"`
	ValueInUsdtNow     *decimal.Decimal `json:"value_in_usdt_now"`
	ValueInEth         *decimal.Decimal `json:"value_in_eth"`
	Status             string          `json:"status"`
	ProjectType        string          `json:"project_type"`
	IsOpen             bool            `json:"is_open"`
	CurrentBounty      bool            `json:"current_bounty"`
	ExpiresDate        time.Time       `json:"expires_date"`
	Web3Created        time.Time       `json:"web3_created"`
	NumFulfillments    int             `json:"num_fulfillments"`
	GithubComments     int             `json:"github_comments"`

	TurnaroundAcceptedSec  *int64           `json:"turnaround_accepted_sec"`
	TurnaroundStartedSec   *int64           `json:"turnaround_started_sec"`
	TurnaroundSubmittedSec *int64           `json:"turnaround_submitted_sec"`
	HourlyRate             *decimal.Decimal `json:"hourly_rate"`
}

// NewBountyResponse 从模型构造响应
func NewBountyResponse(b *model.Bounty) BountyResponse {
	return BountyResponse{
		ID:                 b.ID,
		Title:              b.Title,
		GithubURL:          b.GithubURL,
		StandardBountiesID: b.StandardBountiesID,
		Network:            b.Network,
		TokenName:          b.TokenName,
		ValueInToken:       b.ValueInToken,
		ValueTrue:          nullDecimalPtr(b.ValueTrue),
		ValueInUsdt:        nullDecimalPtr(b.ValueInUsdt),
		ValueInUsdtNow:     nullDecimalPtr(b.ValueInUsdtNow),
		ValueInEth:         nullDecimalPtr(b.ValueInEth),
		Status:             b.IdxStatus,
		ProjectType:        b.ProjectType,
		IsOpen:             b.IsOpen,
		CurrentBounty:      b.CurrentBounty,
		ExpiresDate:        b.ExpiresDate,
		Web3Created:        b.Web3Created,
		NumFulfillments:    b.NumFulfillments,
		GithubComments:     b.GithubComments,

		TurnaroundAcceptedSec:  durationSeconds(b.TurnaroundAccepted()),
		TurnaroundStartedSec:   durationSeconds(b.TurnaroundStarted()),
		TurnaroundSubmittedSec: durationSeconds(b.TurnaroundSubmitted()),
		HourlyRate:             b.HourlyRate(),
	}
}

func durationSeconds(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	s := int64(d.Seconds())
	return &s
}

// CreateTipRequest 创建打赏请求
type CreateTipRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	TokenName    string          `json:"token_name" binding:"required"`
	TokenAddress string          `json:"token_address"`
	GithubURL    string          `json:"github_url"`
	Network      string          `json:"network" binding:"required"`
	Username     string          `json:"username"`
	FromUsername string          `json:"from_username"`
	FromAddress  string          `json:"from_address"`
	Txid         string          `json:"txid"`
	ExpiresDate  time.Time       `json:"expires_date"`
	IsForBountyFulfiller bool    `json:"is_for_bounty_fulfiller"`
}

// TipResponse 打赏响应模型
type TipResponse struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	TokenName   string          `json:"token_name"`
	GithubURL   string          `json:"github_url"`
	Network     string          `json:"network"`
	Username    string          `json:"username"`
	Status      string          `json:"status"`
	Txid        string          `json:"txid"`
	ReceiveTxid string          `json:"receive_txid"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewTipResponse 从模型构造响应
func NewTipResponse(t *model.Tip) TipResponse {
	return TipResponse{
		ID:          t.ID,
		Amount:      t.Amount,
		TokenName:   t.TokenName,
		GithubURL:   t.GithubURL,
		Network:     t.Network,
		Username:    t.Username,
		Status:      t.Status(),
		Txid:        t.Txid,
		ReceiveTxid: t.ReceiveTxid,
		CreatedAt:   t.CreatedAt,
	}
}

// PayoutTipRequest 托管付款请求
type PayoutTipRequest struct {
	Address        string `json:"address" binding:"required"`
	AmountOverride string `json:"amount_override"`
}

// StartWorkRequest 认领请求
type StartWorkRequest struct {
	ProfileID int64  `json:"profile_id" binding:"required"`
	Message   string `json:"message"`
}

// ChangeInterestStatusRequest 意向状态流转请求
type ChangeInterestStatusRequest struct {
	Status    string `json:"status" binding:"required"`
	ProfileID int64  `json:"profile_id" binding:"required"`
}

func nullDecimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
