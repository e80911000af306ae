package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Bounty 悬赏任务模型（一条记录 = 某个 standard_bounties_id 的一个版本）
type Bounty struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Title            string `json:"title"`
	GithubURL        string `json:"github_url" gorm:"index"`
	IssueDescription string `json:"issue_description" gorm:"type:text"`
	BountyType       string `json:"bounty_type"`
	ProjectLength    string `json:"project_length"`
	ExperienceLevel  string `json:"experience_level"`
	ProjectType      string `json:"project_type" gorm:"default:'traditional'"`
	PermissionType   string `json:"permission_type" gorm:"default:'permissionless'"`

	// 金额信息
	ValueInToken decimal.Decimal `json:"value_in_token" gorm:"type:numeric(50,2);default:1"`
	TokenName    string          `json:"token_name"`
	TokenAddress string          `json:"token_address"`

	// 链上信息
	Web3Type           string    `json:"web3_type" gorm:"default:'bounties_network'"`
	Web3Created        time.Time `json:"web3_created" gorm:"index"`
	StandardBountiesID int64     `json:"standard_bounties_id" gorm:"index"`
	ContractAddress    string    `json:"contract_address"`
	Network            string    `json:"network" gorm:"index:idx_bounty_network_status"`

	// 发布者信息
	OwnerAddress        string `json:"bounty_owner_address"`
	OwnerEmail          string `json:"bounty_owner_email"`
	OwnerGithubUsername string `json:"bounty_owner_github_username"`
	OwnerName           string `json:"bounty_owner_name"`

	// 生命周期
	IsOpen        bool       `json:"is_open"`
	Accepted      bool       `json:"accepted" gorm:"default:false"`
	ExpiresDate   time.Time  `json:"expires_date"`
	CanceledOn    *time.Time `json:"canceled_on"`
	CurrentBounty bool       `json:"current_bounty" gorm:"default:false;index"`

	// 状态缓存（每次保存时重算）
	IdxStatus          string     `json:"idx_status" gorm:"default:'open';index:idx_bounty_network_status"`
	OverrideStatus     string     `json:"override_status"`
	IdxExperienceLevel int        `json:"idx_experience_level" gorm:"default:0"`
	IdxProjectLength   int        `json:"idx_project_length" gorm:"default:0"`
	NumFulfillments    int        `json:"num_fulfillments" gorm:"default:0"`
	FulfillmentAcceptedOn  *time.Time `json:"fulfillment_accepted_on"`
	FulfillmentSubmittedOn *time.Time `json:"fulfillment_submitted_on"`
	FulfillmentStartedOn   *time.Time `json:"fulfillment_started_on"`

	// 估值缓存（每次保存时重算）
	ValueTrue        decimal.NullDecimal `json:"value_true" gorm:"type:numeric(50,18)"`
	ValueInEth       decimal.NullDecimal `json:"value_in_eth" gorm:"type:numeric(50,18)"`
	ValueInUsdt      decimal.NullDecimal `json:"value_in_usdt" gorm:"type:numeric(50,2)"`
	ValueInUsdtNow   decimal.NullDecimal `json:"value_in_usdt_now" gorm:"type:numeric(50,2)"`
	TokenValueInUsdt decimal.NullDecimal `json:"token_value_in_usdt" gorm:"type:numeric(50,2)"`
	TokenValueTimePeg *time.Time         `json:"token_value_time_peg"`

	// GitHub 评论缓存
	GithubComments  int        `json:"github_comments" gorm:"default:0"`
	LastCommentDate *time.Time `json:"last_comment_date"`

	// 原始数据
	RawData  datatypes.JSON `json:"raw_data"`
	Metadata datatypes.JSON `json:"metadata"`

	// 管理员开关
	AdminOverrideAndHide           bool `json:"admin_override_and_hide" gorm:"default:false"`
	AdminOverrideSuspendAutoApproval bool `json:"admin_override_suspend_auto_approval" gorm:"default:false"`
	AdminMarkAsRemarketReady       bool `json:"admin_mark_as_remarket_ready" gorm:"default:false"`

	SnoozeWarningsForDays int `json:"snooze_warnings_for_days" gorm:"default:0"`

	// 关联
	Fulfillments []BountyFulfillment `json:"fulfillments,omitempty" gorm:"foreignKey:BountyID;constraint:OnDelete:CASCADE"`
	Interests    []Interest          `json:"interests,omitempty" gorm:"many2many:bounty_interests"`
	Activities   []Activity          `json:"activities,omitempty" gorm:"foreignKey:BountyID"`
}

// BountyStatus 悬赏状态
const (
	StatusOpen      = "open"
	StatusStarted   = "started"
	StatusSubmitted = "submitted"
	StatusDone      = "done"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
	StatusUnknown   = "unknown"
)

// 状态分组
var (
	OpenStatuses     = []string{StatusOpen, StatusStarted, StatusSubmitted}
	ClosedStatuses   = []string{StatusExpired, StatusUnknown, StatusCancelled, StatusDone}
	TerminalStatuses = []string{StatusDone, StatusExpired, StatusCancelled}
)

// 项目类型
const (
	ProjectTypeTraditional = "traditional"
	ProjectTypeContest     = "contest"
	ProjectTypeCooperative = "cooperative"
)

// Web3TypeLegacy 旧版合约标记，状态以外部索引器写入的缓存为准
const Web3TypeLegacy = "legacy_gitcoin"

// IsLegacy 是否旧版合约悬赏
func (b *Bounty) IsLegacy() bool {
	return b.Web3Type == Web3TypeLegacy
}

// IsOpenStatus 状态是否属于进行中分组
func IsOpenStatus(status string) bool {
	for _, s := range OpenStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// TableName 自定义表名
func (Bounty) TableName() string {
	return "bounty"
}
