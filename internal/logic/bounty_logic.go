package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/blues/bms/internal/github"
	"github.com/blues/bms/internal/logger"
	"github.com/blues/bms/internal/model"
	"github.com/blues/bms/internal/status"
	"github.com/blues/bms/internal/valuation"
)

// ErrBountyNotFound 悬赏不存在
var ErrBountyNotFound = errors.New("bounty not found")

// BountyLogic 悬赏业务逻辑
type BountyLogic struct {
	db     *gorm.DB
	engine *valuation.Engine
	gh     *github.Client
}

// NewBountyLogic 创建悬赏业务逻辑
func NewBountyLogic(db *gorm.DB, engine *valuation.Engine, gh *github.Client) *BountyLogic {
	return &BountyLogic{db: db, engine: engine, gh: gh}
}

// rawDeadlines 原始摄取数据中的两个截止时间
type rawDeadlines struct {
	ContractDeadline int64 `json:"contract_deadline"`
	IPFSDeadline     int64 `json:"ipfs_deadline"`
}

// buildStatusInput 从持久化记录和关联集合汇总状态推导输入
func (l *BountyLogic) buildStatusInput(b *model.Bounty) (status.Input, error) {
	in := status.Input{
		Persisted:      b.ID != 0,
		OverrideStatus: b.OverrideStatus,
		Legacy:         b.IsLegacy(),
		CachedStatus:   b.IdxStatus,
		IsOpen:         b.IsOpen,
		Accepted:       b.Accepted,
		ExpiresDate:    b.ExpiresDate,
		ProjectType:    b.ProjectType,
	}

	if len(b.RawData) > 0 {
		var d rawDeadlines
		if err := json.Unmarshal(b.RawData, &d); err != nil {
			return in, fmt.Errorf("failed to decode raw_data: %w", err)
		}
		in.ContractDeadline = d.ContractDeadline
		in.IPFSDeadline = d.IPFSDeadline
	}

	if b.ID == 0 {
		return in, nil
	}

	var fulfillments int64
	if err := l.db.Model(&model.BountyFulfillment{}).
		Where("bounty_id = ?", b.ID).
		Count(&fulfillments).Error; err != nil {
		return in, fmt.Errorf("failed to count fulfillments: %w", err)
	}
	in.FulfillmentCount = int(fulfillments)

	var interested int64
	if err := l.db.Table("interest").
		Joins("JOIN bounty_interests ON bounty_interests.interest_id = interest.id").
		Where("bounty_interests.bounty_id = ? AND interest.pending = false", b.ID).
		Count(&interested).Error; err != nil {
		return in, fmt.Errorf("failed to count interests: %w", err)
	}
	in.HasNonPendingInterest = interested > 0

	// 链接表替代按 URL 字符串的软关联
	var tips int64
	if err := l.db.Model(&model.Tip{}).
		Joins("JOIN bounty_tip_link ON bounty_tip_link.tip_id = tip.id").
		Where("bounty_tip_link.normalized_url = ? AND bounty_tip_link.network = ?", NormalizeIssueURL(b.GithubURL), b.Network).
		Where("tip.is_for_bounty_fulfiller = false AND tip.txid <> ''").
		Count(&tips).Error; err != nil {
		return in, fmt.Errorf("failed to count tips: %w", err)
	}
	in.HasFundedExternalTip = tips > 0

	return in, nil
}

// ResolveStatus 推导悬赏状态。推导输入构建失败时退化为 unknown，只记日志不上抛。
func (l *BountyLogic) ResolveStatus(b *model.Bounty, now time.Time) status.Resolution {
	in, err := l.buildStatusInput(b)
	if err != nil {
		logger.Warn("Failed to build status input for bounty %d: %v", b.ID, err)
		return status.Unknown()
	}
	return status.Resolve(in, now)
}

// RefreshDerived 重算所有派生缓存列。与保存动作绑定，
// 任何一条缓存算不出来都单独退化为空，不影响其余缓存。
func (l *BountyLogic) RefreshDerived(b *model.Bounty, now time.Time) {
	res := l.ResolveStatus(b, now)
	b.IdxStatus = res.Status

	b.IdxExperienceLevel = status.ExperienceOrdinal(b.ExperienceLevel)
	b.IdxProjectLength = status.ProjectLengthOrdinal(b.ProjectLength)

	b.FulfillmentAcceptedOn = l.fulfillmentAcceptedOn(b)
	b.FulfillmentSubmittedOn = l.fulfillmentSubmittedOn(b)
	b.FulfillmentStartedOn = l.fulfillmentStartedOn(b)
	b.NumFulfillments = l.fulfillmentCount(b)

	b.ValueTrue = decimalOrNull(l.engine.BountyNaturalValue(b))
	b.ValueInEth = l.engine.BountyValueInEth(b).NullDecimal()
	b.ValueInUsdtNow = l.engine.BountyValueInUsdtNow(b).NullDecimal()
	b.ValueInUsdt = l.engine.BountyValueInUsdt(b, res.Status).NullDecimal()
	b.TokenValueInUsdt = l.engine.BountyTokenValueInUsdt(b, res.Status).NullDecimal()
	peg := l.engine.TokenValueTimePeg(b, res.Status, now)
	b.TokenValueTimePeg = &peg
}

// Save 保存悬赏，保存前重算派生缓存
func (l *BountyLogic) Save(b *model.Bounty) error {
	l.RefreshDerived(b, time.Now())
	return l.db.Save(b).Error
}

// CreateRevision 落库一个新的悬赏版本。同一 standard_bounties_id 下
// 之前的版本在同一事务里取消 current 标记，保证最多一条 current。
func (l *BountyLogic) CreateRevision(b *model.Bounty) error {
	b.CurrentBounty = true
	l.RefreshDerived(b, time.Now())

	return l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Bounty{}).
			Where("standard_bounties_id = ? AND network = ? AND current_bounty = true", b.StandardBountiesID, b.Network).
			Update("current_bounty", false).Error; err != nil {
			return fmt.Errorf("failed to supersede previous revisions: %w", err)
		}
		if err := tx.Create(b).Error; err != nil {
			return fmt.Errorf("failed to create bounty revision: %w", err)
		}
		return nil
	})
}

// BountyFilter 列表过滤条件
type BountyFilter struct {
	CurrentOnly bool
	Network     string
	Status      []string
	ProjectType string
	Keyword     string
}

// GetBounties 按条件获取悬赏列表
func (l *BountyLogic) GetBounties(filter BountyFilter) ([]model.Bounty, error) {
	query := l.db.Model(&model.Bounty{})
	if filter.CurrentOnly {
		query = query.Where("current_bounty = true")
	}
	if filter.Network != "" {
		query = query.Where("network = ?", filter.Network)
	}
	if len(filter.Status) > 0 {
		query = query.Where("idx_status IN ?", filter.Status)
	}
	if filter.ProjectType != "" {
		query = query.Where("project_type = ?", filter.ProjectType)
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where("title ILIKE ? OR issue_description ILIKE ?", kw, kw)
	}

	var bounties []model.Bounty
	if err := query.Order("web3_created DESC").Find(&bounties).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch bounties: %w", err)
	}
	return bounties, nil
}

// GetBounty 获取悬赏详情
func (l *BountyLogic) GetBounty(id int64) (*model.Bounty, error) {
	var bounty model.Bounty
	if err := l.db.Preload("Fulfillments").Preload("Interests").
		First(&bounty, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBountyNotFound
		}
		return nil, fmt.Errorf("failed to fetch bounty: %w", err)
	}
	return &bounty, nil
}

// CurrentBountyByURL 按 issue 地址和网络获取当前版本
func (l *BountyLogic) CurrentBountyByURL(githubURL, network string) (*model.Bounty, error) {
	var bounty model.Bounty
	err := l.db.
		Where("LOWER(github_url) = LOWER(?) AND network = ? AND current_bounty = true", githubURL, network).
		Order("web3_created DESC").
		First(&bounty).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBountyNotFound
		}
		return nil, fmt.Errorf("failed to fetch bounty by url: %w", err)
	}
	return &bounty, nil
}

// AddFulfillment 记录一次提交并重算悬赏缓存
func (l *BountyLogic) AddFulfillment(b *model.Bounty, f *model.BountyFulfillment) error {
	f.BountyID = b.ID
	if err := l.db.Create(f).Error; err != nil {
		return fmt.Errorf("failed to create fulfillment: %w", err)
	}
	return l.Save(b)
}

// AcceptFulfillment 验收一次提交。验收只会发生一次：
// 置 accepted、记时间戳，同时关闭悬赏。
func (l *BountyLogic) AcceptFulfillment(b *model.Bounty, fulfillmentID int64) error {
	var f model.BountyFulfillment
	if err := l.db.Where("id = ? AND bounty_id = ?", fulfillmentID, b.ID).First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("fulfillment not found")
		}
		return fmt.Errorf("failed to fetch fulfillment: %w", err)
	}
	if f.Accepted {
		return errors.New("fulfillment already accepted")
	}

	now := time.Now()
	f.Accepted = true
	f.AcceptedOn = &now
	if err := l.db.Save(&f).Error; err != nil {
		return fmt.Errorf("failed to accept fulfillment: %w", err)
	}

	b.IsOpen = false
	b.Accepted = true
	return l.Save(b)
}

// SyncComments 拉取 issue 评论并缓存数量和最后评论时间。
// 仓库被删或 issue 不存在按空结果处理。
func (l *BountyLogic) SyncComments(ctx context.Context, b *model.Bounty) error {
	owner, repo, num, err := github.ParseIssueURL(b.GithubURL)
	if err != nil {
		logger.Info("Bounty %d has an invalid github url %s", b.ID, b.GithubURL)
		return nil
	}
	comments, err := l.gh.GetIssueComments(ctx, owner, repo, num)
	if err != nil {
		return fmt.Errorf("failed to sync comments for bounty %d: %w", b.ID, err)
	}
	count, last := l.gh.CommentStats(comments)
	b.GithubComments = count
	b.LastCommentDate = last
	return l.Save(b)
}

// GetStats 各状态悬赏数量与总估值
func (l *BountyLogic) GetStats(network string) (map[string]interface{}, error) {
	type row struct {
		IdxStatus string
		Count     int64
	}
	var rows []row
	query := l.db.Model(&model.Bounty{}).
		Select("idx_status, COUNT(*) as count").
		Where("current_bounty = true")
	if network != "" {
		query = query.Where("network = ?", network)
	}
	if err := query.Group("idx_status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch bounty stats: %w", err)
	}

	byStatus := map[string]int64{}
	var total int64
	for _, r := range rows {
		byStatus[r.IdxStatus] = r.Count
		total += r.Count
	}

	var totalUsd float64
	l.db.Model(&model.Bounty{}).
		Where("current_bounty = true AND value_in_usdt IS NOT NULL").
		Select("COALESCE(SUM(value_in_usdt), 0)").
		Scan(&totalUsd)

	return map[string]interface{}{
		"totalBounties": total,
		"byStatus":      byStatus,
		"totalUsdValue": totalUsd,
	}, nil
}

// ResaveBountiesForInterest 重算并保存引用某个意向的所有悬赏，
// 由批量重算 worker 调用
func (l *BountyLogic) ResaveBountiesForInterest(interestID int64) error {
	var bounties []model.Bounty
	err := l.db.
		Joins("JOIN bounty_interests ON bounty_interests.bounty_id = bounty.id").
		Where("bounty_interests.interest_id = ?", interestID).
		Find(&bounties).Error
	if err != nil {
		return fmt.Errorf("failed to fetch bounties for interest %d: %w", interestID, err)
	}
	for i := range bounties {
		if err := l.Save(&bounties[i]); err != nil {
			logger.Error("Failed to resave bounty %d: %v", bounties[i].ID, err)
		}
	}
	return nil
}

func (l *BountyLogic) fulfillmentCount(b *model.Bounty) int {
	if b.ID == 0 {
		return b.NumFulfillments
	}
	var count int64
	if err := l.db.Model(&model.BountyFulfillment{}).
		Where("bounty_id = ?", b.ID).Count(&count).Error; err != nil {
		return b.NumFulfillments
	}
	return int(count)
}

func (l *BountyLogic) fulfillmentAcceptedOn(b *model.Bounty) *time.Time {
	if b.ID == 0 {
		return nil
	}
	var f model.BountyFulfillment
	err := l.db.Where("bounty_id = ? AND accepted = true", b.ID).
		Order("accepted_on ASC").First(&f).Error
	if err != nil {
		return nil
	}
	return f.AcceptedOn
}

func (l *BountyLogic) fulfillmentSubmittedOn(b *model.Bounty) *time.Time {
	if b.ID == 0 {
		return nil
	}
	var f model.BountyFulfillment
	err := l.db.Where("bounty_id = ?", b.ID).Order("created_at ASC").First(&f).Error
	if err != nil {
		return nil
	}
	t := f.CreatedAt
	return &t
}

func (l *BountyLogic) fulfillmentStartedOn(b *model.Bounty) *time.Time {
	if b.ID == 0 {
		return nil
	}
	var i model.Interest
	err := l.db.Table("interest").
		Joins("JOIN bounty_interests ON bounty_interests.interest_id = interest.id").
		Where("bounty_interests.bounty_id = ? AND interest.pending = false", b.ID).
		Order("interest.created_at ASC").First(&i).Error
	if err != nil {
		return nil
	}
	t := i.CreatedAt
	return &t
}
