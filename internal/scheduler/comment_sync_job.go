package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/blues/bms/internal/config"
	"github.com/blues/bms/internal/logger"
	"github.com/blues/bms/internal/logic"
	"github.com/blues/bms/internal/model"
)

// CommentSyncJob 周期性同步进行中悬赏的 issue 评论缓存
type CommentSyncJob struct {
	bounty *logic.BountyLogic
	config *config.Config
}

// NewCommentSyncJob 创建评论同步任务
func NewCommentSyncJob(bounty *logic.BountyLogic, cfg *config.Config) *CommentSyncJob {
	return &CommentSyncJob{bounty: bounty, config: cfg}
}

// GetName 任务名称
func (j *CommentSyncJob) GetName() string {
	return "github_comment_syncer"
}

// GetSchedule 调度配置
func (j *CommentSyncJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Scheduler.CommentInterval) * time.Second)
}

// Execute 执行任务
func (j *CommentSyncJob) Execute() {
	bounties, err := j.bounty.GetBounties(logic.BountyFilter{
		CurrentOnly: true,
		Status:      model.OpenStatuses,
	})
	if err != nil {
		logger.Error("Failed to fetch bounties for comment sync: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	synced := 0
	for i := range bounties {
		if err := j.bounty.SyncComments(ctx, &bounties[i]); err != nil {
			logger.Warn("Comment sync failed for bounty %d: %v", bounties[i].ID, err)
			continue
		}
		synced++
	}
	logger.Info("Comment sync completed for %d of %d bounties", synced, len(bounties))
}
