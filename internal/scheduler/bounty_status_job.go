package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/blues/bms/internal/config"
	"github.com/blues/bms/internal/logger"
	"github.com/blues/bms/internal/logic"
	"github.com/blues/bms/internal/model"
)

// BountyStatusJob 周期性重算非终态悬赏的状态与估值缓存。
// 过期、汇率波动这类纯时间因素不经过任何写路径，只能靠这里兜住。
type BountyStatusJob struct {
	bounty *logic.BountyLogic
	config *config.Config
}

// NewBountyStatusJob 创建状态刷新任务
func NewBountyStatusJob(bounty *logic.BountyLogic, cfg *config.Config) *BountyStatusJob {
	return &BountyStatusJob{bounty: bounty, config: cfg}
}

// GetName 任务名称
func (j *BountyStatusJob) GetName() string {
	return "bounty_status_refresher"
}

// GetSchedule 调度配置
func (j *BountyStatusJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Scheduler.StatusInterval) * time.Second)
}

// Execute 执行任务
func (j *BountyStatusJob) Execute() {
	logger.Info("Starting bounty status refresh")

	bounties, err := j.bounty.GetBounties(logic.BountyFilter{
		CurrentOnly: true,
		Status:      model.OpenStatuses,
	})
	if err != nil {
		logger.Error("Failed to fetch bounties for refresh: %v", err)
		return
	}

	updated := 0
	for i := range bounties {
		before := bounties[i].IdxStatus
		if err := j.bounty.Save(&bounties[i]); err != nil {
			logger.Error("Failed to refresh bounty %d: %v", bounties[i].ID, err)
			continue
		}
		if bounties[i].IdxStatus != before {
			logger.Info("Bounty %d status %s -> %s", bounties[i].ID, before, bounties[i].IdxStatus)
			updated++
		}
	}

	logger.Info("Bounty status refresh completed. %d of %d changed", updated, len(bounties))
}
