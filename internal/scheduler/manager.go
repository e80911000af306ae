package scheduler

import (
	"github.com/go-co-op/gocron/v2"

	"github.com/blues/bms/internal/config"
	"github.com/blues/bms/internal/logger"
	"github.com/blues/bms/internal/logic"
)

// Job 定时任务
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	jobs      []Job
}

// NewManager 创建任务管理器
func NewManager(bounty *logic.BountyLogic, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		jobs: []Job{
			NewBountyStatusJob(bounty, cfg),
			NewCommentSyncJob(bounty, cfg),
		},
	}
}

// Start 注册并启动所有任务
func (m *Manager) Start() {
	for _, job := range m.jobs {
		_, err := m.scheduler.NewJob(
			job.GetSchedule(),
			gocron.NewTask(job.Execute),
			gocron.WithName(job.GetName()),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			logger.Error("Failed to register job %s: %v", job.GetName(), err)
		}
	}
	m.scheduler.Start()
	logger.Info("Scheduler started with %d jobs", len(m.jobs))
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Scheduler stopped")
}
