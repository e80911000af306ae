package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blues/bms/internal/config"
	"github.com/blues/bms/internal/database"
	"github.com/blues/bms/internal/ethereum"
	"github.com/blues/bms/internal/github"
	"github.com/blues/bms/internal/logger"
	"github.com/blues/bms/internal/logic"
	"github.com/blues/bms/internal/monitor"
	"github.com/blues/bms/internal/payout"
	"github.com/blues/bms/internal/rates"
	"github.com/blues/bms/internal/recompute"
	"github.com/blues/bms/internal/router"
	"github.com/blues/bms/internal/scheduler"
	"github.com/blues/bms/internal/valuation"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	level := logger.ParseLogLevel(cfg.Log.Level)
	var lg *logger.Logger
	var err error
	if cfg.Log.Output == "file" && cfg.Log.File != "" {
		lg, err = logger.NewWithFile(level, logger.FileConfig{
			Filename:   cfg.Log.File,
			MaxSize:    100,
			MaxBackups: 10,
			MaxAge:     30,
			Compress:   true,
		})
	} else {
		lg, err = logger.New(level)
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(lg)
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化以太坊客户端
	ethClient, err := ethereum.Init(cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to initialize ethereum client: %v", err)
	}

	// 初始化估值引擎与付款构造器
	converter := rates.NewConverter(db)
	engine := valuation.NewEngine(converter)
	constructor, err := payout.NewConstructor(ethClient, ethClient, engine)
	if err != nil {
		logger.Fatal("Failed to initialize payout constructor: %v", err)
	}

	// 初始化 GitHub 客户端
	ghClient := github.NewClient(cfg.Github.Token, cfg.Github.IgnoreLogins)

	// 初始化业务逻辑
	bountyLogic := logic.NewBountyLogic(db, engine, ghClient)
	tipLogic := logic.NewTipLogic(db, engine, constructor)
	activityLogic := logic.NewActivityLogic(db)

	// 启动批量重算工作池（认领变更后重算关联悬赏的缓存）
	worker, err := recompute.NewWorker(bountyLogic, cfg.Scheduler.RecomputeBatch, 2*time.Second)
	if err != nil {
		logger.Fatal("Failed to initialize recompute worker: %v", err)
	}
	worker.Start()
	defer worker.Stop()

	interestLogic := logic.NewInterestLogic(db, worker)

	// 启动链上事件监听
	processor := monitor.NewBountyProcessor(db, bountyLogic, cfg.Chain.Network)
	eventMonitor, err := monitor.NewEventMonitor(ethClient, processor, cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to initialize event monitor: %v", err)
	}
	if err := eventMonitor.Start(); err != nil {
		logger.Fatal("Failed to start event monitor: %v", err)
	}
	defer eventMonitor.Stop()

	// 启动定时任务
	manager := scheduler.NewManager(bountyLogic, cfg)
	manager.Start()
	defer manager.Stop()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(bountyLogic, interestLogic, tipLogic, activityLogic)

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
