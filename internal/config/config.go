package config

import (
	"github.com/blues/bms/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Github    GithubConfig    `mapstructure:"github"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ChainConfig 链配置
type ChainConfig struct {
	Network         string `mapstructure:"network"`          // 网络名（mainnet / sepolia / ...）
	ChainId         int64  `mapstructure:"chain_id"`         // 链ID
	RpcUrl          string `mapstructure:"rpc_url"`          // RPC节点URL
	ContractAddress string `mapstructure:"contract_address"` // StandardBounties 合约地址
	StartBlock      int64  `mapstructure:"start_block"`      // 摄取起始区块
	Confirmations   int    `mapstructure:"confirmations"`    // 确认数
	PollInterval    int    `mapstructure:"poll_interval"`    // 轮询间隔（秒）
}

// GithubConfig GitHub 客户端配置
type GithubConfig struct {
	Token        string   `mapstructure:"token"`
	IgnoreLogins []string `mapstructure:"ignore_logins"` // 统计评论时忽略的账号
}

type SchedulerConfig struct {
	StatusInterval  int `mapstructure:"status_interval"`  // 状态刷新间隔（秒）
	CommentInterval int `mapstructure:"comment_interval"` // 评论同步间隔（秒）
	RecomputeBatch  int `mapstructure:"recompute_batch"`  // 批量重算的协程数
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, file
	File   string `mapstructure:"file"`   // 日志文件路径（output 为 file 时使用）
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/bms")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "bounties")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("chain.network", "mainnet")
	viper.SetDefault("chain.chain_id", 1)
	viper.SetDefault("chain.start_block", 0)
	viper.SetDefault("chain.confirmations", 12)
	viper.SetDefault("chain.poll_interval", 60)
	viper.SetDefault("scheduler.status_interval", 300)
	viper.SetDefault("scheduler.comment_interval", 900)
	viper.SetDefault("scheduler.recompute_batch", 4)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
