package config

import (
	"log"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

const defaultConfigPath = "configs/config_local.toml"

type MainConfig struct {
	AppName  string `toml:"appName" env:"APP_NAME"`
	Host     string `toml:"host" env:"HOST"`
	Port     int    `toml:"port" env:"PORT"`
	ForceTLS bool   `toml:"forceTLS" env:"FORCE_TLS"`
}

type MysqlConfig struct {
	Host         string `toml:"host" env:"HOST"`
	Port         int    `toml:"port" env:"PORT"`
	User         string `toml:"user" env:"USER"`
	Password     string `toml:"password" env:"PASSWORD"`
	DatabaseName string `toml:"databaseName" env:"DATABASE_NAME"`
}

type LogConfig struct {
	LogPath string `toml:"logPath" env:"PATH"`
	Level   string `toml:"level" env:"LEVEL"`
}

type JwtConfig struct {
	Key         string `toml:"key" env:"KEY"`
	ExpireHours int    `toml:"expireHours" env:"EXPIRE_HOURS"`
	Issuer      string `toml:"issuer" env:"ISSUER"`
}

type KafkaConfig struct {
	Brokers           []string `toml:"brokers" env:"BROKERS"`
	ClientID          string   `toml:"clientID" env:"CLIENT_ID"`
	NotificationTopic string   `toml:"notificationTopic" env:"NOTIFICATION_TOPIC"`
	ConsumerGroupID   string   `toml:"consumerGroupID" env:"CONSUMER_GROUP_ID"`
	Partitions        int32    `toml:"partitions" env:"PARTITIONS"`
	Replication       int16    `toml:"replication" env:"REPLICATION"`
	RelayBatchSize    int      `toml:"relayBatchSize" env:"RELAY_BATCH_SIZE"`
	RelayPollMillis   int      `toml:"relayPollMillis" env:"RELAY_POLL_MILLIS"`
}

type RedisConfig struct {
	Host         string `toml:"host" env:"HOST"`
	Port         int    `toml:"port" env:"PORT"`
	Password     string `toml:"password" env:"PASSWORD"`
	DB           int    `toml:"db" env:"DB"`
	PoolSize     int    `toml:"poolSize" env:"POOL_SIZE"`
	MinIdleConns int    `toml:"minIdleConns" env:"MIN_IDLE_CONNS"`
	// KeyPrefix 所有 key 的命名空间，多个环境共用一个 Redis 时区分开
	KeyPrefix string `toml:"keyPrefix" env:"KEY_PREFIX"`
}

// ProgressConfig 目标进度聚合配置
type ProgressConfig struct {
	WindowDays           int     `toml:"windowDays" env:"WINDOW_DAYS"`
	ReadingTargetMinutes float64 `toml:"readingTargetMinutes" env:"READING_TARGET_MINUTES"`
	StudyTargetMinutes   float64 `toml:"studyTargetMinutes" env:"STUDY_TARGET_MINUTES"`
	RecomputeCron        string  `toml:"recomputeCron" env:"RECOMPUTE_CRON"`
	OverdueCron          string  `toml:"overdueCron" env:"OVERDUE_CRON"`
	MaxCASRetries        int     `toml:"maxCASRetries" env:"MAX_CAS_RETRIES"`
}

type XPConfig struct {
	BackfillLockSeconds int `toml:"backfillLockSeconds" env:"BACKFILL_LOCK_SECONDS"`
	LeaderboardLimit    int `toml:"leaderboardLimit" env:"LEADERBOARD_LIMIT"`
}

type AIChatModelConfig struct {
	Provider       string `toml:"provider" env:"PROVIDER"`
	APIKey         string `toml:"apiKey" env:"API_KEY"`
	BaseURL        string `toml:"baseURL" env:"BASE_URL"`
	Model          string `toml:"model" env:"MODEL"`
	TimeoutSeconds int    `toml:"timeoutSeconds" env:"TIMEOUT_SECONDS"`
}

type AIConfig struct {
	ChatModel AIChatModelConfig `toml:"chatModel" envPrefix:"CHAT_MODEL_"`
}

type Config struct {
	MainConfig     `toml:"mainConfig" envPrefix:"MAIN_"`
	MysqlConfig    `toml:"mysqlConfig" envPrefix:"MYSQL_"`
	JwtConfig      `toml:"jwtConfig" envPrefix:"JWT_"`
	KafkaConfig    `toml:"kafkaConfig" envPrefix:"KAFKA_"`
	LogConfig      `toml:"logConfig" envPrefix:"LOG_"`
	RedisConfig    `toml:"redisConfig" envPrefix:"REDIS_"`
	ProgressConfig `toml:"progressConfig" envPrefix:"PROGRESS_"`
	XPConfig       `toml:"xpConfig" envPrefix:"XP_"`
	AIConfig       `toml:"aiConfig" envPrefix:"AI_"`
}

var config *Config

// Default 返回可直接运行的默认配置
func Default() *Config {
	return &Config{
		MainConfig: MainConfig{
			AppName: "fpk_progress",
			Host:    "0.0.0.0",
			Port:    8000,
		},
		MysqlConfig: MysqlConfig{
			Host:         "127.0.0.1",
			Port:         3306,
			User:         "root",
			DatabaseName: "fpk_progress",
		},
		JwtConfig: JwtConfig{
			ExpireHours: 24,
			Issuer:      "fpk_progress",
		},
		KafkaConfig: KafkaConfig{
			ClientID:          "fpk-progress",
			NotificationTopic: "fpk.notification",
			ConsumerGroupID:   "fpk-progress-push",
			Partitions:        3,
			Replication:       1,
			RelayBatchSize:    200,
			RelayPollMillis:   500,
		},
		ProgressConfig: ProgressConfig{
			WindowDays:           7,
			ReadingTargetMinutes: 420,
			StudyTargetMinutes:   300,
			RecomputeCron:        "*/15 * * * *",
			OverdueCron:          "0 * * * *",
			MaxCASRetries:        3,
		},
		RedisConfig: RedisConfig{
			Port:      6379,
			KeyPrefix: "fpk",
		},
		XPConfig: XPConfig{
			BackfillLockSeconds: 300,
			LeaderboardLimit:    10,
		},
	}
}

// LoadConfig 读取 toml 配置文件，再用 FPK_ 前缀的环境变量覆盖
func LoadConfig() error {
	configPath := strings.TrimSpace(os.Getenv("FPK_CONFIG"))
	if configPath == "" {
		configPath = defaultConfigPath
	}
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		log.Printf("config file %s not loaded: %v, using defaults", configPath, err)
	}
	if err := env.ParseWithOptions(config, env.Options{Prefix: "FPK_"}); err != nil {
		log.Printf("config env override failed: %v", err)
		return err
	}
	return nil
}

func GetConfig() *Config {
	if config == nil {
		config = Default()
		_ = LoadConfig()
	}
	return config
}
