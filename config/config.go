package config

import (
	"log"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"addressbook"`

	// 通讯录存储配置
	DataDir              string `env:"DATA_DIR" envDefault:"data"`
	ContactsFile         string `env:"CONTACTS_FILE" envDefault:"contacts.json"`
	LegacyFile           string `env:"LEGACY_FILE" envDefault:"contacts.txt"` // 旧版文本格式，仅用于一次性迁移
	AllowDuplicatePhones bool   `env:"ALLOW_DUPLICATE_PHONES" envDefault:"false"`
	EnableBackups        bool   `env:"ENABLE_BACKUPS" envDefault:"true"`
	BackupKeep           int    `env:"BACKUP_KEEP" envDefault:"5"`
	DefaultCountryCode   string `env:"DEFAULT_COUNTRY_CODE" envDefault:"+38"` // 以 0 开头的本地号码补全国家码

	// Redis 配置，地址为空时不启用
	RedisAddr     string `env:"REDIS_ADDR" envDefault:""`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"abook"`

	// RabbitMQ 配置，地址为空时不启用
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:""`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪配置，endpoint 为空时只使用 noop provider
	OTLPEndpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	TraceSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"0.1"`

	// 生日提醒配置
	ReminderDays      int    `env:"REMINDER_DAYS" envDefault:"7"`
	ReminderExportDir string `env:"REMINDER_EXPORT_DIR" envDefault:"data/reminders"`

	TelemetryEnabled bool `env:"TELEMETRY_ENABLED" envDefault:"true"`
}

func init() {

	if err := godotenv.Load(); err != nil {

		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	validateConfig()
}

func validateConfig() {
	if Cfg.BackupKeep < 1 {
		log.Printf("WARN: BACKUP_KEEP=%d is invalid, falling back to 5", Cfg.BackupKeep)
		Cfg.BackupKeep = 5
	}

	if Cfg.ReminderDays < 0 {
		log.Printf("WARN: REMINDER_DAYS=%d is invalid, falling back to 7", Cfg.ReminderDays)
		Cfg.ReminderDays = 7
	}

	if Cfg.RedisAddr == "" {
		log.Printf("WARN: REDIS_ADDR is not set, telemetry and reminder de-duplication will stay local")
	}

	if Cfg.RabbitMQAddr == "" {
		log.Printf("WARN: RABBITMQ_ADDR is not set, birthday reminders will not be queued")
	}
}

// ContactsPath 返回当前格式的通讯录文件路径
func (c *Config) ContactsPath() string {
	return filepath.Join(c.DataDir, c.ContactsFile)
}

// LegacyPath 返回旧版文本文件路径
func (c *Config) LegacyPath() string {
	return filepath.Join(c.DataDir, c.LegacyFile)
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func (c *Config) RabbitMQEnabled() bool {
	return c.RabbitMQAddr != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
