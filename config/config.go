package config

import (
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Crypto   CryptoConfig   `yaml:"crypto"`
	Discord  DiscordConfig  `yaml:"discord"`
	Skills   SkillsConfig   `yaml:"skills"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql
	DSN  string `yaml:"dsn"`
}

type CryptoConfig struct {
	// Key 用于加密集成凭证（bot token）的密钥来源字符串
	// 生产环境必须通过 SYLLABI_CRYPTO_KEY 环境变量注入
	Key string `yaml:"key"`
}

type DiscordConfig struct {
	APIBase string `yaml:"api_base"`
	// TimeoutSeconds 单次外呼的超时时间（秒）
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type SkillsConfig struct {
	// WebhookTimeoutSeconds 自定义 webhook skill 的默认超时（秒）
	WebhookTimeoutSeconds int `yaml:"webhook_timeout_seconds"`
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		cfg = loadConfig()
	})
	return cfg
}

func loadConfig() *Config {
	config := &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/app.db",
		},
		Discord: DiscordConfig{
			APIBase:        "https://discord.com/api/v10",
			TimeoutSeconds: 30,
		},
		Skills: SkillsConfig{
			WebhookTimeoutSeconds: 30,
		},
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		yaml.Unmarshal(data, config)
	}

	// 环境变量优先级高于配置文件
	if port := os.Getenv("SERVER_PORT"); port != "" {
		config.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		config.Server.Mode = mode
	}

	// 数据库环境变量
	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}

	// 凭证加密密钥
	if key := os.Getenv("SYLLABI_CRYPTO_KEY"); key != "" {
		config.Crypto.Key = key
	}

	// Discord API 地址（测试时可指向 mock server）
	if base := os.Getenv("DISCORD_API_BASE"); base != "" {
		config.Discord.APIBase = base
	}

	return config
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func UpdateConfig(newCfg *Config) {
	cfg = newCfg
}
