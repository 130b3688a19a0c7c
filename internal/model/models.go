package model

import (
	"time"
)

// ConnectedIntegration 用户已连接的外部集成（Discord 等）
// Token 使用 AES-GCM 加密存储，解密只通过 IntegrationService 进行
type ConnectedIntegration struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	PublicID       string    `json:"public_id" gorm:"size:64;uniqueIndex;not null"` // UUID
	UserID         string    `json:"user_id" gorm:"size:64;index;not null"`
	Provider       string    `json:"provider" gorm:"size:50;not null"` // discord
	Name           string    `json:"name" gorm:"size:255"`
	EncryptedToken string    `json:"-" gorm:"type:text"` // AES-GCM 密文（hex 编码）
	Metadata       string    `json:"metadata" gorm:"type:text"` // JSON: guild_id, guild_name 等
	Status         string    `json:"status" gorm:"size:50;default:connected"` // connected, revoked
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IntegrationMetadata Metadata 字段的结构化内容
// 连接时由回调写入，之后作为隐式上下文（默认服务器）来源
type IntegrationMetadata struct {
	GuildID   string `json:"guild_id,omitempty"`
	GuildName string `json:"guild_name,omitempty"`
	BotUserID string `json:"bot_user_id,omitempty"`
}

// ChatbotSkill chatbot 与 skill 的关联关系
// CustomConfig 在执行时覆盖 skill 自身的配置
type ChatbotSkill struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ChatbotID    string    `json:"chatbot_id" gorm:"size:64;index;not null"`
	SkillName    string    `json:"skill_name" gorm:"size:128;index;not null"`
	Enabled      bool      `json:"enabled" gorm:"default:true"`
	CustomConfig string    `json:"custom_config" gorm:"type:text"` // JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SkillExecution skill 调用审计记录
type SkillExecution struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ExecutionID   string    `json:"execution_id" gorm:"size:64;uniqueIndex;not null"` // UUID
	SkillName     string    `json:"skill_name" gorm:"size:128;index;not null"`
	ChatbotID     string    `json:"chatbot_id" gorm:"size:64;index"`
	UserID        string    `json:"user_id" gorm:"size:64;index"`
	IntegrationID string    `json:"integration_id" gorm:"size:64;index"`
	Channel       string    `json:"channel" gorm:"size:50"` // web, embed, slack, discord, api
	Status        string    `json:"status" gorm:"size:50;not null"` // succeeded, failed
	Input         string    `json:"input" gorm:"type:text"`  // JSON 参数
	Result        string    `json:"result" gorm:"type:text"` // JSON 结果
	ErrorMsg      string    `json:"error_msg" gorm:"size:2000"`
	DurationMS    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// CustomSkill 用户自定义的 webhook skill
type CustomSkill struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"size:128;uniqueIndex;not null"`
	DisplayName   string    `json:"display_name" gorm:"size:255"`
	Description   string    `json:"description" gorm:"size:1000"`
	Category      string    `json:"category" gorm:"size:50"`
	UserID        string    `json:"user_id" gorm:"size:64;index"`
	Parameters    string    `json:"parameters" gorm:"type:text"`    // JSON Schema
	Configuration string    `json:"configuration" gorm:"type:text"` // JSON: webhook_config
	IsActive      bool      `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
