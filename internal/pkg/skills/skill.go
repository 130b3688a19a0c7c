package skills

import (
	"context"
	"encoding/json"

	"github.com/syllabi/backend/internal/pkg/llm"
)

// Definition Skill 的静态描述符
// 启动时构建，运行期不可变，供 LLM 工具选择层做能力发现
type Definition struct {
	// Name 全局唯一标识，符合 [a-z0-9_]+ 格式
	Name string `json:"name"`

	// DisplayName 人类可读名称
	DisplayName string `json:"display_name"`

	// Description 供 LLM 理解该技能的用途
	Description string `json:"description"`

	// Category 分类，如 "discord"
	Category string `json:"category"`

	// Parameters 参数 JSON Schema，声明必填/可选、枚举与示例值
	// 示例值仅作文档用途；Registry 本身不做参数校验
	Parameters llm.ParameterSchema `json:"parameters"`
}

// ExecutionContext 单次 skill 调用的上下文
// 每次调用重新构建，调用之间不保留任何状态
type ExecutionContext struct {
	SkillID       string `json:"skill_id,omitempty"`
	ChatbotID     string `json:"chatbot_id,omitempty"`
	ChatSessionID string `json:"chat_session_id,omitempty"`
	UserID        string `json:"user_id,omitempty"`
	IntegrationID string `json:"integration_id,omitempty"`
	Channel       string `json:"channel,omitempty"` // web, embed, slack, discord, api
	TestMode      bool   `json:"test_mode,omitempty"`
}

// Skill 技能接口，所有技能必须实现
type Skill interface {
	// Definition 返回静态描述符
	Definition() Definition

	// Execute 执行技能
	// args: JSON 格式的参数，需根据 Definition().Parameters 解析
	// ec: 本次调用的执行上下文
	// 返回: 执行结果（必须可 JSON 序列化）和错误
	Execute(ctx context.Context, args json.RawMessage, ec ExecutionContext) (interface{}, error)

	// ProviderType 返回提供者类型（builtin / webhook）
	// 用于调试和监控
	ProviderType() string
}
