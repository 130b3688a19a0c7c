package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/syllabi/backend/internal/model"
	"github.com/syllabi/backend/internal/pkg/llm"
	"github.com/syllabi/backend/internal/pkg/skills"
	"github.com/syllabi/backend/internal/pkg/skills/webhook"
	"github.com/syllabi/backend/internal/repository"
)

// SkillService skill 平台服务接口
// 封装 registry/executor，并叠加 chatbot 级别的启用关系
type SkillService interface {
	// Catalog 列出全部已注册 skill 及启用状态
	Catalog(ctx context.Context) []CatalogEntry

	// Tools 导出启用的 skill 为 LLM 工具列表
	Tools(ctx context.Context) []llm.Tool

	// Invoke 执行一次 skill 调用
	Invoke(ctx context.Context, req *InvokeSkillRequest) (interface{}, error)

	// AttachToChatbot 给 chatbot 开通 skill
	AttachToChatbot(ctx context.Context, req *AttachSkillRequest) (*model.ChatbotSkill, error)

	// DetachFromChatbot 解除 chatbot 与 skill 的关联
	DetachFromChatbot(ctx context.Context, chatbotID, skillName string) error

	// ListChatbotSkills 列出 chatbot 的 skill 关联
	ListChatbotSkills(ctx context.Context, chatbotID string) ([]*model.ChatbotSkill, error)

	// ListExecutions 查询 chatbot 的执行审计记录
	ListExecutions(ctx context.Context, chatbotID string, limit int) ([]*model.SkillExecution, error)

	// ExecutionStats 按状态统计 chatbot 的执行次数
	ExecutionStats(ctx context.Context, chatbotID string) (map[string]int64, error)

	// CreateCustomSkill 创建并注册一个 webhook 自定义 skill
	CreateCustomSkill(ctx context.Context, skill *model.CustomSkill) error

	// LoadCustomSkills 启动时把库中启用的自定义 skill 注册进 registry
	LoadCustomSkills(ctx context.Context) error
}

// CatalogEntry 技能目录条目
type CatalogEntry struct {
	skills.Definition
	Enabled  bool   `json:"enabled"`
	Provider string `json:"provider"`
}

// InvokeSkillRequest 执行 skill 请求
type InvokeSkillRequest struct {
	SkillName     string          `json:"skill_name" binding:"required"`
	Params        json.RawMessage `json:"params"`
	ChatbotID     string          `json:"chatbot_id"`
	ChatSessionID string          `json:"chat_session_id"`
	UserID        string          `json:"user_id"`
	IntegrationID string          `json:"integration_id"`
	Channel       string          `json:"channel"`
	TestMode      bool            `json:"test_mode"`
}

// AttachSkillRequest 给 chatbot 开通 skill 请求
type AttachSkillRequest struct {
	ChatbotID    string `json:"chatbot_id"`
	SkillName    string `json:"skill_name" binding:"required"`
	Enabled      bool   `json:"enabled"`
	CustomConfig string `json:"custom_config"`
}

// skillService SkillService 的实现
type skillService struct {
	registry      skills.Registry
	executor      *skills.Executor
	chatbotSkills repository.ChatbotSkillRepository
	customSkills  repository.CustomSkillRepository
	executions    repository.SkillExecutionRepository
}

// NewSkillService 创建 skill 平台服务
func NewSkillService(
	registry skills.Registry,
	executor *skills.Executor,
	chatbotSkills repository.ChatbotSkillRepository,
	customSkills repository.CustomSkillRepository,
	executions repository.SkillExecutionRepository,
) SkillService {
	return &skillService{
		registry:      registry,
		executor:      executor,
		chatbotSkills: chatbotSkills,
		customSkills:  customSkills,
		executions:    executions,
	}
}

// Catalog 列出全部已注册 skill
func (s *skillService) Catalog(ctx context.Context) []CatalogEntry {
	registered := s.registry.List()
	entries := make([]CatalogEntry, 0, len(registered))
	for _, skill := range registered {
		def := skill.Definition()
		entries = append(entries, CatalogEntry{
			Definition: def,
			Enabled:    s.registry.IsEnabled(def.Name),
			Provider:   skill.ProviderType(),
		})
	}
	return entries
}

// Tools 导出 LLM 工具列表
func (s *skillService) Tools(ctx context.Context) []llm.Tool {
	return s.registry.ToTools()
}

// Invoke 执行一次 skill 调用
// 指定 ChatbotID 时校验 chatbot 级别的开通关系，
// 关联里的 custom_config 对 webhook skill 生效
func (s *skillService) Invoke(ctx context.Context, req *InvokeSkillRequest) (interface{}, error) {
	ec := skills.ExecutionContext{
		ChatbotID:     req.ChatbotID,
		ChatSessionID: req.ChatSessionID,
		UserID:        req.UserID,
		IntegrationID: req.IntegrationID,
		Channel:       req.Channel,
		TestMode:      req.TestMode,
	}
	if ec.Channel == "" {
		ec.Channel = "api"
	}

	if req.ChatbotID != "" {
		association, err := s.chatbotSkills.Get(ctx, req.ChatbotID, req.SkillName)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s is not attached to chatbot %s", skills.ErrSkillDisabled, req.SkillName, req.ChatbotID)
			}
			return nil, err
		}
		if !association.Enabled {
			return nil, fmt.Errorf("%w: %s for chatbot %s", skills.ErrSkillDisabled, req.SkillName, req.ChatbotID)
		}
		if association.CustomConfig != "" {
			if result, handled, err := s.invokeWithOverride(ctx, req, association.CustomConfig, ec); handled {
				return result, err
			}
		}
	}

	return s.executor.Invoke(ctx, req.SkillName, req.Params, ec)
}

// invokeWithOverride 用关联上的 custom_config 覆盖 webhook skill 的配置
// 只对 webhook skill 生效；内置 skill 忽略覆盖走正常路径
func (s *skillService) invokeWithOverride(ctx context.Context, req *InvokeSkillRequest, customConfig string, ec skills.ExecutionContext) (interface{}, bool, error) {
	registered, err := s.registry.Get(req.SkillName)
	if err != nil || registered.ProviderType() != "webhook" {
		return nil, false, nil
	}

	cfg, err := webhook.ParseConfig([]byte(customConfig))
	if err != nil {
		klog.Warningf("Invoke: chatbot %s skill %s custom_config 非法，回退默认配置: %v", req.ChatbotID, req.SkillName, err)
		return nil, false, nil
	}

	override, err := webhook.New(registered.Definition(), cfg)
	if err != nil {
		return nil, false, nil
	}
	result, err := override.Execute(ctx, req.Params, ec)
	return result, true, err
}

// AttachToChatbot 给 chatbot 开通 skill
func (s *skillService) AttachToChatbot(ctx context.Context, req *AttachSkillRequest) (*model.ChatbotSkill, error) {
	if _, err := s.registry.Get(req.SkillName); err != nil {
		return nil, err
	}

	association := &model.ChatbotSkill{
		ChatbotID:    req.ChatbotID,
		SkillName:    req.SkillName,
		Enabled:      req.Enabled,
		CustomConfig: req.CustomConfig,
	}
	if err := s.chatbotSkills.Upsert(ctx, association); err != nil {
		return nil, err
	}
	return association, nil
}

// DetachFromChatbot 解除关联
func (s *skillService) DetachFromChatbot(ctx context.Context, chatbotID, skillName string) error {
	return s.chatbotSkills.Delete(ctx, chatbotID, skillName)
}

// ListChatbotSkills 列出 chatbot 的关联
func (s *skillService) ListChatbotSkills(ctx context.Context, chatbotID string) ([]*model.ChatbotSkill, error) {
	return s.chatbotSkills.ListByChatbot(ctx, chatbotID)
}

// ListExecutions 查询执行审计记录
func (s *skillService) ListExecutions(ctx context.Context, chatbotID string, limit int) ([]*model.SkillExecution, error) {
	return s.executions.ListByChatbot(ctx, chatbotID, limit)
}

// ExecutionStats 按状态统计执行次数
func (s *skillService) ExecutionStats(ctx context.Context, chatbotID string) (map[string]int64, error) {
	return s.executions.CountByStatus(ctx, chatbotID)
}

// CreateCustomSkill 创建并注册 webhook 自定义 skill
func (s *skillService) CreateCustomSkill(ctx context.Context, customSkill *model.CustomSkill) error {
	webhookSkill, err := buildWebhookSkill(customSkill)
	if err != nil {
		return err
	}
	if err := s.customSkills.Create(ctx, customSkill); err != nil {
		return err
	}
	return s.registry.Register(webhookSkill)
}

// LoadCustomSkills 启动时注册库中启用的自定义 skill
// 单条解析失败只告警跳过，不拖垮整个启动流程
func (s *skillService) LoadCustomSkills(ctx context.Context) error {
	activeSkills, err := s.customSkills.ListActive(ctx)
	if err != nil {
		return err
	}

	for _, customSkill := range activeSkills {
		webhookSkill, err := buildWebhookSkill(customSkill)
		if err != nil {
			klog.Warningf("LoadCustomSkills: %s 配置非法，跳过: %v", customSkill.Name, err)
			continue
		}
		if err := s.registry.Register(webhookSkill); err != nil {
			klog.Warningf("LoadCustomSkills: %s 注册失败: %v", customSkill.Name, err)
		}
	}
	klog.V(6).Infof("LoadCustomSkills: 共加载 %d 个自定义 skill", len(activeSkills))
	return nil
}

// buildWebhookSkill 把库里的自定义 skill 记录组装成可执行的 webhook skill
func buildWebhookSkill(customSkill *model.CustomSkill) (*webhook.Skill, error) {
	var parameters llm.ParameterSchema
	if customSkill.Parameters != "" {
		if err := json.Unmarshal([]byte(customSkill.Parameters), &parameters); err != nil {
			return nil, fmt.Errorf("解析参数 schema 失败: %w", err)
		}
	}
	if parameters.Type == "" {
		parameters.Type = "object"
	}

	cfg, err := webhook.ParseConfig([]byte(customSkill.Configuration))
	if err != nil {
		return nil, err
	}

	def := skills.Definition{
		Name:        customSkill.Name,
		DisplayName: customSkill.DisplayName,
		Description: customSkill.Description,
		Category:    customSkill.Category,
		Parameters:  parameters,
	}
	return webhook.New(def, cfg)
}
