package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/syllabi/backend/internal/eventbus"
	"github.com/syllabi/backend/internal/pkg/llm"
)

// Executor Skill 执行器
// 按名称分发到已注册的 Skill，并通过事件总线发布执行生命周期事件
// 本层不做重试：RateLimitError 等直接上抛，退避策略属于上游编排方
type Executor struct {
	registry Registry
	bus      *eventbus.Bus // 可为 nil，此时不发布事件
}

// NewExecutor 创建 Skill 执行器
func NewExecutor(registry Registry, bus *eventbus.Bus) *Executor {
	return &Executor{registry: registry, bus: bus}
}

// Invoke 执行指定名称的 Skill
// TestMode 下不发布事件（不落审计记录）
// 所有错误原样上抛给直接调用方，分类见 errors.go
func (e *Executor) Invoke(ctx context.Context, name string, args json.RawMessage, ec ExecutionContext) (interface{}, error) {
	skill, err := e.registry.Get(name)
	if err != nil {
		return nil, err
	}
	if !e.registry.IsEnabled(name) {
		return nil, fmt.Errorf("%w: %s", ErrSkillDisabled, name)
	}

	executionID := uuid.NewString()
	start := time.Now()

	e.publish(ctx, ec, eventbus.ExecutionEvent{
		Type:        eventbus.ExecutionStarted,
		ExecutionID: executionID,
		SkillName:   name,
		Input:       string(args),
	})

	result, err := skill.Execute(ctx, args, ec)
	duration := time.Since(start).Milliseconds()

	if err != nil {
		klog.V(6).Infof("skill %s failed after %dms: %v", name, duration, err)
		e.publish(ctx, ec, eventbus.ExecutionEvent{
			Type:        eventbus.ExecutionFailed,
			ExecutionID: executionID,
			SkillName:   name,
			Input:       string(args),
			ErrorMsg:    err.Error(),
			DurationMS:  duration,
		})
		return nil, err
	}

	resultJSON, merr := json.Marshal(result)
	if merr != nil {
		// Skill 契约要求结果可序列化
		return nil, fmt.Errorf("failed to serialize result of %s: %w", name, merr)
	}

	klog.V(6).Infof("skill %s succeeded in %dms", name, duration)
	e.publish(ctx, ec, eventbus.ExecutionEvent{
		Type:        eventbus.ExecutionSucceeded,
		ExecutionID: executionID,
		SkillName:   name,
		Input:       string(args),
		Result:      string(resultJSON),
		DurationMS:  duration,
	})

	return result, nil
}

// ExecuteToolCall 执行一次 LLM Tool Call
// 错误被转换为 IsError 的 ToolResult，便于直接回填对话
func (e *Executor) ExecuteToolCall(ctx context.Context, toolCall llm.ToolCall, ec ExecutionContext) (llm.ToolResult, error) {
	result, err := e.Invoke(ctx, toolCall.Function.Name, json.RawMessage(toolCall.Function.Arguments), ec)
	if err != nil {
		return llm.ToolResult{
			Content: fmt.Sprintf("Execution failed: %v", err),
			IsError: true,
		}, nil
	}

	content, err := json.Marshal(result)
	if err != nil {
		return llm.ToolResult{
			Content: fmt.Sprintf("Failed to serialize result: %v", err),
			IsError: true,
		}, nil
	}

	return llm.ToolResult{
		Content: string(content),
		IsError: false,
	}, nil
}

// ExecuteMultiple 顺序执行多个 Tool Calls
func (e *Executor) ExecuteMultiple(ctx context.Context, toolCalls []llm.ToolCall, ec ExecutionContext) []llm.ToolResult {
	results := make([]llm.ToolResult, 0, len(toolCalls))

	for _, tc := range toolCalls {
		result, err := e.ExecuteToolCall(ctx, tc, ec)
		if err != nil {
			result = llm.ToolResult{
				Content: fmt.Sprintf("Execution error: %v", err),
				IsError: true,
			}
		}
		results = append(results, result)
	}

	return results
}

func (e *Executor) publish(ctx context.Context, ec ExecutionContext, event eventbus.ExecutionEvent) {
	if e.bus == nil || ec.TestMode {
		return
	}
	event.ChatbotID = ec.ChatbotID
	event.UserID = ec.UserID
	event.IntegrationID = ec.IntegrationID
	event.Channel = ec.Channel
	if err := e.bus.Publish(ctx, event); err != nil {
		klog.Errorf("failed to publish execution event %s for %s: %v", event.Type, event.SkillName, err)
	}
}
