package skills

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syllabi/backend/internal/eventbus"
	"github.com/syllabi/backend/internal/pkg/llm"
)

// eventRecorder 收集总线上发布的执行事件
type eventRecorder struct {
	mu     sync.Mutex
	events []eventbus.ExecutionEvent
}

func (r *eventRecorder) subscribe(bus *eventbus.Bus) {
	handler := func(ctx context.Context, event eventbus.ExecutionEvent) error {
		r.mu.Lock()
		r.events = append(r.events, event)
		r.mu.Unlock()
		return nil
	}
	bus.Subscribe(eventbus.ExecutionStarted, handler)
	bus.Subscribe(eventbus.ExecutionSucceeded, handler)
	bus.Subscribe(eventbus.ExecutionFailed, handler)
}

func (r *eventRecorder) all() []eventbus.ExecutionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]eventbus.ExecutionEvent(nil), r.events...)
}

func TestExecutorInvokeUnknownSkill(t *testing.T) {
	executor := NewExecutor(NewRegistry(), nil)

	_, err := executor.Invoke(context.Background(), "missing", nil, ExecutionContext{})
	assert.ErrorIs(t, err, ErrSkillNotFound)
}

func TestExecutorInvokeDisabledSkill(t *testing.T) {
	registry := NewRegistry()
	assert.NoError(t, registry.Register(&stubSkill{name: "alpha"}))
	assert.NoError(t, registry.Disable("alpha"))

	executor := NewExecutor(registry, nil)
	_, err := executor.Invoke(context.Background(), "alpha", nil, ExecutionContext{})
	assert.ErrorIs(t, err, ErrSkillDisabled, "禁用的 skill 不可被调用")
}

func TestExecutorInvokePublishesLifecycleEvents(t *testing.T) {
	registry := NewRegistry()
	skill := &stubSkill{name: "alpha", result: map[string]interface{}{"ok": true}}
	assert.NoError(t, registry.Register(skill))

	bus := eventbus.NewBus()
	recorder := &eventRecorder{}
	recorder.subscribe(bus)

	executor := NewExecutor(registry, bus)
	ec := ExecutionContext{ChatbotID: "bot-1", UserID: "user-1", IntegrationID: "intg-1", Channel: "discord"}

	result, err := executor.Invoke(context.Background(), "alpha", json.RawMessage(`{"a":1}`), ec)
	assert.NoError(t, err)
	assert.NotNil(t, result)

	events := recorder.all()
	assert.Len(t, events, 2, "成功调用应发布 started 和 succeeded 两个事件")
	assert.Equal(t, eventbus.ExecutionStarted, events[0].Type)
	assert.Equal(t, eventbus.ExecutionSucceeded, events[1].Type)
	assert.Equal(t, events[0].ExecutionID, events[1].ExecutionID, "同一次调用共享执行 ID")
	assert.NotEmpty(t, events[0].ExecutionID)
	assert.Equal(t, "bot-1", events[1].ChatbotID)
	assert.Equal(t, "intg-1", events[1].IntegrationID)
	assert.Equal(t, "discord", events[1].Channel)
	assert.JSONEq(t, `{"ok":true}`, events[1].Result)
}

func TestExecutorInvokeFailurePropagatesRawError(t *testing.T) {
	registry := NewRegistry()
	skillErr := errors.New("boom")
	assert.NoError(t, registry.Register(&stubSkill{name: "alpha", err: skillErr}))

	bus := eventbus.NewBus()
	recorder := &eventRecorder{}
	recorder.subscribe(bus)

	executor := NewExecutor(registry, bus)
	_, err := executor.Invoke(context.Background(), "alpha", nil, ExecutionContext{})

	assert.ErrorIs(t, err, skillErr, "错误应原样上抛")

	events := recorder.all()
	assert.Len(t, events, 2)
	assert.Equal(t, eventbus.ExecutionFailed, events[1].Type)
	assert.Equal(t, "boom", events[1].ErrorMsg)
}

func TestExecutorTestModeSkipsEvents(t *testing.T) {
	registry := NewRegistry()
	assert.NoError(t, registry.Register(&stubSkill{name: "alpha", result: "ok"}))

	bus := eventbus.NewBus()
	recorder := &eventRecorder{}
	recorder.subscribe(bus)

	executor := NewExecutor(registry, bus)
	_, err := executor.Invoke(context.Background(), "alpha", nil, ExecutionContext{TestMode: true})

	assert.NoError(t, err)
	assert.Empty(t, recorder.all(), "测试模式不发布事件，不留审计记录")
}

func TestExecuteToolCallConvertsErrors(t *testing.T) {
	registry := NewRegistry()
	assert.NoError(t, registry.Register(&stubSkill{name: "alpha", err: errors.New("boom")}))

	executor := NewExecutor(registry, nil)
	result, err := executor.ExecuteToolCall(context.Background(), llm.ToolCall{
		Type:     "function",
		Function: llm.FunctionCall{Name: "alpha", Arguments: "{}"},
	}, ExecutionContext{})

	assert.NoError(t, err, "工具调用层不向上抛错")
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "boom")
}

func TestExecuteMultiplePreservesOrder(t *testing.T) {
	registry := NewRegistry()
	assert.NoError(t, registry.Register(&stubSkill{name: "alpha", result: "first"}))
	assert.NoError(t, registry.Register(&stubSkill{name: "beta", err: errors.New("boom")}))

	executor := NewExecutor(registry, nil)
	results := executor.ExecuteMultiple(context.Background(), []llm.ToolCall{
		{Function: llm.FunctionCall{Name: "alpha", Arguments: "{}"}},
		{Function: llm.FunctionCall{Name: "beta", Arguments: "{}"}},
	}, ExecutionContext{})

	assert.Len(t, results, 2)
	assert.False(t, results[0].IsError)
	assert.True(t, results[1].IsError, "结果顺序与调用顺序一致")
}
