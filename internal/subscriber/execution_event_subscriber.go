package subscriber

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/syllabi/backend/internal/eventbus"
	"github.com/syllabi/backend/internal/model"
)

// executionStore 审计记录落库接口，由 repository 层实现
type executionStore interface {
	Create(ctx context.Context, execution *model.SkillExecution) error
}

// ExecutionEventSubscriber 把 skill 执行事件落成审计记录
// 只订阅终态事件；started 事件用于实时观察，不入库
type ExecutionEventSubscriber struct {
	store executionStore
}

func NewExecutionEventSubscriber(store executionStore) *ExecutionEventSubscriber {
	return &ExecutionEventSubscriber{store: store}
}

func (s *ExecutionEventSubscriber) Register(bus *eventbus.Bus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.ExecutionSucceeded, s.handleSucceeded)
	bus.Subscribe(eventbus.ExecutionFailed, s.handleFailed)
}

func (s *ExecutionEventSubscriber) handleSucceeded(ctx context.Context, event eventbus.ExecutionEvent) error {
	return s.persist(ctx, event, "succeeded")
}

func (s *ExecutionEventSubscriber) handleFailed(ctx context.Context, event eventbus.ExecutionEvent) error {
	return s.persist(ctx, event, "failed")
}

func (s *ExecutionEventSubscriber) persist(ctx context.Context, event eventbus.ExecutionEvent, status string) error {
	execution := &model.SkillExecution{
		ExecutionID:   event.ExecutionID,
		SkillName:     event.SkillName,
		ChatbotID:     event.ChatbotID,
		UserID:        event.UserID,
		IntegrationID: event.IntegrationID,
		Channel:       event.Channel,
		Status:        status,
		Input:         event.Input,
		Result:        event.Result,
		ErrorMsg:      event.ErrorMsg,
		DurationMS:    event.DurationMS,
	}
	if err := s.store.Create(ctx, execution); err != nil {
		klog.Errorf("执行事件落库失败: execution=%s skill=%s error=%v", event.ExecutionID, event.SkillName, err)
		return err
	}
	return nil
}
