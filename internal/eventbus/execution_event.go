package eventbus

import "context"

type ExecutionEventType string

const (
	// ExecutionStarted skill 调用开始
	ExecutionStarted ExecutionEventType = "ExecutionStarted"
	// ExecutionSucceeded skill 调用成功
	ExecutionSucceeded ExecutionEventType = "ExecutionSucceeded"
	// ExecutionFailed skill 调用失败
	ExecutionFailed ExecutionEventType = "ExecutionFailed"
)

// ExecutionEvent skill 调用生命周期事件
// Executor 发布，订阅方负责落库等副作用
type ExecutionEvent struct {
	Type          ExecutionEventType
	ExecutionID   string
	SkillName     string
	ChatbotID     string
	UserID        string
	IntegrationID string
	Channel       string
	Input         string // JSON 参数
	Result        string // JSON 结果（成功时）
	ErrorMsg      string // 错误信息（失败时）
	DurationMS    int64
}

type ExecutionEventHandler func(ctx context.Context, event ExecutionEvent) error
