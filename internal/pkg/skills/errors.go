package skills

import (
	"errors"
	"fmt"
)

// 预定义错误
var (
	// ErrSkillNotFound Skill 不存在
	ErrSkillNotFound = errors.New("skill not found")

	// ErrSkillAlreadyExists Skill 已存在
	ErrSkillAlreadyExists = errors.New("skill already registered")

	// ErrSkillDisabled Skill 已禁用
	ErrSkillDisabled = errors.New("skill is disabled")

	// ErrTokenNotFound 凭证存储中没有该集成的记录
	ErrTokenNotFound = errors.New("no token found for integration")

	// ErrTokenDecrypt 凭证解密失败
	ErrTokenDecrypt = errors.New("token decrypt failed")

	// ErrTokenMalformed 解出的 token 形状不合法（为空或过短）
	ErrTokenMalformed = errors.New("token has invalid shape")

	// ErrIntegrationNotFound 元数据存储中没有该集成的记录
	ErrIntegrationNotFound = errors.New("integration not found")
)

// PreconditionError 输入前置校验失败
// 在任何网络调用发起之前抛出，与外部服务故障严格区分
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Message
}

// NewPreconditionError 创建前置校验错误
func NewPreconditionError(format string, args ...interface{}) *PreconditionError {
	return &PreconditionError{Message: fmt.Sprintf(format, args...)}
}

// CredentialError 无法获得可用凭证
// 不可重试，需要用户重新连接集成
type CredentialError struct {
	IntegrationID string
	Reason        error // ErrTokenNotFound / ErrTokenDecrypt / ErrTokenMalformed
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential error for integration %s: %v, reconnect the integration", e.IntegrationID, e.Reason)
}

func (e *CredentialError) Unwrap() error { return e.Reason }

// ContextResolutionError 无法确定隐式目标（如默认服务器）
// 属于配置问题而非瞬时故障，不可重试
type ContextResolutionError struct {
	IntegrationID string
	Target        string
}

func (e *ContextResolutionError) Error() string {
	return fmt.Sprintf("could not determine %s for integration %s: no explicit value given and none stored", e.Target, e.IntegrationID)
}

// AuthenticationError 外部服务拒绝凭证（HTTP 401）
// 需要重新连接集成，错误信息不透传响应体原文
type AuthenticationError struct {
	Status int
}

func (e *AuthenticationError) Error() string {
	return "authentication rejected by provider: token invalid or integration revoked, reconnection required"
}

// PermissionError 凭证有效但缺少权限（HTTP 403）
type PermissionError struct {
	Status int
}

func (e *PermissionError) Error() string {
	return "insufficient permission for this operation, grant the bot the required rights"
}

// NotFoundError 目标资源不存在或不可访问（HTTP 404）
type NotFoundError struct {
	Status int
}

func (e *NotFoundError) Error() string {
	return "target resource does not exist or is inaccessible"
}

// RateLimitError 外部服务限流（HTTP 429）
// 本层不重试，由调用方退避后重试
type RateLimitError struct {
	Status     int
	RetryAfter float64 // 秒，0 表示未知
}

func (e *RateLimitError) Error() string {
	return "rate limit exceeded, caller should retry after backoff"
}

// Retryable 标记该错误可由调用方重试
func (e *RateLimitError) Retryable() bool { return true }

// APIError 其他非成功响应，或 2xx 但响应体不是合法 JSON
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api request failed: status %d: %s", e.Status, e.Body)
}

// IsRetryable 判断错误是否可由调用方重试
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}
