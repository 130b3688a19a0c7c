package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"k8s.io/klog/v2"

	"github.com/syllabi/backend/internal/pkg/skills"
)

// DefaultAPIBase Discord REST API 的版本化基地址
const DefaultAPIBase = "https://discord.com/api/v10"

// Client 带认证的 Discord 请求适配器
// 单次请求单次响应，不重试不缓存；限流等恢复策略由调用方决定
type Client struct {
	base  string
	store TokenStore
	http  *http.Client
}

// NewClient 创建请求适配器
// base 为空时使用 DefaultAPIBase
func NewClient(base string, store TokenStore, timeout time.Duration) *Client {
	if base == "" {
		base = DefaultAPIBase
	}
	return &Client{
		base:  strings.TrimRight(base, "/"),
		store: store,
		http:  &http.Client{Timeout: timeout},
	}
}

// CallOptions 单次请求的可选参数
type CallOptions struct {
	Method  string
	Body    interface{}
	Headers map[string]string
}

// Call 向 Discord 发起一次已认证请求并解析响应
// 认证头由适配器统一注入，调用方的 Headers 无法覆盖
// 非 2xx 状态码映射为对应的类型化错误
func (c *Client) Call(ctx context.Context, endpoint, integrationID string, opts CallOptions) (json.RawMessage, error) {
	token, err := resolveToken(ctx, c.store, integrationID)
	if err != nil {
		return nil, err
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var reader io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("序列化请求体失败: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	// 认证头最后写入，保证其权威性
	req.Header.Set("Authorization", "Bot "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discord 请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		klog.V(6).Infof("discord 请求非 2xx：%s %s -> %d", method, endpoint, resp.StatusCode)
		return nil, classifyStatus(resp.StatusCode, body)
	}

	// 204 以及部分写操作没有响应体
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	if !json.Valid(body) {
		return nil, &skills.APIError{Status: resp.StatusCode, Body: "invalid json in success response"}
	}
	return json.RawMessage(body), nil
}

// classifyStatus 按状态码把失败响应映射为类型化错误
// 401 的响应体绝不进入错误信息，避免泄露提供方细节
func classifyStatus(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized:
		return &skills.AuthenticationError{Status: status}
	case http.StatusForbidden:
		return &skills.PermissionError{Status: status}
	case http.StatusNotFound:
		return &skills.NotFoundError{Status: status}
	case http.StatusTooManyRequests:
		var payload struct {
			RetryAfter float64 `json:"retry_after"`
		}
		_ = json.Unmarshal(body, &payload)
		return &skills.RateLimitError{Status: status, RetryAfter: payload.RetryAfter}
	default:
		return &skills.APIError{Status: status, Body: string(body)}
	}
}
