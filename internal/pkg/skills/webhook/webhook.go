// Package webhook 把用户自定义的 HTTP 端点包装成 Skill
// 内置 skill 之外的扩展机制：租户配置 URL，LLM 选中后参数直发过去
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/syllabi/backend/internal/pkg/skills"
)

// userAgent 出站请求的标识
const userAgent = "Syllabi-Skills/2.0"

// defaultTimeout 未配置 timeout_ms 时的兜底超时
const defaultTimeout = 30 * time.Second

// Config 自定义 skill 的 webhook 配置
type Config struct {
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	TimeoutMS int               `json:"timeout_ms"`
}

// ParseConfig 从 skill 配置 JSON 解析 webhook 配置
// 兼容两种结构：新版嵌套 webhook_config，旧版字段平铺在顶层
func ParseConfig(raw []byte) (Config, error) {
	if len(raw) == 0 {
		return Config{}, fmt.Errorf("webhook configuration is empty")
	}

	var wrapped struct {
		WebhookConfig *Config `json:"webhook_config"`
		WebhookURL    string  `json:"webhook_url"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return Config{}, fmt.Errorf("解析 webhook 配置失败: %w", err)
	}

	var cfg Config
	if wrapped.WebhookConfig != nil {
		cfg = *wrapped.WebhookConfig
	} else if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("解析 webhook 配置失败: %w", err)
	}
	if cfg.URL == "" {
		cfg.URL = wrapped.WebhookURL
	}
	if cfg.URL == "" {
		return Config{}, fmt.Errorf("webhook url not configured")
	}
	return cfg, nil
}

// Skill 由 webhook 驱动的自定义技能
type Skill struct {
	def    skills.Definition
	config Config
	client *http.Client
}

// New 创建 webhook skill
func New(def skills.Definition, config Config) (*Skill, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("webhook url not configured for skill %s", def.Name)
	}
	timeout := defaultTimeout
	if config.TimeoutMS > 0 {
		timeout = time.Duration(config.TimeoutMS) * time.Millisecond
	}
	return &Skill{
		def:    def,
		config: config,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (s *Skill) Definition() skills.Definition { return s.def }

func (s *Skill) ProviderType() string { return "webhook" }

// Execute 把参数转发到配置的端点
// GET 参数进查询串，POST/PUT/PATCH 参数进 JSON 请求体
func (s *Skill) Execute(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	var params map[string]interface{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, skills.NewPreconditionError("invalid skill arguments: %v", err)
		}
	}

	method := strings.ToUpper(s.config.Method)
	if method == "" {
		method = http.MethodPost
	}

	target := s.config.URL
	var reader io.Reader

	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		payload, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("序列化参数失败: %w", err)
		}
		reader = bytes.NewReader(payload)
	case http.MethodGet:
		if len(params) > 0 {
			parsed, err := url.Parse(target)
			if err != nil {
				return nil, fmt.Errorf("非法 webhook url: %w", err)
			}
			query := parsed.Query()
			for key, value := range params {
				if value == nil {
					continue
				}
				query.Set(key, fmt.Sprintf("%v", value))
			}
			parsed.RawQuery = query.Encode()
			target = parsed.String()
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for key, value := range s.config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook 请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &skills.APIError{Status: resp.StatusCode, Body: string(body)}
	}

	// JSON 响应解析后返回，其余内容原样作为文本
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		var data interface{}
		if err := json.Unmarshal(body, &data); err == nil {
			return data, nil
		}
	}
	return string(body), nil
}
