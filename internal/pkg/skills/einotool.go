package skills

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/syllabi/backend/internal/pkg/llm"
)

// executionContextKey ExecutionContext 在 context.Context 中的键
type executionContextKey struct{}

// WithExecutionContext 把执行上下文写入 context
// Eino 的工具调用入口无法携带自定义参数，统一走 context 传递
func WithExecutionContext(ctx context.Context, ec ExecutionContext) context.Context {
	return context.WithValue(ctx, executionContextKey{}, ec)
}

// ExecutionContextFrom 从 context 读取执行上下文，未设置时返回零值
func ExecutionContextFrom(ctx context.Context) ExecutionContext {
	if ec, ok := ctx.Value(executionContextKey{}).(ExecutionContext); ok {
		return ec
	}
	return ExecutionContext{}
}

// einoSkillTool 把一个已注册 Skill 适配为 Eino 的 InvokableTool
type einoSkillTool struct {
	name     string
	executor *Executor
	registry Registry
}

// Info 返回工具信息
// 实现 tool.BaseTool 接口
func (t *einoSkillTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	skill, err := t.registry.Get(t.name)
	if err != nil {
		return nil, err
	}
	def := skill.Definition()

	return &schema.ToolInfo{
		Name:        def.Name,
		Desc:        def.Description,
		ParamsOneOf: schema.NewParamsOneOfByParams(toEinoParams(def.Parameters)),
	}, nil
}

// InvokableRun 执行工具调用
// 执行上下文（integration id 等）从 ctx 中取出
func (t *einoSkillTool) InvokableRun(ctx context.Context, arguments string, opts ...tool.Option) (string, error) {
	ec := ExecutionContextFrom(ctx)

	result, err := t.executor.Invoke(ctx, t.name, json.RawMessage(arguments), ec)
	if err != nil {
		return "", err
	}

	content, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to serialize result: %w", err)
	}
	return string(content), nil
}

// EinoTools 把所有 enabled Skills 暴露为 Eino 工具集
// 供上游的 LLM 工具调用循环（agent graph）直接绑定
func EinoTools(registry Registry, executor *Executor) []tool.BaseTool {
	enabled := registry.ListEnabled()
	result := make([]tool.BaseTool, 0, len(enabled))
	for _, s := range enabled {
		result = append(result, &einoSkillTool{
			name:     s.Definition().Name,
			executor: executor,
			registry: registry,
		})
	}
	return result
}

// toEinoParams 把内部 ParameterSchema 转换为 Eino 的参数定义
func toEinoParams(ps llm.ParameterSchema) map[string]*schema.ParameterInfo {
	params := make(map[string]*schema.ParameterInfo, len(ps.Properties))
	for name, prop := range ps.Properties {
		params[name] = toEinoParam(prop, ps.IsRequired(name))
	}
	return params
}

func toEinoParam(prop llm.Property, required bool) *schema.ParameterInfo {
	info := &schema.ParameterInfo{
		Type:     toEinoType(prop.Type),
		Desc:     prop.Description,
		Enum:     enumStrings(prop.Enum),
		Required: required,
	}
	if len(prop.Properties) > 0 {
		info.SubParams = make(map[string]*schema.ParameterInfo, len(prop.Properties))
		for name, sub := range prop.Properties {
			// 嵌套对象属性默认可选
			info.SubParams[name] = toEinoParam(sub, false)
		}
	}
	return info
}

// enumStrings 把枚举值统一转成 Eino 所需的字符串形式
// 整数枚举（如 channel type）按十进制字面量输出
func enumStrings(values []interface{}) []string {
	if len(values) == 0 {
		return nil
	}
	result := make([]string, 0, len(values))
	for _, v := range values {
		result = append(result, fmt.Sprint(v))
	}
	return result
}

func toEinoType(t string) schema.DataType {
	switch t {
	case "integer":
		return schema.Integer
	case "number":
		return schema.Number
	case "boolean":
		return schema.Boolean
	case "object":
		return schema.Object
	case "array":
		return schema.Array
	default:
		return schema.String
	}
}
