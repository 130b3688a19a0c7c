package llm

// Tool 定义一个可供 LLM 调用的工具
// 符合 OpenAI Function Calling 格式
type Tool struct {
	Type     string       `json:"type"` // 固定为 "function"
	Function ToolFunction `json:"function"`
}

// ToolFunction 工具函数定义
type ToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  ParameterSchema `json:"parameters"`
}

// ParameterSchema 参数 JSON Schema 定义
type ParameterSchema struct {
	Type       string              `json:"type"` // 固定为 "object"
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property 单个参数属性
// Example 仅作文档用途，永远不作为默认值
type Property struct {
	Type        string              `json:"type"`
	Description string              `json:"description"`
	Enum        []interface{}       `json:"enum,omitempty"`       // 可选的枚举值（字符串或整数）
	Minimum     *int                `json:"minimum,omitempty"`    // 数值下界
	Maximum     *int                `json:"maximum,omitempty"`    // 数值上界
	Example     interface{}         `json:"example,omitempty"`    // 示例值
	Properties  map[string]Property `json:"properties,omitempty"` // type=object 时的嵌套属性
}

// ToolCall LLM 返回的工具调用请求
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // 固定为 "function"
	Function FunctionCall `json:"function"`
}

// FunctionCall 函数调用详情
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON 格式的参数字符串
}

// ToolResult 工具执行结果
type ToolResult struct {
	Content string `json:"content"`  // 执行结果内容（文本格式）
	IsError bool   `json:"is_error"` // 是否执行出错
}

// IsRequired 判断某个参数是否必填
func (s ParameterSchema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}
