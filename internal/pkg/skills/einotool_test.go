package skills

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"

	"github.com/syllabi/backend/internal/pkg/llm"
)

// schemaSkill 带完整参数契约的测试用 Skill
type schemaSkill struct {
	stubSkill
}

func (s *schemaSkill) Definition() Definition {
	def := s.stubSkill.Definition()
	def.Description = "sends a message to a channel"
	def.Parameters = llm.ParameterSchema{
		Type: "object",
		Properties: map[string]llm.Property{
			"channel_id": {
				Type:        "string",
				Description: "target channel",
			},
			"channel_type": {
				Type: "string",
				Enum: []interface{}{"text", "voice"},
			},
			"type": {
				Type: "integer",
				Enum: []interface{}{0, 2, 13},
			},
			"embed": {
				Type: "object",
				Properties: map[string]llm.Property{
					"title": {Type: "string", Description: "embed title"},
				},
			},
		},
		Required: []string{"channel_id"},
	}
	return def
}

func newSchemaSkill(name string) *schemaSkill {
	return &schemaSkill{
		stubSkill: stubSkill{name: name, result: map[string]interface{}{"success": true}},
	}
}

func TestEinoToolsOnlyExposesEnabled(t *testing.T) {
	registry := NewRegistry()
	assert.NoError(t, registry.Register(newSchemaSkill("alpha_skill")))
	assert.NoError(t, registry.Register(newSchemaSkill("beta_skill")))
	assert.NoError(t, registry.Disable("beta_skill"))

	tools := EinoTools(registry, NewExecutor(registry, nil))
	assert.Len(t, tools, 1, "禁用的 skill 不应导出为 Eino 工具")

	info, err := tools[0].Info(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "alpha_skill", info.Name)
	assert.Equal(t, "sends a message to a channel", info.Desc)
	assert.NotNil(t, info.ParamsOneOf)
}

func TestToEinoParamsReflectsContract(t *testing.T) {
	def := newSchemaSkill("send_test_message").Definition()
	params := toEinoParams(def.Parameters)

	channelID := params["channel_id"]
	assert.Equal(t, schema.String, channelID.Type)
	assert.Equal(t, "target channel", channelID.Desc)
	assert.True(t, channelID.Required, "必填标记应保留")

	channelType := params["channel_type"]
	assert.False(t, channelType.Required)
	assert.Equal(t, []string{"text", "voice"}, channelType.Enum)

	// 整数枚举以十进制字符串形式进入 Eino
	intEnum := params["type"]
	assert.Equal(t, schema.Integer, intEnum.Type)
	assert.Equal(t, []string{"0", "2", "13"}, intEnum.Enum)

	embed := params["embed"]
	assert.Equal(t, schema.Object, embed.Type)
	if assert.Contains(t, embed.SubParams, "title", "嵌套对象属性应转成 SubParams") {
		assert.Equal(t, "embed title", embed.SubParams["title"].Desc)
		assert.False(t, embed.SubParams["title"].Required, "嵌套属性默认可选")
	}
}

func TestEnumStrings(t *testing.T) {
	assert.Nil(t, enumStrings(nil))
	assert.Equal(t, []string{"0", "2", "text"}, enumStrings([]interface{}{0, 2, "text"}))
}

func TestEinoToolInvokableRun(t *testing.T) {
	registry := NewRegistry()
	skill := newSchemaSkill("send_test_message")
	assert.NoError(t, registry.Register(skill))

	tools := EinoTools(registry, NewExecutor(registry, nil))
	assert.Len(t, tools, 1)

	invokable, ok := tools[0].(tool.InvokableTool)
	assert.True(t, ok, "导出的工具必须可直接调用")

	ec := ExecutionContext{IntegrationID: "intg-1", ChatbotID: "bot-1", Channel: "discord"}
	ctx := WithExecutionContext(context.Background(), ec)

	out, err := invokable.InvokableRun(ctx, `{"channel_id":"123"}`)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, out)
	assert.Equal(t, 1, skill.calls)
	assert.Equal(t, "intg-1", skill.lastEC.IntegrationID, "执行上下文应通过 context 传入")
	assert.Equal(t, "bot-1", skill.lastEC.ChatbotID)
}

func TestEinoToolRunErrorPropagates(t *testing.T) {
	registry := NewRegistry()
	assert.NoError(t, registry.Register(newSchemaSkill("send_test_message")))
	assert.NoError(t, registry.Disable("send_test_message"))

	invokable := &einoSkillTool{
		name:     "send_test_message",
		executor: NewExecutor(registry, nil),
		registry: registry,
	}
	_, err := invokable.InvokableRun(context.Background(), `{}`)
	assert.ErrorIs(t, err, ErrSkillDisabled, "禁用 skill 的调用错误应原样上抛")
}

func TestExecutionContextFromUnset(t *testing.T) {
	ec := ExecutionContextFrom(context.Background())
	assert.Equal(t, ExecutionContext{}, ec, "未注入时应返回零值上下文")

	raw, err := json.Marshal(ec)
	assert.NoError(t, err)
	assert.Equal(t, "{}", string(raw), "零值上下文不应序列化出任何字段")
}
