package discord

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/syllabi/backend/internal/pkg/skills"
)

// SkillName Discord skill 的类型化名称
// 新增 skill 时在此定义常量，并同步补齐 definitions 与 handlers
type SkillName string

const (
	SkillSendMessage    SkillName = "discord_send_message"
	SkillListChannels   SkillName = "discord_list_channels"
	SkillGetMessages    SkillName = "discord_get_messages"
	SkillListMembers    SkillName = "discord_list_members"
	SkillGetUserInfo    SkillName = "discord_get_user_info"
	SkillManageRoles    SkillName = "discord_manage_roles"
	SkillListRoles      SkillName = "discord_list_roles"
	SkillCreateChannel  SkillName = "discord_create_channel"
	SkillSendEmbed      SkillName = "discord_send_embed"
	SkillAddReaction    SkillName = "discord_add_reaction"
	SkillTestConnection SkillName = "discord_test_connection"
	SkillEditMessage    SkillName = "discord_edit_message"
	SkillDeleteMessage  SkillName = "discord_delete_message"
	SkillBanUser        SkillName = "discord_ban_user"
	SkillKickUser       SkillName = "discord_kick_user"
	SkillTimeoutUser    SkillName = "discord_timeout_user"
	SkillCreateInvite   SkillName = "discord_create_invite"
	SkillListInvites    SkillName = "discord_list_invites"
	SkillPinMessage     SkillName = "discord_pin_message"
	SkillUnpinMessage   SkillName = "discord_unpin_message"
)

// handlerFunc 单个 skill 的执行函数
type handlerFunc func(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error)

// Skills Discord skill 家族
// 所有 skill 共享同一个请求适配器与元数据存储
type Skills struct {
	client *Client
	meta   MetadataStore
}

// New 创建 Discord skill 家族
func New(client *Client, meta MetadataStore) *Skills {
	return &Skills{client: client, meta: meta}
}

// handlers 名称到执行函数的映射
// 必须与 definitions 一一对应，Register 会校验
func (s *Skills) handlers() map[SkillName]handlerFunc {
	return map[SkillName]handlerFunc{
		SkillSendMessage:    s.sendMessage,
		SkillListChannels:   s.listChannels,
		SkillGetMessages:    s.getMessages,
		SkillListMembers:    s.listMembers,
		SkillGetUserInfo:    s.getUserInfo,
		SkillManageRoles:    s.manageRoles,
		SkillListRoles:      s.listRoles,
		SkillCreateChannel:  s.createChannel,
		SkillSendEmbed:      s.sendEmbed,
		SkillAddReaction:    s.addReaction,
		SkillTestConnection: s.testConnection,
		SkillEditMessage:    s.editMessage,
		SkillDeleteMessage:  s.deleteMessage,
		SkillBanUser:        s.banUser,
		SkillKickUser:       s.kickUser,
		SkillTimeoutUser:    s.timeoutUser,
		SkillCreateInvite:   s.createInvite,
		SkillListInvites:    s.listInvites,
		SkillPinMessage:     s.pinMessage,
		SkillUnpinMessage:   s.unpinMessage,
	}
}

// Register 把全部 Discord skill 注册到 registry
// definitions 与 handlers 任何一侧缺失都直接报错，防止静默漏注册
func (s *Skills) Register(registry skills.Registry) error {
	handlers := s.handlers()
	defs := Definitions()
	if len(handlers) != len(defs) {
		return fmt.Errorf("discord skill 定义与实现数量不一致: %d != %d", len(defs), len(handlers))
	}
	for _, def := range defs {
		handler, ok := handlers[SkillName(def.Name)]
		if !ok {
			return fmt.Errorf("discord skill %s 缺少实现", def.Name)
		}
		if err := registry.Register(&boundSkill{def: def, handler: handler}); err != nil {
			return err
		}
	}
	return nil
}

// boundSkill 定义与执行函数的绑定，实现 skills.Skill
type boundSkill struct {
	def     skills.Definition
	handler handlerFunc
}

func (b *boundSkill) Definition() skills.Definition { return b.def }

func (b *boundSkill) ProviderType() string { return "builtin" }

func (b *boundSkill) Execute(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	return b.handler(ctx, args, ec)
}

// requireIntegration 所有 Discord skill 的公共前置检查
func requireIntegration(ec skills.ExecutionContext) error {
	if ec.IntegrationID == "" {
		return skills.NewPreconditionError("discord integration is not connected")
	}
	return nil
}

// decodeParams 解析 skill 参数，非法 JSON 视为前置条件失败
func decodeParams(args json.RawMessage, out interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, out); err != nil {
		return skills.NewPreconditionError("invalid skill arguments: %v", err)
	}
	return nil
}
