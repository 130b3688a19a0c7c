package discord

import (
	"github.com/syllabi/backend/internal/pkg/llm"
	"github.com/syllabi/backend/internal/pkg/skills"
)

const categoryDiscord = "discord"

// snowflakeExample 参数示例里统一使用的 ID 占位
const snowflakeExample = "1234567890123456789"

// Definitions 全部 Discord skill 的声明
// 顺序与 SkillName 常量一致，便于对照
func Definitions() []skills.Definition {
	return []skills.Definition{
		{
			Name:        string(SkillSendMessage),
			DisplayName: "Send Discord Message",
			Description: "Send a message to a Discord channel or user",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"message": {
						Type:        "string",
						Description: "The message content to send",
						Example:     "Hello from Syllabi!",
					},
					"channel_id": {
						Type:        "string",
						Description: "Discord channel ID to send message to",
						Example:     snowflakeExample,
					},
					"user_id": {
						Type:        "string",
						Description: "Discord user ID to send DM to (alternative to channel_id)",
						Example:     snowflakeExample,
					},
					"embed": {
						Type:        "object",
						Description: "Rich embed object (optional)",
						Properties: map[string]llm.Property{
							"title":       {Type: "string", Description: "Embed title"},
							"description": {Type: "string", Description: "Embed description"},
							"color":       {Type: "integer", Description: "Embed color (decimal)"},
							"url":         {Type: "string", Description: "Embed URL"},
						},
					},
				},
				Required: []string{"message"},
			},
		},
		{
			Name:        string(SkillListChannels),
			DisplayName: "List Discord Channels",
			Description: "List all channels in a Discord server",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"guild_id": {
						Type:        "string",
						Description: "Discord server (guild) ID (optional, uses current server if not provided)",
						Example:     snowflakeExample,
					},
					"channel_type": {
						Type:        "string",
						Description: "Filter by channel type",
						Enum:        []interface{}{"text", "voice", "category", "news", "store", "stage"},
						Example:     "text",
					},
				},
			},
		},
		{
			Name:        string(SkillGetMessages),
			DisplayName: "Get Discord Messages",
			Description: "Retrieve messages from a Discord channel",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"channel_id": {
						Type:        "string",
						Description: "Discord channel ID to get messages from",
						Example:     snowflakeExample,
					},
					"limit": {
						Type:        "integer",
						Description: "Number of messages to retrieve (1-100)",
						Minimum:     intBound(1),
						Maximum:     intBound(100),
						Example:     50,
					},
					"before": {
						Type:        "string",
						Description: "Get messages before this message ID",
						Example:     snowflakeExample,
					},
					"after": {
						Type:        "string",
						Description: "Get messages after this message ID",
						Example:     snowflakeExample,
					},
				},
				Required: []string{"channel_id"},
			},
		},
		{
			Name:        string(SkillListMembers),
			DisplayName: "List Discord Members",
			Description: "List members in a Discord server",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"guild_id": {
						Type:        "string",
						Description: "Discord server (guild) ID (optional, uses current server if not provided)",
						Example:     snowflakeExample,
					},
					"limit": {
						Type:        "integer",
						Description: "Number of members to retrieve (1-1000)",
						Minimum:     intBound(1),
						Maximum:     intBound(1000),
						Example:     100,
					},
					"after": {
						Type:        "string",
						Description: "Get members after this user ID",
						Example:     snowflakeExample,
					},
				},
			},
		},
		{
			Name:        string(SkillGetUserInfo),
			DisplayName: "Get Discord User Info",
			Description: "Get information about a Discord user",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"user_id": {
						Type:        "string",
						Description: "Discord user ID to get info for",
						Example:     snowflakeExample,
					},
					"guild_id": {
						Type:        "string",
						Description: "Discord server (guild) ID for guild-specific info (optional)",
						Example:     snowflakeExample,
					},
				},
				Required: []string{"user_id"},
			},
		},
		{
			Name:        string(SkillManageRoles),
			DisplayName: "Manage Discord Roles",
			Description: "Add or remove roles from a Discord user",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"user_id": {
						Type:        "string",
						Description: "Discord user ID to modify roles for",
						Example:     snowflakeExample,
					},
					"guild_id": {
						Type:        "string",
						Description: "Discord server (guild) ID (optional, uses current server if not provided)",
						Example:     snowflakeExample,
					},
					"action": {
						Type:        "string",
						Description: "Action to perform",
						Enum:        []interface{}{"add", "remove"},
						Example:     "add",
					},
					"role_id": {
						Type:        "string",
						Description: "Role ID to add or remove",
						Example:     snowflakeExample,
					},
					"reason": {
						Type:        "string",
						Description: "Reason for the role change (optional)",
						Example:     "Promoted to moderator",
					},
				},
				Required: []string{"user_id", "action", "role_id"},
			},
		},
		{
			Name:        string(SkillListRoles),
			DisplayName: "List Discord Roles",
			Description: "List all roles in a Discord server",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"guild_id": {
						Type:        "string",
						Description: "Discord server (guild) ID (optional, uses current server if not provided)",
						Example:     snowflakeExample,
					},
				},
			},
		},
		{
			Name:        string(SkillCreateChannel),
			DisplayName: "Create Discord Channel",
			Description: "Create a new channel in a Discord server",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"name": {
						Type:        "string",
						Description: "Channel name",
						Example:     "general-chat",
					},
					"type": {
						Type:        "integer",
						Description: "Channel type (0=text, 2=voice, 4=category, 5=news, 13=stage)",
						Enum:        []interface{}{0, 2, 4, 5, 13},
						Example:     0,
					},
					"guild_id": {
						Type:        "string",
						Description: "Discord server (guild) ID (optional, uses current server if not provided)",
						Example:     snowflakeExample,
					},
					"topic": {
						Type:        "string",
						Description: "Channel topic (for text channels)",
						Example:     "General discussion channel",
					},
					"parent_id": {
						Type:        "string",
						Description: "Parent category ID (optional)",
						Example:     snowflakeExample,
					},
				},
				Required: []string{"name", "type"},
			},
		},
		{
			Name:        string(SkillSendEmbed),
			DisplayName: "Send Discord Embed",
			Description: "Send a rich embed message to a Discord channel",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"channel_id": {
						Type:        "string",
						Description: "Discord channel ID to send embed to",
						Example:     snowflakeExample,
					},
					"title": {
						Type:        "string",
						Description: "Embed title",
						Example:     "Important Announcement",
					},
					"description": {
						Type:        "string",
						Description: "Embed description",
						Example:     "This is an important message from the team.",
					},
					"color": {
						Type:        "integer",
						Description: "Embed color (decimal format)",
						Example:     3447003,
					},
					"url": {
						Type:        "string",
						Description: "Embed URL",
						Example:     "https://example.com",
					},
					"thumbnail_url": {
						Type:        "string",
						Description: "Thumbnail image URL",
						Example:     "https://example.com/image.png",
					},
					"image_url": {
						Type:        "string",
						Description: "Main image URL",
						Example:     "https://example.com/banner.png",
					},
					"footer_text": {
						Type:        "string",
						Description: "Footer text",
						Example:     "Powered by Syllabi",
					},
				},
				Required: []string{"channel_id", "title"},
			},
		},
		{
			Name:        string(SkillAddReaction),
			DisplayName: "Add Discord Reaction",
			Description: "Add a reaction emoji to a Discord message",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"channel_id": {
						Type:        "string",
						Description: "Discord channel ID where the message is located",
						Example:     snowflakeExample,
					},
					"message_id": {
						Type:        "string",
						Description: "Discord message ID to add reaction to",
						Example:     snowflakeExample,
					},
					"emoji": {
						Type:        "string",
						Description: "Emoji to add as reaction (Unicode emoji or custom emoji name)",
						Example:     "👍",
					},
				},
				Required: []string{"channel_id", "message_id", "emoji"},
			},
		},
		{
			Name:        string(SkillTestConnection),
			DisplayName: "Test Discord Connection",
			Description: "Test Discord bot connection and permissions",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type:       "object",
				Properties: map[string]llm.Property{},
			},
		},
		{
			Name:        string(SkillEditMessage),
			DisplayName: "Edit Discord Message",
			Description: "Edit an existing Discord message",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"channel_id": {
						Type:        "string",
						Description: "Discord channel ID where the message is located",
						Example:     snowflakeExample,
					},
					"message_id": {
						Type:        "string",
						Description: "Discord message ID to edit",
						Example:     snowflakeExample,
					},
					"new_content": {
						Type:        "string",
						Description: "New message content",
						Example:     "Updated message content",
					},
				},
				Required: []string{"channel_id", "message_id", "new_content"},
			},
		},
		{
			Name:        string(SkillDeleteMessage),
			DisplayName: "Delete Discord Message",
			Description: "Delete a Discord message",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"channel_id": {
						Type:        "string",
						Description: "Discord channel ID where the message is located",
						Example:     snowflakeExample,
					},
					"message_id": {
						Type:        "string",
						Description: "Discord message ID to delete",
						Example:     snowflakeExample,
					},
				},
				Required: []string{"channel_id", "message_id"},
			},
		},
		{
			Name:        string(SkillBanUser),
			DisplayName: "Ban Discord User",
			Description: "Ban a user from the Discord server",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"user_id": {
						Type:        "string",
						Description: "Discord user ID to ban",
						Example:     snowflakeExample,
					},
					"reason": {
						Type:        "string",
						Description: "Reason for the ban (optional)",
						Example:     "Violating server rules",
					},
					"delete_message_days": {
						Type:        "integer",
						Description: "Number of days worth of messages to delete (0-7, optional)",
						Example:     1,
					},
				},
				Required: []string{"user_id"},
			},
		},
		{
			Name:        string(SkillKickUser),
			DisplayName: "Kick Discord User",
			Description: "Kick a user from the Discord server",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"user_id": {
						Type:        "string",
						Description: "Discord user ID to kick",
						Example:     snowflakeExample,
					},
					"reason": {
						Type:        "string",
						Description: "Reason for the kick (optional)",
						Example:     "Disruptive behavior",
					},
				},
				Required: []string{"user_id"},
			},
		},
		{
			Name:        string(SkillTimeoutUser),
			DisplayName: "Timeout Discord User",
			Description: "Timeout a user in the Discord server",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"user_id": {
						Type:        "string",
						Description: "Discord user ID to timeout",
						Example:     snowflakeExample,
					},
					"duration_minutes": {
						Type:        "integer",
						Description: "Timeout duration in minutes (max 40320 = 28 days)",
						Example:     60,
					},
					"reason": {
						Type:        "string",
						Description: "Reason for the timeout (optional)",
						Example:     "Temporary cooling off period",
					},
				},
				Required: []string{"user_id", "duration_minutes"},
			},
		},
		{
			Name:        string(SkillCreateInvite),
			DisplayName: "Create Discord Invite",
			Description: "Create an invite link for a Discord channel",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"channel_id": {
						Type:        "string",
						Description: "Discord channel ID to create invite for",
						Example:     snowflakeExample,
					},
					"max_age": {
						Type:        "integer",
						Description: "Duration of invite in seconds (0 = never expires, default 86400 = 24 hours)",
						Example:     86400,
					},
					"max_uses": {
						Type:        "integer",
						Description: "Max number of times this invite can be used (0 = unlimited)",
						Example:     5,
					},
					"temporary": {
						Type:        "boolean",
						Description: "Whether the invite grants temporary membership",
						Example:     false,
					},
				},
				Required: []string{"channel_id"},
			},
		},
		{
			Name:        string(SkillListInvites),
			DisplayName: "List Discord Invites",
			Description: "List all invite links for the Discord server",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type:       "object",
				Properties: map[string]llm.Property{},
			},
		},
		{
			Name:        string(SkillPinMessage),
			DisplayName: "Pin Discord Message",
			Description: "Pin a message in a Discord channel",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"channel_id": {
						Type:        "string",
						Description: "Discord channel ID where the message is located",
						Example:     snowflakeExample,
					},
					"message_id": {
						Type:        "string",
						Description: "Discord message ID to pin",
						Example:     snowflakeExample,
					},
				},
				Required: []string{"channel_id", "message_id"},
			},
		},
		{
			Name:        string(SkillUnpinMessage),
			DisplayName: "Unpin Discord Message",
			Description: "Unpin a message in a Discord channel",
			Category:    categoryDiscord,
			Parameters: llm.ParameterSchema{
				Type: "object",
				Properties: map[string]llm.Property{
					"channel_id": {
						Type:        "string",
						Description: "Discord channel ID where the message is located",
						Example:     snowflakeExample,
					},
					"message_id": {
						Type:        "string",
						Description: "Discord message ID to unpin",
						Example:     snowflakeExample,
					},
				},
				Required: []string{"channel_id", "message_id"},
			},
		},
	}
}

// intBound 数值边界字面量取指针
func intBound(v int) *int {
	return &v
}
