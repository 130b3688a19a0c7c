package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"k8s.io/klog/v2"

	"github.com/syllabi/backend/internal/pkg/skills"
)

// channelTypeFilter 频道类型过滤名到 Discord 类型码的映射
// 未识别的名字不过滤，原样返回全部频道
var channelTypeFilter = map[string]int{
	"text":     0,
	"voice":    2,
	"category": 4,
	"news":     5,
	"stage":    13,
}

// ListChannelsParams discord_list_channels 的参数
type ListChannelsParams struct {
	GuildID     string `json:"guild_id"`
	ChannelType string `json:"channel_type"`
}

// listChannels 列出服务器频道，类型过滤在客户端完成
func (s *Skills) listChannels(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	var p ListChannelsParams
	if err := decodeParams(args, &p); err != nil {
		return nil, err
	}
	guildID, err := ResolveGuildID(ctx, s.meta, ec.IntegrationID, p.GuildID)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Call(ctx, "/guilds/"+guildID+"/channels", ec.IntegrationID, CallOptions{})
	if err != nil {
		return nil, err
	}
	var channels []wireChannel
	if err := json.Unmarshal(raw, &channels); err != nil {
		return nil, fmt.Errorf("解析频道列表失败: %w", err)
	}

	if p.ChannelType != "" {
		if targetType, ok := channelTypeFilter[p.ChannelType]; ok {
			filtered := channels[:0]
			for _, c := range channels {
				if c.Type == targetType {
					filtered = append(filtered, c)
				}
			}
			channels = filtered
		}
	}

	out := make([]channelSummary, 0, len(channels))
	for _, c := range channels {
		out = append(out, summarizeChannel(c))
	}

	return map[string]interface{}{
		"success":     true,
		"channels":    out,
		"total_count": len(out),
	}, nil
}

// CreateChannelParams discord_create_channel 的参数
type CreateChannelParams struct {
	Name     string `json:"name"`
	Type     *int   `json:"type"`
	GuildID  string `json:"guild_id"`
	Topic    string `json:"topic"`
	ParentID string `json:"parent_id"`
}

func (s *Skills) createChannel(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	var p CreateChannelParams
	if err := decodeParams(args, &p); err != nil {
		return nil, err
	}
	if p.Name == "" || p.Type == nil {
		return nil, skills.NewPreconditionError("name and type are required")
	}
	guildID, err := ResolveGuildID(ctx, s.meta, ec.IntegrationID, p.GuildID)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"name": p.Name,
		"type": *p.Type,
	}
	if p.Topic != "" {
		body["topic"] = p.Topic
	}
	if p.ParentID != "" {
		body["parent_id"] = p.ParentID
	}

	raw, err := s.client.Call(ctx, "/guilds/"+guildID+"/channels", ec.IntegrationID, CallOptions{
		Method: http.MethodPost,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	var channel wireChannel
	if err := json.Unmarshal(raw, &channel); err != nil {
		return nil, fmt.Errorf("解析频道响应失败: %w", err)
	}

	return map[string]interface{}{
		"success":  true,
		"channel":  summarizeChannel(channel),
		"guild_id": guildID,
	}, nil
}

// ListMembersParams discord_list_members 的参数
type ListMembersParams struct {
	GuildID string `json:"guild_id"`
	Limit   *int   `json:"limit"`
	After   string `json:"after"`
}

func (s *Skills) listMembers(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	var p ListMembersParams
	if err := decodeParams(args, &p); err != nil {
		return nil, err
	}
	guildID, err := ResolveGuildID(ctx, s.meta, ec.IntegrationID, p.GuildID)
	if err != nil {
		return nil, err
	}

	limit := 100
	if p.Limit != nil {
		limit = *p.Limit
	}
	if limit > 1000 {
		limit = 1000
	}

	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	if p.After != "" {
		query.Set("after", p.After)
	}

	raw, err := s.client.Call(ctx, "/guilds/"+guildID+"/members?"+query.Encode(), ec.IntegrationID, CallOptions{})
	if err != nil {
		return nil, err
	}
	var members []wireMember
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, fmt.Errorf("解析成员列表失败: %w", err)
	}

	out := make([]memberSummary, 0, len(members))
	for _, m := range members {
		out = append(out, summarizeMember(m))
	}

	return map[string]interface{}{
		"success":     true,
		"members":     out,
		"guild_id":    guildID,
		"total_count": len(out),
	}, nil
}

// GetUserInfoParams discord_get_user_info 的参数
type GetUserInfoParams struct {
	UserID  string `json:"user_id"`
	GuildID string `json:"guild_id"`
}

// getUserInfo 查询用户全局信息
// 指定 guild_id 时附带查询服务器内成员信息，失败只降级不报错
func (s *Skills) getUserInfo(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	var p GetUserInfoParams
	if err := decodeParams(args, &p); err != nil {
		return nil, err
	}
	if p.UserID == "" {
		return nil, skills.NewPreconditionError("user_id is required")
	}

	raw, err := s.client.Call(ctx, "/users/"+p.UserID, ec.IntegrationID, CallOptions{})
	if err != nil {
		return nil, err
	}
	var user wireUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("解析用户响应失败: %w", err)
	}

	var member map[string]interface{}
	if p.GuildID != "" {
		guildID, err := ResolveGuildID(ctx, s.meta, ec.IntegrationID, p.GuildID)
		if err == nil {
			memberRaw, err := s.client.Call(ctx, "/guilds/"+guildID+"/members/"+p.UserID, ec.IntegrationID, CallOptions{})
			if err != nil {
				klog.V(6).Infof("查询服务器成员信息失败: %v", err)
			} else {
				var m wireMember
				if err := json.Unmarshal(memberRaw, &m); err == nil {
					member = map[string]interface{}{
						"nick":          m.Nick,
						"roles":         m.Roles,
						"joined_at":     m.JoinedAt,
						"premium_since": m.PremiumSince,
					}
				}
			}
		}
	}

	return map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"id":            user.ID,
			"username":      user.Username,
			"discriminator": user.Discriminator,
			"avatar":        user.Avatar,
			"bot":           user.Bot,
			"system":        user.System,
			"public_flags":  user.PublicFlags,
		},
		"member": member,
	}, nil
}

// ManageRolesParams discord_manage_roles 的参数
type ManageRolesParams struct {
	UserID  string `json:"user_id"`
	GuildID string `json:"guild_id"`
	Action  string `json:"action"`
	RoleID  string `json:"role_id"`
	Reason  string `json:"reason"`
}

// manageRoles 给用户加减角色
// add 对应 PUT，remove 对应 DELETE，审计原因可选
func (s *Skills) manageRoles(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	var p ManageRolesParams
	if err := decodeParams(args, &p); err != nil {
		return nil, err
	}
	if p.UserID == "" || p.RoleID == "" {
		return nil, skills.NewPreconditionError("user_id and role_id are required")
	}

	var method string
	switch p.Action {
	case "add":
		method = http.MethodPut
	case "remove":
		method = http.MethodDelete
	default:
		return nil, skills.NewPreconditionError("action must be add or remove, got %q", p.Action)
	}

	guildID, err := ResolveGuildID(ctx, s.meta, ec.IntegrationID, p.GuildID)
	if err != nil {
		return nil, err
	}

	var headers map[string]string
	if p.Reason != "" {
		headers = map[string]string{"X-Audit-Log-Reason": p.Reason}
	}

	endpoint := "/guilds/" + guildID + "/members/" + p.UserID + "/roles/" + p.RoleID
	if _, err := s.client.Call(ctx, endpoint, ec.IntegrationID, CallOptions{Method: method, Headers: headers}); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success":  true,
		"action":   p.Action,
		"user_id":  p.UserID,
		"role_id":  p.RoleID,
		"guild_id": guildID,
		"reason":   p.Reason,
	}, nil
}

// ListRolesParams discord_list_roles 的参数
type ListRolesParams struct {
	GuildID string `json:"guild_id"`
}

func (s *Skills) listRoles(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	var p ListRolesParams
	if err := decodeParams(args, &p); err != nil {
		return nil, err
	}
	guildID, err := ResolveGuildID(ctx, s.meta, ec.IntegrationID, p.GuildID)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Call(ctx, "/guilds/"+guildID+"/roles", ec.IntegrationID, CallOptions{})
	if err != nil {
		return nil, err
	}
	var roles []wireRole
	if err := json.Unmarshal(raw, &roles); err != nil {
		return nil, fmt.Errorf("解析角色列表失败: %w", err)
	}

	out := make([]map[string]interface{}, 0, len(roles))
	for _, r := range roles {
		out = append(out, map[string]interface{}{
			"id":          r.ID,
			"name":        r.Name,
			"color":       r.Color,
			"hoist":       r.Hoist,
			"position":    r.Position,
			"permissions": r.Permissions,
			"managed":     r.Managed,
			"mentionable": r.Mentionable,
		})
	}

	return map[string]interface{}{
		"success":     true,
		"roles":       out,
		"guild_id":    guildID,
		"total_count": len(out),
	}, nil
}
