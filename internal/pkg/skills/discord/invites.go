package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/syllabi/backend/internal/pkg/skills"
)

// inviteURLBase 邀请码拼接成可分享链接的前缀
const inviteURLBase = "https://discord.gg/"

// CreateInviteParams discord_create_invite 的参数
// 指针字段区分"未提供"与显式传零值
type CreateInviteParams struct {
	ChannelID string `json:"channel_id"`
	MaxAge    *int   `json:"max_age"`
	MaxUses   *int   `json:"max_uses"`
	Temporary *bool  `json:"temporary"`
}

// createInvite 创建频道邀请
// 默认 24 小时有效、不限次数、正式成员资格
func (s *Skills) createInvite(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	var p CreateInviteParams
	if err := decodeParams(args, &p); err != nil {
		return nil, err
	}
	if p.ChannelID == "" {
		return nil, skills.NewPreconditionError("channel_id is required")
	}

	maxAge := 86400
	if p.MaxAge != nil {
		maxAge = *p.MaxAge
	}
	maxUses := 0
	if p.MaxUses != nil {
		maxUses = *p.MaxUses
	}
	temporary := false
	if p.Temporary != nil {
		temporary = *p.Temporary
	}

	raw, err := s.client.Call(ctx, "/channels/"+p.ChannelID+"/invites", ec.IntegrationID, CallOptions{
		Method: http.MethodPost,
		Body: map[string]interface{}{
			"max_age":   maxAge,
			"max_uses":  maxUses,
			"temporary": temporary,
		},
	})
	if err != nil {
		return nil, err
	}
	var invite wireInvite
	if err := json.Unmarshal(raw, &invite); err != nil {
		return nil, fmt.Errorf("解析邀请响应失败: %w", err)
	}

	return map[string]interface{}{
		"success":     true,
		"invite_code": invite.Code,
		"invite_url":  inviteURLBase + invite.Code,
		"channel_id":  p.ChannelID,
		"max_age":     maxAge,
		"max_uses":    maxUses,
		"temporary":   temporary,
		"expires_at":  invite.ExpiresAt,
	}, nil
}

// ListInvitesParams discord_list_invites 的参数（无字段，保留类型占位）
type ListInvitesParams struct{}

func (s *Skills) listInvites(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	guildID, err := ResolveGuildID(ctx, s.meta, ec.IntegrationID, "")
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Call(ctx, "/guilds/"+guildID+"/invites", ec.IntegrationID, CallOptions{})
	if err != nil {
		return nil, err
	}
	var invites []wireInvite
	if err := json.Unmarshal(raw, &invites); err != nil {
		return nil, fmt.Errorf("解析邀请列表失败: %w", err)
	}

	out := make([]map[string]interface{}, 0, len(invites))
	for _, invite := range invites {
		var inviter interface{}
		if invite.Inviter != nil {
			inviter = summarizeUser(*invite.Inviter)
		}
		out = append(out, map[string]interface{}{
			"code": invite.Code,
			"url":  inviteURLBase + invite.Code,
			"channel": map[string]interface{}{
				"id":   invite.Channel.ID,
				"name": invite.Channel.Name,
				"type": invite.Channel.Type,
			},
			"inviter":    inviter,
			"uses":       invite.Uses,
			"max_uses":   invite.MaxUses,
			"max_age":    invite.MaxAge,
			"temporary":  invite.Temporary,
			"created_at": invite.CreatedAt,
			"expires_at": invite.ExpiresAt,
		})
	}

	return map[string]interface{}{
		"success":       true,
		"guild_id":      guildID,
		"invites":       out,
		"total_invites": len(out),
	}, nil
}
