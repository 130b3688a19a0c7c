package discord

import (
	"context"
	"encoding/json"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/syllabi/backend/internal/pkg/skills"
)

// testConnection 三步体检：bot 身份、服务器信息、频道可见性
// 唯一一个吞掉失败的 skill：任何一步失败都返回 success=false 的诊断结果
// 而不是向上抛错，便于前端把结论直接展示给用户
func (s *Skills) testConnection(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}

	result, err := s.runConnectionProbe(ctx, ec)
	if err != nil {
		klog.V(6).Infof("discord 连接体检失败: %v", err)
		return map[string]interface{}{
			"success": false,
			"error":   err.Error(),
			"message": "Discord bot connection failed. Please check your integration settings.",
		}, nil
	}
	return result, nil
}

func (s *Skills) runConnectionProbe(ctx context.Context, ec skills.ExecutionContext) (map[string]interface{}, error) {
	raw, err := s.client.Call(ctx, "/users/@me", ec.IntegrationID, CallOptions{})
	if err != nil {
		return nil, err
	}
	var botUser wireUser
	if err := json.Unmarshal(raw, &botUser); err != nil {
		return nil, fmt.Errorf("解析 bot 用户失败: %w", err)
	}

	guildID, err := ResolveGuildID(ctx, s.meta, ec.IntegrationID, "")
	if err != nil {
		return nil, err
	}
	raw, err = s.client.Call(ctx, "/guilds/"+guildID, ec.IntegrationID, CallOptions{})
	if err != nil {
		return nil, err
	}
	var guild wireGuild
	if err := json.Unmarshal(raw, &guild); err != nil {
		return nil, fmt.Errorf("解析服务器信息失败: %w", err)
	}

	raw, err = s.client.Call(ctx, "/guilds/"+guildID+"/channels", ec.IntegrationID, CallOptions{})
	if err != nil {
		return nil, err
	}
	var channels []wireChannel
	if err := json.Unmarshal(raw, &channels); err != nil {
		return nil, fmt.Errorf("解析频道列表失败: %w", err)
	}

	return map[string]interface{}{
		"success": true,
		"bot_user": map[string]interface{}{
			"id":            botUser.ID,
			"username":      botUser.Username,
			"discriminator": botUser.Discriminator,
		},
		"guild": map[string]interface{}{
			"id":           guild.ID,
			"name":         guild.Name,
			"member_count": guild.MemberCount,
		},
		"channels_count": len(channels),
		"message":        "Discord bot connection successful!",
	}, nil
}
