package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/syllabi/backend/internal/pkg/skills"
)

// defaultAuditReason 未提供审计原因时的占位值
const defaultAuditReason = "No reason provided"

// maxTimeoutMinutes Discord 允许的最长禁言时间，28 天
const maxTimeoutMinutes = 40320

// BanUserParams discord_ban_user 的参数
type BanUserParams struct {
	UserID            string `json:"user_id"`
	Reason            string `json:"reason"`
	DeleteMessageDays int    `json:"delete_message_days"`
}

// banUser 封禁用户
// delete_message_days 钳制到 [0,7]，原因放请求体
func (s *Skills) banUser(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	var p BanUserParams
	if err := decodeParams(args, &p); err != nil {
		return nil, err
	}
	if p.UserID == "" {
		return nil, skills.NewPreconditionError("user_id is required")
	}
	guildID, err := ResolveGuildID(ctx, s.meta, ec.IntegrationID, "")
	if err != nil {
		return nil, err
	}

	days := p.DeleteMessageDays
	if days < 0 {
		days = 0
	}
	if days > 7 {
		days = 7
	}

	if _, err := s.client.Call(ctx, "/guilds/"+guildID+"/bans/"+p.UserID, ec.IntegrationID, CallOptions{
		Method: http.MethodPut,
		Body: map[string]interface{}{
			"delete_message_days": days,
			"reason":              p.Reason,
		},
	}); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success":             true,
		"user_id":             p.UserID,
		"guild_id":            guildID,
		"action":              "banned",
		"reason":              p.Reason,
		"delete_message_days": days,
	}, nil
}

// KickUserParams discord_kick_user 的参数
type KickUserParams struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// kickUser 踢出用户，原因走审计头
func (s *Skills) kickUser(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	var p KickUserParams
	if err := decodeParams(args, &p); err != nil {
		return nil, err
	}
	if p.UserID == "" {
		return nil, skills.NewPreconditionError("user_id is required")
	}
	guildID, err := ResolveGuildID(ctx, s.meta, ec.IntegrationID, "")
	if err != nil {
		return nil, err
	}

	if _, err := s.client.Call(ctx, "/guilds/"+guildID+"/members/"+p.UserID, ec.IntegrationID, CallOptions{
		Method:  http.MethodDelete,
		Headers: map[string]string{"X-Audit-Log-Reason": auditReason(p.Reason)},
	}); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success":  true,
		"user_id":  p.UserID,
		"guild_id": guildID,
		"action":   "kicked",
		"reason":   p.Reason,
	}, nil
}

// TimeoutUserParams discord_timeout_user 的参数
type TimeoutUserParams struct {
	UserID          string `json:"user_id"`
	DurationMinutes int    `json:"duration_minutes"`
	Reason          string `json:"reason"`
}

// timeoutUser 禁言用户
// 时长钳制到 [1,40320] 分钟，换算成绝对截止时间提交
func (s *Skills) timeoutUser(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	var p TimeoutUserParams
	if err := decodeParams(args, &p); err != nil {
		return nil, err
	}
	if p.UserID == "" {
		return nil, skills.NewPreconditionError("user_id is required")
	}
	guildID, err := ResolveGuildID(ctx, s.meta, ec.IntegrationID, "")
	if err != nil {
		return nil, err
	}

	minutes := p.DurationMinutes
	if minutes < 1 {
		minutes = 1
	}
	if minutes > maxTimeoutMinutes {
		minutes = maxTimeoutMinutes
	}
	until := time.Now().Add(time.Duration(minutes) * time.Minute).UTC().Format(time.RFC3339)

	if _, err := s.client.Call(ctx, "/guilds/"+guildID+"/members/"+p.UserID, ec.IntegrationID, CallOptions{
		Method:  http.MethodPatch,
		Body:    map[string]string{"communication_disabled_until": until},
		Headers: map[string]string{"X-Audit-Log-Reason": auditReason(p.Reason)},
	}); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success":          true,
		"user_id":          p.UserID,
		"guild_id":         guildID,
		"action":           "timeout",
		"duration_minutes": minutes,
		"timeout_until":    until,
		"reason":           p.Reason,
	}, nil
}

func auditReason(reason string) string {
	if reason == "" {
		return defaultAuditReason
	}
	return reason
}
