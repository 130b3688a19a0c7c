package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/syllabi/backend/internal/pkg/skills"
)

// SendMessageParams discord_send_message 的参数
type SendMessageParams struct {
	Message   string       `json:"message"`
	ChannelID string       `json:"channel_id"`
	UserID    string       `json:"user_id"`
	Embed     *EmbedParams `json:"embed"`
}

// EmbedParams 消息内嵌的富文本卡片
type EmbedParams struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Color       int    `json:"color,omitempty"`
	URL         string `json:"url,omitempty"`
}

// sendMessage 发送消息到频道或私信
// 私信走两步：先建 DM 频道，再向该频道发消息
func (s *Skills) sendMessage(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	var p SendMessageParams
	if err := decodeParams(args, &p); err != nil {
		return nil, err
	}
	if p.Message == "" {
		return nil, skills.NewPreconditionError("message is required")
	}
	if p.ChannelID == "" && p.UserID == "" {
		return nil, skills.NewPreconditionError("either channel_id or user_id must be provided")
	}

	targetChannel := p.ChannelID
	sentVia := "channel"

	if p.UserID != "" && p.ChannelID == "" {
		raw, err := s.client.Call(ctx, "/users/@me/channels", ec.IntegrationID, CallOptions{
			Method: http.MethodPost,
			Body:   map[string]string{"recipient_id": p.UserID},
		})
		if err != nil {
			return nil, err
		}
		var dm wireChannel
		if err := json.Unmarshal(raw, &dm); err != nil {
			return nil, fmt.Errorf("解析 DM 频道失败: %w", err)
		}
		targetChannel = dm.ID
		sentVia = "dm"
	}

	body := map[string]interface{}{"content": p.Message}
	if p.Embed != nil {
		body["embeds"] = []EmbedParams{*p.Embed}
	}

	raw, err := s.client.Call(ctx, "/channels/"+targetChannel+"/messages", ec.IntegrationID, CallOptions{
		Method: http.MethodPost,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	var msg wireMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("解析消息响应失败: %w", err)
	}

	return map[string]interface{}{
		"success":    true,
		"message_id": msg.ID,
		"channel_id": msg.ChannelID,
		"content":    msg.Content,
		"timestamp":  msg.Timestamp,
		"sent_via":   sentVia,
	}, nil
}

// GetMessagesParams discord_get_messages 的参数
// Limit 为指针以区分"未提供"（默认 50）与显式传 0
type GetMessagesParams struct {
	ChannelID string `json:"channel_id"`
	Limit     *int   `json:"limit"`
	Before    string `json:"before"`
	After     string `json:"after"`
}

func (s *Skills) getMessages(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	var p GetMessagesParams
	if err := decodeParams(args, &p); err != nil {
		return nil, err
	}
	if p.ChannelID == "" {
		return nil, skills.NewPreconditionError("channel_id is required")
	}

	limit := 50
	if p.Limit != nil {
		limit = *p.Limit
	}
	if limit > 100 {
		limit = 100
	}

	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	if p.Before != "" {
		query.Set("before", p.Before)
	}
	if p.After != "" {
		query.Set("after", p.After)
	}

	raw, err := s.client.Call(ctx, "/channels/"+p.ChannelID+"/messages?"+query.Encode(), ec.IntegrationID, CallOptions{})
	if err != nil {
		return nil, err
	}
	var messages []wireMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, fmt.Errorf("解析消息列表失败: %w", err)
	}

	out := make([]map[string]interface{}, 0, len(messages))
	for _, msg := range messages {
		out = append(out, map[string]interface{}{
			"id":               msg.ID,
			"content":          msg.Content,
			"author":           summarizeUser(msg.Author),
			"timestamp":        msg.Timestamp,
			"edited_timestamp": msg.EditedTimestamp,
			"embeds":           msg.Embeds,
			"attachments":      msg.Attachments,
			"reactions":        msg.Reactions,
		})
	}

	return map[string]interface{}{
		"success":     true,
		"messages":    out,
		"channel_id":  p.ChannelID,
		"total_count": len(messages),
	}, nil
}

// SendEmbedParams discord_send_embed 的参数
type SendEmbedParams struct {
	ChannelID    string `json:"channel_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Color        int    `json:"color"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	ImageURL     string `json:"image_url"`
	FooterText   string `json:"footer_text"`
}

func (s *Skills) sendEmbed(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	var p SendEmbedParams
	if err := decodeParams(args, &p); err != nil {
		return nil, err
	}
	if p.ChannelID == "" || p.Title == "" {
		return nil, skills.NewPreconditionError("channel_id and title are required")
	}

	embed := map[string]interface{}{"title": p.Title}
	if p.Description != "" {
		embed["description"] = p.Description
	}
	if p.Color != 0 {
		embed["color"] = p.Color
	}
	if p.URL != "" {
		embed["url"] = p.URL
	}
	if p.ThumbnailURL != "" {
		embed["thumbnail"] = map[string]string{"url": p.ThumbnailURL}
	}
	if p.ImageURL != "" {
		embed["image"] = map[string]string{"url": p.ImageURL}
	}
	if p.FooterText != "" {
		embed["footer"] = map[string]string{"text": p.FooterText}
	}

	raw, err := s.client.Call(ctx, "/channels/"+p.ChannelID+"/messages", ec.IntegrationID, CallOptions{
		Method: http.MethodPost,
		Body:   map[string]interface{}{"embeds": []map[string]interface{}{embed}},
	})
	if err != nil {
		return nil, err
	}
	var msg wireMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("解析消息响应失败: %w", err)
	}

	return map[string]interface{}{
		"success":    true,
		"message_id": msg.ID,
		"channel_id": msg.ChannelID,
		"embeds":     msg.Embeds,
		"timestamp":  msg.Timestamp,
	}, nil
}

// EditMessageParams discord_edit_message 的参数
type EditMessageParams struct {
	ChannelID  string `json:"channel_id"`
	MessageID  string `json:"message_id"`
	NewContent string `json:"new_content"`
}

func (s *Skills) editMessage(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	var p EditMessageParams
	if err := decodeParams(args, &p); err != nil {
		return nil, err
	}
	if p.ChannelID == "" || p.MessageID == "" || p.NewContent == "" {
		return nil, skills.NewPreconditionError("channel_id, message_id and new_content are required")
	}

	raw, err := s.client.Call(ctx, "/channels/"+p.ChannelID+"/messages/"+p.MessageID, ec.IntegrationID, CallOptions{
		Method: http.MethodPatch,
		Body:   map[string]string{"content": p.NewContent},
	})
	if err != nil {
		return nil, err
	}
	var msg wireMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("解析消息响应失败: %w", err)
	}

	return map[string]interface{}{
		"success":          true,
		"message_id":       msg.ID,
		"channel_id":       msg.ChannelID,
		"new_content":      msg.Content,
		"edited_timestamp": msg.EditedTimestamp,
	}, nil
}

// DeleteMessageParams discord_delete_message 的参数
type DeleteMessageParams struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

func (s *Skills) deleteMessage(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	var p DeleteMessageParams
	if err := decodeParams(args, &p); err != nil {
		return nil, err
	}
	if p.ChannelID == "" || p.MessageID == "" {
		return nil, skills.NewPreconditionError("channel_id and message_id are required")
	}

	if _, err := s.client.Call(ctx, "/channels/"+p.ChannelID+"/messages/"+p.MessageID, ec.IntegrationID, CallOptions{
		Method: http.MethodDelete,
	}); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success":    true,
		"message_id": p.MessageID,
		"channel_id": p.ChannelID,
		"action":     "deleted",
	}, nil
}

// AddReactionParams discord_add_reaction 的参数
type AddReactionParams struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

func (s *Skills) addReaction(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	var p AddReactionParams
	if err := decodeParams(args, &p); err != nil {
		return nil, err
	}
	if p.ChannelID == "" || p.MessageID == "" || p.Emoji == "" {
		return nil, skills.NewPreconditionError("channel_id, message_id and emoji are required")
	}

	// emoji 需要 URL 编码后才能进路径
	endpoint := "/channels/" + p.ChannelID + "/messages/" + p.MessageID + "/reactions/" + url.PathEscape(p.Emoji) + "/@me"
	if _, err := s.client.Call(ctx, endpoint, ec.IntegrationID, CallOptions{Method: http.MethodPut}); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success":    true,
		"channel_id": p.ChannelID,
		"message_id": p.MessageID,
		"emoji":      p.Emoji,
	}, nil
}

// PinMessageParams discord_pin_message / discord_unpin_message 的参数
type PinMessageParams struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

func (s *Skills) pinMessage(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	return s.togglePin(ctx, args, ec, http.MethodPut, "pinned")
}

func (s *Skills) unpinMessage(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext) (interface{}, error) {
	return s.togglePin(ctx, args, ec, http.MethodDelete, "unpinned")
}

func (s *Skills) togglePin(ctx context.Context, args json.RawMessage, ec skills.ExecutionContext, method, action string) (interface{}, error) {
	if err := requireIntegration(ec); err != nil {
		return nil, err
	}
	var p PinMessageParams
	if err := decodeParams(args, &p); err != nil {
		return nil, err
	}
	if p.ChannelID == "" || p.MessageID == "" {
		return nil, skills.NewPreconditionError("channel_id and message_id are required")
	}

	if _, err := s.client.Call(ctx, "/channels/"+p.ChannelID+"/pins/"+p.MessageID, ec.IntegrationID, CallOptions{
		Method: method,
	}); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success":    true,
		"message_id": p.MessageID,
		"channel_id": p.ChannelID,
		"action":     action,
	}, nil
}
