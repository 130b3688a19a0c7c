package discord

import "encoding/json"

// Discord REST 响应的线格式实体
// 只声明消费到的字段，其余忽略

type wireUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
	Bot           bool   `json:"bot"`
	System        bool   `json:"system"`
	PublicFlags   int    `json:"public_flags"`
}

type wireChannel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     int    `json:"type"`
	Topic    string `json:"topic"`
	Position int    `json:"position"`
	ParentID string `json:"parent_id"`
	NSFW     bool   `json:"nsfw"`
}

type wireMessage struct {
	ID              string            `json:"id"`
	ChannelID       string            `json:"channel_id"`
	Content         string            `json:"content"`
	Author          wireUser          `json:"author"`
	Timestamp       string            `json:"timestamp"`
	EditedTimestamp *string           `json:"edited_timestamp"`
	Embeds          []json.RawMessage `json:"embeds"`
	Attachments     []json.RawMessage `json:"attachments"`
	Reactions       []json.RawMessage `json:"reactions"`
}

type wireMember struct {
	User         wireUser `json:"user"`
	Nick         string   `json:"nick"`
	Roles        []string `json:"roles"`
	JoinedAt     string   `json:"joined_at"`
	PremiumSince *string  `json:"premium_since"`
}

type wireRole struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       int    `json:"color"`
	Hoist       bool   `json:"hoist"`
	Position    int    `json:"position"`
	Permissions string `json:"permissions"`
	Managed     bool   `json:"managed"`
	Mentionable bool   `json:"mentionable"`
}

type wireGuild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
}

type wireInvite struct {
	Code      string      `json:"code"`
	Channel   wireChannel `json:"channel"`
	Inviter   *wireUser   `json:"inviter"`
	Uses      int         `json:"uses"`
	MaxUses   int         `json:"max_uses"`
	MaxAge    int         `json:"max_age"`
	Temporary bool        `json:"temporary"`
	CreatedAt string      `json:"created_at"`
	ExpiresAt *string     `json:"expires_at"`
}

// 归一化输出中的公共片段

type userSummary struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar,omitempty"`
}

type channelSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     int    `json:"type"`
	Topic    string `json:"topic,omitempty"`
	Position int    `json:"position"`
	ParentID string `json:"parent_id,omitempty"`
	NSFW     bool   `json:"nsfw,omitempty"`
}

type memberSummary struct {
	User         userSummary `json:"user"`
	Nick         string      `json:"nick,omitempty"`
	Roles        []string    `json:"roles"`
	JoinedAt     string      `json:"joined_at"`
	PremiumSince *string     `json:"premium_since,omitempty"`
}

func summarizeUser(u wireUser) userSummary {
	return userSummary{ID: u.ID, Username: u.Username, Discriminator: u.Discriminator, Avatar: u.Avatar}
}

func summarizeChannel(c wireChannel) channelSummary {
	return channelSummary{ID: c.ID, Name: c.Name, Type: c.Type, Topic: c.Topic, Position: c.Position, ParentID: c.ParentID, NSFW: c.NSFW}
}

func summarizeMember(m wireMember) memberSummary {
	return memberSummary{User: summarizeUser(m.User), Nick: m.Nick, Roles: m.Roles, JoinedAt: m.JoinedAt, PremiumSince: m.PremiumSince}
}
