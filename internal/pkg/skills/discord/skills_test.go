package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/syllabi/backend/internal/pkg/skills"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]interface{}
	Header http.Header
}

// harness 录制所有出站请求的 fake Discord 服务
type harness struct {
	t        *testing.T
	srv      *httptest.Server
	requests []recordedRequest
	meta     *fakeMetaStore
	skills   *Skills
}

func newHarness(t *testing.T, respond func(r *http.Request) (int, string)) *harness {
	h := &harness{t: t, meta: &fakeMetaStore{guildID: "guild-1"}}
	h.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			rec.Body = body
		}
		h.requests = append(h.requests, rec)

		status, payload := respond(r)
		w.WriteHeader(status)
		fmt.Fprint(w, payload)
	}))
	t.Cleanup(h.srv.Close)

	client := NewClient(h.srv.URL, &fakeTokenStore{token: validToken}, time.Second)
	h.skills = New(client, h.meta)
	return h
}

func testEC() skills.ExecutionContext {
	return skills.ExecutionContext{
		ChatbotID:     "bot-1",
		UserID:        "user-1",
		IntegrationID: "intg-1",
		Channel:       "discord",
	}
}

func rawArgs(t *testing.T, v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	assert.NoError(t, err)
	return data
}

func TestSendMessageToChannel(t *testing.T) {
	h := newHarness(t, func(r *http.Request) (int, string) {
		return http.StatusOK, `{"id":"msg-1","channel_id":"chan-1","content":"hello","timestamp":"2026-01-01T00:00:00Z"}`
	})

	result, err := h.skills.sendMessage(context.Background(), rawArgs(t, map[string]string{
		"message":    "hello",
		"channel_id": "chan-1",
	}), testEC())

	assert.NoError(t, err)
	assert.Len(t, h.requests, 1, "频道发送只需一次请求")
	assert.Equal(t, "/channels/chan-1/messages", h.requests[0].Path)

	out := result.(map[string]interface{})
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "msg-1", out["message_id"])
	assert.Equal(t, "channel", out["sent_via"])
}

func TestSendMessageDMUsesTwoCalls(t *testing.T) {
	h := newHarness(t, func(r *http.Request) (int, string) {
		if r.URL.Path == "/users/@me/channels" {
			return http.StatusOK, `{"id":"dm-chan"}`
		}
		return http.StatusOK, `{"id":"msg-2","channel_id":"dm-chan","content":"hi","timestamp":"2026-01-01T00:00:00Z"}`
	})

	result, err := h.skills.sendMessage(context.Background(), rawArgs(t, map[string]string{
		"message": "hi",
		"user_id": "user-9",
	}), testEC())

	assert.NoError(t, err)
	assert.Len(t, h.requests, 2, "私信必须先建 DM 频道再发消息")
	assert.Equal(t, "/users/@me/channels", h.requests[0].Path)
	assert.Equal(t, "user-9", h.requests[0].Body["recipient_id"])
	assert.Equal(t, "/channels/dm-chan/messages", h.requests[1].Path)

	out := result.(map[string]interface{})
	assert.Equal(t, "dm", out["sent_via"])
}

func TestSendMessageMissingTarget(t *testing.T) {
	h := newHarness(t, func(r *http.Request) (int, string) { return http.StatusOK, `{}` })

	_, err := h.skills.sendMessage(context.Background(), rawArgs(t, map[string]string{
		"message": "hello",
	}), testEC())

	var pre *skills.PreconditionError
	assert.ErrorAs(t, err, &pre)
	assert.Empty(t, h.requests, "前置失败不应发出网络请求")
}

func TestSkillsRequireIntegration(t *testing.T) {
	h := newHarness(t, func(r *http.Request) (int, string) { return http.StatusOK, `{}` })

	ec := testEC()
	ec.IntegrationID = ""
	_, err := h.skills.sendMessage(context.Background(), rawArgs(t, map[string]string{
		"message":    "hello",
		"channel_id": "chan-1",
	}), ec)

	var pre *skills.PreconditionError
	assert.ErrorAs(t, err, &pre, "缺少集成应在发请求前失败")
	assert.Empty(t, h.requests)
}

func TestGetMessagesLimitClamp(t *testing.T) {
	cases := []struct {
		name      string
		args      map[string]interface{}
		wantLimit string
	}{
		{"默认", map[string]interface{}{"channel_id": "c1"}, "50"},
		{"超上限钳制", map[string]interface{}{"channel_id": "c1", "limit": 500}, "100"},
		{"合法值透传", map[string]interface{}{"channel_id": "c1", "limit": 5}, "5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, func(r *http.Request) (int, string) { return http.StatusOK, `[]` })

			_, err := h.skills.getMessages(context.Background(), rawArgs(t, tc.args), testEC())
			assert.NoError(t, err)
			assert.Len(t, h.requests, 1)
			assert.Equal(t, tc.wantLimit, h.requests[0].Query.Get("limit"))
		})
	}
}

func TestListMembersLimitClamp(t *testing.T) {
	h := newHarness(t, func(r *http.Request) (int, string) { return http.StatusOK, `[]` })

	_, err := h.skills.listMembers(context.Background(), rawArgs(t, map[string]interface{}{
		"limit": 5000,
	}), testEC())

	assert.NoError(t, err)
	assert.Equal(t, "1000", h.requests[0].Query.Get("limit"), "成员数上限 1000")
}

func TestListChannelsTypeFilter(t *testing.T) {
	channelsJSON := `[
		{"id":"c1","name":"general","type":0,"position":0},
		{"id":"c2","name":"music","type":2,"position":1},
		{"id":"c3","name":"random","type":0,"position":2}
	]`

	t.Run("按类型过滤", func(t *testing.T) {
		h := newHarness(t, func(r *http.Request) (int, string) { return http.StatusOK, channelsJSON })

		result, err := h.skills.listChannels(context.Background(), rawArgs(t, map[string]string{
			"channel_type": "text",
		}), testEC())

		assert.NoError(t, err)
		out := result.(map[string]interface{})
		assert.Equal(t, 2, out["total_count"], "过滤后只剩文本频道")
	})

	t.Run("未知类型不过滤", func(t *testing.T) {
		h := newHarness(t, func(r *http.Request) (int, string) { return http.StatusOK, channelsJSON })

		result, err := h.skills.listChannels(context.Background(), rawArgs(t, map[string]string{
			"channel_type": "store",
		}), testEC())

		assert.NoError(t, err)
		out := result.(map[string]interface{})
		assert.Equal(t, 3, out["total_count"])
	})
}

func TestBanUserClampsDeleteDays(t *testing.T) {
	cases := []struct {
		given int
		want  float64
	}{
		{30, 7},
		{-3, 0},
		{5, 5},
	}

	for _, tc := range cases {
		h := newHarness(t, func(r *http.Request) (int, string) { return http.StatusNoContent, "" })

		_, err := h.skills.banUser(context.Background(), rawArgs(t, map[string]interface{}{
			"user_id":             "u1",
			"delete_message_days": tc.given,
		}), testEC())

		assert.NoError(t, err)
		assert.Equal(t, http.MethodPut, h.requests[0].Method)
		assert.Equal(t, "/guilds/guild-1/bans/u1", h.requests[0].Path)
		assert.Equal(t, tc.want, h.requests[0].Body["delete_message_days"], "删除天数应钳制到 [0,7]")
	}
}

func TestTimeoutUserClampsDuration(t *testing.T) {
	h := newHarness(t, func(r *http.Request) (int, string) { return http.StatusOK, `{}` })

	result, err := h.skills.timeoutUser(context.Background(), rawArgs(t, map[string]interface{}{
		"user_id":          "u1",
		"duration_minutes": 999999,
	}), testEC())

	assert.NoError(t, err)
	out := result.(map[string]interface{})
	assert.Equal(t, maxTimeoutMinutes, out["duration_minutes"], "时长应钳制到 28 天")
	assert.NotEmpty(t, h.requests[0].Body["communication_disabled_until"], "提交的是绝对截止时间")
	assert.Equal(t, defaultAuditReason, h.requests[0].Header.Get("X-Audit-Log-Reason"))
}

func TestTimeoutUserMinimumOneMinute(t *testing.T) {
	h := newHarness(t, func(r *http.Request) (int, string) { return http.StatusOK, `{}` })

	result, err := h.skills.timeoutUser(context.Background(), rawArgs(t, map[string]interface{}{
		"user_id":          "u1",
		"duration_minutes": 0,
	}), testEC())

	assert.NoError(t, err)
	out := result.(map[string]interface{})
	assert.Equal(t, 1, out["duration_minutes"])
}

func TestKickUserAuditReason(t *testing.T) {
	h := newHarness(t, func(r *http.Request) (int, string) { return http.StatusNoContent, "" })

	_, err := h.skills.kickUser(context.Background(), rawArgs(t, map[string]string{
		"user_id": "u1",
		"reason":  "spamming",
	}), testEC())

	assert.NoError(t, err)
	assert.Equal(t, http.MethodDelete, h.requests[0].Method)
	assert.Equal(t, "/guilds/guild-1/members/u1", h.requests[0].Path)
	assert.Equal(t, "spamming", h.requests[0].Header.Get("X-Audit-Log-Reason"))
}

func TestManageRolesMethods(t *testing.T) {
	t.Run("add 用 PUT", func(t *testing.T) {
		h := newHarness(t, func(r *http.Request) (int, string) { return http.StatusNoContent, "" })

		_, err := h.skills.manageRoles(context.Background(), rawArgs(t, map[string]string{
			"user_id": "u1", "action": "add", "role_id": "r1",
		}), testEC())

		assert.NoError(t, err)
		assert.Equal(t, http.MethodPut, h.requests[0].Method)
		assert.Equal(t, "/guilds/guild-1/members/u1/roles/r1", h.requests[0].Path)
		assert.Empty(t, h.requests[0].Header.Get("X-Audit-Log-Reason"), "未提供原因不带审计头")
	})

	t.Run("remove 用 DELETE", func(t *testing.T) {
		h := newHarness(t, func(r *http.Request) (int, string) { return http.StatusNoContent, "" })

		_, err := h.skills.manageRoles(context.Background(), rawArgs(t, map[string]string{
			"user_id": "u1", "action": "remove", "role_id": "r1", "reason": "demoted",
		}), testEC())

		assert.NoError(t, err)
		assert.Equal(t, http.MethodDelete, h.requests[0].Method)
		assert.Equal(t, "demoted", h.requests[0].Header.Get("X-Audit-Log-Reason"))
	})

	t.Run("非法动作前置失败", func(t *testing.T) {
		h := newHarness(t, func(r *http.Request) (int, string) { return http.StatusNoContent, "" })

		_, err := h.skills.manageRoles(context.Background(), rawArgs(t, map[string]string{
			"user_id": "u1", "action": "promote", "role_id": "r1",
		}), testEC())

		var pre *skills.PreconditionError
		assert.ErrorAs(t, err, &pre)
		assert.Empty(t, h.requests)
	})
}

func TestAddReactionEncodesEmoji(t *testing.T) {
	var rawPath string
	h := newHarness(t, func(r *http.Request) (int, string) {
		rawPath = r.URL.EscapedPath()
		return http.StatusNoContent, ""
	})

	_, err := h.skills.addReaction(context.Background(), rawArgs(t, map[string]string{
		"channel_id": "c1", "message_id": "m1", "emoji": "👍",
	}), testEC())

	assert.NoError(t, err)
	assert.Contains(t, rawPath, url.PathEscape("👍"), "emoji 必须 URL 编码进路径")
	assert.Contains(t, rawPath, "/reactions/")
	assert.Contains(t, rawPath, "/@me")
}

func TestCreateInviteDefaults(t *testing.T) {
	h := newHarness(t, func(r *http.Request) (int, string) {
		return http.StatusOK, `{"code":"abc123"}`
	})

	result, err := h.skills.createInvite(context.Background(), rawArgs(t, map[string]string{
		"channel_id": "c1",
	}), testEC())

	assert.NoError(t, err)
	body := h.requests[0].Body
	assert.Equal(t, float64(86400), body["max_age"], "默认 24 小时有效")
	assert.Equal(t, float64(0), body["max_uses"])
	assert.Equal(t, false, body["temporary"])

	out := result.(map[string]interface{})
	assert.Equal(t, "https://discord.gg/abc123", out["invite_url"])
}

func TestPinAndUnpinMessage(t *testing.T) {
	h := newHarness(t, func(r *http.Request) (int, string) { return http.StatusNoContent, "" })

	_, err := h.skills.pinMessage(context.Background(), rawArgs(t, map[string]string{
		"channel_id": "c1", "message_id": "m1",
	}), testEC())
	assert.NoError(t, err)

	_, err = h.skills.unpinMessage(context.Background(), rawArgs(t, map[string]string{
		"channel_id": "c1", "message_id": "m1",
	}), testEC())
	assert.NoError(t, err)

	assert.Equal(t, http.MethodPut, h.requests[0].Method)
	assert.Equal(t, http.MethodDelete, h.requests[1].Method)
	assert.Equal(t, "/channels/c1/pins/m1", h.requests[0].Path)
	assert.Equal(t, h.requests[0].Path, h.requests[1].Path)
}

func TestTestConnectionSuccess(t *testing.T) {
	h := newHarness(t, func(r *http.Request) (int, string) {
		switch r.URL.Path {
		case "/users/@me":
			return http.StatusOK, `{"id":"bot-1","username":"syllabi-bot","discriminator":"0001"}`
		case "/guilds/guild-1":
			return http.StatusOK, `{"id":"guild-1","name":"Test Guild","member_count":42}`
		default:
			return http.StatusOK, `[{"id":"c1","name":"general","type":0}]`
		}
	})

	result, err := h.skills.testConnection(context.Background(), nil, testEC())

	assert.NoError(t, err)
	out := result.(map[string]interface{})
	assert.Equal(t, true, out["success"])
	assert.Equal(t, 1, out["channels_count"])
	assert.Len(t, h.requests, 3, "体检包含三步探测")
}

func TestTestConnectionSwallowsFailures(t *testing.T) {
	h := newHarness(t, func(r *http.Request) (int, string) {
		return http.StatusForbidden, `{"message":"Missing Access"}`
	})

	result, err := h.skills.testConnection(context.Background(), nil, testEC())

	assert.NoError(t, err, "体检失败转结果而不是错误")
	out := result.(map[string]interface{})
	assert.Equal(t, false, out["success"])
	assert.NotEmpty(t, out["error"])
	assert.Equal(t, "Discord bot connection failed. Please check your integration settings.", out["message"])
}

func TestRegisterAllSkills(t *testing.T) {
	h := newHarness(t, func(r *http.Request) (int, string) { return http.StatusOK, `{}` })

	registry := skills.NewRegistry()
	err := h.skills.Register(registry)

	assert.NoError(t, err)
	registered := registry.List()
	assert.Len(t, registered, 20, "20 个 Discord skill 全部注册")

	handlers := h.skills.handlers()
	for _, sk := range registered {
		def := sk.Definition()
		_, ok := handlers[SkillName(def.Name)]
		assert.True(t, ok, "%s 缺少实现", def.Name)
		assert.Equal(t, categoryDiscord, def.Category)
	}
}

func TestDefinitionParameterConstraints(t *testing.T) {
	byName := make(map[string]skills.Definition)
	for _, def := range Definitions() {
		byName[def.Name] = def
	}

	// create_channel 的 type 是目录里唯一的整数枚举
	channelType := byName[string(SkillCreateChannel)].Parameters.Properties["type"]
	assert.Equal(t, []interface{}{0, 2, 4, 5, 13}, channelType.Enum)

	messagesLimit := byName[string(SkillGetMessages)].Parameters.Properties["limit"]
	if assert.NotNil(t, messagesLimit.Minimum) {
		assert.Equal(t, 1, *messagesLimit.Minimum)
	}
	if assert.NotNil(t, messagesLimit.Maximum) {
		assert.Equal(t, 100, *messagesLimit.Maximum)
	}

	membersLimit := byName[string(SkillListMembers)].Parameters.Properties["limit"]
	if assert.NotNil(t, membersLimit.Minimum) {
		assert.Equal(t, 1, *membersLimit.Minimum)
	}
	if assert.NotNil(t, membersLimit.Maximum) {
		assert.Equal(t, 1000, *membersLimit.Maximum)
	}
}
