package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/syllabi/backend/internal/pkg/skills"
)

var validToken = strings.Repeat("x", 60)

type fakeTokenStore struct {
	token string
	err   error
	calls int
}

func (f *fakeTokenStore) DecryptToken(ctx context.Context, integrationID string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

type fakeMetaStore struct {
	guildID string
	err     error
	calls   int
}

func (f *fakeMetaStore) DefaultGuildID(ctx context.Context, integrationID string) (string, error) {
	f.calls++
	return f.guildID, f.err
}

func TestResolveTokenMissingIntegration(t *testing.T) {
	store := &fakeTokenStore{token: validToken}
	_, err := resolveToken(context.Background(), store, "")

	var pre *skills.PreconditionError
	assert.ErrorAs(t, err, &pre, "缺少集成 ID 应返回前置条件错误")
	assert.Equal(t, 0, store.calls, "前置失败不应触发凭证查询")
}

func TestResolveTokenNotFound(t *testing.T) {
	store := &fakeTokenStore{err: fmt.Errorf("%w: intg-1", skills.ErrTokenNotFound)}
	_, err := resolveToken(context.Background(), store, "intg-1")

	var credErr *skills.CredentialError
	assert.ErrorAs(t, err, &credErr, "无记录应返回凭证错误")
	assert.ErrorIs(t, err, skills.ErrTokenNotFound)
	assert.Equal(t, "intg-1", credErr.IntegrationID)
}

func TestResolveTokenDecryptFailure(t *testing.T) {
	store := &fakeTokenStore{err: errors.New("cipher mismatch")}
	_, err := resolveToken(context.Background(), store, "intg-1")

	assert.ErrorIs(t, err, skills.ErrTokenDecrypt, "解密失败应映射到 ErrTokenDecrypt")
}

func TestResolveTokenTooShort(t *testing.T) {
	store := &fakeTokenStore{token: "short-token"}
	_, err := resolveToken(context.Background(), store, "intg-1")

	var credErr *skills.CredentialError
	assert.ErrorAs(t, err, &credErr)
	assert.ErrorIs(t, err, skills.ErrTokenMalformed, "长度不足应视为格式非法")
}

func TestResolveTokenNoCaching(t *testing.T) {
	store := &fakeTokenStore{token: validToken}
	ctx := context.Background()

	_, err := resolveToken(ctx, store, "intg-1")
	assert.NoError(t, err)
	_, err = resolveToken(ctx, store, "intg-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, store.calls, "每次调用都应重新解析凭证")
}

func TestClientAuthorizationHeaderAuthoritative(t *testing.T) {
	var gotAuth, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		fmt.Fprint(w, `{"id":"1"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &fakeTokenStore{token: validToken}, time.Second)
	_, err := client.Call(context.Background(), "/users/@me", "intg-1", CallOptions{
		Headers: map[string]string{
			"Authorization": "Bearer attacker",
			"Content-Type":  "text/plain",
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "Bot "+validToken, gotAuth, "认证头必须由适配器注入且不可覆盖")
	assert.Equal(t, "application/json", gotContentType)
}

func TestClientStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{http.StatusUnauthorized, `{"message":"401: Unauthorized"}`, func(t *testing.T, err error) {
			var e *skills.AuthenticationError
			assert.ErrorAs(t, err, &e)
			assert.NotContains(t, err.Error(), "Unauthorized", "401 的响应体不应出现在错误信息中")
			assert.Contains(t, err.Error(), "reconnect")
		}},
		{http.StatusForbidden, `{"message":"Missing Permissions"}`, func(t *testing.T, err error) {
			var e *skills.PermissionError
			assert.ErrorAs(t, err, &e)
		}},
		{http.StatusNotFound, `{"message":"Unknown Channel"}`, func(t *testing.T, err error) {
			var e *skills.NotFoundError
			assert.ErrorAs(t, err, &e)
		}},
		{http.StatusTooManyRequests, `{"retry_after":2.5}`, func(t *testing.T, err error) {
			var e *skills.RateLimitError
			assert.ErrorAs(t, err, &e)
			assert.Equal(t, 2.5, e.RetryAfter)
			assert.True(t, skills.IsRetryable(err), "限流错误应标记为可重试")
		}},
		{http.StatusBadGateway, `upstream down`, func(t *testing.T, err error) {
			var e *skills.APIError
			assert.ErrorAs(t, err, &e)
			assert.Equal(t, http.StatusBadGateway, e.Status)
			assert.Contains(t, e.Body, "upstream down")
			assert.False(t, skills.IsRetryable(err))
		}},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("status_%d", tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()

			client := NewClient(srv.URL, &fakeTokenStore{token: validToken}, time.Second)
			_, err := client.Call(context.Background(), "/anything", "intg-1", CallOptions{})
			assert.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestClientMalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"broken`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &fakeTokenStore{token: validToken}, time.Second)
	_, err := client.Call(context.Background(), "/users/@me", "intg-1", CallOptions{})

	var apiErr *skills.APIError
	assert.ErrorAs(t, err, &apiErr, "2xx 响应体不是合法 JSON 应映射为 APIError")
}

func TestClientNoContentResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &fakeTokenStore{token: validToken}, time.Second)
	raw, err := client.Call(context.Background(), "/channels/1/messages/2", "intg-1", CallOptions{Method: http.MethodDelete})

	assert.NoError(t, err)
	assert.Nil(t, raw, "204 响应没有 body")
}

func TestClientNoNetworkOnBadCredentials(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &fakeTokenStore{token: "short"}, time.Second)
	_, err := client.Call(context.Background(), "/users/@me", "intg-1", CallOptions{})

	assert.Error(t, err)
	assert.Equal(t, 0, requests, "凭证失败不应发出任何网络请求")
}

func TestResolveGuildIDExplicitWins(t *testing.T) {
	meta := &fakeMetaStore{guildID: "stored-guild"}
	guildID, err := ResolveGuildID(context.Background(), meta, "intg-1", "explicit-guild")

	assert.NoError(t, err)
	assert.Equal(t, "explicit-guild", guildID)
	assert.Equal(t, 0, meta.calls, "显式参数命中时不应查询元数据")
}

func TestResolveGuildIDFallsBackToMetadata(t *testing.T) {
	meta := &fakeMetaStore{guildID: "stored-guild"}
	guildID, err := ResolveGuildID(context.Background(), meta, "intg-1", "")

	assert.NoError(t, err)
	assert.Equal(t, "stored-guild", guildID)
}

func TestResolveGuildIDUnresolvable(t *testing.T) {
	meta := &fakeMetaStore{guildID: ""}
	_, err := ResolveGuildID(context.Background(), meta, "intg-1", "")

	var ctxErr *skills.ContextResolutionError
	assert.ErrorAs(t, err, &ctxErr, "两处都没有服务器 ID 应返回上下文解析错误")
	assert.Equal(t, "intg-1", ctxErr.IntegrationID)
}

func TestResolveGuildIDUnknownIntegration(t *testing.T) {
	meta := &fakeMetaStore{err: fmt.Errorf("%w: intg-1", skills.ErrIntegrationNotFound)}
	_, err := ResolveGuildID(context.Background(), meta, "intg-1", "")

	var ctxErr *skills.ContextResolutionError
	assert.ErrorAs(t, err, &ctxErr, "集成不存在属于配置问题，应返回上下文解析错误")
}

func TestResolveGuildIDStoreFailurePropagates(t *testing.T) {
	storeErr := errors.New("database is locked")
	meta := &fakeMetaStore{err: storeErr}
	_, err := ResolveGuildID(context.Background(), meta, "intg-1", "")

	var ctxErr *skills.ContextResolutionError
	assert.False(t, errors.As(err, &ctxErr), "存储故障不应被归类为上下文解析错误")
	assert.ErrorIs(t, err, storeErr, "原始存储错误应保留在错误链上")
}
