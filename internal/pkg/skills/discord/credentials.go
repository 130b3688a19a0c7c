// Package discord 实现 Discord 内置 skill 家族
// 结构：凭证解析 -> 带认证的请求适配器 -> 上下文解析 -> 各 skill 实现
package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/syllabi/backend/internal/pkg/skills"
)

// minTokenLength bot token 的最小合理长度
// 低于该长度的 token 必然无效，直接拒绝而不浪费一次外呼
const minTokenLength = 50

// TokenStore 凭证存储接口（特权解密调用）
// 由 IntegrationService 实现；测试中使用 fake
// 约定：记录不存在返回 wrap 了 skills.ErrTokenNotFound 的错误
type TokenStore interface {
	DecryptToken(ctx context.Context, integrationID string) (string, error)
}

// resolveToken 解析集成的 bot token
// 每次调用都重新走解密，绝不缓存，保证 token 轮换/吊销后立即生效
// 错误信息区分三种情况：无记录 / 解密失败 / 形状不合法
func resolveToken(ctx context.Context, store TokenStore, integrationID string) (string, error) {
	if integrationID == "" {
		return "", skills.NewPreconditionError("integration id is required")
	}

	token, err := store.DecryptToken(ctx, integrationID)
	if err != nil {
		reason := fmt.Errorf("%w: %v", skills.ErrTokenDecrypt, err)
		if errors.Is(err, skills.ErrTokenNotFound) {
			reason = skills.ErrTokenNotFound
		}
		return "", &skills.CredentialError{IntegrationID: integrationID, Reason: reason}
	}

	if len(token) < minTokenLength {
		return "", &skills.CredentialError{
			IntegrationID: integrationID,
			Reason:        fmt.Errorf("%w: length %d", skills.ErrTokenMalformed, len(token)),
		}
	}

	return token, nil
}
