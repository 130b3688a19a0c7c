package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/syllabi/backend/internal/pkg/skills"
)

// MetadataStore 集成元数据查询接口
// 提供连接时记录的默认服务器 ID
type MetadataStore interface {
	DefaultGuildID(ctx context.Context, integrationID string) (string, error)
}

// ResolveGuildID 两段式解析服务器 ID：显式参数优先，其次集成元数据
// 集成不存在或没有记录服务器时返回 ContextResolutionError，不做任何网络探测
// 元数据读取本身失败（如数据库故障）原样上抛，不能当成配置错误
func ResolveGuildID(ctx context.Context, store MetadataStore, integrationID, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	stored, err := store.DefaultGuildID(ctx, integrationID)
	if err != nil {
		if errors.Is(err, skills.ErrIntegrationNotFound) {
			return "", &skills.ContextResolutionError{IntegrationID: integrationID, Target: "discord server id"}
		}
		return "", fmt.Errorf("读取集成元数据失败: %w", err)
	}
	if stored == "" {
		return "", &skills.ContextResolutionError{IntegrationID: integrationID, Target: "discord server id"}
	}
	return stored, nil
}
