package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/syllabi/backend/internal/model"
	"github.com/syllabi/backend/internal/pkg/crypto"
	"github.com/syllabi/backend/internal/pkg/skills"
	"github.com/syllabi/backend/internal/repository"
)

// IntegrationService 外部集成服务接口
// 同时实现 discord 包的 TokenStore 与 MetadataStore：
// skill 层只见接口，不触碰存储与加密细节
type IntegrationService interface {
	// Connect 建立集成，token 加密后入库
	Connect(ctx context.Context, req *ConnectIntegrationRequest) (*model.ConnectedIntegration, error)

	// Disconnect 断开集成，记录保留、状态置 revoked
	Disconnect(ctx context.Context, integrationID string) error

	// Delete 彻底删除集成记录
	Delete(ctx context.Context, integrationID string) error

	// Get 获取集成记录
	Get(ctx context.Context, integrationID string) (*model.ConnectedIntegration, error)

	// List 列出用户的集成，可按 provider 过滤
	List(ctx context.Context, userID, provider string) ([]*model.ConnectedIntegration, error)

	// UpdateMetadata 覆盖集成元数据
	UpdateMetadata(ctx context.Context, integrationID string, metadata model.IntegrationMetadata) error

	// DecryptToken 解出集成的明文 token，仅供 skill 层使用
	DecryptToken(ctx context.Context, integrationID string) (string, error)

	// DefaultGuildID 读取连接时记录的默认服务器 ID
	DefaultGuildID(ctx context.Context, integrationID string) (string, error)
}

// ConnectIntegrationRequest 建立集成请求
type ConnectIntegrationRequest struct {
	UserID   string                    `json:"user_id" binding:"required"`
	Provider string                    `json:"provider" binding:"required"`
	Name     string                    `json:"name"`
	Token    string                    `json:"token" binding:"required"`
	Metadata model.IntegrationMetadata `json:"metadata"`
}

// integrationService IntegrationService 的实现
type integrationService struct {
	repo   repository.IntegrationRepository
	sealer *crypto.Sealer
}

// NewIntegrationService 创建集成服务
func NewIntegrationService(repo repository.IntegrationRepository, sealer *crypto.Sealer) IntegrationService {
	return &integrationService{repo: repo, sealer: sealer}
}

// Connect 建立集成，token 加密后入库
func (s *integrationService) Connect(ctx context.Context, req *ConnectIntegrationRequest) (*model.ConnectedIntegration, error) {
	klog.V(6).Infof("Connect: user=%s provider=%s", req.UserID, req.Provider)

	encrypted, err := s.sealer.Seal(req.Token)
	if err != nil {
		return nil, fmt.Errorf("加密 token 失败: %w", err)
	}

	metadata, err := json.Marshal(req.Metadata)
	if err != nil {
		return nil, fmt.Errorf("序列化元数据失败: %w", err)
	}

	integration := &model.ConnectedIntegration{
		PublicID:       uuid.NewString(),
		UserID:         req.UserID,
		Provider:       req.Provider,
		Name:           req.Name,
		EncryptedToken: encrypted,
		Metadata:       string(metadata),
		Status:         "connected",
	}
	if err := s.repo.Create(ctx, integration); err != nil {
		return nil, err
	}

	klog.V(6).Infof("Connect: integration %s created, token=%s", integration.PublicID, crypto.Mask(req.Token))
	return integration, nil
}

// Disconnect 断开集成
func (s *integrationService) Disconnect(ctx context.Context, integrationID string) error {
	return s.repo.UpdateStatus(ctx, integrationID, "revoked")
}

// Delete 彻底删除集成
func (s *integrationService) Delete(ctx context.Context, integrationID string) error {
	return s.repo.Delete(ctx, integrationID)
}

// Get 获取集成记录
func (s *integrationService) Get(ctx context.Context, integrationID string) (*model.ConnectedIntegration, error) {
	return s.repo.GetByPublicID(ctx, integrationID)
}

// List 列出用户的集成
func (s *integrationService) List(ctx context.Context, userID, provider string) ([]*model.ConnectedIntegration, error) {
	if provider != "" {
		return s.repo.ListByUserAndProvider(ctx, userID, provider)
	}
	return s.repo.ListByUser(ctx, userID)
}

// UpdateMetadata 覆盖集成元数据
func (s *integrationService) UpdateMetadata(ctx context.Context, integrationID string, metadata model.IntegrationMetadata) error {
	integration, err := s.repo.GetByPublicID(ctx, integrationID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("序列化元数据失败: %w", err)
	}
	integration.Metadata = string(data)
	return s.repo.Update(ctx, integration)
}

// DecryptToken 解出明文 token
// 错误映射到 skill 层的哨兵：无记录/已断开 -> ErrTokenNotFound，解密失败 -> ErrTokenDecrypt
func (s *integrationService) DecryptToken(ctx context.Context, integrationID string) (string, error) {
	integration, err := s.repo.GetByPublicID(ctx, integrationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", skills.ErrTokenNotFound, integrationID)
		}
		return "", err
	}
	if integration.Status != "connected" || integration.EncryptedToken == "" {
		return "", fmt.Errorf("%w: %s", skills.ErrTokenNotFound, integrationID)
	}

	token, err := s.sealer.Open(integration.EncryptedToken)
	if err != nil {
		klog.Errorf("DecryptToken: integration %s decrypt failed: %v", integrationID, err)
		return "", fmt.Errorf("%w: %v", skills.ErrTokenDecrypt, err)
	}
	return token, nil
}

// DefaultGuildID 读取连接时记录的默认服务器 ID
func (s *integrationService) DefaultGuildID(ctx context.Context, integrationID string) (string, error) {
	integration, err := s.repo.GetByPublicID(ctx, integrationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", skills.ErrIntegrationNotFound, integrationID)
		}
		return "", err
	}
	if integration.Metadata == "" {
		return "", nil
	}
	var metadata model.IntegrationMetadata
	if err := json.Unmarshal([]byte(integration.Metadata), &metadata); err != nil {
		return "", fmt.Errorf("解析集成元数据失败: %w", err)
	}
	return metadata.GuildID, nil
}
