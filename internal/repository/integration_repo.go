package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/syllabi/backend/internal/model"
)

// IntegrationRepository 已连接集成仓储接口
type IntegrationRepository interface {
	// Create 创建集成记录
	Create(ctx context.Context, integration *model.ConnectedIntegration) error

	// Update 更新集成记录
	Update(ctx context.Context, integration *model.ConnectedIntegration) error

	// GetByPublicID 根据对外 ID 获取
	GetByPublicID(ctx context.Context, publicID string) (*model.ConnectedIntegration, error)

	// ListByUser 列出用户的全部集成
	ListByUser(ctx context.Context, userID string) ([]*model.ConnectedIntegration, error)

	// ListByUserAndProvider 按提供方过滤用户的集成
	ListByUserAndProvider(ctx context.Context, userID, provider string) ([]*model.ConnectedIntegration, error)

	// UpdateStatus 更新连接状态
	UpdateStatus(ctx context.Context, publicID, status string) error

	// Delete 删除集成记录
	Delete(ctx context.Context, publicID string) error
}

// integrationRepository IntegrationRepository 的实现
type integrationRepository struct {
	db *gorm.DB
}

// NewIntegrationRepository 创建集成仓储
func NewIntegrationRepository(db *gorm.DB) IntegrationRepository {
	return &integrationRepository{db: db}
}

func (r *integrationRepository) Create(ctx context.Context, integration *model.ConnectedIntegration) error {
	return r.db.WithContext(ctx).Create(integration).Error
}

func (r *integrationRepository) Update(ctx context.Context, integration *model.ConnectedIntegration) error {
	return r.db.WithContext(ctx).Save(integration).Error
}

func (r *integrationRepository) GetByPublicID(ctx context.Context, publicID string) (*model.ConnectedIntegration, error) {
	var integration model.ConnectedIntegration
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&integration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &integration, nil
}

func (r *integrationRepository) ListByUser(ctx context.Context, userID string) ([]*model.ConnectedIntegration, error) {
	var integrations []*model.ConnectedIntegration
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&integrations).Error
	return integrations, err
}

func (r *integrationRepository) ListByUserAndProvider(ctx context.Context, userID, provider string) ([]*model.ConnectedIntegration, error) {
	var integrations []*model.ConnectedIntegration
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		Order("created_at DESC").
		Find(&integrations).Error
	return integrations, err
}

func (r *integrationRepository) UpdateStatus(ctx context.Context, publicID, status string) error {
	result := r.db.WithContext(ctx).
		Model(&model.ConnectedIntegration{}).
		Where("public_id = ?", publicID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *integrationRepository) Delete(ctx context.Context, publicID string) error {
	result := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		Delete(&model.ConnectedIntegration{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
