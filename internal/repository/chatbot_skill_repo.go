package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/syllabi/backend/internal/model"
)

// ChatbotSkillRepository chatbot 与 skill 关联仓储接口
type ChatbotSkillRepository interface {
	// Upsert 建立或更新关联
	Upsert(ctx context.Context, association *model.ChatbotSkill) error

	// Get 获取指定关联
	Get(ctx context.Context, chatbotID, skillName string) (*model.ChatbotSkill, error)

	// ListByChatbot 列出 chatbot 的全部关联
	ListByChatbot(ctx context.Context, chatbotID string) ([]*model.ChatbotSkill, error)

	// ListEnabledByChatbot 列出 chatbot 已启用的关联
	ListEnabledByChatbot(ctx context.Context, chatbotID string) ([]*model.ChatbotSkill, error)

	// SetEnabled 启用/禁用关联
	SetEnabled(ctx context.Context, chatbotID, skillName string, enabled bool) error

	// Delete 解除关联
	Delete(ctx context.Context, chatbotID, skillName string) error
}

// chatbotSkillRepository ChatbotSkillRepository 的实现
type chatbotSkillRepository struct {
	db *gorm.DB
}

// NewChatbotSkillRepository 创建关联仓储
func NewChatbotSkillRepository(db *gorm.DB) ChatbotSkillRepository {
	return &chatbotSkillRepository{db: db}
}

func (r *chatbotSkillRepository) Upsert(ctx context.Context, association *model.ChatbotSkill) error {
	var existing model.ChatbotSkill
	err := r.db.WithContext(ctx).
		Where("chatbot_id = ? AND skill_name = ?", association.ChatbotID, association.SkillName).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.WithContext(ctx).Create(association).Error
		}
		return err
	}

	existing.Enabled = association.Enabled
	existing.CustomConfig = association.CustomConfig
	if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return err
	}
	*association = existing
	return nil
}

func (r *chatbotSkillRepository) Get(ctx context.Context, chatbotID, skillName string) (*model.ChatbotSkill, error) {
	var association model.ChatbotSkill
	err := r.db.WithContext(ctx).
		Where("chatbot_id = ? AND skill_name = ?", chatbotID, skillName).
		First(&association).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &association, nil
}

func (r *chatbotSkillRepository) ListByChatbot(ctx context.Context, chatbotID string) ([]*model.ChatbotSkill, error) {
	var associations []*model.ChatbotSkill
	err := r.db.WithContext(ctx).
		Where("chatbot_id = ?", chatbotID).
		Order("skill_name ASC").
		Find(&associations).Error
	return associations, err
}

func (r *chatbotSkillRepository) ListEnabledByChatbot(ctx context.Context, chatbotID string) ([]*model.ChatbotSkill, error) {
	var associations []*model.ChatbotSkill
	err := r.db.WithContext(ctx).
		Where("chatbot_id = ? AND enabled = ?", chatbotID, true).
		Order("skill_name ASC").
		Find(&associations).Error
	return associations, err
}

func (r *chatbotSkillRepository) SetEnabled(ctx context.Context, chatbotID, skillName string, enabled bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.ChatbotSkill{}).
		Where("chatbot_id = ? AND skill_name = ?", chatbotID, skillName).
		Update("enabled", enabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *chatbotSkillRepository) Delete(ctx context.Context, chatbotID, skillName string) error {
	result := r.db.WithContext(ctx).
		Where("chatbot_id = ? AND skill_name = ?", chatbotID, skillName).
		Delete(&model.ChatbotSkill{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
