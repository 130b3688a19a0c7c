package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/syllabi/backend/internal/model"
)

// CustomSkillRepository 用户自定义 skill 仓储接口
type CustomSkillRepository interface {
	// Create 创建自定义 skill
	Create(ctx context.Context, skill *model.CustomSkill) error

	// Update 更新自定义 skill
	Update(ctx context.Context, skill *model.CustomSkill) error

	// GetByName 根据名称获取
	GetByName(ctx context.Context, name string) (*model.CustomSkill, error)

	// ListActive 列出所有启用的自定义 skill
	ListActive(ctx context.Context) ([]*model.CustomSkill, error)

	// ListByUser 列出用户创建的自定义 skill
	ListByUser(ctx context.Context, userID string) ([]*model.CustomSkill, error)

	// Delete 删除自定义 skill
	Delete(ctx context.Context, name string) error
}

// customSkillRepository CustomSkillRepository 的实现
type customSkillRepository struct {
	db *gorm.DB
}

// NewCustomSkillRepository 创建自定义 skill 仓储
func NewCustomSkillRepository(db *gorm.DB) CustomSkillRepository {
	return &customSkillRepository{db: db}
}

func (r *customSkillRepository) Create(ctx context.Context, skill *model.CustomSkill) error {
	return r.db.WithContext(ctx).Create(skill).Error
}

func (r *customSkillRepository) Update(ctx context.Context, skill *model.CustomSkill) error {
	return r.db.WithContext(ctx).Save(skill).Error
}

func (r *customSkillRepository) GetByName(ctx context.Context, name string) (*model.CustomSkill, error) {
	var skill model.CustomSkill
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&skill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &skill, nil
}

func (r *customSkillRepository) ListActive(ctx context.Context) ([]*model.CustomSkill, error) {
	var skillList []*model.CustomSkill
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&skillList).Error
	return skillList, err
}

func (r *customSkillRepository) ListByUser(ctx context.Context, userID string) ([]*model.CustomSkill, error) {
	var skillList []*model.CustomSkill
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&skillList).Error
	return skillList, err
}

func (r *customSkillRepository) Delete(ctx context.Context, name string) error {
	result := r.db.WithContext(ctx).Where("name = ?", name).Delete(&model.CustomSkill{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
