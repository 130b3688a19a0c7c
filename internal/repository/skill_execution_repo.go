package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/syllabi/backend/internal/model"
)

// SkillExecutionRepository skill 执行审计记录仓储接口
type SkillExecutionRepository interface {
	// Create 写入一条执行记录
	Create(ctx context.Context, execution *model.SkillExecution) error

	// GetByExecutionID 根据执行 ID 获取
	GetByExecutionID(ctx context.Context, executionID string) (*model.SkillExecution, error)

	// ListByChatbot 列出 chatbot 最近的执行记录
	ListByChatbot(ctx context.Context, chatbotID string, limit int) ([]*model.SkillExecution, error)

	// ListBySkill 列出某 skill 最近的执行记录
	ListBySkill(ctx context.Context, skillName string, limit int) ([]*model.SkillExecution, error)

	// CountByStatus 按状态统计 chatbot 的执行次数
	CountByStatus(ctx context.Context, chatbotID string) (map[string]int64, error)
}

// skillExecutionRepository SkillExecutionRepository 的实现
type skillExecutionRepository struct {
	db *gorm.DB
}

// NewSkillExecutionRepository 创建执行记录仓储
func NewSkillExecutionRepository(db *gorm.DB) SkillExecutionRepository {
	return &skillExecutionRepository{db: db}
}

func (r *skillExecutionRepository) Create(ctx context.Context, execution *model.SkillExecution) error {
	return r.db.WithContext(ctx).Create(execution).Error
}

func (r *skillExecutionRepository) GetByExecutionID(ctx context.Context, executionID string) (*model.SkillExecution, error) {
	var execution model.SkillExecution
	err := r.db.WithContext(ctx).Where("execution_id = ?", executionID).First(&execution).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &execution, nil
}

func (r *skillExecutionRepository) ListByChatbot(ctx context.Context, chatbotID string, limit int) ([]*model.SkillExecution, error) {
	var executions []*model.SkillExecution
	err := r.db.WithContext(ctx).
		Where("chatbot_id = ?", chatbotID).
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Find(&executions).Error
	return executions, err
}

func (r *skillExecutionRepository) ListBySkill(ctx context.Context, skillName string, limit int) ([]*model.SkillExecution, error) {
	var executions []*model.SkillExecution
	err := r.db.WithContext(ctx).
		Where("skill_name = ?", skillName).
		Order("created_at DESC").
		Limit(normalizeLimit(limit)).
		Find(&executions).Error
	return executions, err
}

func (r *skillExecutionRepository) CountByStatus(ctx context.Context, chatbotID string) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	err := r.db.WithContext(ctx).
		Model(&model.SkillExecution{}).
		Select("status, count(*) as count").
		Where("chatbot_id = ?", chatbotID).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(counts))
	for _, c := range counts {
		result[c.Status] = c.Count
	}
	return result, nil
}

// normalizeLimit 查询条数兜底，防止一次拉全表
func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 50
	}
	return limit
}
