package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/syllabi/backend/internal/model"
	"github.com/syllabi/backend/internal/pkg/skills"
	"github.com/syllabi/backend/internal/repository"
	"github.com/syllabi/backend/internal/service"
)

// SkillHandler skill 平台处理器
type SkillHandler struct {
	service service.SkillService
}

// NewSkillHandler 创建 skill 处理器
func NewSkillHandler(service service.SkillService) *SkillHandler {
	return &SkillHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *SkillHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/skills", h.Catalog)
	router.GET("/skills/tools", h.Tools)
	router.POST("/skills/invoke", h.Invoke)
	router.POST("/skills/custom", h.CreateCustomSkill)

	router.POST("/chatbots/:id/skills", h.AttachSkill)
	router.GET("/chatbots/:id/skills", h.ListChatbotSkills)
	router.DELETE("/chatbots/:id/skills/:skill", h.DetachSkill)
	router.GET("/chatbots/:id/executions", h.ListExecutions)
	router.GET("/chatbots/:id/executions/stats", h.ExecutionStats)
}

// Catalog 列出全部 skill
func (h *SkillHandler) Catalog(c *gin.Context) {
	entries := h.service.Catalog(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"data":  entries,
		"total": len(entries),
	})
}

// Tools 导出 LLM 工具列表
func (h *SkillHandler) Tools(c *gin.Context) {
	tools := h.service.Tools(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"data":  tools,
		"total": len(tools),
	})
}

// Invoke 执行一次 skill 调用
func (h *SkillHandler) Invoke(c *gin.Context) {
	var req service.InvokeSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("Invoke: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Invoke(c.Request.Context(), &req)
	if err != nil {
		status := statusForSkillError(err)
		if status >= http.StatusInternalServerError {
			klog.Errorf("Invoke: %s failed: %v", req.SkillName, err)
		} else {
			klog.V(6).Infof("Invoke: %s rejected: %v", req.SkillName, err)
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// CreateCustomSkill 创建 webhook 自定义 skill
func (h *SkillHandler) CreateCustomSkill(c *gin.Context) {
	var customSkill model.CustomSkill
	if err := c.ShouldBindJSON(&customSkill); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if customSkill.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if err := h.service.CreateCustomSkill(c.Request.Context(), &customSkill); err != nil {
		if errors.Is(err, skills.ErrSkillAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		klog.Errorf("CreateCustomSkill: failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, customSkill)
}

// AttachSkill 给 chatbot 开通 skill
func (h *SkillHandler) AttachSkill(c *gin.Context) {
	var req service.AttachSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ChatbotID = c.Param("id")

	association, err := h.service.AttachToChatbot(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, skills.ErrSkillNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		klog.Errorf("AttachSkill: failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, association)
}

// ListChatbotSkills 列出 chatbot 的 skill 关联
func (h *SkillHandler) ListChatbotSkills(c *gin.Context) {
	associations, err := h.service.ListChatbotSkills(c.Request.Context(), c.Param("id"))
	if err != nil {
		klog.Errorf("ListChatbotSkills: failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  associations,
		"total": len(associations),
	})
}

// DetachSkill 解除关联
func (h *SkillHandler) DetachSkill(c *gin.Context) {
	if err := h.service.DetachFromChatbot(c.Request.Context(), c.Param("id"), c.Param("skill")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "association not found"})
			return
		}
		klog.Errorf("DetachSkill: failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "detached"})
}

// ListExecutions 查询执行审计记录
func (h *SkillHandler) ListExecutions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	executions, err := h.service.ListExecutions(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		klog.Errorf("ListExecutions: failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  executions,
		"total": len(executions),
	})
}

// ExecutionStats 执行统计
func (h *SkillHandler) ExecutionStats(c *gin.Context) {
	stats, err := h.service.ExecutionStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		klog.Errorf("ExecutionStats: failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// statusForSkillError 把 skill 层的类型化错误映射为 HTTP 状态
func statusForSkillError(err error) int {
	var pre *skills.PreconditionError
	var cred *skills.CredentialError
	var ctxErr *skills.ContextResolutionError
	var auth *skills.AuthenticationError
	var perm *skills.PermissionError
	var notFound *skills.NotFoundError
	var rate *skills.RateLimitError

	switch {
	case errors.As(err, &pre), errors.As(err, &ctxErr):
		return http.StatusBadRequest
	case errors.As(err, &cred), errors.As(err, &auth):
		return http.StatusUnauthorized
	case errors.As(err, &perm), errors.Is(err, skills.ErrSkillDisabled):
		return http.StatusForbidden
	case errors.As(err, &notFound), errors.Is(err, skills.ErrSkillNotFound):
		return http.StatusNotFound
	case errors.As(err, &rate):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
