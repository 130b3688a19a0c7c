package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/syllabi/backend/internal/model"
	"github.com/syllabi/backend/internal/pkg/skills"
	"github.com/syllabi/backend/internal/repository"
	"github.com/syllabi/backend/internal/service"
)

// IntegrationHandler 集成管理处理器
type IntegrationHandler struct {
	service service.IntegrationService
}

// NewIntegrationHandler 创建集成处理器
func NewIntegrationHandler(service service.IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *IntegrationHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/integrations", h.Connect)
	router.GET("/integrations", h.List)
	router.GET("/integrations/:id", h.Get)
	router.POST("/integrations/:id/disconnect", h.Disconnect)
	router.DELETE("/integrations/:id", h.Delete)
	router.PUT("/integrations/:id/metadata", h.UpdateMetadata)
	router.GET("/integrations/:id/guild", h.GetGuild)
}

// Connect 建立集成
// token 只在请求体中出现一次，之后任何响应都不回传
func (h *IntegrationHandler) Connect(c *gin.Context) {
	var req service.ConnectIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("Connect: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	integration, err := h.service.Connect(c.Request.Context(), &req)
	if err != nil {
		klog.Errorf("Connect: failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, integration)
}

// List 列出用户的集成
func (h *IntegrationHandler) List(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	integrations, err := h.service.List(c.Request.Context(), userID, c.Query("provider"))
	if err != nil {
		klog.Errorf("List: failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  integrations,
		"total": len(integrations),
	})
}

// Get 获取单个集成
func (h *IntegrationHandler) Get(c *gin.Context) {
	integration, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "integration not found"})
			return
		}
		klog.Errorf("Get: failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, integration)
}

// Disconnect 断开集成
func (h *IntegrationHandler) Disconnect(c *gin.Context) {
	if err := h.service.Disconnect(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "integration not found"})
			return
		}
		klog.Errorf("Disconnect: failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}

// Delete 删除集成记录
func (h *IntegrationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "integration not found"})
			return
		}
		klog.Errorf("Delete: failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// UpdateMetadata 覆盖集成元数据
func (h *IntegrationHandler) UpdateMetadata(c *gin.Context) {
	var metadata model.IntegrationMetadata
	if err := c.ShouldBindJSON(&metadata); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.UpdateMetadata(c.Request.Context(), c.Param("id"), metadata); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "integration not found"})
			return
		}
		klog.Errorf("UpdateMetadata: failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// GetGuild 查询集成绑定的默认服务器 ID
func (h *IntegrationHandler) GetGuild(c *gin.Context) {
	guildID, err := h.service.DefaultGuildID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, skills.ErrIntegrationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "integration not found"})
			return
		}
		klog.Errorf("GetGuild: failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if guildID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no guild bound to this integration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"guild_id": guildID})
}
