package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"k8s.io/klog/v2"

	"github.com/syllabi/backend/config"
	"github.com/syllabi/backend/internal/eventbus"
	"github.com/syllabi/backend/internal/handler"
	"github.com/syllabi/backend/internal/pkg/crypto"
	"github.com/syllabi/backend/internal/pkg/database"
	"github.com/syllabi/backend/internal/pkg/skills"
	"github.com/syllabi/backend/internal/pkg/skills/discord"
	"github.com/syllabi/backend/internal/repository"
	"github.com/syllabi/backend/internal/service"
	"github.com/syllabi/backend/internal/subscriber"
	"github.com/syllabi/backend/router"
)

func main() {
	// 初始化 klog
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("服务启动中...")

	cfg := config.GetConfig()

	if dir := filepath.Dir(cfg.Database.DSN); cfg.Database.Type != "mysql" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
	}

	// 初始化数据库
	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 凭证加密器
	sealer, err := crypto.NewSealer(cfg.Crypto.Key)
	if err != nil {
		log.Fatalf("Failed to initialize credential sealer: %v", err)
	}

	// 初始化 Repository
	integrationRepo := repository.NewIntegrationRepository(db)
	chatbotSkillRepo := repository.NewChatbotSkillRepository(db)
	customSkillRepo := repository.NewCustomSkillRepository(db)
	executionRepo := repository.NewSkillExecutionRepository(db)

	// 初始化 Service
	integrationService := service.NewIntegrationService(integrationRepo, sealer)

	// 事件总线：执行事件异步落审计表
	bus := eventbus.NewBus()
	subscriber.NewExecutionEventSubscriber(executionRepo).Register(bus)

	// skill 注册表与执行器
	registry := skills.NewRegistry()
	executor := skills.NewExecutor(registry, bus)

	// Discord 内置 skill
	discordClient := discord.NewClient(
		cfg.Discord.APIBase,
		integrationService,
		time.Duration(cfg.Discord.TimeoutSeconds)*time.Second,
	)
	if err := discord.New(discordClient, integrationService).Register(registry); err != nil {
		log.Fatalf("Failed to register discord skills: %v", err)
	}

	skillService := service.NewSkillService(registry, executor, chatbotSkillRepo, customSkillRepo, executionRepo)

	// 启动时加载库中的自定义 webhook skill
	if err := skillService.LoadCustomSkills(context.Background()); err != nil {
		klog.Warningf("加载自定义 skill 失败: %v", err)
	}

	// 初始化 Handler
	integrationHandler := handler.NewIntegrationHandler(integrationService)
	skillHandler := handler.NewSkillHandler(skillService)

	// 设置路由
	r := router.Setup(cfg, integrationHandler, skillHandler)

	log.Printf("Server starting on port %s...", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
