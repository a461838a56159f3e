package bootstrap

import (
	"log"

	"clara-backend/internal/config"
	"clara-backend/internal/controller"
	"clara-backend/internal/pkg/logger"
	"clara-backend/internal/pkg/token"
	"clara-backend/internal/repository/unitofwork"
	"clara-backend/internal/service"
	"clara-backend/pkg/embedding"
	"clara-backend/pkg/events"
	"clara-backend/pkg/llm/factory"

	pktNats "clara-backend/pkg/nats"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController   controller.IAuthController
	VectorController controller.IVectorController
	ChatController   controller.IChatController
	HealthController controller.IHealthController

	// Needed by route registration for the auth middleware
	AuthService service.IAuthService

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	codec := token.NewCodec(cfg.Auth.JWTSecret)

	// 2. Event Bus
	bus := events.NewBus()

	// NATS mirror is optional; a failed connection only loses the mirror.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 3. AI Providers
	registry := embedding.NewRegistry(&cfg.Ai)
	log.Printf("[INFO] Using Embedding Provider: %s", cfg.Ai.EmbeddingProvider)

	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Services
	authService := service.NewAuthService(uowFactory, codec, cfg.Auth, sysLogger, bus)
	vectorService := service.NewVectorService(uowFactory, registry, cfg.Ai, sysLogger, bus)
	chatService := service.NewChatService(llmProvider)
	consumerService := service.NewConsumerService(bus, sysLogger, natsPub)

	// 5. Controllers
	return &Container{
		AuthController:   controller.NewAuthController(authService),
		VectorController: controller.NewVectorController(vectorService),
		ChatController:   controller.NewChatController(chatService),
		HealthController: controller.NewHealthController(db),

		AuthService:     authService,
		ConsumerService: consumerService,
	}
}
