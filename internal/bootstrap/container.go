package bootstrap

import (
	"context"
	"fmt"

	"rag-chatbot-be/internal/config"
	"rag-chatbot-be/internal/controller"
	"rag-chatbot-be/internal/handler"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/internal/repository/cache"
	"rag-chatbot-be/internal/repository/implementation"
	"rag-chatbot-be/internal/repository/memory"
	"rag-chatbot-be/internal/repository/unitofwork"
	"rag-chatbot-be/internal/service"
	"rag-chatbot-be/internal/websocket"
	"rag-chatbot-be/pkg/embedding"
	"rag-chatbot-be/pkg/llm/factory"
	"rag-chatbot-be/pkg/rag/answer"
	"rag-chatbot-be/pkg/rag/intent"
	"rag-chatbot-be/pkg/rag/orchestrator"
	"rag-chatbot-be/pkg/rag/session"
	"rag-chatbot-be/pkg/rag/workflow"

	pktNats "rag-chatbot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	ChatSocketHandler *handler.ChatSocketHandler
	WebSocketHub      *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

// Close releases broker connections opened by NewContainer.
func (c *Container) Close() {
	for _, fn := range c.closers {
		fn()
	}
	_ = c.Logger.Sync()
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)

	var closers []func()

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	closers = append(closers, func() { _ = pubSub.Close() })

	// 3. Model Providers
	embeddingProvider, err := embedding.NewProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.EmbeddingModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIAPIKey,
		cfg.Ai.OpenAIBaseURL,
	)
	if err != nil {
		return nil, fmt.Errorf("init embedding provider: %w", err)
	}

	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  providerBaseURL(cfg),
		APIKey:   cfg.Ai.OpenAIAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "Model providers ready", map[string]interface{}{
		"llm_provider":       cfg.Ai.LLMProvider,
		"llm_model":          cfg.Ai.LLMModel,
		"embedding_provider": cfg.Ai.EmbeddingProvider,
		"classifier_mode":    cfg.Ai.ClassifierMode,
	})

	// 4. Infrastructure
	// NATS is optional; a nil publisher drops events.
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			closers = append(closers, natsPub.Close)
		}
	}

	// Redis is optional too; without it the hub stays local and the
	// session directory is not cached.
	var rdb *redis.Client
	var directoryCache session.Cache
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		}
		directoryCache = cache.NewSessionDirectoryCache(rdb, cfg.Chat.DirectoryCacheTTL, sysLogger)
		closers = append(closers, func() { _ = rdb.Close() })
	}

	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run(ctx)

	// 5. Conversation Core
	machine := workflow.NewMachine(memory.NewWorkflowRepository(cfg.Chat.WorkflowTTL), sysLogger)

	classifier, err := intent.New(cfg.Ai.ClassifierMode, llmProvider, llmLogger)
	if err != nil {
		return nil, fmt.Errorf("init intent classifier: %w", err)
	}

	answerer := answer.NewAnswerer(
		llmProvider,
		embeddingProvider,
		implementation.NewDocumentRepository(db),
		cfg.Chat.RetrievalTopK,
		llmLogger,
	)

	directory := session.NewDirectory(implementation.NewChatMessageRepository(db), directoryCache, sysLogger)
	messageService := service.NewMessageService(uowFactory, directory, sysLogger)
	applicationService := service.NewApplicationService(uowFactory, natsPub, sysLogger)

	turns := orchestrator.New(orchestrator.Deps{
		Messages:     messageService,
		Records:      applicationService,
		Machine:      machine,
		Classifier:   classifier,
		Answerer:     answerer,
		Titler:       session.NewTitler(llmProvider, llmLogger),
		Logger:       sysLogger,
		HistoryLimit: cfg.Chat.HistoryLimit,
	})

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Chat.IngestTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Chat.IngestTopic,
		uowFactory,
		embeddingProvider,
		cfg.Chat.ChunkSize,
		cfg.Chat.ChunkOverlap,
		sysLogger,
	)

	chatService := service.NewChatService(turns, answerer, messageService, machine, sysLogger)
	documentService := service.NewDocumentService(uowFactory, publisherService, sysLogger)

	// 7. Controllers
	return &Container{
		ChatController:     controller.NewChatController(chatService),
		DocumentController: controller.NewDocumentController(documentService),

		ConsumerService: consumerService,

		ChatSocketHandler: handler.NewChatSocketHandler(chatService, wsHub, sysLogger),
		WebSocketHub:      wsHub,

		Logger:  sysLogger,
		closers: closers,
	}, nil
}

func providerBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "openai" {
		return cfg.Ai.OpenAIBaseURL
	}
	return cfg.Ai.OllamaBaseURL
}
