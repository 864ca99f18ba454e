package configuration

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/db"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/engine"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/handler"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/hub"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/model"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/presence"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/repo"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/service"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultConfigPath = "config/config.dev.json"

type Container struct {
	ChatHandler handler.ChatHandler
	Hub         *hub.Hub
	Registry    *presence.Registry
	Rooms       *presence.Rooms
	Config      Config
	Logger      *zap.Logger

	// private - for cleanup
	mongoClient *mongo.Database
}

func BuildContainer() (*Container, error) {
	configPath := os.Getenv("SIKSHARE_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	con, err := db.OpenConnection(config.ChatDatabase.Uri, config.ChatDatabase.Database)
	if err != nil {
		return nil, err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	messages := db.NewRepository[model.Message](con, config.ChatDatabase.MessagesCollection)
	receipts := db.NewRepository[model.ReadReceipt](con, config.ChatDatabase.ReceiptsCollection)
	conversations := db.NewRepository[model.Conversation](con, config.ChatDatabase.ConversationsCollection)

	// The unique index is what makes receipt creation idempotent; refuse to
	// start without it.
	indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := receipts.EnsureUniqueIndex(indexCtx, "message_id", "user_id"); err != nil {
		return nil, fmt.Errorf("failed to ensure receipt index: %w", err)
	}

	messageRepo := repo.NewMessageRepository(messages, receipts, logger)
	receiptRepo := repo.NewReceiptRepository(receipts, logger)
	conversationRepo := repo.NewConversationRepository(conversations, logger)

	registry := presence.NewRegistry()
	rooms := presence.NewRooms()

	h := hub.NewHub(logger, config.Server.AllowedOrigins)
	eng := engine.New(engine.Deps{
		Registry:      registry,
		Rooms:         rooms,
		Fanout:        engine.NewFanout(rooms, h, logger),
		Messages:      messageRepo,
		Receipts:      receiptRepo,
		Conversations: conversationRepo,
		Logger:        logger,
	})
	h.Start(eng)

	chatService := service.NewChatService(messageRepo, conversationRepo, logger)
	chatHandler := handler.NewChatHandler(chatService)

	return &Container{
		ChatHandler: chatHandler,
		Hub:         h,
		Registry:    registry,
		Rooms:       rooms,
		Config:      *config,
		Logger:      logger,
		mongoClient: con,
	}, nil
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	// Stop the hub first (closes all WebSocket connections)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	// Sync logger
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	// Close MongoDB connection pool
	if c.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoClient.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close MongoDB connection: %w", err)
		}
	}

	return nil
}
