package configuration

import (
	"encoding/json"
	"os"

	"github.com/kelseyhightower/envconfig"
)

type MongoConfig struct {
	Uri                     string `json:"uri" envconfig:"MONGO_URI"`
	Database                string `json:"database" envconfig:"MONGO_DATABASE"`
	MessagesCollection      string `json:"messagesCollection" envconfig:"MONGO_MESSAGES_COLLECTION"`
	ReceiptsCollection      string `json:"receiptsCollection" envconfig:"MONGO_RECEIPTS_COLLECTION"`
	ConversationsCollection string `json:"conversationsCollection" envconfig:"MONGO_CONVERSATIONS_COLLECTION"`
	SocketRoute             string `json:"socketRoute" envconfig:"SOCKET_ROUTE"`
}

type ServerConfig struct {
	AppPort        int      `json:"app_port" envconfig:"APP_PORT"`
	SocketPort     int      `json:"socket_port" envconfig:"SOCKET_PORT"`
	AllowedOrigins []string `json:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

type Config struct {
	ChatDatabase MongoConfig  `json:"mongo"`
	Server       ServerConfig `json:"server"`
}

// LoadConfig reads the JSON config file, then lets SIKSHARE_-prefixed
// environment variables override individual fields.
func LoadConfig(configPath string) (*Config, error) {
	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	if err := envconfig.Process("sikshare", &config); err != nil {
		return nil, err
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.ChatDatabase.MessagesCollection == "" {
		c.ChatDatabase.MessagesCollection = "messages"
	}
	if c.ChatDatabase.ReceiptsCollection == "" {
		c.ChatDatabase.ReceiptsCollection = "read_receipts"
	}
	if c.ChatDatabase.ConversationsCollection == "" {
		c.ChatDatabase.ConversationsCollection = "conversations"
	}
	if c.ChatDatabase.SocketRoute == "" {
		c.ChatDatabase.SocketRoute = "socket"
	}
	if c.Server.AppPort == 0 {
		c.Server.AppPort = 3000
	}
	if c.Server.SocketPort == 0 {
		c.Server.SocketPort = 3001
	}
}
