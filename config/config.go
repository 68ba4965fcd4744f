package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"

	"github.com/NextMind-AI/inbox-analytics/model"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Config struct {
	Port         string   `env:"PORT,default=8080"`
	CORSOrigins  []string `env:"CORS_ORIGINS"`
	LogLevel     string   `env:"LOG_LEVEL,default=info"`
	LogPretty    bool     `env:"LOG_PRETTY,default=false"`
	StoreBackend string   `env:"STORE_BACKEND,default=memory"`

	RedisAddr     string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`
	SQLitePath    string `env:"SQLITE_PATH,default=inbox.db"`

	ReferenceTimezone string `env:"REFERENCE_TIMEZONE,default=America/Argentina/Buenos_Aires"`
	LiveSegmentation  string `env:"LIVE_SEGMENTATION,default=open"`
	SeedOnStart       bool   `env:"SEED_ON_START,default=false"`

	VonageJWT                 string `env:"VONAGE_JWT"`
	GeospecificMessagesAPIURL string `env:"GEOSPECIFIC_MESSAGES_API_URL,default=https://api-us.nexmo.com/v1/messages"`
	MessagesAPIURL            string `env:"MESSAGES_API_URL,default=https://api.nexmo.com/v1/messages"`
	WhatsAppSenderID          string `env:"WHATSAPP_SENDER_ID"`

	WhatsAppServiceURL  string `env:"WHATSAPP_SERVICE_URL,default=http://localhost:8001"`
	GmailServiceURL     string `env:"GMAIL_SERVICE_URL,default=http://localhost:8002"`
	InstagramServiceURL string `env:"INSTAGRAM_SERVICE_URL,default=http://localhost:8003"`

	OpenAIKey   string   `env:"OPENAI_API_KEY"`
	MessageTags []string `env:"MESSAGE_TAGS"`

	S3Bucket string `env:"S3_BUCKET"`
	S3Region string `env:"S3_REGION,default=us-east-1"`
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
		log.Debug().Msg("No .env file found, using system environment variables")
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom builds a Config from l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	if err := envconfig.ProcessWith(ctx, cfg, l); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of memory, redis, sqlite: got %q", c.StoreBackend)
	}
	switch c.LiveSegmentation {
	case "open", "day":
	default:
		return fmt.Errorf("LIVE_SEGMENTATION must be open or day: got %q", c.LiveSegmentation)
	}
	if c.VonageJWT != "" && c.WhatsAppSenderID == "" {
		return errors.New("WHATSAPP_SENDER_ID is required when VONAGE_JWT is set")
	}
	return nil
}

// ServiceURL returns the delivery service base URL for ch.
func (c *Config) ServiceURL(ch model.Channel) string {
	switch ch {
	case model.ChannelWhatsApp:
		return c.WhatsAppServiceURL
	case model.ChannelGmail:
		return c.GmailServiceURL
	case model.ChannelInstagram:
		return c.InstagramServiceURL
	}
	return ""
}

// Tags returns the configured message tags without blanks.
func (c *Config) Tags() []string {
	var tags []string
	for _, t := range c.MessageTags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func (c *Config) TaggingEnabled() bool {
	return c.OpenAIKey != "" && len(c.Tags()) > 0
}

func (c *Config) ArchiveEnabled() bool {
	return c.S3Bucket != ""
}
