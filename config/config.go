package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string              `mapstructure:"port"`
	AIProvider          string              `mapstructure:"ai_provider"`
	AIEndpoint          string              `mapstructure:"ai_endpoint"`
	Model               string              `mapstructure:"model"`
	OpenAIAPIKey        string              `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey        string              `mapstructure:"GEMINI_API_KEYS"`
	FilesDir            string              `mapstructure:"files_dir"`
	MongoURI            string              `mapstructure:"MONGODB_URI"`
	WeaviateStoreConfig WeaviateStoreConfig `mapstructure:"weaviate_store_config"`
	StageConfig         StageConfig         `mapstructure:"stage_config"`
	SessionStoreConfig  SessionStoreConfig  `mapstructure:"session_store_config"`
	ArxivConfig         ArxivConfig         `mapstructure:"arxiv_config"`
}

type WeaviateStoreConfig struct {
	Host         string       `mapstructure:"host"`
	APIKey       string       `mapstructure:"WEAVIATE_APIKEY"` // Changed to match env var
	Text2Vec     string       `mapstructure:"text2vec"`
	ModuleConfig ModuleConfig `mapstructure:"module_config"`
}

type ModuleConfig map[string]interface{}

// StageConfig locates the remote staging area that feeds the search index.
type StageConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	DestPrefix string `mapstructure:"dest_prefix"`
}

// SessionStoreConfig selects the conversation state backend. Backend is
// "memory" (default) or "redis".
type SessionStoreConfig struct {
	Backend   string `mapstructure:"backend"`
	RedisAddr string `mapstructure:"redis_addr"`
}

type ArxivConfig struct {
	MaxRetries int `mapstructure:"max_retries"`
}

// GeminiAPIKeys splits the comma-separated GEMINI_API_KEYS value.
func (c *Config) GeminiAPIKeys() []string {
	if c.GeminiAPIKey == "" {
		return nil
	}
	keys := strings.Split(c.GeminiAPIKey, ",")
	for i := range keys {
		keys[i] = strings.TrimSpace(keys[i])
	}
	return keys
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEYS")
	v.BindEnv("WEAVIATE_APIKEY")
	v.BindEnv("MONGODB_URI")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
