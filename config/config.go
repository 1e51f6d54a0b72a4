package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"social_post_studio/generator"
	"social_post_studio/logger"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// Config is read from an optional JSON file and then overridden by the environment.
type Config struct {
	Provider    string        `json:"provider" env:"PROVIDER" env-default:"gemini"`
	APIKey      string        `json:"api_key" env:"API_KEY"`
	TextModel   string        `json:"text_model" env:"TEXT_MODEL"`
	ImageModel  string        `json:"image_model" env:"IMAGE_MODEL"`
	BaseURL     string        `json:"base_url" env:"PROVIDER_BASE_URL"`
	TimeoutSec  int           `json:"timeout_sec" env:"REQUEST_TIMEOUT_SEC" env-default:"120"`
	ServerAddr  string        `json:"server_addr" env:"SERVER_ADDR" env-default:":8080"`
	CORSOrigins []string      `json:"cors_origins" env:"CORS_ORIGINS" env-separator:","`
	Log         logger.Config `json:"log"`
}

// Load reads path when it exists, then the environment (including a .env
// file in the working directory). The result is validated.
func Load(path string) (Config, error) {
	// .env 文件可选，不存在时忽略；存在但格式错误则报错。
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	var err error
	if path != "" && fileExists(path) {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.APIKey == "" {
		cfg.APIKey = providerKeyFromEnv(cfg.Provider)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration the process cannot start with.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
		if strings.TrimSpace(c.APIKey) == "" {
			return errors.New("API_KEY is not set; a credential is required for provider " + c.Provider)
		}
	case ProviderMock:
	default:
		return fmt.Errorf("provider %q not supported", c.Provider)
	}
	if c.TimeoutSec < 0 {
		return errors.New("timeout_sec must not be negative")
	}
	return nil
}

// LLMSettings converts the provider part of the config.
func (c Config) LLMSettings() *generator.LLMSettings {
	return &generator.LLMSettings{
		Provider:   c.Provider,
		TextModel:  c.TextModel,
		ImageModel: c.ImageModel,
		APIKey:     c.APIKey,
		BaseURL:    c.BaseURL,
		Timeout:    time.Duration(c.TimeoutSec) * time.Second,
	}
}

func providerKeyFromEnv(provider string) string {
	switch provider {
	case ProviderGemini:
		return os.Getenv("GEMINI_API_KEY")
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
