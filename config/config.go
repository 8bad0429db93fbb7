package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Dotenv string `mapstructure:"dotenv"`
	Server struct {
		HTTPPort    string        `mapstructure:"HTTPPort"`
		Timeout     time.Duration `mapstructure:"HTTPTimeout"`
		MetricsPort string        `mapstructure:"metricsPort"`

		// AllowedOrigins is the CORS allow list for browser clients.
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
		OTPRateLimit   int      `mapstructure:"otpRateLimit"`
	} `mapstructure:"server"`
	Corpus CorpusConfig `mapstructure:"corpus"`
	AI     AIConfig     `mapstructure:"ai"`
	App    AppConfig    `mapstructure:"app"`
}

// CorpusConfig configures the remote collections API.
type CorpusConfig struct {
	UseAPI      bool          `mapstructure:"use_api"`
	BaseURL     string        `mapstructure:"base_url"`
	AccessToken string        `mapstructure:"access_token"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Endpoints   struct {
		SendOTP     string `mapstructure:"send_otp"`
		VerifyOTP   string `mapstructure:"verify_otp"`
		Places      string `mapstructure:"places"`
		Feedback    string `mapstructure:"feedback"`
		Itineraries string `mapstructure:"itineraries"`
	} `mapstructure:"endpoints"`
}

// AIConfig configures the itinerary generation providers.
type AIConfig struct {
	UseHFInference bool          `mapstructure:"use_hf_inference"`
	HFAPIKey       string        `mapstructure:"hf_api_key"`
	HFBaseURL      string        `mapstructure:"hf_base_url"`
	ModelName      string        `mapstructure:"model_name"`
	LocalFallback  bool          `mapstructure:"local_fallback"`
	LocalBaseURL   string        `mapstructure:"local_base_url"`
	LocalModel     string        `mapstructure:"local_model"`
	UseGemini      bool          `mapstructure:"use_gemini"`
	GeminiAPIKey   string        `mapstructure:"gemini_api_key"`
	GeminiModel    string        `mapstructure:"gemini_model"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`

	// TierTimeout bounds each model call; keep it below server.HTTPTimeout.
	TierTimeout time.Duration `mapstructure:"tier_timeout"`
}

// AppConfig holds application-wide settings.
type AppConfig struct {
	Name        string        `mapstructure:"name"`
	DataDir     string        `mapstructure:"data_dir"`
	MaxFileSize int64         `mapstructure:"max_file_size"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// CORPUS_USE_API, AI_HF_API_KEY, APP_DATA_DIR, ... override the file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Variables from the dotenv file feed AutomaticEnv; real env wins.
	if dotenv := v.GetString("dotenv"); dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil {
			fmt.Printf("Warning: dotenv file %s not loaded: %s\n", dotenv, err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	config.normalize()
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

// normalize fills the defaults the rest of the service relies on.
func (c *Config) normalize() {
	c.Corpus.BaseURL = strings.TrimRight(c.Corpus.BaseURL, "/")
	if c.Corpus.Timeout <= 0 {
		c.Corpus.Timeout = 30 * time.Second
	}
	if c.Server.HTTPPort == "" {
		c.Server.HTTPPort = "8000"
	}
	if c.Server.OTPRateLimit <= 0 {
		c.Server.OTPRateLimit = 5
	}
	if c.App.DataDir == "" {
		c.App.DataDir = "data"
	}
	if c.App.MaxFileSize <= 0 {
		c.App.MaxFileSize = 5 * 1024 * 1024
	}
	if c.App.SessionTTL <= 0 {
		c.App.SessionTTL = 24 * time.Hour
	}
	if c.AI.TierTimeout <= 0 {
		c.AI.TierTimeout = 20 * time.Second
	}
	if c.AI.ModelName == "" {
		c.AI.ModelName = "google/flan-t5-small"
	}
}
