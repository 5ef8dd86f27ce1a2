package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/dpetrov/infracopilot/backend/internal/model/endpoint"
)

// Config aggregates every configuration section of the service.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Azure     AzureConfig
	Endpoints EndpointsConfig
	Local     LocalThresholds
	Session   SessionConfig
	CORS      CORSConfig
}

// Load reads the whole configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	endpoints, err := loadEndpointsConfig()
	if err != nil {
		return nil, err
	}

	local, err := loadLocalThresholds()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		AI:        ai,
		Azure:     loadAzureConfig(),
		Endpoints: endpoints,
		Local:     local,
		Session:   session,
		CORS:      loadCORSConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener and static asset directory.
type ServerConfig struct {
	Addr      string
	StaticDir string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	staticDir := getEnvOrDefault("STATIC_DIR", "public")

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port, StaticDir: staticDir}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, StaticDir: staticDir}, nil
}

// AIConfig describes the language model provider.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required model credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds the answer-composition model with the configured
// sampling settings (default temperature 0.4, 900 tokens).
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	temperature := 0.4
	if c.Temperature != nil {
		temperature = *c.Temperature
	}
	maxTokens := 900
	if c.MaxTokens != nil {
		maxTokens = *c.MaxTokens
	}
	return c.newModel(ctx, temperature, maxTokens)
}

// NewPlannerModel builds the routing model. Planning must be deterministic,
// so temperature is pinned to zero and the output budget kept small.
func (c AIConfig) NewPlannerModel(ctx context.Context) (model.ChatModel, error) {
	return c.newModel(ctx, 0, 220)
}

func (c AIConfig) newModel(ctx context.Context, temperature float64, maxTokens int) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("model credentials missing: set ARK_MODEL plus ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY")
	}

	temp := float32(temperature)
	tokens := maxTokens

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   &tokens,
		Temperature: &temp,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// AzureConfig describes the optional cloud inventory checks.
type AzureConfig struct {
	SubscriptionID    string
	ResourceGroup     string
	BaseURL           string
	VMAPIVersion      string
	WebAPIVersion     string
	StorageAPIVersion string
}

// Configured reports whether both identifiers needed for ARM calls are set.
func (c AzureConfig) Configured() bool {
	return c.SubscriptionID != "" && c.ResourceGroup != ""
}

func loadAzureConfig() AzureConfig {
	return AzureConfig{
		SubscriptionID:    strings.TrimSpace(os.Getenv("AZURE_SUBSCRIPTION_ID")),
		ResourceGroup:     strings.TrimSpace(os.Getenv("AZURE_RESOURCE_GROUP")),
		BaseURL:           getEnvOrDefault("AZURE_MANAGEMENT_BASE_URL", "https://management.azure.com"),
		VMAPIVersion:      getEnvOrDefault("AZURE_VM_API_VERSION", "2024-03-01"),
		WebAPIVersion:     getEnvOrDefault("AZURE_WEB_API_VERSION", "2024-04-01"),
		StorageAPIVersion: getEnvOrDefault("AZURE_STORAGE_API_VERSION", "2023-01-01"),
	}
}

// EndpointsConfig describes the custom endpoint probe set.
type EndpointsConfig struct {
	Entries []endpoint.Endpoint
	Timeout time.Duration
}

func loadEndpointsConfig() (EndpointsConfig, error) {
	raw := strings.TrimSpace(os.Getenv("CUSTOM_ENDPOINTS"))
	if raw == "" {
		raw = "[]"
	}

	var entries []endpoint.Endpoint
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return EndpointsConfig{}, fmt.Errorf("invalid CUSTOM_ENDPOINTS value: %w", err)
	}

	timeoutSec := 5.0
	if override, err := parseOptionalFloatEnv("CUSTOM_ENDPOINT_TIMEOUT_SEC"); err != nil {
		return EndpointsConfig{}, err
	} else if override != nil {
		timeoutSec = *override
	}

	return EndpointsConfig{
		Entries: entries,
		Timeout: time.Duration(timeoutSec * float64(time.Second)),
	}, nil
}

// LocalThresholds are the static warning thresholds for host gauges.
type LocalThresholds struct {
	CPUWarn  float64
	MemWarn  float64
	DiskWarn float64
}

func loadLocalThresholds() (LocalThresholds, error) {
	cpuWarn, err := parseFloatEnv("LOCAL_CPU_WARN", 85)
	if err != nil {
		return LocalThresholds{}, err
	}
	memWarn, err := parseFloatEnv("LOCAL_MEM_WARN", 90)
	if err != nil {
		return LocalThresholds{}, err
	}
	diskWarn, err := parseFloatEnv("LOCAL_DISK_WARN", 90)
	if err != nil {
		return LocalThresholds{}, err
	}

	return LocalThresholds{CPUWarn: cpuWarn, MemWarn: memWarn, DiskWarn: diskWarn}, nil
}

// SessionConfig bounds conversational state.
type SessionConfig struct {
	TTL      time.Duration
	MaxTurns int
}

func loadSessionConfig() (SessionConfig, error) {
	ttlMin := 60
	if override, err := parseOptionalIntEnv("SESSION_TTL_MIN"); err != nil {
		return SessionConfig{}, err
	} else if override != nil {
		ttlMin = *override
	}

	maxTurns := 10
	if override, err := parseOptionalIntEnv("CHAT_HISTORY_TURNS"); err != nil {
		return SessionConfig{}, err
	} else if override != nil && *override > 0 {
		maxTurns = *override
	}

	return SessionConfig{
		TTL:      time.Duration(ttlMin) * time.Minute,
		MaxTurns: maxTurns,
	}, nil
}

// CORSConfig lists the allowed cross-origin callers.
type CORSConfig struct {
	AllowedOrigins []string
}

func loadCORSConfig() CORSConfig {
	raw := getEnvOrDefault("ALLOWED_ORIGINS", "*")
	if raw == "*" {
		return CORSConfig{AllowedOrigins: []string{"*"}}
	}

	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return CORSConfig{AllowedOrigins: origins}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
