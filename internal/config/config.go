package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	UploadsRoot string
	Product     string
	LLM         LLMConfig
	Renderer    RendererConfig
	Artifact    ArtifactConfig
	Figures     FiguresConfig
	Auth        AuthConfig
}

// AuthConfig controls the session-token check on the API. Required
// defaults to off so local and demo setups work without a login flow.
type AuthConfig struct {
	Required  bool
	TokenTTL  time.Duration
	MaxTokens int
}

type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	RPS         float64
	Burst       int
	MaxAttempts int
}

type RendererConfig struct {
	Bin     string
	Wrapper string
	Timeout time.Duration
}

type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// FiguresConfig carries the document-instance-specific figure ids the
// resolver force-includes for certain topics. The numbers are tuned per
// knowledge base, not derived, so they live in config.
type FiguresConfig struct {
	OSMigrationID  int
	AssumedCloudID []int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:        *port,
		Env:         env,
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		UploadsRoot: firstNonEmpty(strings.TrimSpace(os.Getenv("UPLOADS_ROOT")), "uploads"),
		Product:     firstNonEmpty(strings.TrimSpace(os.Getenv("PRODUCT_NAME")), "RiverMeadow"),
		LLM:         loadLLMConfig(),
		Renderer:    loadRendererConfig(),
		Artifact:    loadArtifactConfig(env),
		Figures:     loadFiguresConfig(),
		Auth:        loadAuthConfig(),
	}, nil
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		Required:  envBool("AUTH_REQUIRED", false),
		TokenTTL:  time.Duration(envInt("AUTH_TOKEN_TTL_MINUTES", 60)) * time.Minute,
		MaxTokens: envInt("AUTH_MAX_TOKENS", 1024),
	}
}

func loadLLMConfig() LLMConfig {
	provider := strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_PROVIDER")), "gemini"))
	model := strings.TrimSpace(os.Getenv("LLM_MODEL"))
	if model == "" {
		if provider == "groq" {
			model = "llama-3.3-70b-versatile"
		} else {
			model = "gemini-2.0-flash"
		}
	}
	return LLMConfig{
		Provider:    provider,
		Model:       model,
		APIKey:      firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_API_KEY")), strings.TrimSpace(os.Getenv("GEMINI_API_KEY")), strings.TrimSpace(os.Getenv("GROQ_API_KEY"))),
		RPS:         envFloat("LLM_RPS", 1),
		Burst:       envInt("LLM_BURST", 2),
		MaxAttempts: envInt("LLM_MAX_ATTEMPTS", 3),
	}
}

func loadRendererConfig() RendererConfig {
	timeout := time.Duration(envInt("RENDERER_TIMEOUT_SECONDS", 20)) * time.Second
	return RendererConfig{
		Bin:     firstNonEmpty(strings.TrimSpace(os.Getenv("RENDERER_BIN")), "dot"),
		Wrapper: strings.TrimSpace(os.Getenv("RENDERER_WRAPPER")),
		Timeout: timeout,
	}
}

func loadArtifactConfig(env string) ArtifactConfig {
	endpoint := resolveArtifactEndpoint(env)
	return ArtifactConfig{
		Enabled:   strings.EqualFold(strings.TrimSpace(env), "local") || endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), "figment-artifacts"),
		UseSSL:    resolveArtifactUseSSL(env),
	}
}

func loadFiguresConfig() FiguresConfig {
	return FiguresConfig{
		OSMigrationID:  envInt("FIGURE_OS_MIGRATION_ID", 11),
		AssumedCloudID: envIntList("FIGURE_ASSUMED_CLOUD_IDS", []int{20, 25, 30}),
	}
}

func resolveArtifactEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_MINIO_ENDPOINT")), "minio:9000")
	}
	return strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
}

func resolveArtifactUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("ARTIFACT_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envIntList(key string, fallback []int) []int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []int
	for _, part := range strings.Split(raw, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fallback
		}
		out = append(out, v)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
