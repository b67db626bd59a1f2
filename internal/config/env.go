package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	WorkDir     string
	SourcesFile string
	OutputFile  string
	UploadDir   string

	LLMProvider    string
	LLMAPIKey      string
	LLMBaseURL     string
	GenModel       string
	GenTemperature float64
	LLMTimeout     time.Duration
	GeminiAPIKey   string

	Embedder       string
	EmbedModel     string
	EmbedDim       int
	EmbedBatchSize int
	EnableIndex    bool
	IndexStore     string
	DatabaseURL    string
	SslCertPath    string

	ChunkSize       int
	ChunkOverlap    int
	MaxContextChars int
	FetchTimeout    time.Duration
	ExtractWorkers  int

	ArtifactStore  string
	AwsAccessKey   string
	AwsSecretKey   string
	AwsRegion      string
	BucketName     string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	Port        string
	JWTSecret   string
	CORSOrigins []string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		WorkDir:     getEnv("WORK_DIR", "."),
		SourcesFile: getEnv("SOURCES_FILE", "sources.json"),
		OutputFile:  getEnv("OUTPUT_FILE", "research_paper.md"),
		UploadDir:   getEnv("UPLOAD_DIR", "documents"),

		LLMProvider:    strings.ToLower(getEnv("LLM_PROVIDER", "deepseek")),
		LLMAPIKey:      getEnv("LLM_API_KEY", getEnv("DEEPSEEK_API_KEY", "")),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "https://api.deepseek.com"),
		GenModel:       getEnv("GEN_MODEL", "deepseek-chat"),
		GenTemperature: getEnvFloat("GEN_TEMPERATURE", 0.8),
		LLMTimeout:     getEnvDuration("LLM_TIMEOUT", 5*time.Minute),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),

		Embedder:       strings.ToLower(getEnv("EMBEDDER", "hash")),
		EmbedModel:     getEnv("EMBED_MODEL", ""),
		EmbedDim:       getEnvInt("EMBED_DIM", 256),
		EmbedBatchSize: getEnvInt("EMBED_BATCH_SIZE", 16),
		EnableIndex:    getEnvBool("ENABLE_INDEX", false),
		IndexStore:     strings.ToLower(getEnv("INDEX_STORE", "memory")),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SslCertPath:    getEnv("SSL_CERT_PATH", ""),

		ChunkSize:       getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", 150),
		MaxContextChars: getEnvInt("MAX_CONTEXT_CHARS", 8000),
		FetchTimeout:    getEnvDuration("FETCH_TIMEOUT", 30*time.Second),
		ExtractWorkers:  getEnvInt("EXTRACT_WORKERS", 1),

		ArtifactStore:  strings.ToLower(getEnv("ARTIFACT_STORE", "")),
		AwsAccessKey:   getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:   getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:      getEnv("AWS_REGION", "us-east-2"),
		BucketName:     getEnv("BUCKET_NAME", "scholara-papers"),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "scholara-papers"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}

	return cfg
}

// Validate reports settings that make paper generation impossible. It is
// called once at startup by the commands that generate.
func (c *Config) Validate() error {
	var errs []error

	switch c.LLMProvider {
	case "deepseek", "openai":
		if c.LLMAPIKey == "" {
			errs = append(errs, fmt.Errorf("%s provider needs DEEPSEEK_API_KEY or LLM_API_KEY", c.LLMProvider))
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("gemini provider needs GEMINI_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider))
	}

	if c.ChunkOverlap < 0 || c.ChunkSize <= c.ChunkOverlap {
		errs = append(errs, fmt.Errorf("CHUNK_SIZE (%d) must be greater than CHUNK_OVERLAP (%d) >= 0", c.ChunkSize, c.ChunkOverlap))
	}
	if c.MaxContextChars <= 0 {
		errs = append(errs, errors.New("MAX_CONTEXT_CHARS must be positive"))
	}
	if c.ExtractWorkers < 1 {
		errs = append(errs, errors.New("EXTRACT_WORKERS must be at least 1"))
	}

	if c.EnableIndex {
		switch c.Embedder {
		case "hash":
		case "gemini":
			if c.GeminiAPIKey == "" {
				errs = append(errs, errors.New("gemini embedder needs GEMINI_API_KEY"))
			}
		case "openai":
			if c.LLMAPIKey == "" {
				errs = append(errs, errors.New("openai embedder needs LLM_API_KEY"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown EMBEDDER %q", c.Embedder))
		}
		switch c.IndexStore {
		case "memory":
		case "pgvector":
			if c.DatabaseURL == "" {
				errs = append(errs, errors.New("pgvector index store needs DATABASE_URL"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown INDEX_STORE %q", c.IndexStore))
		}
	}

	switch c.ArtifactStore {
	case "", "s3", "minio":
	default:
		errs = append(errs, fmt.Errorf("unknown ARTIFACT_STORE %q", c.ArtifactStore))
	}

	return errors.Join(errs...)
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("WARN: %s=%q not a number, using default %g", key, v, def)
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a bool, using default %t", key, v, def)
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a duration, using default %s", key, v, def)
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
