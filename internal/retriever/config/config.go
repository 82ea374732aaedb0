// Package config loads the retriever's process configuration: a YAML base
// file narrated at startup the way the teacher's config loader does,
// layered with environment variable overrides for every field in spec.md
// §6.3.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

// ObsConfig configures the OpenTelemetry exporters wired up in
// internal/observability/otel.go.
type ObsConfig struct {
	OTLP           string `yaml:"otlp_endpoint"`
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	Environment    string `yaml:"environment"`
}

// RetrievalConfig holds every tunable named in spec.md §6.3.
type RetrievalConfig struct {
	DenseK                int     `yaml:"dense_k"`
	SparseK               int     `yaml:"sparse_k"`
	FuseK                 int     `yaml:"fuse_k"`
	RerankEnabled         bool    `yaml:"rerank_enabled"`
	RerankShadow          bool    `yaml:"rerank_shadow"`
	FinalK                int     `yaml:"final_k"`
	ContextTokenBudget    int     `yaml:"context_token_budget"`
	AlphaDense            float64 `yaml:"alpha_dense"`
	BetaSparse            float64 `yaml:"beta_sparse"`
	RequestDeadlineMS     int     `yaml:"request_deadline_ms"`
	EmbeddingModel        string  `yaml:"embedding_model"`
	LLMModel              string  `yaml:"llm_model"`
	RerankerModel         string  `yaml:"reranker_model"`
	ConversationMaxPairs  int     `yaml:"conversation_max_pairs"`
}

// Config is the immutable, process-wide configuration value built once at
// startup and handed to registry.New. Changes require a restart (spec §5).
type Config struct {
	HTTPAddr  string          `yaml:"http_addr"`
	LogLevel  string          `yaml:"log_level"`
	LogPath   string          `yaml:"log_path"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Obs       ObsConfig       `yaml:"observability"`

	QdrantAddr      string `yaml:"qdrant_addr"`
	QdrantCollection string `yaml:"qdrant_collection"`
	SparseIndexPath string `yaml:"sparse_index_path"`

	EmbeddingBaseURL string `yaml:"embedding_base_url"`
	EmbeddingAPIKey  string `yaml:"-"`

	AnthropicAPIKey string `yaml:"-"`

	PostgresDSN string `yaml:"-"`
	RedisAddr   string `yaml:"redis_addr"`

	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_trace_topic"`

	ClickHouseDSN string `yaml:"-"`
}

func applyDefaults(c *Config) {
	applied := map[string]bool{}

	setStr := func(name string, dst *string, v string) {
		if *dst == "" {
			*dst = v
			applied[name] = true
		}
	}
	setInt := func(name string, dst *int, v int) {
		if *dst == 0 {
			*dst = v
			applied[name] = true
		}
	}
	setFloat := func(name string, dst *float64, v float64) {
		if *dst == 0 {
			*dst = v
			applied[name] = true
		}
	}

	setStr("http_addr", &c.HTTPAddr, ":8085")
	setStr("log_level", &c.LogLevel, "info")
	setInt("retrieval.dense_k", &c.Retrieval.DenseK, 40)
	setInt("retrieval.sparse_k", &c.Retrieval.SparseK, 40)
	setInt("retrieval.fuse_k", &c.Retrieval.FuseK, 50)
	setInt("retrieval.final_k", &c.Retrieval.FinalK, 8)
	setInt("retrieval.context_token_budget", &c.Retrieval.ContextTokenBudget, 4000)
	setFloat("retrieval.alpha_dense", &c.Retrieval.AlphaDense, 0.7)
	setFloat("retrieval.beta_sparse", &c.Retrieval.BetaSparse, 0.3)
	setInt("retrieval.request_deadline_ms", &c.Retrieval.RequestDeadlineMS, 60000)
	setInt("retrieval.conversation_max_pairs", &c.Retrieval.ConversationMaxPairs, 5)
	setStr("sparse_index_path", &c.SparseIndexPath, "./data/sparse-index")
	setStr("qdrant_collection", &c.QdrantCollection, "cloudfuze_chunks")
	setStr("observability.service_name", &c.Obs.ServiceName, "retrieverd")
	setStr("observability.service_version", &c.Obs.ServiceVersion, "dev")
	setStr("observability.environment", &c.Obs.Environment, "development")

	for name := range applied {
		pterm.Debug.Printfln("config: applied default for %s", name)
	}
}

// Load reads a YAML config file (if path is non-empty and exists), applies
// defaults, loads a local .env via godotenv for developer convenience, then
// layers environment variable overrides on top — the same two-phase shape
// as the teacher's env-driven loader, extended with a YAML base layer.
func Load(path string) (*Config, error) {
	_ = godotenv.Overload()

	cfg := &Config{Retrieval: RetrievalConfig{RerankEnabled: true}}
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
			pterm.Success.Printfln("config: loaded %s", path)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(c *Config) {
	strVar(&c.HTTPAddr, "HTTP_ADDR")
	strVar(&c.LogLevel, "LOG_LEVEL")
	strVar(&c.LogPath, "LOG_PATH")

	intVar(&c.Retrieval.DenseK, "DENSE_K")
	intVar(&c.Retrieval.SparseK, "SPARSE_K")
	intVar(&c.Retrieval.FuseK, "FUSE_K")
	boolVar(&c.Retrieval.RerankEnabled, "RERANK_ENABLED")
	boolVar(&c.Retrieval.RerankShadow, "RERANK_SHADOW")
	intVar(&c.Retrieval.FinalK, "FINAL_K")
	intVar(&c.Retrieval.ContextTokenBudget, "CONTEXT_TOKEN_BUDGET")
	floatVar(&c.Retrieval.AlphaDense, "ALPHA_DENSE")
	floatVar(&c.Retrieval.BetaSparse, "BETA_SPARSE")
	intVar(&c.Retrieval.RequestDeadlineMS, "REQUEST_DEADLINE_MS")
	strVar(&c.Retrieval.EmbeddingModel, "EMBEDDING_MODEL")
	strVar(&c.Retrieval.LLMModel, "LLM_MODEL")
	strVar(&c.Retrieval.RerankerModel, "RERANKER_MODEL")
	intVar(&c.Retrieval.ConversationMaxPairs, "CONVERSATION_MAX_PAIRS")

	strVar(&c.QdrantAddr, "QDRANT_ADDR")
	strVar(&c.QdrantCollection, "QDRANT_COLLECTION")
	strVar(&c.SparseIndexPath, "SPARSE_INDEX_PATH")
	strVar(&c.EmbeddingBaseURL, "EMBEDDING_BASE_URL")
	strVar(&c.EmbeddingAPIKey, "EMBEDDING_API_KEY")
	strVar(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	strVar(&c.PostgresDSN, "POSTGRES_DSN")
	strVar(&c.RedisAddr, "REDIS_ADDR")
	strVar(&c.KafkaTopic, "KAFKA_TRACE_TOPIC")
	strVar(&c.ClickHouseDSN, "CLICKHOUSE_DSN")

	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		c.KafkaBrokers = strings.Split(v, ",")
	}

	strVar(&c.Obs.OTLP, "OTLP_ENDPOINT")
	strVar(&c.Obs.ServiceName, "OTEL_SERVICE_NAME")
	strVar(&c.Obs.Environment, "DEPLOY_ENVIRONMENT")
}

func strVar(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

func intVar(dst *int, env string) {
	v := strings.TrimSpace(os.Getenv(env))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		pterm.Warning.Printfln("config: ignoring invalid %s=%q", env, v)
		return
	}
	*dst = n
}

func floatVar(dst *float64, env string) {
	v := strings.TrimSpace(os.Getenv(env))
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		pterm.Warning.Printfln("config: ignoring invalid %s=%q", env, v)
		return
	}
	*dst = f
}

func boolVar(dst *bool, env string) {
	v := strings.TrimSpace(os.Getenv(env))
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		pterm.Warning.Printfln("config: ignoring invalid %s=%q", env, v)
		return
	}
	*dst = b
}

// validate enforces the one config-load-time invariant named explicitly in
// spec.md §4.6: the pre-rerank pool must be at least 5x the final K.
func validate(c *Config) error {
	if c.Retrieval.RerankEnabled && c.Retrieval.FuseK < c.Retrieval.FinalK*5 {
		return fmt.Errorf("config: retrieval.fuse_k (%d) must be >= final_k*5 (%d) when reranking is enabled",
			c.Retrieval.FuseK, c.Retrieval.FinalK*5)
	}
	if c.Retrieval.AlphaDense < 0 || c.Retrieval.BetaSparse < 0 {
		return fmt.Errorf("config: fusion weights must be non-negative")
	}
	return nil
}
