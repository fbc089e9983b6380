package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Default rule sets for the content filter. Field names are matched
// case-insensitively; the lists can be overridden through the environment.
var (
	defaultAllowFields = []string{
		"label", "RMBLabel", "description", "baseDesc", "title", "titleShort",
		"rulesStrings", "labelNoun", "gerund", "reportString",
		"text", "message", "verb", "skillLabel", "pawnLabel",
	}
	defaultDenyFields = []string{
		"defName", "ParentName", "visible", "baseMoodEffect", "Class",
		"ignoreIllegalLabelCharacterConfigError", "identifier", "slot",
		"spawnCategories", "skillGains", "workDisables", "requiredWorkTags",
		"bodyTypeGlobal", "bodyTypeFemale", "bodyTypeMale", "forcedTraits",
		"initialSeverity", "minSeverity", "maxSeverity", "isBad", "tendable",
		"scenarioCanAdd", "comps", "defaultLabelColor", "hediffDef",
		"becomeVisible", "rulePack", "retro", "Social",
	}
	defaultNonTextPatterns = []string{
		`^\s*\(\s*\d+\s*,\s*[\d*\.]+\s*\)\s*$`,
		`^\s*[\d.]+\s*$`,
		`^\s*(true|false)\s*$`,
	}
)

type Config struct {
	SourceLanguage string
	TargetLanguage string

	AllowFields     []string
	DenyFields      []string
	NonTextPatterns []string

	DictionaryFile string

	MTAPIKey   string
	MTEndpoint string
	MTModel    string

	DatabaseURL   string
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	WorkerCount         int
	BatchSize           int
	EmbeddingEndpoint   string
	EmbeddingModel      string
	EmbeddingDimensions int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		SourceLanguage:      getEnv("SOURCE_LANGUAGE", "English"),
		TargetLanguage:      getEnv("TARGET_LANGUAGE", "ChineseSimplified"),
		AllowFields:         getEnvList("ALLOW_FIELDS", defaultAllowFields),
		DenyFields:          getEnvList("DENY_FIELDS", defaultDenyFields),
		NonTextPatterns:     getEnvList("NON_TEXT_PATTERNS", defaultNonTextPatterns),
		DictionaryFile:      getEnv("DICTIONARY_FILE", "dictionary.yaml"),
		MTAPIKey:            getEnv("MT_API_KEY", ""),
		MTEndpoint:          getEnv("MT_ENDPOINT", "https://generativelanguage.googleapis.com/v1beta/models"),
		MTModel:             getEnv("MT_MODEL", "gemini-2.5-flash"),
		DatabaseURL:         getEnv("DATABASE_URL", "postgres://localhost:5432/mod_translator?sslmode=disable"),
		Neo4jURI:            getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:           getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:       getEnv("NEO4J_PASSWORD", "password"),
		WorkerCount:         getEnvInt("WORKER_COUNT", 8),
		BatchSize:           getEnvInt("BATCH_SIZE", 50),
		EmbeddingEndpoint:   getEnv("EMBEDDING_ENDPOINT", "https://generativelanguage.googleapis.com/v1beta/openai"),
		EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 768),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
