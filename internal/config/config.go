package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/draftedge/draftedge/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	CORSAllowedOrigins         []string
	LogLevel                   logging.Level
	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	FeedBaseURL                string
	FeedTimeout                time.Duration
	FeedMaxRetries             int
	FeedCircuitEnabled         bool
	FeedCircuitFailureCount    int
	FeedCircuitOpenTimeout     time.Duration
	FeedCircuitHalfOpenMaxReq  int
	SleeperBaseURL             string
	SleeperTimeout             time.Duration
	SleeperMaxRetries          int
	SleeperCircuitEnabled      bool
	SleeperCircuitFailureCount int
	SleeperCircuitOpenTimeout  time.Duration
	SleeperCircuitHalfOpenMax  int
	GeminiBaseURL              string
	GeminiModel                string
	GeminiTimeout              time.Duration
	GeminiMaxRetries           int
	GeminiCircuitEnabled       bool
	GeminiCircuitFailureCount  int
	GeminiCircuitOpenTimeout   time.Duration
	GeminiCircuitHalfOpenMax   int
	RefreshInterval            time.Duration
	RefreshWorkers             int
	TrendingLookbackHours      int
	TrendingLimit              int
	AnalysisCacheTTL           time.Duration
	InternalJobToken           string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "120s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	feedTimeout, err := time.ParseDuration(getEnv("FEED_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FEED_TIMEOUT: %w", err)
	}
	if feedTimeout <= 0 {
		return Config{}, fmt.Errorf("FEED_TIMEOUT must be > 0")
	}
	feedMaxRetries, err := getEnvAsInt("FEED_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FEED_MAX_RETRIES: %w", err)
	}
	if feedMaxRetries < 0 {
		return Config{}, fmt.Errorf("FEED_MAX_RETRIES must be >= 0")
	}
	feedCircuit, err := loadCircuitSettings("FEED")
	if err != nil {
		return Config{}, err
	}

	sleeperTimeout, err := time.ParseDuration(getEnv("SLEEPER_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_TIMEOUT: %w", err)
	}
	if sleeperTimeout <= 0 {
		return Config{}, fmt.Errorf("SLEEPER_TIMEOUT must be > 0")
	}
	sleeperMaxRetries, err := getEnvAsInt("SLEEPER_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_MAX_RETRIES: %w", err)
	}
	if sleeperMaxRetries < 0 {
		return Config{}, fmt.Errorf("SLEEPER_MAX_RETRIES must be >= 0")
	}
	sleeperCircuit, err := loadCircuitSettings("SLEEPER")
	if err != nil {
		return Config{}, err
	}

	geminiTimeout, err := time.ParseDuration(getEnv("GEMINI_TIMEOUT", "90s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse GEMINI_TIMEOUT: %w", err)
	}
	if geminiTimeout <= 0 {
		return Config{}, fmt.Errorf("GEMINI_TIMEOUT must be > 0")
	}
	geminiMaxRetries, err := getEnvAsInt("GEMINI_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse GEMINI_MAX_RETRIES: %w", err)
	}
	if geminiMaxRetries < 0 {
		return Config{}, fmt.Errorf("GEMINI_MAX_RETRIES must be >= 0")
	}
	geminiCircuit, err := loadCircuitSettings("GEMINI")
	if err != nil {
		return Config{}, err
	}

	refreshInterval, err := time.ParseDuration(getEnv("REFRESH_INTERVAL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_INTERVAL: %w", err)
	}
	if refreshInterval <= 0 {
		return Config{}, fmt.Errorf("REFRESH_INTERVAL must be > 0")
	}
	refreshWorkers, err := getEnvAsInt("REFRESH_WORKERS", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_WORKERS: %w", err)
	}
	if refreshWorkers < 1 {
		return Config{}, fmt.Errorf("REFRESH_WORKERS must be >= 1")
	}

	trendingLookbackHours, err := getEnvAsInt("TRENDING_LOOKBACK_HOURS", 48)
	if err != nil {
		return Config{}, fmt.Errorf("parse TRENDING_LOOKBACK_HOURS: %w", err)
	}
	if trendingLookbackHours < 1 {
		return Config{}, fmt.Errorf("TRENDING_LOOKBACK_HOURS must be >= 1")
	}
	trendingLimit, err := getEnvAsInt("TRENDING_LIMIT", 25)
	if err != nil {
		return Config{}, fmt.Errorf("parse TRENDING_LIMIT: %w", err)
	}
	if trendingLimit < 1 {
		return Config{}, fmt.Errorf("TRENDING_LIMIT must be >= 1")
	}

	analysisCacheTTL, err := time.ParseDuration(getEnv("ANALYSIS_CACHE_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ANALYSIS_CACHE_TTL: %w", err)
	}
	if analysisCacheTTL <= 0 {
		return Config{}, fmt.Errorf("ANALYSIS_CACHE_TTL must be > 0")
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "draftedge-api"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                readTimeout,
		WriteTimeout:               writeTimeout,
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:                   parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		UptraceLogsEnabled:         uptraceLogsEnabled,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
		FeedBaseURL:                strings.TrimSpace(getEnv("FEED_BASE_URL", "https://raw.githubusercontent.com/dynastyprocess/data/master/files")),
		FeedTimeout:                feedTimeout,
		FeedMaxRetries:             feedMaxRetries,
		FeedCircuitEnabled:         feedCircuit.enabled,
		FeedCircuitFailureCount:    feedCircuit.failureCount,
		FeedCircuitOpenTimeout:     feedCircuit.openTimeout,
		FeedCircuitHalfOpenMaxReq:  feedCircuit.halfOpenMaxReq,
		SleeperBaseURL:             strings.TrimSpace(getEnv("SLEEPER_BASE_URL", "https://api.sleeper.app/v1")),
		SleeperTimeout:             sleeperTimeout,
		SleeperMaxRetries:          sleeperMaxRetries,
		SleeperCircuitEnabled:      sleeperCircuit.enabled,
		SleeperCircuitFailureCount: sleeperCircuit.failureCount,
		SleeperCircuitOpenTimeout:  sleeperCircuit.openTimeout,
		SleeperCircuitHalfOpenMax:  sleeperCircuit.halfOpenMaxReq,
		GeminiBaseURL:              strings.TrimSpace(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")),
		GeminiModel:                strings.TrimSpace(getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite-preview-06-17")),
		GeminiTimeout:              geminiTimeout,
		GeminiMaxRetries:           geminiMaxRetries,
		GeminiCircuitEnabled:       geminiCircuit.enabled,
		GeminiCircuitFailureCount:  geminiCircuit.failureCount,
		GeminiCircuitOpenTimeout:   geminiCircuit.openTimeout,
		GeminiCircuitHalfOpenMax:   geminiCircuit.halfOpenMaxReq,
		RefreshInterval:            refreshInterval,
		RefreshWorkers:             refreshWorkers,
		TrendingLookbackHours:      trendingLookbackHours,
		TrendingLimit:              trendingLimit,
		AnalysisCacheTTL:           analysisCacheTTL,
		InternalJobToken:           strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

type circuitSettings struct {
	enabled        bool
	failureCount   int
	openTimeout    time.Duration
	halfOpenMaxReq int
}

func loadCircuitSettings(prefix string) (circuitSettings, error) {
	enabled, err := strconv.ParseBool(getEnv(prefix+"_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return circuitSettings{}, fmt.Errorf("parse %s_CIRCUIT_ENABLED: %w", prefix, err)
	}

	failureCount, err := getEnvAsInt(prefix+"_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return circuitSettings{}, fmt.Errorf("parse %s_CIRCUIT_FAILURE_COUNT: %w", prefix, err)
	}
	if failureCount < 1 {
		return circuitSettings{}, fmt.Errorf("%s_CIRCUIT_FAILURE_COUNT must be >= 1", prefix)
	}

	openTimeout, err := time.ParseDuration(getEnv(prefix+"_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return circuitSettings{}, fmt.Errorf("parse %s_CIRCUIT_OPEN_TIMEOUT: %w", prefix, err)
	}
	if openTimeout <= 0 {
		return circuitSettings{}, fmt.Errorf("%s_CIRCUIT_OPEN_TIMEOUT must be > 0", prefix)
	}

	halfOpenMaxReq, err := getEnvAsInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return circuitSettings{}, fmt.Errorf("parse %s_CIRCUIT_HALF_OPEN_MAX_REQ: %w", prefix, err)
	}
	if halfOpenMaxReq < 1 {
		return circuitSettings{}, fmt.Errorf("%s_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1", prefix)
	}

	return circuitSettings{
		enabled:        enabled,
		failureCount:   failureCount,
		openTimeout:    openTimeout,
		halfOpenMaxReq: halfOpenMaxReq,
	}, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
