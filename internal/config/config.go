// Package config loads runtime settings from the environment with defaults,
// normalisation and validation. Command-line flags in cmd/telemacher are
// applied on top of the loaded Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// NLU backends.
const (
	NLUBackendHTTP   = "http"
	NLUBackendGemini = "gemini"
)

// SecurityConfig defines HSTS settings.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// UpstreamConfig holds the credentials and endpoints of the three
// capabilities a reply depends on.
type UpstreamConfig struct {
	GoogleAPIKey    string
	GooglePlacesURL string
	DarkSkyAPIKey   string
	DarkSkyURL      string

	NLUBackend   string // http|gemini
	NLUURL       string
	NLULocale    string
	GeminiAPIKey string
	GeminiModel  string

	Timeout    time.Duration // per attempt
	MaxRetries int
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Address           string
	Port              string // public chat listener
	OpsPort           string // health, metrics, swagger
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64
	GinMode           string // debug|release|test

	// Logging / Docs
	LogLevel       string
	LogPretty      bool
	SwaggerEnabled bool

	Upstream UpstreamConfig

	// Storage
	GeocodeCacheSize int
	DBPath           string // empty disables persistence

	// Rate limiting
	RateRPS   float64
	RateBurst int

	Security SecurityConfig
	OTEL     OTELConfig
}

// PublicAddr is the listen address of the chat endpoint.
func (c Config) PublicAddr() string { return joinHostPort(c.Address, c.Port) }

// OpsAddr is the listen address of the operational endpoints.
func (c Config) OpsAddr() string { return joinHostPort(c.Address, c.OpsPort) }

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, applies defaults,
// normalises values and validates the result.
func Load() (Config, error) {
	cfg := Config{
		Address:           getenv("ADDRESS", "0.0.0.0"),
		Port:              getenv("PORT", "8080"),
		OpsPort:           getenv("OPS_PORT", "9090"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   getdur("SHUTDOWN_TIMEOUT", time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		MaxBodyBytes:      int64(getint("MAX_BODY_BYTES", 256<<10)),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),

		Upstream: UpstreamConfig{
			GoogleAPIKey:    getenv("GOOGLE_API_KEY", ""),
			GooglePlacesURL: getenv("GOOGLE_PLACES_URL", "https://maps.googleapis.com/maps/api/place/textsearch/json"),
			DarkSkyAPIKey:   getenv("DARK_SKY_API_KEY", ""),
			DarkSkyURL:      getenv("DARK_SKY_URL", "https://api.darksky.net/forecast"),
			NLUBackend:      strings.ToLower(getenv("NLU_BACKEND", NLUBackendHTTP)),
			NLUURL:          getenv("NLU_URL", "http://localhost:5000/parse"),
			NLULocale:       getenv("NLU_LOCALE", "en_US"),
			GeminiAPIKey:    getenv("GEMINI_API_KEY", ""),
			GeminiModel:     getenv("GEMINI_MODEL", "gemini-2.0-flash"),
			Timeout:         getdur("UPSTREAM_TIMEOUT", 5*time.Second),
			MaxRetries:      getint("UPSTREAM_MAX_RETRIES", 0),
		},

		GeocodeCacheSize: getint("GEOCODE_CACHE_SIZE", 16384),
		DBPath:           os.Getenv("DB_PATH"),

		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "telemacher"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	cfg.DBPath = strings.TrimSpace(cfg.DBPath)

	return cfg, cfg.Validate()
}

// Validate checks invariants. It is exported so flag overrides can be
// re-validated after Load.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if err := validPort("PORT", c.Port); err != nil {
		return err
	}
	if err := validPort("OPS_PORT", c.OpsPort); err != nil {
		return err
	}
	if c.Port == c.OpsPort {
		return errors.New("PORT and OPS_PORT must differ")
	}
	if c.ReadTimeout <= 0 || c.ReadHeaderTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0 {
		return errors.New("timeouts must be positive durations")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be > 0")
	}
	if c.MaxHeaderBytes <= 0 {
		return errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("MAX_BODY_BYTES must be > 0")
	}
	if c.Upstream.Timeout <= 0 {
		return errors.New("UPSTREAM_TIMEOUT must be > 0")
	}
	if c.Upstream.MaxRetries < 0 {
		return errors.New("UPSTREAM_MAX_RETRIES must be >= 0")
	}
	switch c.Upstream.NLUBackend {
	case NLUBackendHTTP:
		if strings.TrimSpace(c.Upstream.NLUURL) == "" {
			return errors.New("NLU_URL must not be empty for the http backend")
		}
	case NLUBackendGemini:
		if strings.TrimSpace(c.Upstream.GeminiAPIKey) == "" {
			return errors.New("GEMINI_API_KEY must be set for the gemini backend")
		}
	default:
		return fmt.Errorf("NLU_BACKEND must be %q or %q", NLUBackendHTTP, NLUBackendGemini)
	}
	if c.GeocodeCacheSize < 1 {
		return errors.New("GEOCODE_CACHE_SIZE must be >= 1")
	}
	if c.RateRPS < 0 {
		return errors.New("RATE_RPS must be >= 0")
	}
	if c.RateBurst < 1 {
		return errors.New("RATE_BURST must be >= 1")
	}
	if c.Security.HSTSMaxAge < 0 {
		return errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1 {
		return errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return nil
}

// ---- helpers ----

func validPort(name, p string) error {
	n, err := strconv.Atoi(strings.TrimSpace(p))
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%s must be a port number in 1..65535", name)
	}
	return nil
}

func joinHostPort(host, port string) string {
	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		host = "[" + host + "]"
	}
	return host + ":" + port
}

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
