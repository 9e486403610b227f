package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Env      string
	Port     string
	LogLevel string

	CORSAllowOrigin []string

	DatabaseURL string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	LLMProvider  string
	LLMModel     string
	GeminiAPIKey string
	OpenAIAPIKey string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
	JWTSecret          string

	CompanyName    string
	BankDetails    string
	TaxRate        float64
	ArchiveExports bool
}

// Load reads .env files (never overriding the real environment), parses the
// environment and validates the result.
func Load() (Config, error) {
	if err := loadEnvFiles(".env", "cmd/.env"); err != nil {
		return Config{}, err
	}
	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// FromEnv parses configuration from lookup. Malformed values are reported
// together rather than silently replaced by defaults.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	e := &reader{lookup: lookup}
	cfg := Config{
		Env:      e.alias("ENV", "dev", envAliases),
		Port:     e.str("PORT", "8080"),
		LogLevel: strings.ToLower(e.str("LOG_LEVEL", "info")),

		CORSAllowOrigin: e.list("CORS_ALLOW_ORIGINS", "http://localhost:5173"),

		DatabaseURL: e.str("DATABASE_URL", ""),

		ObjectStoreType: e.oneOf("OBJECT_STORE", "local", "local", "s3"),
		LocalStoreDir:   e.str("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       e.str("AWS_REGION", ""),
		S3Bucket:        e.str("S3_BUCKET", ""),
		S3Prefix:        e.str("S3_PREFIX", ""),
		SSEKMSKeyID:     e.str("SSE_KMS_KEY_ID", ""),

		LLMProvider:  e.alias("LLM_PROVIDER", "gemini", providerAliases),
		LLMModel:     e.str("LLM_MODEL", ""),
		GeminiAPIKey: e.str("GEMINI_API_KEY", ""),
		OpenAIAPIKey: e.str("OPENAI_API_KEY", ""),

		GoogleClientID:     e.str("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: e.str("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  e.str("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      e.str("UI_REDIRECT_URL", ""),
		JWTSecret:          e.str("JWT_SECRET", ""),

		CompanyName:    e.str("COMPANY_NAME", ""),
		BankDetails:    e.str("BANK_DETAILS", ""),
		TaxRate:        e.rate("TAX_RATE", 0.15),
		ArchiveExports: e.boolean("ARCHIVE_EXPORTS", true),
	}
	return cfg, errors.Join(e.errs...)
}

// Validate checks settings that only make sense together.
func (c Config) Validate() error {
	var errs []error
	if c.Env == "production" {
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required in production"))
		}
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		}
	}
	if c.ObjectStoreType == "s3" && c.S3Bucket == "" {
		errs = append(errs, errors.New("OBJECT_STORE=s3 requires S3_BUCKET"))
	}
	return errors.Join(errs...)
}

// IsDev reports environments that may fall back to in-memory storage.
func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "local"
}

func loadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

type reader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *reader) raw(key string) string {
	v, _ := r.lookup(key)
	return strings.TrimSpace(v)
}

func (r *reader) str(key, def string) string {
	if v := r.raw(key); v != "" {
		return v
	}
	return def
}

func (r *reader) list(key, def string) []string {
	var out []string
	for _, p := range strings.Split(r.str(key, def), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (r *reader) oneOf(key, def string, allowed ...string) string {
	v := strings.ToLower(r.str(key, def))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	r.errs = append(r.errs, fmt.Errorf("%s=%q: want one of %s", key, v, strings.Join(allowed, ", ")))
	return def
}

// alias maps an accepted spelling to its canonical value. Unknown values are
// reported and def is returned.
func (r *reader) alias(key, def string, aliases map[string]string) string {
	v := strings.ToLower(r.str(key, def))
	if canonical, ok := aliases[v]; ok {
		return canonical
	}
	accepted := make([]string, 0, len(aliases))
	for a := range aliases {
		accepted = append(accepted, a)
	}
	sort.Strings(accepted)
	r.errs = append(r.errs, fmt.Errorf("%s=%q: want one of %s", key, v, strings.Join(accepted, ", ")))
	return def
}

// rate parses a fraction in [0, 1), e.g. 0.15 for 15%.
func (r *reader) rate(key string, def float64) float64 {
	v := r.raw(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f >= 1 {
		r.errs = append(r.errs, fmt.Errorf("%s=%q: want a fraction between 0 and 1", key, v))
		return def
	}
	return f
}

func (r *reader) boolean(key string, def bool) bool {
	v := r.raw(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s=%q: want true or false", key, v))
		return def
	}
	return b
}

var envAliases = map[string]string{
	"dev":         "dev",
	"development": "dev",
	"local":       "local",
	"staging":     "staging",
	"prod":        "production",
	"production":  "production",
}

var providerAliases = map[string]string{
	"gemini":   "gemini",
	"openai":   "openai",
	"none":     "none",
	"off":      "none",
	"disabled": "none",
}
