package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr    string   `yaml:"http_addr"`
	APIPrefix   string   `yaml:"api_prefix"`
	PublicURL   string   `yaml:"public_url"`
	CORSOrigins []string `yaml:"cors_origins"`

	DB    DB    `yaml:"db"`
	Blob  Blob  `yaml:"blob"`
	Text  Text  `yaml:"text_analytics"`
	Chat  Chat  `yaml:"chat"`
	Voice Voice `yaml:"speech"`
	Auth  Auth  `yaml:"auth"`
	Log   Log   `yaml:"log"`

	UpstreamTimeout time.Duration `yaml:"-"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`

	UpstreamTimeoutRaw string `yaml:"upstream_timeout"`
}

type DB struct {
	Driver string `yaml:"driver"` // postgres|sqlite
	DSN    string `yaml:"dsn"`

	// Identity provider used to mint the connection password. Empty TokenURL
	// means the DSN carries its own credentials.
	TokenURL     string `yaml:"token_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TokenScope   string `yaml:"token_scope"`
}

type Blob struct {
	Driver    string `yaml:"driver"`    // fs|s3
	BasePath  string `yaml:"base_path"` // fs only
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`   // s3-compatible override, e.g. minio
	PublicURL string `yaml:"public_url"` // base for returned blob addresses
}

type Text struct {
	Endpoint string `yaml:"endpoint"`
	Key      string `yaml:"key"`
}

type Chat struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

type Voice struct {
	Region   string `yaml:"region"`
	Key      string `yaml:"key"`
	Endpoint string `yaml:"endpoint"`
	Name     string `yaml:"voice"`
	TmpDir   string `yaml:"tmp_dir"`
}

type Auth struct {
	Enabled       bool   `yaml:"enabled"`
	HMACSecret    string `yaml:"hmac_secret"`
	AdminUser     string `yaml:"admin_user"`
	AdminPassHash string `yaml:"admin_pass_hash"` // bcrypt
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json|text
}

// FromEnv reads the configuration from the environment alone.
func FromEnv() Config {
	c := fromEnv()
	c.resolve()
	return c
}

func fromEnv() Config {
	pub := os.Getenv("PUBLIC_URL")
	c := Config{
		HTTPAddr:    envOr("HTTP_ADDR", ":3000"),
		APIPrefix:   envOr("API_PREFIX", "/api"),
		PublicURL:   pub,
		CORSOrigins: csvOr("CORS_ORIGINS", "*"),
		DB: DB{
			Driver:       envOr("DB_DRIVER", "sqlite"),
			DSN:          os.Getenv("DB_DSN"),
			TokenURL:     os.Getenv("DB_TOKEN_URL"),
			ClientID:     os.Getenv("DB_CLIENT_ID"),
			ClientSecret: os.Getenv("DB_CLIENT_SECRET"),
			TokenScope:   envOr("DB_TOKEN_SCOPE", "https://ossrdbms-aad.database.windows.net/.default"),
		},
		Blob: Blob{
			Driver:    envOr("BLOB_DRIVER", "fs"),
			BasePath:  envOr("BLOB_BASE_PATH", "./data/blogmedia"),
			Bucket:    envOr("BLOB_BUCKET", "blogmedia"),
			Region:    envOr("BLOB_REGION", "us-east-1"),
			Endpoint:  os.Getenv("BLOB_ENDPOINT"),
			PublicURL: os.Getenv("BLOB_PUBLIC_URL"),
		},
		Text: Text{
			Endpoint: os.Getenv("TEXT_ANALYTICS_ENDPOINT"),
			Key:      os.Getenv("TEXT_ANALYTICS_KEY"),
		},
		Chat: Chat{
			URL:    envOr("OPENAI_CHAT_URL", "https://blogopenai.openai.azure.com/openai/deployments/gpt-4/chat/completions?api-version=2024-08-01-preview"),
			APIKey: os.Getenv("OPENAI_API_KEY"),
		},
		Voice: Voice{
			Region:   envOr("SPEECH_REGION", "uaenorth"),
			Key:      os.Getenv("SPEECH_KEY"),
			Endpoint: os.Getenv("SPEECH_ENDPOINT"),
			Name:     envOr("SPEECH_VOICE", "en-US-JennyNeural"),
			TmpDir:   envOr("SPEECH_TMP_DIR", os.TempDir()),
		},
		Auth: Auth{
			Enabled:       envBool("ENABLE_AUTH", false),
			HMACSecret:    envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
			AdminUser:     envOr("ADMIN_USER", "admin"),
			AdminPassHash: os.Getenv("ADMIN_PASS_HASH"),
		},
		Log: Log{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
		UpstreamTimeoutRaw: envOr("UPSTREAM_TIMEOUT", "30s"),
		MaxUploadBytes:     envInt64("MAX_UPLOAD_BYTES", 32<<20),
	}
	return c
}

// resolve fills the values derived from other keys.
func (c *Config) resolve() {
	c.UpstreamTimeout = parseDuration(c.UpstreamTimeoutRaw, 30*time.Second)
	if c.Blob.PublicURL == "" && c.Blob.Driver == "fs" {
		c.Blob.PublicURL = c.baseURL() + "/media"
	}
}

// baseURL is PUBLIC_URL, or the local address the server listens on.
func (c Config) baseURL() string {
	if c.PublicURL != "" {
		return strings.TrimSuffix(c.PublicURL, "/")
	}
	host, port, err := net.SplitHostPort(c.HTTPAddr)
	if err != nil {
		return "http://localhost"
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// Load returns the environment configuration with the YAML file at path laid
// over it. ${VAR} references in the file are expanded before parsing. An
// empty path skips the file.
func Load(path string) (Config, error) {
	c := fromEnv()
	if path == "" {
		c.resolve()
		if err := c.Validate(); err != nil {
			return Config{}, err
		}
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &c); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	c.resolve()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the values the process cannot start without.
func (c Config) Validate() error {
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported db driver %q", c.DB.Driver)
	}
	switch c.Blob.Driver {
	case "fs", "s3":
	default:
		return fmt.Errorf("config: unsupported blob driver %q", c.Blob.Driver)
	}
	if c.Auth.Enabled && c.Auth.AdminPassHash == "" {
		return fmt.Errorf("config: auth enabled but ADMIN_PASS_HASH is empty")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: max upload bytes must be positive")
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt64(k string, def int64) int64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseDuration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
