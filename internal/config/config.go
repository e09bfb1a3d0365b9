package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const DefaultPath = "configs/config.toml"

type MainConfig struct {
	AppName     string `toml:"appName"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Environment string `toml:"environment"`
	SSLRedirect bool   `toml:"sslRedirect"`
}

type DatabaseConfig struct {
	// Driver is one of mysql, postgres, sqlite.
	Driver       string `toml:"driver"`
	DSN          string `toml:"dsn"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
	// MigrateLegacyTables creates chat_memory locally; in production the RAG service owns it.
	MigrateLegacyTables bool `toml:"migrateLegacyTables"`
	MaxOpenConns        int  `toml:"maxOpenConns"`
	MaxIdleConns        int  `toml:"maxIdleConns"`
}

type JwtConfig struct {
	Key       string `toml:"key"`
	ExpiresIn string `toml:"expiresIn"`
	Issuer    string `toml:"issuer"`
}

type RagConfig struct {
	BaseURL        string `toml:"baseURL"`
	TimeoutSeconds int    `toml:"timeoutSeconds"`
}

type LogConfig struct {
	LogPath string `toml:"logPath"`
	Level   string `toml:"level"`
}

type RedisConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	PoolSize     int    `toml:"poolSize"`
	MinIdleConns int    `toml:"minIdleConns"`
}

func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	port := r.Port
	if port == 0 {
		port = 6379
	}
	return fmt.Sprintf("%s:%d", r.Host, port)
}

type KafkaConfig struct {
	Brokers     []string `toml:"brokers"`
	ClientID    string   `toml:"clientID"`
	TurnTopic   string   `toml:"turnTopic"`
	TurnGroup   string   `toml:"turnGroup"`
	Partitions  int32    `toml:"partitions"`
	Replication int16    `toml:"replication"`
}

type RateLimitConfig struct {
	WindowMs    int64 `toml:"windowMs"`
	MaxRequests int   `toml:"maxRequests"`
}

type CorsConfig struct {
	Origins []string `toml:"origins"`
}

type Config struct {
	MainConfig      `toml:"mainConfig"`
	DatabaseConfig  `toml:"databaseConfig"`
	JwtConfig       `toml:"jwtConfig"`
	RagConfig       `toml:"ragConfig"`
	LogConfig       `toml:"logConfig"`
	RedisConfig     `toml:"redisConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	RateLimitConfig `toml:"rateLimitConfig"`
	CorsConfig      `toml:"corsConfig"`
}

// Load reads the TOML file (a missing file is not an error), overlays .env and
// process environment, then fills defaults.
func Load(path string) (*Config, error) {
	conf := new(Config)
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, conf); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()
	if err := conf.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	conf.applyDefaults()
	return conf, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, set func(int64)) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
		set(n)
		return nil
	}

	str("HOST", &c.MainConfig.Host)
	str("NODE_ENV", &c.MainConfig.Environment)
	str("APP_ENV", &c.MainConfig.Environment)
	str("DATABASE_DRIVER", &c.DatabaseConfig.Driver)
	str("DATABASE_URL", &c.DatabaseConfig.DSN)
	str("BACKEND_URL", &c.RagConfig.BaseURL)
	str("JWT_SECRET", &c.JwtConfig.Key)
	str("JWT_EXPIRES_IN", &c.JwtConfig.ExpiresIn)
	str("LOG_LEVEL", &c.LogConfig.Level)
	str("LOG_FILE", &c.LogConfig.LogPath)
	str("KAFKA_GROUP_ID", &c.KafkaConfig.TurnGroup)

	if v, ok := lookup("CORS_ORIGIN"); ok && strings.TrimSpace(v) != "" {
		c.CorsConfig.Origins = splitList(v)
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok && strings.TrimSpace(v) != "" {
		c.KafkaConfig.Brokers = splitList(v)
	}
	if v, ok := lookup("REDIS_ADDR"); ok && strings.TrimSpace(v) != "" {
		host, port, found := strings.Cut(strings.TrimSpace(v), ":")
		c.RedisConfig.Host = host
		if found {
			p, err := strconv.Atoi(port)
			if err != nil {
				return fmt.Errorf("env REDIS_ADDR: %w", err)
			}
			c.RedisConfig.Port = p
		}
	}

	if err := num("PORT", func(n int64) { c.MainConfig.Port = int(n) }); err != nil {
		return err
	}
	if err := num("RATE_LIMIT_WINDOW_MS", func(n int64) { c.RateLimitConfig.WindowMs = n }); err != nil {
		return err
	}
	return num("RATE_LIMIT_MAX_REQUESTS", func(n int64) { c.RateLimitConfig.MaxRequests = int(n) })
}

func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "ChatEduca"
	}
	if c.MainConfig.Host == "" {
		c.MainConfig.Host = "0.0.0.0"
	}
	if c.MainConfig.Port == 0 {
		c.MainConfig.Port = 3000
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Driver == "" {
		c.Driver = "mysql"
	}
	if c.JwtConfig.ExpiresIn == "" {
		c.JwtConfig.ExpiresIn = "7d"
	}
	if c.JwtConfig.Issuer == "" {
		c.JwtConfig.Issuer = c.AppName
	}
	if c.JwtConfig.Key == "" && c.IsDevelopment() {
		c.JwtConfig.Key = "change-this-secret-in-production"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8000"
	}
	if c.RagConfig.TimeoutSeconds <= 0 {
		c.RagConfig.TimeoutSeconds = 30
	}
	if c.LogConfig.Level == "" {
		c.LogConfig.Level = "info"
	}
	if c.LogConfig.LogPath == "" {
		c.LogConfig.LogPath = "logs/app.log"
	}
	if c.WindowMs <= 0 {
		c.WindowMs = 900000
	}
	if c.MaxRequests <= 0 {
		c.MaxRequests = 100
	}
	if len(c.Origins) == 0 {
		c.Origins = []string{"http://localhost:3000"}
	}
	if c.KafkaConfig.ClientID == "" {
		c.KafkaConfig.ClientID = c.AppName
	}
	if c.TurnTopic == "" {
		c.TurnTopic = "chateduca.chat.turns"
	}
	if c.TurnGroup == "" {
		c.TurnGroup = "chateduca-turn-stats"
	}
}

// Validate rejects settings that are only tolerable in development.
func (c *Config) Validate() error {
	if c.JwtConfig.Key == "" {
		return errors.New("jwtConfig.key (JWT_SECRET) is required")
	}
	if !c.IsDevelopment() && len(c.JwtConfig.Key) < 32 {
		return errors.New("jwtConfig.key (JWT_SECRET) must be at least 32 characters")
	}
	switch c.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Driver)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "test"
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.MainConfig.Host, c.MainConfig.Port)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
