package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix antecede a todas las variables de entorno reconocidas.
const EnvPrefix = "LOCKPAD_"

type Config struct {
	App struct {
		// dev | prod
		Env string `yaml:"env" env:"ENV"`
	} `yaml:"app" envPrefix:"APP_"`

	Server struct {
		Addr            string        `yaml:"addr" env:"ADDR"`
		DisableSignup   bool          `yaml:"disable_signup" env:"DISABLE_SIGNUP"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
		MaxBodyBytes    int64         `yaml:"max_body_bytes" env:"MAX_BODY_BYTES"`
		MetricsEnabled  bool          `yaml:"metrics_enabled" env:"METRICS_ENABLED"`
		// TrustProxy: honrar X-Forwarded-For al limitar. Sólo detrás de un proxy propio.
		TrustProxy bool `yaml:"trust_proxy" env:"TRUST_PROXY"`
	} `yaml:"server" envPrefix:"SERVER_"`

	Storage struct {
		// memory | postgres | redis
		Driver   string `yaml:"driver" env:"DRIVER"`
		DSN      string `yaml:"dsn" env:"DSN"`
		Table    string `yaml:"table" env:"TABLE"`
		Postgres struct {
			MaxConns        int32         `yaml:"max_conns" env:"MAX_CONNS"`
			MinConns        int32         `yaml:"min_conns" env:"MIN_CONNS"`
			ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
			PageSize        int           `yaml:"page_size" env:"PAGE_SIZE"`
		} `yaml:"postgres" envPrefix:"POSTGRES_"`
		Redis RedisConfig `yaml:"redis" envPrefix:"REDIS_"`
	} `yaml:"storage" envPrefix:"STORAGE_"`

	Keys struct {
		// PEM inline o ruta a archivo.
		Private string `yaml:"private" env:"PRIVATE"`
		Public  string `yaml:"public" env:"PUBLIC"`
	} `yaml:"keys" envPrefix:"KEYS_"`

	Security struct {
		Argon2 struct {
			MemoryKiB   uint32 `yaml:"memory_kib" env:"MEMORY_KIB"`
			Time        uint32 `yaml:"time" env:"TIME"`
			Parallelism uint8  `yaml:"parallelism" env:"PARALLELISM"`
			KeyLen      uint32 `yaml:"key_len" env:"KEY_LEN"`
		} `yaml:"argon2" envPrefix:"ARGON2_"`
		PasswordPolicy struct {
			MinLength     int  `yaml:"min_length" env:"MIN_LENGTH"`
			MaxLength     int  `yaml:"max_length" env:"MAX_LENGTH"`
			RequireUpper  bool `yaml:"require_upper" env:"REQUIRE_UPPER"`
			RequireLower  bool `yaml:"require_lower" env:"REQUIRE_LOWER"`
			RequireDigit  bool `yaml:"require_digit" env:"REQUIRE_DIGIT"`
			RequireSymbol bool `yaml:"require_symbol" env:"REQUIRE_SYMBOL"`
		} `yaml:"password_policy" envPrefix:"PASSWORD_POLICY_"`
		PasswordBlacklistPath string `yaml:"password_blacklist_path" env:"PASSWORD_BLACKLIST_PATH"`
	} `yaml:"security" envPrefix:"SECURITY_"`

	Rate struct {
		Enabled bool `yaml:"enabled" env:"ENABLED"`
		// memory | redis (usa storage.redis)
		Driver    string `yaml:"driver" env:"DRIVER"`
		Authorize Limit  `yaml:"authorize" envPrefix:"AUTHORIZE_"`
		Register  Limit  `yaml:"register" envPrefix:"REGISTER_"`
	} `yaml:"rate" envPrefix:"RATE_"`

	Log struct {
		Level string `yaml:"level" env:"LEVEL"`
	} `yaml:"log" envPrefix:"LOG_"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	Prefix   string `yaml:"prefix" env:"PREFIX"`
}

type Limit struct {
	Limit  int           `yaml:"limit" env:"LIMIT"`
	Window time.Duration `yaml:"window" env:"WINDOW"`
}

// legacyEnv son los nombres planos del despliegue original
// (LOCKPAD_POSTGRES_URL, LOCKPAD_SECRET_KEY, ...). Ganan sobre el YAML.
type legacyEnv struct {
	PostgresURL   string `env:"POSTGRES_URL"`
	SecretKey     string `env:"SECRET_KEY"`
	PublicKey     string `env:"PUBLIC_KEY"`
	DisableSignup *bool  `env:"DISABLE_SIGNUP"`
}

// Load lee el YAML (si path no está vacío), aplica defaults, pisa con
// variables LOCKPAD_* y valida.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := c.applyEnvOverrides(); err != nil {
		return nil, err
	}
	c.applyDefaults()
	c.resolvePaths(path)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyEnvOverrides() error {
	opts := env.Options{Prefix: EnvPrefix}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	var legacy legacyEnv
	if err := env.ParseWithOptions(&legacy, opts); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	if legacy.PostgresURL != "" {
		c.Storage.DSN = legacy.PostgresURL
		if c.Storage.Driver == "" {
			c.Storage.Driver = "postgres"
		}
	}
	if legacy.SecretKey != "" {
		c.Keys.Private = legacy.SecretKey
	}
	if legacy.PublicKey != "" {
		c.Keys.Public = legacy.PublicKey
	}
	if legacy.DisableSignup != nil {
		c.Server.DisableSignup = *legacy.DisableSignup
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "0.0.0.0:5000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 64 << 10
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Table == "" {
		c.Storage.Table = "lockpad"
	}
	if c.Storage.Redis.Prefix == "" {
		c.Storage.Redis.Prefix = "lockpad:"
	}
	a := &c.Security.Argon2
	if a.MemoryKiB == 0 {
		a.MemoryKiB = 64 * 1024
	}
	if a.Time == 0 {
		a.Time = 3
	}
	if a.Parallelism == 0 {
		a.Parallelism = 1
	}
	if a.KeyLen == 0 {
		a.KeyLen = 32
	}
	if c.Rate.Driver == "" {
		c.Rate.Driver = "memory"
	}
	if c.Rate.Authorize.Limit == 0 {
		c.Rate.Authorize.Limit = 10
	}
	if c.Rate.Authorize.Window == 0 {
		c.Rate.Authorize.Window = time.Minute
	}
	if c.Rate.Register.Limit == 0 {
		c.Rate.Register.Limit = 5
	}
	if c.Rate.Register.Window == 0 {
		c.Rate.Register.Window = 10 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// resolvePaths hace relativas al YAML las rutas relativas.
func (c *Config) resolvePaths(cfgPath string) {
	if cfgPath == "" {
		return
	}
	base := filepath.Dir(cfgPath)
	rel := func(p string) string {
		if p == "" || filepath.IsAbs(p) || looksLikePEM(p) {
			return p
		}
		return filepath.Clean(filepath.Join(base, p))
	}
	c.Keys.Private = rel(c.Keys.Private)
	c.Keys.Public = rel(c.Keys.Public)
	c.Security.PasswordBlacklistPath = rel(c.Security.PasswordBlacklistPath)
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for postgres"))
		}
	case "redis":
		if c.Storage.Redis.Addr == "" {
			errs = append(errs, errors.New("storage.redis.addr is required for redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q not supported", c.Storage.Driver))
	}
	switch c.Rate.Driver {
	case "memory":
	case "redis":
		if c.Rate.Enabled && c.Storage.Redis.Addr == "" {
			errs = append(errs, errors.New("rate.driver redis needs storage.redis.addr"))
		}
	default:
		errs = append(errs, fmt.Errorf("rate.driver %q not supported", c.Rate.Driver))
	}
	if c.Rate.Authorize.Limit < 0 || c.Rate.Register.Limit < 0 {
		errs = append(errs, errors.New("rate limits must be >= 0"))
	}
	if pp := c.Security.PasswordPolicy; pp.MaxLength > 0 && pp.MaxLength < pp.MinLength {
		errs = append(errs, errors.New("security.password_policy.max_length < min_length"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsProd reporta app.env == prod.
func (c *Config) IsProd() bool { return strings.EqualFold(c.App.Env, "prod") }
