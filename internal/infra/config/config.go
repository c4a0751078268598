package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App        AppSettings        `mapstructure:"app"`
	Postgres   PostgresSettings   `mapstructure:"postgres"`
	Redis      RedisSettings      `mapstructure:"redis"`
	Kafka      KafkaSettings      `mapstructure:"kafka"`
	Session    SessionSettings    `mapstructure:"session"`
	Encryption EncryptionSettings `mapstructure:"encryption"`
	RateLimit  RateLimitSettings  `mapstructure:"rate_limit"`
	Argon2     Argon2Settings     `mapstructure:"argon2"`
	Telemetry  TelemetrySettings  `mapstructure:"telemetry"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures the session store backend.
type RedisSettings struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	DB            int    `mapstructure:"db"`
	Password      string `mapstructure:"password"`
	TLSEnabled    bool   `mapstructure:"tls_enabled"`
	SessionPrefix string `mapstructure:"session_prefix"`
}

// KafkaSettings configures the audit event producer. An empty broker list
// disables Kafka and falls back to the logging publisher.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// SessionSettings controls the session cookie and server-side session TTL.
type SessionSettings struct {
	CookieName   string        `mapstructure:"cookie_name"`
	CookieDomain string        `mapstructure:"cookie_domain"`
	TTL          time.Duration `mapstructure:"ttl"`
	Secure       bool          `mapstructure:"secure"`
}

// EncryptionSettings locates the symmetric key file used for data at rest.
type EncryptionSettings struct {
	KeyFile string `mapstructure:"key_file"`
}

// RateLimitSettings configures sliding-window limits per endpoint.
type RateLimitSettings struct {
	WindowDuration      time.Duration `mapstructure:"window_duration"`
	LoginMaxAttempts    int           `mapstructure:"login_max_attempts"`
	RegisterMaxAttempts int           `mapstructure:"register_max_attempts"`
}

// TelemetrySettings toggles the Prometheus service info gauge.
type TelemetrySettings struct {
	Enabled bool `mapstructure:"enabled"`
}

// Argon2Settings configures Argon2id password hashing parameters.
type Argon2Settings struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APPSEGURA")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.session_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"session.cookie_name",
		"session.cookie_domain",
		"session.ttl",
		"session.secure",
		"encryption.key_file",
		"rate_limit.window_duration",
		"rate_limit.login_max_attempts",
		"rate_limit.register_max_attempts",
		"argon2.memory",
		"argon2.iterations",
		"argon2.parallelism",
		"argon2.salt_length",
		"argon2.key_length",
		"telemetry.enabled",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "appsegura")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "appsegura")
	v.SetDefault("postgres.password", "appsegura_password")
	v.SetDefault("postgres.database", "appsegura")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.session_prefix", "appsegura:session")

	// No brokers means audit events go to the logging stub.
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "appsegura")

	v.SetDefault("session.cookie_name", "secure_session")
	v.SetDefault("session.cookie_domain", "")
	v.SetDefault("session.ttl", "1h")
	v.SetDefault("session.secure", false)

	v.SetDefault("encryption.key_file", "./secrets/.secret.key")

	v.SetDefault("rate_limit.window_duration", "15m")
	v.SetDefault("rate_limit.login_max_attempts", 5)
	v.SetDefault("rate_limit.register_max_attempts", 3)

	v.SetDefault("argon2.memory", 65536)
	v.SetDefault("argon2.iterations", 3)
	v.SetDefault("argon2.parallelism", 4)
	v.SetDefault("argon2.salt_length", 16)
	v.SetDefault("argon2.key_length", 32)

	v.SetDefault("telemetry.enabled", true)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "APPSEGURA_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
