package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Log         LogConfig
	Console     ConsoleConfig
	Invitations InvitationsConfig
	Events      EventsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ConsoleConfig drives the admin console client.
type ConsoleConfig struct {
	BaseURL        string
	APIToken       string
	PageSize       int
	ProgramsWait   time.Duration
	RequestTimeout time.Duration
	ExportDir      string
}

// InvitationsConfig tunes invitation issuance on the admin API.
type InvitationsConfig struct {
	ExpiryTTL       time.Duration
	ProgramCacheTTL time.Duration
	SuppressionKey  string
	SweepInterval   time.Duration
}

// EventsConfig wires the NATS event bus used for invitation signals and mail delivery.
type EventsConfig struct {
	Enabled           bool
	NATSURL           string
	InvitationSubject string
	MailSubject       string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	pageSize := v.GetInt("CONSOLE_PAGE_SIZE")
	if pageSize <= 0 {
		pageSize = 20
	}
	cfg.Console = ConsoleConfig{
		BaseURL:        strings.TrimRight(v.GetString("CONSOLE_BASE_URL"), "/"),
		APIToken:       v.GetString("CONSOLE_API_TOKEN"),
		PageSize:       pageSize,
		ProgramsWait:   parseDuration(v.GetString("CONSOLE_PROGRAMS_WAIT"), 3*time.Second),
		RequestTimeout: parseDuration(v.GetString("CONSOLE_REQUEST_TIMEOUT"), 15*time.Second),
		ExportDir:      v.GetString("CONSOLE_EXPORT_DIR"),
	}

	cfg.Invitations = InvitationsConfig{
		ExpiryTTL:       parseDuration(v.GetString("INVITATION_EXPIRY_TTL"), 7*24*time.Hour),
		ProgramCacheTTL: parseDuration(v.GetString("PROGRAM_CACHE_TTL"), 10*time.Minute),
		SuppressionKey:  v.GetString("MAIL_SUPPRESSION_KEY"),
		SweepInterval:   parseDuration(v.GetString("INVITATION_SWEEP_INTERVAL"), 15*time.Minute),
	}

	cfg.Events = EventsConfig{
		Enabled:           v.GetBool("ENABLE_EVENTS"),
		NATSURL:           v.GetString("NATS_URL"),
		InvitationSubject: v.GetString("EVENTS_INVITATION_SUBJECT"),
		MailSubject:       v.GetString("EVENTS_MAIL_SUBJECT"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "admin_panel_sma")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "sma-adp")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CONSOLE_BASE_URL", "http://localhost:8080/api/v1")
	v.SetDefault("CONSOLE_API_TOKEN", "")
	v.SetDefault("CONSOLE_PAGE_SIZE", 20)
	v.SetDefault("CONSOLE_PROGRAMS_WAIT", "3s")
	v.SetDefault("CONSOLE_REQUEST_TIMEOUT", "15s")
	v.SetDefault("CONSOLE_EXPORT_DIR", "./exports")

	v.SetDefault("INVITATION_EXPIRY_TTL", "168h")
	v.SetDefault("PROGRAM_CACHE_TTL", "10m")
	v.SetDefault("MAIL_SUPPRESSION_KEY", "mail:suppressed")
	v.SetDefault("INVITATION_SWEEP_INTERVAL", "15m")

	v.SetDefault("ENABLE_EVENTS", false)
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("EVENTS_INVITATION_SUBJECT", "admin.invitation.created")
	v.SetDefault("EVENTS_MAIL_SUBJECT", "mail.invitation")
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
