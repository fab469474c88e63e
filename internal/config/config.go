package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/residenza/service-facility/internal/platform/blob"
	"github.com/residenza/service-facility/internal/platform/cache"
	"github.com/residenza/service-facility/internal/platform/database"
)

// EnvPrefix prefixes every environment override, e.g. FACILITY_DB_HOST.
const EnvPrefix = "FACILITY"

// ServiceConfig holds all configuration for the facility service.
type ServiceConfig struct {
	App   AppConfig   `mapstructure:"app"`
	DB    DBConfig    `mapstructure:"db"`
	JWT   JWTConfig   `mapstructure:"jwt"`
	Kafka KafkaConfig `mapstructure:"kafka"`
	Redis RedisConfig `mapstructure:"redis"`
	Blob  BlobConfig  `mapstructure:"blob"`
	HTTP  HTTPConfig  `mapstructure:"http"`
}

// AppConfig holds process-level settings.
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
	// Timezone is the zone booking dates and start times are interpreted in.
	Timezone string `mapstructure:"timezone"`
}

type DBConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	AccessTTL time.Duration `mapstructure:"access_ttl"`
}

type KafkaConfig struct {
	Brokers        []string `mapstructure:"brokers"`
	GroupPrefix    string   `mapstructure:"group_prefix"`
	BookingTopic   string   `mapstructure:"booking_topic"`
	ComplaintTopic string   `mapstructure:"complaint_topic"`
	FacilityTopic  string   `mapstructure:"facility_topic"`
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	FacilityTTL time.Duration `mapstructure:"facility_ttl"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type BlobConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

type HTTPConfig struct {
	BodyLimitBytes int64    `mapstructure:"body_limit_bytes"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
}

// Load reads configuration from an optional YAML file and FACILITY_* environment
// variables. An empty path searches ./config.yaml and ./config/config.yaml.
func Load(path string) (*ServiceConfig, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg ServiceConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.timezone", "UTC")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "facility_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", "30m")

	// Registered so AutomaticEnv picks it up during Unmarshal.
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_ttl", "15m")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.group_prefix", "residenza-")
	v.SetDefault("kafka.booking_topic", "facility.booking.events")
	v.SetDefault("kafka.complaint_topic", "facility.complaint.events")
	v.SetDefault("kafka.facility_topic", "facility.events")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.facility_ttl", "5m")

	v.SetDefault("blob.bucket", "")
	v.SetDefault("blob.region", "us-east-1")
	v.SetDefault("blob.endpoint", "")
	v.SetDefault("blob.access_key_id", "")
	v.SetDefault("blob.secret_access_key", "")
	v.SetDefault("blob.public_base_url", "")
	v.SetDefault("blob.use_path_style", false)

	v.SetDefault("http.body_limit_bytes", 8<<20)
	v.SetDefault("http.cors_origins", []string{"*"})
}

// Validate rejects configurations the service cannot start with.
func (c *ServiceConfig) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret is required")
	}
	if len(c.JWT.Secret) < 16 {
		return errors.New("config: jwt.secret must be at least 16 characters")
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("config: app.port %d out of range 1-65535", c.App.Port)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("config: app.timezone: %w", err)
	}
	for _, o := range c.HTTP.CORSOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("config: http.cors_origins entry %q must be * or an http(s) origin", o)
		}
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *ServiceConfig) Addr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// Location returns the booking timezone. Validate guarantees it loads.
func (c *ServiceConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Postgres converts the db section for the database package.
func (c *ServiceConfig) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.DB.Host,
		Port:            c.DB.Port,
		User:            c.DB.User,
		Password:        c.DB.Password,
		DBName:          c.DB.Name,
		SSLMode:         c.DB.SSLMode,
		MaxOpenConns:    c.DB.MaxOpenConns,
		MaxIdleConns:    c.DB.MaxIdleConns,
		ConnMaxLifetime: c.DB.ConnMaxLifetime,
	}
}

// Cache converts the redis section for the cache package.
func (c *ServiceConfig) Cache() cache.Config {
	return cache.Config{Addr: c.Redis.Addr, Password: c.Redis.Password, DB: c.Redis.DB}
}

// BlobStore converts the blob section for the blob package.
func (c *ServiceConfig) BlobStore() blob.Config {
	return blob.Config{
		Bucket:          c.Blob.Bucket,
		Region:          c.Blob.Region,
		Endpoint:        c.Blob.Endpoint,
		AccessKeyID:     c.Blob.AccessKeyID,
		SecretAccessKey: c.Blob.SecretAccessKey,
		PublicBaseURL:   c.Blob.PublicBaseURL,
		UsePathStyle:    c.Blob.UsePathStyle,
	}
}
