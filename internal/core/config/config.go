package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultPath = "./configs/config.local.yaml"

type HTTP struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	ReadTimeoutSec    int    `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec   int    `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec    int    `mapstructure:"idle_timeout_sec"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec"`
	MaxBodyMB         int64  `mapstructure:"max_body_mb"`
	MaxInFlight       int64  `mapstructure:"max_in_flight"`
}

type App struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	HTTP HTTP   `mapstructure:"http"`
}

type Log struct {
	Level      string `mapstructure:"level"`
	JSON       bool   `mapstructure:"json"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type JWT struct {
	Secret            string   `mapstructure:"secret"`
	PreviousSecrets   []string `mapstructure:"previous_secrets"`
	Issuer            string   `mapstructure:"issuer"`
	AccessTokenTTLMin int      `mapstructure:"access_token_ttl_min"`
	LeewaySec         int      `mapstructure:"leeway_sec"`
}

func (j JWT) TTL() time.Duration    { return time.Duration(j.AccessTokenTTLMin) * time.Minute }
func (j JWT) Leeway() time.Duration { return time.Duration(j.LeewaySec) * time.Second }

type Redis struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	ProductTTLSec int    `mapstructure:"product_ttl_sec"`
}

type DB struct {
	Driver             string `mapstructure:"driver"` // postgres | mysql | mongo | memory
	DSN                string `mapstructure:"dsn"`
	Name               string `mapstructure:"name"` // mongo database
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
	LogLevel           string `mapstructure:"log_level"`
}

type Mail struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type Scheduler struct {
	Enabled       bool   `mapstructure:"enabled"`
	HeartbeatSpec string `mapstructure:"heartbeat_spec"`
}

type Config struct {
	App       App       `mapstructure:"app"`
	Log       Log       `mapstructure:"log"`
	JWT       JWT       `mapstructure:"jwt"`
	DB        DB        `mapstructure:"db"`
	Redis     Redis     `mapstructure:"redis"`
	Mail      Mail      `mapstructure:"mail"`
	Scheduler Scheduler `mapstructure:"scheduler"`
}

var defaults = map[string]any{
	"app.name":                     "shop-api",
	"app.env":                      "dev",
	"app.http.host":                "0.0.0.0",
	"app.http.port":                5000,
	"app.http.read_timeout_sec":    10,
	"app.http.write_timeout_sec":   30,
	"app.http.idle_timeout_sec":    60,
	"app.http.request_timeout_sec": 10,
	"app.http.max_body_mb":         64,
	"app.http.max_in_flight":       300,

	"log.level":        "info",
	"log.json":         false,
	"log.file":         "",
	"log.max_size_mb":  100,
	"log.max_backups":  5,
	"log.max_age_days": 30,
	"log.compress":     true,

	"jwt.secret":               "",
	"jwt.previous_secrets":     []string{},
	"jwt.issuer":               "",
	"jwt.access_token_ttl_min": 60,
	"jwt.leeway_sec":           0,

	"db.driver":                "postgres",
	"db.dsn":                   "",
	"db.name":                  "shop",
	"db.username":              "",
	"db.password":              "",
	"db.max_open_conns":        20,
	"db.max_idle_conns":        10,
	"db.conn_max_lifetime_min": 30,
	"db.auto_migrate":          true,
	"db.log_level":             "warn",

	"redis.addr":            "",
	"redis.password":        "",
	"redis.db":              0,
	"redis.product_ttl_sec": 300,

	"mail.host":     "",
	"mail.port":     587,
	"mail.username": "",
	"mail.password": "",

	"scheduler.enabled":        true,
	"scheduler.heartbeat_spec": "*/2 * * * *",
}

// legacyEnv maps keys to the unprefixed variable names older deployments use.
var legacyEnv = map[string]string{
	"db.dsn":        "MONGODB_URI",
	"app.http.port": "PORT",
	"jwt.secret":    "JWT_SECRET",
	"mail.host":     "MAIL_HOST",
	"mail.port":     "MAIL_PORT",
	"mail.username": "MAIL_USERNAME",
	"mail.password": "MAIL_PASSWORD",
}

// Load reads the YAML file at path (or CONFIG_PATH, or the local default),
// then overlays APP_* environment variables. A missing default file is not an
// error; a missing explicit file is.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	explicit := true
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = defaultPath
			explicit = false
		}
	}
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		envKey := "APP_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if explicit {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// 只给了 MONGODB_URI 的老部署：driver 还是默认值时按 DSN 推断
	if !v.InConfig("db.driver") && os.Getenv("APP_DB_DRIVER") == "" && IsMongoURI(c.DB.DSN) {
		c.DB.Driver = "mongo"
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func IsMongoURI(dsn string) bool {
	return strings.HasPrefix(dsn, "mongodb://") || strings.HasPrefix(dsn, "mongodb+srv://")
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("jwt.secret is required (APP_JWT_SECRET)"))
	}
	if c.JWT.AccessTokenTTLMin <= 0 {
		errs = append(errs, errors.New("jwt.access_token_ttl_min must be positive"))
	}
	switch c.DB.Driver {
	case "postgres", "mysql", "mongo":
		switch {
		case c.DB.DSN == "":
			errs = append(errs, fmt.Errorf("db.dsn is required for driver %q", c.DB.Driver))
		case (c.DB.Driver == "mongo") != IsMongoURI(c.DB.DSN):
			errs = append(errs, fmt.Errorf("db.dsn scheme does not match driver %q", c.DB.Driver))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unsupported db.driver %q", c.DB.Driver))
	}
	return errors.Join(errs...)
}
