package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

const envPrefix = "EMAILD"

// ---- Root ----

type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Queue      QueueConfig      `mapstructure:"queue"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	SQS        SQSConfig        `mapstructure:"sqs"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	SendGrid   SendGridConfig   `mapstructure:"sendgrid"`
	Mailer     MailerConfig     `mapstructure:"mailer"`
	Senders    SendersConfig    `mapstructure:"senders"`
	Validation ValidationConfig `mapstructure:"validation"`
	MySQL      DatabaseConfig   `mapstructure:"mysql"`
	Redis      RedisConfig      `mapstructure:"redis"`
}

// ---- Leaf structs ----

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type QueueConfig struct {
	Driver string `mapstructure:"driver"` // kafka | sqs
}

type KafkaConfig struct {
	Brokers        []string `mapstructure:"brokers"`
	Topic          string   `mapstructure:"topic"`
	GroupID        string   `mapstructure:"group_id"`
	MinBytes       int      `mapstructure:"min_bytes"`
	MaxBytes       int      `mapstructure:"max_bytes"`
	CommitInterval int      `mapstructure:"commit_interval_ms"`
}

type SQSConfig struct {
	QueueURL           string `mapstructure:"queue_url"`
	Region             string `mapstructure:"region"`
	AccessKeyAndSecret string `mapstructure:"access_key_and_secret_key"` // "KEY:SECRET"
	WaitTimeSeconds    int32  `mapstructure:"wait_time_seconds"`
	MaxMessages        int32  `mapstructure:"max_messages"`
	VisibilityTimeout  int32  `mapstructure:"visibility_timeout_seconds"`
}

type WorkerConfig struct {
	Threads int `mapstructure:"threads"`
}

type SendGridConfig struct {
	APIKey        string `mapstructure:"api_key"`
	EmailTypesCSV string `mapstructure:"email_types_csv"`
}

// Enabled reports whether the third-party channel can be constructed.
func (c SendGridConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

type MailerConfig struct {
	Driver string    `mapstructure:"driver"` // stdout | ses
	SES    SESConfig `mapstructure:"ses"`
}

type SESConfig struct {
	Region             string `mapstructure:"region"`
	AccessKeyAndSecret string `mapstructure:"access_key_and_secret_key"`
	ConfigurationSet   string `mapstructure:"configuration_set"`
}

type SendersConfig struct {
	NoReplyAddress string `mapstructure:"no_reply_address"`
	InfoAddress    string `mapstructure:"info_address"`
}

type ValidationConfig struct {
	ShadyDomains  []string      `mapstructure:"shady_domains"`
	MXCheck       bool          `mapstructure:"mx_check"`
	LookupTimeout time.Duration `mapstructure:"lookup_timeout"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// SplitKeyPair splits a "KEY:SECRET" credential pair. ok is false when either half is missing.
func SplitKeyPair(s string) (key, secret string, ok bool) {
	key, secret, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found || key == "" || secret == "" {
		return "", "", false
	}
	return key, secret, true
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (EMAILD_*).
func Load(path string) (Config, error) {
	v, err := newViper(path)
	if err != nil {
		return Config{}, err
	}
	return decode(v)
}

func newViper(path string) (*viper.Viper, error) {
	// .env is optional
	_ = godotenv.Load()

	// embedded defaults are registered as viper defaults so a re-read of the
	// user file on change does not drop them
	d := viper.New()
	d.SetConfigType("yaml")
	if err := d.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("read defaults: %w", err)
	}

	v := viper.New()
	for _, k := range d.AllKeys() {
		v.SetDefault(k, d.Get(k))
	}

	if path != "" {
		v.SetConfigFile(path)
		_ = v.ReadInConfig()
	}

	// env override (EMAILD_*), nested keys use "_" (sendgrid.api_key -> EMAILD_SENDGRID_API_KEY)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
