package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Etcd     EtcdConfig     `mapstructure:"etcd"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	MongoDB  MongoDBConfig  `mapstructure:"mongodb"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Log      LogConfig      `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Shop     ShopConfig     `mapstructure:"shop"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Timeouts TimeoutConfig  `mapstructure:"timeouts"`
}

// ServerConfig is the internal gRPC order service.
type ServerConfig struct {
	Name string `mapstructure:"name"`
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Prefix      string        `mapstructure:"prefix"`
	LeaseTTL    int64         `mapstructure:"lease_ttl"`
}

func (c *EtcdConfig) Enabled() bool {
	return len(c.Endpoints) > 0
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
	// Collection holds the audit log.
	Collection string `mapstructure:"collection"`
}

type GatewayConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Encoding    string   `mapstructure:"encoding"`
	OutputPaths []string `mapstructure:"output_paths"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type PaymentConfig struct {
	Provider  string `mapstructure:"provider"`
	KeyID     string `mapstructure:"key_id"`
	KeySecret string `mapstructure:"key_secret"`
	Currency  string `mapstructure:"currency"`
}

type ShopConfig struct {
	OrderPrefix           string        `mapstructure:"order_prefix"`
	FreeShippingThreshold int64         `mapstructure:"free_shipping_threshold"`
	FlatShippingCost      int64         `mapstructure:"flat_shipping_cost"`
	TaxRate               string        `mapstructure:"tax_rate"`
	DeliveryWindow        time.Duration `mapstructure:"delivery_window"`
	DefaultLocation       string        `mapstructure:"default_location"`
	WarehouseLocation     string        `mapstructure:"warehouse_location"`
	Company               CompanyConfig `mapstructure:"company"`
}

type CompanyConfig struct {
	Name    string `mapstructure:"name" json:"name"`
	Address string `mapstructure:"address" json:"address"`
	Phone   string `mapstructure:"phone" json:"phone"`
	Email   string `mapstructure:"email" json:"email"`
	GST     string `mapstructure:"gst" json:"gst"`
	Website string `mapstructure:"website" json:"website"`
}

type NotifierConfig struct {
	Driver      string        `mapstructure:"driver"`
	APIURL      string        `mapstructure:"api_url"`
	APIKey      string        `mapstructure:"api_key"`
	SenderEmail string        `mapstructure:"sender_email"`
	SenderName  string        `mapstructure:"sender_name"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type TimeoutConfig struct {
	Database time.Duration `mapstructure:"database"`
	// External bounds calls to third-party HTTP APIs that set no timeout of their own.
	External time.Duration `mapstructure:"external"`
}

// Load reads configPath (optional) on top of built-in defaults. Every key can
// be overridden from the environment, e.g. SHOP_PAYMENT_KEY_SECRET.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("shop")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		// Read config file
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.inheritTimeouts()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "order-service")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 50052)

	v.SetDefault("gateway.host", "0.0.0.0")
	v.SetDefault("gateway.port", 5000)

	v.SetDefault("etcd.dial_timeout", 5*time.Second)
	v.SetDefault("etcd.prefix", "/services/")
	v.SetDefault("etcd.lease_ttl", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.ttl", 5*time.Minute)

	v.SetDefault("mysql.host", "localhost")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.database", "charcoal")
	v.SetDefault("mysql.max_idle_conns", 5)
	v.SetDefault("mysql.max_open_conns", 20)

	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "manvith-charcoal")
	v.SetDefault("mongodb.collection", "audit_logs")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.output_paths", []string{"stdout"})

	// Keys without a useful default are still registered so that
	// AutomaticEnv can fill them during Unmarshal.
	for _, key := range []string{
		"auth.jwt_secret", "payment.key_id", "payment.key_secret",
		"mysql.username", "mysql.password", "redis.password",
		"notifier.api_key", "notifier.sender_email",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("etcd.endpoints", []string{})
	v.SetDefault("kafka.brokers", []string{})

	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("payment.provider", "razorpay")
	v.SetDefault("payment.currency", "INR")

	v.SetDefault("shop.order_prefix", "MC")
	v.SetDefault("shop.free_shipping_threshold", 10000)
	v.SetDefault("shop.flat_shipping_cost", 500)
	v.SetDefault("shop.tax_rate", "0.18")
	v.SetDefault("shop.delivery_window", 7*24*time.Hour)
	v.SetDefault("shop.default_location", "Bengaluru")
	v.SetDefault("shop.warehouse_location", "Bengaluru Warehouse")
	v.SetDefault("shop.company.name", "Manvith Charcoal")

	v.SetDefault("notifier.driver", "log")
	v.SetDefault("notifier.api_url", "https://api.brevo.com/v3/smtp/email")
	v.SetDefault("notifier.sender_name", "Manvith Charcoal")
	v.SetDefault("notifier.timeout", time.Duration(0))

	v.SetDefault("kafka.topic", "shop.orders")

	v.SetDefault("timeouts.database", 5*time.Second)
	v.SetDefault("timeouts.external", 10*time.Second)
}

func (c *Config) inheritTimeouts() {
	if c.Notifier.Timeout <= 0 {
		c.Notifier.Timeout = c.Timeouts.External
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Payment.KeySecret == "" {
		errs = append(errs, errors.New("payment.key_secret is required"))
	}
	if c.Shop.FreeShippingThreshold < 0 || c.Shop.FlatShippingCost < 0 {
		errs = append(errs, errors.New("shop shipping amounts must not be negative"))
	}
	switch c.Notifier.Driver {
	case "log":
	case "brevo":
		if c.Notifier.APIKey == "" {
			errs = append(errs, errors.New("notifier.api_key is required for the brevo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown notifier driver %q", c.Notifier.Driver))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database)
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *GatewayConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
