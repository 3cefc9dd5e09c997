package cent

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/redis/rueidis"
	"github.com/spf13/viper"
	"github.com/valkey-io/valkey-go"
)

const (
	TransportTypeHTTP  = "http"
	TransportTypeQueue = "queue"
	// TransportTypeRedis is an alias of TransportTypeQueue.
	TransportTypeRedis = "redis"

	DriverValkey  = "valkey"
	DriverRueidis = "rueidis"

	DefaultRedisPort    = 6379
	DefaultRedisTimeout = 15 * time.Second
)

type Config struct {
	// Endpoint is Centrifugo HTTP API URL, for example http://localhost:8000/api.
	Endpoint string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint" toml:"endpoint"`
	// Secret is the API key. It is also used to sign tokens.
	Secret string `mapstructure:"secret" json:"secret" yaml:"secret" toml:"secret"`
	// Transports in failover order.
	Transports []TransportConfig `mapstructure:"transports" json:"transports" yaml:"transports" toml:"transports"`
	Log        LogConfig         `mapstructure:"log" json:"log" yaml:"log" toml:"log"`
}

type LogConfig struct {
	Level string `mapstructure:"level" json:"level" yaml:"level" toml:"level"`
}

// TransportConfig configures one transport. Type selects which of the
// remaining fields apply.
type TransportConfig struct {
	Type string `mapstructure:"type" json:"type" yaml:"type" toml:"type"`
	// Timeout is the request timeout for http and the connect timeout for queue.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout" toml:"timeout"`

	Headers map[string]string `mapstructure:"headers" json:"headers" yaml:"headers" toml:"headers"`

	Host     string `mapstructure:"host" json:"host" yaml:"host" toml:"host"`
	Port     int    `mapstructure:"port" json:"port" yaml:"port" toml:"port"`
	DB       int    `mapstructure:"db" json:"db" yaml:"db" toml:"db"`
	User     string `mapstructure:"user" json:"user" yaml:"user" toml:"user"`
	Password string `mapstructure:"password" json:"password" yaml:"password" toml:"password"`
	Shards   int    `mapstructure:"shards" json:"shards" yaml:"shards" toml:"shards"`
	Queue    string `mapstructure:"queue" json:"queue" yaml:"queue" toml:"queue"`
	Driver   string `mapstructure:"driver" json:"driver" yaml:"driver" toml:"driver"`
}

// NewViper returns viper instance reading CENT_ prefixed environment.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("CENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("endpoint", "")
	v.SetDefault("secret", "")
	v.SetDefault("log.level", "info")
	return v
}

// ReadConfig reads configFile (if set) into v and decodes Config. With an
// empty configFile only the environment and defaults are used.
func ReadConfig(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: error reading config file %s: %w", ErrInvalidConfig, configFile, err)
		}
	}

	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads config from file and environment.
func LoadConfig(configFile string) (Config, error) {
	return ReadConfig(NewViper(), configFile)
}

// Validate checks configuration without touching the network.
func (c Config) Validate() error {
	if len(c.Transports) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrNoTransports)
	}
	for i, tc := range c.Transports {
		if err := tc.validate(c); err != nil {
			return fmt.Errorf("%w: transports[%d]: %w", ErrInvalidConfig, i, err)
		}
	}
	return nil
}

func (tc TransportConfig) validate(c Config) error {
	switch strings.ToLower(tc.Type) {
	case TransportTypeHTTP:
		if c.Endpoint == "" {
			return errors.New("endpoint required for http transport")
		}
		if tc.Timeout < 0 {
			return errors.New("negative timeout")
		}
	case TransportTypeQueue, TransportTypeRedis:
		if tc.Host == "" {
			return errors.New("host required")
		}
		if tc.Timeout != 0 && tc.Port == 0 {
			return errors.New("port required when timeout set")
		}
		if tc.Timeout < 0 {
			return errors.New("negative timeout")
		}
		if tc.Port < 0 || tc.Port > 65535 {
			return fmt.Errorf("invalid port %d", tc.Port)
		}
		if tc.DB < 0 {
			return fmt.Errorf("invalid db %d", tc.DB)
		}
		if tc.Shards < 0 {
			return fmt.Errorf("invalid shards %d", tc.Shards)
		}
		switch strings.ToLower(tc.Driver) {
		case "", DriverValkey, DriverRueidis:
		default:
			return fmt.Errorf("unknown queue driver %q", tc.Driver)
		}
	default:
		return fmt.Errorf("unknown transport type %q", tc.Type)
	}
	return nil
}

// BuildChain validates config and creates transports in configured order.
// No connection is opened here.
func BuildChain(c Config, opts ...Option) (*Chain, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	options := applyOptions(opts)
	transports := make([]Transport, 0, len(c.Transports))
	for _, tc := range c.Transports {
		transports = append(transports, tc.build(options))
	}
	return NewChain(transports, opts...), nil
}

func (tc TransportConfig) build(options Options) Transport {
	if strings.ToLower(tc.Type) == TransportTypeHTTP {
		httpOpts := []HTTPOption{WithHTTPTimeout(tc.Timeout)}
		for key, value := range tc.Headers {
			httpOpts = append(httpOpts, WithHTTPHeader(key, value))
		}
		return NewHTTPTransport(httpOpts...)
	}

	port := tc.Port
	if port == 0 {
		port = DefaultRedisPort
	}
	timeout := tc.Timeout
	if timeout == 0 {
		timeout = DefaultRedisTimeout
	}
	address := net.JoinHostPort(tc.Host, strconv.Itoa(port))

	queueOpts := []QueueOption{
		WithQueueName(tc.Queue),
		WithShards(tc.Shards),
		WithQueueLogger(options.Logger),
	}

	var dial Dialer
	if strings.ToLower(tc.Driver) == DriverRueidis {
		dial = RueidisDialer(address, rueidis.ClientOption{
			Username: tc.User,
			Password: tc.Password,
			SelectDB: tc.DB,
			Dialer:   net.Dialer{Timeout: timeout},
		})
	} else {
		dial = ValkeyDialer(address, valkey.ClientOption{
			Username: tc.User,
			Password: tc.Password,
			SelectDB: tc.DB,
			Dialer:   net.Dialer{Timeout: timeout},
		})
	}
	return NewQueueTransport(dial, queueOpts...)
}
