package lotofacil

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
)

// Config 服务配置结构
type Config struct {
	Server         *ServerConfig         `mapstructure:"server"`
	Session        *SessionConfig        `mapstructure:"session"`
	Quota          *QuotaConfig          `mapstructure:"quota"`
	History        *HistoryConfig        `mapstructure:"history"`
	Store          *StoreConfig          `mapstructure:"store"`
	Redis          *RedisConfig          `mapstructure:"redis"`
	CircuitBreaker *CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Log            *LogConfig            `mapstructure:"log"`

	// ActivationCodes maps a code to its validity in days, -1 for unlimited
	ActivationCodes map[string]int `mapstructure:"activation_codes"`
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Server == nil || c.Session == nil || c.Quota == nil || c.History == nil ||
		c.Store == nil || c.Redis == nil || c.CircuitBreaker == nil || c.Log == nil {
		return ErrConfigInvalid.WithDetails("missing configuration section")
	}

	if c.Server.Addr == "" {
		return ErrConfigInvalid.WithField("server.addr").WithDetails("address is required")
	}
	if len(c.Session.Secret) < 16 {
		return ErrConfigInvalid.WithField("session.secret").WithDetails("secret must be at least 16 bytes")
	}
	if c.Session.MaxAge <= 0 {
		return ErrConfigInvalid.WithField("session.max_age").WithDetails("must be positive")
	}
	if c.Quota.MaxGenerations < MinQuantity {
		return ErrConfigInvalid.WithField("quota.max_generations").WithDetails("must be at least 1")
	}
	if c.Quota.Window <= 0 {
		return ErrConfigInvalid.WithField("quota.window").WithDetails("must be positive")
	}
	if c.History.Limit <= 0 {
		return ErrConfigInvalid.WithField("history.limit").WithDetails("must be positive")
	}

	switch c.Store.Driver {
	case StoreDriverMemory, StoreDriverBadger:
	case StoreDriverRedis:
		if c.Redis.Addr == "" {
			return ErrConfigInvalid.WithField("redis.addr").WithDetails("redis address is required")
		}
		if c.Redis.PoolSize <= 0 {
			return ErrConfigInvalid.WithField("redis.pool_size").WithDetails("redis pool size must be positive")
		}
	default:
		return ErrConfigInvalid.WithField("store.driver").WithDetails(fmt.Sprintf("unknown driver %q", c.Store.Driver))
	}
	if c.Store.Driver == StoreDriverBadger && c.Store.BadgerPath == "" {
		return ErrConfigInvalid.WithField("store.badger_path").WithDetails("path is required")
	}
	if c.Redis.RetryAttempts < 0 || c.Redis.RetryAttempts > MaxRetryAttempts {
		return ErrConfigInvalid.WithField("redis.retry_attempts").
			WithDetails(fmt.Sprintf("must be between 0 and %d", MaxRetryAttempts))
	}
	if c.Redis.RetryInterval < 0 {
		return ErrConfigInvalid.WithField("redis.retry_interval").WithDetails("cannot be negative")
	}

	if c.CircuitBreaker.FailureRatio <= 0 || c.CircuitBreaker.FailureRatio > 1 {
		return ErrConfigInvalid.WithField("circuit_breaker.failure_ratio").WithDetails("must be in (0, 1]")
	}

	for code, days := range c.ActivationCodes {
		if days == 0 || days < UnlimitedCodeDays {
			return ErrConfigInvalid.WithField("activation_codes").
				WithDetails(fmt.Sprintf("code %q: days must be positive or -1", code))
		}
	}

	return nil
}

// normalize upper-cases activation code keys, viper lowercases map keys
func (c *Config) normalize() {
	if c.ActivationCodes == nil {
		return
	}
	codes := make(map[string]int, len(c.ActivationCodes))
	for code, days := range c.ActivationCodes {
		codes[NormalizeCode(code)] = days
	}
	c.ActivationCodes = codes
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug | release | test
	StaticDir       string        `mapstructure:"static_dir"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SessionConfig 会话配置
type SessionConfig struct {
	CookieName        string        `mapstructure:"cookie_name"`
	Secret            string        `mapstructure:"secret"`
	MaxAge            time.Duration `mapstructure:"max_age"`
	Secure            bool          `mapstructure:"secure"`
	ProbeCookieName   string        `mapstructure:"probe_cookie_name"`
	ProbeCookiePrefix string        `mapstructure:"probe_cookie_prefix"`
	ProbeGrace        time.Duration `mapstructure:"probe_grace"`
	BlockAnonymous    bool          `mapstructure:"block_anonymous"`
}

// QuotaConfig 配额配置
type QuotaConfig struct {
	MaxGenerations int           `mapstructure:"max_generations"`
	Window         time.Duration `mapstructure:"window"`
}

// HistoryConfig 历史记录配置
type HistoryConfig struct {
	Limit int `mapstructure:"limit"`
}

// Store drivers
const (
	StoreDriverMemory = "memory"
	StoreDriverRedis  = "redis"
	StoreDriverBadger = "badger"
)

// StoreConfig 存储配置
type StoreConfig struct {
	Driver     string `mapstructure:"driver"`
	KeyPrefix  string `mapstructure:"key_prefix"`
	BadgerPath string `mapstructure:"badger_path"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// 连接配置
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// 连接池配置
	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`
	MaxRetries   int `mapstructure:"max_retries"`

	// 超时配置
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`

	// 重试与过期
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	KeyTTL        time.Duration `mapstructure:"key_ttl"` // 0 keeps keys forever
}

// CircuitBreakerConfig 熔断器配置
type CircuitBreakerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Name          string        `mapstructure:"name"`
	MaxRequests   uint32        `mapstructure:"max_requests"`
	Interval      time.Duration `mapstructure:"interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
	FailureRatio  float64       `mapstructure:"failure_ratio"`
	MinRequests   uint32        `mapstructure:"min_requests"`
	OnStateChange bool          `mapstructure:"on_state_change"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"` // text | json
	NoColor bool   `mapstructure:"no_color"`
}

// DefaultServerConfig 返回默认 HTTP 服务配置
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:            DefaultServerAddr,
		Mode:            "release",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// DefaultSessionConfig 返回默认会话配置
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		CookieName:        DefaultSessionCookie,
		Secret:            "change-me-lotofacil-session-secret",
		MaxAge:            DefaultSessionMaxAge,
		ProbeCookieName:   DefaultProbeCookie,
		ProbeCookiePrefix: DefaultProbeCookiePrefix,
		ProbeGrace:        DefaultProbeGrace,
		BlockAnonymous:    true,
	}
}

// DefaultQuotaConfig 返回默认配额配置
func DefaultQuotaConfig() *QuotaConfig {
	return &QuotaConfig{MaxGenerations: DefaultMaxGenerations, Window: DefaultQuotaWindow}
}

// DefaultHistoryConfig 返回默认历史记录配置
func DefaultHistoryConfig() *HistoryConfig { return &HistoryConfig{Limit: DefaultHistoryLimit} }

// DefaultStoreConfig 返回默认存储配置
func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Driver:     StoreDriverMemory,
		KeyPrefix:  DefaultKeyPrefix,
		BadgerPath: DefaultBadgerPath,
	}
}

// DefaultRedisConfig 返回默认的Redis配置
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:          DefaultRedisAddr,
		Password:      DefaultRedisPassword,
		DB:            DefaultRedisDB,
		PoolSize:      DefaultRedisPoolSize,
		MinIdleConns:  DefaultRedisMinIdleConns,
		MaxRetries:    DefaultRedisMaxRetries,
		DialTimeout:   DefaultRedisDialTimeout,
		ReadTimeout:   DefaultRedisReadTimeout,
		WriteTimeout:  DefaultRedisWriteTimeout,
		PoolTimeout:   DefaultRedisPoolTimeout,
		RetryAttempts: DefaultRetryAttempts,
		RetryInterval: DefaultRetryInterval,
	}
}

// DefaultCircuitBreakerConfig 返回默认熔断器配置
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Enabled:       true,
		Name:          DefaultCircuitBreakerName,
		MaxRequests:   DefaultCircuitBreakerMaxRequests,
		Interval:      DefaultCircuitBreakerInterval,
		Timeout:       DefaultCircuitBreakerTimeout,
		FailureRatio:  DefaultCircuitBreakerFailureRatio,
		MinRequests:   DefaultCircuitBreakerMinRequests,
		OnStateChange: DefaultCircuitBreakerOnStateChange,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() *LogConfig { return &LogConfig{Level: "info", Format: "text"} }

// DefaultConfig 返回完整的默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:          DefaultServerConfig(),
		Session:         DefaultSessionConfig(),
		Quota:           DefaultQuotaConfig(),
		History:         DefaultHistoryConfig(),
		Store:           DefaultStoreConfig(),
		Redis:           DefaultRedisConfig(),
		CircuitBreaker:  DefaultCircuitBreakerConfig(),
		Log:             DefaultLogConfig(),
		ActivationCodes: DefaultActivationCodes(),
	}
}

// ConfigManager 配置管理器
type ConfigManager struct {
	viper  *viper.Viper
	mu     sync.RWMutex
	config *Config
}

// NewConfigManager 创建配置管理器
func NewConfigManager() *ConfigManager {
	v := viper.New()

	// 设置配置文件名和路径
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/lotofacil")
	v.AddConfigPath("$HOME/.lotofacil")

	// 设置环境变量前缀
	v.SetEnvPrefix("LOTOFACIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &ConfigManager{viper: v}
}

// SetConfigFile uses an explicit file instead of the search paths
func (cm *ConfigManager) SetConfigFile(path string) {
	if path != "" {
		cm.viper.SetConfigFile(path)
	}
}

// LoadConfig 加载配置
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	// 设置默认值
	cm.setDefaults()

	// 读取配置文件
	if err := cm.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ErrConfigInvalid.WithDetails("failed to read config file").WithCause(err)
		}
		// 配置文件不存在时使用默认配置
	}

	config, err := cm.decode()
	if err != nil {
		return nil, err
	}

	cm.mu.Lock()
	cm.config = config
	cm.mu.Unlock()
	return config, nil
}

func (cm *ConfigManager) decode() (*Config, error) {
	config := DefaultConfig()
	if err := cm.viper.Unmarshal(config); err != nil {
		return nil, ErrConfigInvalid.WithDetails("failed to unmarshal config").WithCause(err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// setDefaults 设置默认配置值
func (cm *ConfigManager) setDefaults() {
	d := DefaultConfig()

	cm.viper.SetDefault("server.addr", d.Server.Addr)
	cm.viper.SetDefault("server.mode", d.Server.Mode)
	cm.viper.SetDefault("server.static_dir", "")
	cm.viper.SetDefault("server.allow_origins", []string{})
	cm.viper.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	cm.viper.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	cm.viper.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	cm.viper.SetDefault("session.cookie_name", d.Session.CookieName)
	cm.viper.SetDefault("session.secret", d.Session.Secret)
	cm.viper.SetDefault("session.max_age", d.Session.MaxAge)
	cm.viper.SetDefault("session.secure", false)
	cm.viper.SetDefault("session.probe_cookie_name", d.Session.ProbeCookieName)
	cm.viper.SetDefault("session.probe_cookie_prefix", d.Session.ProbeCookiePrefix)
	cm.viper.SetDefault("session.probe_grace", d.Session.ProbeGrace)
	cm.viper.SetDefault("session.block_anonymous", d.Session.BlockAnonymous)

	cm.viper.SetDefault("quota.max_generations", d.Quota.MaxGenerations)
	cm.viper.SetDefault("quota.window", d.Quota.Window)
	cm.viper.SetDefault("history.limit", d.History.Limit)

	cm.viper.SetDefault("store.driver", d.Store.Driver)
	cm.viper.SetDefault("store.key_prefix", d.Store.KeyPrefix)
	cm.viper.SetDefault("store.badger_path", d.Store.BadgerPath)

	// Redis 默认配置
	cm.viper.SetDefault("redis.addr", d.Redis.Addr)
	cm.viper.SetDefault("redis.password", d.Redis.Password)
	cm.viper.SetDefault("redis.db", d.Redis.DB)
	cm.viper.SetDefault("redis.pool_size", d.Redis.PoolSize)
	cm.viper.SetDefault("redis.min_idle_conns", d.Redis.MinIdleConns)
	cm.viper.SetDefault("redis.max_retries", d.Redis.MaxRetries)
	cm.viper.SetDefault("redis.dial_timeout", d.Redis.DialTimeout)
	cm.viper.SetDefault("redis.read_timeout", d.Redis.ReadTimeout)
	cm.viper.SetDefault("redis.write_timeout", d.Redis.WriteTimeout)
	cm.viper.SetDefault("redis.pool_timeout", d.Redis.PoolTimeout)
	cm.viper.SetDefault("redis.retry_attempts", d.Redis.RetryAttempts)
	cm.viper.SetDefault("redis.retry_interval", d.Redis.RetryInterval)
	cm.viper.SetDefault("redis.key_ttl", time.Duration(0))

	// 熔断器默认配置
	cm.viper.SetDefault("circuit_breaker.enabled", d.CircuitBreaker.Enabled)
	cm.viper.SetDefault("circuit_breaker.name", d.CircuitBreaker.Name)
	cm.viper.SetDefault("circuit_breaker.max_requests", d.CircuitBreaker.MaxRequests)
	cm.viper.SetDefault("circuit_breaker.interval", d.CircuitBreaker.Interval)
	cm.viper.SetDefault("circuit_breaker.timeout", d.CircuitBreaker.Timeout)
	cm.viper.SetDefault("circuit_breaker.failure_ratio", d.CircuitBreaker.FailureRatio)
	cm.viper.SetDefault("circuit_breaker.min_requests", d.CircuitBreaker.MinRequests)
	cm.viper.SetDefault("circuit_breaker.on_state_change", d.CircuitBreaker.OnStateChange)

	cm.viper.SetDefault("log.level", d.Log.Level)
	cm.viper.SetDefault("log.format", d.Log.Format)
	cm.viper.SetDefault("log.no_color", false)
}

// WatchConfig 监听配置变化, invalid updates are reported to onError and ignored
func (cm *ConfigManager) WatchConfig(callback func(*Config), onError func(error)) {
	cm.viper.OnConfigChange(func(e fsnotify.Event) {
		config, err := cm.decode()
		if err != nil {
			// 记录错误但不中断服务
			if onError != nil {
				onError(err)
			}
			return
		}

		cm.mu.Lock()
		cm.config = config
		cm.mu.Unlock()

		if callback != nil {
			callback(config)
		}
	})
	cm.viper.WatchConfig()
}

// GetConfig 获取当前配置
func (cm *ConfigManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return cm.config
}

// ConfigFileUsed returns the path of the loaded file, empty when running on defaults
func (cm *ConfigManager) ConfigFileUsed() string { return cm.viper.ConfigFileUsed() }

// NewRedisClientFromConfig 从配置创建Redis客户端
func NewRedisClientFromConfig(config *RedisConfig) *redis.Client {
	if config == nil {
		config = DefaultRedisConfig()
	}

	return redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolTimeout:  config.PoolTimeout,
	})
}
