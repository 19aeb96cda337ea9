package lotofacil

import "time"

const (
	// MinNumber is the smallest number on a Loto Fácil ticket
	MinNumber = 1

	// MaxNumber is the largest number on a Loto Fácil ticket
	MaxNumber = 25

	// DrawSize is how many numbers make up one draw
	DrawSize = 15

	// HistoryDraws is how many past draws feed the statistics
	HistoryDraws = 3

	// RankingSize is the length of the top/bottom frequency rankings
	RankingSize = 10

	// IncludeBonus is the weight added to numbers the user asked to include
	IncludeBonus = 20

	// MinQuantity and MaxQuantity bound the games produced per request
	MinQuantity = 1
	MaxQuantity = 3
)

const (
	// UnlimitedCodeDays marks an activation code that never expires
	UnlimitedCodeDays = -1

	// DefaultMaxGenerations is the default number of games allowed per quota window
	DefaultMaxGenerations = 3

	// DefaultQuotaWindow is the default rolling quota window
	DefaultQuotaWindow = 24 * time.Hour

	// DefaultHistoryLimit is the default number of history entries kept per identity
	DefaultHistoryLimit = 50

	// DefaultFastRandomGeneratorCacheSize is the default cache size for SecureRandomGenerator
	DefaultFastRandomGeneratorCacheSize = 1024
)

const (
	// DefaultKeyPrefix is the prefix for every store key
	DefaultKeyPrefix = "lotofacil:"

	// AccountKeyPrefix is the key namespace for quota accounts
	AccountKeyPrefix = "account:"

	// CodeKeyPrefix is the key namespace for activation code redemptions
	CodeKeyPrefix = "code:"

	// HistoryKeyPrefix is the key namespace for generation history
	HistoryKeyPrefix = "history:"

	// DefaultRetryAttempts is the default number of retry attempts for store operations
	DefaultRetryAttempts = 3

	// DefaultRetryInterval is the default base interval between retry attempts
	DefaultRetryInterval = 100 * time.Millisecond

	// MaxRetryAttempts is the maximum number of retry attempts allowed
	MaxRetryAttempts = 10

	// MaxRetryDelay caps the exponential backoff between store retries
	MaxRetryDelay = 5 * time.Second
)

const (
	// DefaultCircuitBreakerName is the default name for Circuit Breaker
	DefaultCircuitBreakerName = "lotofacil-store"

	// DefaultCircuitBreakerMaxRequests is the default max requests
	DefaultCircuitBreakerMaxRequests = 3

	// DefaultCircuitBreakerInterval is the default interval
	DefaultCircuitBreakerInterval = 60 * time.Second

	// DefaultCircuitBreakerTimeout is the default timeout
	DefaultCircuitBreakerTimeout = 30 * time.Second

	// DefaultCircuitBreakerFailureRatio is the default failure ratio
	DefaultCircuitBreakerFailureRatio = 0.6

	// DefaultCircuitBreakerMinRequests is the default min requests
	DefaultCircuitBreakerMinRequests = 3

	// DefaultCircuitBreakerOnStateChange is the default on state change
	DefaultCircuitBreakerOnStateChange = true
)

const (
	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisPassword     = ""
	DefaultRedisDB           = 0
	DefaultRedisPoolSize     = 50
	DefaultRedisMinIdleConns = 10
	DefaultRedisMaxRetries   = 3
	DefaultRedisDialTimeout  = 5 * time.Second
	DefaultRedisReadTimeout  = 3 * time.Second
	DefaultRedisWriteTimeout = 3 * time.Second
	DefaultRedisPoolTimeout  = 4 * time.Second
)

const (
	DefaultServerAddr        = ":3000"
	DefaultSessionCookie     = "lotoFacilSession"
	DefaultProbeCookie       = "lotoFacilTest"
	DefaultProbeCookiePrefix = "test_"
	DefaultSessionMaxAge     = 24 * time.Hour
	DefaultProbeGrace        = 2 * time.Second
	DefaultBadgerPath        = "./data/badger"
)

// DefaultActivationCodes is the built-in activation code catalogue (days of validity)
func DefaultActivationCodes() map[string]int {
	return map[string]int{
		"ATIVO15D":        15,
		"LOTO15D":         15,
		"PREMIUM15D":      15,
		"ATIVO30D":        30,
		"LOTO30D":         30,
		"PREMIUM30D":      30,
		"COUTI30D":        30,
		"ATIVO6M":         180,
		"LOTO6M":          180,
		"PREMIUM6M":       180,
		"COUTI6M":         180,
		"UNLIMITED6M":     180,
		"ATIVO1A":         365,
		"LOTO1A":          365,
		"PREMIUM1A":       365,
		"COUTI1A":         365,
		"UNLIMITED1A":     365,
		"VIP2024":         365,
		"P&RSONAL001":     UnlimitedCodeDays,
		"PERSON@L002":     UnlimitedCodeDays,
		"PROFILE003":      UnlimitedCodeDays,
		"$ATENCCAO004":    UnlimitedCodeDays,
		"*#COABITACAO005": UnlimitedCodeDays,
	}
}
