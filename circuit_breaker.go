package lotofacil

import (
	"context"
	"errors"
	"sync"

	"github.com/sony/gobreaker"
)

// BreakerStore 带熔断器的存储
type BreakerStore struct {
	store Store

	mu      sync.RWMutex
	breaker *gobreaker.CircuitBreaker
	logger  Logger
	config  *CircuitBreakerConfig
}

// NewBreakerStore wraps store with a circuit breaker; a disabled config yields a pass-through wrapper
func NewBreakerStore(store Store, config *CircuitBreakerConfig, logger Logger) *BreakerStore {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	bs := &BreakerStore{store: store, logger: logger, config: config}
	if config.Enabled {
		bs.breaker = bs.newBreaker()
	}
	return bs
}

func (bs *BreakerStore) newBreaker() *gobreaker.CircuitBreaker {
	config := bs.config
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// 当请求数达到最小要求且失败率超过阈值时触发熔断
			return counts.Requests >= config.MinRequests &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= config.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			// 键不存在与参数错误不是存储故障
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidParameters)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if config.OnStateChange {
				bs.logger.Info("Circuit breaker '%s' state changed from %s to %s", name, from, to)
			}
		},
	})
}

// executeWithBreaker 使用熔断器执行操作
func (bs *BreakerStore) executeWithBreaker(operation func() (any, error)) (any, error) {
	bs.mu.RLock()
	breaker := bs.breaker
	bs.mu.RUnlock()

	if breaker == nil {
		// 熔断器未启用，直接执行
		return operation()
	}

	result, err := breaker.Execute(operation)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return nil, ErrCircuitBreakerOpen.WithDetails("store is unavailable, requests are being rejected")
		}
		if errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitBreakerOpen.WithDetails("too many requests, circuit breaker is half-open")
		}
	}
	return result, err
}

// Get reads key through the breaker
func (bs *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := bs.executeWithBreaker(func() (any, error) {
		return bs.store.Get(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Set writes key through the breaker
func (bs *BreakerStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := bs.executeWithBreaker(func() (any, error) {
		return nil, bs.store.Set(ctx, key, value)
	})
	return err
}

// Delete removes key through the breaker
func (bs *BreakerStore) Delete(ctx context.Context, key string) error {
	_, err := bs.executeWithBreaker(func() (any, error) {
		return nil, bs.store.Delete(ctx, key)
	})
	return err
}

// Ping forwards to the wrapped store when it supports health checks
func (bs *BreakerStore) Ping(ctx context.Context) error {
	if bs.State() == "open" {
		return ErrCircuitBreakerOpen
	}
	if p, ok := bs.store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close closes the wrapped store
func (bs *BreakerStore) Close() error { return bs.store.Close() }

// State 获取熔断器状态
func (bs *BreakerStore) State() string {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	if bs.breaker == nil {
		return "disabled"
	}

	switch bs.breaker.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Counts 获取熔断器统计信息
func (bs *BreakerStore) Counts() gobreaker.Counts {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	if bs.breaker == nil {
		return gobreaker.Counts{}
	}
	return bs.breaker.Counts()
}

// Reset 重置熔断器 (gobreaker 没有 Reset 方法，重新创建实例)
func (bs *BreakerStore) Reset() {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if bs.breaker == nil {
		return
	}
	bs.breaker = bs.newBreaker()
	bs.logger.Info("Circuit breaker '%s' has been reset", bs.config.Name)
}

// Health 熔断器健康检查
func (bs *BreakerStore) Health() map[string]any {
	state := bs.State()
	result := map[string]any{
		"circuit_breaker_enabled": bs.config.Enabled,
		"state":                   state,
	}
	if state == "disabled" {
		result["healthy"] = true
		return result
	}

	counts := bs.Counts()
	result["requests"] = counts.Requests
	result["total_failures"] = counts.TotalFailures
	result["consecutive_failures"] = counts.ConsecutiveFailures

	healthy := true
	switch state {
	case "open":
		healthy = false
	case "half-open":
		// 半开状态下，如果连续失败次数过多，认为不健康
		healthy = counts.ConsecutiveFailures <= 2
	}
	result["healthy"] = healthy
	return result
}

// StateNumeric maps the breaker state to 0 closed, 1 half-open, 2 open, -1 disabled
func (bs *BreakerStore) StateNumeric() float64 {
	switch bs.State() {
	case "closed":
		return 0
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return -1
	}
}
