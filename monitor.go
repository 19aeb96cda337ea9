package lotofacil

import (
	"sync"
	"sync/atomic"
	"time"
)

// GenerationMetrics 生成指标快照
type GenerationMetrics struct {
	// 生成统计
	TotalGenerations      int64 `json:"total_generations"`      // 总生成请求数
	SuccessfulGenerations int64 `json:"successful_generations"` // 成功请求数
	FailedGenerations     int64 `json:"failed_generations"`     // 失败请求数
	GamesProduced         int64 `json:"games_produced"`         // 生成的游戏总数

	// 拒绝统计
	QuotaRejections    int64 `json:"quota_rejections"`    // 配额拒绝次数
	ValidationFailures int64 `json:"validation_failures"` // 输入校验失败次数
	Activations        int64 `json:"activations"`         // 激活码兑换次数

	// 性能统计
	AverageGenerationTime int64 `json:"average_generation_time"` // 平均生成时间(纳秒)
	TotalGenerationTime   int64 `json:"total_generation_time"`   // 总生成时间(纳秒)

	StoreErrors int64 `json:"store_errors"` // 存储错误数

	// 时间戳
	StartTime      int64 `json:"start_time"`
	LastUpdateTime int64 `json:"last_update_time"`
}

// SuccessRate 获取成功率 (百分比)
func (m GenerationMetrics) SuccessRate() float64 {
	if m.TotalGenerations == 0 {
		return 0.0
	}
	return float64(m.SuccessfulGenerations) / float64(m.TotalGenerations) * 100.0
}

// Throughput 获取吞吐量(每秒请求数)
func (m GenerationMetrics) Throughput() float64 {
	if m.StartTime == 0 || m.LastUpdateTime <= m.StartTime {
		return 0.0
	}
	return float64(m.TotalGenerations) / time.Duration(m.LastUpdateTime-m.StartTime).Seconds()
}

// ================================================================================

// GenerationMonitor 生成监控器
type GenerationMonitor struct {
	totalGenerations      atomic.Int64
	successfulGenerations atomic.Int64
	failedGenerations     atomic.Int64
	gamesProduced         atomic.Int64
	quotaRejections       atomic.Int64
	validationFailures    atomic.Int64
	activations           atomic.Int64
	totalGenerationTime   atomic.Int64
	storeErrors           atomic.Int64
	startTime             atomic.Int64
	lastUpdateTime        atomic.Int64

	mu      sync.RWMutex
	enabled bool
}

// NewGenerationMonitor 创建新的生成监控器
func NewGenerationMonitor() *GenerationMonitor {
	m := &GenerationMonitor{enabled: true}
	m.Reset()
	return m
}

// Enable 启用监控
func (m *GenerationMonitor) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.enabled = true
}

// Disable 禁用监控
func (m *GenerationMonitor) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.enabled = false
}

// IsEnabled 检查是否启用了监控
func (m *GenerationMonitor) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.enabled
}

func (m *GenerationMonitor) touch() { m.lastUpdateTime.Store(time.Now().UnixNano()) }

// RecordGeneration 记录一次生成请求
func (m *GenerationMonitor) RecordGeneration(success bool, games int, duration time.Duration) {
	if !m.IsEnabled() {
		return
	}

	m.totalGenerations.Add(1)
	m.totalGenerationTime.Add(int64(duration))
	if success {
		m.successfulGenerations.Add(1)
		m.gamesProduced.Add(int64(games))
	} else {
		m.failedGenerations.Add(1)
	}
	m.touch()
}

// RecordQuotaRejection 记录配额拒绝
func (m *GenerationMonitor) RecordQuotaRejection() {
	if !m.IsEnabled() {
		return
	}
	m.quotaRejections.Add(1)
	m.touch()
}

// RecordValidationFailure 记录输入校验失败
func (m *GenerationMonitor) RecordValidationFailure() {
	if !m.IsEnabled() {
		return
	}
	m.validationFailures.Add(1)
	m.touch()
}

// RecordActivation 记录激活码兑换
func (m *GenerationMonitor) RecordActivation() {
	if !m.IsEnabled() {
		return
	}
	m.activations.Add(1)
	m.touch()
}

// RecordStoreError 记录存储错误
func (m *GenerationMonitor) RecordStoreError() {
	if !m.IsEnabled() {
		return
	}
	m.storeErrors.Add(1)
	m.touch()
}

// GetMetrics 获取指标的副本
func (m *GenerationMonitor) GetMetrics() GenerationMetrics {
	metrics := GenerationMetrics{
		TotalGenerations:      m.totalGenerations.Load(),
		SuccessfulGenerations: m.successfulGenerations.Load(),
		FailedGenerations:     m.failedGenerations.Load(),
		GamesProduced:         m.gamesProduced.Load(),
		QuotaRejections:       m.quotaRejections.Load(),
		ValidationFailures:    m.validationFailures.Load(),
		Activations:           m.activations.Load(),
		TotalGenerationTime:   m.totalGenerationTime.Load(),
		StoreErrors:           m.storeErrors.Load(),
		StartTime:             m.startTime.Load(),
		LastUpdateTime:        m.lastUpdateTime.Load(),
	}
	if metrics.TotalGenerations > 0 {
		metrics.AverageGenerationTime = metrics.TotalGenerationTime / metrics.TotalGenerations
	}
	return metrics
}

// Reset 重置指标
func (m *GenerationMonitor) Reset() {
	m.totalGenerations.Store(0)
	m.successfulGenerations.Store(0)
	m.failedGenerations.Store(0)
	m.gamesProduced.Store(0)
	m.quotaRejections.Store(0)
	m.validationFailures.Store(0)
	m.activations.Store(0)
	m.totalGenerationTime.Store(0)
	m.storeErrors.Store(0)

	now := time.Now().UnixNano()
	m.startTime.Store(now)
	m.lastUpdateTime.Store(now)
}
