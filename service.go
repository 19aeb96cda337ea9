package lotofacil

import (
	"context"
	"errors"
	"sync"
	"time"
)

// StatusInfo is the quota view of one identity
type StatusInfo struct {
	UserID         string     `json:"user_id"`
	Count          int        `json:"count"`
	MaxGenerations int        `json:"max_generations"`
	CanGenerate    bool       `json:"can_generate"`
	CodeActive     bool       `json:"code_active"`
	CodeUnlimited  bool       `json:"code_unlimited"`
	CodeExpiresAt  *time.Time `json:"code_expires_at,omitempty"`
	WindowStart    *time.Time `json:"window_start,omitempty"`
	RetryAfterMs   int64      `json:"retry_after_ms"`
}

// GenerateResponse is the outcome of one permitted generation
type GenerateResponse struct {
	HistoryID      string      `json:"history_id"`
	Games          []Draw      `json:"games"`
	Statistics     *Statistics `json:"statistics"`
	Count          int         `json:"count"`
	MaxGenerations int         `json:"max_generations"`
}

// ActivationResult describes a successful code redemption
type ActivationResult struct {
	Code      string     `json:"code"`
	Days      int        `json:"days"`
	Unlimited bool       `json:"unlimited"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Service ties the generator to quota, activation codes and history per identity
type Service struct {
	accounts  *AccountRepository
	activator *Activator
	catalog   *ActivationCatalog
	history   *HistoryRepository
	generator *Generator
	monitor   *GenerationMonitor
	logger    Logger
	now       func() time.Time
	locks     *keyedMutex

	mu     sync.RWMutex // 保护 policy 的并发访问
	policy QuotaPolicy
}

// ServiceOption configures a Service
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	logger       Logger
	generator    *Generator
	monitor      *GenerationMonitor
	now          func() time.Time
	policy       QuotaPolicy
	historyLimit int
	keyPrefix    string
	codes        map[string]int
}

// WithLogger sets the service logger
func WithLogger(logger Logger) ServiceOption {
	return func(o *serviceOptions) { o.logger = logger }
}

// WithGenerator sets the game generator, e.g. one with a seeded random source
func WithGenerator(gen *Generator) ServiceOption {
	return func(o *serviceOptions) { o.generator = gen }
}

// WithMonitor shares a monitor with other components
func WithMonitor(m *GenerationMonitor) ServiceOption {
	return func(o *serviceOptions) { o.monitor = m }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) ServiceOption {
	return func(o *serviceOptions) { o.now = now }
}

// WithQuotaPolicy sets the generation quota
func WithQuotaPolicy(p QuotaPolicy) ServiceOption {
	return func(o *serviceOptions) { o.policy = p }
}

// WithHistoryLimit sets how many history entries are kept per identity
func WithHistoryLimit(limit int) ServiceOption {
	return func(o *serviceOptions) { o.historyLimit = limit }
}

// WithKeyPrefix sets the prefix of every store key
func WithKeyPrefix(prefix string) ServiceOption {
	return func(o *serviceOptions) { o.keyPrefix = prefix }
}

// WithActivationCodes sets the activation code catalogue
func WithActivationCodes(codes map[string]int) ServiceOption {
	return func(o *serviceOptions) { o.codes = codes }
}

// NewService creates a service over store
func NewService(store Store, opts ...ServiceOption) *Service {
	o := &serviceOptions{
		policy:       DefaultQuotaPolicy(),
		historyLimit: DefaultHistoryLimit,
		keyPrefix:    DefaultKeyPrefix,
		codes:        DefaultActivationCodes(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = NewSilentLogger()
	}
	if o.generator == nil {
		o.generator = NewGenerator(nil)
	}
	if o.monitor == nil {
		o.monitor = NewGenerationMonitor()
	}

	catalog := NewActivationCatalog(o.codes)
	return &Service{
		accounts:  NewAccountRepository(store, o.keyPrefix),
		activator: NewActivator(catalog, store, o.keyPrefix),
		catalog:   catalog,
		history:   NewHistoryRepository(store, o.keyPrefix, o.historyLimit),
		generator: o.generator,
		monitor:   o.monitor,
		logger:    o.logger,
		now:       o.now,
		locks:     newKeyedMutex(),
		policy:    o.policy,
	}
}

// NewServiceFromConfig creates a service using the quota, history, store and code sections of cfg
func NewServiceFromConfig(cfg *Config, store Store, opts ...ServiceOption) *Service {
	base := []ServiceOption{
		WithQuotaPolicy(QuotaPolicy{MaxGenerations: cfg.Quota.MaxGenerations, Window: cfg.Quota.Window}),
		WithHistoryLimit(cfg.History.Limit),
		WithKeyPrefix(cfg.Store.KeyPrefix),
		WithActivationCodes(cfg.ActivationCodes),
	}
	return NewService(store, append(base, opts...)...)
}

// Policy returns the current quota policy
func (s *Service) Policy() QuotaPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.policy
}

// ApplyConfig hot-reloads the quota and the activation code catalogue
func (s *Service) ApplyConfig(cfg *Config) error {
	if cfg == nil {
		return ErrInvalidParameters.WithDetails("nil configuration")
	}
	if err := cfg.Validate(); err != nil {
		s.logger.Error("ApplyConfig validation failed: %v", err)
		return err
	}

	s.mu.Lock()
	s.policy = QuotaPolicy{MaxGenerations: cfg.Quota.MaxGenerations, Window: cfg.Quota.Window}
	s.mu.Unlock()
	s.catalog.Replace(cfg.ActivationCodes)

	s.logger.Info("Configuration updated: max_generations=%d, window=%v, codes=%d",
		cfg.Quota.MaxGenerations, cfg.Quota.Window, s.catalog.Len())
	return nil
}

// Catalog returns the activation code catalogue
func (s *Service) Catalog() *ActivationCatalog { return s.catalog }

// Metrics returns a snapshot of the generation metrics
func (s *Service) Metrics() GenerationMetrics { return s.monitor.GetMetrics() }

// Monitor returns the underlying monitor
func (s *Service) Monitor() *GenerationMonitor { return s.monitor }

// storeError records a store failure and passes err through
func (s *Service) storeError(op string, err error) error {
	s.monitor.RecordStoreError()
	s.logger.Error("%s failed: %v", op, err)
	return err
}

// Status returns the quota state of userID
func (s *Service) Status(ctx context.Context, userID string) (*StatusInfo, error) {
	if userID == "" {
		return nil, ErrSessionInvalid
	}
	unlock := s.locks.Lock(userID)
	defer unlock()

	acc, err := s.accounts.Load(ctx, userID)
	if err != nil {
		return nil, s.storeError("Status", err)
	}

	now := s.now()
	policy := s.Policy()
	hadCode := acc.ActiveCode != ""
	active := acc.CodeActive(now)
	if hadCode && !active {
		// 激活码已过期, 持久化清除结果
		if err := s.accounts.Save(ctx, acc); err != nil {
			return nil, s.storeError("Status", err)
		}
	}

	info := &StatusInfo{
		UserID:         userID,
		Count:          acc.Used(policy, now),
		MaxGenerations: policy.MaxGenerations,
		CanGenerate:    acc.CanGenerate(MinQuantity, policy, now),
		CodeActive:     active,
		CodeUnlimited:  active && acc.CodeUnlimited,
	}
	if active && !acc.CodeUnlimited {
		exp := acc.CodeExpiresAt
		info.CodeExpiresAt = &exp
	}
	if !acc.WindowStart.IsZero() {
		start := acc.WindowStart
		info.WindowStart = &start
		info.RetryAfterMs = acc.RetryAfter(policy, now).Milliseconds()
	}
	return info, nil
}

// Generate runs one batch for userID: quota check, validation, generation,
// quota consumption, then history. Rejected or invalid requests consume nothing.
func (s *Service) Generate(ctx context.Context, userID string, req GenerateRequest) (*GenerateResponse, error) {
	if userID == "" {
		return nil, ErrSessionInvalid
	}

	start := time.Now()
	resp, err := s.generate(ctx, userID, req)
	s.monitor.RecordGeneration(err == nil, len(gamesOf(resp)), time.Since(start))

	if err != nil {
		switch {
		case errors.Is(err, ErrQuotaExceeded):
			s.monitor.RecordQuotaRejection()
			s.logger.Info("Quota reached for user=%s", userID)
		case IsValidationError(err):
			s.monitor.RecordValidationFailure()
			s.logger.Debug("Rejected input for user=%s: %v", userID, err)
		}
		return nil, err
	}

	s.logger.Info("Generated %d game(s) for user=%s mode=%s in %v",
		len(resp.Games), userID, req.Mode, time.Since(start))
	return resp, nil
}

func gamesOf(resp *GenerateResponse) []Draw {
	if resp == nil {
		return nil
	}
	return resp.Games
}

func (s *Service) generate(ctx context.Context, userID string, req GenerateRequest) (*GenerateResponse, error) {
	if err := ValidateQuantity(req.Quantity); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	acc, err := s.accounts.Load(ctx, userID)
	if err != nil {
		return nil, s.storeError("Generate", err)
	}

	now := s.now()
	policy := s.Policy()
	if !acc.CanGenerate(req.Quantity, policy, now) {
		return nil, acc.quotaError(policy, now)
	}

	if req.Mode == "" {
		req.Mode = ModeBalanced
	}
	result, err := GenerateGames(req, s.generator)
	if err != nil {
		return nil, err
	}

	acc.Consume(req.Quantity, policy, now)
	if err := s.accounts.Save(ctx, acc); err != nil {
		return nil, s.storeError("Generate", err)
	}

	entry := HistoryEntry{
		ID:        NewID(),
		CreatedAt: now,
		Mode:      req.Mode,
		Games:     result.Games,
	}
	if err := s.history.Append(ctx, userID, entry); err != nil {
		// 游戏已生成且配额已扣除, 历史写入失败只记录
		s.storeError("Generate history", err)
		entry.ID = ""
	}

	return &GenerateResponse{
		HistoryID:      entry.ID,
		Games:          result.Games,
		Statistics:     result.Statistics,
		Count:          acc.Count,
		MaxGenerations: policy.MaxGenerations,
	}, nil
}

// ActivateCode redeems code for userID
func (s *Service) ActivateCode(ctx context.Context, userID, code string) (*ActivationResult, error) {
	if userID == "" {
		return nil, ErrSessionInvalid
	}
	code = NormalizeCode(code)

	unlock := s.locks.Lock(userID)
	defer unlock()
	if code != "" {
		// 同一激活码的并发兑换需串行
		unlockCode := s.locks.Lock(CodeKeyPrefix + code)
		defer unlockCode()
	}

	acc, err := s.accounts.Load(ctx, userID)
	if err != nil {
		return nil, s.storeError("ActivateCode", err)
	}

	redemption, err := s.activator.Activate(ctx, acc, code, s.now())
	if err != nil {
		if CodeOf(err) == ErrCodeStoreFailure || CodeOf(err) == ErrCodeCircuitBreakerOpen {
			return nil, s.storeError("ActivateCode", err)
		}
		s.logger.Info("Activation refused for user=%s: %v", userID, err)
		return nil, err
	}
	if err := s.accounts.Save(ctx, acc); err != nil {
		return nil, s.storeError("ActivateCode", err)
	}

	s.monitor.RecordActivation()
	s.logger.Info("Activated code for user=%s unlimited=%v", userID, redemption.Unlimited)

	days, _ := s.catalog.Lookup(code)
	result := &ActivationResult{Code: code, Days: days, Unlimited: redemption.Unlimited}
	if !redemption.Unlimited {
		exp := redemption.ExpiresAt
		result.ExpiresAt = &exp
	}
	return result, nil
}

// History returns the past generations of userID, newest first
func (s *Service) History(ctx context.Context, userID string) ([]HistoryEntry, error) {
	if userID == "" {
		return nil, ErrSessionInvalid
	}
	entries, err := s.history.List(ctx, userID)
	if err != nil {
		return nil, s.storeError("History", err)
	}
	return entries, nil
}

// ClearHistory removes the past generations of userID
func (s *Service) ClearHistory(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrSessionInvalid
	}
	unlock := s.locks.Lock(userID)
	defer unlock()

	if err := s.history.Clear(ctx, userID); err != nil {
		return s.storeError("ClearHistory", err)
	}
	s.logger.Debug("Cleared history for user=%s", userID)
	return nil
}
