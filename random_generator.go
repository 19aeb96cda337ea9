package lotofacil

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// RandomGenerator is the random source consumed by the generator
type RandomGenerator interface {
	// GenerateFloat returns a value in [0, 1)
	GenerateFloat() (float64, error)

	// GenerateInRange returns a value in [min, max] (inclusive)
	GenerateInRange(min, max int) (int, error)
}

// SecureRandomGenerator implements secure random number generation using crypto/rand with caching
type SecureRandomGenerator struct {
	cache      []float64
	cacheSize  int
	cacheIndex int
	cacheMtx   sync.Mutex
}

// NewSecureRandomGenerator creates a new fast secure random generator with specified cache size
//
// If no cache size is provided, the default cache size will be used.
// The cache size should be a positive integer.
func NewSecureRandomGenerator(cacheSize ...int) *SecureRandomGenerator {
	size := DefaultFastRandomGeneratorCacheSize
	if len(cacheSize) > 0 && cacheSize[0] > 0 {
		size = cacheSize[0]
	}

	generator := &SecureRandomGenerator{
		cache:     make([]float64, size),
		cacheSize: size,
	}

	// 预填充缓存
	generator.refillCache()
	return generator
}

// refillCache refills the random number cache
func (g *SecureRandomGenerator) refillCache() {
	for i := range g.cacheSize {
		val, err := generateFloat()
		if err != nil {
			// crypto/rand failed, fall back to the math/rand source
			val = mrand.Float64()
		}
		g.cache[i] = val
	}

	g.cacheIndex = 0
}

// GenerateFloat generates a fast secure random float between 0 and 1 (exclusive of 1)
func (g *SecureRandomGenerator) GenerateFloat() (float64, error) {
	g.cacheMtx.Lock()
	defer g.cacheMtx.Unlock()

	if g.cacheIndex >= g.cacheSize {
		g.refillCache()
	}

	result := g.cache[g.cacheIndex]
	g.cacheIndex++
	return result, nil
}

// GenerateInRange generates a fast secure random number within the specified range [min, max] (inclusive)
func (g *SecureRandomGenerator) GenerateInRange(min, max int) (int, error) {
	if min > max {
		return 0, ErrInvalidParameters.WithDetails("min must be less than or equal to max")
	}
	if min == max {
		return min, nil
	}

	randomFloat, err := g.GenerateFloat()
	if err != nil {
		return 0, err
	}

	rangeSize := max - min + 1
	result := int(randomFloat*float64(rangeSize)) + min

	// Ensure result is within bounds (handle floating point precision issues)
	if result > max {
		result = max
	}

	return result, nil
}

// generateFloat generates a secure random float between 0 and 1 (exclusive of 1)
func generateFloat() (float64, error) {
	randomBig, err := rand.Int(rand.Reader, big.NewInt(1<<53)) // Use 53 bits for precision
	if err != nil {
		return 0, err
	}

	return float64(randomBig.Int64()) / float64(1<<53), nil
}

// SeededRandomGenerator is a reproducible generator backed by a PCG source.
// It is safe for concurrent use.
type SeededRandomGenerator struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededRandomGenerator creates a generator whose sequence is fully determined by seed
func NewSeededRandomGenerator(seed uint64) *SeededRandomGenerator {
	return &SeededRandomGenerator{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// GenerateFloat returns a value in [0, 1)
func (g *SeededRandomGenerator) GenerateFloat() (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.rng.Float64(), nil
}

// GenerateInRange returns a value in [min, max] (inclusive)
func (g *SeededRandomGenerator) GenerateInRange(min, max int) (int, error) {
	if min > max {
		return 0, ErrInvalidParameters.WithDetails("min must be less than or equal to max")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	return min + g.rng.IntN(max-min+1), nil
}
