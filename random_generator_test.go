package lotofacil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureRandomGenerator(t *testing.T) {
	fastGen := NewSecureRandomGenerator(100)

	t.Run("范围生成正确性", func(t *testing.T) {
		for range 1000 {
			result, err := fastGen.GenerateInRange(1, 25)
			require.NoError(t, err)
			require.GreaterOrEqual(t, result, 1)
			require.LessOrEqual(t, result, 25)
		}
	})

	t.Run("浮点生成正确性", func(t *testing.T) {
		for range 1000 {
			result, err := fastGen.GenerateFloat()
			require.NoError(t, err)
			require.GreaterOrEqual(t, result, 0.0)
			require.Less(t, result, 1.0)
		}
	})

	t.Run("缓存重填充", func(t *testing.T) {
		// 消耗所有缓存
		for range 250 {
			_, err := fastGen.GenerateFloat()
			require.NoError(t, err)
		}
	})

	t.Run("参数校验", func(t *testing.T) {
		_, err := fastGen.GenerateInRange(5, 1)
		assert.ErrorIs(t, err, ErrInvalidParameters)

		v, err := fastGen.GenerateInRange(7, 7)
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})

	t.Run("默认缓存大小", func(t *testing.T) {
		g := NewSecureRandomGenerator()
		assert.Equal(t, DefaultFastRandomGeneratorCacheSize, g.cacheSize)
		g = NewSecureRandomGenerator(-5)
		assert.Equal(t, DefaultFastRandomGeneratorCacheSize, g.cacheSize)
	})
}

func TestSeededRandomGenerator(t *testing.T) {
	t.Run("same seed same sequence", func(t *testing.T) {
		a := NewSeededRandomGenerator(11)
		b := NewSeededRandomGenerator(11)
		for range 100 {
			fa, _ := a.GenerateFloat()
			fb, _ := b.GenerateFloat()
			assert.Equal(t, fa, fb)
		}
	})

	t.Run("different seeds diverge", func(t *testing.T) {
		a := NewSeededRandomGenerator(1)
		b := NewSeededRandomGenerator(2)
		same := 0
		for range 20 {
			fa, _ := a.GenerateFloat()
			fb, _ := b.GenerateFloat()
			if fa == fb {
				same++
			}
		}
		assert.Less(t, same, 20)
	})

	t.Run("range covers both ends", func(t *testing.T) {
		g := NewSeededRandomGenerator(5)
		seen := make(map[int]bool)
		for range 500 {
			v, err := g.GenerateInRange(0, 3)
			require.NoError(t, err)
			require.GreaterOrEqual(t, v, 0)
			require.LessOrEqual(t, v, 3)
			seen[v] = true
		}
		assert.Len(t, seen, 4)

		_, err := g.GenerateInRange(2, 1)
		assert.ErrorIs(t, err, ErrInvalidParameters)
	})
}

func BenchmarkSecureRandomGenerator(b *testing.B) {
	gen := NewSecureRandomGenerator()
	for b.Loop() {
		_, _ = gen.GenerateFloat()
	}
}
