package lotofacil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateQuantity(t *testing.T) {
	tests := []struct {
		quantity int
		wantErr  bool
	}{
		{quantity: -1, wantErr: true},
		{quantity: 0, wantErr: true},
		{quantity: 1},
		{quantity: 2},
		{quantity: 3},
		{quantity: 4, wantErr: true},
	}

	for _, tt := range tests {
		err := ValidateQuantity(tt.quantity)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidQuantity, "quantity %d", tt.quantity)
		} else {
			assert.NoError(t, err, "quantity %d", tt.quantity)
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "PROFILE003", NormalizeCode("  profile003 "))
	assert.Equal(t, "$ATENCCAO004", NormalizeCode("$Atenccao004"))
	assert.Equal(t, "", NormalizeCode("   "))
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestHoursUntil(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{in: -time.Minute, want: 0},
		{in: 0, want: 0},
		{in: time.Minute, want: 1},
		{in: time.Hour, want: 1},
		{in: time.Hour + time.Second, want: 2},
		{in: 23*time.Hour + 59*time.Minute, want: 24},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HoursUntil(tt.in), "duration %v", tt.in)
	}
}

func TestWithField(t *testing.T) {
	err := withField(ErrOutOfRange, "exclude")

	var lotoErr *LotoError
	require.ErrorAs(t, err, &lotoErr)
	assert.Equal(t, "exclude", lotoErr.Field)
	assert.Empty(t, ErrOutOfRange.Field)

	plain := assert.AnError
	assert.Equal(t, plain, withField(plain, "x"))
}

func TestKeyedMutex(t *testing.T) {
	t.Run("同一键串行执行", func(t *testing.T) {
		km := newKeyedMutex()

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			active  int
			maxSeen int
			counter int
		)
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := km.Lock("user-1")
				defer unlock()

				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()

				counter++
				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, maxSeen)
		assert.Equal(t, 20, counter)
		assert.Equal(t, 0, km.size())
	})

	t.Run("不同键互不阻塞", func(t *testing.T) {
		km := newKeyedMutex()

		unlockA := km.Lock("a")
		done := make(chan struct{})
		go func() {
			unlockB := km.Lock("b")
			unlockB()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("lock on another key blocked")
		}
		assert.Equal(t, 1, km.size())
		unlockA()
		assert.Equal(t, 0, km.size())
	})
}
