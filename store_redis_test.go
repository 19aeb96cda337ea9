package lotofacil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRedisStore(attempts int, ttl time.Duration) (*RedisStore, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	return NewRedisStoreWithRetry(db, NewSilentLogger(), attempts, time.Millisecond, ttl), mock
}

func TestRedisStore_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		setupMock func(mock redismock.ClientMock)
		want      []byte
		wantErr   error
	}{
		{
			name: "hit",
			setupMock: func(mock redismock.ClientMock) {
				mock.ExpectGet("lotofacil:account:u1").SetVal(`{"user_id":"u1"}`)
			},
			want: []byte(`{"user_id":"u1"}`),
		},
		{
			name: "miss",
			setupMock: func(mock redismock.ClientMock) {
				mock.ExpectGet("lotofacil:account:u1").RedisNil()
			},
			wantErr: ErrNotFound,
		},
		{
			name: "transient_then_success",
			setupMock: func(mock redismock.ClientMock) {
				mock.ExpectGet("lotofacil:account:u1").SetErr(errors.New("connection refused"))
				mock.ExpectGet("lotofacil:account:u1").SetVal("ok")
			},
			want: []byte("ok"),
		},
		{
			name: "retries_exhausted",
			setupMock: func(mock redismock.ClientMock) {
				for range 3 {
					mock.ExpectGet("lotofacil:account:u1").SetErr(errors.New("i/o timeout"))
				}
			},
			wantErr: ErrStoreFailure,
		},
		{
			name: "non_retryable",
			setupMock: func(mock redismock.ClientMock) {
				mock.ExpectGet("lotofacil:account:u1").SetErr(redis.TxFailedErr)
			},
			wantErr: ErrStoreFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockRedisStore(2, 0)
			tt.setupMock(mock)

			got, err := store.Get(ctx, "lotofacil:account:u1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("there were unfulfilled expectations: %s", err)
			}
		})
	}
}

func TestRedisStore_Set(t *testing.T) {
	ctx := context.Background()

	t.Run("without_ttl", func(t *testing.T) {
		store, mock := newMockRedisStore(1, 0)
		mock.ExpectSet("k", "v", 0).SetVal("OK")

		require.NoError(t, store.Set(ctx, "k", []byte("v")))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("with_ttl", func(t *testing.T) {
		store, mock := newMockRedisStore(1, time.Hour)
		mock.ExpectSet("k", "v", time.Hour).SetVal("OK")

		require.NoError(t, store.Set(ctx, "k", []byte("v")))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("retry", func(t *testing.T) {
		store, mock := newMockRedisStore(1, 0)
		mock.ExpectSet("k", "v", 0).SetErr(errors.New("broken pipe"))
		mock.ExpectSet("k", "v", 0).SetVal("OK")

		require.NoError(t, store.Set(ctx, "k", []byte("v")))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty_key", func(t *testing.T) {
		store, _ := newMockRedisStore(1, 0)
		assert.ErrorIs(t, store.Set(ctx, "", []byte("v")), ErrInvalidParameters)
	})
}

func TestRedisStore_Delete(t *testing.T) {
	store, mock := newMockRedisStore(0, 0)
	mock.ExpectDel("k").SetVal(1)

	require.NoError(t, store.Delete(context.Background(), "k"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Ping(t *testing.T) {
	store, mock := newMockRedisStore(0, 0)
	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, store.Ping(context.Background()))

	mock.ExpectPing().SetErr(errors.New("connection refused"))
	assert.ErrorIs(t, store.Ping(context.Background()), ErrStoreFailure)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_ContextCancelledDuringBackoff(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStoreWithRetry(db, nil, 3, time.Second, 0)

	mock.ExpectGet("k").SetErr(errors.New("connection reset"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrStoreTimeout)
}

func TestNewRedisStoreWithRetry_ClampsAttempts(t *testing.T) {
	db, _ := redismock.NewClientMock()

	assert.Equal(t, 0, NewRedisStoreWithRetry(db, nil, -1, 0, 0).retryAttempts)
	assert.Equal(t, MaxRetryAttempts, NewRedisStoreWithRetry(db, nil, 99, 0, 0).retryAttempts)
	assert.Equal(t, DefaultRetryAttempts, NewRedisStore(db, nil).retryAttempts)
	assert.Equal(t, 4, NewRedisStoreFromConfig(db, &RedisConfig{RetryAttempts: 4}, nil).retryAttempts)
}
