package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryBackoff_WithinJitterBounds(t *testing.T) {
	for attempt := 0; attempt < 3; attempt++ {
		base := defaultRetryBaseWait << attempt
		lo := time.Duration(float64(base) * (1 - retryJitterFraction))
		hi := time.Duration(float64(base) * (1 + retryJitterFraction))
		for i := 0; i < 20; i++ {
			d := retryBackoff(attempt)
			assert.GreaterOrEqual(t, d, lo)
			assert.LessOrEqual(t, d, hi)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", fmt.Errorf("read: %w", io.EOF), true},
		{"refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), true},
		{"pg syntax error", &pgconn.PgError{Code: "42601", Message: "syntax error"}, false},
		{"constraint", errors.New("duplicate key value violates unique constraint"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isConnectionError(tt.err))
		})
	}
}

func TestWithRetry_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), "op", nil, isConnectionError, func(context.Context) error {
		calls++
		return errors.New("syntax error")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "op: syntax error")
}

func TestWithRetry_CanceledContextAbortsWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := withRetry(ctx, "op", nil, always, func(context.Context) error {
		calls++
		cancel()
		return io.EOF
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPostgresConfig_DSNEscapesCredentials(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5432, User: "store", Password: "p@ss/word", DBName: "storefront", SSLMode: "disable"}

	assert.Equal(t, "postgres://store:p%40ss%2Fword@db:5432/storefront?sslmode=disable", cfg.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
