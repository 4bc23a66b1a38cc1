package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/komplek-api/pkg/config"
)

func TestPoolConfig(t *testing.T) {
	cfg := config.DBConfig{Host: "127.0.0.1", Port: 5432, User: "komplek", Password: "x", DBName: "komplek", SSLMode: "disable", MaxConns: 10, MinConns: 3}

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.EqualValues(t, 10, pc.MaxConns)
	assert.EqualValues(t, 3, pc.MinConns)
	assert.Equal(t, applicationName, pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "UTC", pc.ConnConfig.RuntimeParams["timezone"])
	assert.NotNil(t, pc.AfterConnect)

	cfg.MinConns = 50
	pc, err = poolConfig(cfg)
	require.NoError(t, err)
	assert.Zero(t, pc.MinConns, "MinConns mayor que MaxConns se ignora")
}

func TestWithIPv4Host(t *testing.T) {
	resolved := func(context.Context, string) (string, error) { return "10.0.0.7", nil }
	failing := func(context.Context, string) (string, error) { return "", errors.New("sin DNS") }

	assert.Equal(t, "postgres://u:p@10.0.0.7:6543/komplek?sslmode=require",
		withIPv4Host("postgres://u:p@db.supabase.co:6543/komplek?sslmode=require", resolved))
	assert.Equal(t, "postgres://u:p@10.0.0.7:5432/komplek",
		withIPv4Host("postgres://u:p@db.supabase.co/komplek", resolved))

	dsn := "postgres://u:p@db.supabase.co:5432/komplek"
	assert.Equal(t, dsn, withIPv4Host(dsn, failing))
	assert.Equal(t, "host=db user=u", withIPv4Host("host=db user=u", resolved))
}

func TestResolveIPv4_Literal(t *testing.T) {
	ip, err := resolveIPv4(context.Background(), "192.168.1.20")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20", ip)

	_, err = resolveIPv4(context.Background(), "::1")
	assert.Error(t, err)
}

func TestStatementTimeout(t *testing.T) {
	_, ok := statementTimeout(context.Background())
	assert.False(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ms, ok := statementTimeout(ctx)
	require.True(t, ok)
	assert.InDelta(t, 5000, ms, 500)

	expired, cancel2 := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel2()
	ms, ok = statementTimeout(expired)
	require.True(t, ok)
	assert.EqualValues(t, 1, ms)
}
