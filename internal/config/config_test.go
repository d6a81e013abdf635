package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "event_booking", cfg.Database.DBName)
	assert.Equal(t, "6379", cfg.Redis.Port)
	assert.Equal(t, 0.9, cfg.Settlement.HostShareRate)
	assert.Equal(t, 0.1, cfg.Settlement.AdminShareRate)
	assert.True(t, cfg.Sweeper.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Sweeper.Interval)
}

func TestLoad_WithEnvVars(t *testing.T) {
	os.Setenv("PORT", "9090")
	os.Setenv("DB_HOST", "db.internal")
	os.Setenv("SETTLEMENT_HOST_SHARE_RATE", "0.85")
	os.Setenv("SETTLEMENT_ADMIN_SHARE_RATE", "0.15")
	os.Setenv("SETTLEMENT_ADMIN_LEDGER_ID", "admin-ledger-1")
	os.Setenv("SWEEPER_ENABLED", "false")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("DB_HOST")
		os.Unsetenv("SETTLEMENT_HOST_SHARE_RATE")
		os.Unsetenv("SETTLEMENT_ADMIN_SHARE_RATE")
		os.Unsetenv("SETTLEMENT_ADMIN_LEDGER_ID")
		os.Unsetenv("SWEEPER_ENABLED")
	}()

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 0.85, cfg.Settlement.HostShareRate)
	assert.Equal(t, 0.15, cfg.Settlement.AdminShareRate)
	assert.Equal(t, "admin-ledger-1", cfg.Settlement.AdminLedgerID)
	assert.False(t, cfg.Sweeper.Enabled)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	os.Setenv("REDIS_DB", "not-a-number")
	os.Setenv("SETTLEMENT_HOST_SHARE_RATE", "ninety-percent")
	os.Setenv("SERVER_READ_TIMEOUT", "bogus")
	defer func() {
		os.Unsetenv("REDIS_DB")
		os.Unsetenv("SETTLEMENT_HOST_SHARE_RATE")
		os.Unsetenv("SERVER_READ_TIMEOUT")
	}()

	cfg := Load()

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 0.9, cfg.Settlement.HostShareRate)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "localhost", Port: "5432", User: "postgres",
		Password: "secret", DBName: "event_booking", SSLMode: "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=event_booking")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "redis.internal", Port: "6380"}
	assert.Equal(t, "redis.internal:6380", cfg.Addr())
}

func TestSettlementConfig_Valid(t *testing.T) {
	assert.True(t, (&SettlementConfig{HostShareRate: 0.9, AdminShareRate: 0.1}).Valid())
	assert.True(t, (&SettlementConfig{HostShareRate: 0.85, AdminShareRate: 0.15}).Valid())
	assert.False(t, (&SettlementConfig{HostShareRate: 0.9, AdminShareRate: 0.2}).Valid())
	assert.False(t, (&SettlementConfig{HostShareRate: 1.1, AdminShareRate: -0.1}).Valid())
}
