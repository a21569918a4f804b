package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("Failed to write test configuration: %v", err)
	}

	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
PORT=8080
ENVIRONMENT=development
VERSION=1.0.0
POSTGRES_HOST=localhost
POSTGRES_USER=testuser
POSTGRES_PASSWORD=testpassword
POSTGRES_DB=testdb
MAIL_HOST=smtp.example.com
MAIL_PORT=587
MAIL_USER=testuser@example.com
MAIL_PASSWORD=testpassword
MAIL_SENDER=sender@example.com
RABBITMQ_HOST=rabbitmq.example.com
RABBITMQ_USER=testuser
RABBITMQ_PASSWORD=testpassword
JWT_SECRET=supersecret
JWT_TTL=2h
LIMITER_ENABLED=false
`)

	config, err := loadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	assert.Equal(t, "8080", config.Port)
	assert.Equal(t, ":8080", config.addr())
	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "1.0.0", config.Version)
	assert.Equal(t, "localhost", config.DBHost)
	assert.Equal(t, "5432", config.DBPort)
	assert.Equal(t, "testuser", config.DBUser)
	assert.Equal(t, "testpassword", config.DBPassword)
	assert.Equal(t, "testdb", config.DBName)
	assert.Equal(t, "smtp.example.com", config.MailHost)
	assert.Equal(t, 587, config.MailPort)
	assert.Equal(t, "testuser@example.com", config.MailUser)
	assert.Equal(t, "testpassword", config.MailPassword)
	assert.Equal(t, "sender@example.com", config.MailSender)
	assert.Equal(t, "rabbitmq.example.com", config.MQHost)
	assert.Equal(t, "5672", config.MQPort)
	assert.Equal(t, "testuser", config.MQUser)
	assert.Equal(t, "testpassword", config.MQPassword)
	assert.Equal(t, "supersecret", config.JWTSecret)
	assert.Equal(t, 2*time.Hour, config.JWTTTL)
	assert.False(t, config.LimiterEnabled)
	assert.Equal(t, 4, config.LimiterBurst)
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	path := writeConfig(t, "PORT=8080\nJWT_SECRET=fromfile\n")

	t.Setenv("PORT", "9090")
	t.Setenv("LIMITER_RPS", "0.5")

	config, err := loadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, "9090", config.Port)
	assert.Equal(t, "fromfile", config.JWTSecret)
	assert.Equal(t, 0.5, config.LimiterRPS)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "fromenv")

	config, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
	assert.Equal(t, "fromenv", config.JWTSecret)
	assert.Equal(t, "4000", config.Port)
	assert.Equal(t, 24*time.Hour, config.JWTTTL)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	path := writeConfig(t, "PORT=8080\n")

	_, err := loadConfig(path)
	assert.EqualError(t, err, "JWT_SECRET must be set")
}
