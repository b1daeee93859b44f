package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rental-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("APP_STORAGE", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.DB.LockTimeoutMs)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout())
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.False(t, cfg.Kafka.Enabled(), "sin brokers no se publica en Kafka")
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("APP_STORAGE", "MEMORY")
	t.Setenv("DB_LOCK_TIMEOUT_MS", "250")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("KAFKA_TOPIC", "alquileres")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StorageMemory, cfg.App.Storage)
	assert.Equal(t, 250*time.Millisecond, cfg.DB.LockTimeout())
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "alquileres", cfg.Kafka.Topic)
}

func TestLoad_RechazaConfiguracionInvalida(t *testing.T) {
	t.Run("storage desconocido", func(t *testing.T) {
		t.Setenv("APP_STORAGE", "sqlite")
		_, err := config.Load()
		assert.Error(t, err)
	})
	t.Run("lock timeout no positivo", func(t *testing.T) {
		t.Setenv("APP_STORAGE", "memory")
		t.Setenv("DB_LOCK_TIMEOUT_MS", "0")
		_, err := config.Load()
		assert.Error(t, err)
	})
	t.Run("production sin secreto", func(t *testing.T) {
		t.Setenv("APP_STORAGE", "memory")
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "")
		_, err := config.Load()
		assert.Error(t, err)
	})
}

func TestDBConfig_DSNEscapaCredenciales(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "rental", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/rental?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
