package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entreg/entreg"
	"github.com/entreg/entreg/logger"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
}

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "schema", cfg.Schema)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`schema: definitions
database:
  driver: postgres
  dsn: postgres://localhost:5432/app
log:
  level: info
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entreg.yml"), data, 0644))
	chdir(t, dir)

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "definitions", cfg.Schema)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost:5432/app", cfg.Database.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestDatabaseDSNPrecedence(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{DSN: "from-config"}}

	t.Setenv("DATABASE_URL", "")
	assert.Equal(t, "from-config", cfg.databaseDSN(""))

	t.Setenv("DATABASE_URL", "from-env")
	assert.Equal(t, "from-env", cfg.databaseDSN(""))
	assert.Equal(t, "from-flag", cfg.databaseDSN("from-flag"))
}

func TestOpenEngineUnknownDriver(t *testing.T) {
	_, err := openEngine("oracle", "dsn")
	assert.ErrorContains(t, err, "unknown driver")
}

func TestOpenEngineSQLite(t *testing.T) {
	engine, err := openEngine("sqlite3", "file:clitest?mode=memory&cache=shared&_fk=1")
	require.NoError(t, err)
	defer engine.Close()

	assert.Equal(t, "entsql/sqlite3", engine.Name())
	assert.NoError(t, engine.DB().Ping())
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, logLevel("silent"))
	assert.Equal(t, logger.Error, logLevel("Error"))
	assert.Equal(t, logger.Info, logLevel("info"))
	assert.Equal(t, logger.Warn, logLevel("warn"))
	assert.Equal(t, logger.Warn, logLevel(""))
}

func TestColumnType(t *testing.T) {
	assert.Equal(t, "string(100)", columnType(&entreg.Column{DataType: entreg.String, Size: 100}))
	assert.Equal(t, "decimal(10,2)", columnType(&entreg.Column{DataType: "decimal", Precision: 10, Scale: 2}))
	assert.Equal(t, "time", columnType(&entreg.Column{DataType: entreg.Time}))
}
