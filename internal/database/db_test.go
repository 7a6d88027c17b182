package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/refresher/internal/config"
)

func TestOpenMySQL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
	}{
		{
			name: "creates connection with valid config",
			cfg: config.DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				Database: "refresher",
				Username: "testuser",
				Password: "testpass",
			},
		},
		{
			name: "creates connection with pool settings",
			cfg: config.DatabaseConfig{
				Host:            "db.example.com",
				Port:            3307,
				Database:        "refresher",
				Username:        "admin",
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 300,
			},
		},
		{
			name: "creates connection with TLS and params",
			cfg: config.DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				Database: "refresher",
				Username: "testuser",
				TLS:      true,
				Params:   map[string]string{"charset": "utf8mb4"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OpenMySQL(tt.cfg)
			require.NoError(t, err)
			defer got.Close()

			assert.Equal(t, "mysql", got.DriverName())
		})
	}
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "refresher.db")
	db, err := OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "sqlite3", db.DriverName())
	require.NoError(t, db.PingContext(context.Background()))
	assert.FileExists(t, path)
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name       string
		driver     string
		wantDriver string
		wantErr    bool
	}{
		{name: "mysql", driver: config.StorageMySQL, wantDriver: "mysql"},
		{name: "sqlite3", driver: config.StorageSQLite, wantDriver: "sqlite3"},
		{name: "file storage has no database", driver: config.StorageFile, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := config.StorageConfig{
				Driver:     tt.driver,
				SQLitePath: filepath.Join(t.TempDir(), "refresher.db"),
			}
			got, err := Open(storage, config.DatabaseConfig{Host: "localhost", Port: 3306})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer got.Close()
			assert.Equal(t, tt.wantDriver, got.DriverName())
		})
	}
}
